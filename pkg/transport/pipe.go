package transport

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/pion/transport/v3/test"
)

// Pipe provides bidirectional in-memory stream communication between
// two endpoints. It wraps pion's test.Bridge and adapts its packet
// delivery to the stream semantics OpenFlow framing needs. Queued data
// is delivered by a background goroutine, so reads complete without
// manual pumping.
//
// Use Pipe to wire a Manager to a scripted peer in tests without real
// network I/O.
type Pipe struct {
	bridge *test.Bridge
	conn0  *pipeConn
	conn1  *pipeConn
	stopCh chan struct{}
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewPipe creates a pipe and starts its delivery goroutine.
func NewPipe() *Pipe {
	p := &Pipe{
		bridge: test.NewBridge(),
		stopCh: make(chan struct{}),
	}
	p.conn0 = newPipeConn(p.bridge.GetConn0(), 0)
	p.conn1 = newPipeConn(p.bridge.GetConn1(), 1)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(1 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-p.stopCh:
				return
			case <-ticker.C:
				p.bridge.Tick()
			}
		}
	}()

	return p
}

// Conn0 returns the connection for endpoint 0.
func (p *Pipe) Conn0() net.Conn {
	return p.conn0
}

// Conn1 returns the connection for endpoint 1.
func (p *Pipe) Conn1() net.Conn {
	return p.conn1
}

// Close closes both endpoints, then stops delivery. The bridge
// finalizes an endpoint close only on a later tick, and that
// finalization is what unblocks a pending Read, so ticking must
// outlive the endpoint closes.
func (p *Pipe) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	var errs []error
	if err := p.conn0.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := p.conn1.Close(); err != nil {
		errs = append(errs, err)
	}

	// Push both closes through before the ticker goroutine stops.
	p.bridge.Tick()

	close(p.stopCh)
	p.wg.Wait()

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// PipeAddr implements net.Addr for pipe endpoints.
type PipeAddr struct {
	ID   int // Endpoint ID (0 or 1)
	Port int // Logical port number
}

// Network returns "pipe".
func (a PipeAddr) Network() string { return "pipe" }

// String returns a string representation of the address.
func (a PipeAddr) String() string { return fmt.Sprintf("pipe:%d:%d", a.ID, a.Port) }

// pipeConn adapts a bridge endpoint to stream semantics. The bridge
// delivers each Write as one packet and discards whatever a short Read
// leaves over, so Read buffers each packet and hands it out the way a
// TCP stream would.
type pipeConn struct {
	conn       net.Conn
	localAddr  PipeAddr
	remoteAddr PipeAddr

	mu       sync.Mutex
	leftover []byte
}

func newPipeConn(nc net.Conn, id int) *pipeConn {
	return &pipeConn{
		conn:       nc,
		localAddr:  PipeAddr{ID: id, Port: DefaultPort},
		remoteAddr: PipeAddr{ID: 1 - id, Port: DefaultPort},
	}
}

// Read reads data from the connection, draining any buffered remainder
// of the previous packet first.
func (c *pipeConn) Read(b []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.leftover) == 0 {
		// A framed message never exceeds the 16-bit length field.
		packet := make([]byte, 65536)
		n, err := c.conn.Read(packet)
		if err != nil {
			return 0, err
		}
		c.leftover = packet[:n]
	}

	n := copy(b, c.leftover)
	c.leftover = c.leftover[n:]
	return n, nil
}

// Write writes data to the connection.
func (c *pipeConn) Write(b []byte) (int, error) {
	return c.conn.Write(b)
}

// Close closes the connection.
func (c *pipeConn) Close() error {
	return c.conn.Close()
}

// LocalAddr returns the local network address.
func (c *pipeConn) LocalAddr() net.Addr {
	return c.localAddr
}

// RemoteAddr returns the remote network address.
func (c *pipeConn) RemoteAddr() net.Addr {
	return c.remoteAddr
}

// SetDeadline sets the read and write deadlines.
func (c *pipeConn) SetDeadline(t time.Time) error {
	return c.conn.SetDeadline(t)
}

// SetReadDeadline sets the read deadline.
func (c *pipeConn) SetReadDeadline(t time.Time) error {
	return c.conn.SetReadDeadline(t)
}

// SetWriteDeadline sets the write deadline.
func (c *pipeConn) SetWriteDeadline(t time.Time) error {
	return c.conn.SetWriteDeadline(t)
}

// Verify pipeConn implements net.Conn.
var _ net.Conn = (*pipeConn)(nil)
