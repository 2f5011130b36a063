package transport

import (
	"net"
	"sync"

	"github.com/maoweiqiang/indigo/pkg/message"
)

// Conn is one OpenFlow connection: a stream transport carrying framed
// messages, the protocol version agreed in the handshake, and a
// transaction id source for requests originated on this side.
type Conn struct {
	conn    net.Conn
	reader  *message.StreamReader
	writer  *message.StreamWriter
	xids    *message.XIDGenerator
	onState func(*Conn, ConnState)

	writeMu sync.Mutex // Serializes frame writes

	mu      sync.RWMutex
	state   ConnState
	version message.Version
}

// newConn wraps an established stream transport. The connection starts
// in StateHandshaking; the manager moves it to StateReady once the
// hello exchange settles the version. onState, if non-nil, is invoked
// on each state transition.
func newConn(nc net.Conn, onState func(*Conn, ConnState)) *Conn {
	return &Conn{
		conn:    nc,
		reader:  message.NewStreamReader(nc),
		writer:  message.NewStreamWriter(nc),
		xids:    message.NewXIDGenerator(),
		onState: onState,
		state:   StateHandshaking,
	}
}

// Version returns the negotiated protocol version. It is meaningful
// once the connection reaches StateReady.
func (c *Conn) Version() message.Version {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// State returns the connection's lifecycle state.
func (c *Conn) State() ConnState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// NextXID returns a fresh transaction id for a request on this
// connection.
func (c *Conn) NextXID() uint32 {
	return c.xids.Next()
}

// Send writes one framed message to the peer.
// Safe for concurrent use; messages are written atomically with
// respect to each other.
func (c *Conn) Send(m message.Message) error {
	c.mu.RLock()
	if c.state == StateClosed {
		c.mu.RUnlock()
		return ErrConnClosed
	}
	c.mu.RUnlock()

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	return c.writer.Write(m)
}

// Close closes the underlying transport. Closing an already closed
// connection is a no-op.
func (c *Conn) Close() error {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return nil
	}
	c.state = StateClosed
	c.mu.Unlock()

	err := c.conn.Close()
	if c.onState != nil {
		c.onState(c, StateClosed)
	}
	return err
}

// LocalAddr returns the local address of the connection.
func (c *Conn) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

// RemoteAddr returns the peer's address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// setReady records the negotiated version and moves the connection out
// of the handshake.
func (c *Conn) setReady(v message.Version) {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return
	}
	c.version = v
	c.state = StateReady
	c.mu.Unlock()

	if c.onState != nil {
		c.onState(c, StateReady)
	}
}
