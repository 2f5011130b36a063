package transport

import (
	"crypto/tls"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/maoweiqiang/indigo/pkg/message"
	"github.com/pion/logging"
)

// DefaultPort is the IANA-assigned OpenFlow controller port.
const DefaultPort = 6653

// Error type and code sent when version negotiation fails, per the
// OpenFlow Switch Specification: OFPET_HELLO_FAILED / OFPHFC_INCOMPATIBLE.
const (
	errTypeHelloFailed  = 0
	errCodeIncompatible = 0
)

// Config configures a Manager.
type Config struct {
	// Listener is an optional pre-existing listener to accept
	// connections from. If nil, a listener is created from ListenAddr.
	Listener net.Listener

	// ListenAddr is the address to listen on (e.g., ":6653").
	// Ignored if Listener is provided. If both are empty the manager
	// accepts nothing and handles only dialed and added connections.
	ListenAddr string

	// TLSConfig enables TLS on listened and dialed connections when set.
	TLSConfig *tls.Config

	// Handler is called for each received message that is not consumed
	// by the handshake or echo handling.
	// Required.
	Handler MessageHandler

	// MaxVersion is the highest protocol version offered in the hello
	// exchange. Defaults to message.Version13.
	MaxVersion message.Version

	// HandshakeTimeout bounds the wait for the peer's hello.
	// Zero means no limit.
	HandshakeTimeout time.Duration

	// DisableEchoReply turns off the automatic reply to echo requests;
	// they are then passed to the handler like any other message.
	DisableEchoReply bool

	// OnConnStateChange is called when a connection becomes ready after
	// its handshake and when it closes. Called from the connection's
	// goroutine; implementations must not block.
	// Optional.
	OnConnStateChange func(*Conn, ConnState)

	// LoggerFactory is the factory for creating loggers.
	// If nil, logging is disabled.
	LoggerFactory logging.LoggerFactory
}

// Manager accepts, dials, and tracks OpenFlow connections. Every
// connection goes through the hello version handshake before its
// messages reach the configured handler.
type Manager struct {
	listener         net.Listener
	handler          MessageHandler
	tlsConfig        *tls.Config
	maxVersion       message.Version
	handshakeTimeout time.Duration
	disableEchoReply bool
	onConnState      func(*Conn, ConnState)
	closeCh          chan struct{}
	wg               sync.WaitGroup
	log              logging.LeveledLogger

	// Connection tracking
	connsMu sync.RWMutex
	conns   map[string]*Conn // Key: remote address string

	mu      sync.RWMutex
	started bool
	closed  bool
}

// New creates a new manager with the given configuration.
func New(config Config) (*Manager, error) {
	if config.Handler == nil {
		return nil, ErrNoHandler
	}

	m := &Manager{
		listener:         config.Listener,
		handler:          config.Handler,
		tlsConfig:        config.TLSConfig,
		maxVersion:       config.MaxVersion,
		handshakeTimeout: config.HandshakeTimeout,
		disableEchoReply: config.DisableEchoReply,
		onConnState:      config.OnConnStateChange,
		closeCh:          make(chan struct{}),
		conns:            make(map[string]*Conn),
	}

	if m.maxVersion == 0 {
		m.maxVersion = message.Version13
	}

	// Create logger
	if config.LoggerFactory != nil {
		m.log = config.LoggerFactory.NewLogger("transport")
	}

	// Create listener if not provided
	if m.listener == nil && config.ListenAddr != "" {
		var err error
		if m.tlsConfig != nil {
			m.listener, err = tls.Listen("tcp", config.ListenAddr, m.tlsConfig)
		} else {
			m.listener, err = net.Listen("tcp", config.ListenAddr)
		}
		if err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Start begins accepting connections if a listener is configured.
func (m *Manager) Start() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	if m.started {
		m.mu.Unlock()
		return ErrAlreadyStarted
	}
	m.started = true
	m.mu.Unlock()

	if m.listener == nil {
		return nil
	}

	if m.log != nil {
		m.log.Infof("listening for connections on %s", m.listener.Addr())
	}

	m.wg.Add(1)
	go m.acceptLoop()

	return nil
}

// Stop closes the listener and all connections.
func (m *Manager) Stop() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.closed = true
	m.mu.Unlock()

	if m.log != nil {
		m.log.Info("stopping")
	}

	close(m.closeCh)
	if m.listener != nil {
		m.listener.Close()
	}

	// Snapshot under the lock, close outside it: Close fires the state
	// callback, which may call back into the manager.
	m.connsMu.Lock()
	conns := make([]*Conn, 0, len(m.conns))
	for _, c := range m.conns {
		conns = append(conns, c)
	}
	m.conns = make(map[string]*Conn)
	m.connsMu.Unlock()
	for _, c := range conns {
		c.Close()
	}

	m.wg.Wait()
	return nil
}

// Addr returns the local address the manager is listening on, or nil
// if no listener is configured.
func (m *Manager) Addr() net.Addr {
	if m.listener == nil {
		return nil
	}
	return m.listener.Addr()
}

// Conns returns a snapshot of the tracked connections.
func (m *Manager) Conns() []*Conn {
	m.connsMu.RLock()
	defer m.connsMu.RUnlock()

	conns := make([]*Conn, 0, len(m.conns))
	for _, c := range m.conns {
		conns = append(conns, c)
	}
	return conns
}

// Dial connects to the peer at addr, performs the version handshake,
// and returns the ready connection. Incoming messages on it are
// dispatched to the manager's handler.
func (m *Manager) Dial(addr string) (*Conn, error) {
	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return nil, ErrClosed
	}
	m.mu.RUnlock()

	var nc net.Conn
	var err error
	if m.tlsConfig != nil {
		nc, err = tls.Dial("tcp", addr, m.tlsConfig)
	} else {
		nc, err = net.Dial("tcp", addr)
	}
	if err != nil {
		return nil, err
	}

	c := newConn(nc, m.onConnState)
	m.track(c)

	if err := m.handshake(c); err != nil {
		c.Close()
		m.untrack(c)
		return nil, err
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer func() {
			c.Close()
			m.untrack(c)
		}()
		m.readLoop(c)
	}()

	return c, nil
}

// AddConn hands an established transport to the manager, which runs
// the handshake and read loop on it in the background. This is useful
// for piped connections in tests and for externally accepted listeners.
func (m *Manager) AddConn(nc net.Conn) {
	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		nc.Close()
		return
	}
	m.mu.RUnlock()

	m.wg.Add(1)
	go m.handleConn(nc)
}

// acceptLoop accepts incoming connections.
func (m *Manager) acceptLoop() {
	defer m.wg.Done()

	for {
		nc, err := m.listener.Accept()
		if err != nil {
			select {
			case <-m.closeCh:
				return
			default:
				continue
			}
		}

		m.wg.Add(1)
		go m.handleConn(nc)
	}
}

// handleConn runs the handshake and then the read loop for a single
// connection.
func (m *Manager) handleConn(nc net.Conn) {
	defer m.wg.Done()

	c := newConn(nc, m.onConnState)

	// Track before the handshake so Stop reaches connections still
	// blocked on the peer's hello.
	m.track(c)
	defer func() {
		c.Close()
		m.untrack(c)
	}()

	if err := m.handshake(c); err != nil {
		if m.log != nil {
			m.log.Warnf("handshake with %s: %v", c.RemoteAddr(), err)
		}
		return
	}

	m.readLoop(c)
}

// handshake performs the hello exchange on a new connection: send our
// hello, read the peer's, settle on the lower of the two versions. A
// peer that leads with anything but a hello, or offers no usable
// version, gets a hello-failed error message and the connection is
// torn down.
func (m *Manager) handshake(c *Conn) error {
	hello := message.New(m.maxVersion, message.TypeHello, c.NextXID(), 0)
	if err := c.Send(hello); err != nil {
		return fmt.Errorf("sending hello: %w", err)
	}

	if m.handshakeTimeout > 0 {
		c.conn.SetReadDeadline(time.Now().Add(m.handshakeTimeout))
		defer c.conn.SetReadDeadline(time.Time{})
	}

	peer, err := c.reader.Read()
	if err != nil {
		return fmt.Errorf("reading peer hello: %w", err)
	}

	if peer.Type() != message.TypeHello {
		m.sendHelloFailed(c, peer.XID())
		return fmt.Errorf("%w: peer sent message type %d before hello", ErrHandshakeFailed, peer.Type())
	}

	version := peer.Version()
	if version > m.maxVersion {
		version = m.maxVersion
	}
	if !version.IsValid() {
		m.sendHelloFailed(c, peer.XID())
		return fmt.Errorf("%w: no common version with peer offering %d", ErrHandshakeFailed, uint8(peer.Version()))
	}

	c.setReady(version)
	if m.log != nil {
		m.log.Infof("negotiated version %s with %s", version, c.RemoteAddr())
	}

	return nil
}

// sendHelloFailed reports a failed negotiation to the peer before the
// connection is dropped.
func (m *Manager) sendHelloFailed(c *Conn, xid uint32) {
	msg := message.New(m.maxVersion, message.TypeError, xid, 4)
	body := msg.Payload()
	binary.BigEndian.PutUint16(body[0:], errTypeHelloFailed)
	binary.BigEndian.PutUint16(body[2:], errCodeIncompatible)

	if err := c.Send(msg); err != nil && m.log != nil {
		m.log.Debugf("sending hello failed error to %s: %v", c.RemoteAddr(), err)
	}
}

// readLoop delivers incoming messages on a ready connection until the
// connection or the manager closes.
func (m *Manager) readLoop(c *Conn) {
	for {
		select {
		case <-m.closeCh:
			return
		default:
		}

		msg, err := c.reader.Read()
		if err != nil {
			if err != io.EOF && m.log != nil {
				m.log.Debugf("read from %s: %v", c.RemoteAddr(), err)
			}
			return
		}

		m.dispatch(c, msg)
	}
}

// dispatch routes one received message. Messages carrying the wrong
// version or too few bytes for their type are dropped here, so the
// handler can use the unchecked header accessors safely.
func (m *Manager) dispatch(c *Conn, msg message.Message) {
	version := msg.Version()
	typ := msg.Type()

	if version != c.Version() {
		if m.log != nil {
			m.log.Warnf("dropping message from %s: version %s on a %s connection",
				c.RemoteAddr(), version, c.Version())
		}
		return
	}

	if min := message.MinSizeForType(version, typ); len(msg) < min {
		if m.log != nil {
			m.log.Warnf("dropping %s message from %s: %d bytes, type needs %d",
				typ.Name(version), c.RemoteAddr(), len(msg), min)
		}
		return
	}

	switch typ {
	case message.TypeHello:
		// Duplicate hello after the handshake settled; ignore.
		return
	case message.TypeEchoRequest:
		if !m.disableEchoReply {
			m.sendEchoReply(c, msg)
			return
		}
	}

	m.handler(&ReceivedMessage{
		Msg:  msg,
		Conn: c,
	})
}

// sendEchoReply answers an echo request with the same xid and payload.
func (m *Manager) sendEchoReply(c *Conn, req message.Message) {
	reply := message.New(c.Version(), message.TypeEchoReply, req.XID(), len(req.Payload()))
	copy(reply.Payload(), req.Payload())

	if err := c.Send(reply); err != nil && m.log != nil {
		m.log.Warnf("sending echo reply to %s: %v", c.RemoteAddr(), err)
	}
}

// track registers a connection under its remote address.
func (m *Manager) track(c *Conn) {
	m.connsMu.Lock()
	m.conns[c.RemoteAddr().String()] = c
	m.connsMu.Unlock()
}

// untrack removes a connection.
func (m *Manager) untrack(c *Conn) {
	m.connsMu.Lock()
	delete(m.conns, c.RemoteAddr().String())
	m.connsMu.Unlock()
}
