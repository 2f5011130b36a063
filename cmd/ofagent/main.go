// ofagent maintains an OpenFlow control channel to a controller.
//
// The agent dials the controller, performs the version handshake, and
// keeps the connection alive by answering the controller's echo
// requests. With -echo-interval it also probes the controller itself,
// sending periodic echo requests and logging the round-trip time. The
// agent exits when the controller closes the connection.
//
// Usage:
//
//	ofagent [options]
//
// Options:
//
//	-controller         Controller address (default: "127.0.0.1:6653")
//	-version            Highest OpenFlow version to offer (default: "1.3")
//	-handshake-timeout  Time limit for the version handshake (default: 10s)
//	-echo-interval      Interval between outgoing echo probes (0 = disabled)
//	-loglevel           disabled, error, warn, info, debug or trace (default: "info")
//
// Example:
//
//	ofagent -controller 192.0.2.10:6653 -echo-interval 30s
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/maoweiqiang/indigo/pkg/message"
	"github.com/maoweiqiang/indigo/pkg/transport"
	"github.com/pion/logging"
)

// options holds the resolved settings for an agent run.
type options struct {
	// Controller is the address of the controller to connect to.
	Controller string

	// MaxVersion is the highest protocol version offered in the
	// handshake.
	MaxVersion message.Version

	// HandshakeTimeout bounds the wait for the controller's hello.
	HandshakeTimeout time.Duration

	// EchoInterval is the period between outgoing echo probes.
	// Zero disables probing.
	EchoInterval time.Duration

	// LogLevel is the minimum level written to stderr.
	LogLevel logging.LogLevel
}

func parseFlags() (options, error) {
	opts := options{
		Controller:       fmt.Sprintf("127.0.0.1:%d", transport.DefaultPort),
		MaxVersion:       message.Version13,
		HandshakeTimeout: 10 * time.Second,
		LogLevel:         logging.LogLevelInfo,
	}

	controller := flag.String("controller", opts.Controller, "Controller address")
	version := flag.String("version", opts.MaxVersion.String(), "Highest OpenFlow version to offer (1.0 to 1.5)")
	timeout := flag.Duration("handshake-timeout", opts.HandshakeTimeout, "Time limit for the version handshake (0 = none)")
	echoInterval := flag.Duration("echo-interval", 0, "Interval between outgoing echo probes (0 = disabled)")
	logLevel := flag.String("loglevel", "info", "Log level: disabled, error, warn, info, debug or trace")
	flag.Parse()

	opts.Controller = *controller
	opts.HandshakeTimeout = *timeout
	opts.EchoInterval = *echoInterval

	v, err := message.ParseVersion(*version)
	if err != nil {
		return options{}, err
	}
	opts.MaxVersion = v

	lv, err := parseLogLevel(*logLevel)
	if err != nil {
		return options{}, err
	}
	opts.LogLevel = lv

	return opts, nil
}

// parseLogLevel maps a level name to its pion logging constant.
func parseLogLevel(s string) (logging.LogLevel, error) {
	switch strings.ToLower(s) {
	case "disabled":
		return logging.LogLevelDisabled, nil
	case "error":
		return logging.LogLevelError, nil
	case "warn":
		return logging.LogLevelWarn, nil
	case "info":
		return logging.LogLevelInfo, nil
	case "debug":
		return logging.LogLevelDebug, nil
	case "trace":
		return logging.LogLevelTrace, nil
	default:
		return logging.LogLevelDisabled, fmt.Errorf("unknown log level %q", s)
	}
}

func main() {
	opts, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ofagent: %v\n", err)
		os.Exit(1)
	}
	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "ofagent: %v\n", err)
		os.Exit(1)
	}
}

// agent is the running state of one control channel.
type agent struct {
	log  logging.LeveledLogger
	conn *transport.Conn

	closeOnce sync.Once
	closedCh  chan struct{}

	// Last outstanding echo probe
	mu        sync.Mutex
	probeXID  uint32
	probeSent time.Time
}

func run(opts options) error {
	factory := logging.NewDefaultLoggerFactory()
	factory.DefaultLogLevel = opts.LogLevel
	log := factory.NewLogger("ofagent")

	a := &agent{
		log:      log,
		closedCh: make(chan struct{}),
	}

	m, err := transport.New(transport.Config{
		Handler:           a.handleMessage,
		MaxVersion:        opts.MaxVersion,
		HandshakeTimeout:  opts.HandshakeTimeout,
		OnConnStateChange: a.onConnState,
		LoggerFactory:     factory,
	})
	if err != nil {
		return fmt.Errorf("create manager: %w", err)
	}

	conn, err := m.Dial(opts.Controller)
	if err != nil {
		m.Stop()
		return fmt.Errorf("connect to %s: %w", opts.Controller, err)
	}
	a.conn = conn

	log.Infof("connected to %s speaking OpenFlow %s", conn.RemoteAddr(), conn.Version())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if opts.EchoInterval > 0 {
		go a.probeLoop(ctx, opts.EchoInterval)
	}

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case <-a.closedCh:
		log.Warn("controller closed the connection")
	}
	return m.Stop()
}

func (a *agent) onConnState(_ *transport.Conn, s transport.ConnState) {
	if s == transport.StateClosed {
		a.closeOnce.Do(func() { close(a.closedCh) })
	}
}

// handleMessage logs controller traffic, matching echo replies against
// the agent's outstanding probe. Echo requests never reach this
// handler; the manager answers them.
func (a *agent) handleMessage(received *transport.ReceivedMessage) {
	m := received.Msg

	if m.Type() == message.TypeEchoReply {
		a.mu.Lock()
		xid, sent := a.probeXID, a.probeSent
		a.mu.Unlock()

		if m.XID() == xid && !sent.IsZero() {
			a.log.Infof("echo reply xid=%d rtt=%s", xid, time.Since(sent).Round(time.Millisecond))
			return
		}
	}

	v := m.Version()
	a.log.Infof("received %s xid=%d len=%d", m.Type().Name(v), m.XID(), m.Length())
}

// probeLoop sends an echo request every interval until the context is
// canceled or the connection goes away.
func (a *agent) probeLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.sendProbe(); err != nil {
				a.log.Warnf("echo probe: %v", err)
				return
			}
		}
	}
}

func (a *agent) sendProbe() error {
	xid := a.conn.NextXID()

	a.mu.Lock()
	a.probeXID = xid
	a.probeSent = time.Now()
	a.mu.Unlock()

	return a.conn.Send(message.New(a.conn.Version(), message.TypeEchoRequest, xid, 0))
}
