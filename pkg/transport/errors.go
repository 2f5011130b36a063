package transport

import "errors"

// Transport errors.
var (
	// ErrClosed is returned when an operation is attempted on a closed manager.
	ErrClosed = errors.New("transport: closed")

	// ErrAlreadyStarted is returned when Start is called on an already running manager.
	ErrAlreadyStarted = errors.New("transport: already started")

	// ErrNoHandler is returned when no message handler is configured.
	ErrNoHandler = errors.New("transport: no message handler configured")

	// ErrHandshakeFailed is returned when the hello exchange does not
	// produce a usable protocol version.
	ErrHandshakeFailed = errors.New("transport: version handshake failed")

	// ErrConnClosed is returned when sending on a closed connection.
	ErrConnClosed = errors.New("transport: connection closed")
)
