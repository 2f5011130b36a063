// Package transport manages OpenFlow control connections over TCP:
// listening and dialing, the hello version handshake, stream framing,
// and dispatch of incoming messages to a handler. Handshake and echo
// traffic is consumed below the handler; everything else is passed up
// with the connection it arrived on.
package transport

// ConnState tracks the lifecycle of an OpenFlow connection.
type ConnState int

const (
	// StateHandshaking means the hello exchange has not completed yet.
	StateHandshaking ConnState = iota

	// StateReady means the version handshake completed and the
	// connection carries regular traffic.
	StateReady

	// StateClosed means the connection is closed.
	StateClosed
)

// String returns the string representation of the connection state.
func (s ConnState) String() string {
	switch s {
	case StateHandshaking:
		return "Handshaking"
	case StateReady:
		return "Ready"
	case StateClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// IsValid returns true if the state is a known valid state.
func (s ConnState) IsValid() bool {
	return s >= StateHandshaking && s <= StateClosed
}
