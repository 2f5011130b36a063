package transport

import "github.com/maoweiqiang/indigo/pkg/message"

// ReceivedMessage represents an incoming message from the network,
// together with the connection it arrived on. The message has already
// passed the length check for its version and type, so the header
// accessors for those fields are safe to use on it.
type ReceivedMessage struct {
	// Msg contains the raw message bytes.
	Msg message.Message

	// Conn is the connection the message arrived on. Use it to reply.
	Conn *Conn
}

// MessageHandler is called for each received message not consumed by
// the handshake or echo handling.
// Implementations should process messages quickly or dispatch to a goroutine
// to avoid blocking the connection's read loop.
type MessageHandler func(msg *ReceivedMessage)
