package message

import (
	"io"
)

// New allocates a message buffer of HeaderSize+bodyLen bytes and stamps
// the header: version, type, xid, and a length field covering the whole
// buffer. The body bytes are zeroed. bodyLen must keep the total within
// MaxSize for the length field to be truthful.
//
// This is the one allocating convenience in the package; accessors on
// the returned Message follow the usual borrowed-buffer rules.
func New(v Version, t Type, xid uint32, bodyLen int) Message {
	m := Message(make([]byte, HeaderSize+bodyLen))
	m.SetVersion(v)
	m.SetType(t)
	m.SetLength(uint16(HeaderSize + bodyLen))
	m.SetXID(xid)
	return m
}

// StreamWriter wraps an io.Writer to write OpenFlow messages on a
// stream. OpenFlow has no length prefix: the header's own length field
// frames each message.
type StreamWriter struct {
	w io.Writer
}

// NewStreamWriter creates a new stream writer.
func NewStreamWriter(w io.Writer) *StreamWriter {
	return &StreamWriter{w: w}
}

// Write writes one message to the stream. The length field must equal
// the buffer size: a mismatch would desynchronize every message after
// it, so it is rejected with ErrLengthMismatch.
func (sw *StreamWriter) Write(m Message) error {
	if len(m) < HeaderSize {
		return ErrInvalidLength
	}
	if int(m.Length()) != len(m) {
		return ErrLengthMismatch
	}

	_, err := sw.w.Write(m)
	return err
}

// StreamReader wraps an io.Reader to read OpenFlow messages from a
// stream, framed by the header length field.
type StreamReader struct {
	r io.Reader
}

// NewStreamReader creates a new stream reader.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{r: r}
}

// Read reads one message from the stream into a freshly allocated
// buffer. A clean EOF before the first header byte is returned as
// io.EOF; any other short or failed read is ErrStreamReadFailed. A
// length field below HeaderSize cannot frame a message and is returned
// as ErrInvalidLength.
func (sr *StreamReader) Read() (Message, error) {
	var hdr [HeaderSize]byte
	if _, err := io.ReadFull(sr.r, hdr[:]); err != nil {
		if err == io.EOF {
			return nil, err
		}
		return nil, ErrStreamReadFailed
	}

	total := Message(hdr[:]).Length()
	if int(total) < HeaderSize {
		return nil, ErrInvalidLength
	}

	m := make(Message, total)
	copy(m, hdr[:])
	if _, err := io.ReadFull(sr.r, m[HeaderSize:]); err != nil {
		return nil, ErrStreamReadFailed
	}

	return m, nil
}
