package message

import "errors"

// Message layer errors.
var (
	// Checked accessor errors
	ErrMessageTooShort = errors.New("message: buffer too short for field")

	// Stream framing errors
	ErrInvalidLength    = errors.New("message: header length below minimum")
	ErrLengthMismatch   = errors.New("message: length field does not match buffer size")
	ErrStreamReadFailed = errors.New("message: failed to read from stream")
)

// Field offsets from the OpenFlow Switch Specification. These hold for
// every protocol version; only the flow-mod command field moves (see
// FlowModCommandOffset).
const (
	// VersionOffset is the offset of the protocol version byte.
	VersionOffset = 0

	// TypeOffset is the offset of the message type byte.
	TypeOffset = 1

	// LengthOffset is the offset of the 16-bit total message length.
	LengthOffset = 2

	// XIDOffset is the offset of the 32-bit transaction id.
	XIDOffset = 4

	// StatsTypeOffset is the offset of the 16-bit stats (multipart)
	// type. Meaningful only in stats messages.
	StatsTypeOffset = 8

	// ExperimenterIDOffset is the offset of the 32-bit experimenter id.
	// Meaningful only in experimenter messages; it deliberately overlaps
	// StatsTypeOffset, the message type disambiguates.
	ExperimenterIDOffset = 8

	// ExperimenterSubtypeOffset is the offset of the 32-bit experimenter
	// subtype.
	ExperimenterSubtypeOffset = 12
)

// Flow-mod command field placement. OpenFlow 1.0 stores a 16-bit command
// after the match structure; 1.1 and later moved it into the fixed
// flow-mod header as a single byte.
const (
	FlowModCommandOffset10 = 56
	FlowModCommandOffset11 = 25
)

// Minimum buffer sizes for each field group. An accessor touching a
// field requires the buffer to cover at least the group's minimum.
const (
	// HeaderSize is the fixed header size: version (1) + type (1) +
	// length (2) + xid (4) = 8. It is the minimum for the header field
	// accessors and the smallest valid value of the length field.
	HeaderSize = 8

	// MinStatsSize covers the stats type field: header + type (2) = 10.
	MinStatsSize = 10

	// MinExperimenterIDSize covers the experimenter id: header + id (4) = 12.
	MinExperimenterIDSize = 12

	// MinExperimenterSize covers id and subtype: header + id (4) + subtype (4) = 16.
	MinExperimenterSize = 16

	// MinFlowModSize10 and MinFlowModSize11 cover the flow-mod command
	// field in its two placements (see MinFlowModSize). Note the 1.0
	// value counts one byte past the command offset, not the full
	// 16-bit field; a buffer holding the whole field has 58 bytes.
	MinFlowModSize10 = FlowModCommandOffset10 + 1
	MinFlowModSize11 = FlowModCommandOffset11 + 1

	// MaxSize is the largest encodable message: the length field is 16
	// bits. Accessors do not enforce it; the stream layer does.
	MaxSize = 0xFFFF
)
