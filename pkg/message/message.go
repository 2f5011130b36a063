package message

import (
	"encoding/binary"
)

// Message is a raw OpenFlow message viewed through its wire offsets.
// All multi-byte fields are big-endian on the wire.
//
// The view borrows the caller's buffer: accessors never allocate, copy,
// retain, or resize it, and setters mutate only the declared bytes of
// their field. Reading a field immediately after writing it returns the
// written value; distinct non-overlapping fields never disturb each
// other. The stats type and experimenter id fields overlap on purpose
// (OpenFlow assigns both to offset 8); the message type, read first,
// tells the caller which accessor is meaningful.
//
// Accessors perform no bounds checking. The caller must ensure the
// buffer covers the accessed field (HeaderSize for the header fields,
// the Min*Size constants for the rest); a shorter buffer makes the
// accessor panic with the runtime's own bounds error. Use Checked for a
// validating view when buffer sizes are untrusted.
//
// Message carries no synchronization. A buffer shared across goroutines
// needs external locking, as with any []byte.
type Message []byte

// Version returns the protocol version byte.
func (m Message) Version() Version {
	return Version(m[VersionOffset])
}

// SetVersion stores the protocol version byte.
func (m Message) SetVersion(v Version) {
	m[VersionOffset] = uint8(v)
}

// Type returns the message type byte.
func (m Message) Type() Type {
	return Type(m[TypeOffset])
}

// SetType stores the message type byte.
func (m Message) SetType(t Type) {
	m[TypeOffset] = uint8(t)
}

// Length returns the total message length field. The field frames the
// message on a stream; it is not checked against len(m) here.
func (m Message) Length() uint16 {
	return binary.BigEndian.Uint16(m[LengthOffset:])
}

// SetLength stores the total message length field.
func (m Message) SetLength(n uint16) {
	binary.BigEndian.PutUint16(m[LengthOffset:], n)
}

// XID returns the transaction id.
func (m Message) XID() uint32 {
	return binary.BigEndian.Uint32(m[XIDOffset:])
}

// SetXID stores the transaction id.
func (m Message) SetXID(xid uint32) {
	binary.BigEndian.PutUint32(m[XIDOffset:], xid)
}

// StatsType returns the stats (multipart) type field. Meaningful only
// when the message type is a stats request or reply; the accessor does
// not inspect the type field.
func (m Message) StatsType() StatsType {
	return StatsType(binary.BigEndian.Uint16(m[StatsTypeOffset:]))
}

// SetStatsType stores the stats (multipart) type field.
func (m Message) SetStatsType(s StatsType) {
	binary.BigEndian.PutUint16(m[StatsTypeOffset:], uint16(s))
}

// ExperimenterID returns the experimenter id. Meaningful only when the
// message type is experimenter (vendor); the field shares offset 8 with
// the stats type, so reading both from one message aliases the same
// bytes.
func (m Message) ExperimenterID() uint32 {
	return binary.BigEndian.Uint32(m[ExperimenterIDOffset:])
}

// SetExperimenterID stores the experimenter id.
func (m Message) SetExperimenterID(id uint32) {
	binary.BigEndian.PutUint32(m[ExperimenterIDOffset:], id)
}

// ExperimenterSubtype returns the experimenter subtype.
func (m Message) ExperimenterSubtype() uint32 {
	return binary.BigEndian.Uint32(m[ExperimenterSubtypeOffset:])
}

// SetExperimenterSubtype stores the experimenter subtype.
func (m Message) SetExperimenterSubtype(sub uint32) {
	binary.BigEndian.PutUint32(m[ExperimenterSubtypeOffset:], sub)
}

// FlowModCommand returns the flow-mod command field, dispatching its
// placement on the protocol version: OpenFlow 1.0 stores a 16-bit
// command at offset 56, later versions a single byte at offset 25. The
// 1.0 field is truncated to its low byte; defined command values all
// fit in it. Meaningful only on flow-mod messages; the accessor does
// not inspect the type field.
func (m Message) FlowModCommand(v Version) FlowModCommand {
	if v == Version10 {
		return FlowModCommand(binary.BigEndian.Uint16(m[FlowModCommandOffset10:]))
	}
	return FlowModCommand(m[FlowModCommandOffset11])
}

// SetFlowModCommand stores the flow-mod command field under the given
// protocol version's placement. For OpenFlow 1.0 the command is
// zero-extended to the 16-bit field.
func (m Message) SetFlowModCommand(v Version, cmd FlowModCommand) {
	if v == Version10 {
		binary.BigEndian.PutUint16(m[FlowModCommandOffset10:], uint16(cmd))
		return
	}
	m[FlowModCommandOffset11] = uint8(cmd)
}

// Payload returns the bytes after the fixed header. The slice shares
// the message's underlying array.
func (m Message) Payload() []byte {
	return m[HeaderSize:]
}

// FlowModCommandOffset returns the offset of the flow-mod command field
// for the given protocol version.
func FlowModCommandOffset(v Version) int {
	if v == Version10 {
		return FlowModCommandOffset10
	}
	return FlowModCommandOffset11
}

// MinFlowModSize returns the minimum length of a flow-mod message under
// the given protocol version, one byte past the command offset. See the
// MinFlowModSize10 note on the 1.0 value.
func MinFlowModSize(v Version) int {
	if v == Version10 {
		return MinFlowModSize10
	}
	return MinFlowModSize11
}

// MinSizeForType returns the minimum buffer size required to access
// every header-layer field of a message of the given version and type:
// the base header for most messages, extended for the types carrying a
// stats type, experimenter id and subtype, or flow-mod command. This is
// the bound a dispatcher checks before handing a message to code that
// uses the unchecked accessors.
func MinSizeForType(v Version, t Type) int {
	switch {
	case t.IsFlowMod():
		return MinFlowModSize(v)
	case t.IsStats(v):
		return MinStatsSize
	case t.IsExperimenter():
		return MinExperimenterSize
	default:
		return HeaderSize
	}
}
