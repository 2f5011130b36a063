package message

// Checked is a bounds-checked view of a Message. Every accessor
// verifies the buffer covers its field group's minimum size before
// touching it and reports ErrMessageTooShort instead of panicking. The
// cost is one length branch per call; paths that already validated the
// buffer (for example behind MinSizeForType) use Message directly.
type Checked struct {
	m Message
}

// Checked returns a bounds-checked view of the message.
func (m Message) Checked() Checked {
	return Checked{m: m}
}

// Message returns the underlying unchecked view.
func (c Checked) Message() Message {
	return c.m
}

func (c Checked) require(n int) error {
	if len(c.m) < n {
		return ErrMessageTooShort
	}
	return nil
}

// Version returns the protocol version byte.
func (c Checked) Version() (Version, error) {
	if err := c.require(HeaderSize); err != nil {
		return 0, err
	}
	return c.m.Version(), nil
}

// SetVersion stores the protocol version byte.
func (c Checked) SetVersion(v Version) error {
	if err := c.require(HeaderSize); err != nil {
		return err
	}
	c.m.SetVersion(v)
	return nil
}

// Type returns the message type byte.
func (c Checked) Type() (Type, error) {
	if err := c.require(HeaderSize); err != nil {
		return 0, err
	}
	return c.m.Type(), nil
}

// SetType stores the message type byte.
func (c Checked) SetType(t Type) error {
	if err := c.require(HeaderSize); err != nil {
		return err
	}
	c.m.SetType(t)
	return nil
}

// Length returns the total message length field.
func (c Checked) Length() (uint16, error) {
	if err := c.require(HeaderSize); err != nil {
		return 0, err
	}
	return c.m.Length(), nil
}

// SetLength stores the total message length field.
func (c Checked) SetLength(n uint16) error {
	if err := c.require(HeaderSize); err != nil {
		return err
	}
	c.m.SetLength(n)
	return nil
}

// XID returns the transaction id.
func (c Checked) XID() (uint32, error) {
	if err := c.require(HeaderSize); err != nil {
		return 0, err
	}
	return c.m.XID(), nil
}

// SetXID stores the transaction id.
func (c Checked) SetXID(xid uint32) error {
	if err := c.require(HeaderSize); err != nil {
		return err
	}
	c.m.SetXID(xid)
	return nil
}

// StatsType returns the stats (multipart) type field.
func (c Checked) StatsType() (StatsType, error) {
	if err := c.require(MinStatsSize); err != nil {
		return 0, err
	}
	return c.m.StatsType(), nil
}

// SetStatsType stores the stats (multipart) type field.
func (c Checked) SetStatsType(s StatsType) error {
	if err := c.require(MinStatsSize); err != nil {
		return err
	}
	c.m.SetStatsType(s)
	return nil
}

// ExperimenterID returns the experimenter id.
func (c Checked) ExperimenterID() (uint32, error) {
	if err := c.require(MinExperimenterIDSize); err != nil {
		return 0, err
	}
	return c.m.ExperimenterID(), nil
}

// SetExperimenterID stores the experimenter id.
func (c Checked) SetExperimenterID(id uint32) error {
	if err := c.require(MinExperimenterIDSize); err != nil {
		return err
	}
	c.m.SetExperimenterID(id)
	return nil
}

// ExperimenterSubtype returns the experimenter subtype.
func (c Checked) ExperimenterSubtype() (uint32, error) {
	if err := c.require(MinExperimenterSize); err != nil {
		return 0, err
	}
	return c.m.ExperimenterSubtype(), nil
}

// SetExperimenterSubtype stores the experimenter subtype.
func (c Checked) SetExperimenterSubtype(sub uint32) error {
	if err := c.require(MinExperimenterSize); err != nil {
		return err
	}
	c.m.SetExperimenterSubtype(sub)
	return nil
}

// flowModCommandEnd returns one past the last byte of the flow-mod
// command field for the given version. This is stricter than
// MinFlowModSize for 1.0, where the published minimum stops one byte
// short of covering the whole 16-bit field.
func flowModCommandEnd(v Version) int {
	if v == Version10 {
		return FlowModCommandOffset10 + 2
	}
	return FlowModCommandOffset11 + 1
}

// FlowModCommand returns the flow-mod command field under the given
// protocol version's placement.
func (c Checked) FlowModCommand(v Version) (FlowModCommand, error) {
	if err := c.require(flowModCommandEnd(v)); err != nil {
		return 0, err
	}
	return c.m.FlowModCommand(v), nil
}

// SetFlowModCommand stores the flow-mod command field under the given
// protocol version's placement.
func (c Checked) SetFlowModCommand(v Version, cmd FlowModCommand) error {
	if err := c.require(flowModCommandEnd(v)); err != nil {
		return err
	}
	c.m.SetFlowModCommand(v, cmd)
	return nil
}
