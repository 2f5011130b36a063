package message

import (
	"bytes"
	"testing"
)

// Wire vectors covering each field group, with byte layouts from the
// OpenFlow Switch Specification (v1.0.0 section 5.3, v1.3.5 section
// 7.3) as emitted by Open vSwitch.

// TestHelloVector reads a 1.3 hello carrying a version-bitmap element.
func TestHelloVector(t *testing.T) {
	encoded := []byte{
		0x04, 0x00, 0x00, 0x10, 0x00, 0x00, 0x00, 0x01, // header
		0x00, 0x01, 0x00, 0x08, 0x00, 0x00, 0x00, 0x10, // versionbitmap element
	}

	m := Message(encoded)
	if got := m.Version(); got != Version13 {
		t.Errorf("Version() = %v, want 1.3", got)
	}
	if got := m.Type(); got != TypeHello {
		t.Errorf("Type() = %v, want Hello", got)
	}
	if got := m.Length(); got != 16 {
		t.Errorf("Length() = %d, want 16", got)
	}
	if got := m.XID(); got != 1 {
		t.Errorf("XID() = %d, want 1", got)
	}
	if got := len(m.Payload()); got != 8 {
		t.Errorf("Payload() length = %d, want 8", got)
	}
}

// TestEchoRequestVector reads a minimal 1.0 echo request.
func TestEchoRequestVector(t *testing.T) {
	encoded := []byte{0x01, 0x02, 0x00, 0x08, 0x00, 0x00, 0x00, 0x2A}

	m := Message(encoded)
	if got := m.Version(); got != Version10 {
		t.Errorf("Version() = %v, want 1.0", got)
	}
	if got := m.Type(); got != TypeEchoRequest {
		t.Errorf("Type() = %v, want EchoRequest", got)
	}
	if got := m.Length(); got != 8 {
		t.Errorf("Length() = %d, want 8", got)
	}
	if got := m.XID(); got != 42 {
		t.Errorf("XID() = %d, want 42", got)
	}
}

// TestMultipartRequestVector round-trips a 1.3 port-desc multipart
// request: decode via accessors, then rebuild it byte for byte.
func TestMultipartRequestVector(t *testing.T) {
	encoded := []byte{
		0x04, 0x12, 0x00, 0x10, 0x00, 0x00, 0x00, 0x02, // header
		0x00, 0x0D, 0x00, 0x00, // stats type PortDesc, flags 0
		0x00, 0x00, 0x00, 0x00, // pad
	}

	m := Message(encoded)
	if got := m.Type(); got != TypeMultipartRequest {
		t.Errorf("Type() = %v, want MultipartRequest", got)
	}
	if !m.Type().IsStats(m.Version()) {
		t.Error("IsStats() = false for a multipart request")
	}
	if got := m.StatsType(); got != StatsPortDesc {
		t.Errorf("StatsType() = %v, want PortDesc", got)
	}

	built := New(Version13, TypeMultipartRequest, 2, 8)
	built.SetStatsType(StatsPortDesc)
	if !bytes.Equal(built, encoded) {
		t.Errorf("built message mismatch:\n  got:  %x\n  want: %x", []byte(built), encoded)
	}
}

// TestVendorVector round-trips a 1.0 Nicira vendor message. The vendor
// id sits where stats messages carry their type; both reads are shown
// against the same bytes.
func TestVendorVector(t *testing.T) {
	encoded := []byte{
		0x01, 0x04, 0x00, 0x10, 0x00, 0x00, 0x00, 0x03, // header
		0x00, 0x00, 0x23, 0x20, // vendor id (Nicira)
		0x00, 0x00, 0x00, 0x0A, // subtype
	}

	m := Message(encoded)
	if got := m.Type(); got != TypeExperimenter {
		t.Errorf("Type() = %v, want Experimenter", got)
	}
	if got := m.Type().Name(m.Version()); got != "Vendor" {
		t.Errorf("Name(1.0) = %q, want Vendor", got)
	}
	if got := m.ExperimenterID(); got != 0x00002320 {
		t.Errorf("ExperimenterID() = %08x, want 00002320", got)
	}
	if got := m.ExperimenterSubtype(); got != 10 {
		t.Errorf("ExperimenterSubtype() = %d, want 10", got)
	}

	// The aliased stats-type read sees the vendor id's high half.
	if got := m.StatsType(); got != 0x0000 {
		t.Errorf("StatsType() = %04x, want 0000 (aliased)", uint16(got))
	}

	built := New(Version10, TypeExperimenter, 3, 8)
	built.SetExperimenterID(0x00002320)
	built.SetExperimenterSubtype(10)
	if !bytes.Equal(built, encoded) {
		t.Errorf("built message mismatch:\n  got:  %x\n  want: %x", []byte(built), encoded)
	}
}

// TestFlowModVector13 reads a complete 1.3 flow-mod add (56 bytes: the
// fixed flow-mod header plus an empty OXM match).
func TestFlowModVector13(t *testing.T) {
	encoded := []byte{
		0x04, 0x0E, 0x00, 0x38, 0x00, 0x00, 0x00, 0x05, // header
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // cookie
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // cookie mask
		0x00,       // table id
		0x00,       // command: add
		0x00, 0x00, // idle timeout
		0x00, 0x00, // hard timeout
		0x80, 0x00, // priority
		0xFF, 0xFF, 0xFF, 0xFF, // buffer id (none)
		0xFF, 0xFF, 0xFF, 0xFF, // out port (any)
		0xFF, 0xFF, 0xFF, 0xFF, // out group (any)
		0x00, 0x01, // flags: send flow removed
		0x00, 0x00, // pad
		0x00, 0x01, 0x00, 0x04, // match: OXM, length 4
		0x00, 0x00, 0x00, 0x00, // match pad
	}

	m := Message(encoded)
	if got := m.Length(); got != 56 {
		t.Errorf("Length() = %d, want 56", got)
	}
	if got := m.Type(); got != TypeFlowMod {
		t.Errorf("Type() = %v, want FlowMod", got)
	}
	if got := m.FlowModCommand(m.Version()); got != FlowModAdd {
		t.Errorf("FlowModCommand() = %v, want Add", got)
	}
	if min := MinSizeForType(m.Version(), m.Type()); len(m) < min {
		t.Errorf("vector is %d bytes, below MinSizeForType %d", len(m), min)
	}
}

// TestFlowModVector10 reads a complete 1.0 flow-mod delete (72 bytes:
// header, 40-byte match, cookie, then the 16-bit command at offset 56).
func TestFlowModVector10(t *testing.T) {
	encoded := []byte{
		0x01, 0x0E, 0x00, 0x48, 0x00, 0x00, 0x00, 0x06, // header
		0x00, 0x3F, 0xFF, 0xFF, // wildcards: all
		0x00, 0x00, // in port
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // dl src
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // dl dst
		0x00, 0x00, // dl vlan
		0x00,       // dl pcp
		0x00,       // pad
		0x00, 0x00, // dl type
		0x00,       // nw tos
		0x00,       // nw proto
		0x00, 0x00, // pad
		0x00, 0x00, 0x00, 0x00, // nw src
		0x00, 0x00, 0x00, 0x00, // nw dst
		0x00, 0x00, // tp src
		0x00, 0x00, // tp dst
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // cookie
		0x00, 0x03, // command: delete
		0x00, 0x00, // idle timeout
		0x00, 0x00, // hard timeout
		0x00, 0x00, // priority
		0xFF, 0xFF, 0xFF, 0xFF, // buffer id (none)
		0xFF, 0xFF, // out port (none)
		0x00, 0x00, // flags
	}

	m := Message(encoded)
	if got := m.Length(); got != 72 {
		t.Errorf("Length() = %d, want 72", got)
	}
	if got := m.Version(); got != Version10 {
		t.Errorf("Version() = %v, want 1.0", got)
	}
	if got := m.FlowModCommand(m.Version()); got != FlowModDelete {
		t.Errorf("FlowModCommand() = %v, want Delete", got)
	}
	if min := MinSizeForType(m.Version(), m.Type()); len(m) < min {
		t.Errorf("vector is %d bytes, below MinSizeForType %d", len(m), min)
	}

	// The same bytes read under the wrong version land on the match
	// structure, not the command field.
	if got := m.FlowModCommand(Version13); got == FlowModDelete {
		t.Error("FlowModCommand(1.3) on a 1.0 body should not see the command")
	}
}
