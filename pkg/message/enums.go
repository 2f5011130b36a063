// Package message implements the OpenFlow message wire format: the
// fixed header shared by every message and the version-dependent fields
// layered on top of it, as defined by the OpenFlow Switch Specification
// versions 1.0 through 1.5.
//
// The package provides:
//   - Zero-copy field accessors over caller-owned message buffers
//   - A bounds-checked accessor variant for untrusted buffer sizes
//   - Version, type, stats type, and flow-mod command enumerations
//   - TCP stream framing driven by the header length field
//   - Transaction id allocation for request/reply correlation
package message

import "fmt"

// Version is the protocol version byte carried at offset 0 of every
// OpenFlow message. Values are the on-wire encodings, not the marketing
// numbers: 1.0 is wire value 1, 1.3 is wire value 4.
//
// Unknown values round-trip through accessors untouched; only the
// helpers on this type treat them specially.
type Version uint8

const (
	// Version10 is OpenFlow 1.0 (wire value 0x01).
	Version10 Version = 1

	// Version11 is OpenFlow 1.1 (wire value 0x02).
	Version11 Version = 2

	// Version12 is OpenFlow 1.2 (wire value 0x03).
	Version12 Version = 3

	// Version13 is OpenFlow 1.3 (wire value 0x04).
	Version13 Version = 4

	// Version14 is OpenFlow 1.4 (wire value 0x05).
	Version14 Version = 5

	// Version15 is OpenFlow 1.5 (wire value 0x06).
	Version15 Version = 6
)

// String returns a human-readable name for the protocol version.
func (v Version) String() string {
	switch v {
	case Version10:
		return "1.0"
	case Version11:
		return "1.1"
	case Version12:
		return "1.2"
	case Version13:
		return "1.3"
	case Version14:
		return "1.4"
	case Version15:
		return "1.5"
	default:
		return "Unknown"
	}
}

// IsValid returns true if the version is a defined wire value.
func (v Version) IsValid() bool {
	return v >= Version10 && v <= Version15
}

// ParseVersion is the inverse of String: it returns the version named
// by s, accepting "1.0" through "1.5".
func ParseVersion(s string) (Version, error) {
	for v := Version10; v <= Version15; v++ {
		if v.String() == s {
			return v, nil
		}
	}
	return 0, fmt.Errorf("message: unknown version %q", s)
}

// Type is the message type byte carried at offset 1 of every OpenFlow
// message. Values 0 through 14 are identical in every protocol version;
// from 15 up the numbering diverges between 1.0 and the later versions.
type Type uint8

// Message types shared by all protocol versions.
const (
	TypeHello       Type = 0
	TypeError       Type = 1
	TypeEchoRequest Type = 2
	TypeEchoReply   Type = 3

	// TypeExperimenter is named Vendor in OpenFlow 1.0; the wire value
	// is the same.
	TypeExperimenter Type = 4

	TypeFeaturesRequest  Type = 5
	TypeFeaturesReply    Type = 6
	TypeGetConfigRequest Type = 7
	TypeGetConfigReply   Type = 8
	TypeSetConfig        Type = 9
	TypePacketIn         Type = 10
	TypeFlowRemoved      Type = 11
	TypePortStatus       Type = 12
	TypePacketOut        Type = 13
	TypeFlowMod          Type = 14
)

// Message types specific to OpenFlow 1.0.
const (
	TypePortMod10               Type = 15
	TypeStatsRequest10          Type = 16
	TypeStatsReply10            Type = 17
	TypeBarrierRequest10        Type = 18
	TypeBarrierReply10          Type = 19
	TypeQueueGetConfigRequest10 Type = 20
	TypeQueueGetConfigReply10   Type = 21
)

// Message types for OpenFlow 1.1 and later. MultipartRequest/Reply are
// named StatsRequest/Reply in 1.1 and 1.2; the wire values are the same.
const (
	TypeGroupMod              Type = 15
	TypePortMod               Type = 16
	TypeTableMod              Type = 17
	TypeMultipartRequest      Type = 18
	TypeMultipartReply        Type = 19
	TypeBarrierRequest        Type = 20
	TypeBarrierReply          Type = 21
	TypeQueueGetConfigRequest Type = 22
	TypeQueueGetConfigReply   Type = 23

	// OpenFlow 1.2 and later.
	TypeRoleRequest Type = 24
	TypeRoleReply   Type = 25

	// OpenFlow 1.3 and later.
	TypeGetAsyncRequest Type = 26
	TypeGetAsyncReply   Type = 27
	TypeSetAsync        Type = 28
	TypeMeterMod        Type = 29

	// OpenFlow 1.4 and later.
	TypeRoleStatus       Type = 30
	TypeTableStatus      Type = 31
	TypeRequestForward   Type = 32
	TypeBundleControl    Type = 33
	TypeBundleAddMessage Type = 34

	// OpenFlow 1.5.
	TypeControllerStatus Type = 35
)

// String returns the type name under the 1.3 numbering. Use Name for
// version-accurate names.
func (t Type) String() string {
	return t.Name(Version13)
}

// Name returns a human-readable name for the type under the given
// protocol version's numbering.
func (t Type) Name(v Version) string {
	switch t {
	case TypeHello:
		return "Hello"
	case TypeError:
		return "Error"
	case TypeEchoRequest:
		return "EchoRequest"
	case TypeEchoReply:
		return "EchoReply"
	case TypeExperimenter:
		if v == Version10 {
			return "Vendor"
		}
		return "Experimenter"
	case TypeFeaturesRequest:
		return "FeaturesRequest"
	case TypeFeaturesReply:
		return "FeaturesReply"
	case TypeGetConfigRequest:
		return "GetConfigRequest"
	case TypeGetConfigReply:
		return "GetConfigReply"
	case TypeSetConfig:
		return "SetConfig"
	case TypePacketIn:
		return "PacketIn"
	case TypeFlowRemoved:
		return "FlowRemoved"
	case TypePortStatus:
		return "PortStatus"
	case TypePacketOut:
		return "PacketOut"
	case TypeFlowMod:
		return "FlowMod"
	}

	if v == Version10 {
		switch t {
		case TypePortMod10:
			return "PortMod"
		case TypeStatsRequest10:
			return "StatsRequest"
		case TypeStatsReply10:
			return "StatsReply"
		case TypeBarrierRequest10:
			return "BarrierRequest"
		case TypeBarrierReply10:
			return "BarrierReply"
		case TypeQueueGetConfigRequest10:
			return "QueueGetConfigRequest"
		case TypeQueueGetConfigReply10:
			return "QueueGetConfigReply"
		default:
			return "Unknown"
		}
	}

	switch t {
	case TypeGroupMod:
		return "GroupMod"
	case TypePortMod:
		return "PortMod"
	case TypeTableMod:
		return "TableMod"
	case TypeMultipartRequest:
		if v == Version11 || v == Version12 {
			return "StatsRequest"
		}
		return "MultipartRequest"
	case TypeMultipartReply:
		if v == Version11 || v == Version12 {
			return "StatsReply"
		}
		return "MultipartReply"
	case TypeBarrierRequest:
		return "BarrierRequest"
	case TypeBarrierReply:
		return "BarrierReply"
	case TypeQueueGetConfigRequest:
		return "QueueGetConfigRequest"
	case TypeQueueGetConfigReply:
		return "QueueGetConfigReply"
	case TypeRoleRequest:
		return "RoleRequest"
	case TypeRoleReply:
		return "RoleReply"
	case TypeGetAsyncRequest:
		return "GetAsyncRequest"
	case TypeGetAsyncReply:
		return "GetAsyncReply"
	case TypeSetAsync:
		return "SetAsync"
	case TypeMeterMod:
		return "MeterMod"
	case TypeRoleStatus:
		return "RoleStatus"
	case TypeTableStatus:
		return "TableStatus"
	case TypeRequestForward:
		return "RequestForward"
	case TypeBundleControl:
		return "BundleControl"
	case TypeBundleAddMessage:
		return "BundleAddMessage"
	case TypeControllerStatus:
		return "ControllerStatus"
	default:
		return "Unknown"
	}
}

// IsValid returns true if the type is defined for the given protocol
// version.
func (t Type) IsValid(v Version) bool {
	switch v {
	case Version10:
		return t <= TypeQueueGetConfigReply10
	case Version11:
		return t <= TypeQueueGetConfigReply
	case Version12:
		return t <= TypeRoleReply
	case Version13:
		return t <= TypeMeterMod
	case Version14:
		return t <= TypeBundleAddMessage
	case Version15:
		return t <= TypeControllerStatus
	default:
		return false
	}
}

// IsStats returns true if the type is a stats (multipart) request or
// reply under the given protocol version's numbering. These are the
// messages carrying the stats type field at offset 8.
func (t Type) IsStats(v Version) bool {
	if v == Version10 {
		return t == TypeStatsRequest10 || t == TypeStatsReply10
	}
	return t == TypeMultipartRequest || t == TypeMultipartReply
}

// IsExperimenter returns true if the type is an experimenter (vendor)
// message, the carrier of the experimenter id and subtype fields.
func (t Type) IsExperimenter() bool {
	return t == TypeExperimenter
}

// IsFlowMod returns true if the type is a flow-mod message, the carrier
// of the version-dependent command field.
func (t Type) IsFlowMod() bool {
	return t == TypeFlowMod
}

// FlowModCommand is the command field of a flow-mod message. The value
// range is shared by every protocol version; only the field's wire
// placement differs (see Message.FlowModCommand).
type FlowModCommand uint8

const (
	// FlowModAdd adds a new flow entry.
	FlowModAdd FlowModCommand = 0

	// FlowModModify modifies all matching flow entries.
	FlowModModify FlowModCommand = 1

	// FlowModModifyStrict modifies entries strictly matching wildcards
	// and priority.
	FlowModModifyStrict FlowModCommand = 2

	// FlowModDelete deletes all matching flow entries.
	FlowModDelete FlowModCommand = 3

	// FlowModDeleteStrict deletes entries strictly matching wildcards
	// and priority.
	FlowModDeleteStrict FlowModCommand = 4
)

// String returns a human-readable name for the flow-mod command.
func (c FlowModCommand) String() string {
	switch c {
	case FlowModAdd:
		return "Add"
	case FlowModModify:
		return "Modify"
	case FlowModModifyStrict:
		return "ModifyStrict"
	case FlowModDelete:
		return "Delete"
	case FlowModDeleteStrict:
		return "DeleteStrict"
	default:
		return "Unknown"
	}
}

// IsValid returns true if the command is a defined value.
func (c FlowModCommand) IsValid() bool {
	return c <= FlowModDeleteStrict
}

// StatsType identifies the body carried by a stats (multipart) request
// or reply. It is encoded at offset 8 of those messages. The 1.0 stats
// types are a prefix of this numbering.
type StatsType uint16

const (
	StatsDesc          StatsType = 0
	StatsFlow          StatsType = 1
	StatsAggregate     StatsType = 2
	StatsTable         StatsType = 3
	StatsPortStats     StatsType = 4
	StatsQueue         StatsType = 5
	StatsGroup         StatsType = 6
	StatsGroupDesc     StatsType = 7
	StatsGroupFeatures StatsType = 8
	StatsMeter         StatsType = 9
	StatsMeterConfig   StatsType = 10
	StatsMeterFeatures StatsType = 11
	StatsTableFeatures StatsType = 12
	StatsPortDesc      StatsType = 13

	// OpenFlow 1.4 and later.
	StatsTableDesc   StatsType = 14
	StatsQueueDesc   StatsType = 15
	StatsFlowMonitor StatsType = 16

	// StatsExperimenter carries an experimenter-defined body.
	StatsExperimenter StatsType = 0xFFFF
)

// String returns a human-readable name for the stats type.
func (s StatsType) String() string {
	switch s {
	case StatsDesc:
		return "Desc"
	case StatsFlow:
		return "Flow"
	case StatsAggregate:
		return "Aggregate"
	case StatsTable:
		return "Table"
	case StatsPortStats:
		return "PortStats"
	case StatsQueue:
		return "Queue"
	case StatsGroup:
		return "Group"
	case StatsGroupDesc:
		return "GroupDesc"
	case StatsGroupFeatures:
		return "GroupFeatures"
	case StatsMeter:
		return "Meter"
	case StatsMeterConfig:
		return "MeterConfig"
	case StatsMeterFeatures:
		return "MeterFeatures"
	case StatsTableFeatures:
		return "TableFeatures"
	case StatsPortDesc:
		return "PortDesc"
	case StatsTableDesc:
		return "TableDesc"
	case StatsQueueDesc:
		return "QueueDesc"
	case StatsFlowMonitor:
		return "FlowMonitor"
	case StatsExperimenter:
		return "Experimenter"
	default:
		return "Unknown"
	}
}

// IsValid returns true if the stats type is defined by at least one
// protocol version.
func (s StatsType) IsValid() bool {
	return s <= StatsFlowMonitor || s == StatsExperimenter
}
