package msgs

import (
	"errors"

	"github.com/golang/protobuf/proto"

	pb "github.com/robotalks/fmtx/pkg/proto/fmtx/v1"
)

// CommandOK is the generic reply indicating success for commands.
type CommandOK struct {
	pb.CommandOK
}

// NewCommandOK creates a CommandOK.
func NewCommandOK() *CommandOK {
	return &CommandOK{}
}

// NewMessage implements SerializableMessage.
func (m *CommandOK) NewMessage() SerializableMessage { return &CommandOK{} }

// TypeID implements SerializableMessage.
func (m *CommandOK) TypeID() uint32 { return CommandOKTypeID }

// Serializable implements SerializableMessage.
func (m *CommandOK) Serializable() proto.Message { return &m.CommandOK }

// CommandErr is the generic message representing command error.
type CommandErr struct {
	pb.CommandErr
}

// NewCommandErr creates a CommandErr from an error.
func NewCommandErr(err error) *CommandErr {
	return NewCommandErrFromMsg(err.Error())
}

// NewCommandErrFromMsg creates a CommandErr.
func NewCommandErrFromMsg(message string) *CommandErr {
	return &CommandErr{
		CommandErr: pb.CommandErr{
			Message: message,
		},
	}
}

// NewMessage implements SerializableMessage.
func (m *CommandErr) NewMessage() SerializableMessage { return &CommandErr{} }

// TypeID implements SerializableMessage.
func (m *CommandErr) TypeID() uint32 { return CommandErrTypeID }

// Serializable implements SerializableMessage.
func (m *CommandErr) Serializable() proto.Message { return &m.CommandErr }

// Error implements error.
func (m *CommandErr) Error() string { return m.Message }

// Request asks the transmitter to execute a command.
type Request struct {
	pb.Request
}

// NewMessage implements SerializableMessage.
func (m *Request) NewMessage() SerializableMessage { return &Request{} }

// TypeID implements SerializableMessage.
func (m *Request) TypeID() uint32 { return RequestTypeID }

// Serializable implements SerializableMessage.
func (m *Request) Serializable() proto.Message { return &m.Request }

// CommandDone replies a Request when the command completes.
type CommandDone struct {
	pb.CommandDone
}

// NewMessage implements SerializableMessage.
func (m *CommandDone) NewMessage() SerializableMessage { return &CommandDone{} }

// TypeID implements SerializableMessage.
func (m *CommandDone) TypeID() uint32 { return CommandDoneTypeID }

// Serializable implements SerializableMessage.
func (m *CommandDone) Serializable() proto.Message { return &m.CommandDone }

// StatusQuery asks for the current DeviceStatus.
type StatusQuery struct {
	pb.StatusQuery
}

// NewMessage implements SerializableMessage.
func (m *StatusQuery) NewMessage() SerializableMessage { return &StatusQuery{} }

// TypeID implements SerializableMessage.
func (m *StatusQuery) TypeID() uint32 { return StatusQueryTypeID }

// Serializable implements SerializableMessage.
func (m *StatusQuery) Serializable() proto.Message { return &m.StatusQuery }

// DeviceStatus replies StatusQuery.
type DeviceStatus struct {
	pb.DeviceStatus
}

// NewMessage implements SerializableMessage.
func (m *DeviceStatus) NewMessage() SerializableMessage { return &DeviceStatus{} }

// TypeID implements SerializableMessage.
func (m *DeviceStatus) TypeID() uint32 { return DeviceStatusTypeID }

// Serializable implements SerializableMessage.
func (m *DeviceStatus) Serializable() proto.Message { return &m.DeviceStatus }

// StatusChanged is published when the chip configuration changes.
type StatusChanged struct {
	pb.DeviceStatus
}

// NewMessage implements SerializableMessage.
func (m *StatusChanged) NewMessage() SerializableMessage { return &StatusChanged{} }

// TypeID implements SerializableMessage.
func (m *StatusChanged) TypeID() uint32 { return StatusChangedTypeID }

// Serializable implements SerializableMessage.
func (m *StatusChanged) Serializable() proto.Message { return &m.DeviceStatus }

// TypeID Groups
const (
	GroupCommand uint32 = 0x00000000
	GroupFM      uint32 = 0x00030000
	GroupCustom  uint32 = 0x7f000000 // base group id for custom messages.
)

// TypeIDs
const (
	CommandOKTypeID     uint32 = GroupCommand | TypeIDMaskReply | 0x0000
	CommandErrTypeID    uint32 = GroupCommand | TypeIDMaskReply | 0x0001
	RequestTypeID       uint32 = GroupFM | 0x0000
	CommandDoneTypeID   uint32 = RequestTypeID | TypeIDMaskReply
	StatusQueryTypeID   uint32 = GroupFM | 0x0001
	DeviceStatusTypeID  uint32 = StatusQueryTypeID | TypeIDMaskReply
	StatusChangedTypeID uint32 = TypeIDKindEvent | GroupFM | 0x0001
)

var (
	// ErrUnknownCommand indicates the command is unknown.
	ErrUnknownCommand = errors.New("unknown command")
)

func init() {
	RegisterTypes(
		(*CommandOK)(nil),
		(*CommandErr)(nil),
		(*Request)(nil),
		(*CommandDone)(nil),
		(*StatusQuery)(nil),
		(*DeviceStatus)(nil),
		(*StatusChanged)(nil),
	)
}
