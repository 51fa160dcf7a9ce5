// Package v1 defines the messages of fmtx.proto for github.com/golang/protobuf.
package v1

import (
	proto "github.com/golang/protobuf/proto"
)

// Typed is the envelope of every message on the wire.
type Typed struct {
	TypeId   uint32 `protobuf:"varint,1,opt,name=type_id,json=typeId,proto3" json:"type_id,omitempty"`
	Sequence uint32 `protobuf:"varint,2,opt,name=sequence,proto3" json:"sequence,omitempty"`
	Message  []byte `protobuf:"bytes,3,opt,name=message,proto3" json:"message,omitempty"`
}

func (m *Typed) Reset()         { *m = Typed{} }
func (m *Typed) String() string { return proto.CompactTextString(m) }
func (*Typed) ProtoMessage()    {}

// CommandOK is defined in fmtx.proto.
type CommandOK struct {
}

func (m *CommandOK) Reset()         { *m = CommandOK{} }
func (m *CommandOK) String() string { return proto.CompactTextString(m) }
func (*CommandOK) ProtoMessage()    {}

// CommandErr is defined in fmtx.proto.
type CommandErr struct {
	Message string `protobuf:"bytes,1,opt,name=message,proto3" json:"message,omitempty"`
}

func (m *CommandErr) Reset()         { *m = CommandErr{} }
func (m *CommandErr) String() string { return proto.CompactTextString(m) }
func (*CommandErr) ProtoMessage()    {}

// Request asks the transmitter to execute one command.
type Request struct {
	Kind                string `protobuf:"bytes,1,opt,name=kind,proto3" json:"kind,omitempty"`
	Value               uint32 `protobuf:"varint,2,opt,name=value,proto3" json:"value,omitempty"`
	Text                []byte `protobuf:"bytes,3,opt,name=text,proto3" json:"text,omitempty"`
	TrafficAnnouncement bool   `protobuf:"varint,4,opt,name=traffic_announcement,json=trafficAnnouncement,proto3" json:"traffic_announcement,omitempty"`
	TrafficProgram      bool   `protobuf:"varint,5,opt,name=traffic_program,json=trafficProgram,proto3" json:"traffic_program,omitempty"`
	AudioSource         uint32 `protobuf:"varint,6,opt,name=audio_source,json=audioSource,proto3" json:"audio_source,omitempty"`
	SampleRate          uint32 `protobuf:"varint,7,opt,name=sample_rate,json=sampleRate,proto3" json:"sample_rate,omitempty"`
}

func (m *Request) Reset()         { *m = Request{} }
func (m *Request) String() string { return proto.CompactTextString(m) }
func (*Request) ProtoMessage()    {}

// CommandDone is the completion of a Request.
type CommandDone struct {
	Kind                string   `protobuf:"bytes,1,opt,name=kind,proto3" json:"kind,omitempty"`
	Status              string   `protobuf:"bytes,2,opt,name=status,proto3" json:"status,omitempty"`
	StatusCode          uint32   `protobuf:"varint,3,opt,name=status_code,json=statusCode,proto3" json:"status_code,omitempty"`
	Value               uint32   `protobuf:"varint,4,opt,name=value,proto3" json:"value,omitempty"`
	Text                []byte   `protobuf:"bytes,5,opt,name=text,proto3" json:"text,omitempty"`
	TrafficAnnouncement bool     `protobuf:"varint,6,opt,name=traffic_announcement,json=trafficAnnouncement,proto3" json:"traffic_announcement,omitempty"`
	TrafficProgram      bool     `protobuf:"varint,7,opt,name=traffic_program,json=trafficProgram,proto3" json:"traffic_program,omitempty"`
	AudioSource         uint32   `protobuf:"varint,8,opt,name=audio_source,json=audioSource,proto3" json:"audio_source,omitempty"`
	SampleRate          uint32   `protobuf:"varint,9,opt,name=sample_rate,json=sampleRate,proto3" json:"sample_rate,omitempty"`
	Channels            uint32   `protobuf:"varint,10,opt,name=channels,proto3" json:"channels,omitempty"`
	Unavailable         []string `protobuf:"bytes,11,rep,name=unavailable,proto3" json:"unavailable,omitempty"`
}

func (m *CommandDone) Reset()         { *m = CommandDone{} }
func (m *CommandDone) String() string { return proto.CompactTextString(m) }
func (*CommandDone) ProtoMessage()    {}

// StatusQuery is defined in fmtx.proto.
type StatusQuery struct {
}

func (m *StatusQuery) Reset()         { *m = StatusQuery{} }
func (m *StatusQuery) String() string { return proto.CompactTextString(m) }
func (*StatusQuery) ProtoMessage()    {}

// DeviceStatus mirrors the configuration accepted by the chip.
type DeviceStatus struct {
	Enabled      bool   `protobuf:"varint,1,opt,name=enabled,proto3" json:"enabled,omitempty"`
	AsicVersion  uint32 `protobuf:"varint,2,opt,name=asic_version,json=asicVersion,proto3" json:"asic_version,omitempty"`
	FrequencyKhz uint32 `protobuf:"varint,3,opt,name=frequency_khz,json=frequencyKhz,proto3" json:"frequency_khz,omitempty"`
	PowerLevel   uint32 `protobuf:"varint,4,opt,name=power_level,json=powerLevel,proto3" json:"power_level,omitempty"`
	MuteMode     uint32 `protobuf:"varint,5,opt,name=mute_mode,json=muteMode,proto3" json:"mute_mode,omitempty"`
	PreEmphasis  uint32 `protobuf:"varint,6,opt,name=pre_emphasis,json=preEmphasis,proto3" json:"pre_emphasis,omitempty"`
	Channels     uint32 `protobuf:"varint,7,opt,name=channels,proto3" json:"channels,omitempty"`
	Transmitting bool   `protobuf:"varint,8,opt,name=transmitting,proto3" json:"transmitting,omitempty"`
	AudioSource  uint32 `protobuf:"varint,9,opt,name=audio_source,json=audioSource,proto3" json:"audio_source,omitempty"`
	SampleRate   uint32 `protobuf:"varint,10,opt,name=sample_rate,json=sampleRate,proto3" json:"sample_rate,omitempty"`
	RdsEnabled   bool   `protobuf:"varint,11,opt,name=rds_enabled,json=rdsEnabled,proto3" json:"rds_enabled,omitempty"`
	PsText       string `protobuf:"bytes,12,opt,name=ps_text,json=psText,proto3" json:"ps_text,omitempty"`
	RtText       string `protobuf:"bytes,13,opt,name=rt_text,json=rtText,proto3" json:"rt_text,omitempty"`
	PiCode       uint32 `protobuf:"varint,14,opt,name=pi_code,json=piCode,proto3" json:"pi_code,omitempty"`
	Pty          uint32 `protobuf:"varint,15,opt,name=pty,proto3" json:"pty,omitempty"`
	Pending      uint32 `protobuf:"varint,16,opt,name=pending,proto3" json:"pending,omitempty"`
	Executing    string `protobuf:"bytes,17,opt,name=executing,proto3" json:"executing,omitempty"`
}

func (m *DeviceStatus) Reset()         { *m = DeviceStatus{} }
func (m *DeviceStatus) String() string { return proto.CompactTextString(m) }
func (*DeviceStatus) ProtoMessage()    {}

func init() {
	proto.RegisterType((*Typed)(nil), "fmtx.v1.Typed")
	proto.RegisterType((*CommandOK)(nil), "fmtx.v1.CommandOK")
	proto.RegisterType((*CommandErr)(nil), "fmtx.v1.CommandErr")
	proto.RegisterType((*Request)(nil), "fmtx.v1.Request")
	proto.RegisterType((*CommandDone)(nil), "fmtx.v1.CommandDone")
	proto.RegisterType((*StatusQuery)(nil), "fmtx.v1.StatusQuery")
	proto.RegisterType((*DeviceStatus)(nil), "fmtx.v1.DeviceStatus")
}
