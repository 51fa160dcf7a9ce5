package msgs

import (
	"github.com/robotalks/fmtx/pkg/fmtx"
	pb "github.com/robotalks/fmtx/pkg/proto/fmtx/v1"
)

// NewRequest creates a Request message from an engine request.
func NewRequest(req fmtx.Request) *Request {
	return &Request{Request: pb.Request{
		Kind:                req.Kind.String(),
		Value:               req.Value,
		Text:                req.Text,
		TrafficAnnouncement: req.TrafficAnnouncement,
		TrafficProgram:      req.TrafficProgram,
		AudioSource:         uint32(req.Audio.Source),
		SampleRate:          req.Audio.SampleRate,
	}}
}

// EngineRequest converts the message into an engine request.
func (m *Request) EngineRequest() (fmtx.Request, error) {
	kind, ok := fmtx.ParseCommandKind(m.Kind)
	if !ok {
		return fmtx.Request{}, ErrUnknownCommand
	}
	return fmtx.Request{
		Kind:                kind,
		Value:               m.Value,
		Text:                m.Text,
		TrafficAnnouncement: m.TrafficAnnouncement,
		TrafficProgram:      m.TrafficProgram,
		Audio: fmtx.AudioRequest{
			Source:     fmtx.AudioSource(m.AudioSource),
			SampleRate: m.SampleRate,
		},
	}, nil
}

// NewCommandDone creates the reply of a completed command.
func NewCommandDone(ev *fmtx.Event) *CommandDone {
	m := &CommandDone{CommandDone: pb.CommandDone{
		Kind:                ev.Kind.String(),
		Status:              ev.Status.String(),
		StatusCode:          uint32(ev.Status),
		Value:               ev.Value,
		Text:                ev.Text,
		TrafficAnnouncement: ev.TrafficAnnouncement,
		TrafficProgram:      ev.TrafficProgram,
		AudioSource:         uint32(ev.Audio.Source),
		SampleRate:          ev.Audio.SampleRate,
		Channels:            uint32(ev.Audio.Channels),
	}}
	for _, r := range ev.Unavailable {
		m.Unavailable = append(m.Unavailable, r.String())
	}
	return m
}

// EngineStatus returns the completion status.
func (m *CommandDone) EngineStatus() fmtx.Status {
	return fmtx.Status(m.StatusCode)
}

// Err returns nil on success, otherwise a *fmtx.StatusError.
func (m *CommandDone) Err() error {
	st := m.EngineStatus()
	if st == fmtx.StatusSuccess {
		return nil
	}
	kind, _ := fmtx.ParseCommandKind(m.Kind)
	return &fmtx.StatusError{Kind: kind, Status: st}
}

// StatusOf builds the status message body from the engine state.
func StatusOf(cache fmtx.FirmwareCache, pending int, executing string) pb.DeviceStatus {
	return pb.DeviceStatus{
		Enabled:      cache.Enabled,
		AsicVersion:  uint32(cache.ASICVersion),
		FrequencyKhz: cache.Frequency,
		PowerLevel:   uint32(cache.PowerLevel),
		MuteMode:     uint32(cache.MuteMode),
		PreEmphasis:  uint32(cache.PreEmphasis),
		Channels:     uint32(cache.Channels),
		Transmitting: cache.TransmissionOn,
		AudioSource:  uint32(cache.AudioSource),
		SampleRate:   cache.SampleRate,
		RdsEnabled:   cache.RDSEnabled,
		PsText:       string(cache.PSText),
		RtText:       string(cache.RTText),
		PiCode:       uint32(cache.PICode),
		Pty:          uint32(cache.PTY),
		Pending:      uint32(pending),
		Executing:    executing,
	}
}
