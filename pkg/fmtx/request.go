package fmtx

import "fmt"

// Payload limits.
const (
	MaxPSTextLength  = 96
	MaxRTTextLength  = 64
	MaxRawDataLength = 256
	MaxPowerLevel    = 31
	MaxPTY           = 31
	MaxChunkSize     = MaxEventPayload
)

// MuteMode selects the transmitter audio mute.
type MuteMode uint8

// Mute modes.
const (
	MuteOff MuteMode = iota
	MuteOn
	MuteAttenuate
)

// PreEmphasis selects the pre-emphasis filter.
type PreEmphasis uint8

// Pre-emphasis filters.
const (
	PreEmphasisNone PreEmphasis = iota
	PreEmphasis50us
	PreEmphasis75us
)

// RDS PS display modes.
const (
	PSDisplayStatic uint8 = iota
	PSDisplayScroll
)

// Request is an application request for the engine.
//
// Value carries the scalar argument of the kind: frequency in kHz for Tune,
// level for SetPowerLevel, MuteMode, PreEmphasis, channel count (1 or 2)
// for SetMonoStereo, 0/1 for SetRDSTransmission and SetRDSMusicSpeech,
// RT type (0 = A, 1 = B) for SetRDSRTText, PI code, PTY, ECC, AF code,
// field mask and PS display mode for the corresponding RDS setters.
type Request struct {
	Kind    CommandKind
	Context interface{}
	Value   uint32
	// Text is PS text, RT text or raw RDS data.
	Text                []byte
	TrafficAnnouncement bool
	TrafficProgram      bool
	// Audio carries the source for ChangeAudioSource and the sample rate
	// for ChangeDigitalConfig.
	Audio AudioRequest
}

func maxTextLength(kind CommandKind) int {
	switch kind {
	case CmdSetRDSPSText:
		return MaxPSTextLength
	case CmdSetRDSRTText:
		return MaxRTTextLength
	case CmdSetRDSRawData:
		return MaxRawDataLength
	}
	return 0
}

func (r *Request) validate() error {
	if !r.Kind.IsValid() {
		return ErrUnknownCommand
	}
	bad := func(format string, args ...interface{}) error {
		return &ParamError{Kind: r.Kind, Reason: fmt.Sprintf(format, args...)}
	}
	if max := maxTextLength(r.Kind); len(r.Text) > max {
		return bad("payload length %d exceeds %d", len(r.Text), max)
	}
	switch r.Kind {
	case CmdTune:
		if r.Value == 0 {
			return bad("frequency required")
		}
	case CmdSetPowerLevel:
		if r.Value > MaxPowerLevel {
			return bad("power level %d exceeds %d", r.Value, MaxPowerLevel)
		}
	case CmdSetMuteMode:
		if r.Value > uint32(MuteAttenuate) {
			return bad("unknown mute mode %d", r.Value)
		}
	case CmdSetPreEmphasis:
		if r.Value > uint32(PreEmphasis75us) {
			return bad("unknown pre-emphasis %d", r.Value)
		}
	case CmdSetMonoStereo:
		if r.Value != 1 && r.Value != 2 {
			return bad("channel count must be 1 or 2")
		}
	case CmdChangeAudioSource:
		if r.Audio.Source > AudioDigital {
			return bad("unknown audio source %d", r.Audio.Source)
		}
	case CmdChangeDigitalConfig:
		if r.Audio.SampleRate == 0 {
			return bad("sample rate required")
		}
	case CmdSetRDSTransmission, CmdSetRDSMusicSpeech, CmdSetRDSRTText:
		if r.Value > 1 {
			return bad("value %d out of range", r.Value)
		}
	case CmdSetRDSPICode:
		if r.Value > 0xffff {
			return bad("PI code 0x%x out of range", r.Value)
		}
	case CmdSetRDSPTY:
		if r.Value > MaxPTY {
			return bad("PTY %d exceeds %d", r.Value, MaxPTY)
		}
	case CmdSetRDSECC, CmdSetRDSAFCode:
		if r.Value > 0xff {
			return bad("value %d out of range", r.Value)
		}
	case CmdSetRDSPSDisplayMode:
		if r.Value > uint32(PSDisplayScroll) {
			return bad("unknown display mode %d", r.Value)
		}
	}
	return nil
}
