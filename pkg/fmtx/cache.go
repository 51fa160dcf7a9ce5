package fmtx

import (
	"bytes"
	"reflect"
)

// FirmwareCache mirrors the last configuration durably accepted by the chip.
type FirmwareCache struct {
	Enabled        bool
	ASICVersion    uint16
	Frequency      uint32 // kHz
	PowerLevel     uint8
	MuteMode       MuteMode
	PreEmphasis    PreEmphasis
	Channels       uint8
	TransmissionOn bool
	AudioSource    AudioSource
	SampleRate     uint32

	RDSEnabled          bool
	PSText              []byte
	PSDisplayMode       uint8
	RTText              []byte
	RTType              uint8
	RawData             []byte
	PICode              uint16
	PTY                 uint8
	ECC                 uint8
	AFCode              uint8
	TrafficAnnouncement bool
	TrafficProgram      bool
	MusicSpeech         uint8
	FieldMask           uint32
}

// DefaultCache returns the power-on configuration of the transmitter.
func DefaultCache() FirmwareCache {
	return FirmwareCache{
		Frequency:   87500,
		PowerLevel:  4,
		MuteMode:    MuteOff,
		PreEmphasis: PreEmphasis50us,
		Channels:    2,
		AudioSource: AudioAnalog,
		SampleRate:  48000,
		PSText:      []byte("FMTX"),
		PICode:      0xcafe,
		ECC:         0xe0,
		AFCode:      0xe0,
		MusicSpeech: 1,
		FieldMask:   0x0001,
	}
}

// Clone returns a deep copy.
func (fc FirmwareCache) Clone() FirmwareCache {
	fc.PSText = cloneBytes(fc.PSText)
	fc.RTText = cloneBytes(fc.RTText)
	fc.RawData = cloneBytes(fc.RawData)
	return fc
}

// Equal compares two caches field by field.
func (fc FirmwareCache) Equal(o FirmwareCache) bool {
	if !bytes.Equal(fc.PSText, o.PSText) ||
		!bytes.Equal(fc.RTText, o.RTText) ||
		!bytes.Equal(fc.RawData, o.RawData) {
		return false
	}
	fc.PSText, fc.RTText, fc.RawData = nil, nil, nil
	o.PSText, o.RTText, o.RawData = nil, nil, nil
	return reflect.DeepEqual(fc, o)
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}

// update applies a successfully completed command.
func (fc *FirmwareCache) update(c *command, info *currentInfo, defaults *FirmwareCache) {
	switch c.kind {
	case CmdEnable:
		*fc = defaults.Clone()
		fc.Enabled = true
		fc.ASICVersion = info.asic
	case CmdDisable:
		*fc = defaults.Clone()
	case CmdTune:
		fc.Frequency = c.value
	case CmdStartTransmission:
		fc.TransmissionOn = true
	case CmdStopTransmission:
		fc.TransmissionOn = false
	case CmdSetPowerLevel:
		fc.PowerLevel = uint8(c.value)
	case CmdSetMuteMode:
		fc.MuteMode = MuteMode(c.value)
	case CmdSetPreEmphasis:
		fc.PreEmphasis = PreEmphasis(c.value)
	case CmdSetMonoStereo:
		fc.Channels = uint8(c.value)
	case CmdChangeAudioSource:
		fc.AudioSource = c.audio.Source
	case CmdChangeDigitalConfig:
		fc.SampleRate = c.audio.SampleRate
	case CmdSetRDSTransmission:
		fc.RDSEnabled = c.value != 0
	case CmdSetRDSPSText:
		fc.PSText = cloneBytes(c.text)
	case CmdSetRDSRTText:
		fc.RTText = cloneBytes(c.text)
		fc.RTType = uint8(c.value)
	case CmdSetRDSRawData:
		fc.RawData = cloneBytes(c.text)
	case CmdSetRDSPICode:
		fc.PICode = uint16(c.value)
	case CmdSetRDSPTY:
		fc.PTY = uint8(c.value)
	case CmdSetRDSECC:
		fc.ECC = uint8(c.value)
	case CmdSetRDSAFCode:
		fc.AFCode = uint8(c.value)
	case CmdSetRDSTrafficCodes:
		fc.TrafficAnnouncement, fc.TrafficProgram = c.ta, c.tp
	case CmdSetRDSMusicSpeech:
		fc.MusicSpeech = uint8(c.value)
	case CmdSetRDSFieldMask:
		fc.FieldMask = c.value
	case CmdSetRDSPSDisplayMode:
		fc.PSDisplayMode = uint8(c.value)
	}
}

// matches reports whether a setter would not change the cached state.
func (fc *FirmwareCache) matches(c *command) bool {
	switch c.kind {
	case CmdTune:
		return fc.Frequency == c.value
	case CmdStartTransmission:
		return fc.TransmissionOn
	case CmdStopTransmission:
		return !fc.TransmissionOn
	case CmdSetPowerLevel:
		return uint32(fc.PowerLevel) == c.value
	case CmdSetMuteMode:
		return uint32(fc.MuteMode) == c.value
	case CmdSetPreEmphasis:
		return uint32(fc.PreEmphasis) == c.value
	case CmdSetMonoStereo:
		return uint32(fc.Channels) == c.value
	case CmdChangeAudioSource:
		return fc.AudioSource == c.audio.Source
	case CmdChangeDigitalConfig:
		return fc.SampleRate == c.audio.SampleRate
	case CmdSetRDSTransmission:
		return fc.RDSEnabled == (c.value != 0)
	case CmdSetRDSPICode:
		return uint32(fc.PICode) == c.value
	case CmdSetRDSPTY:
		return uint32(fc.PTY) == c.value
	case CmdSetRDSECC:
		return uint32(fc.ECC) == c.value
	case CmdSetRDSAFCode:
		return uint32(fc.AFCode) == c.value
	case CmdSetRDSTrafficCodes:
		return fc.TrafficAnnouncement == c.ta && fc.TrafficProgram == c.tp
	case CmdSetRDSMusicSpeech:
		return uint32(fc.MusicSpeech) == c.value
	case CmdSetRDSPSDisplayMode:
		return uint32(fc.PSDisplayMode) == c.value
	}
	return false
}

// audioRequest describes the current audio path.
func (fc *FirmwareCache) audioRequest() AudioRequest {
	return AudioRequest{
		Source:     fc.AudioSource,
		SampleRate: fc.SampleRate,
		Channels:   fc.Channels,
	}
}
