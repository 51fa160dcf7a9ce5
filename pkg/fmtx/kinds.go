package fmtx

import "strconv"

// CommandKind identifies the operation a request performs.
type CommandKind int

// Command kinds.
const (
	CmdEnable CommandKind = iota
	CmdDisable
	CmdTune
	CmdGetTunedFrequency
	CmdStartTransmission
	CmdStopTransmission
	CmdSetPowerLevel
	CmdGetPowerLevel
	CmdSetMuteMode
	CmdGetMuteMode
	CmdSetPreEmphasis
	CmdGetPreEmphasis
	CmdSetMonoStereo
	CmdGetMonoStereo
	CmdChangeAudioSource
	CmdChangeDigitalConfig
	CmdGetAudioConfig
	CmdSetRDSTransmission
	CmdGetRDSTransmission
	CmdSetRDSPSText
	CmdGetRDSPSText
	CmdSetRDSRTText
	CmdGetRDSRTText
	CmdSetRDSRawData
	CmdSetRDSPICode
	CmdGetRDSPICode
	CmdSetRDSPTY
	CmdGetRDSPTY
	CmdSetRDSECC
	CmdGetRDSECC
	CmdSetRDSAFCode
	CmdGetRDSAFCode
	CmdSetRDSTrafficCodes
	CmdGetRDSTrafficCodes
	CmdSetRDSMusicSpeech
	CmdGetRDSMusicSpeech
	CmdSetRDSFieldMask
	CmdGetRDSFieldMask
	CmdSetRDSPSDisplayMode
	CmdGetRDSPSDisplayMode

	numCommandKinds
)

var kindNames = [numCommandKinds]string{
	CmdEnable:              "enable",
	CmdDisable:             "disable",
	CmdTune:                "tune",
	CmdGetTunedFrequency:   "get-tuned-frequency",
	CmdStartTransmission:   "start-transmission",
	CmdStopTransmission:    "stop-transmission",
	CmdSetPowerLevel:       "set-power-level",
	CmdGetPowerLevel:       "get-power-level",
	CmdSetMuteMode:         "set-mute-mode",
	CmdGetMuteMode:         "get-mute-mode",
	CmdSetPreEmphasis:      "set-pre-emphasis",
	CmdGetPreEmphasis:      "get-pre-emphasis",
	CmdSetMonoStereo:       "set-mono-stereo",
	CmdGetMonoStereo:       "get-mono-stereo",
	CmdChangeAudioSource:   "change-audio-source",
	CmdChangeDigitalConfig: "change-digital-config",
	CmdGetAudioConfig:      "get-audio-config",
	CmdSetRDSTransmission:  "set-rds-transmission",
	CmdGetRDSTransmission:  "get-rds-transmission",
	CmdSetRDSPSText:        "set-rds-ps-text",
	CmdGetRDSPSText:        "get-rds-ps-text",
	CmdSetRDSRTText:        "set-rds-rt-text",
	CmdGetRDSRTText:        "get-rds-rt-text",
	CmdSetRDSRawData:       "set-rds-raw-data",
	CmdSetRDSPICode:        "set-rds-pi-code",
	CmdGetRDSPICode:        "get-rds-pi-code",
	CmdSetRDSPTY:           "set-rds-pty",
	CmdGetRDSPTY:           "get-rds-pty",
	CmdSetRDSECC:           "set-rds-ecc",
	CmdGetRDSECC:           "get-rds-ecc",
	CmdSetRDSAFCode:        "set-rds-af-code",
	CmdGetRDSAFCode:        "get-rds-af-code",
	CmdSetRDSTrafficCodes:  "set-rds-traffic-codes",
	CmdGetRDSTrafficCodes:  "get-rds-traffic-codes",
	CmdSetRDSMusicSpeech:   "set-rds-music-speech",
	CmdGetRDSMusicSpeech:   "get-rds-music-speech",
	CmdSetRDSFieldMask:     "set-rds-field-mask",
	CmdGetRDSFieldMask:     "get-rds-field-mask",
	CmdSetRDSPSDisplayMode: "set-rds-ps-display-mode",
	CmdGetRDSPSDisplayMode: "get-rds-ps-display-mode",
}

// IsValid indicates the kind is a known command kind.
func (k CommandKind) IsValid() bool {
	return k >= 0 && k < numCommandKinds
}

// String implements fmt.Stringer.
func (k CommandKind) String() string {
	if !k.IsValid() {
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// ParseCommandKind looks up a kind by its name.
func ParseCommandKind(name string) (CommandKind, bool) {
	for k, n := range kindNames {
		if n == name {
			return CommandKind(k), true
		}
	}
	return 0, false
}
