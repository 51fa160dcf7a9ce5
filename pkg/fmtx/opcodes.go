package fmtx

import (
	"fmt"
	"strconv"
)

// Opcode addresses a chip register or command.
type Opcode uint8

// Opcodes understood by the transmitter chip. Payloads are opaque to the
// engine; scalar values are encoded with EncodeValue.
const (
	OpPower           Opcode = 0x01
	OpASICVersion     Opcode = 0x02
	OpInterruptStatus Opcode = 0x03
	OpInterruptMask   Opcode = 0x04
	OpRefClock        Opcode = 0x05
	OpFrequency       Opcode = 0x10
	OpPowerLevel      Opcode = 0x11
	OpMuteMode        Opcode = 0x12
	OpPreEmphasis     Opcode = 0x13
	OpMonoStereo      Opcode = 0x14
	OpAudioIO         Opcode = 0x15
	OpDigitalConfig   Opcode = 0x16
	OpTransmission    Opcode = 0x17
	OpAudioDeviation  Opcode = 0x18
	OpPilotDeviation  Opcode = 0x19
	OpRDSTransmission Opcode = 0x20
	OpRDSPSLength     Opcode = 0x21
	OpRDSPSData       Opcode = 0x22
	OpRDSRTLength     Opcode = 0x23
	OpRDSRTData       Opcode = 0x24
	OpRDSRawLength    Opcode = 0x25
	OpRDSRawData      Opcode = 0x26
	OpRDSMaskLength   Opcode = 0x27
	OpRDSMaskData     Opcode = 0x28
	OpRDSPICode       Opcode = 0x29
	OpRDSPTY          Opcode = 0x2a
	OpRDSECC          Opcode = 0x2b
	OpRDSAFCode       Opcode = 0x2c
	OpRDSTraffic      Opcode = 0x2d
	OpRDSMusicSpeech  Opcode = 0x2e
	OpRDSPSDisplay    Opcode = 0x2f
)

var opcodeNames = map[Opcode]string{
	OpPower:           "power",
	OpASICVersion:     "asic-version",
	OpInterruptStatus: "int-status",
	OpInterruptMask:   "int-mask",
	OpRefClock:        "ref-clock",
	OpFrequency:       "frequency",
	OpPowerLevel:      "power-level",
	OpMuteMode:        "mute",
	OpPreEmphasis:     "pre-emphasis",
	OpMonoStereo:      "mono-stereo",
	OpAudioIO:         "audio-io",
	OpDigitalConfig:   "digital-config",
	OpTransmission:    "transmission",
	OpAudioDeviation:  "audio-deviation",
	OpPilotDeviation:  "pilot-deviation",
	OpRDSTransmission: "rds-transmission",
	OpRDSPSLength:     "rds-ps-length",
	OpRDSPSData:       "rds-ps-data",
	OpRDSRTLength:     "rds-rt-length",
	OpRDSRTData:       "rds-rt-data",
	OpRDSRawLength:    "rds-raw-length",
	OpRDSRawData:      "rds-raw-data",
	OpRDSMaskLength:   "rds-mask-length",
	OpRDSMaskData:     "rds-mask-data",
	OpRDSPICode:       "rds-pi",
	OpRDSPTY:          "rds-pty",
	OpRDSECC:          "rds-ecc",
	OpRDSAFCode:       "rds-af",
	OpRDSTraffic:      "rds-traffic",
	OpRDSMusicSpeech:  "rds-music-speech",
	OpRDSPSDisplay:    "rds-ps-display",
}

// String implements fmt.Stringer.
func (o Opcode) String() string {
	if name, ok := opcodeNames[o]; ok {
		return fmt.Sprintf("%s(0x%02x)", name, byte(o))
	}
	return fmt.Sprintf("op(0x%02x)", byte(o))
}

// Name returns the name of the opcode, or its number when unnamed.
func (o Opcode) Name() string {
	if name, ok := opcodeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("0x%02x", byte(o))
}

// ParseOpcode parses an opcode by name or number.
func ParseOpcode(s string) (Opcode, bool) {
	for op, name := range opcodeNames {
		if name == s {
			return op, true
		}
	}
	n, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, false
	}
	return Opcode(n), true
}

// InterruptMask is a set of chip interrupt bits.
type InterruptMask uint16

// Interrupt bits.
const (
	IntFrequencyReady InterruptMask = 1 << iota
	IntPowerEnabled
	IntInvalidParameter
	IntHardwareMalfunction
	IntRDSBufferEmpty

	// IntErrors are the bits that abort a stage waiting for any interrupt.
	IntErrors = IntInvalidParameter | IntHardwareMalfunction
	// IntInformational bits are reported once and then masked host-side
	// until a stage arms them again.
	IntInformational = IntRDSBufferEmpty
	// DefaultInterruptMask is written to the chip by Enable.
	DefaultInterruptMask = IntFrequencyReady | IntPowerEnabled | IntErrors | IntRDSBufferEmpty
)

// EncodeValue encodes a scalar register value (big-endian, 4 bytes).
func EncodeValue(v uint32) []byte {
	return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}

// DecodeValue decodes a big-endian value of up to 4 bytes.
func DecodeValue(b []byte) uint32 {
	if len(b) > 4 {
		b = b[len(b)-4:]
	}
	var v uint32
	for _, c := range b {
		v = v<<8 | uint32(c)
	}
	return v
}
