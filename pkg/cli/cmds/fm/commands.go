package fm

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/fmtx/pkg/cli/sh"
	"github.com/robotalks/fmtx/pkg/fmtx"
	"github.com/robotalks/fmtx/pkg/l1/msgs"
)

// RequestBuilder converts shell arguments into an engine request.
type RequestBuilder func(args []string) (fmtx.Request, error)

func requestCmd(name string, aliases []string, help string, build RequestBuilder) *ishell.Cmd {
	return &ishell.Cmd{
		Name:    name,
		Aliases: aliases,
		Help:    help,
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			req, err := build(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoCommand(c, msgs.NewRequest(req))
		}),
	}
}

func simple(kind fmtx.CommandKind) RequestBuilder {
	return func([]string) (fmtx.Request, error) {
		return fmtx.Request{Kind: kind}, nil
	}
}

func arg(args []string, name string) (string, error) {
	if len(args) < 1 {
		return "", fmt.Errorf("%s required", name)
	}
	return args[0], nil
}

func uintArg(kind fmtx.CommandKind, name string) RequestBuilder {
	return func(args []string) (fmtx.Request, error) {
		str, err := arg(args, name)
		if err != nil {
			return fmtx.Request{}, err
		}
		val, err := strconv.ParseUint(str, 0, 32)
		if err != nil {
			return fmtx.Request{}, fmt.Errorf("invalid %s: %v", name, err)
		}
		return fmtx.Request{Kind: kind, Value: uint32(val)}, nil
	}
}

func choiceArg(kind fmtx.CommandKind, name string, choices map[string]uint32) RequestBuilder {
	return func(args []string) (fmtx.Request, error) {
		str, err := arg(args, name)
		if err != nil {
			return fmtx.Request{}, err
		}
		val, ok := choices[strings.ToLower(str)]
		if !ok {
			return fmtx.Request{}, fmt.Errorf("invalid %s: %q", name, str)
		}
		return fmtx.Request{Kind: kind, Value: val}, nil
	}
}

func textArg(kind fmtx.CommandKind, name string) RequestBuilder {
	return func(args []string) (fmtx.Request, error) {
		if len(args) < 1 {
			return fmtx.Request{}, fmt.Errorf("%s required", name)
		}
		return fmtx.Request{Kind: kind, Text: []byte(strings.Join(args, " "))}, nil
	}
}

var onOff = map[string]uint32{"off": 0, "on": 1, "0": 0, "1": 1}

// ParseFrequency parses a frequency in MHz into kHz.
func ParseFrequency(str string) (uint32, error) {
	mhz, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid frequency: %v", err)
	}
	if mhz <= 0 || mhz > 1000 {
		return 0, fmt.Errorf("invalid frequency: %s", str)
	}
	return uint32(math.Round(mhz * 1000)), nil
}

// BuildTune builds a Tune request from "MHZ".
func BuildTune(args []string) (fmtx.Request, error) {
	str, err := arg(args, "MHZ")
	if err != nil {
		return fmtx.Request{}, err
	}
	khz, err := ParseFrequency(str)
	if err != nil {
		return fmtx.Request{}, err
	}
	return fmtx.Request{Kind: fmtx.CmdTune, Value: khz}, nil
}

// BuildAudioSource builds a ChangeAudioSource request from "analog|digital".
func BuildAudioSource(args []string) (fmtx.Request, error) {
	str, err := arg(args, "SOURCE")
	if err != nil {
		return fmtx.Request{}, err
	}
	req := fmtx.Request{Kind: fmtx.CmdChangeAudioSource}
	switch strings.ToLower(str) {
	case "analog":
		req.Audio.Source = fmtx.AudioAnalog
	case "digital":
		req.Audio.Source = fmtx.AudioDigital
	default:
		return req, fmt.Errorf("invalid SOURCE: %q", str)
	}
	return req, nil
}

// BuildSampleRate builds a ChangeDigitalConfig request from "HZ".
func BuildSampleRate(args []string) (fmtx.Request, error) {
	str, err := arg(args, "HZ")
	if err != nil {
		return fmtx.Request{}, err
	}
	hz, err := strconv.ParseUint(str, 10, 32)
	if err != nil {
		return fmtx.Request{}, fmt.Errorf("invalid HZ: %v", err)
	}
	req := fmtx.Request{Kind: fmtx.CmdChangeDigitalConfig}
	req.Audio.SampleRate = uint32(hz)
	return req, nil
}

// BuildRT builds a SetRDSRTText request from "[-b] TEXT".
func BuildRT(args []string) (fmtx.Request, error) {
	var rtType uint32
	if len(args) > 0 && args[0] == "-b" {
		rtType, args = 1, args[1:]
	}
	req, err := textArg(fmtx.CmdSetRDSRTText, "TEXT")(args)
	req.Value = rtType
	return req, err
}

// BuildRaw builds a SetRDSRawData request from hex bytes.
func BuildRaw(args []string) (fmtx.Request, error) {
	if len(args) < 1 {
		return fmtx.Request{}, fmt.Errorf("HEX required")
	}
	var data []byte
	for _, a := range args {
		for _, b := range strings.Split(a, ",") {
			if b == "" {
				continue
			}
			val, err := strconv.ParseUint(strings.TrimPrefix(b, "0x"), 16, 8)
			if err != nil {
				return fmtx.Request{}, fmt.Errorf("invalid HEX %q: %v", b, err)
			}
			data = append(data, byte(val))
		}
	}
	return fmtx.Request{Kind: fmtx.CmdSetRDSRawData, Text: data}, nil
}

// BuildTraffic builds a SetRDSTrafficCodes request from "TA TP".
func BuildTraffic(args []string) (fmtx.Request, error) {
	if len(args) < 2 {
		return fmtx.Request{}, fmt.Errorf("TA and TP required")
	}
	var flags [2]bool
	for n := range flags {
		val, ok := onOff[strings.ToLower(args[n])]
		if !ok {
			return fmtx.Request{}, fmt.Errorf("invalid flag: %q", args[n])
		}
		flags[n] = val != 0
	}
	return fmtx.Request{
		Kind:                fmtx.CmdSetRDSTrafficCodes,
		TrafficAnnouncement: flags[0],
		TrafficProgram:      flags[1],
	}, nil
}

// Getters maps the names accepted by fm.get to query kinds.
var Getters = map[string]fmtx.CommandKind{
	"freq":        fmtx.CmdGetTunedFrequency,
	"power":       fmtx.CmdGetPowerLevel,
	"mute":        fmtx.CmdGetMuteMode,
	"preemphasis": fmtx.CmdGetPreEmphasis,
	"channels":    fmtx.CmdGetMonoStereo,
	"audio":       fmtx.CmdGetAudioConfig,
	"rds":         fmtx.CmdGetRDSTransmission,
	"ps":          fmtx.CmdGetRDSPSText,
	"rt":          fmtx.CmdGetRDSRTText,
	"pi":          fmtx.CmdGetRDSPICode,
	"pty":         fmtx.CmdGetRDSPTY,
	"ecc":         fmtx.CmdGetRDSECC,
	"af":          fmtx.CmdGetRDSAFCode,
	"traffic":     fmtx.CmdGetRDSTrafficCodes,
	"ms":          fmtx.CmdGetRDSMusicSpeech,
	"mask":        fmtx.CmdGetRDSFieldMask,
	"psmode":      fmtx.CmdGetRDSPSDisplayMode,
}

// BuildGet builds a query request from a getter name.
func BuildGet(args []string) (fmtx.Request, error) {
	str, err := arg(args, "NAME")
	if err != nil {
		return fmtx.Request{}, err
	}
	kind, ok := Getters[strings.ToLower(str)]
	if !ok {
		return fmtx.Request{}, fmt.Errorf("unknown NAME: %q", str)
	}
	return fmtx.Request{Kind: kind}, nil
}

// Commands lists the FM and RDS shell commands.
var Commands = []*ishell.Cmd{
	requestCmd("fm.enable", []string{"on"}, "", simple(fmtx.CmdEnable)),
	requestCmd("fm.disable", []string{"off"}, "", simple(fmtx.CmdDisable)),
	requestCmd("fm.tune", []string{"tune"}, "MHZ", BuildTune),
	requestCmd("fm.tx.start", []string{"tx"}, "", simple(fmtx.CmdStartTransmission)),
	requestCmd("fm.tx.stop", []string{"notx"}, "", simple(fmtx.CmdStopTransmission)),
	requestCmd("fm.power", nil, "LEVEL(0-31)", uintArg(fmtx.CmdSetPowerLevel, "LEVEL")),
	requestCmd("fm.mute", nil, "off|on|attenuate", choiceArg(fmtx.CmdSetMuteMode, "MODE", map[string]uint32{
		"off":       uint32(fmtx.MuteOff),
		"on":        uint32(fmtx.MuteOn),
		"attenuate": uint32(fmtx.MuteAttenuate),
	})),
	requestCmd("fm.preemphasis", nil, "none|50|75", choiceArg(fmtx.CmdSetPreEmphasis, "FILTER", map[string]uint32{
		"none": uint32(fmtx.PreEmphasisNone),
		"50":   uint32(fmtx.PreEmphasis50us),
		"75":   uint32(fmtx.PreEmphasis75us),
	})),
	requestCmd("fm.mono", nil, "", func([]string) (fmtx.Request, error) {
		return fmtx.Request{Kind: fmtx.CmdSetMonoStereo, Value: 1}, nil
	}),
	requestCmd("fm.stereo", nil, "", func([]string) (fmtx.Request, error) {
		return fmtx.Request{Kind: fmtx.CmdSetMonoStereo, Value: 2}, nil
	}),
	requestCmd("fm.source", nil, "analog|digital", BuildAudioSource),
	requestCmd("fm.samplerate", nil, "HZ", BuildSampleRate),
	requestCmd("fm.get", nil, "NAME", BuildGet),
	requestCmd("rds.on", nil, "", func([]string) (fmtx.Request, error) {
		return fmtx.Request{Kind: fmtx.CmdSetRDSTransmission, Value: 1}, nil
	}),
	requestCmd("rds.off", nil, "", func([]string) (fmtx.Request, error) {
		return fmtx.Request{Kind: fmtx.CmdSetRDSTransmission}, nil
	}),
	requestCmd("rds.ps", nil, "TEXT", textArg(fmtx.CmdSetRDSPSText, "TEXT")),
	requestCmd("rds.rt", nil, "[-b] TEXT", BuildRT),
	requestCmd("rds.raw", nil, "HEX...", BuildRaw),
	requestCmd("rds.pi", nil, "CODE", uintArg(fmtx.CmdSetRDSPICode, "CODE")),
	requestCmd("rds.pty", nil, "PTY(0-31)", uintArg(fmtx.CmdSetRDSPTY, "PTY")),
	requestCmd("rds.ecc", nil, "ECC", uintArg(fmtx.CmdSetRDSECC, "ECC")),
	requestCmd("rds.af", nil, "CODE", uintArg(fmtx.CmdSetRDSAFCode, "CODE")),
	requestCmd("rds.traffic", nil, "TA(on|off) TP(on|off)", BuildTraffic),
	requestCmd("rds.ms", nil, "music|speech", choiceArg(fmtx.CmdSetRDSMusicSpeech, "MODE", map[string]uint32{
		"speech": 0,
		"music":  1,
	})),
	requestCmd("rds.mask", nil, "MASK", uintArg(fmtx.CmdSetRDSFieldMask, "MASK")),
	requestCmd("rds.psmode", nil, "static|scroll", choiceArg(fmtx.CmdSetRDSPSDisplayMode, "MODE", map[string]uint32{
		"static": uint32(fmtx.PSDisplayStatic),
		"scroll": uint32(fmtx.PSDisplayScroll),
	})),
}

// StatusCmd queries the device status.
var StatusCmd = ishell.Cmd{
	Name:    "fm.status",
	Aliases: []string{"st"},
	Help:    "",
	Func: sh.MustBeConnected(func(c *ishell.Context) {
		sh.DoCommand(c, &msgs.StatusQuery{})
	}),
}

func init() {
	sh.AddCmds(Commands...)
	sh.AddCmds(&StatusCmd)
}
