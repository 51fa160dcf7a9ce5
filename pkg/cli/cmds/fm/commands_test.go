package fm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/fmtx/pkg/fmtx"
)

func TestParseFrequency(t *testing.T) {
	testCases := []struct {
		in  string
		khz uint32
		err bool
	}{
		{"94.5", 94500, false},
		{"101.1", 101100, false},
		{"87.55", 87550, false},
		{"0", 0, true},
		{"-1", 0, true},
		{"abc", 0, true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			khz, err := ParseFrequency(tc.in)
			if tc.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.khz, khz)
		})
	}
}

func TestBuilders(t *testing.T) {
	testCases := []struct {
		name  string
		build RequestBuilder
		args  []string
		req   fmtx.Request
	}{
		{"tune", BuildTune, []string{"94.5"}, fmtx.Request{Kind: fmtx.CmdTune, Value: 94500}},
		{"source", BuildAudioSource, []string{"Digital"},
			fmtx.Request{Kind: fmtx.CmdChangeAudioSource, Audio: fmtx.AudioRequest{Source: fmtx.AudioDigital}}},
		{"samplerate", BuildSampleRate, []string{"44100"},
			fmtx.Request{Kind: fmtx.CmdChangeDigitalConfig, Audio: fmtx.AudioRequest{SampleRate: 44100}}},
		{"rt-a", BuildRT, []string{"hello", "world"},
			fmtx.Request{Kind: fmtx.CmdSetRDSRTText, Text: []byte("hello world")}},
		{"rt-b", BuildRT, []string{"-b", "news"},
			fmtx.Request{Kind: fmtx.CmdSetRDSRTText, Value: 1, Text: []byte("news")}},
		{"raw", BuildRaw, []string{"0x01,02", "ff"},
			fmtx.Request{Kind: fmtx.CmdSetRDSRawData, Text: []byte{1, 2, 0xff}}},
		{"traffic", BuildTraffic, []string{"on", "off"},
			fmtx.Request{Kind: fmtx.CmdSetRDSTrafficCodes, TrafficAnnouncement: true}},
		{"get", BuildGet, []string{"PS"}, fmtx.Request{Kind: fmtx.CmdGetRDSPSText}},
		{"power", uintArg(fmtx.CmdSetPowerLevel, "LEVEL"), []string{"12"},
			fmtx.Request{Kind: fmtx.CmdSetPowerLevel, Value: 12}},
		{"pi-hex", uintArg(fmtx.CmdSetRDSPICode, "CODE"), []string{"0xbeef"},
			fmtx.Request{Kind: fmtx.CmdSetRDSPICode, Value: 0xbeef}},
		{"enable", simple(fmtx.CmdEnable), nil, fmtx.Request{Kind: fmtx.CmdEnable}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := tc.build(tc.args)
			require.NoError(t, err)
			require.Equal(t, tc.req, req)
		})
	}
}

func TestBuilderErrors(t *testing.T) {
	testCases := []struct {
		name  string
		build RequestBuilder
		args  []string
	}{
		{"tune-missing", BuildTune, nil},
		{"tune-bad", BuildTune, []string{"fm"}},
		{"source-bad", BuildAudioSource, []string{"spdif"}},
		{"samplerate-bad", BuildSampleRate, []string{"fast"}},
		{"rt-empty", BuildRT, []string{"-b"}},
		{"raw-bad", BuildRaw, []string{"zz"}},
		{"traffic-short", BuildTraffic, []string{"on"}},
		{"traffic-bad", BuildTraffic, []string{"yes", "no"}},
		{"get-unknown", BuildGet, []string{"volume"}},
		{"mute-bad", choiceArg(fmtx.CmdSetMuteMode, "MODE", map[string]uint32{"on": 1}), []string{"loud"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.build(tc.args)
			require.Error(t, err)
		})
	}
}

func TestCommandNames(t *testing.T) {
	names := make(map[string]bool)
	for _, cmd := range append(Commands, &StatusCmd) {
		require.False(t, names[cmd.Name], cmd.Name)
		names[cmd.Name] = true
	}
	for _, name := range []string{"fm.enable", "fm.tune", "fm.tx.start", "rds.ps", "rds.traffic", "fm.status"} {
		require.True(t, names[name], name)
	}
}
