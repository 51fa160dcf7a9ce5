package script

import "github.com/robotalks/fmtx/pkg/fmtx"

// InitScriptName is the name of the built-in chip initialization script.
const InitScriptName = "fmtx_init"

// Init register values.
const (
	RefClockHz         = 32768
	AudioDeviation10Hz = 6825
	PilotDeviation10Hz = 675
)

func value(v uint32) *uint32 { return &v }

// Builtins returns the in-memory scripts used when no file exists.
func Builtins() map[string]*Script {
	return map[string]*Script{
		InitScriptName: {
			Name: InitScriptName,
			Steps: []Step{
				{Write: &WriteStep{Op: fmtx.OpRefClock.Name(), Value: value(RefClockHz)}},
				{Write: &WriteStep{Op: fmtx.OpAudioDeviation.Name(), Value: value(AudioDeviation10Hz)}},
				{Write: &WriteStep{Op: fmtx.OpPilotDeviation.Name(), Value: value(PilotDeviation10Hz)}},
			},
		},
	}
}
