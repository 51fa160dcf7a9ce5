package fmtx

import "strconv"

// Status is the final status reported for a completed command.
type Status int

// Statuses.
const (
	StatusSuccess Status = iota
	StatusInternalError
	StatusInvalidParameter
	StatusScriptExecFailed
	StatusTimeout
	StatusDisablingInProgress
	StatusAudioUnavailableResources
	StatusAudioNotSupported
	StatusNotApplicable
)

var statusNames = []string{
	StatusSuccess:                   "success",
	StatusInternalError:             "internal-error",
	StatusInvalidParameter:          "invalid-parameter",
	StatusScriptExecFailed:          "script-exec-failed",
	StatusTimeout:                   "timeout",
	StatusDisablingInProgress:       "disabling-in-progress",
	StatusAudioUnavailableResources: "audio-unavailable-resources",
	StatusAudioNotSupported:         "audio-not-supported",
	StatusNotApplicable:             "not-applicable",
}

// String implements fmt.Stringer.
func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "status(" + strconv.Itoa(int(s)) + ")"
	}
	return statusNames[s]
}

// WaitState describes what the executing command is suspended on.
type WaitState int

// Wait states.
const (
	WaitNone WaitState = iota
	WaitRunning
	WaitCommandComplete
	WaitInterrupt
	WaitAudio
	WaitScript
)

var waitNames = []string{
	WaitNone:            "none",
	WaitRunning:         "running",
	WaitCommandComplete: "command-complete",
	WaitInterrupt:       "interrupt",
	WaitAudio:           "audio",
	WaitScript:          "script",
}

// String implements fmt.Stringer.
func (w WaitState) String() string {
	if w < 0 || int(w) >= len(waitNames) {
		return "wait(" + strconv.Itoa(int(w)) + ")"
	}
	return waitNames[w]
}

// Cancellation is the reason the executing command is fast-forwarded to its
// final stage.
type Cancellation int

// Cancellation reasons.
const (
	CancelNone Cancellation = iota
	CancelDisable
	CancelTimeout
)

// Status returns the status reported for commands cancelled for this reason.
func (c Cancellation) Status() Status {
	switch c {
	case CancelDisable:
		return StatusDisablingInProgress
	case CancelTimeout:
		return StatusTimeout
	}
	return StatusSuccess
}

// String implements fmt.Stringer.
func (c Cancellation) String() string {
	switch c {
	case CancelDisable:
		return "disable"
	case CancelTimeout:
		return "timeout"
	}
	return "none"
}
