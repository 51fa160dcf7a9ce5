package fmtx

import "strconv"

// TransportStatus is the immediate result of issuing a transport operation
// or an arbiter call.
type TransportStatus int

// Transport statuses.
const (
	// TransportPending means the result is delivered later as a TransportEvent.
	TransportPending TransportStatus = iota
	// TransportSuccess means the operation completed synchronously.
	TransportSuccess
	// TransportError means the operation could not be issued.
	TransportError
)

// String implements fmt.Stringer.
func (s TransportStatus) String() string {
	switch s {
	case TransportPending:
		return "pending"
	case TransportSuccess:
		return "success"
	}
	return "error"
}

// Transport moves opcodes and payloads to the chip.
// At most one operation is outstanding at any time. A new operation
// supersedes one the engine gave up on: the completion of the abandoned
// operation must not be delivered.
type Transport interface {
	// SendWrite writes data to the register addressed by op.
	SendWrite(op Opcode, data []byte) TransportStatus
	// SendRead reads length bytes from the register addressed by op.
	// The returned data is only meaningful with TransportSuccess.
	SendRead(op Opcode, length int) ([]byte, TransportStatus)
}

// ScriptSource selects where a script is loaded from.
type ScriptSource int

// Script sources.
const (
	ScriptFile ScriptSource = iota
	ScriptBuiltin
)

// ScriptStatus is the result of executing or continuing a script.
type ScriptStatus int

// Script statuses.
const (
	ScriptPending ScriptStatus = iota
	ScriptSuccess
	ScriptFileNotFound
	ScriptError
)

// ScriptPlayer runs a named sequence of chip operations on behalf of a stage.
type ScriptPlayer interface {
	// ExecuteScript starts the script and issues its first operation.
	ExecuteScript(name string, src ScriptSource, t Transport) ScriptStatus
	// HandleTransportEvent continues the running script with the completion
	// of its outstanding operation.
	HandleTransportEvent(ev *TransportEvent) ScriptStatus
}

// AudioSource is the audio input feeding the transmitter.
type AudioSource uint8

// Audio sources.
const (
	AudioAnalog AudioSource = iota
	AudioDigital
)

// String implements fmt.Stringer.
func (s AudioSource) String() string {
	if s == AudioDigital {
		return "digital"
	}
	return "analog"
}

// AudioResource names an audio hardware resource managed by the arbiter.
type AudioResource uint8

// Audio resources.
const (
	ResourceFMTransmitter AudioResource = iota + 1
	ResourceAnalogInput
	ResourceDigitalInput
	ResourceSampleRateConverter
)

var resourceNames = map[AudioResource]string{
	ResourceFMTransmitter:       "fm-transmitter",
	ResourceAnalogInput:         "analog-input",
	ResourceDigitalInput:        "digital-input",
	ResourceSampleRateConverter: "sample-rate-converter",
}

// String implements fmt.Stringer.
func (r AudioResource) String() string {
	if name, ok := resourceNames[r]; ok {
		return name
	}
	return "resource-" + strconv.Itoa(int(r))
}

// AudioResult is the reply of an AudioArbiter call.
type AudioResult int

// Audio results.
const (
	AudioPending AudioResult = iota
	AudioSuccess
	AudioNoResources
	AudioNotSupported
	AudioError
)

// String implements fmt.Stringer.
func (r AudioResult) String() string {
	switch r {
	case AudioPending:
		return "pending"
	case AudioSuccess:
		return "success"
	case AudioNoResources:
		return "no-resources"
	case AudioNotSupported:
		return "not-supported"
	}
	return "error"
}

// AudioRequest describes the audio path an arbiter call concerns.
type AudioRequest struct {
	Source     AudioSource
	SampleRate uint32
	Channels   uint8
}

// AudioReply is the synchronous reply of an AudioArbiter call.
type AudioReply struct {
	Result      AudioResult
	Unavailable []AudioResource
}

// AudioArbiter grants, denies and reconfigures audio resources.
// Pending replies complete later with a TransportEvent from SourceAudio.
// A new call supersedes an unanswered one whose reply is then not delivered.
type AudioArbiter interface {
	StartOperation(req AudioRequest) AudioReply
	StopOperation(req AudioRequest) AudioReply
	ChangeResource(req AudioRequest) AudioReply
	ChangeConfiguration(req AudioRequest) AudioReply
}

// Notifier receives asynchronous notifications from transports and arbiters.
type Notifier interface {
	HandleTransportEvent(ev TransportEvent)
	HandleInterrupt()
}

// EventHandler receives one Event per completed command.
type EventHandler interface {
	HandleEvent(ev *Event)
}

// HandleEventFunc is func form of EventHandler.
type HandleEventFunc func(ev *Event)

// HandleEvent implements EventHandler.
func (f HandleEventFunc) HandleEvent(ev *Event) {
	f(ev)
}
