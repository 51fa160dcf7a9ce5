package fmtx

import "strconv"

// MaxEventPayload is the capacity of the TransportEvent payload.
const MaxEventPayload = 100

// EventSource tags the origin of a TransportEvent.
type EventSource int

// Event sources.
const (
	SourceChip EventSource = iota
	SourceAudio
)

// String implements fmt.Stringer.
func (s EventSource) String() string {
	switch s {
	case SourceChip:
		return "chip"
	case SourceAudio:
		return "audio"
	}
	return "source(" + strconv.Itoa(int(s)) + ")"
}

// TransportEvent is the deferred completion of a transport operation or an
// arbiter call. It is a value type: the payload is copied in full.
type TransportEvent struct {
	Source EventSource
	// Opcode of the completed chip operation.
	Opcode Opcode
	// Failed reports a chip operation that did not complete.
	Failed bool
	// Audio is the result of an arbiter call.
	Audio AudioResult
	Len   int
	Data  [MaxEventPayload]byte
}

// NewChipEvent creates the completion of a chip operation.
// The payload is truncated to MaxEventPayload.
func NewChipEvent(op Opcode, failed bool, data []byte) TransportEvent {
	ev := TransportEvent{Source: SourceChip, Opcode: op, Failed: failed}
	ev.Len = copy(ev.Data[:], data)
	return ev
}

// NewAudioEvent creates the completion of an arbiter call.
func NewAudioEvent(result AudioResult, unavailable []AudioResource) TransportEvent {
	ev := TransportEvent{Source: SourceAudio, Audio: result}
	for _, r := range unavailable {
		if ev.Len >= MaxEventPayload {
			break
		}
		ev.Data[ev.Len] = byte(r)
		ev.Len++
	}
	return ev
}

// Payload returns the valid part of Data.
func (e *TransportEvent) Payload() []byte {
	return e.Data[:e.Len]
}

// Unavailable decodes the resource list of an audio event.
func (e *TransportEvent) Unavailable() []AudioResource {
	if e.Source != SourceAudio || e.Len == 0 {
		return nil
	}
	res := make([]AudioResource, e.Len)
	for n, b := range e.Data[:e.Len] {
		res[n] = AudioResource(b)
	}
	return res
}

// eventQueue holds transport events not yet processed by the dispatcher.
// It grows on demand, a dropped completion would only show up later as a
// timeout.
type eventQueue struct {
	evs []TransportEvent
}

func (q *eventQueue) push(ev *TransportEvent) {
	q.evs = append(q.evs, *ev)
}

func (q *eventQueue) pop() (ev TransportEvent, ok bool) {
	if len(q.evs) == 0 {
		return
	}
	return q.remove(0), true
}

// popSource removes the first event from src, keeping the others in order.
func (q *eventQueue) popSource(src EventSource) (ev TransportEvent, ok bool) {
	for n := range q.evs {
		if q.evs[n].Source == src {
			return q.remove(n), true
		}
	}
	return
}

func (q *eventQueue) remove(n int) TransportEvent {
	ev := q.evs[n]
	copy(q.evs[n:], q.evs[n+1:])
	q.evs[len(q.evs)-1] = TransportEvent{}
	q.evs = q.evs[:len(q.evs)-1]
	return ev
}

// Event is the application-facing completion of a command.
type Event struct {
	Kind    CommandKind
	Status  Status
	Context interface{}
	// Value carries the scalar result: frequency in kHz, power level,
	// mute mode, PI code, channel count, field mask, etc.
	Value uint32
	// Text carries PS/RT text or raw data.
	Text                []byte
	TrafficAnnouncement bool
	TrafficProgram      bool
	Audio               AudioRequest
	Unavailable         []AudioResource
}
