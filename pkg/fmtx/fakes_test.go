package fmtx

import (
	"testing"
	"time"
)

type opRecord struct {
	write  bool
	op     Opcode
	data   []byte
	length int
}

type fakeTransport struct {
	ops     []opRecord
	result  TransportStatus
	results map[Opcode]TransportStatus
	reads   map[Opcode][]byte
}

func newFakeTransport(result TransportStatus) *fakeTransport {
	return &fakeTransport{
		result:  result,
		results: make(map[Opcode]TransportStatus),
		reads:   make(map[Opcode][]byte),
	}
}

func (t *fakeTransport) status(op Opcode) TransportStatus {
	if st, ok := t.results[op]; ok {
		return st
	}
	return t.result
}

func (t *fakeTransport) SendWrite(op Opcode, data []byte) TransportStatus {
	t.ops = append(t.ops, opRecord{write: true, op: op, data: append([]byte(nil), data...)})
	return t.status(op)
}

func (t *fakeTransport) SendRead(op Opcode, length int) ([]byte, TransportStatus) {
	t.ops = append(t.ops, opRecord{op: op, length: length})
	return t.reads[op], t.status(op)
}

func (t *fakeTransport) writes(op Opcode) (data [][]byte) {
	for _, r := range t.ops {
		if r.write && r.op == op {
			data = append(data, r.data)
		}
	}
	return
}

func (t *fakeTransport) last() opRecord {
	return t.ops[len(t.ops)-1]
}

type fakeArbiter struct {
	calls       []string
	reply       AudioReply
	stopReply   AudioReply
	lastRequest AudioRequest
}

func (a *fakeArbiter) call(name string, req AudioRequest, reply AudioReply) AudioReply {
	a.calls = append(a.calls, name)
	a.lastRequest = req
	return reply
}

func (a *fakeArbiter) StartOperation(req AudioRequest) AudioReply {
	return a.call("start", req, a.reply)
}

func (a *fakeArbiter) StopOperation(req AudioRequest) AudioReply {
	return a.call("stop", req, a.stopReply)
}

func (a *fakeArbiter) ChangeResource(req AudioRequest) AudioReply {
	return a.call("change-resource", req, a.reply)
}

func (a *fakeArbiter) ChangeConfiguration(req AudioRequest) AudioReply {
	return a.call("change-config", req, a.reply)
}

type fakePlayer struct {
	executed []ScriptSource
	results  map[ScriptSource]ScriptStatus
	steps    int
}

func (p *fakePlayer) ExecuteScript(name string, src ScriptSource, t Transport) ScriptStatus {
	p.executed = append(p.executed, src)
	st := p.results[src]
	if st == ScriptPending {
		t.SendWrite(Opcode(0x80), []byte{byte(p.steps)})
	}
	return st
}

func (p *fakePlayer) HandleTransportEvent(ev *TransportEvent) ScriptStatus {
	if p.steps > 0 {
		p.steps--
		return ScriptPending
	}
	if ev.Failed {
		return ScriptError
	}
	return ScriptSuccess
}

type testRig struct {
	dev       *Device
	transport *fakeTransport
	arbiter   *fakeArbiter
	player    *fakePlayer
	events    []*Event
	now       time.Time
}

func newTestRig(t *testing.T, result TransportStatus, opts Options) *testRig {
	r := &testRig{
		transport: newFakeTransport(result),
		arbiter:   &fakeArbiter{reply: AudioReply{Result: AudioSuccess}, stopReply: AudioReply{Result: AudioSuccess}},
		player:    &fakePlayer{results: map[ScriptSource]ScriptStatus{ScriptFile: ScriptSuccess}},
		now:       time.Unix(1000, 0),
	}
	r.transport.results[OpInterruptStatus] = TransportSuccess
	r.dev = New(opts)
	r.dev.Transport = r.transport
	r.dev.Arbiter = r.arbiter
	r.dev.Player = r.player
	r.dev.Now = func() time.Time { return r.now }
	r.dev.Handler = HandleEventFunc(func(ev *Event) {
		r.events = append(r.events, ev)
	})
	return r
}

// enabled marks the device enabled without running the enable sequence.
func (r *testRig) enabled() *testRig {
	r.dev.cache.Enabled = true
	r.dev.irq.enabled = DefaultInterruptMask
	return r
}

func (r *testRig) enqueue(t *testing.T, req Request) {
	if err := r.dev.Enqueue(req); err != nil {
		t.Fatalf("enqueue %s: %v", req.Kind, err)
	}
}

// complete delivers the completion of the outstanding chip operation.
func (r *testRig) complete(failed bool, data ...byte) {
	r.dev.HandleTransportEvent(NewChipEvent(r.transport.last().op, failed, data))
}

// interrupt raises a chip interrupt whose status read returns mask.
func (r *testRig) interrupt(mask InterruptMask) {
	r.transport.reads[OpInterruptStatus] = []byte{byte(mask >> 8), byte(mask)}
	r.dev.HandleInterrupt()
}

func (r *testRig) statuses() (s []Status) {
	for _, ev := range r.events {
		s = append(s, ev.Status)
	}
	return
}

func (r *testRig) kinds() (k []CommandKind) {
	for _, ev := range r.events {
		k = append(k, ev.Kind)
	}
	return
}
