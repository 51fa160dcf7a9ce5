package fmtx

import (
	"time"

	"github.com/golang/glog"
)

// Options configures a Device.
type Options struct {
	// MaxPending is the size of the general command pool.
	MaxPending int
	// ChunkSize bounds the payload of one RDS data write.
	ChunkSize int
	// Timeout is the per-command watchdog, zero disables it.
	Timeout time.Duration
	// InitScript is executed by Enable after reading the ASIC version.
	InitScript string
	// InterruptMask is written to the chip by Enable.
	InterruptMask InterruptMask
	// Defaults is the configuration restored by Enable and Disable.
	Defaults FirmwareCache
}

// DefaultOptions returns the default engine options.
func DefaultOptions() Options {
	return Options{
		MaxPending:    16,
		ChunkSize:     12,
		Timeout:       3 * time.Second,
		InitScript:    "fmtx_init",
		InterruptMask: DefaultInterruptMask,
		Defaults:      DefaultCache(),
	}
}

// currentInfo describes the executing command.
type currentInfo struct {
	cmd      *command
	stage    int
	status   Status
	wait     WaitState
	started  time.Time
	timedOut bool
	aborted  bool

	event    TransportEvent
	hasEvent bool

	sent  int
	chunk int
	asic  uint16

	scriptStatus Status
	scriptDone   bool

	audioHeld    bool
	txWritten    bool
	powerWritten bool
	unavailable  []AudioResource
}

// outstanding tracks the operations in flight. A completion is accepted
// only for the operation recorded here; the transport and the arbiter never
// deliver the completion of an operation superseded by a newer one.
type outstanding struct {
	chip   bool
	op     Opcode
	script bool
	audio  bool
}

func (o *outstanding) chipOp(op Opcode) {
	o.chip, o.op, o.script = true, op, false
}

func (o *outstanding) scriptOp() {
	o.chip, o.script = true, true
}

// accepts reports whether ev completes the operation in flight.
func (o *outstanding) accepts(ev *TransportEvent) bool {
	if ev.Source == SourceAudio {
		return o.audio
	}
	return o.chip && (o.script || ev.Opcode == o.op)
}

// Device is the command engine of one transmitter chip.
type Device struct {
	Transport Transport
	Player    ScriptPlayer
	Arbiter   AudioArbiter
	Handler   EventHandler
	// Now is the clock of the watchdog.
	Now func() time.Time

	opts   Options
	pool   commandPool
	queue  commandQueue
	info   currentInfo
	irq    interruptState
	out    outstanding
	cache  FirmwareCache
	events eventQueue

	disableRequested bool
	processing       bool
}

// New creates a Device.
func New(opts Options) *Device {
	if opts.MaxPending <= 0 {
		opts.MaxPending = DefaultOptions().MaxPending
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultOptions().ChunkSize
	}
	if opts.ChunkSize > MaxChunkSize {
		opts.ChunkSize = MaxChunkSize
	}
	if opts.InterruptMask == 0 {
		opts.InterruptMask = DefaultInterruptMask
	}
	d := &Device{opts: opts, Now: time.Now}
	d.opts.Defaults = opts.Defaults.Clone()
	d.pool.init(opts.MaxPending)
	d.cache = d.opts.Defaults.Clone()
	return d
}

// Options returns the effective options.
func (d *Device) Options() Options {
	return d.opts
}

// Cache returns a copy of the firmware cache.
func (d *Device) Cache() FirmwareCache {
	return d.cache.Clone()
}

// Pending returns the number of queued commands, excluding the executing one.
func (d *Device) Pending() int {
	return d.queue.size
}

// Executing returns the kind of the executing command.
func (d *Device) Executing() (CommandKind, bool) {
	if d.info.cmd == nil {
		return 0, false
	}
	return d.info.cmd.kind, true
}

// Wait returns what the executing command is suspended on.
func (d *Device) Wait() WaitState {
	return d.info.wait
}

// Enqueue validates and queues a request.
// Completion is reported through Handler, carrying req.Context.
func (d *Device) Enqueue(req Request) error {
	if err := req.validate(); err != nil {
		return err
	}
	c, err := d.pool.alloc(req.Kind)
	if err != nil {
		return err
	}
	c.load(&req)
	d.queue.push(c)
	glog.V(2).Infof("fmtx: queued %s, %d pending", c.kind, d.queue.size)
	if c.kind == CmdDisable {
		d.requestDisable()
	}
	d.process()
	return nil
}

// HandleTransportEvent implements Notifier.
func (d *Device) HandleTransportEvent(ev TransportEvent) {
	d.events.push(&ev)
	d.process()
}

// HandleInterrupt implements Notifier.
func (d *Device) HandleInterrupt() {
	d.irq.received = true
	d.process()
}

// CheckTimeout runs the watchdog of the executing command and of an
// outstanding interrupt status read.
func (d *Device) CheckTimeout() {
	if d.opts.Timeout <= 0 {
		return
	}
	now := d.Now()
	info := &d.info
	if info.cmd == nil {
		if d.irq.reading && now.Sub(d.irq.readStarted) >= d.opts.Timeout {
			glog.Warningf("fmtx: interrupt status read timed out")
			d.abandonStatusRead()
			d.process()
		}
		return
	}
	if now.Sub(info.started) < d.opts.Timeout {
		return
	}
	if info.timedOut {
		// the cleanup of a timed out command did not finish either
		glog.Errorf("fmtx: %s: cleanup timed out", info.cmd.kind)
		info.aborted = true
	} else {
		glog.Warningf("fmtx: %s: timed out at stage %d waiting for %s", info.cmd.kind, info.stage, info.wait)
		info.timedOut = true
	}
	info.started = now
	if d.irq.reading {
		d.abandonStatusRead()
	}
	d.abandonWait()
	d.process()
}

// abandonStatusRead gives up an interrupt status read. The bits it would
// have returned are read again on the next interrupt notification.
func (d *Device) abandonStatusRead() {
	d.irq.reading = false
	d.out.chip = false
}

func (d *Device) requestDisable() {
	d.disableRequested = true
	if d.info.cmd == nil || d.info.cmd.kind == CmdDisable {
		return
	}
	switch d.info.wait {
	case WaitInterrupt, WaitAudio:
		glog.V(2).Infof("fmtx: %s: disable requested while waiting for %s", d.info.cmd.kind, d.info.wait)
		d.abandonWait()
	}
}

// abandonWait gives up the current suspension. Late completions of the
// abandoned operation are no longer accepted.
func (d *Device) abandonWait() {
	switch d.info.wait {
	case WaitCommandComplete, WaitScript:
		d.out.chip, d.out.script = false, false
	case WaitAudio:
		d.out.audio = false
	case WaitInterrupt:
		d.irq.waitMask = 0
	}
	d.info.wait = WaitNone
}

func (d *Device) cancellation() Cancellation {
	if d.info.timedOut {
		return CancelTimeout
	}
	if d.disableRequested && d.info.cmd.kind != CmdDisable {
		return CancelDisable
	}
	return CancelNone
}
