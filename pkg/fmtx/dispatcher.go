package fmtx

import "github.com/golang/glog"

// process runs the dispatcher until no further progress can be made.
// Notifications raised while it runs are recorded and picked up by the
// running loop instead of nesting.
func (d *Device) process() {
	if d.processing {
		return
	}
	d.processing = true
	defer func() { d.processing = false }()
	for d.step() {
	}
}

// step performs one unit of work and reports whether anything happened.
func (d *Device) step() bool {
	if d.irq.reading {
		ev, ok := d.events.popSource(SourceChip)
		if !ok {
			return false
		}
		if !d.out.accepts(&ev) {
			glog.V(2).Infof("fmtx: dropped completion of %s during status read", ev.Opcode)
			return true
		}
		d.out.chip = false
		d.handleInterruptStatus(&ev)
		return true
	}

	if ev, ok := d.events.pop(); ok {
		if !d.out.accepts(&ev) {
			glog.V(2).Infof("fmtx: dropped stale %s event", ev.Source)
			return true
		}
		if d.info.cmd == nil {
			glog.V(2).Infof("fmtx: dropped %s event without command", ev.Source)
			return true
		}
		d.deliver(&ev)
		return true
	}

	if d.info.cmd == nil {
		if d.irq.received && !d.out.chip {
			return d.readInterruptStatus()
		}
		c := d.queue.pop()
		if c == nil {
			return false
		}
		d.start(c)
		return true
	}

	if d.info.scriptDone {
		d.info.scriptDone = false
		d.dispatch()
		return true
	}
	if d.irq.received && !d.out.chip && d.info.wait != WaitScript {
		return d.readInterruptStatus()
	}
	if d.info.wait == WaitNone {
		d.dispatch()
		return true
	}
	return false
}

func (d *Device) start(c *command) {
	d.info = currentInfo{
		cmd:     c,
		status:  StatusSuccess,
		wait:    WaitNone,
		started: d.Now(),
	}
	glog.V(2).Infof("fmtx: start %s", c.kind)
	if stageTables[c.kind].chip && !d.cache.Enabled {
		glog.V(2).Infof("fmtx: %s: device disabled", c.kind)
		d.info.status = StatusNotApplicable
		d.info.stage = d.final()
	}
}

// deliver hands a transport event to whatever the command waits for.
func (d *Device) deliver(ev *TransportEvent) {
	info := &d.info
	switch {
	case ev.Source == SourceChip && info.wait == WaitScript:
		d.out.chip, d.out.script = false, false
		d.continueScript(ev)
		return
	case ev.Source == SourceChip && info.wait == WaitCommandComplete:
		d.out.chip = false
	case ev.Source == SourceAudio && info.wait == WaitAudio:
		d.out.audio = false
	default:
		glog.Warningf("fmtx: %s: unexpected %s event while waiting for %s", info.cmd.kind, ev.Source, info.wait)
		return
	}
	info.event = *ev
	info.hasEvent = true
	info.wait = WaitNone
	d.dispatch()
}

func (d *Device) continueScript(ev *TransportEvent) {
	switch st := d.Player.HandleTransportEvent(ev); st {
	case ScriptPending:
		d.out.scriptOp()
		return
	case ScriptSuccess:
		d.info.scriptStatus = StatusSuccess
	default:
		glog.Errorf("fmtx: %s: script failed", d.info.cmd.kind)
		d.info.scriptStatus = StatusScriptExecFailed
	}
	d.info.wait = WaitNone
	d.info.scriptDone = true
}

// dispatch runs exactly one stage of the executing command.
func (d *Device) dispatch() {
	info := &d.info
	if final := d.final(); info.stage < final {
		if reason := d.cancellation(); reason != CancelNone {
			glog.V(2).Infof("fmtx: %s: cancelled (%s) at stage %d", info.cmd.kind, reason, info.stage)
			if info.status == StatusSuccess {
				info.status = reason.Status()
			}
			info.stage = final
		}
	}
	info.wait = WaitRunning
	s := stageTables[info.cmd.kind].stages[info.stage](d, info.cmd)
	if s.done {
		d.complete()
		return
	}
	if glog.V(4) {
		glog.Infof("fmtx: %s: stage %d -> %d, wait %s", info.cmd.kind, info.stage, s.next, s.wait)
	}
	info.stage = s.next
	info.wait = s.wait
}

func (d *Device) final() int {
	return len(stageTables[d.info.cmd.kind].stages) - 1
}
