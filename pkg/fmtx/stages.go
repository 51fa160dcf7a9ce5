package fmtx

import "github.com/golang/glog"

// step is the outcome of a stage: either done, or the next stage index and
// what to wait for before running it. WaitNone runs it right away.
type step struct {
	next int
	wait WaitState
	done bool
}

// stage is one step of a command's execution sequence.
type stage func(d *Device, c *command) step

type stageTable struct {
	stages []stage
	// chip is set for kinds that touch the chip and require it enabled.
	chip bool
}

func (d *Device) advance() step {
	return step{next: d.info.stage + 1}
}

func (d *Device) skip(n int) step {
	return step{next: d.info.stage + 1 + n}
}

func (d *Device) suspend(w WaitState) step {
	return step{next: d.info.stage + 1, wait: w}
}

func (d *Device) stay(w WaitState) step {
	return step{next: d.info.stage, wait: w}
}

func (d *Device) jump(n int) step {
	return step{next: n}
}

// finish records the first failure and continues with the final stage.
func (d *Device) finish(st Status) step {
	if d.info.status == StatusSuccess {
		d.info.status = st
	}
	return step{next: d.final()}
}

func (d *Device) done() step {
	return step{done: true}
}

// write issues a chip write. The stage that follows must be a wait for the
// command complete.
func (d *Device) write(op Opcode, data []byte) step {
	d.info.hasEvent = false
	switch d.Transport.SendWrite(op, data) {
	case TransportPending:
		d.out.chipOp(op)
		return d.suspend(WaitCommandComplete)
	case TransportSuccess:
		return d.advance()
	}
	glog.Errorf("fmtx: %s: write %s failed", d.info.cmd.kind, op)
	return d.finish(StatusInternalError)
}

// read issues a chip read. The stage that follows finds the data in
// info.event.
func (d *Device) read(op Opcode, length int) step {
	d.info.hasEvent = false
	data, st := d.Transport.SendRead(op, length)
	switch st {
	case TransportPending:
		d.out.chipOp(op)
		return d.suspend(WaitCommandComplete)
	case TransportSuccess:
		d.info.event = NewChipEvent(op, false, data)
		d.info.hasEvent = true
		return d.advance()
	}
	glog.Errorf("fmtx: %s: read %s failed", d.info.cmd.kind, op)
	return d.finish(StatusInternalError)
}

func (d *Device) chipFailed() bool {
	if d.info.hasEvent && d.info.event.Source == SourceChip && d.info.event.Failed {
		glog.Errorf("fmtx: %s: %s failed on chip", d.info.cmd.kind, d.info.event.Opcode)
		return true
	}
	return false
}

// writeStage sends one value and advances.
func writeStage(op Opcode, value func(d *Device, c *command) []byte) stage {
	return func(d *Device, c *command) step {
		return d.write(op, value(d, c))
	}
}

// writeIfStage is writeStage that skips itself and the following wait when
// cond does not hold.
func writeIfStage(cond func(d *Device, c *command) bool, op Opcode, value func(d *Device, c *command) []byte) stage {
	return func(d *Device, c *command) step {
		if !cond(d, c) {
			return d.skip(1)
		}
		return d.write(op, value(d, c))
	}
}

// armedWriteStage arms an interrupt wait before writing.
func armedWriteStage(op Opcode, mask InterruptMask, value func(d *Device, c *command) []byte) stage {
	return func(d *Device, c *command) step {
		d.irq.arm(mask)
		return d.write(op, value(d, c))
	}
}

// waitCompleteStage checks the completion of the preceding write.
func waitCompleteStage(d *Device, c *command) step {
	if d.chipFailed() {
		return d.finish(StatusInternalError)
	}
	return d.advance()
}

// waitThenStage is waitCompleteStage running fn on success.
func waitThenStage(fn func(d *Device, c *command)) stage {
	return func(d *Device, c *command) step {
		if d.chipFailed() {
			return d.finish(StatusInternalError)
		}
		fn(d, c)
		return d.advance()
	}
}

func readStage(op Opcode, length int) stage {
	return func(d *Device, c *command) step {
		return d.read(op, length)
	}
}

// waitReadStage hands the read data to store.
func waitReadStage(store func(d *Device, c *command, data []byte)) stage {
	return func(d *Device, c *command) step {
		if d.chipFailed() || !d.info.hasEvent {
			return d.finish(StatusInternalError)
		}
		store(d, c, d.info.event.Payload())
		return d.advance()
	}
}

// waitInterruptStage waits until one of mask is latched. Error bits abort
// the command.
func waitInterruptStage(mask InterruptMask) stage {
	return func(d *Device, c *command) step {
		got := d.irq.consume(mask | IntErrors)
		switch {
		case got&IntHardwareMalfunction != 0:
			glog.Errorf("fmtx: %s: hardware malfunction", c.kind)
			d.irq.waitMask = 0
			return d.finish(StatusInternalError)
		case got&IntInvalidParameter != 0:
			d.irq.waitMask = 0
			return d.finish(StatusInvalidParameter)
		case got&mask != 0:
			d.irq.waitMask = 0
			return d.advance()
		}
		d.irq.waitMask = mask
		return d.stay(WaitInterrupt)
	}
}

// skipStage finishes with st when cond holds.
func skipStage(cond func(d *Device, c *command) bool, st Status) stage {
	return func(d *Device, c *command) step {
		if cond(d, c) {
			glog.V(2).Infof("fmtx: %s: skipped (%s)", c.kind, st)
			return d.finish(st)
		}
		return d.advance()
	}
}

func cached(d *Device, c *command) bool {
	return d.cache.matches(c)
}

func transmitting(d *Device, c *command) bool {
	return d.cache.TransmissionOn
}

func commandValue(d *Device, c *command) []byte {
	return EncodeValue(c.value)
}

func constValue(v uint32) func(d *Device, c *command) []byte {
	return func(d *Device, c *command) []byte {
		return EncodeValue(v)
	}
}

// scriptStage runs the init script, falling back to the built-in variant
// when no script file exists.
func scriptStage(d *Device, c *command) step {
	if d.Player == nil {
		return d.skip(1)
	}
	name := d.opts.InitScript
	d.info.scriptStatus = StatusSuccess
	st := d.Player.ExecuteScript(name, ScriptFile, d.Transport)
	if st == ScriptFileNotFound {
		glog.V(2).Infof("fmtx: script %q not found, using built-in", name)
		st = d.Player.ExecuteScript(name, ScriptBuiltin, d.Transport)
	}
	switch st {
	case ScriptPending:
		d.out.scriptOp()
		return d.suspend(WaitScript)
	case ScriptSuccess:
		return d.skip(1)
	}
	glog.Errorf("fmtx: %s: script %q failed", c.kind, name)
	return d.finish(StatusScriptExecFailed)
}

func waitScriptStage(d *Device, c *command) step {
	if st := d.info.scriptStatus; st != StatusSuccess {
		return d.finish(st)
	}
	return d.advance()
}

// completeStage is the final stage of most kinds.
func completeStage(d *Device, c *command) step {
	return d.done()
}
