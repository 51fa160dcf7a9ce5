package fmtx

import (
	"time"

	"github.com/golang/glog"
)

// interruptState tracks chip interrupts between notification and consumption.
type interruptState struct {
	enabled  InterruptMask
	received bool
	reading  bool
	waitMask InterruptMask
	lastRaw  InterruptMask
	latched  InterruptMask

	// readStarted is when the outstanding status read was issued.
	readStarted time.Time
}

func (s *interruptState) reset() {
	*s = interruptState{}
}

// arm prepares a wait on mask, discarding stale bits from earlier operations.
func (s *interruptState) arm(mask InterruptMask) {
	s.latched &^= mask | IntErrors
	s.enabled |= mask & IntInformational
}

// consume takes the latched bits of mask.
func (s *interruptState) consume(mask InterruptMask) InterruptMask {
	got := s.latched & mask
	s.latched &^= got
	return got
}

// readInterruptStatus stages the interrupt status read. No chip operation
// may be outstanding.
func (d *Device) readInterruptStatus() bool {
	d.irq.received = false
	d.irq.reading = true
	d.irq.readStarted = d.Now()
	data, st := d.Transport.SendRead(OpInterruptStatus, 2)
	switch st {
	case TransportPending:
		d.out.chipOp(OpInterruptStatus)
	case TransportSuccess:
		ev := NewChipEvent(OpInterruptStatus, false, data)
		d.handleInterruptStatus(&ev)
	default:
		glog.Errorf("fmtx: read interrupt status failed")
		ev := NewChipEvent(OpInterruptStatus, true, nil)
		d.handleInterruptStatus(&ev)
	}
	return true
}

func (d *Device) handleInterruptStatus(ev *TransportEvent) {
	d.irq.reading = false
	if ev.Failed {
		if d.info.cmd != nil && d.info.wait == WaitInterrupt {
			d.irq.latched |= IntHardwareMalfunction
			d.info.wait = WaitNone
		}
		return
	}
	raw := InterruptMask(DecodeValue(ev.Payload()))
	d.irq.lastRaw = raw
	bits := raw & d.irq.enabled
	if bits == 0 {
		glog.V(2).Infof("fmtx: interrupt 0x%04x ignored, enabled 0x%04x", raw, d.irq.enabled)
		return
	}
	d.irq.latched |= bits
	d.irq.enabled &^= bits & IntInformational
	waiting := d.info.cmd != nil && d.info.wait == WaitInterrupt
	if bits&IntHardwareMalfunction != 0 && !waiting {
		glog.Warningf("fmtx: unsolicited hardware malfunction interrupt")
	}
	if waiting && bits&(d.irq.waitMask|IntErrors) != 0 {
		glog.V(2).Infof("fmtx: %s: interrupt 0x%04x", d.info.cmd.kind, bits)
		d.info.wait = WaitNone
	}
}
