package sim

import (
	"context"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/fmtx/pkg/fmtx"
)

// Frequency range accepted by the simulated chip, in kHz.
const (
	MinFrequency  = 76000
	MaxFrequency  = 108000
	FrequencyStep = 50
)

// DefaultASICVersion is reported by the simulated chip.
const DefaultASICVersion uint16 = 0x1273

// Op records an operation received by the chip.
type Op struct {
	Op   fmtx.Opcode
	Read bool
	Data []byte
}

type delivery struct {
	ev  fmtx.TransportEvent
	seq uint64
	irq bool
}

// Chip simulates a transmitter chip behind fmtx.Transport.
//
// With Immediate set, operations complete synchronously. Otherwise
// completions are delivered to Notifier by Run after Latency. A completion
// still queued when the next operation is submitted is dropped.
type Chip struct {
	Notifier    fmtx.Notifier
	Immediate   bool
	Latency     time.Duration
	ASICVersion uint16

	lock     sync.Mutex
	powered  bool
	mask     fmtx.InterruptMask
	latched  fmtx.InterruptMask
	regs     map[fmtx.Opcode]uint32
	buffers  map[fmtx.Opcode][]byte
	faults   map[fmtx.Opcode]*fault
	ops      []Op
	seq      uint64
	deliverC chan delivery
}

// NewChip creates a powered-off Chip.
func NewChip() *Chip {
	return &Chip{
		ASICVersion: DefaultASICVersion,
		regs:        make(map[fmtx.Opcode]uint32),
		buffers:     make(map[fmtx.Opcode][]byte),
		faults:      make(map[fmtx.Opcode]*fault),
		deliverC:    make(chan delivery, 64),
	}
}

// SendWrite implements fmtx.Transport.
func (c *Chip) SendWrite(op fmtx.Opcode, data []byte) fmtx.TransportStatus {
	_, st := c.submit(op, false, data)
	return st
}

// SendRead implements fmtx.Transport.
func (c *Chip) SendRead(op fmtx.Opcode, length int) ([]byte, fmtx.TransportStatus) {
	return c.submit(op, true, []byte{byte(length)})
}

// Raise latches interrupt bits as if the chip detected a condition.
func (c *Chip) Raise(bits fmtx.InterruptMask) {
	c.lock.Lock()
	assert := c.latch(bits)
	c.lock.Unlock()
	if assert {
		c.notify(delivery{irq: true})
	}
}

// Run delivers completions until ctx is done.
func (c *Chip) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d := <-c.deliverC:
			if c.Latency > 0 && !d.irq {
				select {
				case <-time.After(c.Latency):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			c.deliver(d)
		}
	}
}

func (c *Chip) submit(op fmtx.Opcode, read bool, data []byte) ([]byte, fmtx.TransportStatus) {
	c.lock.Lock()
	c.ops = append(c.ops, Op{Op: op, Read: read, Data: append([]byte(nil), data...)})
	c.seq++
	seq := c.seq
	f := c.takeFault(op)
	if f == FaultReject {
		c.lock.Unlock()
		return nil, fmtx.TransportError
	}
	reply, failed, irq := c.exec(op, read, data)
	if f == FaultError {
		failed, irq = true, 0
	}
	if f == FaultMalfunction {
		irq |= fmtx.IntHardwareMalfunction
	}
	assert := c.latch(irq)
	c.lock.Unlock()

	if f == FaultStall {
		glog.V(2).Infof("sim: %s stalled", op)
		return nil, fmtx.TransportPending
	}
	if c.Immediate {
		if assert {
			c.notify(delivery{irq: true})
		}
		if failed {
			return nil, fmtx.TransportError
		}
		return reply, fmtx.TransportSuccess
	}
	c.notify(delivery{ev: fmtx.NewChipEvent(op, failed, reply), seq: seq})
	if assert {
		c.notify(delivery{irq: true})
	}
	return nil, fmtx.TransportPending
}

// exec applies an operation to the registers. Must be called with lock held.
func (c *Chip) exec(op fmtx.Opcode, read bool, data []byte) (reply []byte, failed bool, irq fmtx.InterruptMask) {
	if !c.powered && op != fmtx.OpPower && op != fmtx.OpInterruptStatus {
		glog.V(2).Infof("sim: %s rejected, chip powered off", op)
		return nil, true, 0
	}
	if read {
		return c.read(op, data)
	}
	val := fmtx.DecodeValue(data)
	switch op {
	case fmtx.OpPower:
		if val == 0 {
			c.powerOff()
		} else {
			c.powered = true
		}
	case fmtx.OpInterruptMask:
		c.mask = fmtx.InterruptMask(val)
	case fmtx.OpFrequency:
		if val < MinFrequency || val > MaxFrequency || val%FrequencyStep != 0 {
			return nil, false, fmtx.IntInvalidParameter
		}
		c.regs[op] = val
		irq = fmtx.IntFrequencyReady
	case fmtx.OpTransmission:
		c.regs[op] = val
		if val != 0 {
			irq = fmtx.IntPowerEnabled
		}
	case fmtx.OpRDSPSData, fmtx.OpRDSRTData, fmtx.OpRDSRawData, fmtx.OpRDSMaskData:
		c.buffers[op] = append(c.buffers[op], data...)
		if len(c.buffers[op]) >= int(c.regs[op-1]&0xffff) {
			irq = fmtx.IntRDSBufferEmpty
		}
	case fmtx.OpRDSPSLength, fmtx.OpRDSRTLength, fmtx.OpRDSRawLength, fmtx.OpRDSMaskLength:
		c.regs[op] = val
		c.buffers[op+1] = nil
	default:
		c.regs[op] = val
	}
	return nil, false, irq
}

func (c *Chip) read(op fmtx.Opcode, data []byte) (reply []byte, failed bool, irq fmtx.InterruptMask) {
	length := 4
	if len(data) > 0 {
		length = int(data[0])
	}
	var val uint32
	switch op {
	case fmtx.OpASICVersion:
		val = uint32(c.ASICVersion)
	case fmtx.OpInterruptStatus:
		val = uint32(c.latched)
		c.latched = 0
	case fmtx.OpInterruptMask:
		val = uint32(c.mask)
	case fmtx.OpRDSPSData, fmtx.OpRDSRTData, fmtx.OpRDSRawData, fmtx.OpRDSMaskData:
		buf := c.buffers[op]
		if len(buf) > length {
			buf = buf[:length]
		}
		return append([]byte(nil), buf...), false, 0
	default:
		val = c.regs[op]
	}
	reply = fmtx.EncodeValue(val)
	if length < len(reply) {
		reply = reply[len(reply)-length:]
	}
	return reply, false, 0
}

func (c *Chip) powerOff() {
	c.powered = false
	c.mask, c.latched = 0, 0
	c.regs = make(map[fmtx.Opcode]uint32)
	c.buffers = make(map[fmtx.Opcode][]byte)
}

// latch records bits and reports whether the interrupt line is asserted.
func (c *Chip) latch(bits fmtx.InterruptMask) bool {
	if bits == 0 {
		return false
	}
	c.latched |= bits
	return bits&c.mask != 0
}

func (c *Chip) notify(d delivery) {
	if c.Immediate {
		c.deliver(d)
		return
	}
	select {
	case c.deliverC <- d:
	default:
		glog.Errorf("sim: delivery queue full, dropped completion of %s", d.ev.Opcode)
	}
}

func (c *Chip) deliver(d delivery) {
	n := c.Notifier
	if n == nil {
		return
	}
	if d.irq {
		n.HandleInterrupt()
		return
	}
	c.lock.Lock()
	current := d.seq == c.seq
	c.lock.Unlock()
	if !current {
		glog.V(2).Infof("sim: superseded completion of %s dropped", d.ev.Opcode)
		return
	}
	n.HandleTransportEvent(d.ev)
}

// Powered reports the power state.
func (c *Chip) Powered() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.powered
}

// Register returns the value of a scalar register.
func (c *Chip) Register(op fmtx.Opcode) uint32 {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.regs[op]
}

// Buffer returns the content of an RDS data buffer.
func (c *Chip) Buffer(op fmtx.Opcode) []byte {
	c.lock.Lock()
	defer c.lock.Unlock()
	return append([]byte(nil), c.buffers[op]...)
}

// InterruptMask returns the mask written by the host.
func (c *Chip) InterruptMask() fmtx.InterruptMask {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.mask
}

// Ops returns the operations received so far.
func (c *Chip) Ops() []Op {
	c.lock.Lock()
	defer c.lock.Unlock()
	return append([]Op(nil), c.ops...)
}
