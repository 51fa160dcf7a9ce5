package sim

import (
	"fmt"
	"strings"

	"github.com/robotalks/fmtx/pkg/fmtx"
)

// Fault is an injected misbehavior of one operation.
type Fault int

// Faults.
const (
	FaultNone Fault = iota
	// FaultReject refuses to issue the operation.
	FaultReject
	// FaultError completes the operation with an error.
	FaultError
	// FaultStall never completes the operation.
	FaultStall
	// FaultMalfunction completes the operation and raises a hardware
	// malfunction interrupt.
	FaultMalfunction
)

var faultNames = []string{"none", "reject", "error", "stall", "malfunction"}

// String implements fmt.Stringer.
func (f Fault) String() string {
	if int(f) < len(faultNames) {
		return faultNames[f]
	}
	return fmt.Sprintf("fault(%d)", int(f))
}

// ParseFault parses the name of a fault.
func ParseFault(s string) (Fault, error) {
	for n, name := range faultNames {
		if strings.EqualFold(name, s) {
			return Fault(n), nil
		}
	}
	return FaultNone, fmt.Errorf("unknown fault %q", s)
}

type fault struct {
	kind  Fault
	count int
}

// Inject makes the next count operations on op misbehave. A count of zero or
// less applies the fault until Clear.
func (c *Chip) Inject(op fmtx.Opcode, f Fault, count int) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if f == FaultNone {
		delete(c.faults, op)
		return
	}
	c.faults[op] = &fault{kind: f, count: count}
}

// Clear removes all injected faults.
func (c *Chip) Clear() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.faults = make(map[fmtx.Opcode]*fault)
}

// takeFault must be called with lock held.
func (c *Chip) takeFault(op fmtx.Opcode) Fault {
	f := c.faults[op]
	if f == nil {
		return FaultNone
	}
	if f.count > 0 {
		if f.count--; f.count == 0 {
			delete(c.faults, op)
		}
	}
	return f.kind
}
