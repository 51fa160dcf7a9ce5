package sim

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/fmtx/pkg/fmtx"
)

type recorder struct {
	events []fmtx.TransportEvent
	irqs   int
}

func (r *recorder) HandleTransportEvent(ev fmtx.TransportEvent) { r.events = append(r.events, ev) }
func (r *recorder) HandleInterrupt()                          { r.irqs++ }

func poweredChip(t *testing.T) (*Chip, *recorder) {
	c, r := NewChip(), &recorder{}
	c.Immediate, c.Notifier = true, r
	require.Equal(t, fmtx.TransportSuccess, c.SendWrite(fmtx.OpPower, fmtx.EncodeValue(1)))
	require.Equal(t, fmtx.TransportSuccess, c.SendWrite(fmtx.OpInterruptMask, fmtx.EncodeValue(uint32(fmtx.DefaultInterruptMask))))
	return c, r
}

func readStatus(t *testing.T, c *Chip) fmtx.InterruptMask {
	data, st := c.SendRead(fmtx.OpInterruptStatus, 2)
	require.Equal(t, fmtx.TransportSuccess, st)
	return fmtx.InterruptMask(fmtx.DecodeValue(data))
}

func TestChipPoweredOff(t *testing.T) {
	c := NewChip()
	c.Immediate = true
	require.Equal(t, fmtx.TransportError, c.SendWrite(fmtx.OpFrequency, fmtx.EncodeValue(94500)))
	require.False(t, c.Powered())
	require.Len(t, c.Ops(), 1)
}

func TestChipASICVersion(t *testing.T) {
	c, _ := poweredChip(t)
	data, st := c.SendRead(fmtx.OpASICVersion, 2)
	require.Equal(t, fmtx.TransportSuccess, st)
	require.Equal(t, []byte{0x12, 0x73}, data)
}

func TestChipFrequency(t *testing.T) {
	testCases := []struct {
		name string
		freq uint32
		bits fmtx.InterruptMask
	}{
		{"valid", 94500, fmtx.IntFrequencyReady},
		{"lowest", MinFrequency, fmtx.IntFrequencyReady},
		{"highest", MaxFrequency, fmtx.IntFrequencyReady},
		{"below", MinFrequency - FrequencyStep, fmtx.IntInvalidParameter},
		{"above", MaxFrequency + FrequencyStep, fmtx.IntInvalidParameter},
		{"off-step", 94510, fmtx.IntInvalidParameter},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, r := poweredChip(t)
			require.Equal(t, fmtx.TransportSuccess, c.SendWrite(fmtx.OpFrequency, fmtx.EncodeValue(tc.freq)))
			require.Equal(t, 1, r.irqs)
			require.Equal(t, tc.bits, readStatus(t, c))
			require.Zero(t, readStatus(t, c))
		})
	}
}

func TestChipMaskedInterrupt(t *testing.T) {
	c, r := poweredChip(t)
	c.SendWrite(fmtx.OpInterruptMask, fmtx.EncodeValue(uint32(fmtx.IntErrors)))
	c.SendWrite(fmtx.OpTransmission, fmtx.EncodeValue(1))
	require.Zero(t, r.irqs)
	// the bit is latched though the line is not asserted
	require.Equal(t, fmtx.IntPowerEnabled, readStatus(t, c))
}

func TestChipRDSBuffer(t *testing.T) {
	c, r := poweredChip(t)
	c.SendWrite(fmtx.OpRDSPSLength, fmtx.EncodeValue(6))
	c.SendWrite(fmtx.OpRDSPSData, []byte("RADI"))
	require.Zero(t, r.irqs)
	c.SendWrite(fmtx.OpRDSPSData, []byte("O1"))
	require.Equal(t, 1, r.irqs)
	require.Equal(t, []byte("RADIO1"), c.Buffer(fmtx.OpRDSPSData))

	data, st := c.SendRead(fmtx.OpRDSPSData, 4)
	require.Equal(t, fmtx.TransportSuccess, st)
	require.Equal(t, []byte("RADI"), data)

	c.SendWrite(fmtx.OpRDSPSLength, fmtx.EncodeValue(2))
	require.Empty(t, c.Buffer(fmtx.OpRDSPSData))
}

func TestChipPowerOffResets(t *testing.T) {
	c, _ := poweredChip(t)
	c.SendWrite(fmtx.OpPowerLevel, fmtx.EncodeValue(20))
	require.Equal(t, uint32(20), c.Register(fmtx.OpPowerLevel))
	c.SendWrite(fmtx.OpPower, fmtx.EncodeValue(0))
	require.False(t, c.Powered())
	require.Zero(t, c.Register(fmtx.OpPowerLevel))
	require.Zero(t, c.InterruptMask())
}

func TestChipFaults(t *testing.T) {
	c, r := poweredChip(t)

	c.Inject(fmtx.OpPowerLevel, FaultReject, 1)
	require.Equal(t, fmtx.TransportError, c.SendWrite(fmtx.OpPowerLevel, fmtx.EncodeValue(3)))
	require.Equal(t, fmtx.TransportSuccess, c.SendWrite(fmtx.OpPowerLevel, fmtx.EncodeValue(3)))

	c.Inject(fmtx.OpFrequency, FaultError, 1)
	require.Equal(t, fmtx.TransportError, c.SendWrite(fmtx.OpFrequency, fmtx.EncodeValue(94500)))
	require.Zero(t, r.irqs)

	c.Inject(fmtx.OpFrequency, FaultMalfunction, 1)
	require.Equal(t, fmtx.TransportSuccess, c.SendWrite(fmtx.OpFrequency, fmtx.EncodeValue(94500)))
	require.Equal(t, fmtx.IntFrequencyReady|fmtx.IntHardwareMalfunction, readStatus(t, c))

	c.Inject(fmtx.OpMuteMode, FaultStall, 0)
	require.Equal(t, fmtx.TransportPending, c.SendWrite(fmtx.OpMuteMode, fmtx.EncodeValue(1)))
	require.Equal(t, fmtx.TransportPending, c.SendWrite(fmtx.OpMuteMode, fmtx.EncodeValue(1)))
	c.Clear()
	require.Equal(t, fmtx.TransportSuccess, c.SendWrite(fmtx.OpMuteMode, fmtx.EncodeValue(1)))
}

func TestParseFault(t *testing.T) {
	for _, f := range []Fault{FaultNone, FaultReject, FaultError, FaultStall, FaultMalfunction} {
		parsed, err := ParseFault(f.String())
		require.NoError(t, err)
		require.Equal(t, f, parsed)
	}
	_, err := ParseFault("boom")
	require.Error(t, err)
}

type chanNotifier struct {
	eventCh chan fmtx.TransportEvent
	irqCh   chan struct{}
}

func (n *chanNotifier) HandleTransportEvent(ev fmtx.TransportEvent) { n.eventCh <- ev }
func (n *chanNotifier) HandleInterrupt()                          { n.irqCh <- struct{}{} }

func TestChipAsync(t *testing.T) {
	n := &chanNotifier{eventCh: make(chan fmtx.TransportEvent, 4), irqCh: make(chan struct{}, 4)}
	c := NewChip()
	c.Notifier, c.Latency = n, time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	expectEvent := func(op fmtx.Opcode) fmtx.TransportEvent {
		select {
		case ev := <-n.eventCh:
			require.Equal(t, op, ev.Opcode)
			return ev
		case <-time.After(time.Second):
			t.Fatalf("no completion of %s", op)
		}
		return fmtx.TransportEvent{}
	}

	require.Equal(t, fmtx.TransportPending, c.SendWrite(fmtx.OpPower, fmtx.EncodeValue(1)))
	require.False(t, expectEvent(fmtx.OpPower).Failed)
	c.SendWrite(fmtx.OpInterruptMask, fmtx.EncodeValue(uint32(fmtx.DefaultInterruptMask)))
	expectEvent(fmtx.OpInterruptMask)

	c.SendWrite(fmtx.OpFrequency, fmtx.EncodeValue(100000))
	expectEvent(fmtx.OpFrequency)
	select {
	case <-n.irqCh:
	case <-time.After(time.Second):
		t.Fatal("no interrupt")
	}

	data, st := c.SendRead(fmtx.OpInterruptStatus, 2)
	require.Nil(t, data)
	require.Equal(t, fmtx.TransportPending, st)
	ev := expectEvent(fmtx.OpInterruptStatus)
	require.Equal(t, fmtx.IntFrequencyReady, fmtx.InterruptMask(fmtx.DecodeValue(ev.Payload())))
}

func TestChipSupersededCompletion(t *testing.T) {
	n := &chanNotifier{eventCh: make(chan fmtx.TransportEvent, 4), irqCh: make(chan struct{}, 4)}
	c := NewChip()
	c.Notifier = n
	c.Inject(fmtx.OpPower, FaultStall, 1)
	require.Equal(t, fmtx.TransportPending, c.SendWrite(fmtx.OpPower, fmtx.EncodeValue(1)))
	require.Equal(t, fmtx.TransportPending, c.SendWrite(fmtx.OpMuteMode, fmtx.EncodeValue(1)))
	require.Equal(t, fmtx.TransportPending, c.SendWrite(fmtx.OpPower, fmtx.EncodeValue(1)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)
	select {
	case ev := <-n.eventCh:
		// the queued completion of the mute write was superseded
		require.Equal(t, fmtx.OpPower, ev.Opcode)
		require.False(t, ev.Failed)
	case <-time.After(time.Second):
		t.Fatal("no completion")
	}
	require.True(t, c.Powered())
}
