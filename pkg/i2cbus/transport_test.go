package i2cbus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2ctest"

	"github.com/robotalks/fmtx/pkg/fmtx"
)

const addr = 0x63

type chanNotifier chan fmtx.TransportEvent

func (n chanNotifier) HandleTransportEvent(ev fmtx.TransportEvent) { n <- ev }
func (n chanNotifier) HandleInterrupt()                          {}

func runTransport(t *testing.T, ops []i2ctest.IO) (*Transport, chanNotifier, *i2ctest.Playback, func()) {
	bus := &i2ctest.Playback{Ops: ops, DontPanic: true}
	tr := New(&i2c.Dev{Bus: bus, Addr: addr}, nil)
	n := make(chanNotifier, 4)
	tr.Notifier = n
	ctx, cancel := context.WithCancel(context.Background())
	go tr.Run(ctx)
	return tr, n, bus, cancel
}

func expectEvent(t *testing.T, n chanNotifier) fmtx.TransportEvent {
	select {
	case ev := <-n:
		return ev
	case <-time.After(time.Second):
		t.Fatal("no completion")
	}
	return fmtx.TransportEvent{}
}

func TestWrite(t *testing.T) {
	tr, n, bus, stop := runTransport(t, []i2ctest.IO{
		{Addr: addr, W: []byte{byte(fmtx.OpFrequency), 0, 1, 0x71, 0x24}},
	})
	defer stop()
	require.Equal(t, fmtx.TransportPending, tr.SendWrite(fmtx.OpFrequency, fmtx.EncodeValue(94500)))
	ev := expectEvent(t, n)
	require.Equal(t, fmtx.OpFrequency, ev.Opcode)
	require.False(t, ev.Failed)
	require.NoError(t, bus.Close())
}

func TestRead(t *testing.T) {
	tr, n, _, stop := runTransport(t, []i2ctest.IO{
		{Addr: addr, W: []byte{byte(fmtx.OpASICVersion)}, R: []byte{0x12, 0x73}},
	})
	defer stop()
	data, st := tr.SendRead(fmtx.OpASICVersion, 2)
	require.Nil(t, data)
	require.Equal(t, fmtx.TransportPending, st)
	ev := expectEvent(t, n)
	require.False(t, ev.Failed)
	require.Equal(t, []byte{0x12, 0x73}, ev.Payload())

	_, st = tr.SendRead(fmtx.OpASICVersion, 0)
	require.Equal(t, fmtx.TransportError, st)
}

func TestBusError(t *testing.T) {
	tr, n, _, stop := runTransport(t, nil)
	defer stop()
	tr.SendWrite(fmtx.OpPower, fmtx.EncodeValue(1))
	ev := expectEvent(t, n)
	require.Equal(t, fmtx.OpPower, ev.Opcode)
	require.True(t, ev.Failed)
}

func TestTooManyInFlight(t *testing.T) {
	tr := New(&i2c.Dev{Bus: &i2ctest.Playback{DontPanic: true}, Addr: addr}, nil)
	for n := 0; n < cap(tr.reqCh); n++ {
		require.Equal(t, fmtx.TransportPending, tr.SendWrite(fmtx.OpPower, nil))
	}
	require.Equal(t, fmtx.TransportError, tr.SendWrite(fmtx.OpPower, nil))
}

func TestSupersededCompletion(t *testing.T) {
	bus := &i2ctest.Playback{Ops: []i2ctest.IO{
		{Addr: addr, W: []byte{byte(fmtx.OpMuteMode), 0, 0, 0, 1}},
		{Addr: addr, W: []byte{byte(fmtx.OpMuteMode), 0, 0, 0, 0}},
	}, DontPanic: true}
	tr := New(&i2c.Dev{Bus: bus, Addr: addr}, nil)
	n := make(chanNotifier, 4)
	tr.Notifier = n
	require.Equal(t, fmtx.TransportPending, tr.SendWrite(fmtx.OpMuteMode, fmtx.EncodeValue(1)))
	require.Equal(t, fmtx.TransportPending, tr.SendWrite(fmtx.OpMuteMode, fmtx.EncodeValue(0)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go tr.Run(ctx)
	expectEvent(t, n)
	select {
	case ev := <-n:
		t.Fatalf("superseded completion of %s delivered", ev.Opcode)
	case <-time.After(20 * time.Millisecond):
	}
	require.NoError(t, bus.Close())
}
