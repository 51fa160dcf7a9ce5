package comm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/fmtx/pkg/fmtx"
	fx "github.com/robotalks/fmtx/pkg/framework"
	"github.com/robotalks/fmtx/pkg/l1"
	"github.com/robotalks/fmtx/pkg/l1/msgs"
)

// echoDevice replies a StatusQuery with DeviceStatus and publishes an event.
type echoDevice struct {
	reg l1.Registrar
}

func (d *echoDevice) Control(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
		cmdMsg, ok := mctx.CurrentMessage().(*l1.CommandMsg)
		if !ok {
			return
		}
		if _, ok := cmdMsg.Command.Msg().(*msgs.StatusQuery); ok {
			mctx.MessageTaken()
			reply := &msgs.DeviceStatus{}
			reply.FrequencyKhz = 94500
			cmdMsg.Command.Done(reply)
			ev := &msgs.StatusChanged{}
			ev.FrequencyKhz = 94500
			d.reg.SendEvent(cc.Context(), ev)
		}
	}))
	return nil
}

type eventSink chan fx.Message

func (s eventSink) Control(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
		if _, ok := mctx.CurrentMessage().(*msgs.StatusChanged); ok {
			mctx.MessageTaken()
			s <- mctx.CurrentMessage()
		}
	}))
	return nil
}

func startLoop(t *testing.T, adders ...fx.LoopAdder) func() {
	loop := fx.NewLoop()
	loop.Interval = 10 * time.Millisecond
	loop.Add(adders...)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(done)
	}()
	return func() {
		cancel()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Error("loop did not stop")
		}
	}
}

type adderFunc func(*fx.Loop)

func (f adderFunc) AddToLoop(l *fx.Loop) { f(l) }

func connect(t *testing.T, rw PacketReadWriter) (*DeviceConn, eventSink, func()) {
	conn := &DeviceConn{}
	conn.Init(rw)
	events := make(eventSink, 4)
	stop := startLoop(t, conn, adderFunc(func(l *fx.Loop) {
		l.AddController(fx.PrLvNormal, events)
	}))
	return conn, events, stop
}

func expectStatus(t *testing.T, conn *DeviceConn, events eventSink) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	reply, err := l1.Wait(ctx, conn.DoCommand(&msgs.StatusQuery{}))
	require.NoError(t, err)
	st, ok := reply.(*msgs.DeviceStatus)
	require.True(t, ok)
	require.Equal(t, uint32(94500), st.FrequencyKhz)
	select {
	case ev := <-events:
		require.Equal(t, uint32(94500), ev.(*msgs.StatusChanged).FrequencyKhz)
	case <-time.After(time.Second):
		t.Fatal("no event")
	}
}

func TestRegistrarRoundTrip(t *testing.T) {
	devSide, clientSide := NewMemoryPair()
	reg := &Registrar{}
	reg.Init(devSide)
	stopDev := startLoop(t, reg, adderFunc(func(l *fx.Loop) {
		l.AddController(fx.PrLvNormal, &echoDevice{reg: reg})
		l.Add(&UnsupportedCommands{})
	}))
	defer stopDev()
	conn, events, stopConn := connect(t, clientSide)
	defer stopConn()

	expectStatus(t, conn, events)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := l1.Wait(ctx, conn.DoCommand(msgs.NewRequest(fmtxTune())))
	require.Error(t, err)
	require.Equal(t, msgs.ErrUnsupportedCommand.Error(), err.Error())
	require.Equal(t, 0, conn.InFlight())
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub()
	muxReg := &RegistrarMux{}
	muxReg.Add(hub)
	stopDev := startLoop(t, muxReg, adderFunc(func(l *fx.Loop) {
		l.AddController(fx.PrLvNormal, &echoDevice{reg: muxReg})
	}))
	defer stopDev()

	var conns []*DeviceConn
	var sinks []eventSink
	for n := 0; n < 2; n++ {
		devSide, clientSide := NewMemoryPair()
		go hub.Serve(devSide)
		conn, events, stop := connect(t, clientSide)
		defer stop()
		conns, sinks = append(conns, conn), append(sinks, events)
	}
	for n := 0; n < 100 && hub.Connections() < 2; n++ {
		time.Sleep(10 * time.Millisecond)
	}
	require.Equal(t, 2, hub.Connections())

	expectStatus(t, conns[0], sinks[0])
	select {
	case <-sinks[1]:
	case <-time.After(time.Second):
		t.Fatal("event not broadcast")
	}
	expectStatus(t, conns[1], sinks[1])
}

func TestCommandExpiration(t *testing.T) {
	_, clientSide := NewMemoryPair()
	conn := &DeviceConn{}
	conn.Init(clientSide)
	conn.Expiration = time.Millisecond
	loop := fx.NewLoop()
	loop.Add(conn)
	f := conn.DoCommand(&msgs.StatusQuery{})
	require.Equal(t, 1, conn.InFlight())
	loop.RunIteration(context.Background(), time.Now().Add(time.Second))
	r := <-f.ResultChan()
	require.Equal(t, context.DeadlineExceeded, r.Err)
	require.Equal(t, 0, conn.InFlight())
}

func TestPipeSkipsMalformedPackets(t *testing.T) {
	devSide, clientSide := NewMemoryPair()
	reg := &Registrar{}
	reg.Init(devSide)
	stopDev := startLoop(t, reg, adderFunc(func(l *fx.Loop) {
		l.AddController(fx.PrLvNormal, &echoDevice{reg: reg})
	}))
	defer stopDev()

	require.NoError(t, clientSide.WritePacket([]byte{0xff, 0xff, 0xff}))
	conn, events, stopConn := connect(t, clientSide)
	defer stopConn()
	expectStatus(t, conn, events)
}

func TestPipeRejectsUnknownCommand(t *testing.T) {
	devSide, clientSide := NewMemoryPair()
	reg := &Registrar{}
	reg.Init(devSide)
	defer startLoop(t, reg)()

	typed := &msgs.Typed{}
	typed.TypeId, typed.Sequence = msgs.GroupCustom|0x0005, 9
	require.NoError(t, NewPipe(clientSide).SendTyped(typed))
	pkt, err := clientSide.ReadPacket()
	require.NoError(t, err)
	reply, err := msgs.DecodeTyped(pkt)
	require.NoError(t, err)
	require.Equal(t, uint32(9), reply.Sequence)
	msg, err := reply.Decode()
	require.NoError(t, err)
	_, ok := msg.(*msgs.CommandErr)
	require.True(t, ok)
}

func TestPipeSendKinds(t *testing.T) {
	a, _ := NewMemoryPair()
	p := NewPipe(a)
	require.Equal(t, ErrNotEvent, p.SendEventMsg(&msgs.StatusQuery{}))
	require.Equal(t, ErrNotCommand, p.SendCommandMsg(&msgs.StatusChanged{}, 1))
	require.Equal(t, msgs.ErrNotSerializable, p.SendEventMsg("status"))
	require.NoError(t, p.SendEventMsg(&msgs.StatusChanged{}))
}

func TestMemoryPairClose(t *testing.T) {
	a, b := NewMemoryPair()
	require.NoError(t, a.WritePacket([]byte{1}))
	pkt, err := b.ReadPacket()
	require.NoError(t, err)
	require.Equal(t, []byte{1}, pkt)
	require.NoError(t, a.Close())
	require.Error(t, b.WritePacket([]byte{2}))
}

func fmtxTune() fmtx.Request {
	return fmtx.Request{Kind: fmtx.CmdTune, Value: 94500}
}
