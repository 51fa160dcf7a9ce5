package chiplink

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/fmtx/pkg/fmtx"
)

type testStream struct {
	readCh  chan []byte
	lock    sync.Mutex
	written []byte
}

func newTestStream() *testStream {
	return &testStream{readCh: make(chan []byte, 4)}
}

func (s *testStream) Read(p []byte) (int, error) {
	b, ok := <-s.readCh
	if !ok {
		return 0, io.EOF
	}
	return copy(p, b), nil
}

func (s *testStream) Write(p []byte) (int, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.written = append(s.written, p...)
	return len(p), nil
}

func (s *testStream) frames(t *testing.T) []*Frame {
	s.lock.Lock()
	defer s.lock.Unlock()
	var p Parser
	frames, errs := parseAll(&p, s.written)
	require.Empty(t, errs)
	return frames
}

type testNotifier struct {
	eventCh chan fmtx.TransportEvent
	irqCh   chan struct{}
}

func newTestNotifier() *testNotifier {
	return &testNotifier{
		eventCh: make(chan fmtx.TransportEvent, 4),
		irqCh:   make(chan struct{}, 4),
	}
}

func (n *testNotifier) HandleTransportEvent(ev fmtx.TransportEvent) { n.eventCh <- ev }
func (n *testNotifier) HandleInterrupt()                          { n.irqCh <- struct{}{} }

func runLink(t *testing.T) (*Link, *testStream, *testNotifier, func()) {
	stream, notifier := newTestStream(), newTestNotifier()
	link := NewLink(stream)
	link.Notifier = notifier
	ctx, cancel := context.WithCancel(context.Background())
	doneCh := make(chan error, 1)
	go func() { doneCh <- link.Run(ctx) }()
	return link, stream, notifier, func() {
		cancel()
		select {
		case <-doneCh:
		case <-time.After(time.Second):
			t.Fatal("link not stopped")
		}
	}
}

func TestLinkWriteReply(t *testing.T) {
	link, stream, notifier, stop := runLink(t)
	defer stop()

	require.Equal(t, fmtx.TransportPending, link.SendWrite(fmtx.OpFrequency, fmtx.EncodeValue(94500)))
	frames := stream.frames(t)
	require.Len(t, frames, 1)
	req := frames[0]
	require.Equal(t, fmtx.OpFrequency, req.Op)
	require.Equal(t, byte(0), req.Flags)
	require.Equal(t, fmtx.EncodeValue(94500), req.Data)

	stream.readCh <- encode(t, &Frame{Seq: req.Seq, Flags: FlagReply, Op: fmtx.OpFrequency})
	select {
	case ev := <-notifier.eventCh:
		require.Equal(t, fmtx.SourceChip, ev.Source)
		require.Equal(t, fmtx.OpFrequency, ev.Opcode)
		require.False(t, ev.Failed)
	case <-time.After(time.Second):
		t.Fatal("no completion")
	}
}

func TestLinkReadReply(t *testing.T) {
	link, stream, notifier, stop := runLink(t)
	defer stop()

	data, st := link.SendRead(fmtx.OpASICVersion, 2)
	require.Nil(t, data)
	require.Equal(t, fmtx.TransportPending, st)
	req := stream.frames(t)[0]
	require.Equal(t, FlagRead, req.Flags)
	require.Equal(t, []byte{2}, req.Data)

	stream.readCh <- encode(t, &Frame{Seq: req.Seq, Flags: FlagReply, Op: fmtx.OpASICVersion, Data: []byte{0x12, 0x73}})
	select {
	case ev := <-notifier.eventCh:
		require.Equal(t, []byte{0x12, 0x73}, ev.Payload())
	case <-time.After(time.Second):
		t.Fatal("no completion")
	}
}

func TestLinkErrorReplyAndInterrupt(t *testing.T) {
	link, stream, notifier, stop := runLink(t)
	defer stop()

	link.SendWrite(fmtx.OpPower, fmtx.EncodeValue(1))
	req := stream.frames(t)[0]
	// stale reply with a wrong seq is dropped
	stream.readCh <- encode(t, &Frame{Seq: req.Seq.Next(), Flags: FlagReply, Op: fmtx.OpPower})
	stream.readCh <- encode(t, &Frame{Seq: 1, Flags: FlagInterrupt})
	stream.readCh <- encode(t, &Frame{Seq: req.Seq, Flags: FlagReply | FlagError, Op: fmtx.OpPower})

	select {
	case <-notifier.irqCh:
	case <-time.After(time.Second):
		t.Fatal("no interrupt")
	}
	select {
	case ev := <-notifier.eventCh:
		require.True(t, ev.Failed)
	case <-time.After(time.Second):
		t.Fatal("no completion")
	}
	stats := link.Stats()
	require.Equal(t, uint64(3), stats.Frames)
	require.Equal(t, uint64(1), stats.Interrupts)
	require.Equal(t, uint64(1), stats.Dropped)
}

func TestLinkStreamError(t *testing.T) {
	stream := newTestStream()
	link := NewLink(stream)
	close(stream.readCh)
	require.Equal(t, io.EOF, link.Run(context.Background()))
}
