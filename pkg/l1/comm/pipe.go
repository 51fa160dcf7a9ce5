package comm

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/golang/glog"

	fx "github.com/robotalks/fmtx/pkg/framework"
	"github.com/robotalks/fmtx/pkg/l1/msgs"
)

// PacketReadWriter carries encoded msgs.Typed packets, one per call.
type PacketReadWriter interface {
	ReadPacket() ([]byte, error)
	WritePacket([]byte) error
}

var (
	// ErrNotCommand is returned when an event is sent as a command or reply.
	ErrNotCommand = errors.New("message is not a command")
	// ErrNotEvent is returned when a command is broadcast as an event.
	ErrNotEvent = errors.New("message is not an event")
)

// Pipe exchanges typed messages with the other end of a PacketReadWriter.
// Commands and their replies share a sequence number, events carry none.
// Packets that fail to decode are skipped, so one bad publisher on a shared
// transport cannot take the device offline.
type Pipe struct {
	ReadWriter PacketReadWriter
	Handler    msgs.TypedMsgHandler

	sendLock sync.Mutex
}

// NewPipe creates a Pipe on rw.
func NewPipe(rw PacketReadWriter) *Pipe {
	return &Pipe{ReadWriter: rw}
}

// SendCommandMsg sends a command, or the reply to command seq.
func (p *Pipe) SendCommandMsg(msg fx.Message, seq uint32) error {
	return p.send(msg, msgs.TypeIDKindCommand, seq)
}

// SendEventMsg sends an event.
func (p *Pipe) SendEventMsg(msg fx.Message) error {
	return p.send(msg, msgs.TypeIDKindEvent, 0)
}

func (p *Pipe) send(msg fx.Message, kind uint32, seq uint32) error {
	typed, err := msgs.TypedFrom(msg)
	if err != nil {
		return err
	}
	if typed.Kind() != kind {
		if kind == msgs.TypeIDKindEvent {
			return ErrNotEvent
		}
		return ErrNotCommand
	}
	typed.Sequence = seq
	return p.SendTyped(typed)
}

// SendTyped encodes and writes typed.
func (p *Pipe) SendTyped(typed *msgs.Typed) error {
	pkt, err := typed.Encode()
	if err != nil {
		return err
	}
	p.sendLock.Lock()
	defer p.sendLock.Unlock()
	return p.ReadWriter.WritePacket(pkt)
}

// Run implements Runnable.
// The ReadWriter is closed when ctx is done to release a blocked read.
func (p *Pipe) Run(ctx context.Context) error {
	return fx.RunWithContextCancel(ctx, func() { p.Close() }, func() error {
		return p.receive(ctx)
	})
}

func (p *Pipe) receive(ctx context.Context) error {
	defer p.Close()
	for {
		pkt, err := p.ReadWriter.ReadPacket()
		if err != nil {
			return err
		}
		if err = p.dispatch(ctx, pkt); err != nil {
			return err
		}
	}
}

// dispatch decodes one packet and hands it to Handler. Only write and
// handler errors are returned.
func (p *Pipe) dispatch(ctx context.Context, pkt []byte) error {
	typed, err := msgs.DecodeTyped(pkt)
	if err != nil {
		glog.Warningf("pipe: dropped malformed packet (%d bytes): %v", len(pkt), err)
		return nil
	}
	msg, err := typed.Decode()
	if err != nil {
		if typed.IsCommand() && !typed.IsReply() {
			glog.V(1).Infof("pipe: command %x seq %d rejected: %v", typed.TypeId, typed.Sequence, err)
			return p.SendCommandMsg(msgs.NewCommandErr(err), typed.Sequence)
		}
		glog.V(1).Infof("pipe: dropped %x: %v", typed.TypeId, err)
		return nil
	}
	if h := p.Handler; h != nil {
		return h.HandleTypedMsg(ctx, msg, typed)
	}
	return nil
}

// Close implements io.Closer.
func (p *Pipe) Close() error {
	if closer, ok := p.ReadWriter.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// AddToLoop implements LoopAdder. A ReadWriter that needs running, such as
// a broker subscription, is added along with the Pipe.
func (p *Pipe) AddToLoop(loop *fx.Loop) {
	switch rw := p.ReadWriter.(type) {
	case fx.LoopAdder:
		loop.Add(rw)
	case fx.Runnable:
		loop.AddRunnable(rw)
	}
	loop.AddRunnable(p)
}
