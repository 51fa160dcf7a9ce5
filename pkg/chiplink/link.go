package chiplink

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/fmtx/pkg/fmtx"
)

// Stats counts link events.
type Stats struct {
	Frames     uint64
	Interrupts uint64
	CRCErrors  uint64
	Dropped    uint64
	Timeouts   uint64
}

type pendingOp struct {
	seq Seq
	op  fmtx.Opcode
}

// Link implements fmtx.Transport over a framed byte stream. Completions and
// interrupts are delivered to Notifier from the goroutine executing Run.
type Link struct {
	ReadWriter io.ReadWriter
	Notifier   fmtx.Notifier
	// ByteTimeout drops a partially received frame.
	ByteTimeout time.Duration

	lock    sync.Mutex
	seq     Seq
	pending *pendingOp
	stats   Stats

	parser Parser
	timer  <-chan time.Time
}

// NewLink creates a Link.
func NewLink(rw io.ReadWriter) *Link {
	return &Link{
		ReadWriter:  rw,
		ByteTimeout: 50 * time.Millisecond,
		seq:         NewSeq(),
	}
}

// Stats returns a snapshot of the counters.
func (l *Link) Stats() Stats {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.stats
}

// SendWrite implements fmtx.Transport.
func (l *Link) SendWrite(op fmtx.Opcode, data []byte) fmtx.TransportStatus {
	return l.send(&Frame{Op: op, Data: data})
}

// SendRead implements fmtx.Transport. Read data arrives with the reply.
func (l *Link) SendRead(op fmtx.Opcode, length int) ([]byte, fmtx.TransportStatus) {
	if length > MaxData {
		return nil, fmtx.TransportError
	}
	return nil, l.send(&Frame{Op: op, Flags: FlagRead, Data: []byte{byte(length)}})
}

func (l *Link) send(f *Frame) fmtx.TransportStatus {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.pending != nil {
		glog.Warningf("chiplink: %s abandoned by %s", l.pending.op, f.Op)
		l.stats.Dropped++
	}
	f.Seq = l.seq
	if _, err := f.WriteTo(l.ReadWriter); err != nil {
		glog.Errorf("chiplink: send %s: %v", f.Op, err)
		l.pending = nil
		return fmtx.TransportError
	}
	l.pending = &pendingOp{seq: f.Seq, op: f.Op}
	l.seq = l.seq.Next()
	return fmtx.TransportPending
}

// Run reads frames until ctx is done or the stream fails.
func (l *Link) Run(ctx context.Context) error {
	byteCh, errCh := make(chan byte), make(chan error, 1)
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go l.readLoop(subCtx, byteCh, errCh)
	for {
		select {
		case b := <-byteCh:
			l.apply(l.parser.Parse(b))
		case err := <-errCh:
			return err
		case <-ctx.Done():
			return ctx.Err()
		case <-l.timer:
			l.timer = nil
			if l.parser.Timeout() {
				l.count(func(s *Stats) { s.Timeouts++ })
			}
		}
	}
}

func (l *Link) readLoop(ctx context.Context, byteCh chan<- byte, errCh chan<- error) {
	buf := make([]byte, 64)
	for {
		n, err := l.ReadWriter.Read(buf)
		if err != nil && !os.IsTimeout(err) {
			errCh <- err
			return
		}
		for _, b := range buf[:n] {
			select {
			case byteCh <- b:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (l *Link) apply(r ParseResult) {
	switch r.WhatAboutTimer() {
	case TimerRestart:
		l.timer = time.After(l.ByteTimeout)
	case TimerStop:
		l.timer = nil
	}
	if r.Err != nil {
		glog.Warningf("chiplink: %v", r.Err)
		if _, ok := r.Err.(*CRCError); ok {
			l.count(func(s *Stats) { s.CRCErrors++ })
		}
		return
	}
	if r.Frame != nil {
		l.handleFrame(r.Frame)
	}
}

func (l *Link) handleFrame(f *Frame) {
	l.lock.Lock()
	l.stats.Frames++
	if f.IsInterrupt() {
		l.stats.Interrupts++
		l.lock.Unlock()
		if n := l.Notifier; n != nil {
			n.HandleInterrupt()
		}
		return
	}
	p := l.pending
	if !f.IsReply() || p == nil || p.seq != f.Seq {
		l.stats.Dropped++
		l.lock.Unlock()
		glog.V(2).Infof("chiplink: unexpected frame seq %d op %s", f.Seq, f.Op)
		return
	}
	l.pending = nil
	l.lock.Unlock()
	if n := l.Notifier; n != nil {
		n.HandleTransportEvent(fmtx.NewChipEvent(p.op, f.Failed(), f.Data))
	}
}

func (l *Link) count(fn func(*Stats)) {
	l.lock.Lock()
	fn(&l.stats)
	l.lock.Unlock()
}
