package comm

import (
	"context"
	"sync"

	"github.com/golang/glog"

	fx "github.com/robotalks/fmtx/pkg/framework"
)

// Hub is a Registrar serving any number of connections accepted by
// listeners. Events are broadcast to all connections and each command is
// replied on the connection it was received from.
type Hub struct {
	lock  sync.Mutex
	pipes map[*Pipe]struct{}
	ctx   context.Context
	ready chan struct{}
	added bool
}

// NewHub creates a Hub.
func NewHub() *Hub {
	return &Hub{
		pipes: make(map[*Pipe]struct{}),
		ready: make(chan struct{}),
	}
}

// Serve runs a connection until it is closed or the loop stops.
func (h *Hub) Serve(rw PacketReadWriter) error {
	<-h.ready
	p := NewPipe(rw)
	p.Handler = postToLoop(p)
	h.lock.Lock()
	if h.ctx.Err() != nil {
		h.lock.Unlock()
		p.Close()
		return h.ctx.Err()
	}
	h.pipes[p] = struct{}{}
	n := len(h.pipes)
	h.lock.Unlock()
	glog.V(1).Infof("hub: connection accepted, %d active", n)

	err := p.Run(h.ctx)

	h.lock.Lock()
	delete(h.pipes, p)
	n = len(h.pipes)
	h.lock.Unlock()
	glog.V(1).Infof("hub: connection closed (%v), %d active", err, n)
	return err
}

// Connections returns the number of active connections.
func (h *Hub) Connections() int {
	h.lock.Lock()
	defer h.lock.Unlock()
	return len(h.pipes)
}

// SendEvent implements l1.Registrar.
func (h *Hub) SendEvent(ctx context.Context, msg fx.Message) error {
	h.lock.Lock()
	pipes := make([]*Pipe, 0, len(h.pipes))
	for p := range h.pipes {
		pipes = append(pipes, p)
	}
	h.lock.Unlock()
	var errs fx.AggregatedError
	for _, p := range pipes {
		errs.Add(p.SendEventMsg(msg))
	}
	return errs.Aggregate()
}

// Run implements Runnable.
func (h *Hub) Run(ctx context.Context) error {
	h.lock.Lock()
	h.ctx = ctx
	h.lock.Unlock()
	close(h.ready)
	<-ctx.Done()
	h.lock.Lock()
	for p := range h.pipes {
		p.Close()
	}
	h.lock.Unlock()
	return ctx.Err()
}

// AddToLoop implements LoopAdder. A Hub shared by several servers is
// only added once.
func (h *Hub) AddToLoop(l *fx.Loop) {
	h.lock.Lock()
	defer h.lock.Unlock()
	if !h.added {
		h.added = true
		l.AddRunnable(h)
	}
}
