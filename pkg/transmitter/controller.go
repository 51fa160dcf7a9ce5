// Package transmitter hosts an fmtx.Device in a framework Loop.
//
// All device calls happen on the loop goroutine: transport and arbiter
// notifications, local requests and remote commands are posted as messages
// and handled by the controller in the next iteration. The loop tick drives
// the command watchdog.
package transmitter

import (
	"context"

	"github.com/golang/glog"

	"github.com/robotalks/fmtx/pkg/fmtx"
	fx "github.com/robotalks/fmtx/pkg/framework"
	"github.com/robotalks/fmtx/pkg/l1"
	"github.com/robotalks/fmtx/pkg/l1/msgs"
	pb "github.com/robotalks/fmtx/pkg/proto/fmtx/v1"
)

type transportEventMsg struct {
	ev fmtx.TransportEvent
}

type interruptMsg struct{}

type requestMsg struct {
	req    fmtx.Request
	future *Future
}

// Controller is the L1 controller of one transmitter.
type Controller struct {
	Device *fmtx.Device
	// Registrar publishes StatusChanged events, optional.
	Registrar l1.Registrar

	loop      fx.LoopControl
	published bool
	last      fmtx.FirmwareCache
}

// New creates a Controller and installs it as the event handler of dev.
func New(dev *fmtx.Device) *Controller {
	c := &Controller{Device: dev}
	dev.Handler = c
	return c
}

// AddToLoop implements LoopAdder.
func (c *Controller) AddToLoop(l *fx.Loop) {
	c.loop = l
	l.AddController(fx.PrLvEngine, c)
	l.AddController(fx.PrLvPublish, fx.ControlFunc(c.publishStatus))
}

// HandleTransportEvent implements fmtx.Notifier and may be called from any goroutine.
func (c *Controller) HandleTransportEvent(ev fmtx.TransportEvent) {
	c.loop.PostMessage(&transportEventMsg{ev: ev})
}

// HandleInterrupt implements fmtx.Notifier and may be called from any goroutine.
func (c *Controller) HandleInterrupt() {
	c.loop.PostMessage(&interruptMsg{})
}

// Do queues a request from any goroutine.
func (c *Controller) Do(req fmtx.Request) *Future {
	f := newFuture(req.Kind)
	c.loop.PostMessage(&requestMsg{req: req, future: f})
	return f
}

// Control implements Controller.
func (c *Controller) Control(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
		switch m := mctx.CurrentMessage().(type) {
		case *transportEventMsg:
			mctx.MessageTaken()
			c.Device.HandleTransportEvent(m.ev)
		case *interruptMsg:
			mctx.MessageTaken()
			c.Device.HandleInterrupt()
		case *requestMsg:
			mctx.MessageTaken()
			m.req.Context = m.future
			if err := c.Device.Enqueue(m.req); err != nil {
				m.future.fail(err)
			}
		case *l1.CommandMsg:
			c.handleCommand(mctx, m.Command)
		}
	}))
	c.Device.CheckTimeout()
	return nil
}

func (c *Controller) handleCommand(mctx fx.MessageProcessingContext, cmd l1.Command) {
	switch m := cmd.Msg().(type) {
	case *msgs.Request:
		mctx.MessageTaken()
		req, err := m.EngineRequest()
		if err == nil {
			req.Context = cmd
			err = c.Device.Enqueue(req)
		}
		if err != nil {
			glog.V(1).Infof("transmitter: %s rejected: %v", m.Kind, err)
			c.reply(cmd, msgs.NewCommandErr(err))
		}
	case *msgs.StatusQuery:
		mctx.MessageTaken()
		c.reply(cmd, &msgs.DeviceStatus{DeviceStatus: c.status()})
	}
}

func (c *Controller) reply(cmd l1.Command, msg fx.Message) {
	if err := cmd.Done(msg); err != nil {
		glog.Errorf("transmitter: reply error: %v", err)
	}
}

// HandleEvent implements fmtx.EventHandler.
func (c *Controller) HandleEvent(ev *fmtx.Event) {
	switch ctx := ev.Context.(type) {
	case l1.Command:
		c.reply(ctx, msgs.NewCommandDone(ev))
	case *Future:
		ctx.resolve(ev)
	}
}

func (c *Controller) status() pb.DeviceStatus {
	executing := ""
	if kind, ok := c.Device.Executing(); ok {
		executing = kind.String()
	}
	return msgs.StatusOf(c.Device.Cache(), c.Device.Pending(), executing)
}

func (c *Controller) publishStatus(cc fx.ControlContext) error {
	cache := c.Device.Cache()
	if c.published && cache.Equal(c.last) {
		return nil
	}
	c.published, c.last = true, cache
	if c.Registrar == nil {
		return nil
	}
	return c.Registrar.SendEvent(cc.Context(), &msgs.StatusChanged{DeviceStatus: c.status()})
}

// Future is the pending result of Do.
type Future struct {
	Kind fmtx.CommandKind

	done chan struct{}
	ev   fmtx.Event
	err  error
}

func newFuture(kind fmtx.CommandKind) *Future {
	return &Future{Kind: kind, done: make(chan struct{})}
}

func (f *Future) resolve(ev *fmtx.Event) {
	f.ev = *ev
	f.ev.Context = nil
	f.ev.Text = append([]byte(nil), ev.Text...)
	f.err = ev.Err()
	close(f.done)
}

func (f *Future) fail(err error) {
	f.ev = fmtx.Event{Kind: f.Kind, Status: fmtx.StatusInternalError}
	if _, ok := err.(*fmtx.ParamError); ok || err == fmtx.ErrUnknownCommand {
		f.ev.Status = fmtx.StatusInvalidParameter
	}
	f.err = err
	close(f.done)
}

// Done is closed when the command completes.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Result returns the completion, valid after Done is closed. The error is
// the Enqueue error or a *fmtx.StatusError.
func (f *Future) Result() (fmtx.Event, error) {
	return f.ev, f.err
}

// Wait blocks until the command completes or ctx is done.
func (f *Future) Wait(ctx context.Context) (fmtx.Event, error) {
	select {
	case <-ctx.Done():
		return fmtx.Event{Kind: f.Kind}, ctx.Err()
	case <-f.done:
		return f.Result()
	}
}
