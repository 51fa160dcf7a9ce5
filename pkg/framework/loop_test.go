package framework

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoopPriorityOrder(t *testing.T) {
	var order []int
	loop := NewLoop()
	for _, lv := range []int{PrLvPublish, PrLvIngest, PrLvEngine} {
		lv := lv
		loop.AddController(lv, ControlFunc(func(cc ControlContext) error {
			require.Equal(t, lv, cc.PriorityLevel())
			order = append(order, lv)
			return nil
		}))
	}
	loop.RunIteration(context.Background(), time.Now())
	require.Equal(t, []int{PrLvIngest, PrLvEngine, PrLvPublish}, order)
}

func TestLoopMessages(t *testing.T) {
	loop := NewLoop()
	var taken, seen []Message
	loop.AddController(PrLvIngest, ControlFunc(func(cc ControlContext) error {
		cc.Messages().ProcessMessages(ProcessMessageFunc(func(mc MessageProcessingContext) {
			if n, ok := mc.CurrentMessage().(int); ok && n%2 == 0 {
				taken = append(taken, n)
				mc.MessageTaken()
			}
		}))
		cc.Messages().AddMessages("added")
		return nil
	}))
	loop.AddController(PrLvEngine, ControlFunc(func(cc ControlContext) error {
		cc.Messages().ProcessMessages(ProcessMessageFunc(func(mc MessageProcessingContext) {
			seen = append(seen, mc.CurrentMessage())
			mc.MessageTaken()
		}))
		return nil
	}))
	for n := 1; n <= 4; n++ {
		loop.PostMessage(n)
	}
	loop.RunIteration(context.Background(), time.Now())
	require.Equal(t, []Message{2, 4}, taken)
	require.Equal(t, []Message{1, 3, "added"}, seen)

	seen = nil
	loop.RunIteration(context.Background(), time.Now())
	require.Equal(t, []Message{"added"}, seen)
}

func TestLoopStopProcessing(t *testing.T) {
	loop := NewLoop()
	var first, second []Message
	loop.AddController(PrLvIngest, ControlFunc(func(cc ControlContext) error {
		cc.Messages().ProcessMessages(ProcessMessageFunc(func(mc MessageProcessingContext) {
			first = append(first, mc.CurrentMessage())
			mc.StopProcessing()
		}))
		return nil
	}))
	loop.AddController(PrLvEngine, ControlFunc(func(cc ControlContext) error {
		cc.Messages().ProcessMessages(ProcessMessageFunc(func(mc MessageProcessingContext) {
			second = append(second, mc.CurrentMessage())
		}))
		return nil
	}))
	loop.PostMessage("a")
	loop.PostMessage("b")
	loop.PostMessage("c")
	loop.RunIteration(context.Background(), time.Now())
	require.Equal(t, []Message{"a"}, first)
	require.Equal(t, []Message{"a", "b", "c"}, second)
}

func TestLoopRunWakesUpOnMessage(t *testing.T) {
	loop := NewLoop()
	loop.Interval = time.Hour
	gotCh := make(chan Message, 1)
	loop.AddController(PrLvEngine, ControlFunc(func(cc ControlContext) error {
		cc.Messages().ProcessMessages(ProcessMessageFunc(func(mc MessageProcessingContext) {
			gotCh <- mc.CurrentMessage()
			mc.MessageTaken()
		}))
		return nil
	}))
	ctx, cancel := context.WithCancel(context.Background())
	doneCh := make(chan error, 1)
	go func() { doneCh <- loop.Run(ctx) }()

	loop.PostMessage("hello")
	select {
	case msg := <-gotCh:
		require.Equal(t, "hello", msg)
	case <-time.After(time.Second):
		t.Fatal("message not processed")
	}
	cancel()
	select {
	case err := <-doneCh:
		require.Equal(t, context.Canceled, err)
	case <-time.After(time.Second):
		t.Fatal("loop not stopped")
	}
}

func TestRunnerAggregatesErrors(t *testing.T) {
	errA, errB := errors.New("a"), errors.New("b")
	r := NewRunner().Go(
		RunFunc(func(context.Context) error { return errA }),
		NamedRun("b", RunFunc(func(context.Context) error { return errB })),
		RunFunc(func(context.Context) error { return context.Canceled }),
	)
	err := r.Wait()
	require.Error(t, err)
	agg, ok := err.(*AggregatedError)
	require.True(t, ok)
	require.Len(t, agg.Errors, 2)
	require.Contains(t, agg.Errors, errA)
	require.Contains(t, agg.Errors, errB)
}

func TestAggregatedError(t *testing.T) {
	var errs AggregatedError
	require.Nil(t, errs.Aggregate())
	errs.Add(nil, errors.New("one"))
	require.Equal(t, "one", errs.Aggregate().Error())
	var nested AggregatedError
	nested.Add(errors.New("two"), errors.New("three"))
	errs.Add(&nested)
	require.Len(t, errs.Errors, 3)
	require.Equal(t, "multiple errors:\n  one\n  two\n  three", errs.Error())
}

type fakeCloser struct{ closed chan struct{} }

func (c *fakeCloser) Close() error {
	close(c.closed)
	return nil
}

func TestRunWithContextCloser(t *testing.T) {
	closer := &fakeCloser{closed: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RunWithContextCloser(ctx, closer, func() error {
		<-closer.closed
		return errors.New("closed")
	})
	require.Equal(t, context.Canceled, err)
}
