package worker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/aevon-lab/event-worker/internal/bus"
	"github.com/aevon-lab/event-worker/internal/pipeline"
)

// State is the worker lifecycle phase.
type State int32

const (
	StateStarting State = iota
	StateRunning
	StateDraining
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "STARTING"
	case StateRunning:
		return "RUNNING"
	case StateDraining:
		return "DRAINING"
	case StateStopped:
		return "STOPPED"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// BatchDispatcher runs a whole batch to completion. *pipeline.Dispatcher satisfies it.
type BatchDispatcher interface {
	Dispatch(ctx context.Context, records []bus.Record) pipeline.BatchSummary
}

type Options struct {
	PollTimeout time.Duration
}

// Worker drives poll, dispatch and shutdown.
type Worker struct {
	subscriber  bus.Subscriber
	dispatcher  BatchDispatcher
	store       io.Closer
	pollTimeout time.Duration
	state       atomic.Int32
}

// New returns a worker in StateStarting. store may be nil; when set it is
// closed after the subscriber during shutdown.
func New(subscriber bus.Subscriber, dispatcher BatchDispatcher, store io.Closer, opts Options) *Worker {
	if subscriber == nil {
		panic("worker: subscriber must not be nil")
	}
	if dispatcher == nil {
		panic("worker: dispatcher must not be nil")
	}
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = time.Second
	}
	w := &Worker{
		subscriber:  subscriber,
		dispatcher:  dispatcher,
		store:       store,
		pollTimeout: opts.PollTimeout,
	}
	w.setState(StateStarting)
	return w
}

func (w *Worker) State() State {
	return State(w.state.Load())
}

func (w *Worker) setState(s State) {
	prev := State(w.state.Swap(int32(s)))
	if prev != s {
		slog.Info("[Worker] State changed", "from", prev.String(), "to", s.String())
	}
}

// Run polls and dispatches until ctx is cancelled or polling fails.
// Cancellation is checked only between polls: a fetched batch is always
// processed in full, with a context that ignores the cancellation.
// The subscriber and the store are closed before Run returns, whatever the cause.
func (w *Worker) Run(ctx context.Context) (err error) {
	defer w.stop()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("worker loop panic: %v", r)
			slog.Error("[Worker] Unexpected error in processing loop", "error", err)
		}
	}()

	w.setState(StateRunning)
	slog.Info("[Worker] Processing loop started", "poll_timeout", w.pollTimeout)

	for {
		if ctx.Err() != nil {
			slog.Info("[Worker] Shutdown requested, leaving processing loop")
			return nil
		}

		batch, pollErr := w.subscriber.Poll(ctx, w.pollTimeout)
		if records := bus.Flatten(batch); len(records) > 0 {
			summary := w.dispatcher.Dispatch(context.WithoutCancel(ctx), records)
			slog.Debug("[Worker] Batch processed",
				"records", summary.Total,
				"succeeded", summary.Succeeded,
				"failed", summary.Failed,
				"errored", summary.Errored)
		}

		if pollErr != nil {
			slog.Error("[Worker] Polling failed, stopping", "error", pollErr)
			return fmt.Errorf("poll: %w", pollErr)
		}
	}
}

func (w *Worker) stop() {
	w.setState(StateDraining)

	if err := w.subscriber.Close(); err != nil {
		slog.Error("[Worker] Failed to close subscriber", "error", err)
	}
	if w.store != nil {
		if err := w.store.Close(); err != nil {
			slog.Error("[Worker] Failed to close store", "error", err)
		}
	}

	w.setState(StateStopped)
	slog.Info("[Worker] Stopped")
}
