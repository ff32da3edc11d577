package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/aevon-lab/event-worker/internal/bus"
	"github.com/aevon-lab/event-worker/internal/events"
)

const spanProcessMessage = "process_message"

// DeadLetterSink receives records that can never succeed as sent.
type DeadLetterSink interface {
	Publish(ctx context.Context, rec bus.Record, cause error) error
}

// Processor runs one record through decode, routing and persistence,
// and reports the outcome to the observer and the tracer.
type Processor struct {
	router      *Router
	observer    Observer
	tracer      trace.Tracer
	deadLetters DeadLetterSink
}

type ProcessorOption func(*Processor)

func WithTracer(tracer trace.Tracer) ProcessorOption {
	return func(p *Processor) {
		if tracer != nil {
			p.tracer = tracer
		}
	}
}

// WithDeadLetters forwards validation failures and unroutable records to sink.
func WithDeadLetters(sink DeadLetterSink) ProcessorOption {
	return func(p *Processor) {
		p.deadLetters = sink
	}
}

func NewProcessor(router *Router, observer Observer, opts ...ProcessorOption) *Processor {
	if router == nil {
		panic("pipeline: router must not be nil")
	}
	p := &Processor{
		router:   router,
		observer: observerOrNoop(observer),
		tracer:   noop.NewTracerProvider().Tracer(""),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process handles rec and never panics. A panic inside a handler is reported as OutcomeError.
func (p *Processor) Process(ctx context.Context, rec bus.Record) (res Result) {
	start := time.Now()
	ctx, span := p.tracer.Start(ctx, spanProcessMessage,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("topic", rec.Topic),
			attribute.String("key", rec.Key),
		))
	defer span.End()

	slog.Debug("[Processor] Processing message",
		"topic", rec.Topic,
		"partition", rec.Partition,
		"offset", rec.Offset,
		"key", rec.Key)

	defer func() {
		if r := recover(); r != nil {
			res = Result{Outcome: OutcomeError, Err: fmt.Errorf("panic while handling message: %v", r)}
		}
		p.finish(ctx, span, rec, res, time.Since(start))
	}()

	return p.dispatch(ctx, rec)
}

func (p *Processor) dispatch(ctx context.Context, rec bus.Record) Result {
	handler, err := p.router.Route(rec.Topic)
	if err != nil {
		return Result{Outcome: OutcomeUnroutable, Err: err}
	}

	env, err := events.Decode(rec.Topic, rec.Key, rec.Value)
	if err != nil {
		slog.Error("[Processor] Failed to decode message",
			"topic", rec.Topic,
			"partition", rec.Partition,
			"offset", rec.Offset,
			"error", err)
		return Result{Outcome: OutcomeValidationFailed, Err: err}
	}
	env.Partition = rec.Partition
	env.Offset = rec.Offset

	return handler.Handle(ctx, env)
}

func (p *Processor) finish(ctx context.Context, span trace.Span, rec bus.Record, res Result, elapsed time.Duration) {
	status := res.Outcome.Status()
	p.observer.ObserveMessage(rec.Topic, status, elapsed)

	span.SetAttributes(
		attribute.String("status", status),
		attribute.String("outcome", res.Outcome.String()),
	)
	if res.RecordID != "" {
		span.SetAttributes(attribute.String("record_id", res.RecordID))
	}
	if res.Err != nil {
		span.RecordError(res.Err)
	}
	if res.OK() {
		span.SetStatus(codes.Ok, "")
	} else {
		span.SetStatus(codes.Error, res.Outcome.String())
	}

	if res.Outcome == OutcomeError {
		slog.Error("[Processor] Unexpected error while processing message",
			"topic", rec.Topic,
			"partition", rec.Partition,
			"offset", rec.Offset,
			"error", res.Err)
	}

	slog.Info("[Processor] Message processed",
		"topic", rec.Topic,
		"partition", rec.Partition,
		"offset", rec.Offset,
		"status", status,
		"duplicate", res.Duplicate,
		"duration", elapsed)

	if p.deadLetters != nil && deadLettered(res.Outcome) {
		if err := p.deadLetters.Publish(ctx, rec, res.Err); err != nil {
			slog.Error("[Processor] Failed to forward message to dead letter topic",
				"topic", rec.Topic,
				"offset", rec.Offset,
				"error", err)
		}
	}
}

// deadLettered reports whether redelivering the same bytes could never succeed.
func deadLettered(o Outcome) bool {
	return o == OutcomeValidationFailed || o == OutcomeUnroutable
}
