package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aevon-lab/event-worker/internal/core/storage"
	"github.com/aevon-lab/event-worker/internal/events"
)

const opInsert = "insert"

// Database operation status label values.
const (
	dbStatusSuccess   = "success"
	dbStatusDuplicate = "duplicate"
	dbStatusError     = "error"
)

// Handler validates one event family and persists it.
type Handler interface {
	Handle(ctx context.Context, env events.Envelope) Result
}

// recordWriter is the transactional write shared by every handler.
type recordWriter struct {
	store    storage.ProcessedEventStore
	observer Observer
	now      func() time.Time
}

func newRecordWriter(store storage.ProcessedEventStore, observer Observer) recordWriter {
	if store == nil {
		panic("pipeline: store must not be nil")
	}
	return recordWriter{
		store:    store,
		observer: observerOrNoop(observer),
		now:      time.Now,
	}
}

func (w recordWriter) persist(ctx context.Context, event *storage.ProcessedEvent) Result {
	err := w.store.SaveProcessedEvent(ctx, event)
	switch {
	case err == nil:
		w.observer.ObserveDBOperation(opInsert, dbStatusSuccess)
		slog.Debug("[Handler] Processed event saved",
			"id", event.ID,
			"event_type", event.EventType,
			"resource_id", event.ResourceID)
		return Result{Outcome: OutcomeSuccess, RecordID: event.ID}

	case errors.Is(err, storage.ErrDuplicate):
		w.observer.ObserveDBOperation(opInsert, dbStatusDuplicate)
		slog.Info("[Handler] Event already persisted, skipping",
			"id", event.ID,
			"event_type", event.EventType,
			"resource_id", event.ResourceID)
		return Result{Outcome: OutcomeSuccess, RecordID: event.ID, Duplicate: true}

	default:
		w.observer.ObserveDBOperation(opInsert, dbStatusError)
		slog.Error("[Handler] Failed to save processed event",
			"id", event.ID,
			"event_type", event.EventType,
			"resource_id", event.ResourceID,
			"error", err)
		return Result{Outcome: OutcomePersistenceFailed, Err: err, RecordID: event.ID}
	}
}

func validationFailed(env events.Envelope, err error) Result {
	slog.Error("[Handler] Invalid event payload",
		"topic", env.Topic,
		"partition", env.Partition,
		"offset", env.Offset,
		"error", err)
	return Result{Outcome: OutcomeValidationFailed, Err: err}
}

// TaskCompletedHandler persists task.completed events.
type TaskCompletedHandler struct {
	recordWriter
}

func NewTaskCompletedHandler(store storage.ProcessedEventStore, observer Observer) *TaskCompletedHandler {
	return &TaskCompletedHandler{recordWriter: newRecordWriter(store, observer)}
}

func (h *TaskCompletedHandler) Handle(ctx context.Context, env events.Envelope) Result {
	evt, err := events.ParseTaskCompleted(env)
	if err != nil {
		return validationFailed(env, err)
	}

	taskID := evt.TaskID
	return h.persist(ctx, &storage.ProcessedEvent{
		ID:          storage.RecordID(events.TopicTaskCompleted, env.SourceID()),
		EventType:   events.TopicTaskCompleted,
		ResourceID:  evt.ResourceID,
		TaskID:      &taskID,
		Action:      evt.Action,
		Payload:     env.Body(),
		ProcessedAt: h.now().UTC(),
	})
}

// ResourceEventHandler persists resource.* lifecycle events.
type ResourceEventHandler struct {
	recordWriter
}

func NewResourceEventHandler(store storage.ProcessedEventStore, observer Observer) *ResourceEventHandler {
	return &ResourceEventHandler{recordWriter: newRecordWriter(store, observer)}
}

func (h *ResourceEventHandler) Handle(ctx context.Context, env events.Envelope) Result {
	evt, err := events.ParseResourceEvent(env)
	if err != nil {
		return validationFailed(env, err)
	}

	return h.persist(ctx, &storage.ProcessedEvent{
		ID:          storage.RecordID(env.Topic, env.SourceID()),
		EventType:   env.Topic,
		ResourceID:  evt.ResourceID,
		Action:      evt.Action,
		Payload:     env.Body(),
		ProcessedAt: h.now().UTC(),
	})
}
