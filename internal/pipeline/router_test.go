package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aevon-lab/event-worker/internal/events"
)

func TestRouter_Route(t *testing.T) {
	task := handlerFunc(func(context.Context, events.Envelope) Result { return Result{RecordID: "task"} })
	resource := handlerFunc(func(context.Context, events.Envelope) Result { return Result{RecordID: "resource"} })
	r := NewRouter(task, resource)

	tests := []struct {
		topic string
		want  string
	}{
		{"task.completed", "task"},
		{"resource.created", "resource"},
		{"resource.updated", "resource"},
		{"resource.deleted", "resource"},
		{"resource.restored", "resource"},
	}
	for _, tc := range tests {
		h, err := r.Route(tc.topic)
		require.NoError(t, err, tc.topic)
		require.Equal(t, tc.want, h.Handle(context.Background(), events.Envelope{}).RecordID, tc.topic)
	}
}

func TestRouter_UnknownTopic(t *testing.T) {
	r := NewRouter(
		handlerFunc(func(context.Context, events.Envelope) Result { return Result{} }),
		handlerFunc(func(context.Context, events.Envelope) Result { return Result{} }),
	)

	for _, topic := range []string{"foo.bar", "task.completed.v2", "task.started", "resources.created", ""} {
		h, err := r.Route(topic)
		require.Nil(t, h, topic)
		require.ErrorIs(t, err, events.ErrUnknownTopic, topic)
	}
}
