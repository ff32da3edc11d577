package bus

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	written []kafka.Message
	err     error
	closed  bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.written = append(w.written, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func headerValue(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestDeadLetterPublisher_Publish(t *testing.T) {
	writer := &fakeWriter{}
	pub := &DeadLetterPublisher{writer: writer, topic: "worker.dlq"}

	rec := Record{Topic: "task.completed", Partition: 2, Offset: 77, Key: "res-1", Value: []byte(`{"task_id":""}`)}
	require.NoError(t, pub.Publish(context.Background(), rec, errors.New("missing required fields: task_id")))

	require.Len(t, writer.written, 1)
	got := writer.written[0]
	require.Equal(t, []byte("res-1"), got.Key)
	require.Equal(t, rec.Value, got.Value)
	require.Equal(t, "missing required fields: task_id", headerValue(got, HeaderError))
	require.Equal(t, "task.completed", headerValue(got, HeaderSourceTopic))
	require.Equal(t, "2", headerValue(got, HeaderSourcePartition))
	require.Equal(t, "77", headerValue(got, HeaderSourceOffset))

	require.NoError(t, pub.Close())
	require.True(t, writer.closed)
}

func TestDeadLetterPublisher_PublishError(t *testing.T) {
	pub := &DeadLetterPublisher{writer: &fakeWriter{err: errors.New("leader not available")}, topic: "worker.dlq"}

	err := pub.Publish(context.Background(), Record{Topic: "foo.bar"}, nil)
	require.ErrorContains(t, err, "dead letter publish to worker.dlq: leader not available")
}
