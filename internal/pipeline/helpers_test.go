package pipeline

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aevon-lab/event-worker/internal/bus"
	"github.com/aevon-lab/event-worker/internal/events"
)

// recordingObserver counts observations by label set.
type recordingObserver struct {
	mu       sync.Mutex
	messages map[[2]string]int
	dbOps    map[[2]string]int
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{
		messages: map[[2]string]int{},
		dbOps:    map[[2]string]int{},
	}
}

func (o *recordingObserver) ObserveMessage(topic, status string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.messages[[2]string{topic, status}]++
}

func (o *recordingObserver) ObserveDBOperation(operation, status string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.dbOps[[2]string{operation, status}]++
}

func (o *recordingObserver) message(topic, status string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.messages[[2]string{topic, status}]
}

func (o *recordingObserver) dbOp(operation, status string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.dbOps[[2]string{operation, status}]
}

func (o *recordingObserver) totalDBOps() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := 0
	for _, c := range o.dbOps {
		n += c
	}
	return n
}

type handlerFunc func(ctx context.Context, env events.Envelope) Result

func (f handlerFunc) Handle(ctx context.Context, env events.Envelope) Result {
	return f(ctx, env)
}

func envelope(t *testing.T, topic, body string, partition int, offset int64) events.Envelope {
	t.Helper()
	env, err := events.Decode(topic, "", []byte(body))
	require.NoError(t, err)
	env.Partition = partition
	env.Offset = offset
	return env
}

func record(topic, key, body string, offset int64) bus.Record {
	return bus.Record{Topic: topic, Key: key, Value: []byte(body), Offset: offset}
}
