package bus

import (
	"context"
	"sort"
	"time"
)

// TopicPartition identifies one ordered stream of records.
type TopicPartition struct {
	Topic     string
	Partition int
}

// Record is one message fetched from the bus.
type Record struct {
	Topic     string
	Partition int
	Offset    int64
	Key       string
	Value     []byte
	Time      time.Time
}

// Subscriber yields batches of records and tracks consumption progress.
type Subscriber interface {
	// Poll blocks up to timeout and returns whatever arrived, grouped per
	// topic partition in fetch order. An empty batch with a nil error means
	// nothing arrived. A non-nil error may still come with records, which the
	// caller must process before giving up.
	Poll(ctx context.Context, timeout time.Duration) (map[TopicPartition][]Record, error)
	Close() error
}

// Flatten orders a batch by topic and partition, keeping fetch order within each partition.
func Flatten(batch map[TopicPartition][]Record) []Record {
	if len(batch) == 0 {
		return nil
	}

	keys := make([]TopicPartition, 0, len(batch))
	total := 0
	for tp, records := range batch {
		keys = append(keys, tp)
		total += len(records)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Topic != keys[j].Topic {
			return keys[i].Topic < keys[j].Topic
		}
		return keys[i].Partition < keys[j].Partition
	})

	out := make([]Record, 0, total)
	for _, tp := range keys {
		out = append(out, batch[tp]...)
	}
	return out
}
