package bus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	defaultMaxPollRecords = 500

	// defaultPollLinger bounds how long Poll keeps collecting once a record has arrived.
	defaultPollLinger = 10 * time.Millisecond
)

// messageReader is the part of *kafka.Reader the subscriber relies on.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaOptions configures the consumer-group reader.
type KafkaOptions struct {
	Brokers        []string
	GroupID        string
	Topics         []string
	CommitInterval time.Duration
	StartOffset    string // latest | earliest
	MinBytes       int
	MaxBytes       int
	MaxPollRecords int
}

// KafkaSubscriber consumes a fixed topic set as part of a consumer group.
// Offsets are committed by the reader on CommitInterval, independent of
// whether a record was persisted, which gives at-least-once delivery.
type KafkaSubscriber struct {
	reader     messageReader
	maxRecords int
	linger     time.Duration
}

// NewKafkaSubscriber creates a group reader subscribed to opts.Topics.
func NewKafkaSubscriber(opts KafkaOptions) (*KafkaSubscriber, error) {
	if len(opts.Brokers) == 0 {
		return nil, errors.New("kafka: at least one broker is required")
	}
	if opts.GroupID == "" {
		return nil, errors.New("kafka: group id is required")
	}
	if len(opts.Topics) == 0 {
		return nil, errors.New("kafka: at least one topic is required")
	}

	startOffset := kafka.LastOffset
	if opts.StartOffset == "earliest" {
		startOffset = kafka.FirstOffset
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        opts.Brokers,
		GroupID:        opts.GroupID,
		GroupTopics:    opts.Topics,
		MinBytes:       opts.MinBytes,
		MaxBytes:       opts.MaxBytes,
		CommitInterval: opts.CommitInterval,
		StartOffset:    startOffset,
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			slog.Error("[Kafka] " + fmt.Sprintf(msg, args...))
		}),
	})

	slog.Info("[Kafka] Consumer initialized",
		"brokers", opts.Brokers,
		"group_id", opts.GroupID,
		"topics", opts.Topics,
		"commit_interval", opts.CommitInterval)

	return newKafkaSubscriber(reader, opts.MaxPollRecords), nil
}

func newKafkaSubscriber(reader messageReader, maxRecords int) *KafkaSubscriber {
	if maxRecords <= 0 {
		maxRecords = defaultMaxPollRecords
	}
	return &KafkaSubscriber{reader: reader, maxRecords: maxRecords, linger: defaultPollLinger}
}

// Poll waits up to timeout for the first record, then keeps collecting for a
// short linger or until maxRecords are collected, and returns early when ctx is cancelled.
//
// Each record is marked for commit as soon as it is fetched, with a context
// that ignores ctx, so a fetched record is never lost between fetch and commit.
// Records already fetched are always returned: the reader has moved past them.
func (s *KafkaSubscriber) Poll(ctx context.Context, timeout time.Duration) (map[TopicPartition][]Record, error) {
	pollCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	fetchCtx := pollCtx

	batch := make(map[TopicPartition][]Record)
	for n := 0; n < s.maxRecords; n++ {
		msg, err := s.reader.FetchMessage(fetchCtx)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				return batch, nil
			}
			return batch, fmt.Errorf("kafka poll: %w", err)
		}

		tp := TopicPartition{Topic: msg.Topic, Partition: msg.Partition}
		batch[tp] = append(batch[tp], fromMessage(msg))

		if err := s.reader.CommitMessages(context.WithoutCancel(ctx), msg); err != nil {
			// A later commit on the same partition covers this offset.
			slog.Error("[Kafka] Failed to mark message for commit",
				"topic", msg.Topic,
				"partition", msg.Partition,
				"offset", msg.Offset,
				"error", err)
		}

		if n == 0 && s.linger > 0 {
			lingerCtx, cancelLinger := context.WithTimeout(pollCtx, s.linger)
			defer cancelLinger()
			fetchCtx = lingerCtx
		}
	}
	return batch, nil
}

// Close leaves the consumer group and flushes pending offset commits.
func (s *KafkaSubscriber) Close() error {
	if err := s.reader.Close(); err != nil {
		return fmt.Errorf("kafka: close reader: %w", err)
	}
	slog.Info("[Kafka] Consumer closed")
	return nil
}

func fromMessage(msg kafka.Message) Record {
	return Record{
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Key:       string(msg.Key),
		Value:     msg.Value,
		Time:      msg.Time,
	}
}
