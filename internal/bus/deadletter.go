package bus

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	HeaderError           = "x-error"
	HeaderSourceTopic     = "x-source-topic"
	HeaderSourcePartition = "x-source-partition"
	HeaderSourceOffset    = "x-source-offset"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// DeadLetterPublisher forwards rejected records, unchanged, to a side topic.
type DeadLetterPublisher struct {
	writer messageWriter
	topic  string
}

// NewDeadLetterPublisher creates a writer for topic. Records keep their key,
// so the hash balancer keeps one key on one partition.
func NewDeadLetterPublisher(brokers []string, topic string) *DeadLetterPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: 10 * time.Second,
	}
	slog.Info("[Kafka] Dead letter publisher initialized", "topic", topic)
	return &DeadLetterPublisher{writer: writer, topic: topic}
}

// Publish writes rec to the dead letter topic with the failure cause in headers.
func (p *DeadLetterPublisher) Publish(ctx context.Context, rec Record, cause error) error {
	reason := "unknown"
	if cause != nil {
		reason = cause.Error()
	}

	msg := kafka.Message{
		Value: rec.Value,
		Headers: []kafka.Header{
			{Key: HeaderError, Value: []byte(reason)},
			{Key: HeaderSourceTopic, Value: []byte(rec.Topic)},
			{Key: HeaderSourcePartition, Value: []byte(strconv.Itoa(rec.Partition))},
			{Key: HeaderSourceOffset, Value: []byte(strconv.FormatInt(rec.Offset, 10))},
		},
		Time: time.Now().UTC(),
	}
	if rec.Key != "" {
		msg.Key = []byte(rec.Key)
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("dead letter publish to %s: %w", p.topic, err)
	}
	return nil
}

func (p *DeadLetterPublisher) Close() error {
	return p.writer.Close()
}
