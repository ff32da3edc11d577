package pipeline

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aevon-lab/event-worker/internal/bus"
	"github.com/aevon-lab/event-worker/internal/core/partition"
)

// RecordProcessor handles a single record. *Processor satisfies it.
type RecordProcessor interface {
	Process(ctx context.Context, rec bus.Record) Result
}

// BatchSummary counts outcomes for one polled batch.
type BatchSummary struct {
	Total     int
	Succeeded int
	Failed    int
	Errored   int
}

func (s *BatchSummary) add(res Result) {
	s.Total++
	switch res.Outcome.Status() {
	case StatusSuccess:
		s.Succeeded++
	case StatusError:
		s.Errored++
	default:
		s.Failed++
	}
}

func (s *BatchSummary) merge(o BatchSummary) {
	s.Total += o.Total
	s.Succeeded += o.Succeeded
	s.Failed += o.Failed
	s.Errored += o.Errored
}

// Dispatcher runs a batch to completion before returning.
// With one worker records run strictly in batch order. With more, records are
// sharded by key so that records sharing a key still run in order on one worker.
type Dispatcher struct {
	processor RecordProcessor
	workers   int
}

func NewDispatcher(processor RecordProcessor, workers int) *Dispatcher {
	if processor == nil {
		panic("pipeline: processor must not be nil")
	}
	if workers <= 0 {
		workers = 1
	}
	return &Dispatcher{processor: processor, workers: workers}
}

func (d *Dispatcher) Workers() int {
	return d.workers
}

// Dispatch processes every record in records. ctx is passed through to the
// processor unchanged; callers that must finish the batch pass an uncancellable ctx.
func (d *Dispatcher) Dispatch(ctx context.Context, records []bus.Record) BatchSummary {
	if len(records) == 0 {
		return BatchSummary{}
	}

	start := time.Now()
	var summary BatchSummary
	if d.workers == 1 || len(records) == 1 {
		summary = d.runShard(ctx, records)
	} else {
		summary = d.runSharded(ctx, records)
	}

	slog.Debug("[Dispatcher] Batch complete",
		"records", summary.Total,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"errored", summary.Errored,
		"workers", d.workers,
		"duration", time.Since(start))
	return summary
}

func (d *Dispatcher) runShard(ctx context.Context, records []bus.Record) BatchSummary {
	var s BatchSummary
	for _, rec := range records {
		s.add(d.processor.Process(ctx, rec))
	}
	return s
}

func (d *Dispatcher) runSharded(ctx context.Context, records []bus.Record) BatchSummary {
	shards := make([][]bus.Record, d.workers)
	for _, rec := range records {
		idx := partition.For(shardKey(rec), d.workers)
		shards[idx] = append(shards[idx], rec)
	}

	results := make([]BatchSummary, d.workers)
	var g errgroup.Group
	for i, shard := range shards {
		if len(shard) == 0 {
			continue
		}
		g.Go(func() error {
			results[i] = d.runShard(ctx, shard)
			return nil
		})
	}
	_ = g.Wait()

	var summary BatchSummary
	for _, r := range results {
		summary.merge(r)
	}
	return summary
}

// shardKey is the record key, or its topic partition when the key is empty.
func shardKey(rec bus.Record) string {
	if rec.Key != "" {
		return rec.Key
	}
	return rec.Topic + "/" + strconv.Itoa(rec.Partition)
}
