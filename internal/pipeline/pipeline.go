// Package pipeline relays dashboard activity events to a batch loader.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Sureka400/Ecolens-AI/internal/domain"
	"github.com/Sureka400/Ecolens-AI/internal/observability"
	"github.com/couchcryptid/storm-data-shared/retry"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second

	// Budget for the final flush after Run's context is cancelled.
	drainTimeout = 5 * time.Second
)

// BatchLoader writes multiple output events to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.OutputEvent) error
}

// Relay buffers activity events and writes them in batches. Publishing never
// blocks: when the queue is full the event is dropped and counted.
type Relay struct {
	loader        BatchLoader
	logger        *slog.Logger
	metrics       *observability.Metrics
	queue         chan domain.ActivityEvent
	batchSize     int
	flushInterval time.Duration
	running       atomic.Bool
}

// New creates a Relay that flushes when batchSize events are buffered or
// flushInterval elapses, whichever comes first.
func New(l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int, flushInterval time.Duration) *Relay {
	return &Relay{
		loader:        l,
		logger:        logger,
		metrics:       metrics,
		queue:         make(chan domain.ActivityEvent, batchSize*4),
		batchSize:     batchSize,
		flushInterval: flushInterval,
	}
}

// Publish enqueues an event. It reports false when the event was dropped.
func (r *Relay) Publish(evt domain.ActivityEvent) bool {
	select {
	case r.queue <- evt:
		return true
	default:
		r.metrics.EventsDropped.Inc()
		r.logger.Warn("activity queue full, dropping event", "type", evt.Type, "session", evt.SessionID)
		return false
	}
}

// CheckReadiness returns nil while the relay loop is running.
func (r *Relay) CheckReadiness(_ context.Context) error {
	if !r.running.Load() {
		return errors.New("activity relay is not running")
	}
	return nil
}

// Run collects and flushes batches until the context is cancelled, then
// makes one best-effort flush of whatever is still buffered.
func (r *Relay) Run(ctx context.Context) error {
	r.logger.Info("activity relay started", "batch_size", r.batchSize, "flush_interval", r.flushInterval)
	r.running.Store(true)
	r.metrics.RelayRunning.Set(1)
	defer func() {
		r.running.Store(false)
		r.metrics.RelayRunning.Set(0)
	}()

	ticker := time.NewTicker(r.flushInterval)
	defer ticker.Stop()

	batch := make([]domain.ActivityEvent, 0, r.batchSize)
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("activity relay stopping", "reason", ctx.Err())
			r.drain(ctx, batch)
			return nil
		case evt := <-r.queue:
			batch = append(batch, evt)
			if len(batch) < r.batchSize {
				continue
			}
		case <-ticker.C:
			if len(batch) == 0 {
				continue
			}
		}

		if !r.flush(ctx, batch) {
			r.drain(ctx, batch)
			return nil
		}
		batch = batch[:0]
	}
}

// drain writes the pending batch plus anything still queued in a single
// attempt. Run is the only consumer of the queue.
func (r *Relay) drain(ctx context.Context, pending []domain.ActivityEvent) {
	for len(r.queue) > 0 {
		pending = append(pending, <-r.queue)
	}
	if len(pending) == 0 {
		return
	}

	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), drainTimeout)
	defer cancel()

	out := r.serializeBatch(pending)
	if len(out) == 0 {
		return
	}
	if err := r.loader.LoadBatch(drainCtx, out); err != nil {
		r.logger.Error("final flush failed", "error", err, "batch_size", len(out))
		r.metrics.EventsDropped.Add(float64(len(out)))
		return
	}
	r.metrics.EventsPublished.Add(float64(len(out)))
}

// flush serializes and loads one batch, retrying with exponential backoff.
// Returns false if the relay should stop.
func (r *Relay) flush(ctx context.Context, batch []domain.ActivityEvent) bool {
	start := time.Now()
	r.metrics.BatchSize.Observe(float64(len(batch)))

	out := r.serializeBatch(batch)
	if len(out) == 0 {
		return true
	}

	backoff := initialBackoff
	for {
		err := r.loader.LoadBatch(ctx, out)
		if err == nil {
			break
		}
		if ctx.Err() != nil {
			return false
		}
		r.logger.Error("load batch failed", "error", err, "batch_size", len(out), "retry_in", backoff)
		if !retry.SleepWithContext(ctx, backoff) {
			return false
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}

	r.metrics.EventsPublished.Add(float64(len(out)))
	r.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
	return true
}

func (r *Relay) serializeBatch(batch []domain.ActivityEvent) []domain.OutputEvent {
	out := make([]domain.OutputEvent, 0, len(batch))
	for _, evt := range batch {
		msg, err := Serialize(evt)
		if err != nil {
			r.logger.Warn("serialize failed, skipping event", "error", err, "type", evt.Type)
			r.metrics.EventsDropped.Inc()
			continue
		}
		out = append(out, msg)
	}
	return out
}
