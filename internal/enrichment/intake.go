package enrichment

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/sourcegraph/conc"

	"marquee/internal/logging"
	"marquee/internal/metadata"
)

// Enricher is the orchestrator surface Intake drives.
type Enricher interface {
	Enrich(ctx context.Context, d Discovery) (metadata.Record, error)
}

// ResultHandler receives each finished enrichment.
type ResultHandler func(d Discovery, rec metadata.Record, err error)

// Intake is a bounded queue of discovery events drained by a fixed set of
// workers. Submit never blocks; events that do not fit are dropped.
type Intake struct {
	enricher Enricher
	events   chan Discovery
	workers  int
	handler  ResultHandler
	logger   *slog.Logger

	mu      sync.RWMutex
	closed  bool
	dropped atomic.Int64
}

// IntakeOption configures an Intake.
type IntakeOption func(*Intake)

// WithResultHandler registers a consumer for finished records.
func WithResultHandler(handler ResultHandler) IntakeOption {
	return func(i *Intake) { i.handler = handler }
}

// WithIntakeLogger attaches a logger.
func WithIntakeLogger(logger *slog.Logger) IntakeOption {
	return func(i *Intake) { i.logger = logger }
}

// NewIntake creates a queue holding up to buffer pending events.
func NewIntake(enricher Enricher, buffer, workers int, opts ...IntakeOption) *Intake {
	if buffer <= 0 {
		buffer = 1
	}
	if workers <= 0 {
		workers = 1
	}
	i := &Intake{
		enricher: enricher,
		events:   make(chan Discovery, buffer),
		workers:  workers,
	}
	for _, opt := range opts {
		opt(i)
	}
	i.logger = logging.NewComponentLogger(i.logger, "intake")
	return i
}

// Submit queues d without blocking. It reports false when the queue is
// full or closed.
func (i *Intake) Submit(d Discovery) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if i.closed {
		return false
	}
	select {
	case i.events <- d:
		return true
	default:
		total := i.dropped.Add(1)
		logging.WarnWithContext(i.logger, "discovery dropped, intake full", "intake_overflow",
			logging.RecordID(d.ID),
			logging.String("title", d.Title),
			logging.Int64("dropped_total", total),
			logging.String(logging.FieldErrorHint, "raise intake.buffer or intake.workers"),
			logging.String(logging.FieldImpact, "title stays unenriched until seen again"),
		)
		return false
	}
}

// Pending returns the number of queued events.
func (i *Intake) Pending() int { return len(i.events) }

// Dropped returns how many events overflowed the queue.
func (i *Intake) Dropped() int64 { return i.dropped.Load() }

// Run drains the queue until ctx is cancelled or Close is called and the
// queue is empty. It returns once every worker has stopped.
func (i *Intake) Run(ctx context.Context) error {
	var wg conc.WaitGroup
	for range i.workers {
		wg.Go(func() {
			for {
				select {
				case <-ctx.Done():
					return
				case d, ok := <-i.events:
					if !ok {
						return
					}
					rec, err := i.enricher.Enrich(ctx, d)
					if err != nil {
						i.logger.Info("discovery rejected",
							logging.String("title", d.Title),
							logging.RecordID(d.ID),
							logging.Error(err),
						)
					}
					if i.handler != nil {
						i.handler(d, rec, err)
					}
				}
			}
		})
	}
	wg.Wait()
	return ctx.Err()
}

// Close stops accepting events. Queued events are still drained by Run.
func (i *Intake) Close() {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.closed {
		return
	}
	i.closed = true
	close(i.events)
}
