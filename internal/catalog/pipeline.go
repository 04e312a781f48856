package catalog

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"

	"github.com/sourcegraph/conc/iter"

	"marquee/internal/enrichment"
	"marquee/internal/logging"
	"marquee/internal/metadata"
)

// DefaultConcurrency bounds parallel enrichments per run.
const DefaultConcurrency = 8

// ArtValidator reports whether an artwork URL is reachable.
type ArtValidator interface {
	Validate(ctx context.Context, rawURL string) bool
}

// Summary counts what happened to the items of one run.
type Summary struct {
	Total       int
	Enriched    int
	Invalid     int
	ArtRejected int
	Unresolved  int
}

// Pipeline enriches catalog items in parallel.
type Pipeline struct {
	enricher    enrichment.Enricher
	validator   ArtValidator
	concurrency int
	logger      *slog.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithArtValidator screens items whose advertised poster is unreachable.
func WithArtValidator(v ArtValidator) PipelineOption {
	return func(p *Pipeline) { p.validator = v }
}

// WithConcurrency caps the number of items enriched at once.
func WithConcurrency(n int) PipelineOption {
	return func(p *Pipeline) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithPipelineLogger attaches a logger.
func WithPipelineLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) { p.logger = logger }
}

// NewPipeline builds a Pipeline over enricher.
func NewPipeline(enricher enrichment.Enricher, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{enricher: enricher, concurrency: DefaultConcurrency}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = logging.NewComponentLogger(p.logger, "catalog")
	return p
}

// Run enriches items and returns the successful records in feed order.
// Items that fail to normalize, advertise unreachable art, or cannot be
// resolved to an IMDb id are omitted.
func (p *Pipeline) Run(ctx context.Context, items []json.RawMessage) ([]metadata.Record, Summary) {
	var invalid, rejected, unresolved atomic.Int64
	mapper := iter.Mapper[json.RawMessage, *metadata.Record]{MaxGoroutines: p.concurrency}
	results := mapper.Map(items, func(raw *json.RawMessage) *metadata.Record {
		if ctx.Err() != nil {
			return nil
		}
		item, err := NormalizeItem(*raw)
		if err != nil {
			invalid.Add(1)
			p.logger.Debug("catalog item skipped", logging.Error(err))
			return nil
		}
		if art := item.Art(); p.validator != nil && art != "" && !p.validator.Validate(ctx, art) {
			rejected.Add(1)
			p.logger.Debug("catalog item art unreachable",
				logging.RecordID(item.Discovery.ID),
				logging.String("art", art),
			)
			return nil
		}
		rec, err := p.enricher.Enrich(ctx, item.Discovery)
		if err != nil {
			invalid.Add(1)
			p.logger.Debug("catalog item rejected", logging.RecordID(item.Discovery.ID), logging.Error(err))
			return nil
		}
		if rec.ID == "" {
			unresolved.Add(1)
			return nil
		}
		return &rec
	})

	records := make([]metadata.Record, 0, len(results))
	for _, rec := range results {
		if rec != nil {
			records = append(records, *rec)
		}
	}
	summary := Summary{
		Total:       len(items),
		Enriched:    len(records),
		Invalid:     int(invalid.Load()),
		ArtRejected: int(rejected.Load()),
		Unresolved:  int(unresolved.Load()),
	}
	p.logger.Info("catalog run finished",
		logging.Int("total", summary.Total),
		logging.Int("enriched", summary.Enriched),
		logging.Int("invalid", summary.Invalid),
		logging.Int("art_rejected", summary.ArtRejected),
		logging.Int("unresolved", summary.Unresolved),
	)
	return records, summary
}
