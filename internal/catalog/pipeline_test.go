package catalog_test

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"marquee/internal/catalog"
	"marquee/internal/enrichment"
	"marquee/internal/metadata"
	"marquee/internal/services"
)

type fakeEnricher struct {
	mu       sync.Mutex
	seen     []enrichment.Discovery
	inflight atomic.Int32
	peak     atomic.Int32
	delay    time.Duration
}

func (f *fakeEnricher) Enrich(_ context.Context, d enrichment.Discovery) (metadata.Record, error) {
	n := f.inflight.Add(1)
	defer f.inflight.Add(-1)
	for {
		peak := f.peak.Load()
		if n <= peak || f.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	time.Sleep(f.delay)
	f.mu.Lock()
	f.seen = append(f.seen, d)
	f.mu.Unlock()
	if d.ID == "" {
		return metadata.Record{Title: d.Title}, nil
	}
	if strings.HasSuffix(d.ID, "0") {
		return metadata.Record{}, services.ErrInvalidInput
	}
	return metadata.Record{ID: d.ID, Title: d.Title}, nil
}

type fakeValidator struct{ reachable map[string]bool }

func (v fakeValidator) Validate(_ context.Context, rawURL string) bool {
	return v.reachable[rawURL]
}

func rawItems(t *testing.T, items ...string) []json.RawMessage {
	t.Helper()
	out := make([]json.RawMessage, len(items))
	for i, item := range items {
		out[i] = json.RawMessage(item)
	}
	return out
}

func TestPipelinePreservesFeedOrder(t *testing.T) {
	enricher := &fakeEnricher{delay: 5 * time.Millisecond}
	items := rawItems(t,
		`{"id":"tt0000001","name":"One","type":"movie"}`,
		`{"imdb_id":"tt0000002","title":"Two","mediatype":"movie"}`,
		`{"name":"Unresolved","type":"movie"}`,
		`{"id":"tt0000010","name":"Rejected","type":"movie"}`,
		`{"type":"movie"}`,
		`{"id":"tt0000003","name":"Three","type":"series"}`,
	)
	records, summary := catalog.NewPipeline(enricher, catalog.WithConcurrency(2)).Run(context.Background(), items)

	var ids []string
	for _, rec := range records {
		ids = append(ids, rec.ID)
	}
	if strings.Join(ids, ",") != "tt0000001,tt0000002,tt0000003" {
		t.Fatalf("records out of order or unfiltered: %v", ids)
	}
	want := catalog.Summary{Total: 6, Enriched: 3, Invalid: 2, Unresolved: 1}
	if summary != want {
		t.Fatalf("summary = %+v, want %+v", summary, want)
	}
	if peak := enricher.peak.Load(); peak > 2 {
		t.Fatalf("concurrency exceeded: %d", peak)
	}
	for _, d := range enricher.seen {
		if !d.Priority {
			t.Fatalf("catalog enrichment must be prioritized: %+v", d)
		}
	}
}

func TestPipelineScreensUnreachableArt(t *testing.T) {
	enricher := &fakeEnricher{}
	items := rawItems(t,
		`{"id":"tt0000001","name":"Good","poster":"https://img/good.jpg"}`,
		`{"id":"tt0000002","name":"Broken","poster":"https://img/broken.jpg"}`,
		`{"id":"tt0000003","name":"No art"}`,
		`{"id":"tt0000004","name":"Broken backdrop","poster":"https://img/good.jpg","background":"https://img/missing-bg.jpg"}`,
		`{"id":"tt0000005","name":"Good backdrop","poster":"https://img/broken.jpg","background":"https://img/bg.jpg"}`,
	)
	validator := fakeValidator{reachable: map[string]bool{
		"https://img/good.jpg": true,
		"https://img/bg.jpg":   true,
	}}
	records, summary := catalog.NewPipeline(enricher, catalog.WithArtValidator(validator)).Run(context.Background(), items)

	var ids []string
	for _, rec := range records {
		ids = append(ids, rec.ID)
	}
	if strings.Join(ids, ",") != "tt0000001,tt0000003,tt0000005" || summary.ArtRejected != 2 {
		t.Fatalf("records=%v summary=%+v", ids, summary)
	}
	if len(enricher.seen) != 3 {
		t.Fatalf("rejected items must not be enriched, saw %d", len(enricher.seen))
	}
}
