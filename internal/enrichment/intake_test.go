package enrichment_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"marquee/internal/enrichment"
	"marquee/internal/metadata"
)

type recordingEnricher struct {
	mu    sync.Mutex
	seen  []string
	block chan struct{}
}

func (r *recordingEnricher) Enrich(_ context.Context, d enrichment.Discovery) (metadata.Record, error) {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	r.seen = append(r.seen, d.ID)
	r.mu.Unlock()
	return metadata.Record{ID: d.ID}, nil
}

func TestIntakeDropsWhenFull(t *testing.T) {
	intake := enrichment.NewIntake(&recordingEnricher{}, 2, 1)
	for _, id := range []string{"tt0000001", "tt0000002"} {
		if !intake.Submit(enrichment.Discovery{ID: id}) {
			t.Fatalf("Submit(%s) should fit", id)
		}
	}
	if intake.Submit(enrichment.Discovery{ID: "tt0000003"}) {
		t.Fatal("third submit should overflow")
	}
	if intake.Pending() != 2 || intake.Dropped() != 1 {
		t.Fatalf("pending=%d dropped=%d", intake.Pending(), intake.Dropped())
	}
	intake.Close()
	if intake.Submit(enrichment.Discovery{ID: "tt0000004"}) {
		t.Fatal("submit after close should fail")
	}
	intake.Close()
}

func TestIntakeRunDrainsAfterClose(t *testing.T) {
	enricher := &recordingEnricher{}
	var mu sync.Mutex
	handled := map[string]bool{}
	intake := enrichment.NewIntake(enricher, 8, 3, enrichment.WithResultHandler(func(d enrichment.Discovery, rec metadata.Record, err error) {
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		mu.Lock()
		handled[rec.ID] = true
		mu.Unlock()
	}))
	ids := []string{"tt0000001", "tt0000002", "tt0000003", "tt0000004", "tt0000005"}
	for _, id := range ids {
		intake.Submit(enrichment.Discovery{ID: id})
	}
	intake.Close()

	if err := intake.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(handled) != len(ids) {
		t.Fatalf("handled %d of %d discoveries", len(handled), len(ids))
	}
}

func TestIntakeRunStopsOnCancel(t *testing.T) {
	enricher := &recordingEnricher{block: make(chan struct{})}
	intake := enrichment.NewIntake(enricher, 4, 1)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- intake.Run(ctx) }()

	cancel()
	close(enricher.block)
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
