package images_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"marquee/internal/images"
)

type artServer struct {
	*httptest.Server
	hits atomic.Int32
}

func newArtServer(t *testing.T, ok map[string]bool) *artServer {
	t.Helper()
	s := &artServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		if r.Method != http.MethodHead {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if ok[r.URL.Path] {
			w.WriteHeader(http.StatusOK)
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(s.Close)
	return s
}

func TestResolveWalksSizeLadder(t *testing.T) {
	server := newArtServer(t, map[string]bool{"/t/p/original/poster.jpg": true})
	v, err := images.New(images.WithBaseURL(server.URL + "/t/p"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	want := server.URL + "/t/p/original/poster.jpg"
	if got := v.Resolve(context.Background(), "/poster.jpg", ""); got != want {
		t.Fatalf("Resolve = %q, want %q", got, want)
	}
	if got := server.hits.Load(); got != 2 {
		t.Fatalf("expected w780 then original probes, got %d", got)
	}
	if got := v.Resolve(context.Background(), "/poster.jpg", ""); got != want {
		t.Fatalf("cached Resolve = %q", got)
	}
	if got := server.hits.Load(); got != 2 {
		t.Fatalf("expected cache hit, got %d probes", got)
	}
}

func TestResolveFallsBackAndCachesMisses(t *testing.T) {
	server := newArtServer(t, map[string]bool{"/fallback.jpg": true})
	v, err := images.New(images.WithBaseURL(server.URL), images.WithSizes("w780"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	fallback := server.URL + "/fallback.jpg"
	if got := v.Resolve(context.Background(), "missing.jpg", fallback); got != fallback {
		t.Fatalf("expected fallback, got %q", got)
	}

	if v.Validate(context.Background(), server.URL+"/gone.jpg") {
		t.Fatal("expected 404 art to fail validation")
	}
	before := server.hits.Load()
	if v.Validate(context.Background(), server.URL+"/gone.jpg") {
		t.Fatal("expected cached negative")
	}
	if server.hits.Load() != before {
		t.Fatal("negative result should be cached")
	}
}

type flakyTransport struct {
	calls atomic.Int32
	next  http.RoundTripper
}

func (f *flakyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if f.calls.Add(1) == 1 {
		return nil, errors.New("connection refused")
	}
	return f.next.RoundTrip(req)
}

func TestUnreachableHostIsNotCached(t *testing.T) {
	server := newArtServer(t, map[string]bool{"/art.jpg": true})
	target := server.URL + "/art.jpg"
	transport := &flakyTransport{next: http.DefaultTransport}
	v, err := images.New(images.WithHTTPClient(&http.Client{Transport: transport}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if v.Validate(context.Background(), target) {
		t.Fatal("transport failure should not validate")
	}
	if !v.Validate(context.Background(), target) {
		t.Fatal("expected a fresh probe after the transport failure")
	}
	if v.Resolve(context.Background(), "", "") != "" {
		t.Fatal("empty input should resolve to nothing")
	}
}
