package testsupport

import (
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
)

// FixtureServer serves fixture files by request path.
type FixtureServer struct {
	*httptest.Server
	hits atomic.Int64
}

// Hits returns the number of requests served, including misses.
func (s *FixtureServer) Hits() int64 { return s.hits.Load() }

// ServeFixtures starts a server mapping URL paths to files on disk. Unknown
// paths answer 404. The server is closed on cleanup.
func ServeFixtures(t testing.TB, routes map[string]string) *FixtureServer {
	t.Helper()

	bodies := make(map[string][]byte, len(routes))
	for path, file := range routes {
		data, err := os.ReadFile(file)
		if err != nil {
			t.Fatalf("read fixture %s: %v", file, err)
		}
		bodies[path] = data
	}
	fs := &FixtureServer{}
	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fs.hits.Add(1)
		body, ok := bodies[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	t.Cleanup(fs.Close)
	return fs
}
