package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"marquee/internal/metadata"
	"marquee/internal/ratelimit"
	"marquee/internal/services"
)

// Request identifies the title a source should describe.
type Request struct {
	ID           string
	Kind         metadata.Kind
	SecondaryIDs map[string]string
	Title        string
	AltTitle     string
	Year         int
	Priority     bool
}

// RequestFor derives a fetch request from the current record state.
func RequestFor(rec metadata.Record, priority bool) Request {
	ids := make(map[string]string, len(rec.SecondaryIDs))
	for k, v := range rec.SecondaryIDs {
		ids[k] = v
	}
	return Request{
		ID:           rec.ID,
		Kind:         rec.Kind,
		SecondaryIDs: ids,
		Title:        rec.Title,
		AltTitle:     rec.OriginalTitle,
		Year:         rec.Year,
		Priority:     priority,
	}
}

// Source fetches and normalizes one provider's view of a title.
type Source interface {
	Name() string
	Fetch(ctx context.Context, req Request) (metadata.Record, error)
}

// KindResolver is implemented by sources that can report the media kind
// from the primary identifier alone.
type KindResolver interface {
	Source
	ResolveKind(ctx context.Context, req Request) (metadata.Record, error)
}

// Applicable is implemented by sources that only serve some titles. The
// orchestrator skips a source whose Applies returns false.
type Applicable interface {
	Applies(rec metadata.Record) bool
}

// Private is implemented by sources backed by a personal API key with a
// tight quota. The orchestrator runs them after every public source.
type Private interface {
	Private() bool
}

// Limiter is the rate-limited transport every source goes through.
type Limiter interface {
	Enqueue(ctx context.Context, source string, req ratelimit.Request, priority bool) ([]byte, error)
}

// Decode unmarshals a JSON payload, tagging failures as transient for source.
func Decode(source string, payload []byte, dst any) error {
	if len(strings.TrimSpace(string(payload))) == 0 {
		return services.Wrap(services.ErrNotFound, source, "decode", "empty payload", nil)
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		return services.Wrap(services.ErrTransient, source, "decode", "invalid json", err)
	}
	return nil
}

// Mismatch reports a payload describing a different title than requested.
func Mismatch(source, requested, got string) error {
	return services.Wrap(services.ErrMismatchedResponse, source, "normalize",
		fmt.Sprintf("requested %s, payload describes %s", requested, got), nil)
}

// NotFound reports that a provider has nothing for the title.
func NotFound(source, detail string) error {
	return services.Wrap(services.ErrNotFound, source, "fetch", detail, nil)
}

// JoinURL appends escaped path segments to base and attaches query.
func JoinURL(base string, query url.Values, segments ...string) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(base, "/"))
	for _, segment := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(segment))
	}
	if len(query) > 0 {
		b.WriteByte('?')
		b.WriteString(query.Encode())
	}
	return b.String()
}
