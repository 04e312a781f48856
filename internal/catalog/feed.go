package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"marquee/internal/logging"
	"marquee/internal/services"
)

const (
	// DefaultTimeout bounds each feed attempt.
	DefaultTimeout = 15 * time.Second
	relayToken     = "{url}"
	maxFeedBytes   = 16 << 20
)

// Fetcher downloads catalog feeds.
type Fetcher struct {
	client    *http.Client
	relays    []string
	userAgent string
	logger    *slog.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithClient overrides the HTTP client.
func WithClient(client *http.Client) FetcherOption {
	return func(f *Fetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// WithRelays sets the relay templates tried after the direct request. Each
// template carries a {url} placeholder that receives the escaped feed URL.
func WithRelays(relays ...string) FetcherOption {
	return func(f *Fetcher) {
		f.relays = f.relays[:0]
		for _, relay := range relays {
			if relay = strings.TrimSpace(relay); strings.Contains(relay, relayToken) {
				f.relays = append(f.relays, relay)
			}
		}
	}
}

// WithFetcherUserAgent sets the User-Agent header.
func WithFetcherUserAgent(agent string) FetcherOption {
	return func(f *Fetcher) { f.userAgent = strings.TrimSpace(agent) }
}

// WithFetcherLogger attaches a logger.
func WithFetcherLogger(logger *slog.Logger) FetcherOption {
	return func(f *Fetcher) { f.logger = logger }
}

// NewFetcher builds a Fetcher with no relays.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{client: &http.Client{Timeout: DefaultTimeout}}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = logging.NewComponentLogger(f.logger, "catalog")
	return f
}

// FetchFeed returns the items of the feed at feedURL. The direct URL is tried
// first, then each relay in order; the first response that parses as a feed
// wins.
func (f *Fetcher) FetchFeed(ctx context.Context, feedURL string) ([]json.RawMessage, error) {
	feedURL = strings.TrimSpace(feedURL)
	parsed, err := url.Parse(feedURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, services.Wrap(services.ErrInvalidInput, "catalog", "fetch feed", "invalid feed url "+feedURL, err)
	}

	targets := f.targets(feedURL)
	attempt := 0
	items, err := retry.DoWithData(
		func() ([]json.RawMessage, error) {
			target := targets[attempt]
			attempt++
			return f.fetchOnce(ctx, target)
		},
		retry.Context(ctx),
		retry.Attempts(uint(len(targets))),
		retry.DelayType(retry.FixedDelay),
		retry.Delay(0),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			f.logger.Debug("feed attempt failed",
				logging.Int("attempt", int(n)+1),
				logging.String("target", targets[n]),
				logging.Error(err),
			)
		}),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		logging.WarnWithContext(f.logger, "catalog feed unreachable", "feed_unreachable",
			logging.String("feed_url", feedURL),
			logging.Int("attempts", attempt),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check catalog.feed_url and catalog.relays"),
		)
		return nil, services.Wrap(services.ErrTransient, "catalog", "fetch feed", fmt.Sprintf("%d attempts", attempt), err)
	}
	if attempt > 1 {
		f.logger.Info("catalog feed fetched through relay", logging.String("target", targets[attempt-1]))
	}
	return items, nil
}

func (f *Fetcher) targets(feedURL string) []string {
	targets := make([]string, 0, len(f.relays)+1)
	targets = append(targets, feedURL)
	escaped := url.QueryEscape(feedURL)
	for _, relay := range f.relays {
		targets = append(targets, strings.ReplaceAll(relay, relayToken, escaped))
	}
	return targets
}

func (f *Fetcher) fetchOnce(ctx context.Context, target string) ([]json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrInvalidInput, "catalog", "build request", target, err)
	}
	req.Header.Set("Accept", "application/json")
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "catalog", "fetch", target, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &services.HTTPError{Source: "catalog", Status: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "catalog", "read body", target, err)
	}
	return ParseFeed(body)
}

// ParseFeed extracts the item list from a feed payload. It accepts a bare
// JSON array, a Cinemeta catalog ({"metas": [...]}), and list exports that
// group entries under "items", "movies", or "shows".
func ParseFeed(payload []byte) ([]json.RawMessage, error) {
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 {
		return nil, services.Wrap(services.ErrMismatchedResponse, "catalog", "parse feed", "empty body", nil)
	}
	if payload[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(payload, &items); err != nil {
			return nil, services.Wrap(services.ErrMismatchedResponse, "catalog", "parse feed", "array", err)
		}
		return items, nil
	}

	var groups map[string]json.RawMessage
	if err := json.Unmarshal(payload, &groups); err != nil {
		return nil, services.Wrap(services.ErrMismatchedResponse, "catalog", "parse feed", "not json", err)
	}
	var (
		items []json.RawMessage
		found bool
	)
	for _, key := range []string{"metas", "items", "movies", "shows"} {
		raw, ok := groups[key]
		if !ok {
			continue
		}
		var group []json.RawMessage
		if err := json.Unmarshal(raw, &group); err != nil {
			return nil, services.Wrap(services.ErrMismatchedResponse, "catalog", "parse feed", key, err)
		}
		found = true
		items = append(items, group...)
	}
	if !found {
		return nil, services.Wrap(services.ErrMismatchedResponse, "catalog", "parse feed", "no item list", nil)
	}
	return items, nil
}
