package imdbapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"marquee/internal/logging"
	"marquee/internal/matcher"
	"marquee/internal/metadata"
	"marquee/internal/ratelimit"
	"marquee/internal/services"
	"marquee/internal/sources"
)

// DefaultBaseURL is the public imdbapi.dev endpoint.
const DefaultBaseURL = "https://api.imdbapi.dev"

// creditCategories are requested from the credits endpoint.
var creditCategories = []string{"director", "writer", "actor", "actress"}

// Client is the credits source. It also resolves media kind from an IMDb id
// and backs the IMDb title matcher.
type Client struct {
	limiter sources.Limiter
	baseURL string
	logger  *slog.Logger
}

var (
	_ sources.KindResolver = (*Client)(nil)
	_ matcher.Searcher     = (*Client)(nil)
)

// Option configures a Client.
type Option func(*Client)

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates an imdbapi source.
func New(limiter sources.Limiter, baseURL string, opts ...Option) (*Client, error) {
	if limiter == nil {
		return nil, services.Wrap(services.ErrConfiguration, Name, "init", "limiter required", nil)
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{limiter: limiter, baseURL: strings.TrimRight(baseURL, "/")}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.NewComponentLogger(c.logger, Name)
	return c, nil
}

func (c *Client) Name() string { return Name }

// ResolveKind fetches the title; its type field carries the media kind.
func (c *Client) ResolveKind(ctx context.Context, req sources.Request) (metadata.Record, error) {
	return c.Fetch(ctx, req)
}

// Fetch loads the title and, when available, its full credits listing. A
// failed credits call keeps the star-based credits from the title payload.
func (c *Client) Fetch(ctx context.Context, req sources.Request) (metadata.Record, error) {
	id := strings.TrimSpace(req.ID)
	if id == "" {
		return metadata.Record{}, sources.NotFound(Name, "primary id required")
	}
	body, err := c.limiter.Enqueue(ctx, Name, ratelimit.Request{
		URL: sources.JoinURL(c.baseURL, nil, "titles", id),
	}, req.Priority)
	if err != nil {
		if services.StatusOf(err) == http.StatusNotFound {
			return metadata.Record{}, sources.NotFound(Name, id)
		}
		return metadata.Record{}, err
	}
	rec, err := Normalize(id, body)
	if err != nil {
		return metadata.Record{}, err
	}

	query := url.Values{}
	for _, category := range creditCategories {
		query.Add("categories", category)
	}
	query.Set("pageSize", strconv.Itoa(metadata.MaxCast))
	credits, err := c.limiter.Enqueue(ctx, Name, ratelimit.Request{
		URL: sources.JoinURL(c.baseURL, query, "titles", id, "credits"),
	}, req.Priority)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return metadata.Record{}, err
		}
		c.logger.Debug("credits listing unavailable",
			logging.RecordID(id),
			logging.String("error_kind", services.Kind(err)),
			logging.Error(err),
		)
		return rec, nil
	}
	if withCredits, err := ApplyCredits(rec, credits); err == nil {
		rec = withCredits
	}
	return rec, nil
}

// Search implements matcher.Searcher over /search/titles.
func (c *Client) Search(ctx context.Context, title string, _ int) ([]matcher.Candidate, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, services.Wrap(services.ErrInvalidInput, Name, "search", "title required", nil)
	}
	query := url.Values{}
	query.Set("query", title)
	query.Set("limit", strconv.Itoa(matcher.DefaultTopK*2))
	body, err := c.limiter.Enqueue(ctx, Name, ratelimit.Request{
		URL: sources.JoinURL(c.baseURL, query, "search", "titles"),
	}, true)
	if err != nil {
		return nil, err
	}
	return DecodeSearch(body)
}

// DecodeSearch maps a /search/titles payload onto candidates in upstream order.
func DecodeSearch(payload []byte) ([]matcher.Candidate, error) {
	var resp searchResponse
	if err := sources.Decode(Name, payload, &resp); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	out := make([]matcher.Candidate, 0, len(resp.Titles))
	for _, t := range resp.Titles {
		if strings.TrimSpace(t.ID) == "" {
			continue
		}
		out = append(out, matcher.Candidate{
			ID:    strings.TrimSpace(t.ID),
			Title: strings.TrimSpace(t.PrimaryTitle),
			Year:  sources.Year(t.StartYear),
		})
	}
	return out, nil
}
