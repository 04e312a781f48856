package fanart

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"marquee/internal/metadata"
	"marquee/internal/ratelimit"
	"marquee/internal/services"
	"marquee/internal/sources"
)

// DefaultBaseURL is the public fanart.tv v3 endpoint.
const DefaultBaseURL = "https://webservice.fanart.tv/v3"

// Client is the artwork source.
type Client struct {
	limiter sources.Limiter
	baseURL string
	apiKey  string
}

var (
	_ sources.Source     = (*Client)(nil)
	_ sources.Applicable = (*Client)(nil)
)

// New creates a fanart.tv source. An API key is required.
func New(limiter sources.Limiter, baseURL, apiKey string) (*Client, error) {
	if limiter == nil {
		return nil, services.Wrap(services.ErrConfiguration, Name, "init", "limiter required", nil)
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, Name, "init", "api key required", nil)
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{limiter: limiter, baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey}, nil
}

func (c *Client) Name() string { return Name }

// Applies requires a kind and an id fanart.tv can look up: the IMDb id for
// movies, the TVDB id for series.
func (c *Client) Applies(rec metadata.Record) bool {
	_, _, ok := lookup(sources.RequestFor(rec, false))
	return ok
}

// Fetch loads the artwork for the title.
func (c *Client) Fetch(ctx context.Context, req sources.Request) (metadata.Record, error) {
	segment, id, ok := lookup(req)
	if !ok {
		return metadata.Record{}, sources.NotFound(Name, "no lookup id for kind "+string(req.Kind))
	}
	query := url.Values{}
	query.Set("api_key", c.apiKey)
	body, err := c.limiter.Enqueue(ctx, Name, ratelimit.Request{
		URL: sources.JoinURL(c.baseURL, query, segment, id),
	}, req.Priority)
	if err != nil {
		if services.StatusOf(err) == http.StatusNotFound {
			return metadata.Record{}, sources.NotFound(Name, id)
		}
		return metadata.Record{}, err
	}
	return Normalize(id, body)
}

func lookup(req sources.Request) (segment, id string, ok bool) {
	switch req.Kind {
	case metadata.KindMovie:
		if id = strings.TrimSpace(req.ID); id == "" {
			id = strings.TrimSpace(req.SecondaryIDs["tmdb"])
		}
		return "movies", id, id != ""
	case metadata.KindSeries:
		id = strings.TrimSpace(req.SecondaryIDs["tvdb"])
		return "tv", id, id != ""
	default:
		return "", "", false
	}
}
