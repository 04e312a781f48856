package mdblist

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"marquee/internal/metadata"
	"marquee/internal/ratelimit"
	"marquee/internal/services"
	"marquee/internal/sources"
)

// DefaultBaseURL is the MDBList API endpoint.
const DefaultBaseURL = "https://api.mdblist.com"

// DefaultDailyCap is the free-tier request allowance per day.
const DefaultDailyCap = 500

// Client is the private ratings source. It runs after the public sources
// and spends quota from a personal API key.
type Client struct {
	limiter sources.Limiter
	baseURL string
	apiKey  string
}

var (
	_ sources.Source     = (*Client)(nil)
	_ sources.Private    = (*Client)(nil)
	_ sources.Applicable = (*Client)(nil)
)

// New creates an MDBList source. An API key is required.
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

func (c *Client) Private() bool { return true }

// Applies requires the IMDb id; MDBList lookups are keyed by it.
func (c *Client) Applies(rec metadata.Record) bool {
	return strings.TrimSpace(rec.ID) != ""
}

// Fetch loads ratings and descriptive fields. An unknown kind tries the
// movie endpoint, then the show endpoint, spending quota for each.
func (c *Client) Fetch(ctx context.Context, req sources.Request) (metadata.Record, error) {
	id := strings.TrimSpace(req.ID)
	if id == "" {
		return metadata.Record{}, sources.NotFound(Name, "primary id required")
	}
	var segments []string
	switch req.Kind {
	case metadata.KindMovie:
		segments = []string{"movie"}
	case metadata.KindSeries:
		segments = []string{"show"}
	default:
		segments = []string{"movie", "show"}
	}

	query := url.Values{}
	query.Set("apikey", c.apiKey)
	var lastErr error
	for _, segment := range segments {
		body, err := c.limiter.Enqueue(ctx, Name, ratelimit.Request{
			URL: sources.JoinURL(c.baseURL, query, "imdb", segment, id),
		}, req.Priority)
		if err != nil {
			if services.StatusOf(err) == http.StatusNotFound {
				lastErr = sources.NotFound(Name, id)
				continue
			}
			return metadata.Record{}, err
		}
		rec, err := Normalize(id, body)
		if errors.Is(err, services.ErrNotFound) {
			lastErr = err
			continue
		}
		return rec, err
	}
	return metadata.Record{}, lastErr
}

// DecodeList parses a public list export into its items.
func DecodeList(payload []byte) ([]ListItem, error) {
	var items []ListItem
	if err := sources.Decode(Name, payload, &items); err != nil {
		return nil, err
	}
	return items, nil
}
