package cinemeta

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"marquee/internal/metadata"
	"marquee/internal/ratelimit"
	"marquee/internal/services"
	"marquee/internal/sources"
)

// DefaultBaseURL is the public Cinemeta addon endpoint.
const DefaultBaseURL = "https://v3-cinemeta.strem.io"

// Client is the baseline descriptive source.
type Client struct {
	limiter sources.Limiter
	baseURL string
}

var _ sources.Source = (*Client)(nil)

// New creates a Cinemeta source.
func New(limiter sources.Limiter, baseURL string) (*Client, error) {
	if limiter == nil {
		return nil, services.Wrap(services.ErrConfiguration, Name, "init", "limiter required", nil)
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{limiter: limiter, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (c *Client) Name() string { return Name }

// Fetch loads the title. When the kind is unknown it tries the movie
// endpoint first and falls back to series.
func (c *Client) Fetch(ctx context.Context, req sources.Request) (metadata.Record, error) {
	id := strings.TrimSpace(req.ID)
	if id == "" {
		return metadata.Record{}, sources.NotFound(Name, "primary id required")
	}
	kinds := []metadata.Kind{req.Kind}
	if !req.Kind.Known() {
		kinds = []metadata.Kind{metadata.KindMovie, metadata.KindSeries}
	}

	var lastErr error
	for _, kind := range kinds {
		body, err := c.limiter.Enqueue(ctx, Name, ratelimit.Request{
			URL: sources.JoinURL(c.baseURL, nil, "meta", string(kind), id+".json"),
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
		if err != nil {
			return metadata.Record{}, err
		}
		if !rec.Kind.Known() {
			rec.Kind = kind
		}
		return rec, nil
	}
	return metadata.Record{}, lastErr
}

// CatalogURL builds the URL of a Cinemeta catalog such as "top".
func CatalogURL(baseURL string, kind metadata.Kind, catalog string) string {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	return sources.JoinURL(baseURL, nil, "catalog", string(kind), catalog+".json")
}

// DecodeCatalog parses a catalog payload into its entries.
func DecodeCatalog(payload []byte) ([]Meta, error) {
	var resp catalogResponse
	if err := sources.Decode(Name, payload, &resp); err != nil {
		return nil, err
	}
	return resp.Metas, nil
}
