package jikan

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

// DefaultBaseURL is the public Jikan v4 endpoint.
const DefaultBaseURL = "https://api.jikan.moe/v4"

// animeGenres mark a record as anime when no MAL id is known yet.
var animeGenres = map[string]struct{}{
	"anime":     {},
	"animation": {},
}

// Client is the anime source. It resolves MAL ids through its own title
// matcher when the record does not carry one.
type Client struct {
	limiter     sources.Limiter
	baseURL     string
	logger      *slog.Logger
	matcherOpts []matcher.Option
	matcher     *matcher.Matcher
}

var (
	_ sources.Source     = (*Client)(nil)
	_ sources.Applicable = (*Client)(nil)
	_ matcher.Searcher   = (*Client)(nil)
)

// Option configures a Client.
type Option func(*Client)

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithMatcherOptions tunes the MAL id matcher.
func WithMatcherOptions(opts ...matcher.Option) Option {
	return func(c *Client) { c.matcherOpts = append(c.matcherOpts, opts...) }
}

// New creates a Jikan source.
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
	matcherOpts := append([]matcher.Option{matcher.WithName(Name), matcher.WithLogger(c.logger)}, c.matcherOpts...)
	m, err := matcher.New(c, matcherOpts...)
	if err != nil {
		return nil, err
	}
	c.matcher = m
	return c, nil
}

func (c *Client) Name() string { return Name }

// Matcher returns the MAL id matcher backed by this client.
func (c *Client) Matcher() *matcher.Matcher { return c.matcher }

// Applies reports whether rec looks like anime: it already has a MAL id or
// carries an animation genre.
func (c *Client) Applies(rec metadata.Record) bool {
	if strings.TrimSpace(rec.SecondaryIDs[SecondaryKey]) != "" {
		return true
	}
	for _, genre := range rec.Genres {
		if _, ok := animeGenres[strings.ToLower(strings.TrimSpace(genre))]; ok {
			return true
		}
	}
	return false
}

// Fetch loads the full anime entry, matching the title first when the MAL
// id is unknown.
func (c *Client) Fetch(ctx context.Context, req sources.Request) (metadata.Record, error) {
	malID := strings.TrimSpace(req.SecondaryIDs[SecondaryKey])
	if malID == "" {
		resolved, err := c.resolve(ctx, req)
		if err != nil {
			return metadata.Record{}, err
		}
		malID = resolved
	}
	body, err := c.limiter.Enqueue(ctx, Name, ratelimit.Request{
		URL: sources.JoinURL(c.baseURL, nil, "anime", malID, "full"),
	}, req.Priority)
	if err != nil {
		if services.StatusOf(err) == http.StatusNotFound {
			return metadata.Record{}, sources.NotFound(Name, malID)
		}
		return metadata.Record{}, err
	}
	return Normalize(malID, body)
}

func (c *Client) resolve(ctx context.Context, req sources.Request) (string, error) {
	if strings.TrimSpace(req.Title) == "" {
		return "", sources.NotFound(Name, "no mal id or title")
	}
	res, err := c.matcher.Match(ctx, matcher.Query{Title: req.Title, AltTitle: req.AltTitle, Year: req.Year})
	if err != nil {
		return "", err
	}
	if res.Failure != nil {
		return "", res.Failure
	}
	if !res.Matched() {
		return "", sources.NotFound(Name, "no confident match for "+req.Title)
	}
	c.logger.Debug("mal id resolved",
		logging.RecordID(req.ID),
		logging.String("mal_id", res.ID),
		logging.Float64("score", res.Score),
		logging.Bool("cached", res.Cached),
	)
	return res.ID, nil
}

// Search implements matcher.Searcher over /anime?q=.
func (c *Client) Search(ctx context.Context, title string, _ int) ([]matcher.Candidate, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, services.Wrap(services.ErrInvalidInput, Name, "search", "title required", nil)
	}
	query := url.Values{}
	query.Set("q", title)
	query.Set("limit", strconv.Itoa(matcher.DefaultTopK*2))
	body, err := c.limiter.Enqueue(ctx, Name, ratelimit.Request{
		URL: sources.JoinURL(c.baseURL, query, "anime"),
	}, true)
	if err != nil {
		return nil, err
	}
	return DecodeSearch(body)
}

// DecodeSearch maps a search payload onto candidates keyed by MAL id.
func DecodeSearch(payload []byte) ([]matcher.Candidate, error) {
	var resp searchResponse
	if err := sources.Decode(Name, payload, &resp); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	out := make([]matcher.Candidate, 0, len(resp.Data))
	for _, a := range resp.Data {
		if a.MalID == 0 {
			continue
		}
		year := sources.Year(a.Year)
		if year == 0 {
			year = sources.Year(a.Aired.From)
		}
		out = append(out, matcher.Candidate{
			ID:    strconv.Itoa(a.MalID),
			Title: strings.TrimSpace(a.Title),
			Year:  year,
		})
	}
	return out, nil
}
