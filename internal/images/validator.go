package images

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"marquee/internal/boundedcache"
	"marquee/internal/logging"
)

const (
	DefaultBaseURL   = "https://image.tmdb.org/t/p"
	DefaultCacheSize = 500
	defaultTimeout   = 5 * time.Second
)

// DefaultSizes is the size ladder tried for relative image paths.
var DefaultSizes = []string{"w780", "original"}

var errUnreachable = errors.New("image host unreachable")

// Validator resolves artwork paths to URLs that answer with a 2xx status.
type Validator struct {
	client    *http.Client
	baseURL   string
	sizes     []string
	userAgent string
	cacheSize int
	cache     *boundedcache.Cache[string, string]
	probes    singleflight.Group
	logger    *slog.Logger
}

// Option configures a Validator.
type Option func(*Validator)

// WithHTTPClient overrides the client used for probes.
func WithHTTPClient(client *http.Client) Option {
	return func(v *Validator) {
		if client != nil {
			v.client = client
		}
	}
}

// WithBaseURL sets the prefix joined with size and relative path.
func WithBaseURL(baseURL string) Option {
	return func(v *Validator) {
		if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
			v.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithSizes replaces the size ladder.
func WithSizes(sizes ...string) Option {
	return func(v *Validator) {
		if len(sizes) > 0 {
			v.sizes = append([]string(nil), sizes...)
		}
	}
}

// WithCacheSize bounds the number of remembered outcomes.
func WithCacheSize(size int) Option {
	return func(v *Validator) {
		if size > 0 {
			v.cacheSize = size
		}
	}
}

// WithUserAgent sets the User-Agent header on probes.
func WithUserAgent(agent string) Option {
	return func(v *Validator) { v.userAgent = strings.TrimSpace(agent) }
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) { v.logger = logger }
}

// New creates a Validator.
func New(opts ...Option) (*Validator, error) {
	v := &Validator{
		client:    &http.Client{Timeout: defaultTimeout},
		baseURL:   DefaultBaseURL,
		sizes:     DefaultSizes,
		cacheSize: DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(v)
	}
	cache, err := boundedcache.New[string, string](v.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("image cache: %w", err)
	}
	v.cache = cache
	v.logger = logging.NewComponentLogger(v.logger, "images")
	return v, nil
}

// Resolve returns the first reachable URL for path, trying each size and
// then fallback. Absolute paths are probed as given. An empty result means
// nothing resolved.
func (v *Validator) Resolve(ctx context.Context, path, fallback string) string {
	path = strings.TrimSpace(path)
	fallback = strings.TrimSpace(fallback)
	if path == "" && fallback == "" {
		return ""
	}
	key := path + "|" + fallback
	if resolved, ok := v.cache.Get(key); ok {
		return resolved
	}

	transient := false
	for _, candidate := range v.candidates(path, fallback) {
		ok, err := v.probe(ctx, candidate)
		if err != nil {
			transient = true
			continue
		}
		if ok {
			v.cache.Set(key, candidate)
			return candidate
		}
	}
	if !transient {
		v.cache.Set(key, "")
	}
	v.logger.Debug("artwork unresolved",
		logging.String("path", path),
		logging.Bool("transient", transient),
	)
	return ""
}

// Validate reports whether rawURL answers with a 2xx status.
func (v *Validator) Validate(ctx context.Context, rawURL string) bool {
	return v.Resolve(ctx, rawURL, "") != ""
}

func (v *Validator) candidates(path, fallback string) []string {
	var out []string
	switch {
	case path == "":
	case isAbsolute(path):
		out = append(out, path)
	default:
		rel := strings.TrimLeft(path, "/")
		for _, size := range v.sizes {
			out = append(out, v.baseURL+"/"+size+"/"+rel)
		}
	}
	if fallback != "" && fallback != path {
		out = append(out, fallback)
	}
	return out
}

// probe reports whether target resolves. A non-nil error means the host
// could not be reached and the outcome says nothing about the image.
func (v *Validator) probe(ctx context.Context, target string) (bool, error) {
	result, err, _ := v.probes.Do(target, func() (any, error) {
		status, err := v.request(ctx, http.MethodHead, target)
		if err == nil && status == http.StatusMethodNotAllowed {
			status, err = v.request(ctx, http.MethodGet, target)
		}
		if err != nil {
			return false, err
		}
		return status >= 200 && status < 300, nil
	})
	if err != nil {
		return false, err
	}
	return result.(bool), nil
}

func (v *Validator) request(ctx context.Context, method, target string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", errUnreachable, err)
	}
	if method == http.MethodGet {
		req.Header.Set("Range", "bytes=0-0")
	}
	if v.userAgent != "" {
		req.Header.Set("User-Agent", v.userAgent)
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", errUnreachable, err)
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

func isAbsolute(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
