package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"marquee/internal/logging"
	"marquee/internal/services"
)

// DefaultRequestTimeout bounds every dispatched request.
const DefaultRequestTimeout = 10 * time.Second

const maxBodyBytes = 8 << 20

// Request describes one outbound call.
type Request struct {
	Method string
	URL    string
	Header http.Header
}

// SourceConfig registers a source with its pacing and optional daily quota.
type SourceConfig struct {
	Name     string
	Interval time.Duration
	// DailyCap limits dispatches per local calendar day. Zero disables it.
	DailyCap int
}

// Stats is a point-in-time view of one source queue.
type Stats struct {
	Source     string
	Interval   time.Duration
	Queued     int
	UsedToday  int
	DailyCap   int
	Dispatched int64
}

// Limiter serializes and paces outbound requests per source. Each source has
// its own FIFO queue drained by one dispatcher goroutine; there is no
// ordering across sources.
type Limiter struct {
	client    *http.Client
	timeout   time.Duration
	now       func() time.Time
	userAgent string
	logger    *slog.Logger

	mu      sync.Mutex
	sources map[string]*sourceQueue
	closed  bool

	stop chan struct{}
	wg   sync.WaitGroup
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(l *Limiter) {
		if client != nil {
			l.client = client
		}
	}
}

// WithTimeout overrides the shared request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(l *Limiter) {
		if timeout > 0 {
			l.timeout = timeout
		}
	}
}

// WithClock overrides the time source used for the daily quota reset.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

// WithUserAgent sets the User-Agent header on requests that do not carry one.
func WithUserAgent(agent string) Option {
	return func(l *Limiter) {
		l.userAgent = strings.TrimSpace(agent)
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Limiter) {
		l.logger = logger
	}
}

// New creates a limiter with no registered sources.
func New(opts ...Option) *Limiter {
	l := &Limiter{
		client:  &http.Client{},
		timeout: DefaultRequestTimeout,
		now:     time.Now,
		sources: make(map[string]*sourceQueue),
		stop:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = logging.NewComponentLogger(l.logger, "ratelimit")
	return l
}

// Register adds a source and starts its dispatcher.
func (l *Limiter) Register(cfg SourceConfig) error {
	cfg.Name = strings.TrimSpace(cfg.Name)
	if cfg.Name == "" {
		return services.Wrap(services.ErrInvalidInput, "ratelimit", "register", "source name required", nil)
	}
	if cfg.Interval <= 0 {
		return services.Wrap(services.ErrInvalidInput, "ratelimit", "register", fmt.Sprintf("source %s interval must be positive", cfg.Name), nil)
	}
	if cfg.DailyCap < 0 {
		cfg.DailyCap = 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return services.Wrap(services.ErrClosed, "ratelimit", "register", cfg.Name, nil)
	}
	if _, exists := l.sources[cfg.Name]; exists {
		return services.Wrap(services.ErrInvalidInput, "ratelimit", "register", fmt.Sprintf("source %s already registered", cfg.Name), nil)
	}
	q := newSourceQueue(cfg)
	l.sources[cfg.Name] = q
	l.wg.Add(1)
	go l.dispatch(q)
	return nil
}

// Enqueue queues req for source and blocks until the response body arrives.
// Priority requests jump to the front of the source queue.
func (l *Limiter) Enqueue(ctx context.Context, source string, req Request, priority bool) ([]byte, error) {
	pending, err := l.Submit(ctx, source, req, priority)
	if err != nil {
		return nil, err
	}
	return pending.Wait(ctx)
}

// Submit queues req and returns without waiting for dispatch. Requests for a
// source that reached its daily cap fail immediately without being queued.
func (l *Limiter) Submit(ctx context.Context, source string, req Request, priority bool) (*Pending, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(req.URL) == "" {
		return nil, services.Wrap(services.ErrInvalidInput, source, "enqueue", "request url required", nil)
	}

	l.mu.Lock()
	q, ok := l.sources[source]
	closed := l.closed
	l.mu.Unlock()
	if closed {
		return nil, services.Wrap(services.ErrClosed, source, "enqueue", "limiter closed", nil)
	}
	if !ok {
		return nil, services.Wrap(services.ErrInvalidInput, source, "enqueue", "unregistered source", nil)
	}

	p := &Pending{ctx: ctx, req: req, done: make(chan struct{})}
	if err := q.push(p, priority, l.now()); err != nil {
		return nil, err
	}
	return p, nil
}

// Stats reports queue depth and quota usage for source.
func (l *Limiter) Stats(source string) (Stats, bool) {
	l.mu.Lock()
	q, ok := l.sources[source]
	l.mu.Unlock()
	if !ok {
		return Stats{}, false
	}
	return q.stats(l.now()), true
}

// Sources lists registered source names.
func (l *Limiter) Sources() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	names := make([]string, 0, len(l.sources))
	for name := range l.sources {
		names = append(names, name)
	}
	return names
}

// Close stops every dispatcher. Queued requests fail with ErrClosed.
func (l *Limiter) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	close(l.stop)
	queues := make([]*sourceQueue, 0, len(l.sources))
	for _, q := range l.sources {
		queues = append(queues, q)
	}
	l.mu.Unlock()

	l.wg.Wait()
	for _, q := range queues {
		for _, p := range q.drain() {
			p.finish(nil, services.Wrap(services.ErrClosed, q.cfg.Name, "dispatch", "limiter closed", nil))
		}
	}
}

func (l *Limiter) dispatch(q *sourceQueue) {
	defer l.wg.Done()
	stopCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-l.stop:
			cancel()
		case <-stopCtx.Done():
		}
	}()

	for {
		select {
		case <-l.stop:
			return
		case <-q.wake:
		}
		for {
			if q.len() == 0 {
				break
			}
			if err := q.pacer.Wait(stopCtx); err != nil {
				return
			}
			p := q.pop()
			if p == nil {
				break
			}
			if err := p.ctx.Err(); err != nil {
				q.refund(l.now())
				p.finish(nil, err)
				continue
			}
			q.markDispatched()
			l.wg.Add(1)
			go func() {
				defer l.wg.Done()
				body, err := l.execute(q.cfg.Name, p)
				p.finish(body, err)
			}()
		}
	}
}

func (l *Limiter) execute(source string, p *Pending) ([]byte, error) {
	ctx, cancel := context.WithTimeout(p.ctx, l.timeout)
	defer cancel()

	method := p.req.Method
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequestWithContext(ctx, method, p.req.URL, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrInvalidInput, source, "build request", p.req.URL, err)
	}
	for key, values := range p.req.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	if l.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", l.userAgent)
	}

	start := time.Now()
	resp, err := l.client.Do(req)
	latency := time.Since(start)
	if err != nil {
		if isTimeout(ctx, p.ctx, err) {
			return nil, services.Wrap(services.ErrTimeout, source, "fetch", fmt.Sprintf("exceeded %s", l.timeout), err)
		}
		if parentErr := p.ctx.Err(); parentErr != nil {
			return nil, parentErr
		}
		return nil, services.Wrap(services.ErrTransient, source, "fetch", fmt.Sprintf("latency=%s", latency), err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		logging.WarnWithContext(l.logger, "upstream rate limited request", "rate_limited",
			logging.Source(source),
			logging.String(logging.FieldErrorHint, "raise sources."+source+".interval_ms"),
			logging.String(logging.FieldImpact, "source skipped for this pass"),
		)
		return nil, services.Wrap(services.ErrRateLimited, source, "fetch", "http 429", nil)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &services.HTTPError{Source: source, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if isTimeout(ctx, p.ctx, err) {
			return nil, services.Wrap(services.ErrTimeout, source, "read body", fmt.Sprintf("exceeded %s", l.timeout), err)
		}
		return nil, services.Wrap(services.ErrTransient, source, "read body", "", err)
	}
	l.logger.Debug("request dispatched",
		logging.Source(source),
		logging.Int("status", resp.StatusCode),
		logging.Duration("latency", latency),
	)
	return body, nil
}

// isTimeout reports whether err came from the shared request deadline rather
// than from the caller cancelling its own context.
func isTimeout(reqCtx, callerCtx context.Context, err error) bool {
	if callerCtx.Err() != nil {
		return errors.Is(callerCtx.Err(), context.DeadlineExceeded)
	}
	if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
