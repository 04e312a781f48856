package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"marquee/internal/services"
)

// Pending is a queued request awaiting dispatch.
type Pending struct {
	ctx  context.Context
	req  Request
	once sync.Once
	done chan struct{}
	body []byte
	err  error
}

// Wait blocks until the request completes or ctx is cancelled.
func (p *Pending) Wait(ctx context.Context) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-p.done:
		return p.body, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Done is closed once the request has a result.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

func (p *Pending) finish(body []byte, err error) {
	p.once.Do(func() {
		p.body = body
		p.err = err
		close(p.done)
	})
}

type sourceQueue struct {
	cfg   SourceConfig
	pacer *rate.Limiter
	wake  chan struct{}

	mu         sync.Mutex
	items      []*Pending
	used       int
	day        time.Time
	dispatched int64
}

func newSourceQueue(cfg SourceConfig) *sourceQueue {
	return &sourceQueue{
		cfg:   cfg,
		pacer: rate.NewLimiter(rate.Every(cfg.Interval), 1),
		wake:  make(chan struct{}, 1),
	}
}

// push reserves one unit of the daily quota and queues p. Priority entries
// go to the front.
func (q *sourceQueue) push(p *Pending, priority bool, now time.Time) error {
	q.mu.Lock()
	q.rollover(now)
	if q.cfg.DailyCap > 0 && q.used >= q.cfg.DailyCap {
		q.mu.Unlock()
		return services.Wrap(services.ErrDailyLimitExceeded, q.cfg.Name, "enqueue",
			fmt.Sprintf("cap %d reached", q.cfg.DailyCap), nil)
	}
	q.used++
	if priority {
		q.items = append([]*Pending{p}, q.items...)
	} else {
		q.items = append(q.items, p)
	}
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return nil
}

func (q *sourceQueue) pop() *Pending {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil
	}
	p := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return p
}

func (q *sourceQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *sourceQueue) drain() []*Pending {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items
	q.items = nil
	return items
}

// refund returns quota reserved by a request that was abandoned before dispatch.
func (q *sourceQueue) refund(now time.Time) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.rollover(now)
	if q.used > 0 {
		q.used--
	}
}

func (q *sourceQueue) markDispatched() {
	q.mu.Lock()
	q.dispatched++
	q.mu.Unlock()
}

func (q *sourceQueue) stats(now time.Time) Stats {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.rollover(now)
	return Stats{
		Source:     q.cfg.Name,
		Interval:   q.cfg.Interval,
		Queued:     len(q.items),
		UsedToday:  q.used,
		DailyCap:   q.cfg.DailyCap,
		Dispatched: q.dispatched,
	}
}

// rollover resets the quota counter at local midnight. Caller holds q.mu.
func (q *sourceQueue) rollover(now time.Time) {
	day := startOfDay(now)
	if !day.Equal(q.day) {
		q.day = day
		q.used = 0
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
