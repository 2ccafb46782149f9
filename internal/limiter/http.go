package limiter

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/m-zajac/ghanalyzer/internal/app"
	"golang.org/x/time/rate"
)

// HTTPDoer can execute http request.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// LimitedHTTPDoer wraps HTTPDoer and allows Dos with maximum rate limit.
//
// It also honors github's rate limit headers: when a response reports no
// remaining requests, following Dos wait until the reported reset time.
type LimitedHTTPDoer struct {
	doer    HTTPDoer
	limiter *rate.Limiter

	m            sync.Mutex
	blockedUntil time.Time
	now          func() time.Time
}

// NewHTTPDoer creates LimitedHTTPDoer instance.
// maxRate - maximum number of Dos per second, non-positive value disables the limit.
func NewHTTPDoer(doer HTTPDoer, maxRate float64, burst int) *LimitedHTTPDoer {
	limit := rate.Limit(maxRate)
	if maxRate <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}

	return &LimitedHTTPDoer{
		doer:    doer,
		limiter: rate.NewLimiter(limit, burst),
		now:     time.Now,
	}
}

// Do executes http request. If limit is exceeded, blocks until call rate is within limit.
func (d *LimitedHTTPDoer) Do(r *http.Request) (*http.Response, error) {
	ctx := r.Context()
	if err := d.waitForReset(ctx); err != nil {
		return nil, app.TooManyRequestsError(fmt.Sprintf("waiting for rate limit reset: %v", err))
	}
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, app.TooManyRequestsError(fmt.Sprintf("waiting for httpDoer limiter: %v", err))
	}

	resp, err := d.doer.Do(r)
	if err != nil {
		return resp, err
	}
	d.observe(resp.Header)

	return resp, nil
}

func (d *LimitedHTTPDoer) waitForReset(ctx context.Context) error {
	d.m.Lock()
	wait := d.blockedUntil.Sub(d.now())
	d.m.Unlock()
	if wait <= 0 {
		return nil
	}

	if deadline, ok := ctx.Deadline(); ok && deadline.Before(d.now().Add(wait)) {
		return fmt.Errorf("rate limit resets in %s, after context deadline", wait.Round(time.Second))
	}

	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *LimitedHTTPDoer) observe(h http.Header) {
	if h.Get("X-RateLimit-Remaining") != "0" {
		return
	}
	ts, err := strconv.ParseInt(h.Get("X-RateLimit-Reset"), 10, 64)
	if err != nil {
		return
	}

	reset := time.Unix(ts, 0)
	d.m.Lock()
	if reset.After(d.blockedUntil) {
		d.blockedUntil = reset
	}
	d.m.Unlock()
}
