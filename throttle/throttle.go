// Package throttle provides an [http.RoundTripper] that rate-limits
// outbound dispatches using a token bucket from [golang.org/x/time/rate].
//
// Wrap a base transport with [NewRoundTripper]; when the bucket is
// empty, dispatches block until a token frees up or the request
// context ends.
package throttle

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

var (
	ErrMustNotBeZero = errors.New("must be greater than zero")
	ErrWaitingFailed = errors.New("limiter waiting failed")
	ErrContextEnded  = errors.New("throttle context ended")
)

// Config defines the throttler's
// Requests Per Second and Burst Rate.
type Config struct {
	RPS   int
	Burst int
}

// limiter is an http.RoundTripper, using the time/rate token
// bucket to restrict outbound dispatches.
type limiter struct {
	bucket *rate.Limiter
	rps    int
	burst  int
	next   http.RoundTripper
	logFn  func() *slog.Logger
}

// NewRoundTripper returns an http.RoundTripper that throttles outbound
// dispatches with a token bucket. logFn lazily resolves the logger at
// request time, making option ordering irrelevant. A nil-returning
// logFn skips the calls to *Limiter.Allow().
func NewRoundTripper(rps, burst int, logFn func() *slog.Logger, next http.RoundTripper) (http.RoundTripper, error) {
	if rps <= 0 || burst <= 0 {
		return nil, fmt.Errorf("rps[%d] and burst[%d] %w", rps, burst, ErrMustNotBeZero)
	}

	l := &limiter{
		bucket: rate.NewLimiter(rate.Limit(rps), burst),
		rps:    rps,
		burst:  burst,
		next:   next,
		logFn:  logFn,
	}

	return l, nil
}

func (l *limiter) RoundTrip(r *http.Request) (*http.Response, error) {
	if l.bucket == nil {
		return l.next.RoundTrip(r)
	}

	ctx := r.Context()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w early: %w", ErrContextEnded, err)
	}

	var waited time.Duration
	logger := l.logFn()
	if logger != nil && !l.bucket.Allow() {
		logger.Info("throttle tokens exhausted", "rate", l.rps, "burst", l.burst, "path", r.URL.Path)

		defer func() {
			logger.Info("throttle wait complete", "waited", waited.String(), "rate", l.rps, "burst", l.burst)
		}()
	}

	start := time.Now()

	err := l.bucket.Wait(ctx)
	waited = time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWaitingFailed, err)
	}

	if err := ctx.Err(); err != nil { // Check context hasn't expired again.
		return nil, fmt.Errorf("%w post-wait: %w", ErrContextEnded, err)
	}

	return l.next.RoundTrip(r)
}
