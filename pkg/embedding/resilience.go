package embedding

import (
	"context"
	"errors"
	"time"

	"dishdash/pkg/logging"
	"dishdash/pkg/metrics"
	"dishdash/pkg/utils"
	"dishdash/pkg/vectormath"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

type breaker struct {
	next Provider
	cb   *gobreaker.CircuitBreaker[[]vectormath.Vector]
}

// BreakerSettings: the circuit opens once at least MinRequests calls in the
// current Interval failed at FailureRatio or worse, and probes again after Timeout.
type BreakerSettings struct {
	Name         string
	MinRequests  uint32
	FailureRatio float64
	Interval     time.Duration
	Timeout      time.Duration
}

// WithBreaker wraps next in a circuit breaker. Only transient failures count
// against the circuit; rejected input says nothing about provider health.
// While open, calls fail fast with a transient error.
func WithBreaker(next Provider, s BreakerSettings) Provider {
	if s.Name == "" {
		s.Name = "embedding"
	}
	if s.MinRequests == 0 {
		s.MinRequests = 10
	}
	if s.FailureRatio <= 0 {
		s.FailureRatio = 0.6
	}
	if s.Interval <= 0 {
		s.Interval = time.Minute
	}
	if s.Timeout <= 0 {
		s.Timeout = 30 * time.Second
	}

	metrics.CircuitBreakerState.WithLabelValues(s.Name).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]vectormath.Vector](gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: 1,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= s.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !utils.IsRetryable(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("embedding circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})

	return &breaker{next: next, cb: cb}
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

func (b *breaker) Name() string   { return b.next.Name() }
func (b *breaker) Dimension() int { return b.next.Dimension() }

func (b *breaker) Embed(ctx context.Context, text string) (vectormath.Vector, error) {
	return single(ctx, b, text)
}

func (b *breaker) EmbedBatch(ctx context.Context, texts []string) ([]vectormath.Vector, error) {
	out, err := b.cb.Execute(func() ([]vectormath.Vector, error) {
		return b.next.EmbedBatch(ctx, texts)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, transient(err)
	}
	return out, err
}

type rateLimited struct {
	next    Provider
	limiter *rate.Limiter
}

// WithRateLimit allows at most rps provider requests per second with the given
// burst. A non-positive rps disables limiting.
func WithRateLimit(next Provider, rps float64, burst int) Provider {
	if rps <= 0 {
		return next
	}
	if burst <= 0 {
		burst = 1
	}
	return &rateLimited{next: next, limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

func (r *rateLimited) Name() string   { return r.next.Name() }
func (r *rateLimited) Dimension() int { return r.next.Dimension() }

func (r *rateLimited) Embed(ctx context.Context, text string) (vectormath.Vector, error) {
	return single(ctx, r, text)
}

func (r *rateLimited) EmbedBatch(ctx context.Context, texts []string) ([]vectormath.Vector, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		// deadline too close to get a token: same as a timeout
		return nil, transient(err)
	}
	return r.next.EmbedBatch(ctx, texts)
}
