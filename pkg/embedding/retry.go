package embedding

import (
	"context"
	"errors"
	"time"

	"dishdash/pkg/logging"
	"dishdash/pkg/metrics"
	"dishdash/pkg/utils"
	"dishdash/pkg/vectormath"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy bounds how hard a provider call is retried. Only errors wrapping
// utils.ErrProviderTransient are retried; a per-attempt deadline that expires
// counts as transient.
type RetryPolicy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	AttemptTimeout  time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     4,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     10 * time.Second,
		AttemptTimeout:  15 * time.Second,
	}
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	d := DefaultRetryPolicy()
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = d.MaxAttempts
	}
	if p.InitialInterval <= 0 {
		p.InitialInterval = d.InitialInterval
	}
	if p.MaxInterval <= 0 {
		p.MaxInterval = d.MaxInterval
	}
	if p.AttemptTimeout <= 0 {
		p.AttemptTimeout = d.AttemptTimeout
	}
	return p
}

// Do runs fn until it succeeds, returns a non-retryable error, the attempt
// budget is spent or ctx is done. Each attempt gets its own timeout.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	p = p.withDefaults()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxInterval = p.MaxInterval
	b.MaxElapsedTime = 0

	operation := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, p.AttemptTimeout)
		defer cancel()

		err := fn(attemptCtx)
		switch {
		case err == nil:
			return nil
		case ctx.Err() != nil:
			return backoff.Permanent(ctx.Err())
		case errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, utils.ErrProviderRejected):
			return transient(err)
		case utils.IsRetryable(err):
			return err
		default:
			return backoff.Permanent(err)
		}
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(p.MaxAttempts-1)), ctx)
	return backoff.RetryNotify(operation, policy, func(err error, wait time.Duration) {
		logging.Ctx(ctx).Warn().Err(err).Dur("backoff", wait).Msg("embedding call failed, retrying")
	})
}

type retrying struct {
	next   Provider
	policy RetryPolicy
}

// WithRetry wraps next so every call goes through policy.
func WithRetry(next Provider, policy RetryPolicy) Provider {
	return &retrying{next: next, policy: policy}
}

func (r *retrying) Name() string   { return r.next.Name() }
func (r *retrying) Dimension() int { return r.next.Dimension() }

func (r *retrying) Embed(ctx context.Context, text string) (vectormath.Vector, error) {
	return single(ctx, r, text)
}

func (r *retrying) EmbedBatch(ctx context.Context, texts []string) ([]vectormath.Vector, error) {
	var out []vectormath.Vector
	err := r.policy.Do(ctx, func(ctx context.Context) error {
		vs, err := r.next.EmbedBatch(ctx, texts)
		metrics.EmbeddingRequests.WithLabelValues(r.next.Name(), outcomeOf(err)).Inc()
		if err != nil {
			return err
		}
		out = vs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSucceeded
	case utils.IsRetryable(err):
		return metrics.OutcomeTransient
	case errors.Is(err, utils.ErrProviderRejected):
		return metrics.OutcomeRejected
	default:
		return metrics.OutcomeFailed
	}
}
