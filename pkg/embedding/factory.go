package embedding

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dishdash/pkg/utils"

	"github.com/dgraph-io/badger/v4"
)

type Options struct {
	Provider  string // openai, gemini or hash
	APIKey    string
	Model     string
	BaseURL   string
	Dimension int

	Retry             RetryPolicy
	RequestsPerSecond float64
	Burst             int
	Breaker           BreakerSettings

	Cache    *badger.DB
	CacheTTL time.Duration
}

// NewProvider builds the raw provider named by opts.Provider. Networked
// providers without an API key fail with utils.ErrMissingCredentials.
func NewProvider(ctx context.Context, opts Options) (Provider, error) {
	switch strings.ToLower(opts.Provider) {
	case "openai":
		if opts.APIKey == "" {
			return nil, fmt.Errorf("%w: openai api key is empty", utils.ErrMissingCredentials)
		}
		return NewOpenAIProvider(opts.APIKey, opts.Model, opts.BaseURL, opts.Dimension), nil
	case "gemini":
		if opts.APIKey == "" {
			return nil, fmt.Errorf("%w: gemini api key is empty", utils.ErrMissingCredentials)
		}
		return NewGeminiProvider(ctx, opts.APIKey, opts.Model, opts.Dimension)
	case "hash", "":
		return NewHashProvider(opts.Dimension), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s. Use 'openai', 'gemini' or 'hash'", opts.Provider)
	}
}

// Decorate stacks the resilience layers around p, outermost first:
// cache, retry (with per-attempt timeout), rate limit, circuit breaker.
func Decorate(p Provider, opts Options) Provider {
	p = WithBreaker(p, opts.Breaker)
	p = WithRateLimit(p, opts.RequestsPerSecond, opts.Burst)
	p = WithRetry(p, opts.Retry)
	return WithCache(p, opts.Cache, opts.CacheTTL)
}

// New is NewProvider followed by Decorate.
func New(ctx context.Context, opts Options) (Provider, error) {
	p, err := NewProvider(ctx, opts)
	if err != nil {
		return nil, err
	}
	return Decorate(p, opts), nil
}
