package embedding_fx

import (
	"context"
	"io"

	"dishdash/internal/config"
	"dishdash/internal/infra"
	"dishdash/pkg/embedding"
	"dishdash/pkg/logging"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/fx"
)

var Module = fx.Provide(
	provideCache,
	provideEmbeddingProvider)

func provideCache(lc fx.Lifecycle, cfg *config.Config) (*badger.DB, error) {
	db, err := infra.OpenBadger(cfg.Embedding.CachePath)
	if err != nil || db == nil {
		return db, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return db.Close()
		},
	})
	return db, nil
}

func provideEmbeddingProvider(lc fx.Lifecycle, cfg *config.Config, cache *badger.DB) (embedding.Provider, error) {
	e := cfg.Embedding
	raw, err := embedding.NewProvider(context.Background(), embedding.Options{
		Provider:  e.Provider,
		APIKey:    e.APIKey,
		Model:     e.Model,
		BaseURL:   e.BaseURL,
		Dimension: e.Dimension,
	})
	if err != nil {
		return nil, err
	}
	if closer, ok := raw.(io.Closer); ok {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return closer.Close()
			},
		})
	}

	p := embedding.Decorate(raw, embedding.Options{
		Retry: embedding.RetryPolicy{
			MaxAttempts:     e.MaxAttempts,
			InitialInterval: e.InitialBackoff,
			MaxInterval:     e.MaxBackoff,
			AttemptTimeout:  e.Timeout,
		},
		RequestsPerSecond: e.RequestsPerSecond,
		Burst:             e.Burst,
		Breaker:           embedding.BreakerSettings{Name: "embedding"},
		Cache:             cache,
		CacheTTL:          e.CacheTTL,
	})

	logging.Info().
		Str("provider", p.Name()).
		Int("dimension", p.Dimension()).
		Bool("cache", cache != nil).
		Msg("embedding provider ready")
	return p, nil
}
