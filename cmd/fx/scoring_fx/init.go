package scoring_fx

import (
	"context"

	"dishdash/internal/config"
	"dishdash/internal/repositories"
	"dishdash/internal/services"
	"dishdash/pkg/embedding"

	"go.uber.org/fx"
)

var Module = fx.Provide(
	repositories.NewScoringRunRepository,
	repositories.NewRestaurantVectorRepository,
	provideScorer,
	provideBatchRunner,
	func(b *services.BatchRunner) services.ScoringServiceInterface { return b },
)

func provideScorer(tags services.TagAggregatorInterface, provider embedding.Provider) services.RestaurantScorer {
	return services.NewAmbianceScorer(tags, provider)
}

func provideBatchRunner(
	lc fx.Lifecycle,
	scorer services.RestaurantScorer,
	restaurants repositories.RestaurantRepositoryInterface,
	tags repositories.TagRepositoryInterface,
	vectors repositories.RestaurantVectorRepositoryInterface,
	runs repositories.ScoringRunRepositoryInterface,
	cfg *config.Config,
) *services.BatchRunner {
	runner := services.NewBatchRunner(scorer, restaurants, tags, vectors, runs, cfg.Scoring)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			runner.Stop()
			return nil
		},
	})
	return runner
}
