package ranking_fx

import (
	"dishdash/internal/config"
	"dishdash/internal/repositories"
	"dishdash/internal/services"
	"dishdash/pkg/embedding"
	mem "dishdash/pkg/memcache"

	"go.uber.org/fx"
)

var Module = fx.Provide(
	repositories.NewSwipeRepository,
	provideUserProfileService,
	provideRankingService)

func provideUserProfileService(
	swipes repositories.SwipeRepositoryInterface,
	restaurants repositories.RestaurantRepositoryInterface,
	tags repositories.TagRepositoryInterface,
	provider embedding.Provider,
	cache mem.VectorStore,
	cfg *config.Config,
) services.UserProfileServiceInterface {
	return services.NewUserProfileService(swipes, restaurants, tags, provider, cache, cfg.Ranking.UserVectorTTL)
}

func provideRankingService(
	restaurants repositories.RestaurantRepositoryInterface,
	vectors repositories.RestaurantVectorRepositoryInterface,
	profiles services.UserProfileServiceInterface,
	provider embedding.Provider,
	cfg *config.Config,
) services.RankingServiceInterface {
	return services.NewRankingService(restaurants, vectors, profiles, provider.Name(), cfg.Ranking)
}

