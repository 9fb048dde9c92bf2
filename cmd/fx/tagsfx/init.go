package tagsfx

import (
	"dishdash/internal/repositories"
	"dishdash/internal/services"

	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Provide(
	provideTagsRepo,
	provideRestaurantRepo,
	services.NewTagAggregator,
	services.NewTagService)

func provideTagsRepo(db *gorm.DB) repositories.TagRepositoryInterface {
	return repositories.NewTagRepository(db)
}

func provideRestaurantRepo(db *gorm.DB) repositories.RestaurantRepositoryInterface {
	return repositories.NewRestaurantRepository(db)
}
