package controllers_fx

import (
	"dishdash/internal/api/controllers"
	"dishdash/internal/config"
	"dishdash/internal/services"

	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(controllers.NewTagController),
	fx.Provide(provideRankingController),
	fx.Provide(controllers.NewScoringController))

func provideRankingController(
	ranking services.RankingServiceInterface,
	profiles services.UserProfileServiceInterface,
	cfg *config.Config,
) *controllers.RankingController {
	return controllers.NewRankingController(ranking, profiles, cfg.Scoring.Dimensions[0].Category)
}
