package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"dishdash/cmd/fx/config_fx"
	"dishdash/cmd/fx/controllers_fx"
	"dishdash/cmd/fx/db_fx"
	"dishdash/cmd/fx/embedding_fx"
	"dishdash/cmd/fx/memcache_fx"
	"dishdash/cmd/fx/ranking_fx"
	"dishdash/cmd/fx/scheduler_fx"
	"dishdash/cmd/fx/scoring_fx"
	"dishdash/cmd/fx/tagsfx"
	"dishdash/internal/api/controllers"
	"dishdash/internal/config"
	"dishdash/pkg/logging"
	"dishdash/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config_fx.Module,
		db_fx.Module,
		memcache_fx.Module,
		embedding_fx.Module,
		tagsfx.Module,
		ranking_fx.Module,
		scoring_fx.Module,
		scheduler_fx.Module,
		controllers_fx.Module,

		fx.Invoke(StartServer),
		fx.Provide(ProvideRouter),
		fx.NopLogger,
	)

	app.Run()
}

func StartServer(lc fx.Lifecycle, cfg *config.Config, engine *gin.Engine) {
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				logging.Info().Str("addr", srv.Addr).Msg("starting HTTP server")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logging.Fatal().Err(err).Msg("failed to start server")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logging.Info().Msg("stopping HTTP server")
			return srv.Shutdown(ctx)
		},
	})
}

func ProvideRouter(
	cfg *config.Config,
	tagsController *controllers.TagController,
	rankingController *controllers.RankingController,
	scoringController *controllers.ScoringController) *gin.Engine {

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.TraceIDMiddleware())
	r.Use(middleware.RequestLogger())

	RegisterRoutes(r, cfg, tagsController, rankingController, scoringController)

	return r
}

func RegisterRoutes(r *gin.Engine,
	cfg *config.Config,
	tagsController *controllers.TagController,
	rankingController *controllers.RankingController,
	scoringController *controllers.ScoringController) {

	auth := middleware.JWTAuthMiddleware(cfg.Auth.JWTSecret)
	admin := middleware.RoleMiddleware(cfg.Auth.AdminRole)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/tags", tagsController.ListAllTagsHandler)

	restaurantsGroup := r.Group("/restaurants")
	restaurantsGroup.GET("/:id/tags", tagsController.RestaurantTagsHandler)
	restaurantsGroup.POST("/rank", auth, rankingController.RankHandler)
	restaurantsGroup.POST("/:id/swipe", auth, rankingController.SwipeHandler)

	r.GET("/recommendations", auth, rankingController.RecommendationsHandler)

	r.POST("/images/:id/tags", auth, admin, tagsController.AttachImageTagsHandler)

	adminGroup := r.Group("/admin", auth, admin)
	adminGroup.POST("/scoring/run", scoringController.TriggerRunHandler)
	adminGroup.GET("/scoring/runs", scoringController.ListRunsHandler)
}
