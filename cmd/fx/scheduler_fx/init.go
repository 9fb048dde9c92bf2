package scheduler_fx

import (
	"context"
	"errors"

	"dishdash/internal/config"
	"dishdash/internal/services"
	"dishdash/pkg/logging"
	"dishdash/pkg/utils"

	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
)

var Module = fx.Invoke(registerSchedule)

// registerSchedule triggers a full scoring run on scoring.schedule. An empty
// schedule disables it.
func registerSchedule(lc fx.Lifecycle, cfg *config.Config, scoring services.ScoringServiceInterface) error {
	if cfg.Scoring.Schedule == "" {
		logging.Info().Msg("scoring schedule disabled")
		return nil
	}

	c := cron.New()
	_, err := c.AddFunc(cfg.Scoring.Schedule, func() {
		err := scoring.Start("all")
		switch {
		case errors.Is(err, utils.ErrRunInProgress):
			logging.Info().Msg("scheduled scoring skipped, a run is already in progress")
		case err != nil:
			logging.Error().Err(err).Msg("scheduled scoring failed to start")
		}
	})
	if err != nil {
		return err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			c.Start()
			logging.Info().Str("schedule", cfg.Scoring.Schedule).Msg("scoring scheduler started")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			select {
			case <-c.Stop().Done():
			case <-ctx.Done():
			}
			return nil
		},
	})
	return nil
}
