// Command scorer runs one batch scoring pass and exits. The exit code is 0
// when every selected dimension finished (DONE or CANCELLED) and 1 otherwise.
package main

import (
	"context"
	"flag"
	"time"

	"dishdash/cmd/fx/config_fx"
	"dishdash/cmd/fx/db_fx"
	"dishdash/cmd/fx/embedding_fx"
	"dishdash/cmd/fx/scoring_fx"
	"dishdash/cmd/fx/tagsfx"
	"dishdash/internal/services"
	"dishdash/pkg/logging"

	"go.uber.org/fx"
)

func main() {
	dimension := flag.String("dimension", "all", "scoring dimension to run, or all")
	flag.Parse()

	app := fx.New(
		config_fx.Module,
		db_fx.Module,
		embedding_fx.Module,
		tagsfx.Module,
		scoring_fx.Module,

		fx.Supply(dimensionFlag(*dimension)),
		fx.Invoke(runOnce),
		fx.StopTimeout(2*time.Minute),
		fx.NopLogger,
	)

	app.Run()
}

type dimensionFlag string

func runOnce(lc fx.Lifecycle, shutdowner fx.Shutdowner, runner *services.BatchRunner, dimension dimensionFlag) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)

				code := 0
				summaries, err := runner.Run(ctx, string(dimension))
				for _, s := range summaries {
					logging.Info().
						Str("dimension", s.Dimension).
						Str("state", s.State).
						Int("succeeded", s.Succeeded).
						Int("skipped", s.Skipped).
						Int("failed", s.Failed).
						Dur("duration", s.Duration).
						Msg("scoring run summary")
				}
				if err != nil {
					logging.Error().Err(err).Msg("scoring run failed")
					code = 1
				}
				_ = shutdowner.Shutdown(fx.ExitCode(code))
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-ctx.Done():
			}
			return nil
		},
	})
}
