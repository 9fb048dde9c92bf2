package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"dishdash/internal/config"
	"dishdash/internal/models/db_models"
	"dishdash/internal/models/response_models"
	"dishdash/internal/repositories"
	"dishdash/pkg/logging"
	"dishdash/pkg/metrics"
	"dishdash/pkg/utils"
	"dishdash/pkg/vectormath"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Run states.
const (
	RunStateRunning   = "RUNNING"
	RunStateDone      = "DONE"
	RunStateFatal     = "FATAL"
	RunStateCancelled = "CANCELLED"
)

// maxRecordedFailures caps the failure list stored with a run; counts stay exact.
const maxRecordedFailures = 500

type ScoringServiceInterface interface {
	// Start launches a run of the named dimension ("all" for every one) in the
	// background. It fails with utils.ErrRunInProgress if a run is active.
	Start(dimension string) error
	ListRuns(ctx context.Context, limit int) ([]response_models.ScoringRunResponse, error)
}

type RunSummary struct {
	RunID     uuid.UUID
	Dimension string
	State     string
	Succeeded int
	Skipped   int
	Failed    int
	Failures  []db_models.RunFailure
	Duration  time.Duration
}

// BatchRunner walks every restaurant page by page and persists one dimension
// score per restaurant. Pages run one after another; restaurants within a page
// run with bounded concurrency. A restaurant that fails is logged and counted
// and never stops the run.
type BatchRunner struct {
	scorer         RestaurantScorer
	restaurantRepo repositories.RestaurantRepositoryInterface
	tagRepo        repositories.TagRepositoryInterface
	vectorRepo     repositories.RestaurantVectorRepositoryInterface
	runRepo        repositories.ScoringRunRepositoryInterface
	cfg            config.ScoringConfig

	running sync.Mutex

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewBatchRunner(
	scorer RestaurantScorer,
	restaurantRepo repositories.RestaurantRepositoryInterface,
	tagRepo repositories.TagRepositoryInterface,
	vectorRepo repositories.RestaurantVectorRepositoryInterface,
	runRepo repositories.ScoringRunRepositoryInterface,
	cfg config.ScoringConfig,
) *BatchRunner {
	ctx, cancel := context.WithCancel(context.Background())
	return &BatchRunner{
		scorer:         scorer,
		restaurantRepo: restaurantRepo,
		tagRepo:        tagRepo,
		vectorRepo:     vectorRepo,
		runRepo:        runRepo,
		cfg:            cfg,
		baseCtx:        ctx,
		cancel:         cancel,
	}
}

// Run scores the named dimension, or every configured dimension for "all",
// and blocks until done. Cancelling ctx lets the in-flight page finish and
// then stops with state CANCELLED. The error is non-nil only for runs that
// ended FATAL or could not start.
func (b *BatchRunner) Run(ctx context.Context, dimension string) ([]RunSummary, error) {
	dims, err := b.cfg.Select(dimension)
	if err != nil {
		return nil, err
	}
	if !b.running.TryLock() {
		return nil, utils.ErrRunInProgress
	}
	defer b.running.Unlock()

	return b.runAll(ctx, dims)
}

func (b *BatchRunner) Start(dimension string) error {
	dims, err := b.cfg.Select(dimension)
	if err != nil {
		return err
	}
	if !b.running.TryLock() {
		return utils.ErrRunInProgress
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer b.running.Unlock()
		if _, err := b.runAll(b.baseCtx, dims); err != nil {
			logging.Error().Err(err).Msg("background scoring run failed")
		}
	}()
	return nil
}

// Stop cancels a background run and waits for its in-flight page.
func (b *BatchRunner) Stop() {
	b.cancel()
	b.wg.Wait()
}

func (b *BatchRunner) ListRuns(ctx context.Context, limit int) ([]response_models.ScoringRunResponse, error) {
	if limit < 1 || limit > 100 {
		return nil, utils.ErrInvalidPageSize
	}
	runs, err := b.runRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", utils.ErrDatabaseError, err)
	}

	out := make([]response_models.ScoringRunResponse, 0, len(runs))
	for _, r := range runs {
		resp := response_models.ScoringRunResponse{
			ID:         r.ID.String(),
			Dimension:  r.Dimension,
			State:      r.State,
			Succeeded:  r.Succeeded,
			Skipped:    r.Skipped,
			Failed:     r.Failed,
			StartedAt:  r.StartedAt,
			FinishedAt: r.FinishedAt,
			Error:      r.Error,
		}
		for _, f := range r.Failures {
			resp.Failures = append(resp.Failures, response_models.RunFailureEntry{RestaurantID: f.RestaurantID, Error: f.Error})
		}
		out = append(out, resp)
	}
	return out, nil
}

func (b *BatchRunner) runAll(ctx context.Context, dims []config.Dimension) ([]RunSummary, error) {
	var (
		summaries []RunSummary
		errs      []error
	)
	for _, dim := range dims {
		if ctx.Err() != nil {
			break
		}
		summary, err := b.runDimension(ctx, dim)
		summaries = append(summaries, summary)
		if err != nil {
			errs = append(errs, fmt.Errorf("dimension %s: %w", dim.Name, err))
		}
	}
	return summaries, errors.Join(errs...)
}

type runStats struct {
	succeeded atomic.Int64
	skipped   atomic.Int64
	failed    atomic.Int64
	failures  []db_models.RunFailure
}

func (b *BatchRunner) runDimension(ctx context.Context, dim config.Dimension) (RunSummary, error) {
	started := time.Now()
	run := &db_models.ScoringRun{
		Dimension: dim.Name,
		State:     RunStateRunning,
		StartedAt: started.Unix(),
	}
	if err := b.runRepo.Create(ctx, run); err != nil {
		return RunSummary{Dimension: dim.Name, State: RunStateFatal}, fmt.Errorf("%w: record run: %w", utils.ErrDatabaseError, err)
	}

	log := logging.Ctx(ctx).With().
		Str("run_id", run.ID.String()).
		Str("dimension", dim.Name).
		Logger()
	log.Info().Str("category", dim.Category).Str("score_field", dim.ScoreField).Msg("scoring run started")

	stats := &runStats{}
	state, runErr := b.execute(ctx, dim, stats, &log)

	finished := time.Now()
	summary := RunSummary{
		RunID:     run.ID,
		Dimension: dim.Name,
		State:     state,
		Succeeded: int(stats.succeeded.Load()),
		Skipped:   int(stats.skipped.Load()),
		Failed:    int(stats.failed.Load()),
		Failures:  stats.failures,
		Duration:  finished.Sub(started),
	}

	run.State = state
	run.Succeeded = summary.Succeeded
	run.Skipped = summary.Skipped
	run.Failed = summary.Failed
	run.Failures = stats.failures
	run.FinishedAt = finished.Unix()
	if runErr != nil {
		run.Error = runErr.Error()
	}
	if err := b.runRepo.Save(context.WithoutCancel(ctx), run); err != nil {
		log.Error().Err(err).Msg("failed to record scoring run")
	}

	metrics.ScoringRunDuration.WithLabelValues(dim.Name, state).Observe(summary.Duration.Seconds())

	event := log.Info()
	if runErr != nil {
		event = log.Error().Err(runErr)
	}
	event.Str("state", state).
		Int("succeeded", summary.Succeeded).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Dur("duration", summary.Duration).
		Msg("scoring run finished")

	return summary, runErr
}

func (b *BatchRunner) execute(ctx context.Context, dim config.Dimension, stats *runStats, log *zerolog.Logger) (string, error) {
	ideal, err := b.preflight(ctx, dim)
	if err != nil {
		if ctx.Err() != nil {
			return RunStateCancelled, nil
		}
		return RunStateFatal, err
	}

	after := uuid.Nil
	for page := 1; ; page++ {
		if ctx.Err() != nil {
			log.Warn().Int("page", page).Msg("scoring run cancelled")
			return RunStateCancelled, nil
		}

		ids, err := b.restaurantRepo.ListPage(ctx, after, b.cfg.PageSize)
		if err != nil {
			if ctx.Err() != nil {
				return RunStateCancelled, nil
			}
			return RunStateFatal, fmt.Errorf("%w: fetch page %d: %w", utils.ErrDatabaseError, page, err)
		}
		if len(ids) == 0 {
			return RunStateDone, nil
		}

		// a started page always finishes, even if ctx is cancelled meanwhile
		b.processPage(context.WithoutCancel(ctx), dim, ideal, ids, stats)
		log.Debug().Int("page", page).Int("size", len(ids)).Msg("page processed")

		if len(ids) < b.cfg.PageSize {
			return RunStateDone, nil
		}
		after = ids[len(ids)-1]
	}
}

// preflight rejects runs that could only produce garbage.
func (b *BatchRunner) preflight(ctx context.Context, dim config.Dimension) (vectormath.Vector, error) {
	if _, ok := db_models.ScoreFields[dim.ScoreField]; !ok {
		return nil, fmt.Errorf("%w: %s", utils.ErrUnknownScoreField, dim.ScoreField)
	}

	ok, err := b.tagRepo.CategoryExists(ctx, dim.Category)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", utils.ErrDatabaseError, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", utils.ErrCategoryNotFound, dim.Category)
	}

	ideal, err := b.scorer.ComputeIdealVector(ctx, dim.ReferenceTags)
	if err != nil {
		return nil, fmt.Errorf("ideal vector: %w", err)
	}
	return ideal, nil
}

func (b *BatchRunner) processPage(ctx context.Context, dim config.Dimension, ideal vectormath.Vector, ids []uuid.UUID, stats *runStats) {
	// each worker writes only its own slot
	errs := make([]error, len(ids))

	g := new(errgroup.Group)
	g.SetLimit(b.cfg.Concurrency)
	for i, id := range ids {
		g.Go(func() error {
			errs[i] = b.scoreOne(ctx, dim, ideal, id, stats)
			return nil
		})
	}
	_ = g.Wait()

	for i, err := range errs {
		if err != nil && len(stats.failures) < maxRecordedFailures {
			stats.failures = append(stats.failures, db_models.RunFailure{
				RestaurantID: ids[i].String(),
				Error:        err.Error(),
			})
		}
	}
}

func (b *BatchRunner) scoreOne(ctx context.Context, dim config.Dimension, ideal vectormath.Vector, id uuid.UUID, stats *runStats) error {
	ev, err := b.scorer.Evaluate(ctx, id, dim.Category, ideal)
	if err == nil {
		err = b.persist(ctx, dim, id, ev)
	}
	if err != nil {
		stats.failed.Add(1)
		metrics.RestaurantsScored.WithLabelValues(dim.Name, metrics.OutcomeFailed).Inc()
		logging.Error().
			Err(err).
			Str("restaurant_id", id.String()).
			Str("dimension", dim.Name).
			Str("error_kind", errorKind(err)).
			Msg("restaurant scoring failed")
		return err
	}

	if len(ev.TagValues) == 0 {
		stats.skipped.Add(1)
		metrics.RestaurantsScored.WithLabelValues(dim.Name, metrics.OutcomeSkipped).Inc()
		return nil
	}
	stats.succeeded.Add(1)
	metrics.RestaurantsScored.WithLabelValues(dim.Name, metrics.OutcomeSucceeded).Inc()
	return nil
}

func (b *BatchRunner) persist(ctx context.Context, dim config.Dimension, id uuid.UUID, ev Evaluation) error {
	if err := b.restaurantRepo.UpdateScore(ctx, id, dim.ScoreField, ev.Score); err != nil {
		return err
	}

	if len(ev.TagValues) == 0 {
		return b.vectorRepo.Delete(ctx, id, dim.Category)
	}
	return b.vectorRepo.Upsert(ctx, db_models.RestaurantVector{
		RestaurantID: id,
		Category:     dim.Category,
		Model:        b.scorer.Model(),
		TagValues:    pq.StringArray(ev.TagValues),
		Embedding:    pgvector.NewVector(ev.Vector.Float32()),
	})
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, utils.ErrProviderRejected):
		return metrics.OutcomeRejected
	case errors.Is(err, utils.ErrProviderTransient):
		return metrics.OutcomeTransient
	case errors.Is(err, utils.ErrDimensionMismatch):
		return "dimension_mismatch"
	case errors.Is(err, utils.ErrRestaurantNotFound):
		return "not_found"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "internal"
	}
}
