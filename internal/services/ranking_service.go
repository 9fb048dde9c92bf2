package services

import (
	"context"
	"fmt"

	"dishdash/internal/config"
	"dishdash/internal/models/db_models"
	"dishdash/internal/models/response_models"
	"dishdash/internal/repositories"
	"dishdash/pkg/utils"
	"dishdash/pkg/vectormath"

	"github.com/google/uuid"
)

type RankingServiceInterface interface {
	// RankByPreferences orders restaurants by the weighted sum of their scores.
	RankByPreferences(ctx context.Context, weights map[string]float64, restaurantIDs []uuid.UUID) ([]response_models.RankedRestaurantResponse, error)
	// RankBySimilarity orders restaurants by the affinity of their category
	// vector to the user's swipe-derived vector.
	RankBySimilarity(ctx context.Context, userID uuid.UUID, category string, restaurantIDs []uuid.UUID) ([]response_models.RankedRestaurantResponse, error)
}

type RankingService struct {
	restaurantRepo repositories.RestaurantRepositoryInterface
	vectorRepo     repositories.RestaurantVectorRepositoryInterface
	profiles       UserProfileServiceInterface
	model          string
	cfg            config.RankingConfig
}

func NewRankingService(
	restaurantRepo repositories.RestaurantRepositoryInterface,
	vectorRepo repositories.RestaurantVectorRepositoryInterface,
	profiles UserProfileServiceInterface,
	model string,
	cfg config.RankingConfig,
) RankingServiceInterface {
	return &RankingService{
		restaurantRepo: restaurantRepo,
		vectorRepo:     vectorRepo,
		profiles:       profiles,
		model:          model,
		cfg:            cfg,
	}
}

func (s *RankingService) RankByPreferences(ctx context.Context, weights map[string]float64, restaurantIDs []uuid.UUID) ([]response_models.RankedRestaurantResponse, error) {
	if err := ValidateWeights(weights, s.cfg.MaxWeight); err != nil {
		return nil, err
	}

	ids := uniqueIDs(restaurantIDs)
	restaurants, err := s.loadRestaurants(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]RankedItem, 0, len(ids))
	for _, id := range ids {
		byField := restaurants[id].Scores()
		scores := make(map[string]float64, len(weights))
		for name := range weights {
			// unknown names and missing scores both contribute nothing
			if v, ok := byField[s.cfg.Weights[name]]; ok {
				scores[name] = v
			}
		}
		items = append(items, RankedItem{RestaurantID: id, Score: WeightedSum(weights, scores)})
	}

	return toRankedResponse(RankStable(items)), nil
}

func (s *RankingService) RankBySimilarity(ctx context.Context, userID uuid.UUID, category string, restaurantIDs []uuid.UUID) ([]response_models.RankedRestaurantResponse, error) {
	ids := uniqueIDs(restaurantIDs)
	if _, err := s.loadRestaurants(ctx, ids); err != nil {
		return nil, err
	}

	user, err := s.profiles.BuildUserVector(ctx, userID, category)
	if err != nil {
		return nil, err
	}

	stored, err := s.vectorRepo.GetByRestaurants(ctx, ids, category)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", utils.ErrDatabaseError, err)
	}
	vectors := make(map[uuid.UUID]db_models.RestaurantVector, len(stored))
	for _, v := range stored {
		vectors[v.RestaurantID] = v
	}

	items := make([]RankedItem, 0, len(ids))
	for _, id := range ids {
		item := RankedItem{RestaurantID: id}
		if v, ok := vectors[id]; ok {
			if v.Model != s.model {
				return nil, fmt.Errorf("%w: restaurant %s was embedded with %s, current model is %s",
					utils.ErrDimensionMismatch, id, v.Model, s.model)
			}
			if item.Score, err = SimilarityScore(user, vectormath.FromFloat32(v.Embedding.Slice())); err != nil {
				return nil, err
			}
		}
		items = append(items, item)
	}

	return toRankedResponse(RankStable(items)), nil
}

func (s *RankingService) loadRestaurants(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*db_models.Restaurant, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no restaurants to rank", utils.ErrInvalidInput)
	}

	restaurants, err := s.restaurantRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", utils.ErrDatabaseError, err)
	}

	byID := make(map[uuid.UUID]*db_models.Restaurant, len(restaurants))
	for i := range restaurants {
		byID[restaurants[i].ID] = &restaurants[i]
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, fmt.Errorf("%w: %s", utils.ErrRestaurantNotFound, id)
		}
	}
	return byID, nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func toRankedResponse(items []RankedItem) []response_models.RankedRestaurantResponse {
	out := make([]response_models.RankedRestaurantResponse, len(items))
	for i, item := range items {
		out[i] = response_models.RankedRestaurantResponse{
			RestaurantID: item.RestaurantID.String(),
			Score:        item.Score,
			Rank:         i + 1,
		}
	}
	return out
}
