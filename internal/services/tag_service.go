package services

import (
	"context"
	"fmt"
	"strings"

	"dishdash/internal/models/db_models"
	"dishdash/internal/models/request_models"
	"dishdash/internal/models/response_models"
	"dishdash/internal/repositories"
	"dishdash/pkg/logging"
	"dishdash/pkg/utils"

	"github.com/google/uuid"
)

type TagServiceInterface interface {
	GetAllTags(ctx context.Context, page int, pageSize int) ([]response_models.TagResponse, error)
	GetRestaurantTags(ctx context.Context, restaurantID uuid.UUID, category string) ([]response_models.TagResponse, error)
	// AttachImageTags interns classifier output as vision tags and links them to the image.
	AttachImageTags(ctx context.Context, imageID uuid.UUID, tags []request_models.ImageTagRequest) ([]response_models.TagResponse, error)
}

type TagService struct {
	tagRepo        repositories.TagRepositoryInterface
	restaurantRepo repositories.RestaurantRepositoryInterface
	aggregator     TagAggregatorInterface
}

func NewTagService(
	tagRepo repositories.TagRepositoryInterface,
	restaurantRepo repositories.RestaurantRepositoryInterface,
	aggregator TagAggregatorInterface,
) TagServiceInterface {
	return &TagService{
		tagRepo:        tagRepo,
		restaurantRepo: restaurantRepo,
		aggregator:     aggregator,
	}
}

func (t *TagService) GetAllTags(ctx context.Context, page int, pageSize int) ([]response_models.TagResponse, error) {
	if page < 1 {
		return nil, utils.ErrInvalidPage
	}
	if pageSize < 1 || pageSize > 100 {
		return nil, utils.ErrInvalidPageSize
	}

	tags, err := t.tagRepo.GetAllTags(ctx, page, pageSize)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("failed to list tags")
		return nil, utils.ErrDatabaseError
	}

	// Handle empty result
	if len(tags) == 0 {
		return []response_models.TagResponse{}, utils.ErrTagNotFound
	}

	return toTagResponses(tags), nil
}

func (t *TagService) GetRestaurantTags(ctx context.Context, restaurantID uuid.UUID, category string) ([]response_models.TagResponse, error) {
	tags, err := t.aggregator.AggregateTags(ctx, restaurantID, category)
	if err != nil {
		return nil, err
	}
	return toTagResponses(tags), nil
}

func (t *TagService) AttachImageTags(ctx context.Context, imageID uuid.UUID, input []request_models.ImageTagRequest) ([]response_models.TagResponse, error) {
	if len(input) == 0 {
		return nil, fmt.Errorf("%w: no tags given", utils.ErrInvalidInput)
	}

	exists, err := t.restaurantRepo.ImageExists(ctx, imageID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", utils.ErrDatabaseError, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", utils.ErrImageNotFound, imageID)
	}

	// categories are data, but a tag may only use one that is registered
	checked := map[string]bool{}
	for _, in := range input {
		category := normalizeTagText(in.Category)
		if checked[category] {
			continue
		}
		ok, err := t.tagRepo.CategoryExists(ctx, category)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", utils.ErrDatabaseError, err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s", utils.ErrCategoryNotFound, category)
		}
		checked[category] = true
	}

	var tags []db_models.Tag
	seen := map[uuid.UUID]bool{}
	for _, in := range input {
		value := normalizeTagText(in.Value)
		if value == "" {
			return nil, fmt.Errorf("%w: empty tag value", utils.ErrInvalidInput)
		}
		tag, err := t.tagRepo.GetOrCreateTag(ctx, value, normalizeTagText(in.Category), db_models.TagSourceVision)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", utils.ErrDatabaseError, err)
		}
		if !seen[tag.ID] {
			seen[tag.ID] = true
			tags = append(tags, *tag)
		}
	}

	if err := t.tagRepo.AttachToImage(ctx, imageID, tags); err != nil {
		return nil, fmt.Errorf("%w: %w", utils.ErrDatabaseError, err)
	}

	logging.Ctx(ctx).Info().
		Str("image_id", imageID.String()).
		Int("tags", len(tags)).
		Msg("attached image tags")

	return toTagResponses(tags), nil
}

func normalizeTagText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func toTagResponses(tags []db_models.Tag) []response_models.TagResponse {
	out := make([]response_models.TagResponse, 0, len(tags))
	for _, tag := range tags {
		out = append(out, response_models.TagResponse{
			ID:       tag.ID.String(),
			Value:    tag.Value,
			Category: tag.Category,
			Source:   tag.Source,
		})
	}
	return out
}
