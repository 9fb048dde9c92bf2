package repositories

import (
	"context"
	"errors"

	"dishdash/internal/models/db_models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TagRepositoryInterface interface {
	GetAllTags(ctx context.Context, page int, pageSize int) ([]db_models.Tag, error)
	// AggregateTags returns the distinct tags of category reachable from any of
	// the restaurants directly, through their images or through their reviews.
	AggregateTags(ctx context.Context, restaurantIDs []uuid.UUID, category string) ([]db_models.Tag, error)
	GetOrCreateTag(ctx context.Context, value, category, source string) (*db_models.Tag, error)
	CategoryExists(ctx context.Context, category string) (bool, error)
	AttachToImage(ctx context.Context, imageID uuid.UUID, tags []db_models.Tag) error
}

func NewTagRepository(db *gorm.DB) TagRepositoryInterface {
	return &TagRepository{db: db}
}

type TagRepository struct {
	db *gorm.DB
}

func (t *TagRepository) GetAllTags(ctx context.Context, page int, pageSize int) ([]db_models.Tag, error) {
	var tags []db_models.Tag
	err := t.db.WithContext(ctx).Scopes(func(db *gorm.DB) *gorm.DB {
		offset := (page - 1) * pageSize
		return db.Offset(offset).Limit(pageSize)
	}).Order("category, value").Find(&tags).Error
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// The IN over a UNION collapses a tag reached by several paths into one row;
// identity is the tag id, never its text.
const aggregateTagsSQL = `
SELECT t.* FROM tags t
WHERE t.deleted_at IS NULL AND t.category = ? AND t.id IN (
	SELECT rt.tag_id FROM restaurant_tags rt
	WHERE rt.restaurant_id IN ?
	UNION
	SELECT it.tag_id FROM restaurant_image_tags it
	JOIN restaurant_images ri ON ri.id = it.restaurant_image_id
	WHERE ri.restaurant_id IN ? AND ri.deleted_at IS NULL
	UNION
	SELECT vt.tag_id FROM review_tags vt
	JOIN reviews rv ON rv.id = vt.review_id
	WHERE rv.restaurant_id IN ? AND rv.deleted_at IS NULL
)
ORDER BY t.value, t.id`

func (t *TagRepository) AggregateTags(ctx context.Context, restaurantIDs []uuid.UUID, category string) ([]db_models.Tag, error) {
	if len(restaurantIDs) == 0 {
		return []db_models.Tag{}, nil
	}
	ids := make([]string, len(restaurantIDs))
	for i, id := range restaurantIDs {
		ids[i] = id.String()
	}

	tags := []db_models.Tag{}
	err := t.db.WithContext(ctx).Raw(aggregateTagsSQL, category, ids, ids, ids).Scan(&tags).Error
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []db_models.Tag{}
	}
	return tags, nil
}

func (t *TagRepository) GetOrCreateTag(ctx context.Context, value, category, source string) (*db_models.Tag, error) {
	var tag db_models.Tag
	err := t.db.WithContext(ctx).
		Where(db_models.Tag{Value: value, Category: category}).
		Attrs(db_models.Tag{Source: source}).
		FirstOrCreate(&tag).Error
	if err == nil {
		return &tag, nil
	}

	// a concurrent writer may have created the same (value, category) first
	retry := t.db.WithContext(ctx).Where("value = ? AND category = ?", value, category).First(&tag).Error
	if retry != nil {
		return nil, err
	}
	return &tag, nil
}

func (t *TagRepository) CategoryExists(ctx context.Context, category string) (bool, error) {
	var c db_models.TagCategory
	err := t.db.WithContext(ctx).Where("name = ?", category).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (t *TagRepository) AttachToImage(ctx context.Context, imageID uuid.UUID, tags []db_models.Tag) error {
	if len(tags) == 0 {
		return nil
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		image := db_models.RestaurantImage{BaseModel: db_models.BaseModel{ID: imageID}}
		return tx.Model(&image).Association("Tags").Append(tags)
	})
}
