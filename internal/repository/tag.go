package repository

import (
	"context"
	"errors"

	"foodconnect/internal/models"

	"gorm.io/gorm"
)

// TagRepository defines persistence operations for tags and post-tag links.
type TagRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Tag, error)
	GetByName(ctx context.Context, name string) (*models.Tag, error)
	GetByNames(ctx context.Context, names []string) ([]models.Tag, error)
	GetAll(ctx context.Context) ([]models.Tag, error)
	GetByPostID(ctx context.Context, postID uint) ([]models.Tag, error)
	CreateMany(ctx context.Context, tags []models.Tag) error
	Delete(ctx context.Context, id uint) error
	LinkCount(ctx context.Context, tagID uint) (int64, error)
	DeleteOrphans(ctx context.Context) (int64, error)
	WithTx(tx *gorm.DB) TagRepository
}

type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository returns a new TagRepository implementation.
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) WithTx(tx *gorm.DB) TagRepository {
	return &tagRepository{db: tx}
}

func (r *tagRepository) GetByID(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := readDB(r.db).WithContext(ctx).First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &tag, nil
}

func (r *tagRepository) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	var tag models.Tag
	if err := readDB(r.db).WithContext(ctx).Where("name = ?", name).First(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &tag, nil
}

func (r *tagRepository) GetByNames(ctx context.Context, names []string) ([]models.Tag, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var tags []models.Tag
	if err := r.db.WithContext(ctx).Where("name IN ?", names).Find(&tags).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return tags, nil
}

func (r *tagRepository) GetAll(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := readDB(r.db).WithContext(ctx).Order("name ASC").Find(&tags).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return tags, nil
}

func (r *tagRepository) GetByPostID(ctx context.Context, postID uint) ([]models.Tag, error) {
	var tags []models.Tag
	err := readDB(r.db).WithContext(ctx).
		Joins("JOIN post_tags ON post_tags.tag_id = tags.id").
		Where("post_tags.post_id = ?", postID).
		Order("tags.name ASC").
		Find(&tags).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return tags, nil
}

func (r *tagRepository) CreateMany(ctx context.Context, tags []models.Tag) error {
	if len(tags) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&tags).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("Tag already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *tagRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Tag{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *tagRepository) LinkCount(ctx context.Context, tagID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.PostTag{}).
		Where("tag_id = ?", tagID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// DeleteOrphans removes every tag that no post links to and returns the
// number of rows removed.
func (r *tagRepository) DeleteOrphans(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Exec(
		`DELETE FROM tags WHERE id NOT IN (SELECT tag_id FROM post_tags)`,
	)
	if result.Error != nil {
		return 0, models.NewInternalError(result.Error)
	}
	return result.RowsAffected, nil
}
