package repository

import (
	"context"

	"foodconnect/internal/models"

	"gorm.io/gorm"
)

// PostTagRepository defines persistence operations for post-tag links.
type PostTagRepository interface {
	GetByPostID(ctx context.Context, postID uint) ([]models.PostTag, error)
	CreateMany(ctx context.Context, links []models.PostTag) error
	DeleteByPostID(ctx context.Context, postID uint) error
	WithTx(tx *gorm.DB) PostTagRepository
}

type postTagRepository struct {
	db *gorm.DB
}

// NewPostTagRepository returns a new PostTagRepository implementation.
func NewPostTagRepository(db *gorm.DB) PostTagRepository {
	return &postTagRepository{db: db}
}

func (r *postTagRepository) WithTx(tx *gorm.DB) PostTagRepository {
	return &postTagRepository{db: tx}
}

func (r *postTagRepository) GetByPostID(ctx context.Context, postID uint) ([]models.PostTag, error) {
	var links []models.PostTag
	if err := r.db.WithContext(ctx).
		Preload("Tag").
		Where("post_id = ?", postID).
		Find(&links).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return links, nil
}

func (r *postTagRepository) CreateMany(ctx context.Context, links []models.PostTag) error {
	if len(links) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&links).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postTagRepository) DeleteByPostID(ctx context.Context, postID uint) error {
	if err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Delete(&models.PostTag{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
