package repository

import (
	"context"

	"foodconnect/internal/models"

	"gorm.io/gorm"
)

// MediaRepository defines persistence operations for post images.
type MediaRepository interface {
	GetByPostID(ctx context.Context, postID uint) ([]models.Media, error)
	CreateMany(ctx context.Context, media []models.Media) error
	DeleteByURLs(ctx context.Context, postID uint, urls []string) error
	DeleteByPostID(ctx context.Context, postID uint) error
	WithTx(tx *gorm.DB) MediaRepository
}

type mediaRepository struct {
	db *gorm.DB
}

// NewMediaRepository returns a new MediaRepository implementation.
func NewMediaRepository(db *gorm.DB) MediaRepository {
	return &mediaRepository{db: db}
}

func (r *mediaRepository) WithTx(tx *gorm.DB) MediaRepository {
	return &mediaRepository{db: tx}
}

func (r *mediaRepository) GetByPostID(ctx context.Context, postID uint) ([]models.Media, error) {
	var media []models.Media
	if err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Find(&media).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return media, nil
}

func (r *mediaRepository) CreateMany(ctx context.Context, media []models.Media) error {
	if len(media) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&media).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *mediaRepository) DeleteByURLs(ctx context.Context, postID uint, urls []string) error {
	if len(urls) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).
		Where("post_id = ? AND url IN ?", postID, urls).
		Delete(&models.Media{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *mediaRepository) DeleteByPostID(ctx context.Context, postID uint) error {
	if err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Delete(&models.Media{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
