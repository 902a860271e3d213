package repository

import (
	"context"

	"foodconnect/internal/cache"
	"foodconnect/internal/models"

	"gorm.io/gorm"
)

// LikeRepository defines persistence operations for likes.
type LikeRepository interface {
	IsLiked(ctx context.Context, userID, postID uint) (bool, error)
	Like(ctx context.Context, userID, postID uint) (bool, error)
	Unlike(ctx context.Context, userID, postID uint) (bool, error)
	CountByPostID(ctx context.Context, postID uint) (int64, error)
	CountGivenByAuthor(ctx context.Context, userID uint) (map[uint]int64, error)
	DeleteByPostID(ctx context.Context, postID uint) error
	DeleteByUserID(ctx context.Context, userID uint) error
	WithTx(tx *gorm.DB) LikeRepository
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository returns a new LikeRepository implementation.
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) WithTx(tx *gorm.DB) LikeRepository {
	return &likeRepository{db: tx}
}

func (r *likeRepository) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// Like inserts the like row if absent. Returns true when a row was inserted,
// false when the like already existed.
func (r *likeRepository) Like(ctx context.Context, userID, postID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		FirstOrCreate(&models.Like{UserID: userID, PostID: postID})
	if result.Error != nil {
		if isUniqueConstraintError(result.Error) {
			return false, nil
		}
		return false, models.NewInternalError(result.Error)
	}
	inserted := result.RowsAffected > 0
	if inserted {
		cache.InvalidatePost(ctx, postID)
	}
	return inserted, nil
}

// Unlike removes the like row. Returns true when a row was removed.
func (r *likeRepository) Unlike(ctx context.Context, userID, postID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Like{})
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	removed := result.RowsAffected > 0
	if removed {
		cache.InvalidatePost(ctx, postID)
	}
	return removed, nil
}

func (r *likeRepository) CountByPostID(ctx context.Context, postID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("post_id = ?", postID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// CountGivenByAuthor groups the likes a user has given by the author of the
// liked post. Used to settle received-like counters when the liker is removed.
func (r *likeRepository) CountGivenByAuthor(ctx context.Context, userID uint) (map[uint]int64, error) {
	type row struct {
		AuthorID uint
		Cnt      int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Select("posts.user_id AS author_id, COUNT(*) AS cnt").
		Joins("JOIN posts ON posts.id = likes.post_id").
		Where("likes.user_id = ?", userID).
		Group("posts.user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.AuthorID] = r.Cnt
	}
	return counts, nil
}

func (r *likeRepository) DeleteByPostID(ctx context.Context, postID uint) error {
	if err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Delete(&models.Like{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *likeRepository) DeleteByUserID(ctx context.Context, userID uint) error {
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.Like{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
