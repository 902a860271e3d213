package service

import (
	"context"

	"foodconnect/internal/models"
	"foodconnect/internal/repository"

	"gorm.io/gorm"
)

// LikeService manages likes and keeps each author's received-like counter in
// step with the like rows.
type LikeService struct {
	db       *gorm.DB
	likeRepo repository.LikeRepository
	postRepo repository.PostRepository
	userRepo repository.UserRepository
}

// NewLikeService returns a new LikeService.
func NewLikeService(
	db *gorm.DB,
	likeRepo repository.LikeRepository,
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
) *LikeService {
	return &LikeService{db: db, likeRepo: likeRepo, postRepo: postRepo, userRepo: userRepo}
}

// Toggle flips the user's like on the post and returns whether the post is
// liked afterwards. The like row and the author's counter change in the same
// transaction.
func (s *LikeService) Toggle(ctx context.Context, userID, postID uint) (bool, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return false, err
	}
	if post == nil {
		return false, models.NewNotFoundError("Post", postID)
	}

	var likedNow bool
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		likeTx := s.likeRepo.WithTx(tx)
		userTx := s.userRepo.WithTx(tx)

		liked, err := likeTx.IsLiked(ctx, userID, postID)
		if err != nil {
			return err
		}

		if liked {
			removed, err := likeTx.Unlike(ctx, userID, postID)
			if err != nil {
				return err
			}
			if removed {
				if err := userTx.IncrementLikesReceived(ctx, post.UserID, -1); err != nil {
					return err
				}
			}
			likedNow = false
			return nil
		}

		inserted, err := likeTx.Like(ctx, userID, postID)
		if err != nil {
			return err
		}
		if inserted {
			if err := userTx.IncrementLikesReceived(ctx, post.UserID, 1); err != nil {
				return err
			}
		}
		likedNow = true
		return nil
	})
	if txErr != nil {
		return false, txErr
	}
	return likedNow, nil
}

// IsLiked reports whether the user currently likes the post.
func (s *LikeService) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	return s.likeRepo.IsLiked(ctx, userID, postID)
}

// Count returns the number of likes on the post.
func (s *LikeService) Count(ctx context.Context, postID uint) (int64, error) {
	return s.likeRepo.CountByPostID(ctx, postID)
}
