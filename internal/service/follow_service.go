package service

import (
	"context"

	"foodconnect/internal/models"
	"foodconnect/internal/repository"
)

// FollowService manages follow relationships between users.
type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
}

// NewFollowService returns a new FollowService.
func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository) *FollowService {
	return &FollowService{followRepo: followRepo, userRepo: userRepo}
}

// Follow makes follower follow followed. Following yourself is rejected;
// following someone twice is a no-op.
func (s *FollowService) Follow(ctx context.Context, followerID, followedID uint) error {
	if followerID == followedID {
		return models.NewValidationError("You cannot follow yourself")
	}
	// Verifies the target exists; GetByID returns NotFound otherwise.
	if _, err := s.userRepo.GetByID(ctx, followedID); err != nil {
		return err
	}
	_, err := s.followRepo.Follow(ctx, followerID, followedID)
	return err
}

// Unfollow removes the follow edge if present.
func (s *FollowService) Unfollow(ctx context.Context, followerID, followedID uint) error {
	_, err := s.followRepo.Unfollow(ctx, followerID, followedID)
	return err
}

// IsFollowing reports whether follower follows followed.
func (s *FollowService) IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error) {
	return s.followRepo.IsFollowing(ctx, followerID, followedID)
}

// Followers returns a page of users that follow userID.
func (s *FollowService) Followers(ctx context.Context, userID uint, limit, offset int) ([]models.UserInfo, error) {
	limit, offset = normalizePage(limit, offset)
	users, err := s.followRepo.GetFollowers(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return toUserInfos(users), nil
}

// Following returns a page of users that userID follows.
func (s *FollowService) Following(ctx context.Context, userID uint, limit, offset int) ([]models.UserInfo, error) {
	limit, offset = normalizePage(limit, offset)
	users, err := s.followRepo.GetFollowing(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return toUserInfos(users), nil
}

func toUserInfos(users []models.User) []models.UserInfo {
	infos := make([]models.UserInfo, 0, len(users))
	for i := range users {
		infos = append(infos, toUserInfo(&users[i]))
	}
	return infos
}
