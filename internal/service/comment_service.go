package service

import (
	"context"
	"strings"

	"foodconnect/internal/models"
	"foodconnect/internal/repository"
)

// CommentService manages comments on posts.
type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	isAdmin     func(ctx context.Context, userID uint) (bool, error)
}

// CreateCommentInput carries a new comment.
type CreateCommentInput struct {
	UserID  uint
	PostID  uint
	Content string
}

// NewCommentService returns a new CommentService.
func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *CommentService {
	return &CommentService{commentRepo: commentRepo, postRepo: postRepo, isAdmin: isAdmin}
}

// CreateComment adds a comment to an existing post.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.CommentInfo, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewValidationError("Comment content is required")
	}
	if len(content) > models.MaxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 500 characters)")
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, models.NewNotFoundError("Post", in.PostID)
	}

	comment := &models.Comment{
		Content: content,
		UserID:  in.UserID,
		PostID:  in.PostID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return s.GetComment(ctx, comment.ID)
}

// GetComment returns a single comment.
func (s *CommentService) GetComment(ctx context.Context, id uint) (*models.CommentInfo, error) {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, models.NewNotFoundError("Comment", id)
	}
	info := toCommentInfo(comment)
	return &info, nil
}

// ListComments returns a page of a post's comments, oldest first.
func (s *CommentService) ListComments(ctx context.Context, postID uint, limit, offset int) ([]models.CommentInfo, error) {
	limit, offset = normalizePage(limit, offset)
	comments, err := s.commentRepo.GetByPostID(ctx, postID, limit, offset)
	if err != nil {
		return nil, err
	}
	infos := make([]models.CommentInfo, 0, len(comments))
	for i := range comments {
		infos = append(infos, toCommentInfo(&comments[i]))
	}
	return infos, nil
}

// ListUserComments returns a page of a user's comments, newest first.
func (s *CommentService) ListUserComments(ctx context.Context, userID uint, limit, offset int) ([]models.CommentInfo, error) {
	limit, offset = normalizePage(limit, offset)
	comments, err := s.commentRepo.GetByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	infos := make([]models.CommentInfo, 0, len(comments))
	for i := range comments {
		infos = append(infos, toCommentInfo(&comments[i]))
	}
	return infos, nil
}

// UpdateComment replaces a comment's content. Only the author may edit.
func (s *CommentService) UpdateComment(ctx context.Context, userID, commentID uint, content string) (*models.CommentInfo, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, models.NewValidationError("Comment content is required")
	}
	if len(content) > models.MaxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 500 characters)")
	}

	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, models.NewNotFoundError("Comment", commentID)
	}
	if comment.UserID != userID {
		return nil, models.NewUnauthorizedError("You do not have permission to edit this comment")
	}

	if err := s.commentRepo.UpdateContent(ctx, commentID, content); err != nil {
		return nil, err
	}
	return s.GetComment(ctx, commentID)
}

// DeleteComment removes a comment. Only the comment's author or an admin may
// delete it.
func (s *CommentService) DeleteComment(ctx context.Context, userID, commentID uint) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment == nil {
		return models.NewNotFoundError("Comment", commentID)
	}
	if comment.UserID != userID {
		admin := false
		if s.isAdmin != nil {
			admin, err = s.isAdmin(ctx, userID)
			if err != nil {
				return err
			}
		}
		if !admin {
			return models.NewUnauthorizedError("You do not have permission to delete this comment")
		}
	}
	return s.commentRepo.Delete(ctx, commentID)
}

func toCommentInfo(comment *models.Comment) models.CommentInfo {
	return models.CommentInfo{
		ID:        comment.ID,
		Content:   comment.Content,
		UserID:    comment.UserID,
		Username:  comment.User.Username,
		PostID:    comment.PostID,
		CreatedAt: comment.CreatedAt,
	}
}
