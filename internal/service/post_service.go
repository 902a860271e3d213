package service

import (
	"context"
	"log/slog"

	"foodconnect/internal/cache"
	"foodconnect/internal/middleware"
	"foodconnect/internal/models"
	"foodconnect/internal/observability"
	"foodconnect/internal/repository"
	"foodconnect/internal/storage"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

const (
	maxTitleLen       = 255
	maxIngredientsLen = 1000
	defaultPageSize   = 20
	maxPageSize       = 100
)

// PostService orchestrates the post lifecycle. Database mutations for a
// create, update, or delete run inside a single transaction; physical file
// deletions are collected during the transaction and executed only after it
// commits.
type PostService struct {
	db          *gorm.DB
	postRepo    repository.PostRepository
	mediaRepo   repository.MediaRepository
	postTagRepo repository.PostTagRepository
	commentRepo repository.CommentRepository
	likeRepo    repository.LikeRepository
	reportRepo  repository.ReportRepository
	userRepo    repository.UserRepository
	tags        *TagService
	media       *MediaReconciler
	isAdmin     func(ctx context.Context, userID uint) (bool, error)
}

// CreatePostInput carries everything needed to create a post.
type CreatePostInput struct {
	UserID      uint
	Title       string
	Ingredients string
	Description string
	Calories    *float64
	TagNames    []string
	ImageURLs   []string
	Uploads     []storage.FileUpload
}

// UpdatePostInput carries a full replacement of a post's editable state.
// KeepImageURLs lists the existing image URLs that survive the update; every
// stored URL not listed is removed.
type UpdatePostInput struct {
	UserID        uint
	PostID        uint
	Title         string
	Ingredients   string
	Description   string
	Calories      *float64
	TagNames      []string
	KeepImageURLs []string
	NewImageURLs  []string
	Uploads       []storage.FileUpload
}

// ListPostsInput controls pagination and viewer identity for list reads.
type ListPostsInput struct {
	Limit    int
	Offset   int
	ViewerID uint
}

// NewPostService returns a new PostService.
func NewPostService(
	db *gorm.DB,
	postRepo repository.PostRepository,
	mediaRepo repository.MediaRepository,
	postTagRepo repository.PostTagRepository,
	commentRepo repository.CommentRepository,
	likeRepo repository.LikeRepository,
	reportRepo repository.ReportRepository,
	userRepo repository.UserRepository,
	tags *TagService,
	media *MediaReconciler,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *PostService {
	return &PostService{
		db:          db,
		postRepo:    postRepo,
		mediaRepo:   mediaRepo,
		postTagRepo: postTagRepo,
		commentRepo: commentRepo,
		likeRepo:    likeRepo,
		reportRepo:  reportRepo,
		userRepo:    userRepo,
		tags:        tags,
		media:       media,
		isAdmin:     isAdmin,
	}
}

func validatePostFields(title, ingredients string, calories *float64) error {
	if title == "" {
		return models.NewValidationError("Title is required")
	}
	if len(title) > maxTitleLen {
		return models.NewValidationError("Title too long (max 255 characters)")
	}
	if ingredients == "" {
		return models.NewValidationError("Ingredients are required")
	}
	if len(ingredients) > maxIngredientsLen {
		return models.NewValidationError("Ingredients too long (max 1000 characters)")
	}
	if calories != nil && *calories < 0 {
		return models.NewValidationError("Calories must not be negative")
	}
	return nil
}

func caloriesOrZero(calories *float64) float64 {
	if calories == nil {
		return 0
	}
	return *calories
}

// CreatePost validates all inputs before any file or database write, saves
// the uploads, and creates the post row, its images, and its tag links in one
// transaction.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.PostInfo, error) {
	span, ctx := observability.NewSpan(ctx, "PostService.CreatePost")
	defer span.End()
	span.AddAttributes(attribute.Int("user_id", int(in.UserID)))

	if err := validatePostFields(in.Title, in.Ingredients, in.Calories); err != nil {
		return nil, err
	}
	if err := s.media.ValidateUploads(in.Uploads); err != nil {
		return nil, err
	}

	uploadedURLs, err := s.media.SaveUploads(in.Uploads)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	post := models.Post{
		Title:       in.Title,
		Ingredients: in.Ingredients,
		Description: in.Description,
		Calories:    caloriesOrZero(in.Calories),
		UserID:      in.UserID,
	}

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.postRepo.WithTx(tx).Create(ctx, &post); err != nil {
			return err
		}

		allURLs := NormalizeImageURLs(append(append([]string{}, uploadedURLs...), in.ImageURLs...))
		media := make([]models.Media, 0, len(allURLs))
		for _, url := range allURLs {
			media = append(media, models.Media{URL: url, PostID: post.ID})
		}
		if err := s.mediaRepo.WithTx(tx).CreateMany(ctx, media); err != nil {
			return err
		}

		if len(NormalizeTagNames(in.TagNames)) > 0 {
			resolved, err := s.tags.WithTx(tx).ResolveOrCreate(ctx, in.TagNames)
			if err != nil {
				return err
			}
			links := make([]models.PostTag, 0, len(resolved))
			for _, t := range resolved {
				links = append(links, models.PostTag{PostID: post.ID, TagID: t.ID})
			}
			if err := s.postTagRepo.WithTx(tx).CreateMany(ctx, links); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		span.SetError(txErr)
		// The uploaded files stay on disk; a periodic sweep can reclaim them.
		middleware.Logger.WarnContext(ctx, "Post creation rolled back after files were saved",
			slog.Int("orphaned_files", len(uploadedURLs)),
			slog.String("error", txErr.Error()),
		)
		return nil, txErr
	}

	cache.InvalidatePostsList(ctx)
	return s.GetPost(ctx, post.ID, in.UserID)
}

// GetPost returns the post as seen by viewerID, or nil when it does not
// exist. A viewerID of zero means an anonymous read.
func (s *PostService) GetPost(ctx context.Context, postID, viewerID uint) (*models.PostInfo, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, nil
	}
	info := toPostInfo(post, viewerID)
	return &info, nil
}

// IsOwner reports whether the post exists and belongs to userID. It is a
// plain predicate for boundary checks, not an authorization decision.
func (s *PostService) IsOwner(ctx context.Context, userID, postID uint) (bool, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return false, err
	}
	return post != nil && post.UserID == userID, nil
}

// ListPosts returns a page of posts, newest first. Anonymous first-page reads
// go through the cache.
func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) ([]models.PostInfo, error) {
	limit, offset := normalizePage(in.Limit, in.Offset)

	if in.ViewerID == 0 && offset == 0 {
		var infos []models.PostInfo
		err := cache.Aside(ctx, cache.PostsListKey(), &infos, cache.PostsListTTL, func() error {
			posts, err := s.postRepo.List(ctx, limit, offset)
			if err != nil {
				return err
			}
			infos = toPostInfos(posts, 0)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return infos, nil
	}

	posts, err := s.postRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return toPostInfos(posts, in.ViewerID), nil
}

// ListPostsByUser returns a page of one author's posts, newest first.
func (s *PostService) ListPostsByUser(ctx context.Context, authorID uint, in ListPostsInput) ([]models.PostInfo, error) {
	limit, offset := normalizePage(in.Limit, in.Offset)
	posts, err := s.postRepo.GetByUserID(ctx, authorID, limit, offset)
	if err != nil {
		return nil, err
	}
	return toPostInfos(posts, in.ViewerID), nil
}

// SearchPosts returns posts whose title or description matches the query.
func (s *PostService) SearchPosts(ctx context.Context, query string, in ListPostsInput) ([]models.PostInfo, error) {
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	limit, offset := normalizePage(in.Limit, in.Offset)
	posts, err := s.postRepo.Search(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	return toPostInfos(posts, in.ViewerID), nil
}

// UpdatePost replaces the post's editable fields, its tag links, and its
// image set in one transaction. Images dropped from the post are deleted from
// disk only after the transaction commits; tags left without any post link
// are removed inside it.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.PostInfo, error) {
	span, ctx := observability.NewSpan(ctx, "PostService.UpdatePost")
	defer span.End()
	span.AddAttributes(attribute.Int("post_id", int(in.PostID)))

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, models.NewNotFoundError("Post", in.PostID)
	}
	if err := s.authorize(ctx, in.UserID, post.UserID); err != nil {
		return nil, err
	}

	if err := validatePostFields(in.Title, in.Ingredients, in.Calories); err != nil {
		return nil, err
	}
	if err := s.media.ValidateUploads(in.Uploads); err != nil {
		return nil, err
	}

	uploadedURLs, err := s.media.SaveUploads(in.Uploads)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	storedURLs := make([]string, 0, len(post.Images))
	for _, img := range post.Images {
		storedURLs = append(storedURLs, img.URL)
	}
	diff := s.media.Reconcile(storedURLs, in.KeepImageURLs)

	previousTagIDs := make([]uint, 0, len(post.PostTags))
	for _, pt := range post.PostTags {
		previousTagIDs = append(previousTagIDs, pt.TagID)
	}

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post.Title = in.Title
		post.Ingredients = in.Ingredients
		post.Description = in.Description
		post.Calories = caloriesOrZero(in.Calories)
		if err := tx.WithContext(ctx).Model(&models.Post{}).
			Where("id = ?", post.ID).
			Updates(map[string]interface{}{
				"title":       post.Title,
				"ingredients": post.Ingredients,
				"description": post.Description,
				"calories":    post.Calories,
			}).Error; err != nil {
			return models.NewInternalError(err)
		}

		mediaTx := s.mediaRepo.WithTx(tx)
		if err := mediaTx.DeleteByURLs(ctx, post.ID, diff.RemoveURLs); err != nil {
			return err
		}
		kept := make(map[string]struct{}, len(diff.KeepURLs))
		for _, url := range diff.KeepURLs {
			kept[url] = struct{}{}
		}
		newURLs := NormalizeImageURLs(append(append([]string{}, uploadedURLs...), in.NewImageURLs...))
		added := make([]models.Media, 0, len(newURLs))
		for _, url := range newURLs {
			if _, dup := kept[url]; dup {
				continue
			}
			added = append(added, models.Media{URL: url, PostID: post.ID})
		}
		if err := mediaTx.CreateMany(ctx, added); err != nil {
			return err
		}

		postTagTx := s.postTagRepo.WithTx(tx)
		if err := postTagTx.DeleteByPostID(ctx, post.ID); err != nil {
			return err
		}
		tagsTx := s.tags.WithTx(tx)
		if len(NormalizeTagNames(in.TagNames)) > 0 {
			resolved, err := tagsTx.ResolveOrCreate(ctx, in.TagNames)
			if err != nil {
				return err
			}
			links := make([]models.PostTag, 0, len(resolved))
			for _, t := range resolved {
				links = append(links, models.PostTag{PostID: post.ID, TagID: t.ID})
			}
			if err := postTagTx.CreateMany(ctx, links); err != nil {
				return err
			}
		}

		// Tags the post used to carry may have lost their last link.
		for _, tagID := range previousTagIDs {
			if _, err := tagsTx.DeleteIfOrphan(ctx, tagID); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		span.SetError(txErr)
		middleware.Logger.WarnContext(ctx, "Post update rolled back after files were saved",
			slog.Int("orphaned_files", len(uploadedURLs)),
			slog.String("error", txErr.Error()),
		)
		return nil, txErr
	}

	s.media.DeleteFiles(diff.PendingDeletes)
	cache.InvalidatePost(ctx, post.ID)
	return s.GetPost(ctx, post.ID, in.UserID)
}

// DeletePost removes the post and everything attached to it. Returns false
// without error when the post does not exist. Physical image files are
// removed only after the transaction commits.
func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) (bool, error) {
	span, ctx := observability.NewSpan(ctx, "PostService.DeletePost")
	defer span.End()
	span.AddAttributes(attribute.Int("post_id", int(postID)))

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return false, err
	}
	if post == nil {
		return false, nil
	}
	if err := s.authorize(ctx, userID, post.UserID); err != nil {
		return false, err
	}

	var pendingDeletes []string
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		pendingDeletes, err = s.deletePostTx(ctx, tx, post)
		return err
	})
	if txErr != nil {
		span.SetError(txErr)
		return false, txErr
	}

	s.media.DeleteFiles(pendingDeletes)
	cache.InvalidatePost(ctx, postID)
	return true, nil
}

// deletePostTx removes the post and its comments, likes, reports, images, and
// tag links inside tx. It returns the managed file paths to delete after
// commit. Tags orphaned by the unlink are removed. The author's received-like
// counter is decremented by the number of likes the post carried.
func (s *PostService) deletePostTx(ctx context.Context, tx *gorm.DB, post *models.Post) ([]string, error) {
	if err := s.commentRepo.WithTx(tx).DeleteByPostID(ctx, post.ID); err != nil {
		return nil, err
	}

	likeCount := len(post.Likes)
	if err := s.likeRepo.WithTx(tx).DeleteByPostID(ctx, post.ID); err != nil {
		return nil, err
	}
	if likeCount > 0 {
		if err := s.userRepo.WithTx(tx).IncrementLikesReceived(ctx, post.UserID, -likeCount); err != nil {
			return nil, err
		}
	}

	if err := s.reportRepo.WithTx(tx).DeleteByPostID(ctx, post.ID); err != nil {
		return nil, err
	}

	var pendingDeletes []string
	for _, img := range post.Images {
		if s.media.IsManagedURL(img.URL) {
			pendingDeletes = append(pendingDeletes, img.URL)
		}
	}
	if err := s.mediaRepo.WithTx(tx).DeleteByPostID(ctx, post.ID); err != nil {
		return nil, err
	}

	tagIDs := make([]uint, 0, len(post.PostTags))
	for _, pt := range post.PostTags {
		tagIDs = append(tagIDs, pt.TagID)
	}
	if err := s.postTagRepo.WithTx(tx).DeleteByPostID(ctx, post.ID); err != nil {
		return nil, err
	}

	if err := s.postRepo.WithTx(tx).Delete(ctx, post.ID); err != nil {
		return nil, err
	}

	tagsTx := s.tags.WithTx(tx)
	for _, tagID := range tagIDs {
		if _, err := tagsTx.DeleteIfOrphan(ctx, tagID); err != nil {
			return nil, err
		}
	}

	return pendingDeletes, nil
}

// authorize allows the owner or an admin.
func (s *PostService) authorize(ctx context.Context, actorID, ownerID uint) error {
	if actorID == ownerID {
		return nil
	}
	if s.isAdmin != nil {
		admin, err := s.isAdmin(ctx, actorID)
		if err != nil {
			return err
		}
		if admin {
			return nil
		}
	}
	return models.NewUnauthorizedError("You do not have permission to modify this post")
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// toPostInfo flattens the post aggregate into its read model. IsLikedByCurrentUser
// is viewer-relative and always false for anonymous reads.
func toPostInfo(post *models.Post, viewerID uint) models.PostInfo {
	imageURLs := make([]string, 0, len(post.Images))
	for _, img := range post.Images {
		imageURLs = append(imageURLs, img.URL)
	}

	tagNames := make([]string, 0, len(post.PostTags))
	for _, pt := range post.PostTags {
		if pt.Tag.Name != "" {
			tagNames = append(tagNames, pt.Tag.Name)
		}
	}

	liked := false
	if viewerID != 0 {
		for _, l := range post.Likes {
			if l.UserID == viewerID {
				liked = true
				break
			}
		}
	}

	return models.PostInfo{
		ID:                   post.ID,
		Title:                post.Title,
		Ingredients:          post.Ingredients,
		Description:          post.Description,
		Calories:             post.Calories,
		ImageURLs:            imageURLs,
		TagNames:             tagNames,
		Likes:                len(post.Likes),
		CreatedAt:            post.CreatedAt,
		UserID:               post.UserID,
		Username:             post.User.Username,
		IsLikedByCurrentUser: liked,
	}
}

func toPostInfos(posts []*models.Post, viewerID uint) []models.PostInfo {
	infos := make([]models.PostInfo, 0, len(posts))
	for _, p := range posts {
		infos = append(infos, toPostInfo(p, viewerID))
	}
	return infos
}
