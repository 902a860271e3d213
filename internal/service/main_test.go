package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"foodconnect/internal/database"
	"foodconnect/internal/models"
	"foodconnect/internal/repository"
	"foodconnect/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testUploadFolder = "uploads"

// newTestDB opens a fresh in-memory sqlite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

// harness wires every service against one sqlite database and an in-memory
// file store, mirroring the production wiring in server.NewServerWithDeps.
type harness struct {
	db       *gorm.DB
	store    *testutil.MemoryStore
	users    *UserService
	posts    *PostService
	tags     *TagService
	comments *CommentService
	likes    *LikeService
	reports  *ReportService
	follows  *FollowService
	media    *MediaReconciler
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := newTestDB(t)
	store := testutil.NewMemoryStore()
	reconciler := NewMediaReconciler(store, testUploadFolder, 1<<20)

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	mediaRepo := repository.NewMediaRepository(db)
	postTagRepo := repository.NewPostTagRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	reportRepo := repository.NewReportRepository(db)
	followRepo := repository.NewFollowRepository(db)

	tagService := NewTagService(repository.NewTagRepository(db))
	var h harness
	isAdmin := func(ctx context.Context, userID uint) (bool, error) {
		return h.users.IsAdmin(ctx, userID)
	}
	postService := NewPostService(db, postRepo, mediaRepo, postTagRepo, commentRepo, likeRepo, reportRepo, userRepo, tagService, reconciler, isAdmin)
	userService := NewUserService(db, userRepo, postRepo, commentRepo, likeRepo, reportRepo, followRepo, postService, reconciler)

	h = harness{
		db:       db,
		store:    store,
		users:    userService,
		posts:    postService,
		tags:     tagService,
		comments: NewCommentService(commentRepo, postRepo, isAdmin),
		likes:    NewLikeService(db, likeRepo, postRepo, userRepo),
		reports:  NewReportService(reportRepo, postRepo),
		follows:  NewFollowService(followRepo, userRepo),
		media:    reconciler,
	}
	return &h
}

// createUser inserts an account directly, bypassing registration validation.
func (h *harness) createUser(t *testing.T, username string, role string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        fmt.Sprintf("%s@example.com", username),
		PasswordHash: "not-a-real-hash",
		Role:         role,
	}
	require.NoError(t, h.db.Create(user).Error)
	return user
}

// createPost creates a post through the service so images and tags go through
// the normal pipeline.
func (h *harness) createPost(t *testing.T, userID uint, title string, tagNames []string) *models.PostInfo {
	t.Helper()
	post, err := h.posts.CreatePost(context.Background(), CreatePostInput{
		UserID:      userID,
		Title:       title,
		Ingredients: "flour, water",
		Description: "mix and bake",
		TagNames:    tagNames,
	})
	require.NoError(t, err)
	return post
}

func (h *harness) count(t *testing.T, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := h.db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.ErrCodeValidation)
}

func assertNotFoundError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.ErrCodeNotFound)
}

func assertUnauthorizedError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.ErrCodeUnauthorized)
}
