package service

import (
	"context"
	"errors"
	"testing"

	"foodconnect/internal/models"
	"foodconnect/internal/repository"
	"foodconnect/internal/storage"
	"foodconnect/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func float64Ptr(v float64) *float64 { return &v }

func TestCreatePost(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	author := h.createUser(t, "cook", models.RoleUser)

	post, err := h.posts.CreatePost(ctx, CreatePostInput{
		UserID:      author.ID,
		Title:       "Sourdough Loaf",
		Ingredients: "flour, water, salt, starter",
		Description: "slow ferment overnight",
		Calories:    float64Ptr(250),
		TagNames:    []string{" Bread ", "BAKING", "bread"},
		ImageURLs:   []string{"https://cdn.example.com/loaf.jpg"},
		Uploads:     []storage.FileUpload{testutil.PNGUpload("crumb.png", 4, 4)},
	})
	require.NoError(t, err)

	assert.Equal(t, "Sourdough Loaf", post.Title)
	assert.Equal(t, float64(250), post.Calories)
	assert.Equal(t, author.ID, post.UserID)
	assert.Equal(t, author.Username, post.Username)
	assert.ElementsMatch(t, []string{"baking", "bread"}, post.TagNames)
	assert.Len(t, post.ImageURLs, 2)
	assert.Equal(t, 0, post.Likes)
	assert.False(t, post.IsLikedByCurrentUser)

	// One managed file on disk plus the external URL row.
	assert.Equal(t, 1, h.store.Count())
	assert.Equal(t, int64(2), h.count(t, &models.Media{}, "post_id = ?", post.ID))
	assert.Equal(t, int64(2), h.count(t, &models.PostTag{}, "post_id = ?", post.ID))
}

func TestCreatePost_NilCaloriesDefaultsToZero(t *testing.T) {
	h := newHarness(t)
	author := h.createUser(t, "zerocal", models.RoleUser)

	post := h.createPost(t, author.ID, "Water Soup", nil)
	assert.Equal(t, float64(0), post.Calories)
	assert.Empty(t, post.TagNames)
	assert.Empty(t, post.ImageURLs)
}

func TestCreatePost_Validation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	author := h.createUser(t, "strict", models.RoleUser)

	tests := []struct {
		name string
		in   CreatePostInput
	}{
		{
			name: "missing title",
			in:   CreatePostInput{UserID: author.ID},
		},
		{
			name: "title too long",
			in:   CreatePostInput{UserID: author.ID, Title: string(make([]byte, maxTitleLen+1))},
		},
		{
			name: "missing ingredients",
			in:   CreatePostInput{UserID: author.ID, Title: "ok"},
		},
		{
			name: "ingredients too long",
			in:   CreatePostInput{UserID: author.ID, Title: "ok", Ingredients: string(make([]byte, maxIngredientsLen+1))},
		},
		{
			name: "negative calories",
			in:   CreatePostInput{UserID: author.ID, Title: "ok", Ingredients: "rice", Calories: float64Ptr(-1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.posts.CreatePost(ctx, tt.in)
			assertValidationError(t, err)
		})
	}

	// No partial writes from any of the rejected inputs.
	assert.Equal(t, int64(0), h.count(t, &models.Post{}, ""))
	assert.Equal(t, 0, h.store.Count())
}

func TestCreatePost_BadUploadRejectedBeforeAnyWrite(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	author := h.createUser(t, "uploader", models.RoleUser)

	_, err := h.posts.CreatePost(ctx, CreatePostInput{
		UserID:      author.ID,
		Title:       "Half Baked",
		Ingredients: "flour",
		Uploads: []storage.FileUpload{
			testutil.PNGUpload("fine.png", 2, 2),
			{Filename: "malware.exe", ContentType: "application/x-msdownload", Content: []byte("x")},
		},
	})
	assertAppErrorCode(t, err, models.ErrCodeUnsupportedMedia)

	assert.Equal(t, int64(0), h.count(t, &models.Post{}, ""))
	assert.Equal(t, 0, h.store.Count())
}

func TestCreatePost_StoreFailureLeavesNoRows(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	author := h.createUser(t, "nodisk", models.RoleUser)
	h.store.SaveErr = errors.New("disk full")

	_, err := h.posts.CreatePost(ctx, CreatePostInput{
		UserID:      author.ID,
		Title:       "Doomed",
		Ingredients: "flour",
		Uploads:     []storage.FileUpload{testutil.PNGUpload("a.png", 2, 2)},
	})
	assertAppErrorCode(t, err, models.ErrCodeInternal)

	assert.Equal(t, int64(0), h.count(t, &models.Post{}, ""))
	assert.Equal(t, int64(0), h.count(t, &models.Media{}, ""))
}

func TestGetPost_MissingIsNil(t *testing.T) {
	h := newHarness(t)
	info, err := h.posts.GetPost(context.Background(), 9999, 0)
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestGetPost_ViewerRelativeLike(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	author := h.createUser(t, "poster", models.RoleUser)
	fan := h.createUser(t, "fan", models.RoleUser)
	post := h.createPost(t, author.ID, "Popular Dish", nil)

	liked, err := h.likes.Toggle(ctx, fan.ID, post.ID)
	require.NoError(t, err)
	require.True(t, liked)

	asFan, err := h.posts.GetPost(ctx, post.ID, fan.ID)
	require.NoError(t, err)
	assert.True(t, asFan.IsLikedByCurrentUser)
	assert.Equal(t, 1, asFan.Likes)

	asAuthor, err := h.posts.GetPost(ctx, post.ID, author.ID)
	require.NoError(t, err)
	assert.False(t, asAuthor.IsLikedByCurrentUser)
	assert.Equal(t, 1, asAuthor.Likes)

	anonymous, err := h.posts.GetPost(ctx, post.ID, 0)
	require.NoError(t, err)
	assert.False(t, anonymous.IsLikedByCurrentUser)
}

func TestListPosts_Pagination(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	author := h.createUser(t, "prolific", models.RoleUser)
	for i := 0; i < 5; i++ {
		h.createPost(t, author.ID, "Dish", nil)
	}

	page, err := h.posts.ListPosts(ctx, ListPostsInput{Limit: 2, Offset: 0, ViewerID: author.ID})
	require.NoError(t, err)
	assert.Len(t, page, 2)

	rest, err := h.posts.ListPosts(ctx, ListPostsInput{Limit: 10, Offset: 2, ViewerID: author.ID})
	require.NoError(t, err)
	assert.Len(t, rest, 3)
}

func TestSearchPosts(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	author := h.createUser(t, "searcher", models.RoleUser)
	h.createPost(t, author.ID, "Spicy Ramen", nil)
	h.createPost(t, author.ID, "Mild Curry", nil)

	found, err := h.posts.SearchPosts(ctx, "ramen", ListPostsInput{})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Spicy Ramen", found[0].Title)

	_, err = h.posts.SearchPosts(ctx, "", ListPostsInput{})
	assertValidationError(t, err)
}

func TestUpdatePost_ReconcilesImagesAndTags(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	author := h.createUser(t, "editor", models.RoleUser)

	created, err := h.posts.CreatePost(ctx, CreatePostInput{
		UserID:      author.ID,
		Title:       "First Draft",
		Ingredients: "rice",
		TagNames:    []string{"draft", "rice"},
		ImageURLs:   []string{"https://cdn.example.com/old.jpg"},
		Uploads:     []storage.FileUpload{testutil.PNGUpload("old.png", 2, 2)},
	})
	require.NoError(t, err)
	require.Len(t, created.ImageURLs, 2)

	var managedURL string
	for _, u := range created.ImageURLs {
		if h.media.IsManagedURL(u) {
			managedURL = u
		}
	}
	require.NotEmpty(t, managedURL)
	require.True(t, h.store.Exists(managedURL))

	updated, err := h.posts.UpdatePost(ctx, UpdatePostInput{
		UserID:        author.ID,
		PostID:        created.ID,
		Title:         "Final Recipe",
		Ingredients:   "rice, stock",
		Calories:      float64Ptr(420),
		TagNames:      []string{"rice", "dinner"},
		KeepImageURLs: []string{"https://cdn.example.com/old.jpg"},
		Uploads:       []storage.FileUpload{testutil.PNGUpload("new.png", 2, 2)},
	})
	require.NoError(t, err)

	assert.Equal(t, "Final Recipe", updated.Title)
	assert.Equal(t, float64(420), updated.Calories)
	assert.ElementsMatch(t, []string{"dinner", "rice"}, updated.TagNames)

	// The kept external URL survives, the dropped managed file is gone from
	// disk, and the new upload is present.
	assert.Contains(t, updated.ImageURLs, "https://cdn.example.com/old.jpg")
	assert.NotContains(t, updated.ImageURLs, managedURL)
	assert.False(t, h.store.Exists(managedURL))
	assert.Len(t, updated.ImageURLs, 2)

	// "draft" lost its last link and was removed; "rice" survived.
	assert.Equal(t, int64(0), h.count(t, &models.Tag{}, "name = ?", "draft"))
	assert.Equal(t, int64(1), h.count(t, &models.Tag{}, "name = ?", "rice"))
	assert.Equal(t, int64(1), h.count(t, &models.Tag{}, "name = ?", "dinner"))
}

func TestUpdatePost_Authorization(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	author := h.createUser(t, "owner", models.RoleUser)
	stranger := h.createUser(t, "stranger", models.RoleUser)
	admin := h.createUser(t, "moderator", models.RoleAdmin)
	post := h.createPost(t, author.ID, "Mine", nil)

	_, err := h.posts.UpdatePost(ctx, UpdatePostInput{
		UserID: stranger.ID,
		PostID: post.ID,
		Title:  "Hijacked",
	})
	assertUnauthorizedError(t, err)

	updated, err := h.posts.UpdatePost(ctx, UpdatePostInput{
		UserID: admin.ID,
		PostID: post.ID,
		Title:  "Moderated",
	})
	require.NoError(t, err)
	assert.Equal(t, "Moderated", updated.Title)
}

func TestDeletePost_CascadesEverything(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	author := h.createUser(t, "target", models.RoleUser)
	fan := h.createUser(t, "deleter-fan", models.RoleUser)

	created, err := h.posts.CreatePost(ctx, CreatePostInput{
		UserID:      author.ID,
		Title:       "Doomed Dish",
		Ingredients: "beans",
		TagNames:    []string{"doomed", "beans"},
		Uploads:     []storage.FileUpload{testutil.PNGUpload("dish.png", 2, 2)},
	})
	require.NoError(t, err)

	_, err = h.comments.CreateComment(ctx, CreateCommentInput{UserID: fan.ID, PostID: created.ID, Content: "looks great"})
	require.NoError(t, err)
	_, err = h.likes.Toggle(ctx, fan.ID, created.ID)
	require.NoError(t, err)
	_, err = h.reports.ReportPost(ctx, fan.ID, created.ID, "stolen recipe")
	require.NoError(t, err)

	var authorRow models.User
	require.NoError(t, h.db.First(&authorRow, author.ID).Error)
	require.Equal(t, 1, authorRow.TotalLikesReceived)

	removed, err := h.posts.DeletePost(ctx, author.ID, created.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	assert.Equal(t, int64(0), h.count(t, &models.Post{}, ""))
	assert.Equal(t, int64(0), h.count(t, &models.Comment{}, ""))
	assert.Equal(t, int64(0), h.count(t, &models.Like{}, ""))
	assert.Equal(t, int64(0), h.count(t, &models.Report{}, ""))
	assert.Equal(t, int64(0), h.count(t, &models.Media{}, ""))
	assert.Equal(t, int64(0), h.count(t, &models.PostTag{}, ""))
	assert.Equal(t, int64(0), h.count(t, &models.Tag{}, ""))
	assert.Equal(t, 0, h.store.Count())

	// The author's received-like counter returns to zero.
	require.NoError(t, h.db.First(&authorRow, author.ID).Error)
	assert.Equal(t, 0, authorRow.TotalLikesReceived)
}

func TestDeletePost_SharedTagSurvives(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	author := h.createUser(t, "sharer", models.RoleUser)

	doomed := h.createPost(t, author.ID, "Doomed", []string{"shared", "solo"})
	h.createPost(t, author.ID, "Keeper", []string{"shared"})

	removed, err := h.posts.DeletePost(ctx, author.ID, doomed.ID)
	require.NoError(t, err)
	require.True(t, removed)

	assert.Equal(t, int64(1), h.count(t, &models.Tag{}, "name = ?", "shared"))
	assert.Equal(t, int64(0), h.count(t, &models.Tag{}, "name = ?", "solo"))
}

func TestDeletePost_MissingReturnsFalse(t *testing.T) {
	h := newHarness(t)
	author := h.createUser(t, "nobody", models.RoleUser)

	removed, err := h.posts.DeletePost(context.Background(), author.ID, 4242)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestDeletePost_Authorization(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	author := h.createUser(t, "guarded", models.RoleUser)
	stranger := h.createUser(t, "intruder", models.RoleUser)
	post := h.createPost(t, author.ID, "Guarded Dish", nil)

	_, err := h.posts.DeletePost(ctx, stranger.ID, post.ID)
	assertUnauthorizedError(t, err)
	assert.Equal(t, int64(1), h.count(t, &models.Post{}, ""))
}

func TestIsOwner(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.createUser(t, "p-owner", models.RoleUser)
	other := h.createUser(t, "p-other", models.RoleUser)
	post := h.createPost(t, owner.ID, "Owned Dish", nil)

	owned, err := h.posts.IsOwner(ctx, owner.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, owned)

	owned, err = h.posts.IsOwner(ctx, other.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, owned)

	owned, err = h.posts.IsOwner(ctx, owner.ID, 9999)
	require.NoError(t, err)
	assert.False(t, owned)
}

func TestPostImageURLs_BlanksDroppedAndDeduplicated(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	author := h.createUser(t, "gallery", models.RoleUser)

	created, err := h.posts.CreatePost(ctx, CreatePostInput{
		UserID:      author.ID,
		Title:       "Gallery",
		Ingredients: "rice",
		ImageURLs:   []string{" https://cdn.example.com/a.jpg ", "", "https://cdn.example.com/a.jpg", "   "},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"https://cdn.example.com/a.jpg"}, created.ImageURLs)
	assert.Equal(t, int64(1), h.count(t, &models.Media{}, "post_id = ?", created.ID))

	// A new URL that duplicates a kept one must not create a second row.
	updated, err := h.posts.UpdatePost(ctx, UpdatePostInput{
		UserID:        author.ID,
		PostID:        created.ID,
		Title:         "Gallery",
		Ingredients:   "rice",
		KeepImageURLs: []string{"https://cdn.example.com/a.jpg"},
		NewImageURLs:  []string{"https://cdn.example.com/a.jpg", "", " https://cdn.example.com/b.jpg "},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t,
		[]string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"},
		updated.ImageURLs)
	assert.Equal(t, int64(2), h.count(t, &models.Media{}, "post_id = ?", created.ID))
}

// failingPostTagRepo delegates everything except link creation, which always
// errors, forcing a rollback late in the post transactions.
type failingPostTagRepo struct {
	repository.PostTagRepository
}

func (f *failingPostTagRepo) WithTx(tx *gorm.DB) repository.PostTagRepository {
	return &failingPostTagRepo{PostTagRepository: f.PostTagRepository.WithTx(tx)}
}

func (f *failingPostTagRepo) CreateMany(ctx context.Context, links []models.PostTag) error {
	return errors.New("link write failed")
}

func TestUpdatePost_FailureMidTransactionRollsBackEverything(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	author := h.createUser(t, "rollback", models.RoleUser)

	externalURL := "https://cdn.example.com/plated.jpg"
	created, err := h.posts.CreatePost(ctx, CreatePostInput{
		UserID:      author.ID,
		Title:       "Before",
		Ingredients: "beans",
		ImageURLs:   []string{externalURL},
		Uploads:     []storage.FileUpload{testutil.PNGUpload("shot.png", 2, 2)},
		TagNames:    []string{"stew"},
	})
	require.NoError(t, err)

	var managedURL string
	for _, url := range created.ImageURLs {
		if h.media.IsManagedURL(url) {
			managedURL = url
		}
	}
	require.NotEmpty(t, managedURL)
	filesBefore := h.store.Count()

	// Same database and store, but tag links fail inside the transaction,
	// after the post row and media rows have already been touched.
	isAdmin := func(ctx context.Context, userID uint) (bool, error) {
		return h.users.IsAdmin(ctx, userID)
	}
	broken := NewPostService(
		h.db,
		repository.NewPostRepository(h.db),
		repository.NewMediaRepository(h.db),
		&failingPostTagRepo{PostTagRepository: repository.NewPostTagRepository(h.db)},
		repository.NewCommentRepository(h.db),
		repository.NewLikeRepository(h.db),
		repository.NewReportRepository(h.db),
		repository.NewUserRepository(h.db),
		NewTagService(repository.NewTagRepository(h.db)),
		h.media,
		isAdmin,
	)

	_, err = broken.UpdatePost(ctx, UpdatePostInput{
		UserID:        author.ID,
		PostID:        created.ID,
		Title:         "After",
		Ingredients:   "beans",
		KeepImageURLs: []string{externalURL},
		TagNames:      []string{"dinner"},
	})
	require.Error(t, err)

	// Every row is back at its pre-call state.
	var row models.Post
	require.NoError(t, h.db.First(&row, created.ID).Error)
	assert.Equal(t, "Before", row.Title)
	assert.Equal(t, int64(2), h.count(t, &models.Media{}, "post_id = ?", created.ID))
	assert.Equal(t, int64(1), h.count(t, &models.Media{}, "post_id = ? AND url = ?", created.ID, managedURL))
	assert.Equal(t, int64(1), h.count(t, &models.Tag{}, "name = ?", "stew"))
	assert.Equal(t, int64(0), h.count(t, &models.Tag{}, "name = ?", "dinner"))
	assert.Equal(t, int64(1), h.count(t, &models.PostTag{}, "post_id = ?", created.ID))

	// Pending physical deletes were discarded with the rollback.
	assert.True(t, h.store.Exists(managedURL))
	assert.Equal(t, filesBefore, h.store.Count())
}
