package service

import (
	"context"
	"strings"
	"testing"

	"foodconnect/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateComment(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	author := h.createUser(t, "c-author", models.RoleUser)
	commenter := h.createUser(t, "c-commenter", models.RoleUser)
	post := h.createPost(t, author.ID, "Commented Dish", nil)

	comment, err := h.comments.CreateComment(ctx, CreateCommentInput{
		UserID:  commenter.ID,
		PostID:  post.ID,
		Content: "  adding to my list  ",
	})
	require.NoError(t, err)

	assert.NotZero(t, comment.ID)
	assert.Equal(t, "adding to my list", comment.Content)
	assert.Equal(t, commenter.ID, comment.UserID)
	assert.Equal(t, commenter.Username, comment.Username)
	assert.Equal(t, post.ID, comment.PostID)
}

func TestCreateComment_Validation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	author := h.createUser(t, "c-val", models.RoleUser)
	post := h.createPost(t, author.ID, "Validated", nil)

	_, err := h.comments.CreateComment(ctx, CreateCommentInput{UserID: author.ID, PostID: post.ID, Content: "   "})
	assertValidationError(t, err)

	_, err = h.comments.CreateComment(ctx, CreateCommentInput{
		UserID:  author.ID,
		PostID:  post.ID,
		Content: strings.Repeat("a", models.MaxCommentLen+1),
	})
	assertValidationError(t, err)

	_, err = h.comments.CreateComment(ctx, CreateCommentInput{UserID: author.ID, PostID: 9999, Content: "ghost"})
	assertNotFoundError(t, err)
}

func TestListComments_OldestFirst(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	author := h.createUser(t, "c-lister", models.RoleUser)
	post := h.createPost(t, author.ID, "Thread", nil)

	for _, content := range []string{"first", "second", "third"} {
		_, err := h.comments.CreateComment(ctx, CreateCommentInput{UserID: author.ID, PostID: post.ID, Content: content})
		require.NoError(t, err)
	}

	comments, err := h.comments.ListComments(ctx, post.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, comments, 3)
	assert.Equal(t, "first", comments[0].Content)
	assert.Equal(t, "third", comments[2].Content)

	page, err := h.comments.ListComments(ctx, post.ID, 2, 1)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "second", page[0].Content)
}

func TestDeleteComment_AuthorOrAdmin(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	author := h.createUser(t, "c-owner", models.RoleUser)
	stranger := h.createUser(t, "c-stranger", models.RoleUser)
	admin := h.createUser(t, "c-admin", models.RoleAdmin)
	post := h.createPost(t, author.ID, "Moderated Thread", nil)

	mine, err := h.comments.CreateComment(ctx, CreateCommentInput{UserID: author.ID, PostID: post.ID, Content: "mine"})
	require.NoError(t, err)
	flagged, err := h.comments.CreateComment(ctx, CreateCommentInput{UserID: stranger.ID, PostID: post.ID, Content: "rude"})
	require.NoError(t, err)

	err = h.comments.DeleteComment(ctx, stranger.ID, mine.ID)
	assertUnauthorizedError(t, err)

	require.NoError(t, h.comments.DeleteComment(ctx, author.ID, mine.ID))
	require.NoError(t, h.comments.DeleteComment(ctx, admin.ID, flagged.ID))
	assert.Equal(t, int64(0), h.count(t, &models.Comment{}, ""))

	err = h.comments.DeleteComment(ctx, author.ID, mine.ID)
	assertNotFoundError(t, err)
}

func TestUpdateComment_AuthorOnly(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	author := h.createUser(t, "c-editor", models.RoleUser)
	stranger := h.createUser(t, "c-reader", models.RoleUser)
	post := h.createPost(t, author.ID, "Editable Thread", nil)

	comment, err := h.comments.CreateComment(ctx, CreateCommentInput{UserID: author.ID, PostID: post.ID, Content: "draft"})
	require.NoError(t, err)

	updated, err := h.comments.UpdateComment(ctx, author.ID, comment.ID, "  final  ")
	require.NoError(t, err)
	assert.Equal(t, "final", updated.Content)

	_, err = h.comments.UpdateComment(ctx, stranger.ID, comment.ID, "hijacked")
	assertUnauthorizedError(t, err)

	_, err = h.comments.UpdateComment(ctx, author.ID, comment.ID, "   ")
	assertValidationError(t, err)

	_, err = h.comments.UpdateComment(ctx, author.ID, 9999, "ghost")
	assertNotFoundError(t, err)
}

func TestListUserComments_NewestFirst(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	author := h.createUser(t, "c-prolific", models.RoleUser)
	other := h.createUser(t, "c-other", models.RoleUser)
	postA := h.createPost(t, author.ID, "Thread A", nil)
	postB := h.createPost(t, author.ID, "Thread B", nil)

	for _, c := range []struct {
		userID  uint
		postID  uint
		content string
	}{
		{author.ID, postA.ID, "older"},
		{author.ID, postB.ID, "newer"},
		{other.ID, postA.ID, "not mine"},
	} {
		_, err := h.comments.CreateComment(ctx, CreateCommentInput{UserID: c.userID, PostID: c.postID, Content: c.content})
		require.NoError(t, err)
	}

	comments, err := h.comments.ListUserComments(ctx, author.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	for _, c := range comments {
		assert.Equal(t, author.ID, c.UserID)
	}
}
