package service

import (
	"context"
	"testing"

	"foodconnect/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.createUser(t, "f-alice", models.RoleUser)
	bob := h.createUser(t, "f-bob", models.RoleUser)

	require.NoError(t, h.follows.Follow(ctx, alice.ID, bob.ID))

	following, err := h.follows.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, following)

	// Follow edges are directional.
	reverse, err := h.follows.IsFollowing(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, reverse)

	// Following again is a no-op, not an error.
	require.NoError(t, h.follows.Follow(ctx, alice.ID, bob.ID))
	assert.Equal(t, int64(1), h.count(t, &models.Follow{}, ""))
}

func TestFollow_SelfAndMissingTarget(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.createUser(t, "f-self", models.RoleUser)

	err := h.follows.Follow(ctx, alice.ID, alice.ID)
	assertValidationError(t, err)

	err = h.follows.Follow(ctx, alice.ID, 9999)
	assertNotFoundError(t, err)
}

func TestUnfollow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.createUser(t, "f-un-alice", models.RoleUser)
	bob := h.createUser(t, "f-un-bob", models.RoleUser)

	require.NoError(t, h.follows.Follow(ctx, alice.ID, bob.ID))
	require.NoError(t, h.follows.Unfollow(ctx, alice.ID, bob.ID))

	following, err := h.follows.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, following)

	// Unfollowing someone you never followed is a no-op.
	require.NoError(t, h.follows.Unfollow(ctx, alice.ID, bob.ID))
}

func TestFollowersAndFollowing(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	star := h.createUser(t, "f-star", models.RoleUser)
	fan1 := h.createUser(t, "f-fan1", models.RoleUser)
	fan2 := h.createUser(t, "f-fan2", models.RoleUser)

	require.NoError(t, h.follows.Follow(ctx, fan1.ID, star.ID))
	require.NoError(t, h.follows.Follow(ctx, fan2.ID, star.ID))
	require.NoError(t, h.follows.Follow(ctx, star.ID, fan1.ID))

	followers, err := h.follows.Followers(ctx, star.ID, 10, 0)
	require.NoError(t, err)
	names := make([]string, 0, len(followers))
	for _, f := range followers {
		names = append(names, f.Username)
	}
	assert.ElementsMatch(t, []string{"f-fan1", "f-fan2"}, names)

	following, err := h.follows.Following(ctx, star.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, "f-fan1", following[0].Username)
}
