package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix    = "user:%d"
	PostKeyPrefix    = "post:%d"
	TagKeyPrefix     = "tag:%s"
	PostsListKeyName = "posts:all"
)

const (
	UserTTL      = 5 * time.Minute
	PostTTL      = 30 * time.Minute
	TagTTL       = 10 * time.Minute
	PostsListTTL = 1 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func TagKey(name string) string {
	return fmt.Sprintf(TagKeyPrefix, name)
}

func PostsListKey() string {
	return PostsListKeyName
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
	InvalidatePostsList(ctx)
}

func InvalidatePostsList(ctx context.Context) {
	Invalidate(ctx, PostsListKey())
}

func InvalidateTag(ctx context.Context, name string) {
	Invalidate(ctx, TagKey(name))
}
