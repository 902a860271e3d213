package models

import "time"

// PostInfo is the viewer-relative read projection of a post aggregate.
// It is produced by a single mapper in the service layer so the
// viewer-relative logic is defined exactly once.
type PostInfo struct {
	ID                   uint      `json:"id"`
	Title                string    `json:"title"`
	Ingredients          string    `json:"ingredients"`
	Description          string    `json:"description"`
	Calories             float64   `json:"calories"`
	ImageURLs            []string  `json:"image_urls"`
	TagNames             []string  `json:"tag_names"`
	Likes                int       `json:"likes"`
	CreatedAt            time.Time `json:"created_at"`
	UserID               uint      `json:"user_id"`
	Username             string    `json:"username"`
	IsLikedByCurrentUser bool      `json:"is_liked_by_current_user"`
}

// TagInfo is the public shape of a tag.
type TagInfo struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// CommentInfo is the public shape of a comment.
type CommentInfo struct {
	ID        uint      `json:"id"`
	Content   string    `json:"content"`
	UserID    uint      `json:"user_id"`
	Username  string    `json:"username"`
	PostID    uint      `json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

// UserInfo is the public shape of a user account.
type UserInfo struct {
	ID                 uint      `json:"id"`
	Username           string    `json:"username"`
	Email              string    `json:"email"`
	Role               string    `json:"role"`
	Region             string    `json:"region"`
	TotalLikesReceived int       `json:"total_likes_received"`
	ProfilePictureURL  string    `json:"profile_picture_url,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}
