package models

import "time"

// Report flags a post for moderation. Destroyed when the post is deleted.
type Report struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	Reason    string    `gorm:"size:500;not null" json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}
