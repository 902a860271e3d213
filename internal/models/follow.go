package models

import "time"

// Follow records that one user follows another.
type Follow struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FollowerID uint      `gorm:"not null;uniqueIndex:idx_follows_pair" json:"follower_id"`
	FollowedID uint      `gorm:"not null;uniqueIndex:idx_follows_pair;index" json:"followed_id"`
	FollowedAt time.Time `gorm:"autoCreateTime" json:"followed_at"`
}
