package models

import "time"

// Post is a published recipe. It exclusively owns its Media and PostTag
// children; comments, likes, and reports reference it by ID and are looked up
// as queries, not carried as live back-pointers for writes.
type Post struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Ingredients string    `gorm:"size:1000;not null" json:"ingredients"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Calories    float64   `gorm:"not null;default:0" json:"calories"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	User        User      `gorm:"foreignKey:UserID" json:"-"`
	CreatedAt   time.Time `json:"created_at"`

	Images   []Media   `gorm:"foreignKey:PostID" json:"images,omitempty"`
	PostTags []PostTag `gorm:"foreignKey:PostID" json:"-"`
	Likes    []Like    `gorm:"foreignKey:PostID" json:"-"`
}

// Media is a single image attached to a post: either a path under the managed
// upload namespace or a pass-through external URL.
type Media struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	URL    string `gorm:"not null" json:"url"`
	PostID uint   `gorm:"not null;index" json:"post_id"`
}

// Tag is a normalized (trimmed, lower-cased) label shared across posts.
// Name uniqueness is the single source of truth for tag equality.
type Tag struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;not null;uniqueIndex" json:"name"`
}

// PostTag links a post to a tag. Composite identity of the pair.
type PostTag struct {
	PostID uint `gorm:"primaryKey;autoIncrement:false" json:"post_id"`
	TagID  uint `gorm:"primaryKey;autoIncrement:false" json:"tag_id"`
	Tag    Tag  `gorm:"foreignKey:TagID" json:"tag"`
}
