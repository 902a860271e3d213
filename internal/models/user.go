package models

import "time"

// Roles assignable to an account.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is an account. PasswordHash never leaves the server; JSON encoding
// drops it.
type User struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	Username           string    `gorm:"size:30;not null;uniqueIndex" json:"username"`
	Email              string    `gorm:"size:254;not null;uniqueIndex" json:"email"`
	PasswordHash       string    `gorm:"not null" json:"-"`
	Role               string    `gorm:"size:20;not null;default:user" json:"role"`
	Region             string    `gorm:"size:30;not null" json:"region"`
	TotalLikesReceived int       `gorm:"not null;default:0" json:"total_likes_received"`
	ProfilePictureURL  string    `json:"profile_picture_url,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// IsAdmin reports whether the account carries the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
