package entity

import (
	"time"
)

// User is the aggregate root for the account domain.
// Password holds a bcrypt hash. RefreshToken mirrors the value of the most recently
// issued refresh token; an empty string means no live session.
type User struct {
	ID            string
	Username      string
	Email         string
	FullName      string
	Password      string
	AvatarURL     string
	CoverImageURL string
	RefreshToken  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasSession reports whether a refresh token is currently persisted.
func (u *User) HasSession() bool {
	return u.RefreshToken != ""
}
