package repository

import (
	"context"
	"errors"
	"time"

	"github.com/oksasatya/go-account-service/internal/domain/entity"
)

var (
	ErrNotFound  = errors.New("user not found")
	ErrDuplicate = errors.New("username or email already exists")
)

// ProfilePatch lists the profile fields to change. Nil fields keep their stored value.
type ProfilePatch struct {
	FullName      *string
	Email         *string
	AvatarURL     *string
	CoverImageURL *string
	UpdatedAt     time.Time
}

// Empty reports whether the patch changes no field.
func (p ProfilePatch) Empty() bool {
	return p.FullName == nil && p.Email == nil && p.AvatarURL == nil && p.CoverImageURL == nil
}

// UserRepository defines the credential store used by the account and session services.
// Implementations must make SwapRefreshToken atomic per user.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	// GetByUsernameOrEmail matches either identifier exactly; blank identifiers are ignored.
	GetByUsernameOrEmail(ctx context.Context, username, email string) (*entity.User, error)
	// UpdateProfile sets only the non-nil fields of p in one atomic write and returns the
	// resulting record, so concurrent patches of different fields never undo each other.
	UpdateProfile(ctx context.Context, id string, p ProfilePatch) (*entity.User, error)
	UpdatePassword(ctx context.Context, id, hash string) error
	// SetRefreshToken overwrites the stored refresh token. An empty token clears the session.
	SetRefreshToken(ctx context.Context, id, token string) error
	// SwapRefreshToken replaces expected with next and reports false when the stored
	// value was no longer expected.
	SwapRefreshToken(ctx context.Context, id, expected, next string) (bool, error)
}
