package application

import (
	"context"
	"io"

	"github.com/oksasatya/go-account-service/internal/domain/entity"
	"github.com/oksasatya/go-account-service/pkg/helpers"
)

// TokenIssuer issues and verifies token pairs. *helpers.JWTManager satisfies it.
type TokenIssuer interface {
	IssuePair(id helpers.Identity) (helpers.TokenPair, error)
	ParseRefreshToken(token string) (*helpers.RefreshClaims, error)
}

// PasswordHasher hashes and verifies cleartext passwords. *helpers.PasswordHasher satisfies it.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) bool
}

// Upload is a file received from a client, not yet stored on the media host.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// MediaKind names the slot an uploaded image is stored for.
type MediaKind string

const (
	MediaAvatar     MediaKind = "avatars"
	MediaCoverImage MediaKind = "covers"
)

// MediaUploader stores an upload on the remote media host and returns its public URL.
type MediaUploader interface {
	Upload(ctx context.Context, userID string, kind MediaKind, f *Upload) (string, error)
}

// ProfileCache caches sanitized user views keyed by user id.
type ProfileCache interface {
	Get(ctx context.Context, userID string) (*UserView, bool, error)
	Set(ctx context.Context, v *UserView) error
	Delete(ctx context.Context, userID string) error
}

// UserIndex keeps a searchable copy of public profile fields.
type UserIndex interface {
	Index(ctx context.Context, u *entity.User) error
	Search(ctx context.Context, q string, size int) ([]UserView, error)
}

// Notifier hands account notifications to the delivery pipeline.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Notification types understood by the email worker.
const (
	NotifyWelcome         = "welcome"
	NotifyLogin           = "login_notification"
	NotifyPasswordChanged = "password_changed"
	NotifyProfileUpdated  = "profile_updated"
)

type Notification struct {
	Type      string
	To        string
	Name      string
	Username  string
	IP        string
	UserAgent string
	Changes   map[string]string
}

type noopCache struct{}

func (noopCache) Get(context.Context, string) (*UserView, bool, error) { return nil, false, nil }
func (noopCache) Set(context.Context, *UserView) error                 { return nil }
func (noopCache) Delete(context.Context, string) error                 { return nil }

type noopIndex struct{}

func (noopIndex) Index(context.Context, *entity.User) error { return nil }
func (noopIndex) Search(context.Context, string, int) ([]UserView, error) {
	return []UserView{}, nil
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, Notification) error { return nil }
