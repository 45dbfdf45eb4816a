package application

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	repo "github.com/oksasatya/go-account-service/internal/domain/repository"
	"github.com/oksasatya/go-account-service/pkg/apperror"
	"github.com/oksasatya/go-account-service/pkg/helpers"
)

// msgRefreshRejected is returned for every failed rotation so callers cannot
// tell a bad signature from a replayed or revoked token.
const msgRefreshRejected = "refresh token is invalid, expired or already used"

// SessionCoordinator owns the refresh-token lifecycle of every user:
// login stores a token, rotation swaps it, logout clears it.
type SessionCoordinator struct {
	repo     repo.UserRepository
	tokens   TokenIssuer
	hasher   PasswordHasher
	cache    ProfileCache
	notifier Notifier
	logger   logrus.FieldLogger
}

type SessionDeps struct {
	Repo     repo.UserRepository
	Tokens   TokenIssuer
	Hasher   PasswordHasher
	Cache    ProfileCache
	Notifier Notifier
	Logger   logrus.FieldLogger
}

func NewSessionCoordinator(d SessionDeps) *SessionCoordinator {
	s := &SessionCoordinator{
		repo:     d.Repo,
		tokens:   d.Tokens,
		hasher:   d.Hasher,
		cache:    d.Cache,
		notifier: d.Notifier,
		logger:   d.Logger,
	}
	if s.cache == nil {
		s.cache = noopCache{}
	}
	if s.notifier == nil {
		s.notifier = noopNotifier{}
	}
	if s.logger == nil {
		s.logger = discardLogger()
	}
	return s
}

// Login verifies credentials, issues a token pair and persists its refresh token,
// replacing (and so revoking) any previous session.
func (s *SessionCoordinator) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	username := strings.ToLower(strings.TrimSpace(in.Username))
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if username == "" && email == "" {
		return nil, apperror.NewBadRequest("username or email is required")
	}
	if in.Password == "" {
		return nil, apperror.NewBadRequest("password is required")
	}

	u, err := s.repo.GetByUsernameOrEmail(ctx, username, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperror.NewNotFound("user doesn't exist")
		}
		return nil, apperror.NewInternal("failed to load user", err)
	}
	if !s.hasher.Compare(u.Password, in.Password) {
		return nil, apperror.NewUnauthorized("invalid credentials")
	}

	pair, err := s.tokens.IssuePair(identityOf(u))
	if err != nil {
		return nil, apperror.NewInternal("something went wrong while generating tokens", err)
	}
	if err := s.repo.SetRefreshToken(ctx, u.ID, pair.RefreshToken); err != nil {
		return nil, apperror.NewInternal("something went wrong while generating tokens", err)
	}
	u.RefreshToken = pair.RefreshToken

	view := NewUserView(u)
	if err := s.cache.Set(ctx, view); err != nil {
		s.logger.WithError(err).WithField("user_id", u.ID).Warn("profile cache set failed")
	}
	s.notify(ctx, Notification{
		Type:      NotifyLogin,
		To:        u.Email,
		Name:      u.FullName,
		Username:  u.Username,
		IP:        in.IP,
		UserAgent: in.UserAgent,
	})
	s.logger.WithField("user_id", u.ID).Info("user logged in")

	return &LoginResult{User: view, Tokens: pair}, nil
}

// Rotate exchanges a refresh token for a new pair. The incoming token is accepted only while it
// still equals the stored value; a successful rotation replaces it, so a replay is rejected.
func (s *SessionCoordinator) Rotate(ctx context.Context, incoming string) (helpers.TokenPair, error) {
	incoming = strings.TrimSpace(incoming)
	if incoming == "" {
		return helpers.TokenPair{}, apperror.NewUnauthorized("unauthorized request")
	}

	claims, err := s.tokens.ParseRefreshToken(incoming)
	if err != nil {
		s.logger.WithError(err).Debug("refresh token verification failed")
		return helpers.TokenPair{}, apperror.Wrap(apperror.Unauthorized, msgRefreshRejected, err)
	}

	u, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			s.logger.WithField("user_id", claims.UserID).Debug("refresh token subject not found")
			return helpers.TokenPair{}, apperror.NewUnauthorized(msgRefreshRejected)
		}
		return helpers.TokenPair{}, apperror.NewInternal("failed to load user", err)
	}
	if !u.HasSession() {
		s.logger.WithField("user_id", u.ID).Info("refresh attempted without an active session")
		return helpers.TokenPair{}, apperror.NewUnauthorized(msgRefreshRejected)
	}
	if !sameToken(incoming, u.RefreshToken) {
		s.logger.WithField("user_id", u.ID).Warn("stale refresh token presented")
		return helpers.TokenPair{}, apperror.NewUnauthorized(msgRefreshRejected)
	}

	pair, err := s.tokens.IssuePair(identityOf(u))
	if err != nil {
		return helpers.TokenPair{}, apperror.NewInternal("something went wrong while generating tokens", err)
	}
	swapped, err := s.repo.SwapRefreshToken(ctx, u.ID, incoming, pair.RefreshToken)
	if err != nil {
		return helpers.TokenPair{}, apperror.NewInternal("something went wrong while generating tokens", err)
	}
	if !swapped {
		// Another request rotated the same token between our read and write.
		s.logger.WithField("user_id", u.ID).Warn("concurrent refresh token rotation lost")
		return helpers.TokenPair{}, apperror.NewUnauthorized(msgRefreshRejected)
	}
	return pair, nil
}

// Logout clears the stored refresh token unconditionally. Logging out an unknown user is a no-op.
func (s *SessionCoordinator) Logout(ctx context.Context, userID string) error {
	if err := s.repo.SetRefreshToken(ctx, userID, ""); err != nil && !errors.Is(err, repo.ErrNotFound) {
		return apperror.NewInternal("failed to log out", err)
	}
	if err := s.cache.Delete(ctx, userID); err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Warn("profile cache delete failed")
	}
	s.logger.WithField("user_id", userID).Info("user logged out")
	return nil
}

// ChangePassword replaces the password hash after verifying the old password.
// Existing sessions stay valid.
func (s *SessionCoordinator) ChangePassword(ctx context.Context, userID string, in ChangePasswordInput) error {
	if in.OldPassword == "" || strings.TrimSpace(in.NewPassword) == "" {
		return apperror.NewBadRequest("old and new password are required")
	}
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apperror.NewNotFound("user doesn't exist")
		}
		return apperror.NewInternal("failed to load user", err)
	}
	if !s.hasher.Compare(u.Password, in.OldPassword) {
		return apperror.NewBadRequest("invalid old password")
	}
	hash, err := s.hasher.Hash(in.NewPassword)
	if err != nil {
		return apperror.NewInternal("failed to hash password", err)
	}
	if err := s.repo.UpdatePassword(ctx, u.ID, hash); err != nil {
		return apperror.NewInternal("failed to update password", err)
	}
	s.notify(ctx, Notification{Type: NotifyPasswordChanged, To: u.Email, Name: u.FullName, Username: u.Username})
	return nil
}

func (s *SessionCoordinator) notify(ctx context.Context, n Notification) {
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.logger.WithError(err).WithField("type", n.Type).Warn("enqueue notification failed")
	}
}

func sameToken(incoming, stored string) bool {
	return subtle.ConstantTimeCompare([]byte(incoming), []byte(stored)) == 1
}
