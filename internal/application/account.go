package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-account-service/internal/domain/entity"
	repo "github.com/oksasatya/go-account-service/internal/domain/repository"
	"github.com/oksasatya/go-account-service/pkg/apperror"
)

// AccountService handles registration and profile reads/updates.
type AccountService struct {
	repo     repo.UserRepository
	hasher   PasswordHasher
	media    MediaUploader
	cache    ProfileCache
	index    UserIndex
	notifier Notifier
	logger   logrus.FieldLogger
	now      func() time.Time
}

type AccountDeps struct {
	Repo     repo.UserRepository
	Hasher   PasswordHasher
	Media    MediaUploader
	Cache    ProfileCache
	Index    UserIndex
	Notifier Notifier
	Logger   logrus.FieldLogger
}

func NewAccountService(d AccountDeps) *AccountService {
	s := &AccountService{
		repo:     d.Repo,
		hasher:   d.Hasher,
		media:    d.Media,
		cache:    d.Cache,
		index:    d.Index,
		notifier: d.Notifier,
		logger:   d.Logger,
		now:      time.Now,
	}
	if s.cache == nil {
		s.cache = noopCache{}
	}
	if s.index == nil {
		s.index = noopIndex{}
	}
	if s.notifier == nil {
		s.notifier = noopNotifier{}
	}
	if s.logger == nil {
		s.logger = discardLogger()
	}
	return s
}

// Register creates a user. Username and email are normalized to lower case and the
// password is hashed before anything is persisted.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*UserView, error) {
	fullName := strings.TrimSpace(in.FullName)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.ToLower(strings.TrimSpace(in.Username))
	if fullName == "" || email == "" || username == "" || strings.TrimSpace(in.Password) == "" {
		return nil, apperror.NewBadRequest("all fields are required")
	}

	existing, err := s.repo.GetByUsernameOrEmail(ctx, username, email)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, apperror.NewInternal("failed to check existing user", err)
	}
	if existing != nil {
		return nil, apperror.NewConflict("user with email or username already exists")
	}

	if in.Avatar == nil || in.Avatar.Body == nil {
		return nil, apperror.NewBadRequest("avatar file is required")
	}

	id := uuid.NewString()
	avatarURL, err := s.upload(ctx, id, MediaAvatar, in.Avatar)
	if err != nil {
		s.logger.WithError(err).Warn("avatar upload failed")
		return nil, apperror.NewBadRequest("avatar file is required")
	}
	var coverURL string
	if in.CoverImage != nil && in.CoverImage.Body != nil {
		if coverURL, err = s.upload(ctx, id, MediaCoverImage, in.CoverImage); err != nil {
			s.logger.WithError(err).Warn("cover image upload failed; continuing without cover")
			coverURL = ""
		}
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperror.NewInternal("something went wrong while registering the user", err)
	}

	now := s.now().UTC()
	u := &entity.User{
		ID:            id,
		Username:      username,
		Email:         email,
		FullName:      fullName,
		Password:      hash,
		AvatarURL:     avatarURL,
		CoverImageURL: coverURL,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, apperror.NewConflict("user with email or username already exists")
		}
		return nil, apperror.NewInternal("something went wrong while registering the user", err)
	}

	s.reindex(ctx, u)
	s.notify(ctx, Notification{Type: NotifyWelcome, To: u.Email, Name: u.FullName, Username: u.Username})
	s.logger.WithField("user_id", u.ID).Info("user registered")
	return NewUserView(u), nil
}

// GetCurrentUser returns the caller's profile, served from the cache when possible.
func (s *AccountService) GetCurrentUser(ctx context.Context, userID string) (*UserView, error) {
	if v, ok, err := s.cache.Get(ctx, userID); err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Warn("profile cache get failed")
	} else if ok {
		return v, nil
	}
	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	v := NewUserView(u)
	s.store(ctx, v)
	return v, nil
}

func (s *AccountService) UpdateAccountDetails(ctx context.Context, userID string, in UpdateAccountInput) (*UserView, error) {
	fullName := strings.TrimSpace(in.FullName)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if fullName == "" || email == "" {
		return nil, apperror.NewBadRequest("all fields are required")
	}

	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if email != u.Email {
		other, err := s.repo.GetByUsernameOrEmail(ctx, "", email)
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return nil, apperror.NewInternal("failed to check email", err)
		}
		if other != nil && other.ID != u.ID {
			return nil, apperror.NewConflict("email is already in use")
		}
	}

	changes := map[string]string{}
	if fullName != u.FullName {
		changes["fullname"] = fullName
	}
	if email != u.Email {
		changes["email"] = email
	}
	u, err = s.save(ctx, userID, repo.ProfilePatch{FullName: &fullName, Email: &email})
	if err != nil {
		return nil, err
	}
	if len(changes) > 0 {
		s.notify(ctx, Notification{Type: NotifyProfileUpdated, To: u.Email, Name: u.FullName, Username: u.Username, Changes: changes})
	}
	return NewUserView(u), nil
}

func (s *AccountService) UpdateAvatar(ctx context.Context, userID string, f *Upload) (*UserView, error) {
	return s.updateImage(ctx, userID, MediaAvatar, f)
}

func (s *AccountService) UpdateCoverImage(ctx context.Context, userID string, f *Upload) (*UserView, error) {
	return s.updateImage(ctx, userID, MediaCoverImage, f)
}

func (s *AccountService) updateImage(ctx context.Context, userID string, kind MediaKind, f *Upload) (*UserView, error) {
	label := "avatar"
	if kind == MediaCoverImage {
		label = "cover image"
	}
	if f == nil || f.Body == nil {
		return nil, apperror.NewBadRequest(label + " file is missing")
	}
	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	url, err := s.upload(ctx, u.ID, kind, f)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", u.ID).Warn(label + " upload failed")
		return nil, apperror.NewBadRequest("error while uploading " + label)
	}
	patch := repo.ProfilePatch{AvatarURL: &url}
	if kind == MediaCoverImage {
		patch = repo.ProfilePatch{CoverImageURL: &url}
	}
	if u, err = s.save(ctx, u.ID, patch); err != nil {
		return nil, err
	}
	return NewUserView(u), nil
}

// SearchUsers performs a profile search; size is clamped to 1..50 with a default of 10.
func (s *AccountService) SearchUsers(ctx context.Context, q string, size int) ([]UserView, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, apperror.NewBadRequest("query is required")
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	res, err := s.index.Search(ctx, q, size)
	if err != nil {
		return nil, apperror.NewInternal("search failed", err)
	}
	return res, nil
}

func (s *AccountService) upload(ctx context.Context, userID string, kind MediaKind, f *Upload) (string, error) {
	if s.media == nil {
		return "", errors.New("media uploader not configured")
	}
	url, err := s.media.Upload(ctx, userID, kind, f)
	if err != nil {
		return "", err
	}
	if url == "" {
		return "", errors.New("media host returned no url")
	}
	return url, nil
}

func (s *AccountService) load(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperror.NewNotFound("user doesn't exist")
		}
		return nil, apperror.NewInternal("failed to load user", err)
	}
	return u, nil
}

// save writes only the fields in p and refreshes the cache and index from the stored result.
func (s *AccountService) save(ctx context.Context, userID string, p repo.ProfilePatch) (*entity.User, error) {
	p.UpdatedAt = s.now().UTC()
	u, err := s.repo.UpdateProfile(ctx, userID, p)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrDuplicate):
			return nil, apperror.NewConflict("email is already in use")
		case errors.Is(err, repo.ErrNotFound):
			return nil, apperror.NewNotFound("user doesn't exist")
		}
		return nil, apperror.NewInternal("failed to update user", err)
	}
	s.store(ctx, NewUserView(u))
	s.reindex(ctx, u)
	return u, nil
}

func (s *AccountService) store(ctx context.Context, v *UserView) {
	if err := s.cache.Set(ctx, v); err != nil {
		s.logger.WithError(err).WithField("user_id", v.ID).Warn("profile cache set failed")
	}
}

func (s *AccountService) reindex(ctx context.Context, u *entity.User) {
	if err := s.index.Index(ctx, u); err != nil {
		s.logger.WithError(err).WithField("user_id", u.ID).Warn("profile index failed")
	}
}

func (s *AccountService) notify(ctx context.Context, n Notification) {
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.logger.WithError(err).WithField("type", n.Type).Warn("enqueue notification failed")
	}
}
