package memory

import (
	"context"
	"sync"
	"time"

	"github.com/oksasatya/go-account-service/internal/domain/entity"
	"github.com/oksasatya/go-account-service/internal/domain/repository"
)

// UserRepository is a process-local credential store. A single mutex serializes all writes,
// which gives SwapRefreshToken the same single-winner behavior as the Postgres store.
type UserRepository struct {
	mu         sync.RWMutex
	byID       map[string]*entity.User
	byUsername map[string]string
	byEmail    map[string]string
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:       map[string]*entity.User{},
		byUsername: map[string]string{},
		byEmail:    map[string]string{},
	}
}

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byUsername[u.Username]; ok {
		return repository.ErrDuplicate
	}
	if _, ok := r.byEmail[u.Email]; ok {
		return repository.ErrDuplicate
	}
	if _, ok := r.byID[u.ID]; ok {
		return repository.ErrDuplicate
	}
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = now
	}
	cp := *u
	r.byID[u.ID] = &cp
	r.byUsername[u.Username] = u.ID
	r.byEmail[u.Email] = u.ID
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.copyOf(id)
}

func (r *UserRepository) GetByUsernameOrEmail(_ context.Context, username, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if username != "" {
		if id, ok := r.byUsername[username]; ok {
			return r.copyOf(id)
		}
	}
	if email != "" {
		if id, ok := r.byEmail[email]; ok {
			return r.copyOf(id)
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) UpdateProfile(_ context.Context, id string, p repository.ProfilePatch) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if p.Email != nil && *p.Email != cur.Email {
		if owner, taken := r.byEmail[*p.Email]; taken && owner != id {
			return nil, repository.ErrDuplicate
		}
		delete(r.byEmail, cur.Email)
		r.byEmail[*p.Email] = id
		cur.Email = *p.Email
	}
	if p.FullName != nil {
		cur.FullName = *p.FullName
	}
	if p.AvatarURL != nil {
		cur.AvatarURL = *p.AvatarURL
	}
	if p.CoverImageURL != nil {
		cur.CoverImageURL = *p.CoverImageURL
	}
	cur.UpdatedAt = stamp(p.UpdatedAt)
	return r.copyOf(id)
}

func (r *UserRepository) UpdatePassword(_ context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	cur.Password = hash
	cur.UpdatedAt = stamp(time.Time{})
	return nil
}

func (r *UserRepository) SetRefreshToken(_ context.Context, id, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	cur.RefreshToken = token
	return nil
}

func (r *UserRepository) SwapRefreshToken(_ context.Context, id, expected, next string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	if expected == "" || cur.RefreshToken != expected {
		return false, nil
	}
	cur.RefreshToken = next
	return true, nil
}

func (r *UserRepository) copyOf(id string) (*entity.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func stamp(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}

var _ repository.UserRepository = (*UserRepository)(nil)
