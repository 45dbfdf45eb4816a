package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oksasatya/go-account-service/internal/domain/entity"
	"github.com/oksasatya/go-account-service/internal/domain/repository"
)

const uniqueViolation = "23505"

// DB is the subset of *pgxpool.Pool used by the repository.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type UserRepository struct {
	db DB
}

func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id::text, username, email, fullname, password_hash, avatar_url, cover_image_url,
		COALESCE(refresh_token, ''), created_at, updated_at`

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO users (id, username, email, fullname, password_hash, avatar_url, cover_image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, u.ID, u.Username, u.Email, u.FullName, u.Password, u.AvatarURL, u.CoverImageURL, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *UserRepository) GetByUsernameOrEmail(ctx context.Context, username, email string) (*entity.User, error) {
	if username == "" && email == "" {
		return nil, repository.ErrNotFound
	}
	row := r.db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE ($1 <> '' AND username = $1) OR ($2 <> '' AND email = $2)
		ORDER BY (username = $1) DESC
		LIMIT 1
	`, username, email)
	return scanUser(row)
}

// UpdateProfile patches the row in a single UPDATE; NULL parameters keep the column.
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, p repository.ProfilePatch) (*entity.User, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}
	row := r.db.QueryRow(ctx, `
		UPDATE users
		SET fullname = COALESCE($1, fullname),
			email = COALESCE($2, email),
			avatar_url = COALESCE($3, avatar_url),
			cover_image_url = COALESCE($4, cover_image_url),
			updated_at = $5
		WHERE id = $6
		RETURNING `+userColumns,
		nullable(p.FullName), nullable(p.Email), nullable(p.AvatarURL), nullable(p.CoverImageURL), p.UpdatedAt, id)
	u, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrDuplicate
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("update user profile: %w", err)
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	if !validID(id) {
		return repository.ErrNotFound
	}
	tag, err := r.db.Exec(ctx, `UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2`, hash, id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) SetRefreshToken(ctx context.Context, id, token string) error {
	if !validID(id) {
		return repository.ErrNotFound
	}
	tag, err := r.db.Exec(ctx, `UPDATE users SET refresh_token = NULLIF($1, '') WHERE id = $2`, token, id)
	if err != nil {
		return fmt.Errorf("set refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SwapRefreshToken relies on the row lock taken by UPDATE: of two concurrent swaps of the
// same value, the second re-evaluates the predicate after the first commits and matches nothing.
func (r *UserRepository) SwapRefreshToken(ctx context.Context, id, expected, next string) (bool, error) {
	if expected == "" || !validID(id) {
		return false, nil
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE users SET refresh_token = $1
		WHERE id = $2 AND refresh_token = $3
	`, next, id, expected)
	if err != nil {
		return false, fmt.Errorf("swap refresh token: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// validID reports whether id can match the uuid primary key. Other strings would make
// Postgres fail with invalid_text_representation instead of finding no row.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// nullable passes an unset patch field as SQL NULL.
func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.Password, &u.AvatarURL,
		&u.CoverImageURL, &u.RefreshToken, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

var _ repository.UserRepository = (*UserRepository)(nil)
