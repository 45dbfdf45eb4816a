package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-account-service/internal/domain/entity"
	"github.com/oksasatya/go-account-service/internal/domain/repository"
)

const (
	userID    = "3f1c2a9e-8d4b-4c1e-9a7f-2b6d5e8c0a11"
	missingID = "9b2e4f60-1a3c-4d5e-8f70-6a1b2c3d4e5f"
)

var userRowColumns = []string{"id", "username", "email", "fullname", "password_hash", "avatar_url",
	"cover_image_url", "refresh_token", "created_at", "updated_at"}

func newRepoWithMock(t *testing.T) (*UserRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewUserRepository(mock), mock
}

func TestUserRepository_Create(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now().UTC()
	u := &entity.User{ID: userID, Username: "janed", Email: "jane@x.com", FullName: "Jane Doe",
		Password: "hash", AvatarURL: "https://cdn/a.png", CreatedAt: now, UpdatedAt: now}

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(userID, "janed", "jane@x.com", "Jane Doe", "hash", "https://cdn/a.png", "", now, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), u))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CreateDuplicate(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})

	err := repo.Create(context.Background(), &entity.User{ID: userID})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestUserRepository_CreateWrapsOtherErrors(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), &entity.User{ID: userID})
	require.Error(t, err)
	assert.NotErrorIs(t, err, repository.ErrDuplicate)
	assert.Contains(t, err.Error(), "create user: db down")
}

func TestUserRepository_GetByID(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT .+ FROM users WHERE id = \$1`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows(userRowColumns).
			AddRow(userID, "janed", "jane@x.com", "Jane Doe", "hash", "a", "", "tok", now, now))

	u, err := repo.GetByID(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "janed", u.Username)
	assert.Equal(t, "tok", u.RefreshToken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByIDNotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE id = \$1`).
		WithArgs(missingID).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), missingID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepository_GetByUsernameOrEmail(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`FROM users\s+WHERE \(\$1 <> '' AND username = \$1\) OR \(\$2 <> '' AND email = \$2\)`).
		WithArgs("", "jane@x.com").
		WillReturnRows(pgxmock.NewRows(userRowColumns).
			AddRow(userID, "janed", "jane@x.com", "Jane Doe", "hash", "a", "", "", now, now))

	u, err := repo.GetByUsernameOrEmail(context.Background(), "", "jane@x.com")
	require.NoError(t, err)
	assert.Equal(t, userID, u.ID)

	_, err = repo.GetByUsernameOrEmail(context.Background(), "", "")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdateProfile(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now().UTC()
	name, email := "Jane Roe", "jane@y.com"
	patch := repository.ProfilePatch{FullName: &name, Email: &email, UpdatedAt: now}
	query := `UPDATE users\s+SET fullname = COALESCE\(\$1, fullname\),\s+email = COALESCE\(\$2, email\)`

	mock.ExpectQuery(query).
		WithArgs("Jane Roe", "jane@y.com", nil, nil, now, userID).
		WillReturnRows(pgxmock.NewRows(userRowColumns).
			AddRow(userID, "janed", "jane@y.com", "Jane Roe", "hash", "a", "c", "", now, now))
	u, err := repo.UpdateProfile(context.Background(), userID, patch)
	require.NoError(t, err)
	assert.Equal(t, "Jane Roe", u.FullName)
	assert.Equal(t, "a", u.AvatarURL, "unpatched columns come back from the row")

	mock.ExpectQuery(query).
		WithArgs("Jane Roe", "jane@y.com", nil, nil, now, missingID).
		WillReturnError(pgx.ErrNoRows)
	_, err = repo.UpdateProfile(context.Background(), missingID, patch)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	mock.ExpectQuery(query).
		WithArgs("Jane Roe", "jane@y.com", nil, nil, now, userID).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	_, err = repo.UpdateProfile(context.Background(), userID, patch)
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	_, err = repo.UpdateProfile(context.Background(), "not-a-uuid", patch)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_AvatarPatchLeavesOtherColumns(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now().UTC()
	avatar := "https://cdn/new.png"

	mock.ExpectQuery(`UPDATE users`).
		WithArgs(nil, nil, avatar, nil, now, userID).
		WillReturnRows(pgxmock.NewRows(userRowColumns).
			AddRow(userID, "janed", "jane@x.com", "Jane Doe", "hash", avatar, "", "", now, now))
	u, err := repo.UpdateProfile(context.Background(), userID, repository.ProfilePatch{AvatarURL: &avatar, UpdatedAt: now})
	require.NoError(t, err)
	assert.Equal(t, avatar, u.AvatarURL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_MalformedIDIsNotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "ghost")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, repo.SetRefreshToken(ctx, "ghost", ""), repository.ErrNotFound)
	assert.ErrorIs(t, repo.UpdatePassword(ctx, "ghost", "h"), repository.ErrNotFound)
	ok, err := repo.SwapRefreshToken(ctx, "ghost", "v1", "v2")
	require.NoError(t, err)
	assert.False(t, ok)

	// nothing reaches the database
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_SetRefreshToken(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`UPDATE users SET refresh_token = NULLIF\(\$1, ''\) WHERE id = \$2`).
		WithArgs("", userID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, repo.SetRefreshToken(context.Background(), userID, ""))

	mock.ExpectExec(`UPDATE users SET refresh_token`).
		WithArgs("tok", missingID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	assert.ErrorIs(t, repo.SetRefreshToken(context.Background(), missingID, "tok"), repository.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_SwapRefreshToken(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`UPDATE users SET refresh_token = \$1\s+WHERE id = \$2 AND refresh_token = \$3`).
		WithArgs("v2", userID, "v1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	ok, err := repo.SwapRefreshToken(context.Background(), userID, "v1", "v2")
	require.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectExec(`UPDATE users SET refresh_token = \$1\s+WHERE id = \$2 AND refresh_token = \$3`).
		WithArgs("v3", userID, "v1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	ok, err = repo.SwapRefreshToken(context.Background(), userID, "v1", "v3")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.SwapRefreshToken(context.Background(), userID, "", "v3")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdatePassword(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`UPDATE users SET password_hash = \$1`).
		WithArgs("new-hash", userID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, repo.UpdatePassword(context.Background(), userID, "new-hash"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
