package application

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-account-service/internal/infrastructure/memory"
	"github.com/oksasatya/go-account-service/pkg/helpers"
)

type mockMedia struct{ mock.Mock }

func (m *mockMedia) Upload(ctx context.Context, userID string, kind MediaKind, f *Upload) (string, error) {
	args := m.Called(ctx, userID, kind, f)
	return args.String(0), args.Error(1)
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) Notify(ctx context.Context, n Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

// testClock is a settable time source shared by the token issuer.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type testEnv struct {
	repo     *memory.UserRepository
	sessions *SessionCoordinator
	accounts *AccountService
	media    *mockMedia
	notifier *mockNotifier
	clock    *testClock
	logs     *test.Hook
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	clock := &testClock{now: time.Now()}
	jwtm, err := helpers.NewJWTManager(helpers.TokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    24 * time.Hour,
	}, helpers.WithClock(clock.Now))
	require.NoError(t, err)

	repo := memory.NewUserRepository()
	hasher := helpers.NewPasswordHasher(bcrypt.MinCost)
	media := &mockMedia{}
	notifier := &mockNotifier{}
	notifier.On("Notify", mock.Anything, mock.Anything).Return(nil).Maybe()
	logger, logs := test.NewNullLogger()

	return &testEnv{
		repo:     repo,
		sessions: NewSessionCoordinator(SessionDeps{Repo: repo, Tokens: jwtm, Hasher: hasher, Notifier: notifier, Logger: logger}),
		accounts: NewAccountService(AccountDeps{Repo: repo, Hasher: hasher, Media: media, Notifier: notifier, Logger: logger}),
		media:    media,
		notifier: notifier,
		clock:    clock,
		logs:     logs,
	}
}

func upload(name string) *Upload {
	return &Upload{Filename: name, ContentType: "image/png", Body: strings.NewReader("png-bytes")}
}

func (e *testEnv) register(t *testing.T, fullName, email, username, password string) *UserView {
	t.Helper()
	e.media.On("Upload", mock.Anything, mock.Anything, MediaAvatar, mock.Anything).
		Return("https://media.example.com/avatar.png", nil).Once()
	v, err := e.accounts.Register(context.Background(), RegisterInput{
		FullName: fullName,
		Email:    email,
		Username: username,
		Password: password,
		Avatar:   upload("avatar.png"),
	})
	require.NoError(t, err)
	return v
}
