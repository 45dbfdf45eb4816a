package container

import (
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-account-service/config"
	"github.com/oksasatya/go-account-service/internal/application"
	"github.com/oksasatya/go-account-service/internal/domain/repository"
	"github.com/oksasatya/go-account-service/internal/interface/middleware"
	"github.com/oksasatya/go-account-service/pkg/helpers"
)

// Container carries the components built at startup so the router can wire modules from them.
// Optional components (Redis, Media, Cache, Index, Notifier) may be nil.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger

	Repo     repository.UserRepository
	Redis    *redis.Client
	JWT      *helpers.JWTManager
	Hasher   *helpers.PasswordHasher
	Media    application.MediaUploader
	Cache    application.ProfileCache
	Index    application.UserIndex
	Notifier application.Notifier
}

func (c *Container) Sessions() *application.SessionCoordinator {
	return application.NewSessionCoordinator(application.SessionDeps{
		Repo:     c.Repo,
		Tokens:   c.JWT,
		Hasher:   c.Hasher,
		Cache:    c.Cache,
		Notifier: c.Notifier,
		Logger:   c.Logger,
	})
}

func (c *Container) Accounts() *application.AccountService {
	return application.NewAccountService(application.AccountDeps{
		Repo:     c.Repo,
		Hasher:   c.Hasher,
		Media:    c.Media,
		Cache:    c.Cache,
		Index:    c.Index,
		Notifier: c.Notifier,
		Logger:   c.Logger,
	})
}

// Limiter returns a per-minute limiter: Redis-backed when Redis is configured,
// in-process otherwise. It returns nil when rate limiting is disabled.
func (c *Container) Limiter(perMinute int) middleware.Limiter {
	if !c.Config.RateLimitEnabled || perMinute <= 0 {
		return nil
	}
	if c.Redis != nil {
		return middleware.NewRedisLimiter(c.Redis, perMinute, time.Minute)
	}
	return middleware.NewLocalLimiter(perMinute, time.Minute)
}

func (c *Container) Cookies() *helpers.CookieManager {
	return helpers.NewCookie(c.Config.CookieDomain, c.Config.CookieSecure)
}
