package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-account-service/config"
	"github.com/oksasatya/go-account-service/internal/domain/entity"
	"github.com/oksasatya/go-account-service/internal/domain/repository"
	pginfra "github.com/oksasatya/go-account-service/internal/infrastructure/postgres"
	"github.com/oksasatya/go-account-service/pkg/helpers"
)

// seed creates a demo account directly in Postgres. Media uploads are skipped, so the
// avatar points at a placeholder.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env, cfg.LogLevel)
	if err := run(context.Background(), cfg, logger); err != nil {
		logger.WithError(err).Error("seed failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *logrus.Logger) error {
	pool, err := pginfra.NewPool(ctx, pginfra.PoolConfig{
		DSN:         cfg.PostgresDSN(),
		MaxConns:    2,
		MinConns:    1,
		MaxConnLife: time.Hour,
	})
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()
	if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	const (
		username = "demouser"
		email    = "demo@example.com"
		password = "password123"
	)
	hash, err := helpers.NewPasswordHasher(bcrypt.DefaultCost).Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	u := &entity.User{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     email,
		FullName:  "Demo User",
		Password:  hash,
		AvatarURL: "https://placehold.co/256x256.png",
		CreatedAt: now,
		UpdatedAt: now,
	}
	repo := pginfra.NewUserRepository(pool)
	if err := repo.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			logger.WithField("username", username).Info("demo user already exists")
			return nil
		}
		return fmt.Errorf("seed user: %w", err)
	}
	logger.WithFields(map[string]any{"id": u.ID, "username": username, "email": email}).
		Infof("seeded user with password %q", password)
	return nil
}
