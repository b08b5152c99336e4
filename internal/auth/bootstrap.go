package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/midias/internal/models"
	"github.com/desertthunder/midias/internal/shared"
)

// UserStore is the slice of the user repository the bootstrap needs.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*models.Credentials, error)
	Create(ctx context.Context, in *models.UserInput, passwordHash string) (*models.User, error)
	SetPasswordHash(ctx context.Context, id int64, passwordHash string) error
}

// EnsureAdmin makes sure the administrative account exists.
//
// A missing account is created with override as its secret, or with a generated secret that is
// logged once. An existing account only has its secret rotated when override is set.
func EnsureAdmin(ctx context.Context, store UserStore, username, override string, logger *log.Logger) error {
	username = models.NormalizeUsername(username)
	if username == "" {
		return fmt.Errorf("%w: admin username must not be empty", shared.ErrInvalidConfig)
	}
	if len(override) > models.MaxTokenBytes {
		return fmt.Errorf("%w: admin token must be at most %d bytes", shared.ErrInvalidConfig, models.MaxTokenBytes)
	}

	existing, err := store.GetByUsername(ctx, username)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return createAdmin(ctx, store, username, override, logger)
	case err != nil:
		return fmt.Errorf("failed to look up admin: %w", err)
	}

	if !existing.IsAdmin() {
		logger.Warn("bootstrap account exists without the admin role", "username", username, "role", existing.Role)
	}

	if override == "" || VerifyPassword(override, existing.PasswordHash) {
		logger.Debug("admin account present", "username", username)
		return nil
	}

	hash, err := HashPassword(override)
	if err != nil {
		return err
	}
	if err := store.SetPasswordHash(ctx, existing.ID, hash); err != nil {
		return fmt.Errorf("failed to rotate admin secret: %w", err)
	}

	logger.Info("admin secret rotated from configuration", "username", username)
	return nil
}

func createAdmin(ctx context.Context, store UserStore, username, secret string, logger *log.Logger) error {
	generated := secret == ""
	if generated {
		var err error
		if secret, err = GenerateSecret(18); err != nil {
			return err
		}
	}

	hash, err := HashPassword(secret)
	if err != nil {
		return err
	}

	user, err := store.Create(ctx, &models.UserInput{Username: username, Role: models.RoleAdmin}, hash)
	if err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}

	if generated {
		logger.Warn("created admin account with a generated secret; store it now, it is not shown again",
			"username", user.Username, "secret", secret)
	} else {
		logger.Info("created admin account", "username", user.Username)
	}
	return nil
}
