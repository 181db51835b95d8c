package services

import (
	"context"
	"errors"

	"github.com/sbilibin2017/auth-api/internal/logger"
	"github.com/sbilibin2017/auth-api/internal/models"
	"github.com/sbilibin2017/auth-api/internal/password"
	"github.com/sbilibin2017/auth-api/internal/repositories"
)

// UserAllReader lists users.
type UserAllReader interface {
	GetByUsername(ctx context.Context, username string) (*models.UserDB, error)
	ListAll(ctx context.Context) ([]models.UserDB, error)
}

// UserUpdater updates and deletes users.
type UserUpdater interface {
	Update(ctx context.Context, username, newUsername, newPasswordHash string) (*models.UserDB, error)
	Delete(ctx context.Context, username string) error
}

// UserService provides user listing and maintenance operations.
// Update and Delete are store-level operations without routed endpoints.
type UserService struct {
	reader  UserAllReader
	updater UserUpdater
}

// NewUserService creates a new UserService instance.
func NewUserService(reader UserAllReader, updater UserUpdater) *UserService {
	return &UserService{
		reader:  reader,
		updater: updater,
	}
}

// List returns all users.
func (svc *UserService) List(ctx context.Context) ([]models.UserDB, error) {
	users, err := svc.reader.ListAll(ctx)
	if err != nil {
		logger.Log.Errorw("failed to list users", "err", err)
		return nil, err
	}
	return users, nil
}

// Get returns a single user by username.
func (svc *UserService) Get(ctx context.Context, username string) (*models.UserDB, error) {
	user, err := svc.reader.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		logger.Log.Errorw("failed to get user", "err", err)
		return nil, err
	}
	return user, nil
}

// Update renames a user and replaces their password.
func (svc *UserService) Update(ctx context.Context, username, newUsername, newPassword string) (*models.UserDB, error) {
	if err := validateCredentials(newUsername, newPassword); err != nil {
		logger.Log.Errorw("update validation failed", "username", username, "err", err)
		return nil, err
	}

	hashed, err := password.Hash(newPassword)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "err", err)
		return nil, err
	}

	user, err := svc.updater.Update(ctx, username, newUsername, hashed)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrUserNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, repositories.ErrUsernameTaken):
			return nil, ErrUserAlreadyExists
		}
		logger.Log.Errorw("failed to update user", "err", err)
		return nil, err
	}

	return user, nil
}

// Delete removes a user by username.
func (svc *UserService) Delete(ctx context.Context, username string) error {
	if err := svc.updater.Delete(ctx, username); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		logger.Log.Errorw("failed to delete user", "err", err)
		return err
	}
	return nil
}
