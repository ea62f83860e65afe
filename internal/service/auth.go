package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dtroode/taskboard-server/internal/apierrors"
	"github.com/dtroode/taskboard-server/internal/logger"
	"github.com/dtroode/taskboard-server/internal/model"
	"github.com/dtroode/taskboard-server/internal/password"
)

type Auth struct {
	userStore       model.UserStore
	loginEventStore model.LoginEventStore
	hasher          model.PasswordHasher
	tokenManager    model.TokenManager
	logger          *logger.Logger
	clock           func() time.Time
}

func NewAuth(
	userStore model.UserStore,
	loginEventStore model.LoginEventStore,
	hasher model.PasswordHasher,
	tokenManager model.TokenManager,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		userStore:       userStore,
		loginEventStore: loginEventStore,
		hasher:          hasher,
		tokenManager:    tokenManager,
		logger:          logger,
		clock:           time.Now,
	}
}

// Register creates a user with a hashed password and returns it.
func (a *Auth) Register(ctx context.Context, params model.RegisterParams) (model.User, error) {
	a.logger.Debug("Auth service: starting user registration",
		"email", params.Email)

	if params.Name == "" || params.Email == "" || params.Password == "" {
		return model.User{}, apierrors.NewErrValidation("All fields are required")
	}

	_, err := a.userStore.GetByEmail(ctx, params.Email)
	if err == nil {
		a.logger.Info("Auth service: user already exists",
			"email", params.Email)
		return model.User{}, apierrors.NewErrEmailIsTaken(params.Email)
	}
	if !errors.Is(err, model.ErrNotFound) {
		a.logger.Error("Auth service: failed to get user by email",
			"email", params.Email,
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	hash, err := a.hasher.Hash(params.Password)
	if errors.Is(err, password.ErrTooLong) {
		return model.User{}, apierrors.NewErrValidation("Password must be at most 72 bytes")
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := a.userStore.Create(ctx, model.User{
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: hash,
		CreatedAt:    a.clock(),
	})
	if errors.Is(err, model.ErrConflict) {
		a.logger.Info("Auth service: user created concurrently",
			"email", params.Email)
		return model.User{}, apierrors.NewErrEmailIsTaken(params.Email)
	}
	if err != nil {
		a.logger.Error("Auth service: failed to create user",
			"email", params.Email,
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	a.logger.Info("Auth service: user registration completed successfully",
		"email", params.Email,
		"user_id", user.ID)

	return user, nil
}

// Login verifies credentials, records the login and returns a bearer token.
func (a *Auth) Login(ctx context.Context, params model.LoginParams) (string, error) {
	a.logger.Debug("Auth service: starting user login",
		"email", params.Email)

	if params.Email == "" || params.Password == "" {
		return "", apierrors.NewErrValidation("Email and password are required")
	}

	user, err := a.userStore.GetByEmail(ctx, params.Email)
	if errors.Is(err, model.ErrNotFound) {
		_ = a.hasher.Compare("", params.Password)
		a.logger.Info("Auth service: login for unknown email",
			"email", params.Email)
		return "", apierrors.NewErrInvalidCredentials()
	}
	if err != nil {
		return "", fmt.Errorf("failed to get user by email: %w", err)
	}

	err = a.hasher.Compare(user.PasswordHash, params.Password)
	if errors.Is(err, password.ErrMismatch) {
		a.logger.Info("Auth service: password mismatch",
			"email", params.Email)
		return "", apierrors.NewErrInvalidCredentials()
	}
	if err != nil {
		return "", fmt.Errorf("failed to verify password: %w", err)
	}

	token, err := a.tokenManager.GenerateAccessToken(model.Identity{UserID: user.ID, Email: user.Email})
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	err = a.loginEventStore.Create(ctx, model.LoginEvent{
		Email:     user.Email,
		Status:    model.LoginStatusSuccess,
		CreatedAt: a.clock(),
	})
	if err != nil {
		a.logger.Error("Auth service: failed to record login",
			"email", params.Email,
			"error", err.Error())
		return "", fmt.Errorf("failed to record login: %w", err)
	}

	a.logger.Info("Auth service: login completed successfully",
		"email", params.Email,
		"user_id", user.ID)

	return token, nil
}

// Authorize resolves the identity carried by a bearer token.
func (a *Auth) Authorize(_ context.Context, token string) (model.Identity, error) {
	if token == "" {
		return model.Identity{}, apierrors.NewErrMissingAuthorizationToken()
	}

	identity, err := a.tokenManager.ParseAccessToken(token)
	if err != nil {
		a.logger.Debug("Auth service: token rejected",
			"error", err.Error())
		return model.Identity{}, apierrors.NewErrInvalidAuthorizationToken()
	}

	return identity, nil
}
