package session

import (
	"context"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/travelers/internal/models"
	"github.com/desertthunder/travelers/internal/services"
)

// AuthBackend is the part of the backend the explicit auth actions need.
type AuthBackend interface {
	Login(ctx context.Context, creds services.Credentials) (*services.AuthResult, error)
	Register(ctx context.Context, reg services.Registration) (*services.AuthResult, error)
	ConfirmGoogle(ctx context.Context, code string) (*services.AuthResult, error)
	MeProfile(ctx context.Context) (*models.UserProfile, error)
	Logout(ctx context.Context) ([]*http.Cookie, error)
}

// Auth performs user-initiated session changes against the store.
type Auth struct {
	store   *Store
	backend AuthBackend
	logger  *log.Logger
}

// NewAuth creates an [Auth] writing to store.
func NewAuth(store *Store, backend AuthBackend, logger *log.Logger) *Auth {
	if logger == nil {
		logger = log.Default()
	}
	return &Auth{store: store, backend: backend, logger: logger}
}

// Login signs in with email and password.
func (a *Auth) Login(ctx context.Context, creds services.Credentials) (*models.UserProfile, error) {
	res, err := a.backend.Login(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	return a.complete(ctx, res)
}

// Register creates an account and signs it in.
func (a *Auth) Register(ctx context.Context, reg services.Registration) (*models.UserProfile, error) {
	res, err := a.backend.Register(ctx, reg)
	if err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}
	return a.complete(ctx, res)
}

// ConfirmGoogle completes a Google sign-in with the code from the provider redirect.
func (a *Auth) ConfirmGoogle(ctx context.Context, code string) (*models.UserProfile, error) {
	res, err := a.backend.ConfirmGoogle(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("google sign-in failed: %w", err)
	}
	return a.complete(ctx, res)
}

// Logout ends the session. The store and the persisted key are cleared even when the backend call fails.
func (a *Auth) Logout(ctx context.Context) error {
	_, err := a.backend.Logout(ctx)

	a.store.Clear()
	a.store.Forget()

	if err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	return nil
}

// complete prefers the full profile and falls back to the action payload.
func (a *Auth) complete(ctx context.Context, res *services.AuthResult) (*models.UserProfile, error) {
	user, err := a.backend.MeProfile(ctx)
	if err != nil {
		a.logger.Debug("profile fetch after sign-in failed, using action payload", "error", err)
		user = res.User
	}
	if user == nil {
		return nil, fmt.Errorf("sign-in response carried no user: %w", models.ErrInvalidProfile)
	}

	a.store.SetUser(user)
	return user, nil
}
