package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/desertthunder/travelers/internal/models"
	"github.com/desertthunder/travelers/internal/shared"
)

// Backend paths, relative to the API base URL.
const (
	PathGoogleAuthURL = "/auth/google/get-oauth-url"
	PathGoogleConfirm = "/auth/google/confirm-oauth"
	PathLogin         = "/auth/login"
	PathRegister      = "/auth/register"
	PathLogout        = "/auth/logout"
	PathRefresh       = "/auth/refresh"
	PathMe            = "/users/me"
	PathMeProfile     = "/users/me/profile"
	PathTheme         = "/theme"
	PathHealth        = "/health"
)

// Credentials is the body of POST /auth/login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the body of POST /auth/register.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is the outcome of an explicit auth action.
//
// User is nil when the payload did not carry a recognisable user; Cookies holds the session cookies the backend set.
type AuthResult struct {
	User     *models.UserProfile
	Cookies  []*http.Cookie
	Response *APIResponse
}

// GoogleAuthURL fetches the provider consent URL from { data: { url } }.
func (a *APIService) GoogleAuthURL(ctx context.Context) (string, error) {
	resp, err := a.Get(ctx, PathGoogleAuthURL)
	if err != nil {
		return "", err
	}
	if err := classify(resp, plainEndpoint); err != nil {
		return "", err
	}

	var payload struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	if err := resp.Decode(&payload); err != nil {
		return "", err
	}
	if payload.Data.URL == "" {
		return "", fmt.Errorf("%w: missing oauth url", shared.ErrAPIRequest)
	}
	return payload.Data.URL, nil
}

// ConfirmGoogle exchanges an OAuth code for a backend session.
func (a *APIService) ConfirmGoogle(ctx context.Context, code string) (*AuthResult, error) {
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("%w: code is required", shared.ErrMissingArgument)
	}
	return a.authAction(ctx, PathGoogleConfirm, map[string]string{"code": code})
}

// Login authenticates with email and password.
func (a *APIService) Login(ctx context.Context, creds Credentials) (*AuthResult, error) {
	return a.authAction(ctx, PathLogin, creds)
}

// Register creates an account and signs it in.
func (a *APIService) Register(ctx context.Context, reg Registration) (*AuthResult, error) {
	return a.authAction(ctx, PathRegister, reg)
}

// Logout ends the backend session and returns the cookies that clear it.
func (a *APIService) Logout(ctx context.Context) ([]*http.Cookie, error) {
	resp, err := a.Post(ctx, PathLogout, nil)
	if err != nil {
		return nil, err
	}
	if err := classify(resp, plainEndpoint); err != nil {
		return resp.Cookies(), err
	}
	return resp.Cookies(), nil
}

// Refresh renews the session cookies. A rejected refresh is both [ErrUnauthenticated] and [shared.ErrRefreshFailed].
func (a *APIService) Refresh(ctx context.Context) ([]*http.Cookie, error) {
	resp, err := a.Post(ctx, PathRefresh, nil)
	if err != nil {
		return nil, err
	}
	if err := classify(resp, sessionEndpoint); err != nil {
		if IsTransient(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", shared.ErrRefreshFailed, err)
	}
	return resp.Cookies(), nil
}

// Me returns the signed-in user from GET /users/me.
func (a *APIService) Me(ctx context.Context) (*models.UserProfile, error) {
	return a.currentUser(ctx, PathMe)
}

// MeProfile returns the signed-in user from GET /users/me/profile.
func (a *APIService) MeProfile(ctx context.Context) (*models.UserProfile, error) {
	return a.currentUser(ctx, PathMeProfile)
}

// GetTheme returns the stored preference. A 404, an empty value or an unknown value reports false.
func (a *APIService) GetTheme(ctx context.Context) (models.Theme, bool, error) {
	resp, err := a.Get(ctx, PathTheme)
	if err != nil {
		return "", false, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return "", false, nil
	}
	if err := classify(resp, sessionEndpoint); err != nil {
		return "", false, err
	}

	theme, ok := models.ParseTheme(themeField(resp.JSONData))
	return theme, ok, nil
}

// SaveTheme stores the preference for the signed-in user.
func (a *APIService) SaveTheme(ctx context.Context, theme models.Theme) error {
	if !theme.Valid() {
		return fmt.Errorf("%w: theme %q", shared.ErrInvalidArgument, theme)
	}

	resp, err := a.PostJSON(ctx, PathTheme, map[string]string{"theme": theme.String()})
	if err != nil {
		return err
	}
	return classify(resp, sessionEndpoint)
}

// Health probes the backend once.
func (a *APIService) Health(ctx context.Context) error {
	resp, err := a.Get(ctx, PathHealth)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return &StatusError{
			StatusCode: resp.StatusCode,
			Message:    resp.Message(),
			Err:        fmt.Errorf("%w: %w", ErrTransient, shared.ErrServiceUnavailable),
		}
	}
	return nil
}

func (a *APIService) authAction(ctx context.Context, path string, body any) (*AuthResult, error) {
	resp, err := a.PostJSON(ctx, path, body)
	if err != nil {
		return nil, err
	}
	if err := classify(resp, actionEndpoint); err != nil {
		return nil, err
	}

	result := &AuthResult{Cookies: resp.Cookies(), Response: resp}
	if user, err := models.NormalizeUserValue(resp.JSONData); err == nil {
		result.User = user
	}
	return result, nil
}

func (a *APIService) currentUser(ctx context.Context, path string) (*models.UserProfile, error) {
	resp, err := a.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := classify(resp, sessionEndpoint); err != nil {
		return nil, err
	}
	return models.NormalizeUserValue(resp.JSONData)
}

// themeField reads { theme } or { data: { theme } }.
func themeField(v any) string {
	m, ok := v.(map[string]any)
	if !ok {
		return ""
	}
	if s, ok := m["theme"].(string); ok {
		return s
	}
	return themeField(m["data"])
}
