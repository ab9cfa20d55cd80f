package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/url"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/travelers/internal/models"
	"github.com/desertthunder/travelers/internal/repositories"
	"github.com/desertthunder/travelers/internal/services"
	"github.com/desertthunder/travelers/internal/session"
	"github.com/desertthunder/travelers/internal/shared"
	"github.com/desertthunder/travelers/internal/theme"
)

// client is the terminal's stand-in for a browser: a cookie jar and local storage in the profile database, the
// session bootstrapper, and the theme synchronizer rendering into doc.
type client struct {
	db      *sql.DB
	cookies *repositories.CookieStore
	local   *repositories.LocalStorage
	api     *services.APIService
	store   *session.Store
	boot    *session.Bootstrapper
	themes  *theme.Synchronizer
	auth    *session.Auth
	site    *url.URL
	logger  *log.Logger
}

// openClient opens the profile database and wires a client. doc may be nil when nothing renders the theme.
func (r *Runner) openClient(doc theme.Document) (*client, error) {
	base := r.config.ClientBase()
	site, err := url.Parse(base)
	if err != nil || site.Host == "" {
		return nil, fmt.Errorf("%w: client base URL %q", shared.ErrInvalidConfig, base)
	}
	site = &url.URL{Scheme: site.Scheme, Host: site.Host, Path: "/"}

	db, err := shared.OpenProfile(r.config.Database)
	if err != nil {
		return nil, err
	}

	logger := shared.WithLogger(r.logger, "component", "client")
	cookies, err := repositories.NewCookieStore(db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	httpClient := *r.httpClient
	httpClient.Jar = cookies
	if httpClient.Timeout == 0 {
		httpClient.Timeout = r.config.BackendTimeout()
	}
	api := services.NewAPIService(base, &httpClient)

	local := repositories.NewLocalStorage(db)
	store := session.NewStore(local, shared.WithLogger(r.logger, "component", "session"))
	store.Hydrate()

	boot := session.NewBootstrapper(store, api, shared.WithLogger(r.logger, "component", "session"))
	themes := theme.New(theme.Options{
		Session:  boot,
		Cookie:   theme.JarCookie{Jar: cookies, URL: site},
		Local:    theme.LocalKey{KV: local},
		Backend:  api,
		Document: doc,
		Logger:   shared.WithLogger(r.logger, "component", "theme"),
	})

	return &client{
		db:      db,
		cookies: cookies,
		local:   local,
		api:     api,
		store:   store,
		boot:    boot,
		themes:  themes,
		auth:    session.NewAuth(store, api, logger),
		site:    site,
		logger:  logger,
	}, nil
}

// resolve bootstraps the session, optionally from a user already known to be signed in, then resolves the theme.
func (c *client) resolve(ctx context.Context, candidate *models.UserProfile) (session.Outcome, models.Theme, error) {
	outcome := c.boot.Run(ctx, candidate)
	t, err := c.themes.Resolve(ctx)
	if err != nil {
		return outcome, "", fmt.Errorf("failed to resolve theme: %w", err)
	}
	return outcome, t, nil
}

// Logout ends the session on the backend and forgets the tokens locally even when that call fails.
func (c *client) Logout(ctx context.Context) error {
	err := c.auth.Logout(ctx)
	c.forgetTokens()
	return err
}

// forgetTokens drops the session cookies but keeps the theme cookie.
func (c *client) forgetTokens() {
	c.cookies.SetCookies(c.site, []*http.Cookie{
		{Name: models.CookieAccessToken, Path: "/", MaxAge: -1},
		{Name: models.CookieRefreshToken, Path: "/", MaxAge: -1},
	})
}

// Close waits for background theme saves, detaches the synchronizer and closes the database.
func (c *client) Close() error {
	c.themes.Wait()
	c.themes.Close()
	return c.db.Close()
}
