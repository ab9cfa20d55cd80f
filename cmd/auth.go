package main

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/travelers/internal/formatter"
	"github.com/desertthunder/travelers/internal/models"
	"github.com/desertthunder/travelers/internal/server"
	"github.com/desertthunder/travelers/internal/services"
	"github.com/desertthunder/travelers/internal/session"
	"github.com/desertthunder/travelers/internal/shared"
	"github.com/desertthunder/travelers/internal/web"
)

const defaultCallbackTimeout = 5 * time.Minute

// Login signs in with email and password.
func (r *Runner) Login(ctx context.Context, cmd *cli.Command) error {
	email, err := r.valueOrPrompt(cmd.String("email"), "Email: ", false)
	if err != nil {
		return err
	}
	password, err := r.valueOrPrompt(cmd.String("password"), "Password: ", true)
	if err != nil {
		return err
	}

	c, err := r.openClient(nil)
	if err != nil {
		return err
	}
	defer c.Close()

	r.logger.Info("signing in", "email", email, "api", c.api.BaseURL())
	user, err := c.auth.Login(ctx, services.Credentials{Email: email, Password: password})
	if err != nil {
		return err
	}
	return r.signedIn(ctx, c, user)
}

// Register creates an account and signs it in.
func (r *Runner) Register(ctx context.Context, cmd *cli.Command) error {
	email, err := r.valueOrPrompt(cmd.String("email"), "Email: ", false)
	if err != nil {
		return err
	}
	password, err := r.valueOrPrompt(cmd.String("password"), "Password: ", true)
	if err != nil {
		return err
	}

	c, err := r.openClient(nil)
	if err != nil {
		return err
	}
	defer c.Close()

	user, err := c.auth.Register(ctx, services.Registration{Name: cmd.String("name"), Email: email, Password: password})
	if err != nil {
		return err
	}
	return r.signedIn(ctx, c, user)
}

// LoginGoogle opens the Google consent page and waits for the redirect on the local callback listener.
func (r *Runner) LoginGoogle(ctx context.Context, cmd *cli.Command) error {
	if err := r.config.CheckCallbackAddr(); err != nil {
		return err
	}

	c, err := r.openClient(nil)
	if err != nil {
		return err
	}
	defer c.Close()

	consentURL, err := c.api.GoogleAuthURL(ctx)
	if err != nil {
		return fmt.Errorf("failed to get google consent URL: %w", err)
	}

	var state string
	if u, err := url.Parse(consentURL); err == nil {
		state = u.Query().Get("state")
	}

	renderer, err := web.NewRenderer()
	if err != nil {
		return err
	}
	handler := server.NewOAuthHandler(c.auth.ConfirmGoogle, state, renderer)

	if cmd.Bool("no-browser") {
		r.writePlain("Open this URL to sign in:\n%s\n", consentURL)
	} else if err := r.openBrowser(consentURL); err != nil {
		r.logger.Warn("failed to open browser", "error", err)
		r.writePlain("Open this URL to sign in:\n%s\n", consentURL)
	}

	timeout := cmd.Duration("timeout")
	if timeout <= 0 {
		timeout = defaultCallbackTimeout
	}
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	r.logger.Info("waiting for google callback", "addr", r.config.Client.CallbackAddr, "path", server.PathGoogleCallback)
	result, err := server.ServeCallback(waitCtx, r.config.Client.CallbackAddr, handler, r.logger)
	if err != nil {
		return err
	}
	if err := result.Error(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	return r.signedIn(ctx, c, result.User)
}

// signedIn settles the fresh session and the theme that comes with it, then greets the user.
func (r *Runner) signedIn(ctx context.Context, c *client, user *models.UserProfile) error {
	_, t, err := c.resolve(ctx, user)
	if err != nil {
		r.logger.Warn("signed in but the theme could not be resolved", "error", err)
	}

	r.writePlain("✓ Signed in as %s\n", user.DisplayName())
	if t != "" {
		r.writePlain("Theme: %s\n", t)
	}
	return nil
}

// Logout ends the session on the backend and locally.
func (r *Runner) Logout(ctx context.Context, cmd *cli.Command) error {
	c, err := r.openClient(nil)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Logout(ctx); err != nil {
		r.logger.Warn("backend logout failed; local session cleared", "error", err)
	}
	return r.writePlain("✓ Signed out\n")
}

// WhoAmI restores the session the way a page load would and prints the user.
func (r *Runner) WhoAmI(ctx context.Context, cmd *cli.Command) error {
	c, err := r.openClient(nil)
	if err != nil {
		return err
	}
	defer c.Close()

	outcome, t, err := c.resolve(ctx, nil)
	if err != nil {
		return err
	}
	snapshot := c.store.Snapshot()

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"session": snapshot,
			"outcome": outcome.String(),
			"theme":   t,
		}, cmd.Bool("pretty"))
	}

	if snapshot.User == nil {
		return fmt.Errorf("%w: run `travelers login` first", shared.ErrNotAuthenticated)
	}

	if path := cmd.String("output"); path != "" {
		written, err := formatter.ExportProfile(snapshot.User, t, cmd.String("format"), path)
		if err != nil {
			return err
		}
		return r.writePlain("✓ Profile written to %s\n", written)
	}

	var text []byte
	switch cmd.String("format") {
	case formatter.FormatMarkdown, "md":
		text, err = formatter.ProfileToMarkdown(snapshot.User, t)
	default:
		text, err = formatter.ProfileToText(snapshot.User, t)
	}
	if err != nil {
		return err
	}
	if outcome == session.Preserved {
		r.logger.Warn("backend unreachable, showing the last known session")
	}
	return r.writePlain("%s", text)
}
