package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/travelers/internal/models"
	"github.com/desertthunder/travelers/internal/shared"
)

// ThemeGet prints the theme a page load would settle on.
func (r *Runner) ThemeGet(ctx context.Context, cmd *cli.Command) error {
	c, err := r.openClient(nil)
	if err != nil {
		return err
	}
	defer c.Close()

	_, t, err := c.resolve(ctx, nil)
	if err != nil {
		return err
	}
	return r.writePlain("%s\n", t)
}

// ThemeSet stores the theme locally and, when signed in, on the backend.
func (r *Runner) ThemeSet(ctx context.Context, cmd *cli.Command) error {
	raw := cmd.StringArg("theme")
	if raw == "" {
		return fmt.Errorf("%w: theme (light or dark)", shared.ErrMissingArgument)
	}
	t, ok := models.ParseTheme(raw)
	if !ok {
		return fmt.Errorf("%w: unknown theme %q", shared.ErrInvalidArgument, raw)
	}

	return r.changeTheme(ctx, func(c *client) (models.Theme, error) {
		return t, c.themes.SetTheme(t)
	})
}

// ThemeToggle switches between light and dark.
func (r *Runner) ThemeToggle(ctx context.Context, cmd *cli.Command) error {
	return r.changeTheme(ctx, func(c *client) (models.Theme, error) {
		return c.themes.Toggle()
	})
}

func (r *Runner) changeTheme(ctx context.Context, change func(*client) (models.Theme, error)) error {
	c, err := r.openClient(nil)
	if err != nil {
		return err
	}
	defer c.Close()

	if _, _, err := c.resolve(ctx, nil); err != nil {
		return err
	}

	t, err := change(c)
	if err != nil {
		return fmt.Errorf("failed to change theme: %w", err)
	}

	where := "locally"
	if c.boot.IsAuthenticated() {
		where = "locally and on your account"
	}
	return r.writePlain("✓ Theme set to %s (%s)\n", t, where)
}
