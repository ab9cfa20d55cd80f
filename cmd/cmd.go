// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand writes the config file and prepares the profile database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create config.toml and initialize the profile database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   r.configPathOrDefault(),
			},
		},
		Action: r.Setup,
	}
}

// serveCommand runs the backend-for-frontend web server.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the web front end: API proxy, route guards and server-rendered pages",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (overrides server.host and server.port)",
			},
		},
		Action: r.Serve,
	}
}

// loginCommand signs in with email and password, or with Google.
func loginCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Sign in with email and password",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "email",
				Aliases: []string{"e"},
				Usage:   "Account email",
			},
			&cli.StringFlag{
				Name:  "password",
				Usage: "Account password (prompted when omitted)",
			},
		},
		Action: r.Login,
		Commands: []*cli.Command{
			{
				Name:  "google",
				Usage: "Sign in with Google in the browser",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "no-browser",
						Usage: "Print the consent URL instead of opening it",
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "How long to wait for the browser redirect",
						Value: defaultCallbackTimeout,
					},
				},
				Action: r.LoginGoogle,
			},
		},
	}
}

// registerCommand creates an account.
func registerCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "register",
		Usage: "Create an account and sign in",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "name",
				Aliases:  []string{"n"},
				Usage:    "Display name",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "email",
				Aliases: []string{"e"},
				Usage:   "Account email",
			},
			&cli.StringFlag{
				Name:  "password",
				Usage: "Account password (prompted when omitted)",
			},
		},
		Action: r.Register,
	}
}

// logoutCommand ends the session.
func logoutCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "Sign out and forget the local session",
		Action: r.Logout,
	}
}

// whoamiCommand shows the restored session.
func whoamiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "Restore the session and show the signed-in user",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON output",
				Value: true,
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Text format: text or markdown",
				Value: "text",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the profile to a file instead of stdout",
			},
		},
		Action: r.WhoAmI,
	}
}

// themeCommand reads and changes the theme preference.
func themeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "theme",
		Usage: "Show or change the light/dark theme",
		Commands: []*cli.Command{
			{
				Name:   "get",
				Usage:  "Print the resolved theme",
				Action: r.ThemeGet,
			},
			{
				Name:  "set",
				Usage: "Set the theme (light or dark)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "theme"},
				},
				Action: r.ThemeSet,
			},
			{
				Name:   "toggle",
				Usage:  "Switch between light and dark",
				Action: r.ThemeToggle,
			},
		},
	}
}

// cookiesCommand manages the persisted cookie jar.
func cookiesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cookies",
		Usage: "Manage the stored session cookies",
		Commands: []*cli.Command{
			{
				Name:  "import",
				Usage: "Seed the jar from a cURL command copied from browser DevTools",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "url",
						Usage: "Site the cookies belong to (default: the cURL target, then client.base_url)",
					},
				},
				Action: r.CookiesImport,
			},
			{
				Name:  "list",
				Usage: "List stored cookies with masked values",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "csv",
						Usage: "Output CSV with full values",
					},
				},
				Action: r.CookiesList,
			},
			{
				Name:   "clear",
				Usage:  "Forget every cookie stored for the client site",
				Action: r.CookiesClear,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive session and theme view",
		Action:  r.TUI,
	}
}
