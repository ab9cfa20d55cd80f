package main

import (
	"context"
	"fmt"
	"net/url"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/travelers/internal/formatter"
	"github.com/desertthunder/travelers/internal/shared"
)

// CookiesImport seeds the jar from a cURL command saved from browser DevTools ("Copy as cURL").
//
// The cookies are stored for the --url site, else the cURL target, else the client base URL.
func (r *Runner) CookiesImport(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path to a file containing a cURL command", shared.ErrMissingArgument)
	}

	curlHeaders, err := shared.ParseCurlFile(path)
	if err != nil {
		return fmt.Errorf("failed to parse cURL file: %w", err)
	}
	cookies := curlHeaders.Cookies()
	if len(cookies) == 0 {
		return fmt.Errorf("%w: no cookies in %s", shared.ErrInvalidInput, path)
	}

	c, err := r.openClient(nil)
	if err != nil {
		return err
	}
	defer c.Close()

	target := c.site
	for _, raw := range []string{cmd.String("url"), curlHeaders.URL} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			return fmt.Errorf("%w: cookie URL %q", shared.ErrInvalidArgument, raw)
		}
		target = &url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/"}
		break
	}

	c.cookies.SetCookies(target, cookies)
	r.logger.Info("imported cookies", "count", len(cookies), "site", target.String())

	r.writePlain("✓ Imported %d cookies for %s\n", len(cookies), target.Host)
	for _, ck := range cookies {
		r.writePlain("  • %s\n", ck.Name)
	}
	return nil
}

// CookiesList prints the stored cookies.
func (r *Runner) CookiesList(ctx context.Context, cmd *cli.Command) error {
	c, err := r.openClient(nil)
	if err != nil {
		return err
	}
	defer c.Close()

	stored, err := c.cookies.List()
	if err != nil {
		return err
	}

	var data []byte
	if cmd.Bool("csv") {
		data, err = formatter.CookiesToCSV(stored)
	} else {
		r.writePlainHeader(fmt.Sprintf("Stored cookies (%d)", len(stored)))
		data, err = formatter.CookiesToText(stored)
	}
	if err != nil {
		return err
	}
	return r.writePlain("%s", data)
}

// CookiesClear forgets every cookie stored for the client site.
func (r *Runner) CookiesClear(ctx context.Context, cmd *cli.Command) error {
	c, err := r.openClient(nil)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.cookies.Clear(c.site); err != nil {
		return err
	}
	return r.writePlain("✓ Cleared cookies for %s\n", c.site.Host)
}
