// package formatter renders session data for the terminal and for files: profiles as text or Markdown, stored
// cookies as a masked table or CSV
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/desertthunder/travelers/internal/models"
	"github.com/desertthunder/travelers/internal/repositories"
)

// Format names accepted by [ExportProfile].
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
)

// ProfileToText renders a user and the active theme as aligned "Label: value" lines.
func ProfileToText(user *models.UserProfile, theme models.Theme) ([]byte, error) {
	if user == nil {
		return nil, fmt.Errorf("no user to format")
	}

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	for _, f := range profileFields(user) {
		fmt.Fprintf(w, "%s:\t%s\n", f[0], f[1])
	}
	fmt.Fprintf(w, "Theme:\t%s\n", theme)
	if err := w.Flush(); err != nil {
		return nil, fmt.Errorf("failed to write profile: %w", err)
	}
	return buf.Bytes(), nil
}

// ProfileToMarkdown renders a user as a Markdown document with an optional avatar.
func ProfileToMarkdown(user *models.UserProfile, theme models.Theme) ([]byte, error) {
	if user == nil {
		return nil, fmt.Errorf("no user to format")
	}

	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("# %s\n\n", user.DisplayName()))

	if user.AvatarURL != "" {
		buf.WriteString(fmt.Sprintf("![Avatar](%s)\n\n", user.AvatarURL))
	}
	if user.Description != "" {
		buf.WriteString(fmt.Sprintf("> %s\n\n", user.Description))
	}

	for _, f := range profileFields(user) {
		if f[0] == "Name" || f[0] == "About" {
			continue
		}
		buf.WriteString(fmt.Sprintf("- **%s**: %s\n", f[0], f[1]))
	}
	buf.WriteString(fmt.Sprintf("- **Theme**: %s\n", theme))

	return buf.Bytes(), nil
}

func profileFields(user *models.UserProfile) [][2]string {
	fields := [][2]string{{"Name", user.DisplayName()}}
	if user.Email != "" {
		fields = append(fields, [2]string{"Email", user.Email})
	}
	fields = append(fields, [2]string{"ID", user.ID})
	if user.Description != "" {
		fields = append(fields, [2]string{"About", user.Description})
	}
	fields = append(fields, [2]string{"Stories", strconv.Itoa(user.ArticlesAmount)})
	if user.CreatedAt != "" {
		fields = append(fields, [2]string{"Member since", user.CreatedAt})
	}
	return fields
}

// CookiesToCSV converts stored cookies to CSV with columns: Origin, Name, Value, Path, Expires, Secure, HttpOnly.
//
// Values are written in full; the file is as sensitive as the jar itself.
func CookiesToCSV(cookies []repositories.StoredCookie) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Origin", "Name", "Value", "Path", "Expires", "Secure", "HttpOnly"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, c := range cookies {
		record := []string{
			c.Origin,
			c.Name,
			c.Value,
			c.Path,
			expiry(c.Expires),
			strconv.FormatBool(c.Secure),
			strconv.FormatBool(c.HTTPOnly),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// CookiesToText renders stored cookies as a table with masked values.
func CookiesToText(cookies []repositories.StoredCookie) ([]byte, error) {
	var buf bytes.Buffer
	if len(cookies) == 0 {
		buf.WriteString("No stored cookies\n")
		return buf.Bytes(), nil
	}

	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ORIGIN\tNAME\tVALUE\tPATH\tEXPIRES")
	for _, c := range cookies {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", c.Origin, c.Name, MaskValue(c.Value), c.Path, expiry(c.Expires))
	}
	if err := w.Flush(); err != nil {
		return nil, fmt.Errorf("failed to write cookies: %w", err)
	}
	return buf.Bytes(), nil
}

// MaskValue keeps the first and last four characters of long values.
func MaskValue(v string) string {
	if len(v) <= 12 {
		return strings.Repeat("*", len(v))
	}
	return v[:4] + "…" + v[len(v)-4:]
}

func expiry(t time.Time) string {
	if t.IsZero() {
		return "session"
	}
	return t.UTC().Format(time.RFC3339)
}

// ExportProfile writes the profile in format to path and returns the path written.
//
// Defaults to {user.ID}.txt or {user.ID}.md when path is empty.
func ExportProfile(user *models.UserProfile, theme models.Theme, format, path string) (string, error) {
	var (
		data []byte
		err  error
		ext  string
	)
	switch format {
	case FormatText, "":
		data, err = ProfileToText(user, theme)
		ext = ".txt"
	case FormatMarkdown, "md":
		data, err = ProfileToMarkdown(user, theme)
		ext = ".md"
	default:
		return "", fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return "", fmt.Errorf("failed to generate profile: %w", err)
	}

	if path == "" {
		path = user.ID + ext
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write profile file: %w", err)
	}
	return path, nil
}
