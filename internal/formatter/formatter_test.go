package formatter

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/travelers/internal/models"
	"github.com/desertthunder/travelers/internal/repositories"
	th "github.com/desertthunder/travelers/internal/testing"
)

func testUser() *models.UserProfile {
	return &models.UserProfile{
		ID:             "u1",
		Name:           "Ada Lovelace",
		Email:          "ada@example.com",
		AvatarURL:      "https://cdn.example.com/ada.png",
		Description:    "Walks across Europe",
		ArticlesAmount: 7,
		CreatedAt:      "2024-03-01T10:00:00Z",
	}
}

func TestProfile(t *testing.T) {
	t.Run("ProfileToText", func(t *testing.T) {
		data, err := ProfileToText(testUser(), models.ThemeDark)
		if err != nil {
			t.Fatalf("ProfileToText failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{"Name:", "Ada Lovelace", "ada@example.com", "Stories:", "7", "Theme:", "dark"} {
			if !strings.Contains(output, want) {
				t.Errorf("text missing %q, got: %s", want, output)
			}
		}
	})

	t.Run("ProfileToText omits empty optional fields", func(t *testing.T) {
		data, err := ProfileToText(&models.UserProfile{ID: "u2"}, models.ThemeLight)
		if err != nil {
			t.Fatalf("ProfileToText failed: %v", err)
		}

		output := string(data)
		if strings.Contains(output, "Email:") || strings.Contains(output, "About:") {
			t.Errorf("expected no empty fields, got: %s", output)
		}
		if !strings.Contains(output, "u2") {
			t.Errorf("expected id as display name, got: %s", output)
		}
	})

	t.Run("ProfileToText nil user", func(t *testing.T) {
		if _, err := ProfileToText(nil, models.ThemeLight); err == nil {
			t.Error("expected error for nil user")
		}
	})

	t.Run("ProfileToMarkdown", func(t *testing.T) {
		data, err := ProfileToMarkdown(testUser(), models.ThemeLight)
		if err != nil {
			t.Fatalf("ProfileToMarkdown failed: %v", err)
		}

		output := string(data)
		if !strings.HasPrefix(output, "# Ada Lovelace\n") {
			t.Errorf("expected title heading, got: %s", output)
		}
		if !strings.Contains(output, "![Avatar](https://cdn.example.com/ada.png)") {
			t.Errorf("expected avatar image, got: %s", output)
		}
		if !strings.Contains(output, "> Walks across Europe") {
			t.Errorf("expected description quote, got: %s", output)
		}
		if !strings.Contains(output, "- **Email**: ada@example.com") {
			t.Errorf("expected email bullet, got: %s", output)
		}
		if !strings.Contains(output, "- **Theme**: light") {
			t.Errorf("expected theme bullet, got: %s", output)
		}
	})

	t.Run("ExportProfile", func(t *testing.T) {
		dir := t.TempDir()

		t.Run("writes markdown to the given path", func(t *testing.T) {
			path := filepath.Join(dir, "me.md")
			written, err := ExportProfile(testUser(), models.ThemeDark, FormatMarkdown, path)
			if err != nil {
				t.Fatalf("ExportProfile failed: %v", err)
			}
			if written != path {
				t.Errorf("expected %s, got %s", path, written)
			}
			th.AssertFileExists(t, path)
			if content := th.MustReadFile(t, path); !strings.Contains(content, "# Ada Lovelace") {
				t.Errorf("unexpected content: %s", content)
			}
		})

		t.Run("defaults to the user id", func(t *testing.T) {
			t.Chdir(dir)

			written, err := ExportProfile(testUser(), models.ThemeDark, FormatText, "")
			if err != nil {
				t.Fatalf("ExportProfile failed: %v", err)
			}
			if written != "u1.txt" {
				t.Errorf("expected u1.txt, got %s", written)
			}
			th.AssertFileExists(t, filepath.Join(dir, "u1.txt"))
		})

		t.Run("rejects unknown formats", func(t *testing.T) {
			if _, err := ExportProfile(testUser(), models.ThemeDark, "pdf", ""); err == nil {
				t.Error("expected error for unknown format")
			}
		})
	})
}

func TestCookies(t *testing.T) {
	expires := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	cookies := []repositories.StoredCookie{
		{Origin: "http://127.0.0.1:3000", Name: "accessToken", Value: "eyJhbGciOiJIUzI1NiJ9.payload.sig", Path: "/", Expires: expires, HTTPOnly: true},
		{Origin: "http://127.0.0.1:3000", Name: "theme", Value: "dark", Path: "/"},
	}

	t.Run("CookiesToCSV", func(t *testing.T) {
		data, err := CookiesToCSV(cookies)
		if err != nil {
			t.Fatalf("CookiesToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "Origin,Name,Value,Path,Expires,Secure,HttpOnly") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "eyJhbGciOiJIUzI1NiJ9.payload.sig") {
			t.Error("CSV should carry full values")
		}
		if !strings.Contains(output, "2030-01-02T03:04:05Z") {
			t.Error("CSV missing expiry")
		}
		if !strings.Contains(output, ",session,") {
			t.Error("CSV missing session marker")
		}
		if lines := strings.Split(strings.TrimSpace(output), "\n"); len(lines) != 3 {
			t.Errorf("expected 3 lines, got %d", len(lines))
		}
	})

	t.Run("CookiesToText masks values", func(t *testing.T) {
		data, err := CookiesToText(cookies)
		if err != nil {
			t.Fatalf("CookiesToText failed: %v", err)
		}

		output := string(data)
		if strings.Contains(output, "payload") {
			t.Errorf("expected masked token, got: %s", output)
		}
		if !strings.Contains(output, "eyJh….sig") {
			t.Errorf("expected token prefix, got: %s", output)
		}
		if !strings.Contains(output, "****") {
			t.Errorf("expected short value masked, got: %s", output)
		}
	})

	t.Run("CookiesToText empty", func(t *testing.T) {
		data, _ := CookiesToText(nil)
		if string(data) != "No stored cookies\n" {
			t.Errorf("unexpected output: %q", data)
		}
	})

	t.Run("MaskValue", func(t *testing.T) {
		tests := []struct {
			in, want string
		}{
			{"", ""},
			{"dark", "****"},
			{"abcdefghijklmnop", "abcd…mnop"},
		}
		for _, tt := range tests {
			if got := MaskValue(tt.in); got != tt.want {
				t.Errorf("MaskValue(%q) = %q, want %q", tt.in, got, tt.want)
			}
		}
	})
}
