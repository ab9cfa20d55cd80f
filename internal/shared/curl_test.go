package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const devtoolsCurl = `curl 'https://travel.example.com/api/users/me' \
  -H 'accept: application/json' \
  -H 'user-agent: Mozilla/5.0' \
  -b 'accessToken=abc.def.ghi; refreshToken=r-123; theme=dark' \
  --compressed`

func TestParseCurlCommand(t *testing.T) {
	t.Run("Cookie Flag", func(t *testing.T) {
		h, err := ParseCurlCommand([]byte(devtoolsCurl))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if h.URL != "https://travel.example.com/api/users/me" {
			t.Errorf("unexpected url %q", h.URL)
		}
		if h.Headers["accept"] != "application/json" {
			t.Errorf("expected accept header, got %v", h.Headers)
		}
		if h.Cookie != "accessToken=abc.def.ghi; refreshToken=r-123; theme=dark" {
			t.Errorf("unexpected cookie %q", h.Cookie)
		}
	})

	t.Run("Cookie Header", func(t *testing.T) {
		cmd := `curl "http://localhost:3000/api/theme" -H "Cookie: accessToken=a1" -H "x-test: 1"`
		h, err := ParseCurlCommand([]byte(cmd))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if h.Cookie != "accessToken=a1" {
			t.Errorf("unexpected cookie %q", h.Cookie)
		}
		if _, ok := h.Headers["Cookie"]; ok {
			t.Error("cookie header should not be kept with the other headers")
		}
	})

	t.Run("No Headers", func(t *testing.T) {
		_, err := ParseCurlCommand([]byte("curl https://example.com"))
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestCurlHeadersCookies(t *testing.T) {
	h := &CurlHeaders{Cookie: "accessToken=abc; broken; =nope; theme=light"}
	cookies := h.Cookies()

	if len(cookies) != 2 {
		t.Fatalf("expected 2 cookies, got %d", len(cookies))
	}
	if cookies[0].Name != "accessToken" || cookies[0].Value != "abc" {
		t.Errorf("unexpected first cookie %+v", cookies[0])
	}
	if cookies[1].Name != "theme" || cookies[1].Path != "/" {
		t.Errorf("unexpected second cookie %+v", cookies[1])
	}

	if (&CurlHeaders{}).Cookies() != nil {
		t.Error("expected nil for an empty cookie line")
	}
}

func TestParseCurlFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "request.sh")
	if err := os.WriteFile(path, []byte(devtoolsCurl), 0644); err != nil {
		t.Fatalf("failed to write curl file: %v", err)
	}

	h, err := ParseCurlFile(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(h.Cookies()) != 3 {
		t.Errorf("expected 3 cookies, got %d", len(h.Cookies()))
	}

	if _, err := ParseCurlFile(filepath.Join(t.TempDir(), "missing.sh")); err == nil {
		t.Error("expected error for a missing file")
	}
}
