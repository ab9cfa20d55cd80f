package theme

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/travelers/internal/models"
	"github.com/desertthunder/travelers/internal/shared"
)

type memStore struct {
	mu    sync.Mutex
	value string
	set   bool
	loads atomic.Int32
	saves atomic.Int32
}

func newMemStore(value string) *memStore {
	return &memStore{value: value, set: value != ""}
}

func (m *memStore) Load() (string, bool, error) {
	m.loads.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value, m.set, nil
}

func (m *memStore) Save(theme models.Theme) error {
	m.saves.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value, m.set = theme.String(), true
	return nil
}

func (m *memStore) get() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value
}

type fakeBackend struct {
	mu      sync.Mutex
	theme   models.Theme
	getErr  error
	saveErr error
	block   chan struct{}
	gets    atomic.Int32
	saves   []models.Theme
}

func (f *fakeBackend) GetTheme(ctx context.Context) (models.Theme, bool, error) {
	f.gets.Add(1)
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return "", false, f.getErr
	}
	return f.theme, f.theme != "", nil
}

func (f *fakeBackend) SaveTheme(ctx context.Context, theme models.Theme) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves = append(f.saves, theme)
	f.theme = theme
	return nil
}

func (f *fakeBackend) saved() []models.Theme {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Theme(nil), f.saves...)
}

type fakeSession struct {
	done          chan struct{}
	authenticated bool
}

func resolvedSession(authenticated bool) *fakeSession {
	s := &fakeSession{done: make(chan struct{}), authenticated: authenticated}
	close(s.done)
	return s
}

func (s *fakeSession) Done() <-chan struct{} { return s.done }
func (s *fakeSession) IsAuthenticated() bool { return s.authenticated }

var errUnreachable = errors.New("connection refused")

func quietLogger() *log.Logger {
	return log.New(&bytes.Buffer{})
}

type fixture struct {
	cookie  *memStore
	local   *memStore
	backend *fakeBackend
	doc     *Attribute
}

func (f *fixture) synchronizer(session Session, logger *log.Logger) *Synchronizer {
	if logger == nil {
		logger = quietLogger()
	}
	opts := Options{
		Session:  session,
		Cookie:   f.cookie,
		Local:    f.local,
		Document: f.doc,
		Logger:   logger,
	}
	if f.backend != nil {
		opts.Backend = f.backend
	}
	return New(opts)
}

func newFixture(cookie, local string, backend *fakeBackend) *fixture {
	return &fixture{cookie: newMemStore(cookie), local: newMemStore(local), backend: backend, doc: &Attribute{}}
}

func TestResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("Anonymous Fallback Is Light", func(t *testing.T) {
		f := newFixture("", "", &fakeBackend{})
		got, err := f.synchronizer(resolvedSession(false), nil).Resolve(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got != models.ThemeLight || f.doc.Value() != models.ThemeLight {
			t.Errorf("expected light everywhere, got %s doc=%s", got, f.doc.Value())
		}
		if f.cookie.get() != "light" || f.local.get() != "light" {
			t.Errorf("expected stores rewritten to light, got cookie=%s local=%s", f.cookie.get(), f.local.get())
		}
		if f.backend.gets.Load() != 0 {
			t.Error("anonymous sessions should not read the backend")
		}
	})

	t.Run("Local Supersedes Cookie", func(t *testing.T) {
		f := newFixture("dark", "light", &fakeBackend{getErr: errUnreachable})
		got, _ := f.synchronizer(resolvedSession(false), nil).Resolve(ctx)
		if got != models.ThemeLight {
			t.Errorf("expected light, got %s", got)
		}
		if f.cookie.get() != "light" {
			t.Errorf("expected cookie rewritten to light, got %s", f.cookie.get())
		}
	})

	t.Run("Cookie Used Without Local", func(t *testing.T) {
		f := newFixture("dark", "", nil)
		got, _ := f.synchronizer(resolvedSession(false), nil).Resolve(ctx)
		if got != models.ThemeDark || f.local.get() != "dark" {
			t.Errorf("expected dark from cookie, got %s local=%s", got, f.local.get())
		}
	})

	t.Run("Invalid Values Are Ignored", func(t *testing.T) {
		f := newFixture("dark", "sepia", nil)
		got, _ := f.synchronizer(resolvedSession(false), nil).Resolve(ctx)
		if got != models.ThemeDark {
			t.Errorf("expected dark, got %s", got)
		}
		if f.local.get() != "dark" {
			t.Errorf("expected invalid local value replaced, got %s", f.local.get())
		}
	})

	t.Run("Authenticated Backend Wins", func(t *testing.T) {
		f := newFixture("light", "light", &fakeBackend{theme: models.ThemeDark})
		s := f.synchronizer(resolvedSession(true), nil)
		got, _ := s.Resolve(ctx)
		s.Wait()

		if got != models.ThemeDark || f.doc.Value() != models.ThemeDark {
			t.Errorf("expected dark, got %s doc=%s", got, f.doc.Value())
		}
		if f.cookie.get() != "dark" || f.local.get() != "dark" {
			t.Errorf("expected stores rewritten to dark, got cookie=%s local=%s", f.cookie.get(), f.local.get())
		}
		if len(f.backend.saved()) != 0 {
			t.Error("backend with a stored value should not be written")
		}
	})

	t.Run("First Login Initializes Backend", func(t *testing.T) {
		f := newFixture("", "dark", &fakeBackend{})
		s := f.synchronizer(resolvedSession(true), nil)
		got, _ := s.Resolve(ctx)
		s.Wait()

		if got != models.ThemeDark {
			t.Errorf("expected dark, got %s", got)
		}
		if saves := f.backend.saved(); len(saves) != 1 || saves[0] != models.ThemeDark {
			t.Errorf("expected backend initialized to dark, got %v", saves)
		}
	})

	t.Run("Backend Failure Keeps Local And Warns Once", func(t *testing.T) {
		var buf bytes.Buffer
		f := newFixture("light", "dark", &fakeBackend{getErr: errUnreachable})
		got, err := f.synchronizer(resolvedSession(true), log.New(&buf)).Resolve(ctx)
		if err != nil {
			t.Fatalf("backend failure must not surface, got %v", err)
		}
		if got != models.ThemeDark {
			t.Errorf("expected local dark, got %s", got)
		}
		if n := strings.Count(buf.String(), "failed to fetch theme"); n != 1 {
			t.Errorf("expected one warning, got %d: %s", n, buf.String())
		}
		if len(f.backend.saved()) != 0 {
			t.Error("an unreachable backend should not be initialized")
		}
	})

	t.Run("Second Resolve Is A No-Op", func(t *testing.T) {
		f := newFixture("", "", &fakeBackend{theme: models.ThemeDark})
		s := f.synchronizer(resolvedSession(true), nil)
		s.Resolve(ctx)
		s.Resolve(ctx)
		if f.backend.gets.Load() != 1 {
			t.Errorf("expected one backend read, got %d", f.backend.gets.Load())
		}
	})

	t.Run("Waits For Session", func(t *testing.T) {
		f := newFixture("dark", "", nil)
		session := &fakeSession{done: make(chan struct{})}
		s := f.synchronizer(session, nil)

		result := make(chan models.Theme, 1)
		go func() {
			got, _ := s.Resolve(ctx)
			result <- got
		}()

		time.Sleep(20 * time.Millisecond)
		if f.cookie.loads.Load() != 0 {
			t.Fatal("resolution started before the session was resolved")
		}
		if s.State() != Resolving {
			t.Errorf("expected Resolving while waiting, got %s", s.State())
		}

		close(session.done)
		select {
		case got := <-result:
			if got != models.ThemeDark {
				t.Errorf("expected dark, got %s", got)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("resolution did not finish")
		}
		if s.State() != Ready {
			t.Errorf("expected Ready, got %s", s.State())
		}
	})

	t.Run("Canceled Wait Can Retry", func(t *testing.T) {
		f := newFixture("", "", nil)
		session := &fakeSession{done: make(chan struct{})}
		s := f.synchronizer(session, nil)

		canceled, cancel := context.WithCancel(ctx)
		cancel()
		if _, err := s.Resolve(canceled); !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if s.State() != Uninitialized {
			t.Fatalf("expected Uninitialized, got %s", s.State())
		}

		close(session.done)
		if got, err := s.Resolve(ctx); err != nil || got != models.ThemeLight {
			t.Errorf("expected light on retry, got %s err=%v", got, err)
		}
	})

	t.Run("Close Discards In Flight Result", func(t *testing.T) {
		backend := &fakeBackend{theme: models.ThemeDark, block: make(chan struct{})}
		f := newFixture("light", "light", backend)
		s := f.synchronizer(resolvedSession(true), nil)

		errs := make(chan error, 1)
		go func() {
			_, err := s.Resolve(ctx)
			errs <- err
		}()

		for backend.gets.Load() == 0 {
			time.Sleep(time.Millisecond)
		}
		s.Close()
		close(backend.block)

		if err := <-errs; !errors.Is(err, ErrClosed) {
			t.Errorf("expected ErrClosed, got %v", err)
		}
		if f.cookie.get() != "light" || f.local.get() != "light" {
			t.Error("detached resolution must not write stores")
		}
		if f.cookie.saves.Load() != 0 {
			t.Errorf("expected no cookie writes, got %d", f.cookie.saves.Load())
		}
	})
}

func TestSetTheme(t *testing.T) {
	ctx := context.Background()

	t.Run("Before Ready", func(t *testing.T) {
		s := newFixture("", "", nil).synchronizer(resolvedSession(false), nil)
		if err := s.SetTheme(models.ThemeDark); !errors.Is(err, ErrNotReady) {
			t.Errorf("expected ErrNotReady, got %v", err)
		}
	})

	t.Run("Invalid Value", func(t *testing.T) {
		s := newFixture("", "", nil).synchronizer(resolvedSession(false), nil)
		s.Resolve(ctx)
		if err := s.SetTheme("sepia"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("Anonymous Stays Local", func(t *testing.T) {
		f := newFixture("", "", &fakeBackend{})
		s := f.synchronizer(resolvedSession(false), nil)
		s.Resolve(ctx)

		if err := s.SetTheme(models.ThemeDark); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		s.Wait()
		if f.doc.Value() != models.ThemeDark || f.cookie.get() != "dark" || f.local.get() != "dark" {
			t.Error("expected dark applied locally")
		}
		if len(f.backend.saved()) != 0 {
			t.Error("anonymous toggles should not reach the backend")
		}
	})

	t.Run("Round Trip Through Reload", func(t *testing.T) {
		backend := &fakeBackend{theme: models.ThemeLight}
		f := newFixture("light", "light", backend)
		s := f.synchronizer(resolvedSession(true), nil)
		s.Resolve(ctx)

		if err := s.SetTheme(models.ThemeDark); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		s.Wait()
		s.Close()

		reloaded := &fixture{cookie: f.cookie, local: f.local, backend: backend, doc: &Attribute{}}
		got, err := reloaded.synchronizer(resolvedSession(true), nil).Resolve(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got != models.ThemeDark || reloaded.doc.Value() != models.ThemeDark {
			t.Errorf("expected dark after reload, got %s", got)
		}
		if f.cookie.get() != "dark" || f.local.get() != "dark" || backend.theme != models.ThemeDark {
			t.Errorf("expected dark in all three stores, got cookie=%s local=%s backend=%s", f.cookie.get(), f.local.get(), backend.theme)
		}
	})

	t.Run("Save Failure Does Not Revert", func(t *testing.T) {
		var buf bytes.Buffer
		f := newFixture("", "", &fakeBackend{theme: models.ThemeLight, saveErr: errUnreachable})
		s := f.synchronizer(resolvedSession(true), log.New(&buf))
		s.Resolve(ctx)

		if err := s.SetTheme(models.ThemeDark); err != nil {
			t.Fatalf("save failures must not surface, got %v", err)
		}
		s.Wait()
		if s.Current() != models.ThemeDark || f.local.get() != "dark" {
			t.Error("expected local value to stay dark")
		}
		if !strings.Contains(buf.String(), "failed to save theme") {
			t.Errorf("expected a warning, got %s", buf.String())
		}
	})

	t.Run("Toggle", func(t *testing.T) {
		f := newFixture("", "", nil)
		s := f.synchronizer(resolvedSession(false), nil)
		s.Resolve(ctx)

		got, err := s.Toggle()
		if err != nil || got != models.ThemeDark {
			t.Fatalf("expected dark, got %s err=%v", got, err)
		}
		got, _ = s.Toggle()
		if got != models.ThemeLight || f.local.get() != "light" {
			t.Errorf("expected light, got %s", got)
		}
	})

	t.Run("Rapid Toggles Settle On Last Value", func(t *testing.T) {
		backend := &fakeBackend{theme: models.ThemeLight}
		s := newFixture("", "", backend).synchronizer(resolvedSession(true), nil)
		s.Resolve(ctx)

		for range 5 {
			s.Toggle()
		}
		s.Wait()

		saves := backend.saved()
		if len(saves) == 0 || saves[len(saves)-1] != models.ThemeDark {
			t.Errorf("expected last save to be dark, got %v", saves)
		}
	})

	t.Run("Closed", func(t *testing.T) {
		s := newFixture("", "", nil).synchronizer(resolvedSession(false), nil)
		s.Resolve(ctx)
		s.Close()
		if err := s.SetTheme(models.ThemeDark); !errors.Is(err, ErrClosed) {
			t.Errorf("expected ErrClosed, got %v", err)
		}
	})
}

type mapKV map[string]string

func (m mapKV) Get(key string) (string, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}

func (m mapKV) Set(key, value string) error {
	m[key] = value
	return nil
}

func TestStores(t *testing.T) {
	t.Run("Jar Cookie", func(t *testing.T) {
		jar, _ := cookiejar.New(nil)
		u, _ := url.Parse("http://127.0.0.1:3000/")
		c := JarCookie{Jar: jar, URL: u}

		if _, ok, _ := c.Load(); ok {
			t.Fatal("expected empty jar")
		}
		c.Save(models.ThemeDark)
		if v, ok, _ := c.Load(); !ok || v != "dark" {
			t.Errorf("expected dark, got %q", v)
		}
	})

	t.Run("Request Cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: models.CookieTheme, Value: "dark"})
		rec := httptest.NewRecorder()
		c := RequestCookie{Request: req, Writer: rec}

		if v, ok, _ := c.Load(); !ok || v != "dark" {
			t.Errorf("expected dark, got %q", v)
		}
		c.Save(models.ThemeLight)

		set := rec.Result().Cookies()
		if len(set) != 1 {
			t.Fatalf("expected one Set-Cookie, got %d", len(set))
		}
		if set[0].Value != "light" || set[0].MaxAge != models.ThemeCookieMaxAge || set[0].SameSite != http.SameSiteLaxMode {
			t.Errorf("unexpected cookie %+v", set[0])
		}
	})

	t.Run("Local Key", func(t *testing.T) {
		kv := mapKV{}
		l := LocalKey{KV: kv}
		l.Save(models.ThemeDark)
		if kv[models.LocalKeyTheme] != "dark" {
			t.Errorf("expected dark under theme key, got %v", kv)
		}
		if v, ok, _ := l.Load(); !ok || v != "dark" {
			t.Errorf("expected dark, got %q", v)
		}
	})
}
