package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/travelers/internal/models"
	"github.com/desertthunder/travelers/internal/services"
	"github.com/desertthunder/travelers/internal/session"
	"github.com/desertthunder/travelers/internal/theme"
	"github.com/desertthunder/travelers/internal/web"
)

// Pages renders the shell pages. Each request runs its own session bootstrap and theme resolution so the HTML
// carries the same state the client would arrive at.
type Pages struct {
	api      *services.APIService
	renderer *web.Renderer
	secure   bool
	logger   *log.Logger
}

// NewPages creates a [Pages] handler.
func NewPages(api *services.APIService, renderer *web.Renderer, secure bool, logger *log.Logger) *Pages {
	return &Pages{api: api, renderer: renderer, secure: secure, logger: logger}
}

func (p *Pages) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	page, ok := web.NewPage(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	ctx := r.Context()
	backend := newRequestBackend(p.api, r.Cookies())

	store := session.NewStore(nil, p.logger)
	boot := session.NewBootstrapper(store, backend, p.logger)
	boot.Run(ctx, p.candidate(ctx, backend))
	page.Session = store.Snapshot()

	themes := theme.New(theme.Options{
		Session:  boot,
		Cookie:   theme.RequestCookie{Request: r, Writer: w, Secure: p.secure},
		Backend:  backend,
		Document: page,
		Logger:   p.logger,
	})
	if _, err := themes.Resolve(ctx); err != nil {
		p.logger.Warn("theme resolution failed", "error", err)
	}

	setCookies(w, backend.Relayed())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := p.renderer.Render(w, page); err != nil {
		p.logger.Error("failed to render page", "path", r.URL.Path, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// candidate fetches the server-side user. It is skipped without session cookies and when the access token is
// known to have expired, leaving the refresh to the bootstrapper.
func (p *Pages) candidate(ctx context.Context, backend *requestBackend) *models.UserProfile {
	tok, ok := session.TokensFromCookies(backend.Cookies())
	if !ok || session.NeedsRefresh(tok) {
		return nil
	}

	user, err := backend.MeProfile(ctx)
	if err != nil {
		p.logger.Debug("no server-side user", "error", err)
		return nil
	}
	return user
}

// requestBackend talks to the backend with one request's cookies. A successful refresh replaces those cookies
// for later calls and queues the new ones for the response.
type requestBackend struct {
	mu      sync.Mutex
	base    *services.APIService
	cookies []*http.Cookie
	relayed []*http.Cookie
}

func newRequestBackend(base *services.APIService, cookies []*http.Cookie) *requestBackend {
	return &requestBackend{base: base, cookies: cookies}
}

var errNoCredentials = fmt.Errorf("%w: no session cookies", services.ErrUnauthenticated)

func (b *requestBackend) Cookies() []*http.Cookie {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*http.Cookie(nil), b.cookies...)
}

// Relayed returns the cookies set by the backend during this request.
func (b *requestBackend) Relayed() []*http.Cookie {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*http.Cookie(nil), b.relayed...)
}

func (b *requestBackend) client() (*services.APIService, bool) {
	cookies := b.Cookies()
	if _, ok := session.TokensFromCookies(cookies); !ok {
		return nil, false
	}
	return b.base.WithCookies(cookies), true
}

func (b *requestBackend) Me(ctx context.Context) (*models.UserProfile, error) {
	api, ok := b.client()
	if !ok {
		return nil, errNoCredentials
	}
	return api.Me(ctx)
}

func (b *requestBackend) MeProfile(ctx context.Context) (*models.UserProfile, error) {
	api, ok := b.client()
	if !ok {
		return nil, errNoCredentials
	}
	return api.MeProfile(ctx)
}

func (b *requestBackend) Refresh(ctx context.Context) ([]*http.Cookie, error) {
	api, ok := b.client()
	if !ok {
		return nil, errNoCredentials
	}

	cookies, err := api.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	b.merge(cookies)
	return cookies, nil
}

func (b *requestBackend) GetTheme(ctx context.Context) (models.Theme, bool, error) {
	api, ok := b.client()
	if !ok {
		return "", false, errNoCredentials
	}
	return api.GetTheme(ctx)
}

func (b *requestBackend) SaveTheme(ctx context.Context, t models.Theme) error {
	api, ok := b.client()
	if !ok {
		return errNoCredentials
	}
	return api.SaveTheme(ctx, t)
}

func (b *requestBackend) merge(updates []*http.Cookie) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, u := range updates {
		kept := b.cookies[:0:0]
		for _, c := range b.cookies {
			if c.Name != u.Name {
				kept = append(kept, c)
			}
		}
		if u.MaxAge >= 0 && u.Value != "" {
			kept = append(kept, &http.Cookie{Name: u.Name, Value: u.Value})
		}
		b.cookies = kept
		b.relayed = append(b.relayed, u)
	}
}
