package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/travelers/internal/models"
	"github.com/desertthunder/travelers/internal/services"
	"github.com/desertthunder/travelers/internal/web"
)

const maxConfirmBody = 64 << 10

// PathGoogleCallback is where the provider sends the browser back with ?code=.
const PathGoogleCallback = "/google-callback"

// ConfirmOAuth rejects a confirm-oauth call without a code before it reaches the backend.
type ConfirmOAuth struct {
	next http.Handler
}

// NewConfirmOAuth wraps next, normally the [Proxy].
func NewConfirmOAuth(next http.Handler) *ConfirmOAuth {
	return &ConfirmOAuth{next: next}
}

func (c *ConfirmOAuth) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxConfirmBody))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Status: http.StatusBadRequest, Message: "Invalid request body"})
		return
	}

	var payload struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || strings.TrimSpace(payload.Code) == "" {
		writeJSON(w, http.StatusBadRequest, apiError{Status: http.StatusBadRequest, Message: "Code is required"})
		return
	}

	r.Body = io.NopCloser(bytes.NewReader(body))
	r.ContentLength = int64(len(body))
	c.next.ServeHTTP(w, r)
}

// GoogleCallback completes a browser Google sign-in on the server: it confirms the code, relays the session
// cookies and redirects home, or to the login page on any failure.
type GoogleCallback struct {
	api    *services.APIService
	logger *log.Logger
}

// NewGoogleCallback creates a [GoogleCallback].
func NewGoogleCallback(api *services.APIService, logger *log.Logger) *GoogleCallback {
	return &GoogleCallback{api: api, logger: logger}
}

func (g *GoogleCallback) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		g.logger.Warn("google callback without code", "error", r.URL.Query().Get("error"))
		http.Redirect(w, r, "/auth/login", http.StatusFound)
		return
	}

	res, err := g.api.WithCookies(r.Cookies()).ConfirmGoogle(r.Context(), code)
	if err != nil {
		g.logger.Warn("google confirmation failed", "error", err)
		http.Redirect(w, r, "/auth/login", http.StatusFound)
		return
	}

	setCookies(w, res.Cookies)
	http.Redirect(w, r, "/", http.StatusFound)
}

// CodeExchange turns a provider code into a signed-in user.
type CodeExchange func(ctx context.Context, code string) (*models.UserProfile, error)

// OAuthResult contains the result of a one-shot OAuth callback.
type OAuthResult struct {
	User *models.UserProfile
	err  error
}

func (o *OAuthResult) Error() error {
	return o.err
}

// OAuthHandler serves a single Google callback for the terminal client.
// Implements the Handler interface for registration with a Router.
type OAuthHandler struct {
	exchange    CodeExchange
	state       string
	renderer    *web.Renderer
	resultChan  chan OAuthResult
	once        sync.Once
	callbackHit bool
	mu          sync.Mutex
}

// NewOAuthHandler creates a handler that passes the callback code to exchange.
//
// When state is non-empty the callback must echo it.
func NewOAuthHandler(exchange CodeExchange, state string, renderer *web.Renderer) *OAuthHandler {
	return &OAuthHandler{
		exchange:   exchange,
		state:      state,
		renderer:   renderer,
		resultChan: make(chan OAuthResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *OAuthHandler) Routes() []string {
	return []string{PathGoogleCallback}
}

// ServeHTTP handles the callback request once; later requests are rejected.
func (h *OAuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	if h.state != "" && r.URL.Query().Get("state") != h.state {
		h.fail(w, http.StatusBadRequest, fmt.Errorf("invalid state parameter"))
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		errParam := r.URL.Query().Get("error")
		errDesc := r.URL.Query().Get("error_description")
		h.fail(w, http.StatusBadRequest, fmt.Errorf("authorization failed: %s - %s", errParam, errDesc))
		return
	}

	user, err := h.exchange(r.Context(), code)
	if err != nil {
		h.fail(w, http.StatusBadGateway, fmt.Errorf("code exchange failed: %w", err))
		return
	}

	h.Send(OAuthResult{User: user})
	h.render(w, http.StatusOK, web.CallbackResult{
		OK:      true,
		Message: fmt.Sprintf("Signed in as %s. You can close this window and return to the terminal.", user.DisplayName()),
	})
}

func (h *OAuthHandler) fail(w http.ResponseWriter, status int, err error) {
	h.Send(OAuthResult{err: err})
	h.render(w, status, web.CallbackResult{Message: err.Error()})
}

func (h *OAuthHandler) render(w http.ResponseWriter, status int, result web.CallbackResult) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if h.renderer == nil {
		fmt.Fprintln(w, result.Message)
		return
	}
	_ = h.renderer.RenderCallback(w, result)
}

// Send sends the OAuth result through the channel (only once).
func (h *OAuthHandler) Send(result OAuthResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving OAuth flow completion.
//
// Channel will receive exactly one result and then be closed.
func (h *OAuthHandler) Result() <-chan OAuthResult {
	return h.resultChan
}
