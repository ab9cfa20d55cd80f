package server

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/travelers/internal/services"
)

// forwardedHeaders are copied from the incoming request to the backend.
var forwardedHeaders = []string{"Content-Type", "Accept", "Accept-Language", "Authorization"}

// Proxy forwards everything under /api/ to the backend with the caller's cookies and relays the response,
// including every Set-Cookie, unchanged in status and body.
type Proxy struct {
	api    *services.APIService
	logger *log.Logger
}

// NewProxy creates a [Proxy] over api.
func NewProxy(api *services.APIService, logger *log.Logger) *Proxy {
	return &Proxy{api: api, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (p *Proxy) Routes() []string {
	return []string{"/api/"}
}

func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api")
	if r.URL.RawQuery != "" {
		path += "?" + r.URL.RawQuery
	}

	header := http.Header{}
	for _, name := range forwardedHeaders {
		if v := r.Header.Get(name); v != "" {
			header.Set(name, v)
		}
	}
	if id := RequestIDFrom(r.Context()); id != "" {
		header.Set(HeaderRequestID, id)
	}

	var body io.Reader
	if r.ContentLength != 0 {
		body = r.Body
	}

	resp, err := p.api.WithCookies(r.Cookies()).Do(r.Context(), r.Method, path, body, header)
	if err != nil {
		p.logger.Warn("backend request failed", "method", r.Method, "path", path, "error", err)
		status := http.StatusBadGateway
		if !errors.Is(err, services.ErrTransient) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, apiError{Status: status, Message: "Backend request failed"})
		return
	}

	relayCookies(w, resp.Headers)
	if ct := resp.Headers.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(resp.Body)
}
