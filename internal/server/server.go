// package server contains the routing, middleware and handlers of the backend-for-frontend web server
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/travelers/internal/services"
	"github.com/desertthunder/travelers/internal/shared"
	"github.com/desertthunder/travelers/internal/web"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
// Common middleware includes logging, authentication, CORS, rate limiting, etc.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for HTTP request handlers that own several routes.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
// Implementations register handlers, apply middleware, and configure the HTTP server.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

const shutdownTimeout = 5 * time.Second

// Server is the backend-for-frontend: API proxy, route guards, OAuth callback and shell pages.
type Server struct {
	cfg      *shared.Config
	api      *services.APIService
	renderer *web.Renderer
	logger   *log.Logger
	router   *BasicRouter
}

// New builds a [Server] for cfg talking to the backend through api.
func New(cfg *shared.Config, api *services.APIService, logger *log.Logger) (*Server, error) {
	renderer, err := web.NewRenderer()
	if err != nil {
		return nil, err
	}

	s := &Server{cfg: cfg, api: api, renderer: renderer, logger: logger}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() *BasicRouter {
	limit := rate.Limit(s.cfg.Proxy.RateLimit)
	if s.cfg.Proxy.RateLimit <= 0 {
		limit = rate.Inf
	}
	burst := s.cfg.Proxy.Burst
	if burst < 1 {
		burst = 1
	}

	r := NewBasicRouter()
	r.Use(
		RequestID(),
		Logging(s.logger),
		RateLimit(rate.NewLimiter(limit, burst)),
		NoStore(),
		RouteGuard(),
	)

	proxy := NewProxy(s.api, s.logger)
	r.Handle(http.MethodGet, "/api/health", NewHealth(s.api, s.cfg.Proxy.HealthRetries, s.cfg.HealthRetryDelay(), s.logger))
	r.Handle(http.MethodPost, "/api"+services.PathGoogleConfirm, NewConfirmOAuth(proxy))
	r.Handler(proxy)

	r.Handle(http.MethodGet, PathGoogleCallback, NewGoogleCallback(s.api, s.logger))

	pages := NewPages(s.api, s.renderer, s.cfg.Server.SecureCookies, s.logger)
	for _, path := range web.Paths() {
		pattern := path
		if path == "/" {
			pattern = "/{$}"
		}
		r.Handle(http.MethodGet, pattern, pages)
	}
	return r
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ServerAddr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", srv.Addr, "backend", s.api.BaseURL())
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

// ServeCallback runs a throwaway server on addr until the one-shot handler reports a result or ctx ends.
func ServeCallback(ctx context.Context, addr string, handler *OAuthHandler, logger *log.Logger) (OAuthResult, error) {
	r := NewBasicRouter()
	r.Use(Logging(logger))
	r.Handler(handler)

	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	select {
	case result := <-handler.Result():
		return result, nil
	case err := <-errc:
		return OAuthResult{}, fmt.Errorf("callback server failed: %w", err)
	case <-ctx.Done():
		return OAuthResult{}, fmt.Errorf("%w: waiting for google callback", shared.ErrTimeout)
	}
}
