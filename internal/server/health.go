package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/travelers/internal/services"
)

// Health probes the backend, retrying while it wakes up. It always answers 200: the backend's own payload when
// a probe succeeds, {"status":"waking-up"} otherwise.
type Health struct {
	api     *services.APIService
	retries int
	delay   time.Duration
	logger  *log.Logger
}

// NewHealth creates a [Health] handler making at most retries probes spaced by delay.
func NewHealth(api *services.APIService, retries int, delay time.Duration, logger *log.Logger) *Health {
	if retries < 1 {
		retries = 1
	}
	return &Health{api: api, retries: retries, delay: delay, logger: logger}
}

func (h *Health) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if resp, ok := h.probe(r.Context()); ok {
		if resp.IsJSON {
			writeJSON(w, http.StatusOK, resp.JSONData)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "waking-up"})
}

func (h *Health) probe(ctx context.Context) (*services.APIResponse, bool) {
	pace := rate.NewLimiter(rate.Every(h.delay), 1)
	if h.delay <= 0 {
		pace = rate.NewLimiter(rate.Inf, 1)
	}

	for attempt := 1; attempt <= h.retries; attempt++ {
		if err := pace.Wait(ctx); err != nil {
			return nil, false
		}

		resp, err := h.api.Get(ctx, services.PathHealth)
		if err == nil && resp.OK() {
			return resp, true
		}
		h.logger.Debug("backend health probe failed", "attempt", attempt, "error", err)
	}
	h.logger.Warn("backend did not answer health probes", "attempts", h.retries)
	return nil, false
}
