package http_handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/baechuer/account-service/internal/logger"
	"github.com/baechuer/account-service/internal/transport/http/response"
)

// Check probes one dependency.
type Check func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]Check
}

// NewHealthHandler takes named dependency probes. Nil probes are skipped so
// the in-memory dev setup reports healthy.
func NewHealthHandler(checks map[string]Check) *HealthHandler {
	out := make(map[string]Check, len(checks))
	for name, c := range checks {
		if c != nil {
			out[name] = c
		}
	}
	return &HealthHandler{checks: out}
}

// Healthz handles GET /healthz
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{"status": "ok"}
	code := http.StatusOK
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			logger.WithCtx(r.Context()).Warn().Err(err).Str("dependency", name).Msg("health check failed")
			status[name] = "unavailable"
			status["status"] = "unavailable"
			code = http.StatusServiceUnavailable
			continue
		}
		status[name] = "ok"
	}
	response.WriteJSON(w, code, status)
}
