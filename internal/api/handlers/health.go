package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/wonny/ivtracker/pkg/logger"
)

// Pinger is any dependency the health check can probe
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports service liveness and optional dependency status
type HealthHandler struct {
	checks map[string]Pinger
	logger *logger.Logger
}

// NewHealthHandler creates a health handler. Nil pingers are ignored.
func NewHealthHandler(log *logger.Logger, checks map[string]Pinger) *HealthHandler {
	active := make(map[string]Pinger, len(checks))
	for name, p := range checks {
		if p != nil {
			active[name] = p
		}
	}
	return &HealthHandler{checks: active, logger: log.Module("health")}
}

// Check reports "ok" or "degraded" with per-dependency status
// GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "ok"
	code := http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			h.logger.WithError(err).WithField("dependency", name).Warn("Health check failed")
			deps[name] = "down"
			status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "up"
	}

	respondJSON(w, code, map[string]interface{}{
		"status":       status,
		"service":      logger.ServiceName,
		"dependencies": deps,
	})
}
