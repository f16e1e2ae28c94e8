package handlers

import (
	"net/http"

	"github.com/wonny/outlierline/internal/realtime/hub"
	"github.com/wonny/outlierline/internal/scheduler"
	"github.com/wonny/outlierline/pkg/database"
)

// StatusHandler reports health of the running service
type StatusHandler struct {
	service   string
	db        *database.DB
	hub       *hub.Hub
	scheduler *scheduler.Scheduler
}

// NewStatusHandler creates the handler. Every dependency may be nil.
func NewStatusHandler(service string, db *database.DB, h *hub.Hub, sched *scheduler.Scheduler) *StatusHandler {
	return &StatusHandler{service: service, db: db, hub: h, scheduler: sched}
}

// Health returns 200 unless the archive database is unreachable
// GET /health
func (h *StatusHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status":  "ok",
		"service": h.service,
	}

	status := http.StatusOK
	if h.db != nil {
		health := h.db.HealthCheck(r.Context())
		resp["database"] = health
		if !health.Healthy {
			resp["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}
	}

	respondJSON(w, status, resp)
}

// Status returns websocket and scheduler statistics
// GET /api/status
func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{}
	if h.hub != nil {
		resp["hub"] = h.hub.Stats()
	}
	if h.scheduler != nil {
		resp["jobs"] = h.scheduler.Stats()
	}
	respondJSON(w, http.StatusOK, resp)
}
