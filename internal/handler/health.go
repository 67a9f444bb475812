package handler

import (
	"net/http"
	"time"
)

type healthResponse struct {
	Status  string  `json:"status"`
	Service string  `json:"service"`
	Uptime  float64 `json:"uptime_seconds"`
}

// HealthHandler serves liveness probes for the API and its sub-surfaces.
type HealthHandler struct {
	started time.Time
	ping    func() error // optional database ping, nil = skip
}

// NewHealthHandler creates a HealthHandler. ping may be nil when no
// database is configured.
func NewHealthHandler(ping func() error) *HealthHandler {
	return &HealthHandler{started: time.Now(), ping: ping}
}

// Health handles GET /api/health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.respond(w, "givebridge-api")
}

// DonationsHealth handles GET /api/donations/health.
func (h *HealthHandler) DonationsHealth(w http.ResponseWriter, r *http.Request) {
	h.respond(w, "donations")
}

// WebhooksHealth handles GET /api/webhooks/health.
func (h *HealthHandler) WebhooksHealth(w http.ResponseWriter, r *http.Request) {
	h.respond(w, "webhooks")
}

func (h *HealthHandler) respond(w http.ResponseWriter, service string) {
	if h.ping != nil {
		if err := h.ping(); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, healthResponse{
				Status:  "unhealthy",
				Service: service,
				Uptime:  time.Since(h.started).Seconds(),
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Service: service,
		Uptime:  time.Since(h.started).Seconds(),
	})
}
