package handler

import (
	"context"
	"net/http"
	"time"
)

const serviceName = "AlphaLabs Mobile API"

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type dbStatus struct {
	OK    bool    `json:"ok"`
	Error *string `json:"error"`
}

type healthResponse struct {
	Status  string   `json:"status"`
	Service string   `json:"service"`
	DB      dbStatus `json:"db"`
}

// HealthHandler serves the liveness endpoints.
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// HandleRoot handles GET / requests.
func (h *HealthHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": serviceName + " is running!"})
}

// HandleHealth handles GET /health requests. A failing database makes the
// service degraded but the endpoint itself still answers 200.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{
		Status:  "healthy",
		Service: serviceName,
		DB:      dbStatus{OK: true},
	}
	if err := h.db.PingContext(ctx); err != nil {
		msg := err.Error()
		resp.Status = "degraded"
		resp.DB = dbStatus{OK: false, Error: &msg}
	}

	writeJSON(w, http.StatusOK, resp)
}
