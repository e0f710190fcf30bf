package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/Gurusharan-Fintech/Finlense/internal/infrastructure"
)

// HealthHandler serves liveness and version information.
type HealthHandler struct {
	startedAt time.Time
}

// NewHealthHandler creates a health handler anchored at process start.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{startedAt: time.Now().UTC()}
}

// Routes returns the health routes.
func (h *HealthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/health", h.GetHealth)
	r.Get("/version", h.GetVersion)
	return r
}

// GetHealth handles GET /api/health.
func (h *HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, map[string]interface{}{
		"status":    "healthy",
		"uptime":    time.Since(h.startedAt).Round(time.Second).String(),
		"timestamp": time.Now().UTC(),
	})
}

// GetVersion handles GET /api/version.
func (h *HealthHandler) GetVersion(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, map[string]string{
		"service": infrastructure.ServiceName,
		"version": infrastructure.ServiceVersion,
	})
}
