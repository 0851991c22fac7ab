package api

import (
	"net/http"
	"time"

	"github.com/curionet/curio/internal/api/respond"
	"github.com/curionet/curio/internal/storage"
)

// HealthHandler reports service and storage liveness.
type HealthHandler struct {
	store storage.Store
}

func NewHealthHandler(store storage.Store) *HealthHandler {
	return &HealthHandler{store: store}
}

// CheckHealth GET /v1/health
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// CheckStorageHealth GET /v1/health/db
func (h *HealthHandler) CheckStorageHealth(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"status": "healthy", "storage": "none"})
		return
	}
	if err := h.store.HealthCheck(r.Context()); err != nil {
		respond.WriteError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"status": "healthy", "storage": "ok"})
}
