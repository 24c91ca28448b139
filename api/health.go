package api

import (
	"net/http"
	"time"

	"github.com/DropBy-app/dropby/config"
	"github.com/DropBy-app/dropby/logger"
)

var startTime = time.Now()

// HealthResponse provides detailed health information
type HealthResponse struct {
	Status          string `json:"status"`
	Timestamp       string `json:"timestamp"`
	Uptime          string `json:"uptime"`
	Version         string `json:"version,omitempty"`
	StoreBackend    string `json:"store_backend"`
	ComposerEnabled bool   `json:"composer_enabled"`
}

// NewHealthHandler returns a health check handler
func NewHealthHandler(cfg *config.Config, lg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := HealthResponse{
			Status:          "healthy",
			Timestamp:       time.Now().UTC().Format(time.RFC3339),
			Uptime:          time.Since(startTime).String(),
			Version:         cfg.Version,
			StoreBackend:    cfg.StoreBackend,
			ComposerEnabled: cfg.ComposerEnabled(),
		}

		respondWithJSON(w, r, http.StatusOK, response, lg)
	}
}
