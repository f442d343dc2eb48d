// Handler for miscellaneous endpoints such as health check

package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/yumyai/protclass/logger"
	"go.uber.org/zap"
)

type HealthResponse struct {
	Health    string    `json:"health"`
	Timestamp time.Time `json:"timestamp"`
	Embedding string    `json:"embedding"`
	Error     string    `json:"error,omitempty"`
}

func (app *AppContext) HealthCheck(w http.ResponseWriter, r *http.Request) {

	response := HealthResponse{
		Health:    "ok",
		Timestamp: time.Now(),
		Embedding: "none",
	}
	if app.Analyzer != nil && app.Analyzer.Embedder != nil {
		response.Embedding = app.Analyzer.Embedder.Name()
	}

	status := http.StatusOK
	if app.Store != nil {
		if err := app.Store.Ping(r.Context()); err != nil {
			logger.Error("Health check: database unreachable", zap.Error(err))
			response.Health = "degraded"
			response.Error = err.Error()
			status = http.StatusServiceUnavailable
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)

}
