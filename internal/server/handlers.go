package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/posleasing/leasesync/internal/database"
	"github.com/posleasing/leasesync/internal/diagnostics"
	"github.com/posleasing/leasesync/internal/scheduler"
)

const healthTimeout = 3 * time.Second

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Databases map[string]string `json:"databases"`
}

// StatusResponse is returned by GET /api/status
type StatusResponse struct {
	Scheduler     scheduler.Status         `json:"scheduler"`
	Databases     []database.Stats         `json:"databases"`
	System        *diagnostics.SystemStats `json:"system,omitempty"`
	UptimeSeconds int64                    `json:"uptime_seconds"`
	Version       string                   `json:"version"`
}

// handleHealth pings every database; any failure reports degraded
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	response := HealthResponse{
		Status:    "healthy",
		Service:   "leasesync",
		Version:   s.version,
		Databases: make(map[string]string, len(s.databases)),
	}
	status := http.StatusOK

	for _, db := range s.databases {
		if err := db.HealthCheck(ctx); err != nil {
			s.log.Warn().Err(err).Str("database", db.Name()).Msg("Database health check failed")
			response.Databases[db.Name()] = "unreachable"
			response.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		response.Databases[db.Name()] = "ok"
	}

	s.writeJSON(w, status, response)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	response := StatusResponse{
		Databases:     make([]database.Stats, 0, len(s.databases)),
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
		Version:       s.version,
	}
	if s.scheduler != nil {
		response.Scheduler = s.scheduler.Status()
	}
	for _, db := range s.databases {
		response.Databases = append(response.Databases, db.GetStats())
	}
	if s.system != nil {
		stats := s.system.Stats()
		response.System = &stats
	}

	s.writeJSON(w, http.StatusOK, response)
}

// handleRun starts an out-of-schedule cycle
// POST /api/run
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if s.scheduler == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":  "error",
			"message": "Scheduler not configured",
		})
		return
	}

	err := s.scheduler.TryRunNow()
	switch {
	case errors.Is(err, scheduler.ErrBusy):
		s.writeJSON(w, http.StatusConflict, map[string]string{
			"status":  "error",
			"message": "A cycle is already running",
		})
		return
	case err != nil:
		s.log.Error().Err(err).Msg("Failed to trigger cycle")
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":  "error",
			"message": err.Error(),
		})
		return
	}

	s.log.Info().Msg("Manual cycle triggered")
	s.writeJSON(w, http.StatusAccepted, map[string]string{
		"status":  "success",
		"message": "Cycle started",
	})
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
