package server

import (
	"encoding/json"
	"net/http"

	"github.com/zeusync/behave/internal/core/observability/log"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, http.StatusOK, s.GetStats())
}

// handleSnapshot serves the latest report, optionally narrowed to the agent
// named by the "agent" query parameter.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	report, ok := s.Latest()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if agent := r.URL.Query().Get("agent"); agent != "" {
		report = filterReport(report, agent)
		if len(report.Agents) == 0 {
			http.Error(w, "unknown agent", http.StatusNotFound)
			return
		}
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("Failed to write response", log.Error(err))
	}
}
