package api

import (
	"net/http"
	"strconv"
)

const defaultTopWords = 20

func (s *Server) handleCMSStats(w http.ResponseWriter, r *http.Request) {
	if s.cmsStats == nil {
		jsonError(w, "cms stats unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"endpoint": s.cfg.MicroCMSEndpoint,
		"stats":    s.cmsStats.Snapshot(),
	})
}

func (s *Server) handleWordStats(w http.ResponseWriter, r *http.Request) {
	top := defaultTopWords
	if v := r.URL.Query().Get("top"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			jsonError(w, "top must be a positive integer", http.StatusBadRequest)
			return
		}
		top = n
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"documents": s.hist.Documents(),
		"words":     s.hist.Top(top),
	})
}
