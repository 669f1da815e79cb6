package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/kozaktomas/reverse-prompt/internal/store"
)

const defaultRunsLimit = 50

// RunsHandler lists persisted pipeline runs.
type RunsHandler struct {
	runs store.RunReader
}

// NewRunsHandler creates a new runs handler. runs may be nil when no
// database is configured.
func NewRunsHandler(runs store.RunReader) *RunsHandler {
	return &RunsHandler{runs: runs}
}

// List returns stored runs, newest first, with limit/offset paging.
func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		respondError(w, http.StatusServiceUnavailable, "run storage is not configured")
		return
	}

	limit := queryInt(r, "limit", defaultRunsLimit)
	offset := queryInt(r, "offset", 0)

	runs, err := h.runs.List(r.Context(), limit, offset)
	if err != nil {
		log.Printf("failed to list runs: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}

	total, err := h.runs.Count(r.Context())
	if err != nil {
		log.Printf("failed to count runs: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to count runs")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"runs":   runs,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
