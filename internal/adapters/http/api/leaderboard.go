package api

import (
	"net/http"

	"github.com/google/uuid"
)

// handleLeaderboard serves GET /api/v1/leaderboard?season=&week=&user=.
// The optional user parameter surfaces that user's row as user_position
// even when they fall outside the returned entries.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFromQuery(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var forUser *uuid.UUID
	if raw := r.URL.Query().Get("user"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeBadRequest(w, "user must be a valid uuid")
			return
		}
		forUser = &id
	}

	lb, err := s.deps.Leaderboard(r.Context(), scope, forUser)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lb)
}
