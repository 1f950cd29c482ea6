package api

import "net/http"

// handleUserStats serves GET /api/v1/users/{userID}/stats?season=&week=.
// Without a season the response covers the user's full history.
func (s *Server) handleUserStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUUID(r, "userID")
	if !ok {
		writeBadRequest(w, "userID must be a valid uuid")
		return
	}

	scope, err := optionalScopeFromQuery(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	stats, err := s.deps.UserStats(r.Context(), userID, scope)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
