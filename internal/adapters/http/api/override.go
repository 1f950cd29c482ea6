package api

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/touchline/pickscore/internal/domain/model"
)

type overrideRequest struct {
	Status          model.PickStatus `json:"status"`
	PrimaryPoints   int              `json:"primary_points"`
	SecondaryPoints int              `json:"secondary_points"`
	Actor           uuid.UUID        `json:"actor"`
}

// handleOverride serves POST /api/v1/picks/{pickID}/override, replacing a
// settled pick's result with an operator-supplied one.
func (s *Server) handleOverride(w http.ResponseWriter, r *http.Request) {
	pickID, ok := pathUUID(r, "pickID")
	if !ok {
		writeBadRequest(w, "pickID must be a valid uuid")
		return
	}

	var req overrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.Actor == uuid.Nil {
		writeBadRequest(w, "actor is required")
		return
	}

	pick, err := s.deps.OverridePick(r.Context(), pickID, req.Status, req.PrimaryPoints, req.SecondaryPoints, req.Actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pick)
}
