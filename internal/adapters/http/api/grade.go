package api

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

type gradeResponse struct {
	GameID uuid.UUID `json:"game_id"`
	Graded int       `json:"graded"`
}

// handleGradeGame serves POST /api/v1/games/{gameID}/grade, settling the
// game's pending picks from its recorded scoring facts.
func (s *Server) handleGradeGame(w http.ResponseWriter, r *http.Request) {
	gameID, ok := pathUUID(r, "gameID")
	if !ok {
		writeBadRequest(w, "gameID must be a valid uuid")
		return
	}

	graded, err := s.deps.GradeGame(r.Context(), gameID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gradeResponse{GameID: gameID, Graded: graded})
}

type manualGradeRequest struct {
	FirstScorer string    `json:"first_scorer"`
	AllScorers  []string  `json:"all_scorers"`
	Actor       uuid.UUID `json:"actor"`
}

// handleManualGrade serves POST /api/v1/games/{gameID}/score. An operator
// supplies scoring facts and the game is settled through the same path as
// automated grading.
func (s *Server) handleManualGrade(w http.ResponseWriter, r *http.Request) {
	gameID, ok := pathUUID(r, "gameID")
	if !ok {
		writeBadRequest(w, "gameID must be a valid uuid")
		return
	}

	var req manualGradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.Actor == uuid.Nil {
		writeBadRequest(w, "actor is required")
		return
	}

	graded, err := s.deps.ManualGradeGame(r.Context(), gameID, req.FirstScorer, req.AllScorers, req.Actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gradeResponse{GameID: gameID, Graded: graded})
}

type gradeWeekRequest struct {
	Season int `json:"season"`
	Week   int `json:"week"`
}

type gradeWeekResponse struct {
	Season   int `json:"season"`
	Week     int `json:"week"`
	Games    int `json:"games"`
	Graded   int `json:"graded"`
	Failures int `json:"failures"`
}

// handleGradeWeek serves POST /api/v1/grading-jobs, running a bulk grading
// job over every completed game in the requested week. A job already
// running for the season yields 409.
func (s *Server) handleGradeWeek(w http.ResponseWriter, r *http.Request) {
	var req gradeWeekRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	res, err := s.deps.GradeWeek(r.Context(), scopeForJob(req))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gradeWeekResponse{
		Season:   req.Season,
		Week:     req.Week,
		Games:    res.Games,
		Graded:   res.Graded,
		Failures: len(res.Failures),
	})
}
