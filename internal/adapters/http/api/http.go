// Package api declares HTTP contracts and route registration helpers. It
// maps core operations onto routes and core errors onto status codes;
// nothing below it knows about transport.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/touchline/pickscore/internal/adapters/jobs"
	"github.com/touchline/pickscore/internal/adapters/repository"
	"github.com/touchline/pickscore/internal/app"
	"github.com/touchline/pickscore/internal/domain/grading"
	"github.com/touchline/pickscore/internal/domain/model"
	"github.com/touchline/pickscore/internal/domain/types"
	"github.com/touchline/pickscore/pkg/metrics"
)

// Dependencies bundles the core operations the HTTP handlers expose.
type Dependencies interface {
	GradeGame(ctx context.Context, gameID uuid.UUID) (int, error)
	ManualGradeGame(ctx context.Context, gameID uuid.UUID, firstScorer string, allScorers []string, actor uuid.UUID) (int, error)
	OverridePick(ctx context.Context, pickID uuid.UUID, status model.PickStatus, primary, secondary int, actor uuid.UUID) (*model.Pick, error)
	GradeWeek(ctx context.Context, scope model.Scope) (*jobs.Result, error)
	Leaderboard(ctx context.Context, scope model.Scope, forUser *uuid.UUID) (*types.Leaderboard, error)
	UserStats(ctx context.Context, userID uuid.UUID, scope *model.Scope) (*types.UserStats, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	deps Dependencies
}

// NewServer creates a new API server.
func NewServer(deps Dependencies) *Server {
	return &Server{deps: deps}
}

// Register attaches all routes to the router.
func (s *Server) Register(r *mux.Router) {
	r.HandleFunc("/healthz", MetricsMiddleware(s.handleHealth, "healthz")).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{})).Methods(http.MethodGet)

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/leaderboard", MetricsMiddleware(s.handleLeaderboard, "leaderboard")).Methods(http.MethodGet)
	v1.HandleFunc("/users/{userID}/stats", MetricsMiddleware(s.handleUserStats, "stats")).Methods(http.MethodGet)
	v1.HandleFunc("/games/{gameID}/grade", MetricsMiddleware(s.handleGradeGame, "grade")).Methods(http.MethodPost)
	v1.HandleFunc("/games/{gameID}/score", MetricsMiddleware(s.handleManualGrade, "manual_grade")).Methods(http.MethodPost)
	v1.HandleFunc("/grading-jobs", MetricsMiddleware(s.handleGradeWeek, "grade_week")).Methods(http.MethodPost)
	v1.HandleFunc("/picks/{pickID}/override", MetricsMiddleware(s.handleOverride, "override")).Methods(http.MethodPost)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError translates core errors into the API's status contract:
// NotFound 404, InvalidState 400, ConcurrencyConflict 409, Validation 422,
// transient timeouts 503, everything else 500.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Code: "not_found", Message: err.Error()})
	case errors.Is(err, app.ErrJobActive):
		writeJSON(w, http.StatusConflict, errorResponse{Code: "conflict", Message: err.Error()})
	case errors.Is(err, model.ErrInvalidScope):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Code: "validation", Message: err.Error()})
	case errors.Is(err, grading.ErrGameNotCompleted), errors.Is(err, grading.ErrInvalidOverride):
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "invalid_state", Message: err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Code: "transient", Message: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Code: "internal_error", Message: err.Error()})
	}
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Code: "bad_request", Message: msg})
}

func pathUUID(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	return id, err == nil
}
