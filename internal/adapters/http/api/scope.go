package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/touchline/pickscore/internal/domain/model"
)

var errMissingSeason = errors.New("season query parameter is required")

// scopeFromQuery parses ?season= and the optional ?week= into a Scope.
func scopeFromQuery(r *http.Request) (model.Scope, error) {
	q := r.URL.Query()

	raw := q.Get("season")
	if raw == "" {
		return model.Scope{}, errMissingSeason
	}
	season, err := strconv.Atoi(raw)
	if err != nil {
		return model.Scope{}, errors.New("season must be an integer")
	}

	if raw := q.Get("week"); raw != "" {
		week, err := strconv.Atoi(raw)
		if err != nil {
			return model.Scope{}, errors.New("week must be an integer")
		}
		return model.WeekScope(season, week), nil
	}
	return model.SeasonScope(season), nil
}

// scopeForJob maps a bulk grading request onto a scope; week 0 targets the
// whole season.
func scopeForJob(req gradeWeekRequest) model.Scope {
	if req.Week == 0 {
		return model.SeasonScope(req.Season)
	}
	return model.WeekScope(req.Season, req.Week)
}

// optionalScopeFromQuery returns nil when no season is given, which the
// stats endpoint treats as the all-time scope.
func optionalScopeFromQuery(r *http.Request) (*model.Scope, error) {
	if r.URL.Query().Get("season") == "" {
		return nil, nil
	}
	scope, err := scopeFromQuery(r)
	if err != nil {
		return nil, err
	}
	return &scope, nil
}
