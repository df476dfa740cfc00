package api

import (
	"context"
	"errors"
	"net/http"

	service "github.com/okian/starboard/internal/app"
	"github.com/okian/starboard/internal/domain/viewstate"
)

// LeaderboardDependencies defines the interface for leaderboard operations.
type LeaderboardDependencies interface {
	Leaderboard(ctx context.Context, state viewstate.State) (service.View, error)
}

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps LeaderboardDependencies
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies) *LeaderboardHandler {
	return &LeaderboardHandler{deps: deps}
}

// HandleGetLeaderboard handles GET /api/leaderboard. Invalid filter inputs are
// not a request error: the view comes back with state.error set and the day
// filter off.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	state := viewstate.FromQuery(r.URL.Query())
	view, err := h.deps.Leaderboard(r.Context(), state)
	if err != nil {
		status, code, err := loadFailure(op, err)
		writeError(w, status, code, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// YearsDependencies defines the interface for listing loaded years.
type YearsDependencies interface {
	Years(ctx context.Context) ([]string, error)
}

// YearsHandler handles year listing requests.
type YearsHandler struct {
	deps YearsDependencies
}

// NewYearsHandler creates a new years handler.
func NewYearsHandler(deps YearsDependencies) *YearsHandler {
	return &YearsHandler{deps: deps}
}

type yearsResponse struct {
	Years []string `json:"years"`
}

// HandleGetYears handles GET /api/years.
func (h *YearsHandler) HandleGetYears(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_years"
	years, err := h.deps.Years(r.Context())
	if err != nil {
		status, code, err := loadFailure(op, err)
		writeError(w, status, code, err)
		return
	}
	if years == nil {
		years = []string{}
	}
	writeJSON(w, http.StatusOK, yearsResponse{Years: years})
}

// loadFailure maps a failed load cycle to a status, an error code and the
// error reported to the client.
func loadFailure(op string, err error) (int, string, error) {
	if errors.Is(err, service.ErrNotStarted) {
		return http.StatusServiceUnavailable, "unavailable", Wrap(op, err)
	}
	return http.StatusBadGateway, "snapshot_error", WrapKind(op, ErrSnapshot, err)
}
