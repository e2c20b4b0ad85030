// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/streamrace/bountyboard/internal/adapters/ledger"
	"github.com/streamrace/bountyboard/internal/adapters/ocrengine"
	"github.com/streamrace/bountyboard/internal/app"
	"github.com/streamrace/bountyboard/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	StartRace(ctx context.Context, submitter string) app.SessionInfo
	AddScreenshot(ctx context.Context, sessionID string, lines []model.RawLine) (app.ScreenshotReport, error)
	Finalize(ctx context.Context, sessionID string) (app.RaceResult, error)

	Leaderboard(ctx context.Context, limit int) ([]ledger.Entry, error)
	Bounty(ctx context.Context, player string) (ledger.Entry, error)

	EditLastRace(ctx context.Context, remove []string) (app.RaceResult, error)
	UndoLast(ctx context.Context, name string) error
	RemovePlayer(ctx context.Context, name string) error
	Reset(ctx context.Context) error
}

// Server wires HTTP routes for the business API.
type Server struct {
	racesHandler       *RacesHandler
	leaderboardHandler *LeaderboardHandler
	bountyHandler      *BountyHandler
	adminHandler       *AdminHandler
	statsHandler       *StatsHandler
	healthHandler      *HealthHandler
}

// NewServer creates an API server with all handlers. The OCR engine may be
// nil; image submissions are then rejected and only pre-extracted text
// lines are accepted.
func NewServer(deps Dependencies, engine ocrengine.Engine, statsProvider StatsProvider, maxLeaderboardLimit int) *Server {
	return &Server{
		racesHandler:       NewRacesHandler(deps, engine),
		leaderboardHandler: NewLeaderboardHandler(deps, maxLeaderboardLimit),
		bountyHandler:      NewBountyHandler(deps),
		adminHandler:       NewAdminHandler(deps),
		statsHandler:       NewStatsHandler(statsProvider),
		healthHandler:      NewHealthHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/races", MetricsMiddleware(s.racesHandler.HandleStartRace, "races"))
	mux.HandleFunc("/races/", MetricsMiddleware(s.racesHandler.HandleRaceSubpath, "races"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/bounty/", MetricsMiddleware(s.bountyHandler.HandleGetBounty, "bounty"))
	mux.HandleFunc("/admin/last-race/edit", MetricsMiddleware(s.adminHandler.HandleEditLastRace, "admin_edit"))
	mux.HandleFunc("/admin/last-race/undo/", MetricsMiddleware(s.adminHandler.HandleUndoLast, "admin_undo"))
	mux.HandleFunc("/admin/players/", MetricsMiddleware(s.adminHandler.HandleRemovePlayer, "admin_remove"))
	mux.HandleFunc("/admin/reset", MetricsMiddleware(s.adminHandler.HandleReset, "admin_reset"))
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

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// isNotFound translates upstream not-found errors to 404. An expired
// session reads the same as a missing one from the caller's side.
func isNotFound(err error) bool {
	return errors.Is(err, ledger.ErrNotFound) ||
		errors.Is(err, app.ErrSessionNotFound) ||
		errors.Is(err, app.ErrSessionExpired)
}
