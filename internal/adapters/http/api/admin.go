package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/streamrace/bountyboard/internal/app"
)

// AdminHandler handles administrative corrections. Authentication sits in
// front of these routes at deployment time; the handlers only implement
// the operations.
type AdminHandler struct {
	deps Dependencies
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(deps Dependencies) *AdminHandler {
	return &AdminHandler{deps: deps}
}

type editLastRaceRequest struct {
	Remove []string `json:"remove"`
}

// HandleEditLastRace handles POST /admin/last-race/edit.
func (h *AdminHandler) HandleEditLastRace(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req editLastRaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Remove) == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("missing remove list"))
		return
	}
	result, err := h.deps.EditLastRace(r.Context(), req.Remove)
	if err != nil {
		h.writeAdminError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleUndoLast handles POST /admin/last-race/undo/{player}.
func (h *AdminHandler) HandleUndoLast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	player := strings.TrimPrefix(r.URL.Path, "/admin/last-race/undo/")
	if player == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrMissingPlayer)
		return
	}
	if err := h.deps.UndoLast(r.Context(), player); err != nil {
		h.writeAdminError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reversed", "player": player})
}

// HandleRemovePlayer handles DELETE /admin/players/{player}.
func (h *AdminHandler) HandleRemovePlayer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.NotFound(w, r)
		return
	}
	player := strings.TrimPrefix(r.URL.Path, "/admin/players/")
	if player == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrMissingPlayer)
		return
	}
	if err := h.deps.RemovePlayer(r.Context(), player); err != nil {
		h.writeAdminError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed", "player": player})
}

// HandleReset handles POST /admin/reset.
func (h *AdminHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if err := h.deps.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (h *AdminHandler) writeAdminError(w http.ResponseWriter, err error) {
	switch {
	case isNotFound(err), errors.Is(err, app.ErrNotInLastRace):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, app.ErrNoLastRace):
		writeError(w, http.StatusConflict, "no_last_race", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
