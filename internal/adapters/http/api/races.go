package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/streamrace/bountyboard/internal/adapters/ocrengine"
	"github.com/streamrace/bountyboard/internal/app"
	"github.com/streamrace/bountyboard/internal/domain/merge"
	"github.com/streamrace/bountyboard/internal/domain/model"
)

// RacesHandler handles race session requests.
type RacesHandler struct {
	deps   Dependencies
	engine ocrengine.Engine
}

// NewRacesHandler creates a new races handler.
func NewRacesHandler(deps Dependencies, engine ocrengine.Engine) *RacesHandler {
	return &RacesHandler{deps: deps, engine: engine}
}

type startRaceRequest struct {
	Submitter string `json:"submitter"`
}

// HandleStartRace handles POST /races.
func (h *RacesHandler) HandleStartRace(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req startRaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Submitter) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("missing submitter"))
		return
	}
	info := h.deps.StartRace(r.Context(), req.Submitter)
	writeJSON(w, http.StatusCreated, info)
}

// HandleRaceSubpath routes POST /races/{id}/screenshots and
// POST /races/{id}/finalize.
func (h *RacesHandler) HandleRaceSubpath(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/races/")
	id, action, ok := strings.Cut(rest, "/")
	if !ok || id == "" {
		http.NotFound(w, r)
		return
	}
	switch action {
	case "screenshots":
		h.handleScreenshot(w, r, id)
	case "finalize":
		h.handleFinalize(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

type screenshotRequest struct {
	Lines []string `json:"lines"`
}

// handleScreenshot accepts either an image body (runs OCR) or a JSON body
// with pre-extracted text lines, useful for tests and manual review.
func (h *RacesHandler) handleScreenshot(w http.ResponseWriter, r *http.Request, sessionID string) {
	var lines []model.RawLine
	contentType := r.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(contentType, "image/"):
		if h.engine == nil {
			writeError(w, http.StatusUnsupportedMediaType, "no_ocr", errors.New("image submissions disabled; post text lines"))
			return
		}
		img, err := ocrengine.DecodeImage(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_image", err)
			return
		}
		lines, err = h.engine.Lines(r.Context(), img, 0)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "ocr_failed", err)
			return
		}
	default:
		var req screenshotRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Lines) == 0 {
			writeError(w, http.StatusBadRequest, "bad_request", errors.New("missing lines"))
			return
		}
		for i, text := range req.Lines {
			lines = append(lines, model.RawLine{Text: text, Position: i})
		}
	}

	report, err := h.deps.AddScreenshot(r.Context(), sessionID, lines)
	if err != nil {
		switch {
		case isNotFound(err):
			writeError(w, http.StatusNotFound, "not_found", err)
		case errors.Is(err, app.ErrEmptyScreenshot):
			// Return the report anyway; the unparsed lines explain why.
			writeJSON(w, http.StatusUnprocessableEntity, report)
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *RacesHandler) handleFinalize(w http.ResponseWriter, r *http.Request, sessionID string) {
	result, err := h.deps.Finalize(r.Context(), sessionID)
	if err != nil {
		var conflict *merge.ConflictError
		switch {
		case isNotFound(err):
			writeError(w, http.StatusNotFound, "not_found", err)
		case errors.As(err, &conflict):
			writeError(w, http.StatusConflict, "merge_conflict", conflict)
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, result)
}
