package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
	"travel-map-service/internal/api/dto"
	"travel-map-service/internal/domain"
	"travel-map-service/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// SessionHandler exposes view sessions: creation, the browser's map and list
// events, and the snapshot stream.
type SessionHandler struct {
	Sessions *services.SessionManager
	// Keepalive is the comment interval on idle streams (15s when zero).
	Keepalive time.Duration
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateSessionRequest
	if err := decodeJSONStrict(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}

	s, err := h.Sessions.Create(req.User, req.Viewer)
	if err != nil {
		if errors.Is(err, services.ErrEmptyUser) {
			writeError(w, r, http.StatusBadRequest, "user is required")
			return
		}
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("create_session_failed")
		writeError(w, r, http.StatusInternalServerError, "could not create session")
		return
	}

	w.Header().Set("Location", "/sessions/"+s.ID)
	writeJSON(w, r, http.StatusCreated, sessionResponse(s))
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, sessionResponse(s))
}

func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.Close(chi.URLParam(r, "id")); err != nil {
		h.writeSessionError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Refresh re-fetches the journal, as after the owner adds or edits an entry.
// `?force=true` bypasses cached copies.
func (h *SessionHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	force := false
	if v := r.URL.Query().Get("force"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "force must be a boolean")
			return
		}
		force = b
	}

	if err := h.Sessions.Refresh(chi.URLParam(r, "id"), force); err != nil {
		h.writeSessionError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusAccepted, map[string]string{"status": "refreshing"})
}

// Zoom reports a settled zoom change from the map widget.
func (h *SessionHandler) Zoom(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req dto.ZoomRequest
	if err := decodeJSONStrict(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.Zoom == nil || math.IsNaN(*req.Zoom) || math.IsInf(*req.Zoom, 0) || *req.Zoom < 0 {
		writeError(w, r, http.StatusBadRequest, "zoom must be a non-negative number")
		return
	}

	s.Viewport.ReportZoomEnd(*req.Zoom)
	writeJSON(w, r, http.StatusOK, eventResponse(true, s))
}

// Move reports a settled pan from the map widget with its new center.
func (h *SessionHandler) Move(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req dto.MoveRequest
	if err := decodeJSONStrict(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.Lat == nil || req.Lng == nil {
		writeError(w, r, http.StatusBadRequest, "lat and lng are required")
		return
	}
	if *req.Lat < -90 || *req.Lat > 90 || *req.Lng < -180 || *req.Lng > 180 {
		writeError(w, r, http.StatusBadRequest, "lat/lng out of range")
		return
	}

	s.Viewport.ReportMoveEnd(domain.Coordinates{Lat: *req.Lat, Lon: *req.Lng})
	writeJSON(w, r, http.StatusOK, eventResponse(true, s))
}

func (h *SessionHandler) Hover(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req dto.HoverRequest
	if err := decodeJSONStrict(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}

	id := ""
	if req.ID != nil {
		id = strings.TrimSpace(*req.ID)
	}

	applied := true
	switch req.Source {
	case "row", "":
		applied = s.Controller.OnRowHover(id)
	case "marker":
		s.Controller.OnMarkerHover(id)
	default:
		writeError(w, r, http.StatusBadRequest, `source must be "row" or "marker"`)
		return
	}

	writeJSON(w, r, http.StatusOK, eventResponse(applied, s))
}

// Activate handles a row click.
func (h *SessionHandler) Activate(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req dto.ActivateRequest
	if err := decodeJSONStrict(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	id := strings.TrimSpace(req.ID)
	if id == "" {
		writeError(w, r, http.StatusBadRequest, "id is required")
		return
	}

	applied := s.Controller.OnRowActivated(id)
	writeJSON(w, r, http.StatusOK, eventResponse(applied, s))
}

func (h *SessionHandler) session(w http.ResponseWriter, r *http.Request) (*services.Session, bool) {
	s, err := h.Sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.writeSessionError(w, r, err)
		return nil, false
	}
	return s, true
}

func (h *SessionHandler) writeSessionError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, services.ErrSessionNotFound) {
		writeError(w, r, http.StatusNotFound, "session not found")
		return
	}
	zerolog.Ctx(r.Context()).Error().Err(err).Msg("session_request_failed")
	writeError(w, r, http.StatusInternalServerError, "internal error")
}

func sessionResponse(s *services.Session) dto.SessionResponse {
	return dto.SessionResponse{
		SessionID: s.ID,
		User:      s.User,
		Viewer:    s.Viewer,
		View:      dto.FromViewModel(s.Controller.Snapshot()),
	}
}

func eventResponse(applied bool, s *services.Session) dto.EventResponse {
	return dto.EventResponse{Applied: applied, View: dto.FromViewModel(s.Controller.Snapshot())}
}
