package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	alertservice "aparajita/internal/alert/service"
	"aparajita/internal/common/apperr"
	"aparajita/internal/common/logger"
	commonws "aparajita/internal/common/websocket"
	"aparajita/internal/geo"
	locmodel "aparajita/internal/location/model"
	"aparajita/internal/lookup"
	safeexitmodel "aparajita/internal/safeexit/model"
	safeexitservice "aparajita/internal/safeexit/service"
	"aparajita/internal/safety/handler/dto"
	"aparajita/internal/safety/service"

	"github.com/go-chi/chi/v5"
)

type SafetyHandler struct {
	svc       *service.Service
	alerts    *alertservice.Manager
	safeExit  *safeexitservice.Registry
	refresher *lookup.Refresher
	hub       *commonws.Hub
}

func NewHandler(
	svc *service.Service,
	alerts *alertservice.Manager,
	safeExit *safeexitservice.Registry,
	refresher *lookup.Refresher,
	hub *commonws.Hub,
) *SafetyHandler {
	return &SafetyHandler{
		svc:       svc,
		alerts:    alerts,
		safeExit:  safeExit,
		refresher: refresher,
		hub:       hub,
	}
}

func (h *SafetyHandler) IngestLocation(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")

	var req dto.LocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("ingest_location", "invalid request body", userID, "", err.Error())
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Clients without a clock source may omit the timestamp.
	if req.Timestamp.IsZero() {
		req.Timestamp = time.Now()
	}

	err := h.svc.Ingest(locmodel.LocationSample{
		UserID:         userID,
		Point:          geo.Point{Latitude: req.Latitude, Longitude: req.Longitude},
		Timestamp:      req.Timestamp,
		AccuracyMeters: req.AccuracyMeters,
	})
	if err != nil {
		writeAppError(w, userID, err)
		return
	}
	writeJSON(w, http.StatusAccepted, dto.LocationResponse{Status: "accepted"})
}

func (h *SafetyHandler) TriggerPanic(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")

	var req dto.PanicRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	alert := h.svc.TriggerPanic(r.Context(), userID, req.DisplayName)
	writeJSON(w, http.StatusOK, dto.AlertResponse{Alert: *alert})
}

func (h *SafetyHandler) TrackAlert(w http.ResponseWriter, r *http.Request) {
	alertID := chi.URLParam(r, "alert_id")

	var req dto.TrackRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	alert, err := h.alerts.Track(alertID, req.ObserverID)
	if err != nil {
		writeAppError(w, req.ObserverID, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.AlertResponse{Alert: *alert})
}

func (h *SafetyHandler) ResolveAlert(w http.ResponseWriter, r *http.Request) {
	alertID := chi.URLParam(r, "alert_id")

	if err := h.alerts.Resolve(r.Context(), alertID); err != nil {
		writeAppError(w, "", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SafetyHandler) ConfigureSafeExit(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")

	var req dto.SafeExitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cfg := safeexitmodel.Config{UserID: userID, NotifyContactIDs: req.ContactIDs}
	if req.TargetTime != "" {
		tod, err := safeexitmodel.ParseTimeOfDay(req.TargetTime)
		if err != nil {
			logger.Warn("configure_safe_exit", "malformed target time", userID, "", err.Error())
			writeError(w, http.StatusBadRequest, "target_time must be HH:MM")
			return
		}
		cfg.TargetTime = &tod
	}

	stored := h.safeExit.Configure(cfg)
	if req.Arm {
		armed, err := h.safeExit.Toggle(userID, true)
		if err != nil {
			writeAppError(w, userID, err)
			return
		}
		stored = armed
	}
	writeJSON(w, http.StatusOK, dto.SafeExitResponse{Config: *stored})
}

func (h *SafetyHandler) ToggleSafeExit(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")

	var req dto.ToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cfg, err := h.safeExit.Toggle(userID, req.Enable)
	if err != nil {
		writeAppError(w, userID, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.SafeExitResponse{Config: *cfg})
}

func (h *SafetyHandler) ResetSafeExit(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	h.safeExit.Reset(userID)
	cfg, ok := h.safeExit.Get(userID)
	if !ok {
		writeError(w, http.StatusNotFound, "no safe-exit config for user")
		return
	}
	writeJSON(w, http.StatusOK, dto.SafeExitResponse{Config: cfg})
}

func (h *SafetyHandler) GetSafeExit(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	cfg, ok := h.safeExit.Get(userID)
	if !ok {
		writeError(w, http.StatusNotFound, "no safe-exit config for user")
		return
	}
	writeJSON(w, http.StatusOK, dto.SafeExitResponse{Config: cfg})
}

func (h *SafetyHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	results, err := h.svc.Nearby(userID)
	if err != nil {
		writeAppError(w, userID, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NearbyResponse{Results: results})
}

// Area serves the cached neighbourhood context plus on-demand hotline and
// legal lookups. Lookup failures degrade to partial responses.
func (h *SafetyHandler) Area(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")

	resp := dto.AreaResponse{}
	info, err := h.refresher.Area(userID)
	if err != nil {
		writeAppError(w, userID, err)
		return
	}
	resp.Address = info.Address
	resp.Police = info.Police

	if lines, err := h.refresher.Hotlines(r.Context(), userID); err == nil {
		resp.Hotlines = lines
	} else {
		logger.Warn("area_hotlines", "hotline lookup unavailable", userID, "", err.Error())
	}
	if legal, err := h.refresher.LegalRights(r.Context(), userID); err == nil {
		resp.Legal = legal
	} else {
		logger.Warn("area_legal", "legal lookup unavailable", userID, "", err.Error())
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *SafetyHandler) Stream(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	commonws.Serve(h.hub, w, r, userID)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode_response", "failed to encode response", "", "", err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, dto.ErrorResponse{Error: msg})
}

func writeAppError(w http.ResponseWriter, userID string, err error) {
	switch {
	case errors.Is(err, apperr.ErrInvalidCoordinate):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, apperr.ErrIncompleteConfig):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, apperr.ErrNoLocation):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, apperr.ErrAlertNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, apperr.ErrAlertTerminal):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, apperr.ErrAlreadyTriggered):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, apperr.ErrLookupUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		logger.Error("request_failed", "unexpected error", userID, "", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
