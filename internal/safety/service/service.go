package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	alertmodel "aparajita/internal/alert/model"
	alertservice "aparajita/internal/alert/service"
	"aparajita/internal/common/apperr"
	"aparajita/internal/common/logger"
	"aparajita/internal/common/websocket"
	"aparajita/internal/geo"
	locmodel "aparajita/internal/location/model"
	locservice "aparajita/internal/location/service"
	"aparajita/internal/lookup"
	"aparajita/internal/maprender"
	"aparajita/internal/proximity"
	safeexitservice "aparajita/internal/safeexit/service"
)

// StateFrame is one websocket push: the user's current position plus the
// ranked nearby alerts. Sent on every material change.
type StateFrame struct {
	Type   string                  `json:"type"`
	Self   locmodel.LocationSample `json:"self"`
	Nearby []proximity.Result      `json:"nearby"`
}

// Service is the coordination layer the transport talks to. It owns the
// fan-out between the ingestor, the alert manager, the safe-exit registry
// and the push stream.
type Service struct {
	ingestor  *locservice.Ingestor
	alerts    *alertservice.Manager
	safeExit  *safeexitservice.Registry
	refresher *lookup.Refresher
	hub       *websocket.Hub
	renderer  maprender.Renderer
	radius    float64

	markerMu sync.Mutex
	markers  map[string]bool
}

func NewService(
	ingestor *locservice.Ingestor,
	alerts *alertservice.Manager,
	safeExit *safeexitservice.Registry,
	refresher *lookup.Refresher,
	hub *websocket.Hub,
	renderer maprender.Renderer,
	radiusMeters float64,
) *Service {
	logger.SetServiceName("safety-service")
	s := &Service{
		ingestor:  ingestor,
		alerts:    alerts,
		safeExit:  safeExit,
		refresher: refresher,
		hub:       hub,
		renderer:  renderer,
		radius:    radiusMeters,
		markers:   make(map[string]bool),
	}

	ingestor.OnMove(refresher.OnMove)
	ingestor.OnSample(s.onSample)
	alerts.SetChangeListener(s.onAlertsChanged)
	return s
}

// Ingest accepts a location sample for a user.
func (s *Service) Ingest(sample locmodel.LocationSample) error {
	return s.ingestor.Ingest(sample)
}

// TriggerPanic raises a distress alert at the user's current position.
// Always succeeds: while a non-terminal alert exists for the user the
// existing alert is returned.
func (s *Service) TriggerPanic(ctx context.Context, userID, displayName string) *alertmodel.DistressAlert {
	if displayName == "" {
		displayName = userID
	}
	var loc geo.Point
	if sample, ok := s.ingestor.Current(userID); ok {
		loc = sample.Point
	} else {
		logger.Warn("panic_no_location", "no location on record for panic", userID, "", "")
	}
	return s.alerts.Create(ctx, userID, displayName, loc)
}

// Nearby ranks the active alerts around the user's current position.
func (s *Service) Nearby(userID string) ([]proximity.Result, error) {
	sample, ok := s.ingestor.Current(userID)
	if !ok {
		return nil, fmt.Errorf("nearby for %s: %w", userID, apperr.ErrNoLocation)
	}
	return proximity.MatchNearby(sample.Point, s.alerts.Snapshot(), s.radius), nil
}

// onSample runs on every accepted sample: re-rank, push, recenter.
func (s *Service) onSample(sample locmodel.LocationSample) {
	s.renderer.SetCenter(sample.Point)
	s.push(sample)
}

// onAlertsChanged runs after every alert-set mutation: refresh markers and
// push a fresh frame to every connected user with a known position.
func (s *Service) onAlertsChanged() {
	snapshot := s.alerts.Snapshot()
	s.syncMarkers(snapshot)

	for _, userID := range s.hub.ClientIDs() {
		if sample, ok := s.ingestor.Current(userID); ok {
			s.push(sample)
		}
	}
}

func (s *Service) push(sample locmodel.LocationSample) {
	frame := StateFrame{
		Type:   "state",
		Self:   sample,
		Nearby: proximity.MatchNearby(sample.Point, s.alerts.Snapshot(), s.radius),
	}
	data, err := json.Marshal(frame)
	if err != nil {
		logger.Error("stream_marshal_failed", "could not encode state frame", sample.UserID, "", err.Error())
		return
	}
	s.hub.SendToClient(sample.UserID, data)
}

// syncMarkers reconciles the renderer's markers with the active alert set.
func (s *Service) syncMarkers(active []alertmodel.DistressAlert) {
	s.markerMu.Lock()
	defer s.markerMu.Unlock()

	seen := make(map[string]bool, len(active))
	for _, a := range active {
		seen[a.ID] = true
		s.renderer.UpsertMarker(a.ID, a.Location, a.DisplayName)
		s.markers[a.ID] = true
	}
	for id := range s.markers {
		if !seen[id] {
			s.renderer.RemoveMarker(id)
			delete(s.markers, id)
		}
	}
}
