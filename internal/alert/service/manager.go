package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"aparajita/internal/alert/model"
	"aparajita/internal/common/apperr"
	"aparajita/internal/common/logger"
	"aparajita/internal/common/metrics"
	"aparajita/internal/common/rmq"
	"aparajita/internal/geo"
	"aparajita/pkg/uuid"
)

// Broadcaster publishes locally created alerts to peers. Implemented by the
// RabbitMQ client; tests use a recording fake.
type Broadcaster interface {
	PublishAlertRaised(ctx context.Context, msg rmq.AlertBroadcastMessage) error
	PublishAlertResolved(ctx context.Context, msg rmq.AlertBroadcastMessage) error
}

// ChangeListener is invoked after every mutation of the active-alert set:
// create, track, resolve, expiry. It runs outside the manager's lock.
type ChangeListener func()

// Manager owns the distress-alert lifecycle. All state lives in memory;
// alerts either resolve or age out within the TTL, so nothing is persisted.
type Manager struct {
	mu       sync.Mutex
	alerts   map[string]*model.DistressAlert
	bySource map[string]string // userID -> non-terminal alert id

	ttl      time.Duration
	now      func() time.Time
	bc       Broadcaster
	onChange ChangeListener
}

func NewManager(ttl time.Duration, bc Broadcaster) *Manager {
	return &Manager{
		alerts:   make(map[string]*model.DistressAlert),
		bySource: make(map[string]string),
		ttl:      ttl,
		now:      time.Now,
		bc:       bc,
	}
}

// SetChangeListener registers the proximity-recompute hook. Must be called
// before the manager starts receiving traffic.
func (m *Manager) SetChangeListener(fn ChangeListener) { m.onChange = fn }

// SetClock overrides the time source for tests.
func (m *Manager) SetClock(now func() time.Time) { m.now = now }

// Create raises a distress alert for sourceUserID at loc. Idempotent: while
// a non-terminal alert exists for the user, that alert is returned unchanged
// and nothing is published.
func (m *Manager) Create(ctx context.Context, sourceUserID, displayName string, loc geo.Point) *model.DistressAlert {
	m.mu.Lock()
	if id, ok := m.bySource[sourceUserID]; ok {
		existing := *m.alerts[id]
		m.mu.Unlock()
		logger.Info("alert_create_dedup", "non-terminal alert already active for user", sourceUserID, existing.ID)
		return &existing
	}

	a := &model.DistressAlert{
		ID:           uuid.New(),
		SourceUserID: sourceUserID,
		DisplayName:  displayName,
		Location:     loc,
		CreatedAt:    m.now(),
		State:        model.AlertBroadcasting,
	}
	m.alerts[a.ID] = a
	m.bySource[sourceUserID] = a.ID
	out := *a
	m.mu.Unlock()

	metrics.AlertsCreated.WithLabelValues("local").Inc()
	metrics.ActiveAlerts.Inc()
	logger.Info("alert_created", fmt.Sprintf("distress alert raised at (%.5f, %.5f)", loc.Latitude, loc.Longitude), sourceUserID, out.ID)

	m.broadcastRaised(out)
	m.notifyChange()
	return &out
}

// ApplyPeer merges an alert broadcast received from another node. Raised
// events insert or refresh; resolved events terminate. Duplicate raised
// events for an already-known alert id are ignored.
func (m *Manager) ApplyPeer(msg rmq.AlertBroadcastMessage) {
	m.mu.Lock()
	switch msg.Event {
	case rmq.EventRaised:
		if _, ok := m.alerts[msg.AlertID]; ok {
			m.mu.Unlock()
			return
		}
		// The per-source invariant holds across the mesh too: a second
		// raised event for a user with a live alert is a duplicate.
		if _, ok := m.bySource[msg.SourceUserID]; ok {
			m.mu.Unlock()
			return
		}
		a := &model.DistressAlert{
			ID:           msg.AlertID,
			SourceUserID: msg.SourceUserID,
			DisplayName:  msg.DisplayName,
			Location:     geo.Point{Latitude: msg.Location.Lat, Longitude: msg.Location.Lng},
			CreatedAt:    msg.CreatedAt,
			State:        model.AlertBroadcasting,
		}
		m.alerts[a.ID] = a
		m.bySource[a.SourceUserID] = a.ID
		m.mu.Unlock()

		metrics.AlertsCreated.WithLabelValues("peer").Inc()
		metrics.ActiveAlerts.Inc()
		logger.Info("alert_peer_raised", "peer distress alert received", msg.SourceUserID, msg.AlertID)
		m.notifyChange()

	case rmq.EventResolved:
		a, ok := m.alerts[msg.AlertID]
		if !ok || a.State.Terminal() {
			m.mu.Unlock()
			return
		}
		a.State = model.AlertResolved
		delete(m.bySource, a.SourceUserID)
		m.mu.Unlock()

		metrics.AlertsResolved.Inc()
		metrics.ActiveAlerts.Dec()
		logger.Info("alert_peer_resolved", "peer alert resolved", msg.SourceUserID, msg.AlertID)
		m.notifyChange()

	default:
		m.mu.Unlock()
		logger.Warn("alert_peer_unknown_event", "ignoring unknown broadcast event", "", msg.AlertID, msg.Event)
	}
}

// Track transitions a Broadcasting alert to Tracked and records the
// observer. Tracking an already-Tracked alert just updates the observer.
func (m *Manager) Track(alertID, observerID string) (*model.DistressAlert, error) {
	m.mu.Lock()
	a, ok := m.alerts[alertID]
	if !ok {
		m.mu.Unlock()
		return nil, fmt.Errorf("track %s: %w", alertID, apperr.ErrAlertNotFound)
	}
	if a.State.Terminal() {
		m.mu.Unlock()
		return nil, fmt.Errorf("track %s in state %s: %w", alertID, a.State, apperr.ErrAlertTerminal)
	}
	a.State = model.AlertTracked
	a.TrackedBy = observerID
	out := *a
	m.mu.Unlock()

	logger.Info("alert_tracked", "alert tracked by observer", observerID, alertID)
	m.notifyChange()
	return &out, nil
}

// Resolve terminates a non-terminal alert. Idempotent on already-resolved
// alerts; resolving an expired alert is also a no-op.
func (m *Manager) Resolve(ctx context.Context, alertID string) error {
	m.mu.Lock()
	a, ok := m.alerts[alertID]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("resolve %s: %w", alertID, apperr.ErrAlertNotFound)
	}
	if a.State.Terminal() {
		m.mu.Unlock()
		return nil
	}
	a.State = model.AlertResolved
	delete(m.bySource, a.SourceUserID)
	out := *a
	m.mu.Unlock()

	metrics.AlertsResolved.Inc()
	metrics.ActiveAlerts.Dec()
	logger.Info("alert_resolved", "alert resolved", out.SourceUserID, alertID)

	m.broadcastResolved(out)
	m.notifyChange()
	return nil
}

// Get returns a copy of the alert, or ErrAlertNotFound.
func (m *Manager) Get(alertID string) (*model.DistressAlert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.alerts[alertID]
	if !ok {
		return nil, fmt.Errorf("get %s: %w", alertID, apperr.ErrAlertNotFound)
	}
	out := *a
	return &out, nil
}

// Snapshot returns copies of all non-terminal alerts. The proximity matcher
// works on this snapshot so no lock is held during distance computation.
func (m *Manager) Snapshot() []model.DistressAlert {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.DistressAlert, 0, len(m.bySource))
	for _, a := range m.alerts {
		if !a.State.Terminal() {
			out = append(out, *a)
		}
	}
	return out
}

// Sweep expires alerts older than the TTL. Runs on the periodic scheduler,
// never event-driven.
func (m *Manager) Sweep(ctx context.Context) {
	cutoff := m.now().Add(-m.ttl)

	m.mu.Lock()
	var expired []model.DistressAlert
	for _, a := range m.alerts {
		if !a.State.Terminal() && a.CreatedAt.Before(cutoff) {
			a.State = model.AlertExpired
			delete(m.bySource, a.SourceUserID)
			expired = append(expired, *a)
		}
	}
	m.mu.Unlock()

	if len(expired) == 0 {
		return
	}
	for _, a := range expired {
		metrics.AlertsExpired.Inc()
		metrics.ActiveAlerts.Dec()
		logger.Info("alert_expired", "alert expired without resolution", a.SourceUserID, a.ID)
	}
	m.notifyChange()
}

func (m *Manager) notifyChange() {
	if m.onChange != nil {
		m.onChange()
	}
}

func (m *Manager) broadcastRaised(a model.DistressAlert) {
	if m.bc == nil {
		return
	}
	msg := rmq.AlertBroadcastMessage{
		AlertID:      a.ID,
		SourceUserID: a.SourceUserID,
		DisplayName:  a.DisplayName,
		Location:     rmq.LatLng{Lat: a.Location.Latitude, Lng: a.Location.Longitude},
		CreatedAt:    a.CreatedAt,
		Event:        rmq.EventRaised,
	}
	// Detached from the request context: the broadcast outlives the call.
	go func() {
		if err := m.bc.PublishAlertRaised(context.Background(), msg); err != nil {
			logger.Warn("alert_publish_failed", "could not broadcast raised alert", a.SourceUserID, a.ID, err.Error())
		}
	}()
}

func (m *Manager) broadcastResolved(a model.DistressAlert) {
	if m.bc == nil {
		return
	}
	msg := rmq.AlertBroadcastMessage{
		AlertID:      a.ID,
		SourceUserID: a.SourceUserID,
		Event:        rmq.EventResolved,
	}
	go func() {
		if err := m.bc.PublishAlertResolved(context.Background(), msg); err != nil {
			logger.Warn("alert_publish_failed", "could not broadcast resolved alert", a.SourceUserID, a.ID, err.Error())
		}
	}()
}
