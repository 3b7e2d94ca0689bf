package service

import (
	"context"
	"sync"
	"testing"
	"time"

	alertservice "aparajita/internal/alert/service"
	"aparajita/internal/common/apperr"
	"aparajita/internal/geo"
	locmodel "aparajita/internal/location/model"
	"aparajita/internal/safeexit/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	mu    sync.Mutex
	calls []string // contactID:alertID
}

func (n *fakeNotifier) NotifyContact(_ context.Context, contactID, alertID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, contactID+":"+alertID)
	return nil
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

type fakeLocator struct {
	samples map[string]locmodel.LocationSample
}

func (l *fakeLocator) Current(userID string) (locmodel.LocationSample, bool) {
	s, ok := l.samples[userID]
	return s, ok
}

func tod(h, m int) *model.TimeOfDay {
	return &model.TimeOfDay{Hour: h, Minute: m}
}

func newTestRegistry(t *testing.T) (*Registry, *alertservice.Manager, *fakeNotifier, *time.Time) {
	t.Helper()
	alerts := alertservice.NewManager(30*time.Minute, nil)
	notifier := &fakeNotifier{}
	locator := &fakeLocator{samples: map[string]locmodel.LocationSample{
		"u1": {
			UserID: "u1",
			Point:  geo.Point{Latitude: 12.9716, Longitude: 77.5946},
		},
	}}

	r := NewRegistry(alerts, notifier, locator)
	now := time.Date(2026, 3, 10, 17, 0, 0, 0, time.UTC)
	r.SetClock(func() time.Time { return now })
	alerts.SetClock(func() time.Time { return now })
	return r, alerts, notifier, &now
}

func TestArmRequiresCompleteConfig(t *testing.T) {
	r, _, _, _ := newTestRegistry(t)

	_, err := r.Arm(model.Config{UserID: "u1", TargetTime: tod(17, 30)})
	require.ErrorIs(t, err, apperr.ErrIncompleteConfig)

	_, err = r.Arm(model.Config{UserID: "u1", NotifyContactIDs: []string{"c1"}})
	require.ErrorIs(t, err, apperr.ErrIncompleteConfig)

	// No state transition happened.
	_, ok := r.Get("u1")
	assert.False(t, ok)
}

func TestArmRecordsArmedAt(t *testing.T) {
	r, _, _, _ := newTestRegistry(t)

	cfg, err := r.Arm(model.Config{
		UserID:           "u1",
		TargetTime:       tod(17, 30),
		NotifyContactIDs: []string{"c1"},
	})
	require.NoError(t, err)
	assert.Equal(t, model.StateArmed, cfg.State)
	require.NotNil(t, cfg.ArmedAt)
}

func TestTickTriggersPastDeadline(t *testing.T) {
	r, alerts, notifier, now := newTestRegistry(t)

	_, err := r.Arm(model.Config{
		UserID:           "u1",
		TargetTime:       tod(17, 30),
		NotifyContactIDs: []string{"c1"},
	})
	require.NoError(t, err)

	// 17:29 - still armed.
	*now = time.Date(2026, 3, 10, 17, 29, 0, 0, time.UTC)
	r.Tick(context.Background())
	cfg, _ := r.Get("u1")
	assert.Equal(t, model.StateArmed, cfg.State)

	// 17:31 - deadline passed.
	*now = time.Date(2026, 3, 10, 17, 31, 0, 0, time.UTC)
	r.Tick(context.Background())

	cfg, _ = r.Get("u1")
	assert.Equal(t, model.StateTriggered, cfg.State)

	active := alerts.Snapshot()
	require.Len(t, active, 1, "exactly one alert for the owning user")
	assert.Equal(t, "u1", active[0].SourceUserID)
	assert.Equal(t, 12.9716, active[0].Location.Latitude)

	require.Eventually(t, func() bool { return notifier.count() == 1 }, time.Second, 5*time.Millisecond)
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	assert.Equal(t, "c1:"+active[0].ID, notifier.calls[0])
}

func TestTickIsIdempotentAfterTrigger(t *testing.T) {
	r, alerts, _, now := newTestRegistry(t)

	_, err := r.Arm(model.Config{
		UserID:           "u1",
		TargetTime:       tod(17, 30),
		NotifyContactIDs: []string{"c1"},
	})
	require.NoError(t, err)

	*now = time.Date(2026, 3, 10, 17, 31, 0, 0, time.UTC)
	r.Tick(context.Background())
	r.Tick(context.Background())

	assert.Len(t, alerts.Snapshot(), 1, "a second tick must not raise a second alert")
}

func TestPastTargetTimeRollsOverToNextDay(t *testing.T) {
	r, alerts, _, now := newTestRegistry(t)

	// Arm at 18:00 for 17:30: the deadline is tomorrow, not now.
	*now = time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	_, err := r.Arm(model.Config{
		UserID:           "u1",
		TargetTime:       tod(17, 30),
		NotifyContactIDs: []string{"c1"},
	})
	require.NoError(t, err)

	*now = time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC)
	r.Tick(context.Background())
	cfg, _ := r.Get("u1")
	assert.Equal(t, model.StateArmed, cfg.State)
	assert.Empty(t, alerts.Snapshot())

	*now = time.Date(2026, 3, 11, 17, 31, 0, 0, time.UTC)
	r.Tick(context.Background())
	cfg, _ = r.Get("u1")
	assert.Equal(t, model.StateTriggered, cfg.State)
}

func TestDisableBeforeDeadline(t *testing.T) {
	r, alerts, notifier, now := newTestRegistry(t)

	_, err := r.Arm(model.Config{
		UserID:           "u1",
		TargetTime:       tod(17, 30),
		NotifyContactIDs: []string{"c1"},
	})
	require.NoError(t, err)

	r.Disable("u1")
	cfg, _ := r.Get("u1")
	assert.Equal(t, model.StateCleared, cfg.State)
	assert.Nil(t, cfg.ArmedAt)

	// The deadline passing after a disable must not trigger.
	*now = time.Date(2026, 3, 10, 17, 31, 0, 0, time.UTC)
	r.Tick(context.Background())
	cfg, _ = r.Get("u1")
	assert.Equal(t, model.StateCleared, cfg.State)
	assert.Empty(t, alerts.Snapshot())
	assert.Zero(t, notifier.count())
}

func TestDisableIsNoOpWhenNotArmed(t *testing.T) {
	r, _, _, _ := newTestRegistry(t)

	r.Disable("nobody")

	r.Configure(model.Config{UserID: "u1", TargetTime: tod(17, 30), NotifyContactIDs: []string{"c1"}})
	r.Disable("u1")
	cfg, _ := r.Get("u1")
	assert.Equal(t, model.StateIdle, cfg.State, "disable must not touch an idle machine")
}

func TestClearedIsReArmable(t *testing.T) {
	r, _, _, _ := newTestRegistry(t)

	_, err := r.Arm(model.Config{
		UserID:           "u1",
		TargetTime:       tod(17, 30),
		NotifyContactIDs: []string{"c1"},
	})
	require.NoError(t, err)
	r.Disable("u1")

	cfg, err := r.Toggle("u1", true)
	require.NoError(t, err)
	assert.Equal(t, model.StateArmed, cfg.State)
}

func TestToggleOnWithoutConfigFails(t *testing.T) {
	r, _, _, _ := newTestRegistry(t)

	_, err := r.Toggle("u1", true)
	require.ErrorIs(t, err, apperr.ErrIncompleteConfig)

	r.Configure(model.Config{UserID: "u1", TargetTime: tod(17, 30)})
	_, err = r.Toggle("u1", true)
	require.ErrorIs(t, err, apperr.ErrIncompleteConfig, "contacts still missing")
}

func TestArmWhileTriggeredRequiresReset(t *testing.T) {
	r, _, _, now := newTestRegistry(t)

	_, err := r.Arm(model.Config{
		UserID:           "u1",
		TargetTime:       tod(17, 30),
		NotifyContactIDs: []string{"c1"},
	})
	require.NoError(t, err)

	*now = time.Date(2026, 3, 10, 17, 31, 0, 0, time.UTC)
	r.Tick(context.Background())

	_, err = r.Arm(model.Config{
		UserID:           "u1",
		TargetTime:       tod(18, 30),
		NotifyContactIDs: []string{"c1"},
	})
	require.ErrorIs(t, err, apperr.ErrAlreadyTriggered)
	cfg, _ := r.Get("u1")
	assert.Equal(t, model.StateTriggered, cfg.State)

	r.Reset("u1")
	_, err = r.Arm(model.Config{
		UserID:           "u1",
		TargetTime:       tod(18, 30),
		NotifyContactIDs: []string{"c1"},
	})
	require.NoError(t, err)
}

func TestResetReturnsTriggeredToIdle(t *testing.T) {
	r, _, _, now := newTestRegistry(t)

	_, err := r.Arm(model.Config{
		UserID:           "u1",
		TargetTime:       tod(17, 30),
		NotifyContactIDs: []string{"c1"},
	})
	require.NoError(t, err)

	*now = time.Date(2026, 3, 10, 17, 31, 0, 0, time.UTC)
	r.Tick(context.Background())

	r.Reset("u1")
	cfg, _ := r.Get("u1")
	assert.Equal(t, model.StateIdle, cfg.State)

	// Reset on a non-triggered machine is a no-op.
	r.Reset("u1")
	cfg, _ = r.Get("u1")
	assert.Equal(t, model.StateIdle, cfg.State)
}
