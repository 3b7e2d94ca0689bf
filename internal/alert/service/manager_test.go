package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"aparajita/internal/common/apperr"
	"aparajita/internal/common/rmq"
	"aparajita/internal/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingBroadcaster struct {
	mu       sync.Mutex
	raised   []rmq.AlertBroadcastMessage
	resolved []rmq.AlertBroadcastMessage
}

func (b *recordingBroadcaster) PublishAlertRaised(_ context.Context, msg rmq.AlertBroadcastMessage) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.raised = append(b.raised, msg)
	return nil
}

func (b *recordingBroadcaster) PublishAlertResolved(_ context.Context, msg rmq.AlertBroadcastMessage) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resolved = append(b.resolved, msg)
	return nil
}

func (b *recordingBroadcaster) raisedCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.raised)
}

var bangalore = geo.Point{Latitude: 12.9716, Longitude: 77.5946}

func TestCreateIsIdempotentPerSourceUser(t *testing.T) {
	m := NewManager(30*time.Minute, nil)

	first := m.Create(context.Background(), "u1", "Asha", bangalore)
	second := m.Create(context.Background(), "u1", "Asha", bangalore)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, m.Snapshot(), 1)
}

func TestCreateAfterResolveStartsFreshAlert(t *testing.T) {
	m := NewManager(30*time.Minute, nil)
	ctx := context.Background()

	first := m.Create(ctx, "u1", "Asha", bangalore)
	require.NoError(t, m.Resolve(ctx, first.ID))

	second := m.Create(ctx, "u1", "Asha", bangalore)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestTrackTransitions(t *testing.T) {
	m := NewManager(30*time.Minute, nil)
	a := m.Create(context.Background(), "u1", "Asha", bangalore)

	tracked, err := m.Track(a.ID, "observer-1")
	require.NoError(t, err)
	assert.Equal(t, "TRACKED", string(tracked.State))
	assert.Equal(t, "observer-1", tracked.TrackedBy)

	// Tracking again just updates the observer.
	tracked, err = m.Track(a.ID, "observer-2")
	require.NoError(t, err)
	assert.Equal(t, "observer-2", tracked.TrackedBy)
}

func TestTrackUnknownAndTerminal(t *testing.T) {
	m := NewManager(30*time.Minute, nil)
	ctx := context.Background()

	_, err := m.Track("nope", "observer-1")
	require.ErrorIs(t, err, apperr.ErrAlertNotFound)

	a := m.Create(ctx, "u1", "Asha", bangalore)
	require.NoError(t, m.Resolve(ctx, a.ID))

	_, err = m.Track(a.ID, "observer-1")
	require.ErrorIs(t, err, apperr.ErrAlertTerminal)
}

func TestResolveIdempotent(t *testing.T) {
	m := NewManager(30*time.Minute, nil)
	ctx := context.Background()
	a := m.Create(ctx, "u1", "Asha", bangalore)

	require.NoError(t, m.Resolve(ctx, a.ID))
	require.NoError(t, m.Resolve(ctx, a.ID))

	got, err := m.Get(a.ID)
	require.NoError(t, err)
	assert.Equal(t, "RESOLVED", string(got.State))

	require.ErrorIs(t, m.Resolve(ctx, "nope"), apperr.ErrAlertNotFound)
}

func TestSweepExpiresOldAlerts(t *testing.T) {
	m := NewManager(30*time.Minute, nil)
	now := time.Now()
	m.SetClock(func() time.Time { return now })

	a := m.Create(context.Background(), "u1", "Asha", bangalore)
	require.Len(t, m.Snapshot(), 1)

	// A minute past the TTL.
	now = now.Add(31 * time.Minute)
	m.Sweep(context.Background())

	got, err := m.Get(a.ID)
	require.NoError(t, err)
	assert.Equal(t, "EXPIRED", string(got.State))
	assert.Empty(t, m.Snapshot(), "expired alerts leave the active set")

	// Expired is terminal for tracking but a silent no-op for resolve.
	_, err = m.Track(a.ID, "observer-1")
	require.ErrorIs(t, err, apperr.ErrAlertTerminal)
	require.NoError(t, m.Resolve(context.Background(), a.ID))
}

func TestSweepLeavesFreshAlertsAlone(t *testing.T) {
	m := NewManager(30*time.Minute, nil)
	now := time.Now()
	m.SetClock(func() time.Time { return now })

	m.Create(context.Background(), "u1", "Asha", bangalore)
	now = now.Add(29 * time.Minute)
	m.Sweep(context.Background())

	assert.Len(t, m.Snapshot(), 1)
}

func TestCreateBroadcastsToPeers(t *testing.T) {
	bc := &recordingBroadcaster{}
	m := NewManager(30*time.Minute, bc)

	a := m.Create(context.Background(), "u1", "Asha", bangalore)

	require.Eventually(t, func() bool { return bc.raisedCount() == 1 }, time.Second, 5*time.Millisecond)
	bc.mu.Lock()
	defer bc.mu.Unlock()
	assert.Equal(t, a.ID, bc.raised[0].AlertID)
	assert.Equal(t, rmq.EventRaised, bc.raised[0].Event)
}

func TestApplyPeerRaisedAndResolved(t *testing.T) {
	m := NewManager(30*time.Minute, nil)

	msg := rmq.AlertBroadcastMessage{
		AlertID:      "peer-alert",
		SourceUserID: "peer-user",
		DisplayName:  "Sneha R.",
		Location:     rmq.LatLng{Lat: 12.97, Lng: 77.59},
		CreatedAt:    time.Now(),
		Event:        rmq.EventRaised,
	}
	m.ApplyPeer(msg)
	require.Len(t, m.Snapshot(), 1)

	// Replay of the same broadcast is dropped.
	m.ApplyPeer(msg)
	require.Len(t, m.Snapshot(), 1)

	m.ApplyPeer(rmq.AlertBroadcastMessage{AlertID: "peer-alert", Event: rmq.EventResolved})
	assert.Empty(t, m.Snapshot())
}

func TestChangeListenerFires(t *testing.T) {
	m := NewManager(30*time.Minute, nil)
	var mu sync.Mutex
	changes := 0
	m.SetChangeListener(func() {
		mu.Lock()
		changes++
		mu.Unlock()
	})

	ctx := context.Background()
	a := m.Create(ctx, "u1", "Asha", bangalore)
	_, err := m.Track(a.ID, "observer-1")
	require.NoError(t, err)
	require.NoError(t, m.Resolve(ctx, a.ID))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, changes)
}
