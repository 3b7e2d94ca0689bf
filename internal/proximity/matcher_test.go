package proximity

import (
	"testing"
	"time"

	"aparajita/internal/alert/model"
	"aparajita/internal/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func alertAt(id string, lat, lng float64, state model.AlertState, created time.Time) model.DistressAlert {
	return model.DistressAlert{
		ID:        id,
		Location:  geo.Point{Latitude: lat, Longitude: lng},
		State:     state,
		CreatedAt: created,
	}
}

func TestMatchNearbyOrdersByDistance(t *testing.T) {
	observer := geo.Point{Latitude: 0, Longitude: 0}
	now := time.Now()

	// ~111m, ~556m, ~1112m north of the observer.
	alerts := []model.DistressAlert{
		alertAt("far", 0.01, 0, model.AlertBroadcasting, now),
		alertAt("near", 0.001, 0, model.AlertBroadcasting, now),
		alertAt("mid", 0.005, 0, model.AlertTracked, now),
	}

	results := MatchNearby(observer, alerts, 2000)
	require.Len(t, results, 3)
	assert.Equal(t, "near", results[0].Alert.ID)
	assert.Equal(t, "mid", results[1].Alert.ID)
	assert.Equal(t, "far", results[2].Alert.ID)

	for i, res := range results {
		assert.Equal(t, i+1, res.Rank)
		assert.LessOrEqual(t, res.DistanceMeters, 2000.0)
		if i > 0 {
			assert.GreaterOrEqual(t, res.DistanceMeters, results[i-1].DistanceMeters)
		}
	}
}

func TestMatchNearbyExcludesBeyondRadius(t *testing.T) {
	observer := geo.Point{Latitude: 0, Longitude: 0}
	now := time.Now()

	alerts := []model.DistressAlert{
		alertAt("inside", 0.001, 0, model.AlertBroadcasting, now),
		alertAt("outside", 0.05, 0, model.AlertBroadcasting, now), // ~5.5km
	}

	results := MatchNearby(observer, alerts, 2000)
	require.Len(t, results, 1)
	assert.Equal(t, "inside", results[0].Alert.ID)
}

func TestMatchNearbyExcludesTerminalStates(t *testing.T) {
	observer := geo.Point{Latitude: 0, Longitude: 0}
	now := time.Now()

	alerts := []model.DistressAlert{
		alertAt("resolved", 0.001, 0, model.AlertResolved, now),
		alertAt("expired", 0.001, 0, model.AlertExpired, now),
		alertAt("live", 0.002, 0, model.AlertBroadcasting, now),
	}

	results := MatchNearby(observer, alerts, 2000)
	require.Len(t, results, 1)
	assert.Equal(t, "live", results[0].Alert.ID)
}

func TestMatchNearbyBreaksTiesByCreationTime(t *testing.T) {
	observer := geo.Point{Latitude: 0, Longitude: 0}
	now := time.Now()

	// Same point, so identical distance; the earlier alert ranks first.
	alerts := []model.DistressAlert{
		alertAt("younger", 0.001, 0, model.AlertBroadcasting, now),
		alertAt("older", 0.001, 0, model.AlertBroadcasting, now.Add(-time.Minute)),
	}

	results := MatchNearby(observer, alerts, 2000)
	require.Len(t, results, 2)
	assert.Equal(t, "older", results[0].Alert.ID)
	assert.Equal(t, "younger", results[1].Alert.ID)
}

func TestMatchNearbyEmptyInput(t *testing.T) {
	results := MatchNearby(geo.Point{}, nil, 2000)
	assert.Empty(t, results)
}
