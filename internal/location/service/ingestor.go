package service

import (
	"fmt"
	"sync"

	"aparajita/internal/common/apperr"
	"aparajita/internal/common/logger"
	"aparajita/internal/common/metrics"
	"aparajita/internal/geo"
	"aparajita/internal/location/model"
)

// MoveListener receives samples that moved the user materially, i.e. past
// the refresh threshold since the last emitted refresh point. Listeners run
// on the ingest goroutine and must not block; expensive work goes async.
type MoveListener func(sample model.LocationSample)

// SampleListener receives every accepted sample.
type SampleListener func(sample model.LocationSample)

// Ingestor validates and debounces location samples. The latest sample per
// user supersedes the previous one; no history is kept.
type Ingestor struct {
	mu          sync.Mutex
	current     map[string]model.LocationSample
	lastRefresh map[string]geo.Point

	thresholdMeters float64
	onMove          []MoveListener
	onSample        []SampleListener
}

func NewIngestor(thresholdMeters float64) *Ingestor {
	return &Ingestor{
		current:         make(map[string]model.LocationSample),
		lastRefresh:     make(map[string]geo.Point),
		thresholdMeters: thresholdMeters,
	}
}

func (i *Ingestor) OnMove(fn MoveListener)     { i.onMove = append(i.onMove, fn) }
func (i *Ingestor) OnSample(fn SampleListener) { i.onSample = append(i.onSample, fn) }

// Ingest stores sample as the user's current position. Out-of-range
// coordinates fail with ErrInvalidCoordinate; samples older than the stored
// one are dropped silently.
func (i *Ingestor) Ingest(sample model.LocationSample) error {
	if !sample.Point.Valid() {
		metrics.SamplesRejected.WithLabelValues("invalid_coordinate").Inc()
		logger.Warn("ingest_rejected",
			fmt.Sprintf("coordinates out of range (%.5f, %.5f)", sample.Point.Latitude, sample.Point.Longitude),
			sample.UserID, "", "")
		return fmt.Errorf("ingest for %s: %w", sample.UserID, apperr.ErrInvalidCoordinate)
	}

	i.mu.Lock()
	if prev, ok := i.current[sample.UserID]; ok && !sample.Timestamp.After(prev.Timestamp) {
		i.mu.Unlock()
		metrics.SamplesRejected.WithLabelValues("out_of_order").Inc()
		logger.Debug("ingest_out_of_order", "stale sample dropped", sample.UserID, "")
		return nil
	}
	i.current[sample.UserID] = sample

	anchor, hasAnchor := i.lastRefresh[sample.UserID]
	moved := !hasAnchor || geo.Distance(anchor, sample.Point) >= i.thresholdMeters
	if moved {
		i.lastRefresh[sample.UserID] = sample.Point
	}
	i.mu.Unlock()

	metrics.SamplesIngested.Inc()

	for _, fn := range i.onSample {
		fn(sample)
	}
	if moved {
		metrics.LookupRefreshes.Inc()
		logger.Debug("location_moved", "material location change", sample.UserID, "")
		for _, fn := range i.onMove {
			fn(sample)
		}
	}
	return nil
}

// Current returns the latest accepted sample for the user.
func (i *Ingestor) Current(userID string) (model.LocationSample, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	s, ok := i.current[userID]
	return s, ok
}
