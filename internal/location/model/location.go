package model

import (
	"time"

	"aparajita/internal/geo"
)

// LocationSample is one periodic position report. Only the latest sample
// per user is retained.
type LocationSample struct {
	UserID         string    `json:"user_id"`
	Point          geo.Point `json:"point"`
	Timestamp      time.Time `json:"timestamp"`
	AccuracyMeters float64   `json:"accuracy_meters,omitempty"`
}
