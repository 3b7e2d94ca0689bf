package model

import (
	"time"

	"aparajita/internal/geo"
)

type AlertState string

const (
	AlertBroadcasting AlertState = "BROADCASTING"
	AlertTracked      AlertState = "TRACKED"
	AlertResolved     AlertState = "RESOLVED"
	AlertExpired      AlertState = "EXPIRED"
)

// Terminal reports whether the state admits no further transitions.
func (s AlertState) Terminal() bool {
	return s == AlertResolved || s == AlertExpired
}

// DistressAlert is a broadcast record indicating a user is in an emergency
// state. At most one non-terminal alert exists per source user.
type DistressAlert struct {
	ID           string     `json:"id"`
	SourceUserID string     `json:"source_user_id"`
	DisplayName  string     `json:"display_name"`
	Location     geo.Point  `json:"location"`
	CreatedAt    time.Time  `json:"created_at"`
	State        AlertState `json:"state"`

	// TrackedBy is the observer actively viewing the alert, set on the
	// Broadcasting -> Tracked transition.
	TrackedBy string `json:"tracked_by,omitempty"`
}
