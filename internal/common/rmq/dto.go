package rmq

import "time"

// Routing keys on the alert topic exchange.
const (
	RoutingKeyAlertRaised   = "alert.raised"
	RoutingKeyAlertResolved = "alert.resolved"
)

// Broadcast event kinds carried in AlertBroadcastMessage.Event.
const (
	EventRaised   = "raised"
	EventResolved = "resolved"
)

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// AlertBroadcastMessage is the peer-to-peer wire form of a distress alert.
// Raised and resolved events share it; resolved events carry only the ids.
type AlertBroadcastMessage struct {
	AlertID      string    `json:"alert_id"`
	SourceUserID string    `json:"source_user_id"`
	DisplayName  string    `json:"display_name"`
	Location     LatLng    `json:"location"`
	CreatedAt    time.Time `json:"created_at"`
	Event        string    `json:"event"` // "raised" or "resolved"
}
