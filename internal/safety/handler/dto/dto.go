package dto

import (
	"time"

	alertmodel "aparajita/internal/alert/model"
	"aparajita/internal/lookup"
	"aparajita/internal/proximity"
	safeexitmodel "aparajita/internal/safeexit/model"
)

type LocationRequest struct {
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	Timestamp      time.Time `json:"timestamp"`
	AccuracyMeters float64   `json:"accuracy_meters,omitempty"`
}

type LocationResponse struct {
	Status string `json:"status"`
}

type PanicRequest struct {
	DisplayName string `json:"display_name,omitempty"`
}

type AlertResponse struct {
	Alert alertmodel.DistressAlert `json:"alert"`
}

type TrackRequest struct {
	ObserverID string `json:"observer_id"`
}

type SafeExitRequest struct {
	TargetTime string   `json:"target_time"` // "HH:MM", 24-hour
	ContactIDs []string `json:"contact_ids"`
	Arm        bool     `json:"arm,omitempty"`
}

type ToggleRequest struct {
	Enable bool `json:"enable"`
}

type SafeExitResponse struct {
	Config safeexitmodel.Config `json:"config"`
}

type NearbyResponse struct {
	Results []proximity.Result `json:"results"`
}

type AreaResponse struct {
	Address  string            `json:"address"`
	Police   lookup.PoliceInfo `json:"police"`
	Hotlines []lookup.Hotline  `json:"hotlines,omitempty"`
	Legal    string            `json:"legal,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
