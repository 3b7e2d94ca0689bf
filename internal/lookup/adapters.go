package lookup

import "context"

// PoliceInfo is the nearest-station answer: free text plus source links.
type PoliceInfo struct {
	Text  string   `json:"text"`
	Links []string `json:"links"`
}

// Hotline is one emergency phone line.
type Hotline struct {
	Name   string `json:"name"`
	Number string `json:"number"`
}

// The collaborator interfaces below are implemented outside the core by
// thin wrappers around third-party lookup services. Every call is
// best-effort: a failure surfaces as ErrLookupUnavailable and the last
// known value stays in place.

type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (string, error)
}

type PoliceLocator interface {
	FindNearestPoliceStation(ctx context.Context, lat, lon float64) (PoliceInfo, error)
}

type HotlineDirectory interface {
	GetHotlines(ctx context.Context, area string) ([]Hotline, error)
}

type LegalAdvisor interface {
	GetLegalRights(ctx context.Context, area string) (string, error)
}

type ContactNotifier interface {
	NotifyContact(ctx context.Context, contactID, alertID string) error
}

// Adapters bundles the collaborator set for wiring.
type Adapters struct {
	Geocoder Geocoder
	Police   PoliceLocator
	Hotlines HotlineDirectory
	Legal    LegalAdvisor
	Notifier ContactNotifier
}
