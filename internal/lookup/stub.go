package lookup

import (
	"context"
	"fmt"

	"aparajita/internal/common/logger"
)

// StubAdapters returns placeholder collaborators for local runs where no
// real lookup backends are configured. Geocode and police answers echo the
// coordinates; notifications only log.
func StubAdapters() Adapters {
	return Adapters{
		Geocoder: stubGeocoder{},
		Police:   stubPolice{},
		Hotlines: stubHotlines{},
		Legal:    stubLegal{},
		Notifier: stubNotifier{},
	}
}

type stubGeocoder struct{}

func (stubGeocoder) ReverseGeocode(_ context.Context, lat, lon float64) (string, error) {
	return fmt.Sprintf("near (%.4f, %.4f)", lat, lon), nil
}

type stubPolice struct{}

func (stubPolice) FindNearestPoliceStation(_ context.Context, lat, lon float64) (PoliceInfo, error) {
	return PoliceInfo{Text: fmt.Sprintf("nearest station to (%.4f, %.4f) unknown, dial 112", lat, lon)}, nil
}

type stubHotlines struct{}

func (stubHotlines) GetHotlines(context.Context, string) ([]Hotline, error) {
	return []Hotline{
		{Name: "Police", Number: "112"},
		{Name: "Women Helpline", Number: "1091"},
	}, nil
}

type stubLegal struct{}

func (stubLegal) GetLegalRights(context.Context, string) (string, error) {
	return "No legal-information backend configured.", nil
}

type stubNotifier struct{}

func (stubNotifier) NotifyContact(_ context.Context, contactID, alertID string) error {
	logger.Info("notify_contact_stub", "would notify contact "+contactID, "", alertID)
	return nil
}
