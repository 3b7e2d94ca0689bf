package lookup

import (
	"context"
	"fmt"
	"time"

	"aparajita/internal/common/apperr"
	"aparajita/internal/common/logger"
	locmodel "aparajita/internal/location/model"

	gocache "github.com/patrickmn/go-cache"
)

const defaultArea = "my area"

// AreaInfo is the last known neighbourhood context for a user.
type AreaInfo struct {
	Address string     `json:"address"`
	Police  PoliceInfo `json:"police"`
}

// Refresher runs the expensive external lookups off the ingest path. It is
// driven by material-move events only, so lookups are naturally debounced,
// and it caches the last good answer per user so outages degrade to stale
// data instead of errors.
type Refresher struct {
	adapters Adapters
	cache    *gocache.Cache
}

func NewRefresher(adapters Adapters, ttl time.Duration) *Refresher {
	return &Refresher{
		adapters: adapters,
		cache:    gocache.New(ttl, ttl/2),
	}
}

// OnMove is the ingestor subscription point. The lookups run in their own
// goroutine; ingest never waits on a network call.
func (r *Refresher) OnMove(sample locmodel.LocationSample) {
	go r.refresh(context.Background(), sample)
}

func (r *Refresher) refresh(ctx context.Context, sample locmodel.LocationSample) {
	info, _ := r.area(sample.UserID)

	addr, err := r.adapters.Geocoder.ReverseGeocode(ctx, sample.Point.Latitude, sample.Point.Longitude)
	if err != nil {
		logger.Warn("geocode_failed", "keeping last known address", sample.UserID, "", err.Error())
	} else {
		info.Address = addr
	}

	police, err := r.adapters.Police.FindNearestPoliceStation(ctx, sample.Point.Latitude, sample.Point.Longitude)
	if err != nil {
		logger.Warn("police_lookup_failed", "keeping last known station", sample.UserID, "", err.Error())
	} else {
		info.Police = police
	}

	r.cache.Set(areaKey(sample.UserID), info, gocache.DefaultExpiration)
}

func (r *Refresher) area(userID string) (AreaInfo, bool) {
	if v, ok := r.cache.Get(areaKey(userID)); ok {
		return v.(AreaInfo), true
	}
	return AreaInfo{}, false
}

// Area returns the cached address and police info for the user, or
// ErrLookupUnavailable if nothing has been resolved yet.
func (r *Refresher) Area(userID string) (AreaInfo, error) {
	info, ok := r.area(userID)
	if !ok {
		return AreaInfo{}, fmt.Errorf("area for %s: %w", userID, apperr.ErrLookupUnavailable)
	}
	return info, nil
}

// Hotlines resolves emergency hotlines for the user's area, caching per
// area description.
func (r *Refresher) Hotlines(ctx context.Context, userID string) ([]Hotline, error) {
	area := r.areaDescription(userID)
	key := "hotlines:" + area
	if v, ok := r.cache.Get(key); ok {
		return v.([]Hotline), nil
	}

	lines, err := r.adapters.Hotlines.GetHotlines(ctx, area)
	if err != nil {
		return nil, fmt.Errorf("hotlines for %q: %w", area, apperr.ErrLookupUnavailable)
	}
	r.cache.Set(key, lines, gocache.DefaultExpiration)
	return lines, nil
}

// LegalRights resolves legal-rights guidance for the user's area, caching
// per area description.
func (r *Refresher) LegalRights(ctx context.Context, userID string) (string, error) {
	area := r.areaDescription(userID)
	key := "legal:" + area
	if v, ok := r.cache.Get(key); ok {
		return v.(string), nil
	}

	text, err := r.adapters.Legal.GetLegalRights(ctx, area)
	if err != nil {
		return "", fmt.Errorf("legal rights for %q: %w", area, apperr.ErrLookupUnavailable)
	}
	r.cache.Set(key, text, gocache.DefaultExpiration)
	return text, nil
}

func (r *Refresher) areaDescription(userID string) string {
	if info, ok := r.area(userID); ok && info.Address != "" {
		return info.Address
	}
	return defaultArea
}

func areaKey(userID string) string { return "area:" + userID }
