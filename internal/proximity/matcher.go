package proximity

import (
	"sort"

	"aparajita/internal/alert/model"
	"aparajita/internal/geo"
)

// Result is one ranked nearby alert. Derived, never stored; recomputed on
// every material location change or alert-set change.
type Result struct {
	Alert          model.DistressAlert `json:"alert"`
	DistanceMeters float64             `json:"distance_meters"`
	Rank           int                 `json:"rank"`
}

// MatchNearby ranks the given alerts by haversine distance from the
// observer, ascending, ties broken by alert creation time (earlier first).
// Only Broadcasting and Tracked alerts within radiusMeters qualify.
func MatchNearby(observer geo.Point, alerts []model.DistressAlert, radiusMeters float64) []Result {
	results := make([]Result, 0, len(alerts))
	for _, a := range alerts {
		if a.State != model.AlertBroadcasting && a.State != model.AlertTracked {
			continue
		}
		d := geo.Distance(observer, a.Location)
		if d > radiusMeters {
			continue
		}
		results = append(results, Result{Alert: a, DistanceMeters: d})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].DistanceMeters != results[j].DistanceMeters {
			return results[i].DistanceMeters < results[j].DistanceMeters
		}
		return results[i].Alert.CreatedAt.Before(results[j].Alert.CreatedAt)
	})

	for i := range results {
		results[i].Rank = i + 1
	}
	return results
}
