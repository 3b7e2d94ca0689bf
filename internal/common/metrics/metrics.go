package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SamplesIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aparajita_location_samples_ingested_total",
		Help: "Accepted location samples.",
	})

	SamplesRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aparajita_location_samples_rejected_total",
		Help: "Rejected or dropped location samples.",
	}, []string{"reason"})

	LookupRefreshes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aparajita_lookup_refreshes_total",
		Help: "Material location changes that triggered a lookup refresh.",
	})

	AlertsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aparajita_alerts_created_total",
		Help: "Distress alerts created, by origin.",
	}, []string{"origin"})

	AlertsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aparajita_alerts_expired_total",
		Help: "Alerts expired by the background sweep.",
	})

	AlertsResolved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aparajita_alerts_resolved_total",
		Help: "Alerts explicitly resolved.",
	})

	SafeExitTriggers = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aparajita_safe_exit_triggers_total",
		Help: "Safe-exit deadlines that escalated to a distress alert.",
	})

	NotificationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aparajita_notification_failures_total",
		Help: "Contact notification attempts that failed.",
	})

	ActiveAlerts = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "aparajita_active_alerts",
		Help: "Alerts currently in a non-terminal state.",
	})
)
