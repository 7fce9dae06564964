package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	OutcomeOK      = "ok"
	OutcomeInvalid = "invalid"
	OutcomeFailed  = "failed"
)

var (
	ContactSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "foundation",
		Name:      "contact_submissions_total",
		Help:      "Contact form submissions by outcome.",
	}, []string{"outcome"})

	ScholarshipSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "foundation",
		Name:      "scholarship_submissions_total",
		Help:      "Scholarship applications by variant and outcome.",
	}, []string{"variant", "outcome"})

	Uploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "foundation",
		Name:      "uploads_total",
		Help:      "Objects written to storage by bucket and outcome.",
	}, []string{"bucket", "outcome"})

	AdminLogins = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "foundation",
		Name:      "admin_logins_total",
		Help:      "Admin login attempts by outcome.",
	}, []string{"outcome"})

	Heartbeats = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "foundation",
		Name:      "heartbeats_total",
		Help:      "Heartbeat rows written.",
	})

	OrphansRemoved = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "foundation",
		Name:      "orphan_objects_removed_total",
		Help:      "Unattached uploads removed by the sweeper.",
	})
)
