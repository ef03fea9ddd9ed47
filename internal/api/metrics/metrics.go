// Package metrics defines and registers all custom Prometheus metrics for the
// PG marketplace API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry at package
// initialisation through promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pgmarket"

// ── Listing metrics ───────────────────────────────────────────────────────────

// ListingsCreatedTotal counts listings published by brokers.
var ListingsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "listings_created_total",
		Help:      "Total number of PG listings created.",
	},
)

// ListingsDeletedTotal counts listings removed by their owners.
var ListingsDeletedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "listings_deleted_total",
		Help:      "Total number of PG listings deleted.",
	},
)

// ImagesStoredTotal counts uploaded listing images.
// Label:
//   - backend: the blob store that accepted the image ("gridfs", "s3")
var ImagesStoredTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "images_stored_total",
		Help:      "Total number of listing images written to blob storage.",
	},
	[]string{"backend"},
)

// ── Booking metrics ───────────────────────────────────────────────────────────

var BookingsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bookings_created_total",
		Help:      "Total number of bookings created.",
	},
)

var BookingsDeletedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bookings_deleted_total",
		Help:      "Total number of bookings deleted by their renters.",
	},
)

// IdempotentReplaysTotal counts booking requests answered from an earlier
// Idempotency-Key instead of creating a new booking.
var IdempotentReplaysTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "idempotent_replays_total",
		Help:      "Total number of booking requests replayed via Idempotency-Key.",
	},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Labels:
//   - role: "user" or "broker"
//   - result: "ok", "rejected", "not_found", "invalid"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by role and result.",
	},
	[]string{"role", "result"},
)

// LoginsThrottledTotal counts login requests rejected by the rate limiter.
var LoginsThrottledTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_throttled_total",
		Help:      "Total number of login requests rejected by rate limiting.",
	},
)
