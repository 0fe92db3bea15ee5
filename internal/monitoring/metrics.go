package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reservationsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reservations_created_total",
			Help: "Total reservations created",
		},
	)

	paymentsRequested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "payment_intents_issued_total",
			Help: "Total payment intents issued to customers",
		},
	)

	paymentsVerified = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "payments_verified_total",
			Help: "Total payments confirmed by an operator",
		},
	)

	tokensMinted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "handover_tokens_minted_total",
			Help: "Total handover tokens minted",
		},
	)

	vehiclesCollected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vehicles_collected_total",
			Help: "Total vehicle handovers completed",
		},
	)
)

// Counters are bumped from the handlers at each lifecycle milestone so the
// /metrics endpoint exposes a funnel of the booking pipeline.

func ReservationCreated() { reservationsCreated.Inc() }

func PaymentRequested() { paymentsRequested.Inc() }

func PaymentVerified() { paymentsVerified.Inc() }

func TokenMinted() { tokensMinted.Inc() }

func VehicleCollected() { vehiclesCollected.Inc() }
