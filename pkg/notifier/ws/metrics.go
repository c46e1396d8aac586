package ws

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	subscribersGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ledger_notifier_subscribers",
			Help: "Number of live ledger subscribers",
		},
	)

	deliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_notifier_deliveries_total",
			Help: "Ledger push deliveries by outcome",
		},
		[]string{"status"},
	)
)
