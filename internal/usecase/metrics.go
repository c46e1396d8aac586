package usecase

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	serialAllocations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_serial_allocations_total",
		Help: "Serial numbers successfully assigned to new transactions.",
	})

	serialRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_serial_retries_total",
		Help: "Inserts retried after a serial number conflict.",
	})

	aggregateDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ledger_aggregate_duration_seconds",
		Help:    "Time spent computing outstanding totals.",
		Buckets: prometheus.DefBuckets,
	}, []string{"scope"})
)
