package pub

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	relayMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_relay_messages_total",
		Help: "Notifier messages passed through the redis relay.",
	}, []string{"direction", "status"})

	eventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_events_published_total",
		Help: "Ledger events written to the event log.",
	}, []string{"status"})
)
