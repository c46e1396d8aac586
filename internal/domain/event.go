package domain

import "time"

// Event types pushed to subscribers. Every event uses the same envelope,
// {"type": ..., "data": ...}, and Type decides the shape of Data.
const (
	EventOutstandingTotal = "outstanding_total"

	EventPartyCreated = "party_created"
	EventPartyUpdated = "party_updated"
	EventPartyDeleted = "party_deleted"

	EventTransactionTypeCreated = "transaction_type_created"
	EventTransactionTypeUpdated = "transaction_type_updated"
	EventTransactionTypeDeleted = "transaction_type_deleted"

	EventTransactionCreated = "transaction_created"
	EventTransactionUpdated = "transaction_updated"
	EventTransactionDeleted = "transaction_deleted"
)

type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type OutstandingTotalData struct {
	Total int64 `json:"total"`
}

// DeletedData is the payload of the *_deleted events.
type DeletedData struct {
	ID int64 `json:"id"`
}

func OutstandingTotalEvent(total int64) Event {
	return Event{Type: EventOutstandingTotal, Data: OutstandingTotalData{Total: total}}
}

// LedgerEvent is the durable form of a change, written to the event log
// with Key as the partition key.
type LedgerEvent struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	Key        string      `json:"key"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data"`
}
