package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the ISO calendar date used on the wire and in query parameters.
const DateLayout = "2006-01-02"

// Date is a calendar day. It marshals as "YYYY-MM-DD".
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO calendar date in UTC.
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return Date{Time: t}, nil
}

// DateOf drops the time of day so comparisons are per calendar day.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

type Transaction struct {
	ID              int64      `json:"id"`
	SerialNumber    int64      `json:"serial_number"`
	Date            Date       `json:"date"`
	PartyID         int64      `json:"party_id"`
	TypeID          int64      `json:"type_id"`
	Amount          int64      `json:"amount"`
	TransactionNote *string    `json:"transaction_note,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
}

// TransactionWithRelations is a listing row: the transaction plus the party
// name and type classification resolved through joins.
type TransactionWithRelations struct {
	Transaction
	PartyName string          `json:"party_name"`
	TypeKind  TransactionKind `json:"type_kind"`
	TypeNote  string          `json:"type_note"`
}

type CreateTransactionRequest struct {
	Date            Date    `json:"date"`
	PartyID         int64   `json:"party_id"`
	TypeID          int64   `json:"type_id"`
	Amount          int64   `json:"amount"`
	TransactionNote *string `json:"transaction_note,omitempty"`
}

// UpdateTransactionRequest carries only the fields being changed.
type UpdateTransactionRequest struct {
	Date            *Date   `json:"date,omitempty"`
	PartyID         *int64  `json:"party_id,omitempty"`
	TypeID          *int64  `json:"type_id,omitempty"`
	Amount          *int64  `json:"amount,omitempty"`
	TransactionNote *string `json:"transaction_note,omitempty"`
}

func (r *UpdateTransactionRequest) IsEmpty() bool {
	return r.Date == nil && r.PartyID == nil && r.TypeID == nil && r.Amount == nil && r.TransactionNote == nil
}

// TransactionFilter narrows listings and aggregates. Every field is optional;
// DateStart and DateEnd are inclusive calendar-day bounds.
type TransactionFilter struct {
	PartyFilter string
	DateStart   *Date
	DateEnd     *Date
}

// Matches reports whether a transaction with the given party name and date
// falls inside the filter.
func (f TransactionFilter) Matches(partyName string, date Date) bool {
	if f.PartyFilter != "" && !ContainsFold(partyName, f.PartyFilter) {
		return false
	}
	if f.DateStart != nil && date.Before(f.DateStart.Time) {
		return false
	}
	if f.DateEnd != nil && date.After(f.DateEnd.Time) {
		return false
	}
	return true
}
