package domain

import (
	"fmt"
	"time"
)

// TransactionKind is the sign a type applies to its transactions' amounts.
type TransactionKind string

const (
	KindIncrease TransactionKind = "increase"
	KindDecrease TransactionKind = "decrease"
)

// ParseKind accepts the canonical names and the legacy add/reduce aliases.
func ParseKind(s string) (TransactionKind, error) {
	switch s {
	case "increase", "add":
		return KindIncrease, nil
	case "decrease", "reduce":
		return KindDecrease, nil
	default:
		return "", fmt.Errorf("invalid transaction kind %q: must be 'increase' or 'decrease'", s)
	}
}

func (k TransactionKind) Valid() bool {
	return k == KindIncrease || k == KindDecrease
}

type TransactionType struct {
	ID        int64           `json:"id"`
	Note      string          `json:"note"`
	Kind      TransactionKind `json:"kind"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt *time.Time      `json:"updated_at,omitempty"`
}

type CreateTransactionTypeRequest struct {
	Note string          `json:"note"`
	Kind TransactionKind `json:"kind"`
}

type UpdateTransactionTypeRequest struct {
	Note *string          `json:"note,omitempty"`
	Kind *TransactionKind `json:"kind,omitempty"`
}

func (r *UpdateTransactionTypeRequest) IsEmpty() bool {
	return r.Note == nil && r.Kind == nil
}
