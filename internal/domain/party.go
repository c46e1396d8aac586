package domain

import (
	"strings"
	"time"
)

type Party struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	BillingName *string    `json:"billing_name,omitempty"`
	Location    *string    `json:"location,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

type CreatePartyRequest struct {
	Name        string  `json:"name"`
	BillingName *string `json:"billing_name,omitempty"`
	Location    *string `json:"location,omitempty"`
}

type UpdatePartyRequest struct {
	Name        *string `json:"name,omitempty"`
	BillingName *string `json:"billing_name,omitempty"`
	Location    *string `json:"location,omitempty"`
}

func (r *UpdatePartyRequest) IsEmpty() bool {
	return r.Name == nil && r.BillingName == nil && r.Location == nil
}

// ContainsFold is a case-insensitive substring match.
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
