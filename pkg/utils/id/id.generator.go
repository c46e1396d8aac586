package id

import (
	"crypto/rand"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// GenerateULID returns prefix_<ulid>. ULIDs sort by creation time, which
// keeps connection ids readable in logs.
func GenerateULID(prefix string) string {
	id := ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(rand.Reader, 0))
	return prefix + "_" + id.String()
}

// GenerateEventID returns a random UUID for outbound events.
func GenerateEventID() string {
	return uuid.NewString()
}
