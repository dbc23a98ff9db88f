package engine

import (
	"github.com/google/uuid"
)

// IDGenerator assigns identities to new users, addresses, orders,
// notifications and products.
// Implemented by UUIDGenerator (production) and testutil.SequentialIDs (tests).
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator generates time-sortable UUIDv7 identifiers.
//
// UUIDv7 embeds a timestamp in the most significant bits, so ids sort by
// creation time the same way the storefront's timestamp ids did.
//
// Thread-safety: UUIDGenerator is stateless and safe for concurrent use.
type UUIDGenerator struct{}

// NewID creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDGenerator) NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}
