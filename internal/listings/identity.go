package listings

import (
	"github.com/google/uuid"

	"github.com/goliatone/go-doccorpus/internal/identity"
)

// ListingID derives a deterministic UUID for the ordinal-th listing of the
// document at path, so re-extracting an unchanged corpus yields the same ids.
func ListingID(path string, ordinal int) uuid.UUID {
	return identity.ListingUUID(path, ordinal)
}
