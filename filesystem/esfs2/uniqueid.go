package esfs2

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// UniqueID is the on-disk 16-byte opaque identifier used for volume and
// node identity. Equality is bytewise, matching spec.md's data model.
//
// It is defined as uuid.UUID rather than a bare [16]byte so the package
// gets uuid.Nil's zero-value check and uuid.UUID's comparability for free;
// its String() form (dashed) is intentionally unused here, since
// spec.md requires the undashed 32-character lowercase rendering for
// FileSystem.UUID() — see Hex below.
type UniqueID uuid.UUID

// IsZero reports whether the identifier is all-zero (uuid.Nil).
func (id UniqueID) IsZero() bool {
	return uuid.UUID(id) == uuid.Nil
}

// Hex renders the identifier as 32 lowercase hex characters with no
// separators, the format spec.md §6 requires of uuid(device).
func (id UniqueID) Hex() string {
	return hex.EncodeToString(id[:])
}

func uniqueIDFromBytes(b []byte) UniqueID {
	var id UniqueID
	copy(id[:], b)
	return id
}
