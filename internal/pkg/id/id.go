package id

import (
	"github.com/oklog/ulid/v2"
)

// New returns a ULID. IDs minted by one process sort by creation time, even within a
// millisecond, which keeps file keys and KYC references ordered.
func New() string {
	return ulid.Make().String()
}

// Valid reports whether s is a canonical ULID, so malformed path ids can be rejected
// before a store lookup.
func Valid(s string) bool {
	_, err := ulid.ParseStrict(s)
	return err == nil
}
