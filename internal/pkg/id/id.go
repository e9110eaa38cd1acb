package id

import (
	"github.com/oklog/ulid/v2"
)

// New generates a user id. ULIDs sort by creation time, so ids read back from
// any of the user stores order by registration time.
func New() string {
	return ulid.Make().String()
}
