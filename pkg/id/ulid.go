package id

import (
	"github.com/oklog/ulid/v2"
)

/**
 * @file: ulid.go
 * @description: time ordered ids for object keys
 */

// GetUlid returns a lexically sortable id; ulid.Make is safe for concurrent
// use and monotonic within a millisecond.
func GetUlid() string {
	return ulid.Make().String()
}
