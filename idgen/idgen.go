// Package idgen produces the opaque ids stored on vocabulary and archive
// entries.
package idgen

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// Generator produces unique string identifiers.
type Generator func() string

// UUIDv7 returns a Generator of RFC 9562 UUID v7 strings. They embed the
// creation time in milliseconds and sort by it.
func UUIDv7() Generator {
	return func() string {
		return uuid.Must(uuid.NewV7()).String()
	}
}

// Sequence returns a Generator of "<prefix>1", "<prefix>2", ... Tests use it
// for predictable ids.
func Sequence(prefix string) Generator {
	var n atomic.Int64
	return func() string {
		return fmt.Sprintf("%s%d", prefix, n.Add(1))
	}
}

// Default is used by stores that are not given a Generator.
var Default Generator = UUIDv7()
