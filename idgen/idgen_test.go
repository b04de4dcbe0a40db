package idgen

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestUUIDv7_Format(t *testing.T) {
	id := UUIDv7()()
	u, err := uuid.Parse(id)
	if err != nil {
		t.Fatalf("UUIDv7: %q does not parse: %v", id, err)
	}
	if u.Version() != 7 {
		t.Fatalf("UUIDv7: version %d, want 7", u.Version())
	}
}

func TestUUIDv7_Uniqueness(t *testing.T) {
	gen := UUIDv7()
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id := gen()
		if _, ok := seen[id]; ok {
			t.Fatalf("UUIDv7: duplicate at iteration %d", i)
		}
		seen[id] = struct{}{}
	}
}

func TestUUIDv7_TimeOrdered(t *testing.T) {
	gen := UUIDv7()
	prev := gen()
	for i := 0; i < 100; i++ {
		id := gen()
		if strings.Compare(id, prev) <= 0 {
			t.Fatalf("UUIDv7: %q not after %q", id, prev)
		}
		prev = id
	}
}

func TestSequence(t *testing.T) {
	gen := Sequence("w")
	if got := gen(); got != "w1" {
		t.Fatalf("first id = %q, want w1", got)
	}
	if got := gen(); got != "w2" {
		t.Fatalf("second id = %q, want w2", got)
	}
}
