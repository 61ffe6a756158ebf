package rdf

import (
	"fmt"
)

// ID is a dense identifier standing in for an interned string.
// IDs are assigned sequentially from zero by an Interner, are stable for the
// lifetime of the store, and are never reused or reassigned.
type ID uint32

// Triple is the fundamental unit of data: an ordered
// (subject, predicate, object) tuple of interned identifiers.
type Triple struct {
	S ID // Subject identifier
	P ID // Predicate identifier
	O ID // Object identifier
}

// String returns a string representation of the Triple
func (t Triple) String() string {
	return fmt.Sprintf("[%d %d %d]", t.S, t.P, t.O)
}
