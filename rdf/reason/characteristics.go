package reason

import (
	"strings"
)

// Characteristic is a bitmask of property-characteristic flags attached to
// a predicate. Read-only input to the materialization loop.
type Characteristic uint8

const (
	// Transitive: (a,p,b) and (b,p,c) imply (a,p,c).
	Transitive Characteristic = 1 << iota
	// Symmetric: (a,p,b) implies (b,p,a).
	Symmetric
	// Functional: a subject may have at most one object under p.
	Functional
	// InverseFunctional: an object may have at most one subject under p.
	InverseFunctional
)

// Has reports whether all flags in c2 are set in c.
func (c Characteristic) Has(c2 Characteristic) bool {
	return c&c2 == c2
}

func (c Characteristic) String() string {
	if c == 0 {
		return "none"
	}
	var parts []string
	if c.Has(Transitive) {
		parts = append(parts, "transitive")
	}
	if c.Has(Symmetric) {
		parts = append(parts, "symmetric")
	}
	if c.Has(Functional) {
		parts = append(parts, "functional")
	}
	if c.Has(InverseFunctional) {
		parts = append(parts, "inverse-functional")
	}
	return strings.Join(parts, "|")
}
