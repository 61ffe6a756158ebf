package store

import (
	"github.com/wbrown/janus-rdf/rdf"
)

// psKey packs a (predicate, subject) pair into a single map key.
// Predicate in the high 32 bits, subject in the low 32.
func psKey(p, s rdf.ID) uint64 {
	return uint64(p)<<32 | uint64(s)
}

// psIndex is the exact-membership side of the store: a hash index from
// (predicate, subject) to the set of object IDs asserted for that pair.
// Most predicates are near-functional, so the object sets are short slices
// scanned linearly; a linear scan over a handful of IDs in one cache line
// beats any nested structure.
type psIndex struct {
	objects map[uint64][]rdf.ID
}

func newPSIndex() *psIndex {
	return &psIndex{objects: make(map[uint64][]rdf.ID, 256)}
}

// insert adds o to the object set for (p, s) if absent. Returns true when
// the set changed, i.e. the distinct triple is new.
func (ix *psIndex) insert(s, p, o rdf.ID) bool {
	k := psKey(p, s)
	set := ix.objects[k]
	for _, have := range set {
		if have == o {
			return false
		}
	}
	ix.objects[k] = append(set, o)
	return true
}

// contains reports whether o is in the object set for (p, s).
func (ix *psIndex) contains(s, p, o rdf.ID) bool {
	for _, have := range ix.objects[psKey(p, s)] {
		if have == o {
			return true
		}
	}
	return false
}

// get returns the object set for (p, s). The returned slice is the index's
// own storage: callers must not mutate it.
func (ix *psIndex) get(s, p rdf.ID) []rdf.ID {
	return ix.objects[psKey(p, s)]
}

// count returns the object-set size for (p, s), the cardinality the shape
// validator constrains.
func (ix *psIndex) count(s, p rdf.ID) int {
	return len(ix.objects[psKey(p, s)])
}

// entries returns the number of (predicate, subject) keys held.
func (ix *psIndex) entries() int {
	return len(ix.objects)
}
