package rdf

import (
	"github.com/cockroachdb/errors"
)

const (
	// Initial slot count; must be a power of two.
	internerInitialSlots = 256

	// Grow when occupancy crosses 3/4 of the slot count.
	internerMaxLoadNum = 3
	internerMaxLoadDen = 4

	// Hard ceiling on the slot table. IDs are 32-bit, so the table can
	// never need to address more than 1<<32 strings; growth past this
	// point reports ErrCapacityExceeded instead of wrapping.
	internerMaxSlots = 1 << 31
)

// FNV-1a constants (64-bit variant).
const (
	fnvOffset64 = 14695981039346656037
	fnvPrime64  = 1099511628211
)

// Interner is a bidirectional string/ID table. Interning the same string
// twice returns the same ID; distinct strings always receive distinct IDs.
// IDs are dense: the Nth distinct string interned receives ID N-1.
//
// The table is open-addressed with linear probing over a power-of-two slot
// array, keyed by the FNV-1a hash of the string. Resolve is the inverse
// mapping and is O(1) via the id-to-string slice; it is intended for cold and
// diagnostic paths only.
//
// An Interner frozen with Freeze enters closed mode: Intern on a string not
// already present fails with ErrUnknownSymbol instead of inserting. This
// supports build pipelines where the symbol table is fixed ahead of the
// query-serving phase.
//
// Not internally synchronized: interleave writers externally. Concurrent
// read-only use (Lookup, Resolve, and Intern on a frozen table) is safe.
type Interner struct {
	slots   []uint32 // slot -> id+1; 0 means empty
	strings []string // id -> string
	frozen  bool
}

// NewInterner creates an empty interner in open (insert-allowed) mode.
func NewInterner() *Interner {
	return &Interner{
		slots: make([]uint32, internerInitialSlots),
	}
}

// fnv1a computes the 64-bit FNV-1a hash of s without allocating.
func fnv1a(s string) uint64 {
	h := uint64(fnvOffset64)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= fnvPrime64
	}
	return h
}

// findSlot probes for s and returns the slot index holding it, or the first
// empty slot if absent. The table always has free slots (load factor < 1),
// so the probe loop terminates.
func (in *Interner) findSlot(s string) int {
	mask := uint64(len(in.slots) - 1)
	i := fnv1a(s) & mask
	for {
		ref := in.slots[i]
		if ref == 0 {
			return int(i)
		}
		if in.strings[ref-1] == s {
			return int(i)
		}
		i = (i + 1) & mask
	}
}

// grow doubles the slot table and rehashes every entry.
func (in *Interner) grow() error {
	if len(in.slots) >= internerMaxSlots {
		return errors.Wrapf(ErrCapacityExceeded, "interner at %d slots", len(in.slots))
	}
	old := in.slots
	in.slots = make([]uint32, len(old)*2)
	mask := uint64(len(in.slots) - 1)
	for _, ref := range old {
		if ref == 0 {
			continue
		}
		i := fnv1a(in.strings[ref-1]) & mask
		for in.slots[i] != 0 {
			i = (i + 1) & mask
		}
		in.slots[i] = ref
	}
	return nil
}

// Intern returns the ID for s, assigning the next dense ID if s has not been
// seen before. On a frozen interner, an unseen s fails with ErrUnknownSymbol.
func (in *Interner) Intern(s string) (ID, error) {
	slot := in.findSlot(s)
	if ref := in.slots[slot]; ref != 0 {
		return ID(ref - 1), nil
	}
	if in.frozen {
		return 0, errors.Wrapf(ErrUnknownSymbol, "intern %q on frozen table", s)
	}
	if (len(in.strings)+1)*internerMaxLoadDen >= len(in.slots)*internerMaxLoadNum {
		if err := in.grow(); err != nil {
			return 0, err
		}
		slot = in.findSlot(s)
	}
	id := ID(len(in.strings))
	in.strings = append(in.strings, s)
	in.slots[slot] = uint32(id) + 1
	return id, nil
}

// MustIntern is Intern for call sites that have already guaranteed open mode
// and bounded growth, such as test fixtures. Panics on error.
func (in *Interner) MustIntern(s string) ID {
	id, err := in.Intern(s)
	if err != nil {
		panic(err)
	}
	return id
}

// Lookup returns the ID for s without inserting.
func (in *Interner) Lookup(s string) (ID, bool) {
	ref := in.slots[in.findSlot(s)]
	if ref == 0 {
		return 0, false
	}
	return ID(ref - 1), true
}

// Resolve returns the string for id. Fails with ErrUnknownSymbol for an ID
// that was never assigned.
func (in *Interner) Resolve(id ID) (string, error) {
	if int(id) >= len(in.strings) {
		return "", errors.Wrapf(ErrUnknownSymbol, "resolve id %d (have %d)", id, len(in.strings))
	}
	return in.strings[id], nil
}

// Len returns the number of distinct strings interned so far. This is also
// the exclusive upper bound on assigned IDs.
func (in *Interner) Len() int {
	return len(in.strings)
}

// Freeze switches the interner to closed mode. Existing entries remain
// resolvable; unseen strings now fail fast. Irreversible.
func (in *Interner) Freeze() {
	in.frozen = true
}

// Frozen reports whether the interner is in closed mode.
func (in *Interner) Frozen() bool {
	return in.frozen
}
