// Package store implements the in-memory triple store: a two-level index in
// which per-predicate and per-object bit vectors act as fast-reject
// candidate filters over an exact (predicate, subject) -> objects hash index.
//
// The bit-vector level can prove non-membership cheaply but never
// membership; every positive answer is verified against the PS-index. This
// split keeps the common negative path to a single word test while the
// positive path scans a typically tiny object list.
package store

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/wbrown/janus-rdf/rdf"
)

// Store owns the triple indices and the append-only triple log. It is not
// internally synchronized: callers must serialize mutation externally.
// Read-only operations (Ask, Objects, Subjects, the snapshot accessors) are
// safe to run concurrently on a quiescent store.
type Store struct {
	interner *rdf.Interner

	// pred[p] has bit s set iff subject s has at least one triple with
	// predicate p, regardless of object. Existence pre-filter only.
	pred map[rdf.ID]*rdf.BitVector

	// obj[o] has bit s set iff some triple (s, _, o) exists. Symmetric
	// pre-filter for object-bound queries.
	obj map[rdf.ID]*rdf.BitVector

	// ps is the exact index; see psindex.go.
	ps *psIndex

	// log records every asserted triple including duplicates. Its length
	// is the triple count, which may exceed the distinct count.
	log []rdf.Triple

	distinct int

	logger *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger attaches a logger for cold-path diagnostics (snapshot stats).
// The default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New creates an empty store over the given interner. The interner defines
// which identifiers are valid: Add rejects IDs the interner never assigned.
func New(interner *rdf.Interner, opts ...Option) *Store {
	s := &Store{
		interner: interner,
		pred:     make(map[rdf.ID]*rdf.BitVector, 64),
		obj:      make(map[rdf.ID]*rdf.BitVector, 256),
		ps:       newPSIndex(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Interner returns the interner the store was built over.
func (st *Store) Interner() *rdf.Interner {
	return st.interner
}

// checkID verifies id was assigned by the interner.
func (st *Store) checkID(id rdf.ID, position string) error {
	if int(id) >= st.interner.Len() {
		return errors.Wrapf(rdf.ErrUnknownSymbol, "%s id %d was never interned (max %d)",
			position, id, st.interner.Len()-1)
	}
	return nil
}

// Add asserts the triple (s, p, o). The raw log always grows, so re-adding
// an existing triple increases TripleCount without changing index state or
// DistinctCount. Identifiers that were never interned are a checked error,
// not undefined behavior.
func (st *Store) Add(t rdf.Triple) error {
	if err := st.checkID(t.S, "subject"); err != nil {
		return err
	}
	if err := st.checkID(t.P, "predicate"); err != nil {
		return err
	}
	if err := st.checkID(t.O, "object"); err != nil {
		return err
	}

	pv := st.pred[t.P]
	if pv == nil {
		pv = rdf.NewBitVector(st.interner.Len())
		st.pred[t.P] = pv
	}
	pv.Set(t.S)

	ov := st.obj[t.O]
	if ov == nil {
		ov = rdf.NewBitVector(st.interner.Len())
		st.obj[t.O] = ov
	}
	ov.Set(t.S)

	if st.ps.insert(t.S, t.P, t.O) {
		st.distinct++
	}
	st.log = append(st.log, t)
	return nil
}

// Ask reports whether the distinct triple (s, p, o) is in the store.
// The predicate-index bit for (p, s) is tested first; if unset the answer
// is false without touching the PS-index. Out-of-range identifiers are
// simply non-members.
func (st *Store) Ask(t rdf.Triple) bool {
	pv := st.pred[t.P]
	if pv == nil || !pv.Test(t.S) {
		return false
	}
	return st.ps.contains(t.S, t.P, t.O)
}

// HasPredicate reports whether subject s has any triple with predicate p.
// This is the raw fast-reject test the matcher and validator build on.
func (st *Store) HasPredicate(p, s rdf.ID) bool {
	pv := st.pred[p]
	return pv != nil && pv.Test(s)
}

// Objects returns the object set for (p, s). The returned slice is index
// storage: callers must not mutate it.
func (st *Store) Objects(p, s rdf.ID) []rdf.ID {
	return st.ps.get(s, p)
}

// ObjectCount returns the number of distinct objects asserted for (p, s).
func (st *Store) ObjectCount(p, s rdf.ID) int {
	return st.ps.count(s, p)
}

// PredicateSubjects returns the subjects bit vector for predicate p, or nil
// if p was never asserted. The vector is index storage: read-only.
func (st *Store) PredicateSubjects(p rdf.ID) *rdf.BitVector {
	return st.pred[p]
}

// ObjectSubjects returns the bit vector of subjects referencing object o
// through any predicate, or nil if o was never an object. Read-only.
func (st *Store) ObjectSubjects(o rdf.ID) *rdf.BitVector {
	return st.obj[o]
}

// Subjects returns every subject whose (p, *) object set contains o. The
// object index narrows candidates to subjects referencing o at all, the
// predicate index narrows to subjects carrying p, and each survivor is
// verified exactly - the bit vectors alone cannot tell which predicate
// linked the subject to o.
func (st *Store) Subjects(p, o rdf.ID) *rdf.BitVector {
	out := rdf.NewBitVector(0)
	ov := st.obj[o]
	pv := st.pred[p]
	if ov == nil || pv == nil {
		return out
	}
	cand := ov.Clone()
	cand.And(pv)
	cand.Each(func(s rdf.ID) bool {
		if st.ps.contains(s, p, o) {
			out.Set(s)
		}
		return true
	})
	return out
}

// SubjectPredicates returns the bit vector over predicate IDs carried by
// subject s, the "has predicate" mask the shape validator tests against.
// The caller owns the returned vector.
func (st *Store) SubjectPredicates(s rdf.ID) *rdf.BitVector {
	out := rdf.NewBitVector(st.interner.Len())
	for p, pv := range st.pred {
		if pv.Test(s) {
			out.Set(p)
		}
	}
	return out
}

// TripleCount returns the length of the raw triple log, duplicates
// included.
func (st *Store) TripleCount() int {
	return len(st.log)
}

// DistinctCount returns the number of distinct triples the indices encode.
func (st *Store) DistinctCount() int {
	return st.distinct
}

// Triples returns the raw append-only triple log. The slice is the store's
// own storage, exposed read-only for the snapshot writer; callers must not
// mutate it.
func (st *Store) Triples() []rdf.Triple {
	return st.log
}

// Snapshot is the read-only view the AOT serialization collaborator
// consumes: the raw log plus index sizing.
type Snapshot struct {
	Triples       []rdf.Triple
	TripleCount   int
	DistinctCount int
	Predicates    int
	Objects       int
	PSEntries     int
	MaxID         int
}

// Snapshot captures the current store state. The Triples slice aliases the
// internal log; the caller must not mutate it and must not hold it across
// further writes.
func (st *Store) Snapshot() Snapshot {
	snap := Snapshot{
		Triples:       st.log,
		TripleCount:   len(st.log),
		DistinctCount: st.distinct,
		Predicates:    len(st.pred),
		Objects:       len(st.obj),
		PSEntries:     st.ps.entries(),
		MaxID:         st.interner.Len() - 1,
	}
	st.logger.Debug("store snapshot",
		zap.Int("triples", snap.TripleCount),
		zap.Int("distinct", snap.DistinctCount),
		zap.Int("predicates", snap.Predicates),
		zap.Int("objects", snap.Objects),
	)
	return snap
}
