// Package reason implements the subsumption and property-characteristic
// reasoner: class-hierarchy closure bit vectors recomputed to a least
// fixpoint, and materialization of inferred triples back into the store
// through the ordinary Add path, so inferred and base facts are
// indistinguishable to the matcher.
package reason

import (
	"go.uber.org/zap"

	"github.com/wbrown/janus-rdf/rdf"
)

// Hierarchy holds per-class direct-superclass edges and the derived
// transitive closure. Closure state is stale after any edge edit until
// Recompute runs; stale closures must not be consulted.
//
// Reflexivity is configurable (see WithReflexiveClosure): by default a
// class is not in its own closure unless a self-edge was asserted.
type Hierarchy struct {
	direct    map[rdf.ID]*rdf.BitVector
	closure   map[rdf.ID]*rdf.BitVector
	stale     bool
	reflexive bool
	logger    *zap.Logger
}

// HierarchyOption configures a Hierarchy.
type HierarchyOption func(*Hierarchy)

// WithReflexiveClosure makes Recompute add every class to its own closure.
// Off by default: self-membership then holds only via an explicit
// self-edge.
func WithReflexiveClosure(on bool) HierarchyOption {
	return func(h *Hierarchy) { h.reflexive = on }
}

// WithHierarchyLogger attaches a logger for recompute diagnostics.
func WithHierarchyLogger(l *zap.Logger) HierarchyOption {
	return func(h *Hierarchy) { h.logger = l }
}

// NewHierarchy creates an empty hierarchy.
func NewHierarchy(opts ...HierarchyOption) *Hierarchy {
	h := &Hierarchy{
		direct:  make(map[rdf.ID]*rdf.BitVector),
		closure: make(map[rdf.ID]*rdf.BitVector),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// AddSubclass asserts that sub is a direct subclass of super and marks
// closures stale.
func (h *Hierarchy) AddSubclass(sub, super rdf.ID) {
	dv := h.direct[sub]
	if dv == nil {
		dv = rdf.NewBitVector(0)
		h.direct[sub] = dv
	}
	dv.Set(super)
	h.stale = true
}

// Stale reports whether closures need recomputation before use.
func (h *Hierarchy) Stale() bool {
	return h.stale
}

// DirectSuperclasses returns the direct-edge vector for class, or nil.
// Read-only index storage.
func (h *Hierarchy) DirectSuperclasses(class rdf.ID) *rdf.BitVector {
	return h.direct[class]
}

// Recompute derives the superclass closure of every class by least
// fixpoint: starting from the direct edges, each pass ORs in the closures
// of every current member until a full pass changes nothing. Terminates
// because the class set is finite and closures grow monotonically.
func (h *Hierarchy) Recompute() {
	h.closure = make(map[rdf.ID]*rdf.BitVector, len(h.direct))
	for class, dv := range h.direct {
		h.closure[class] = dv.Clone()
	}
	// Root classes appear only on the superclass side of edges; they need
	// closure entries too so reflexivity covers every class seen.
	for _, dv := range h.direct {
		dv.Each(func(super rdf.ID) bool {
			if h.closure[super] == nil {
				h.closure[super] = rdf.NewBitVector(0)
			}
			return true
		})
	}

	passes := 0
	for changed := true; changed; {
		changed = false
		passes++
		for _, cv := range h.closure {
			before := cv.Popcount()
			// Or may grow cv mid-iteration; members missed by this
			// pass are picked up on the next one.
			cv.Each(func(super rdf.ID) bool {
				if sc := h.closure[super]; sc != nil {
					cv.Or(sc)
				}
				return true
			})
			if cv.Popcount() != before {
				changed = true
			}
		}
	}

	if h.reflexive {
		for class, cv := range h.closure {
			cv.Set(class)
		}
	}

	h.stale = false
	h.logger.Debug("hierarchy closure recomputed",
		zap.Int("classes", len(h.closure)),
		zap.Int("passes", passes),
	)
}

// Closure returns the superclass-closure vector for class, or nil when the
// class has none. Callers must not consult a stale hierarchy; the vector is
// read-only index storage.
func (h *Hierarchy) Closure(class rdf.ID) *rdf.BitVector {
	return h.closure[class]
}

// IsSubclassOf reports whether super is in class's closure. False on a
// stale hierarchy is meaningless; Recompute first.
func (h *Hierarchy) IsSubclassOf(class, super rdf.ID) bool {
	cv := h.closure[class]
	return cv != nil && cv.Test(super)
}
