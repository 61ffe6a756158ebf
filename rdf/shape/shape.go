// Package shape implements compiled SHACL-like constraint descriptors and
// their evaluator. A Shape is built once, is read-only afterwards, and is
// evaluated against subjects using only the store's indices: the target
// class and required/forbidden property tests are bit-mask operations, the
// cardinality tests read PS-index entry sizes, and logical combinators
// recurse over sub-shapes.
package shape

import (
	"github.com/wbrown/janus-rdf/rdf"
)

// Combinator is the closed set of logical combinators over sub-shapes.
type Combinator uint8

const (
	// CombNone: no sub-shapes, steps (a)-(d) alone decide conformance.
	CombNone Combinator = iota
	// CombAnd: every sub-shape must conform.
	CombAnd
	// CombOr: at least one sub-shape must conform.
	CombOr
	// CombNot: no sub-shape may conform.
	CombNot
	// CombExactlyOne: exactly one sub-shape must conform.
	CombExactlyOne
)

func (c Combinator) String() string {
	switch c {
	case CombAnd:
		return "and"
	case CombOr:
		return "or"
	case CombNot:
		return "not"
	case CombExactlyOne:
		return "exactly-one"
	default:
		return "none"
	}
}

// Cardinality bounds the object-set size of one predicate on a conforming
// subject. Max < 0 means unbounded above.
type Cardinality struct {
	Predicate rdf.ID
	Min       int
	Max       int
}

// Shape is a compiled constraint descriptor. Immutable after Compile; the
// builder clones every mask so later builder reuse cannot alias into a
// compiled shape.
type Shape struct {
	name string

	// typePredicate identifies class-assertion triples (e.g. rdf:type).
	typePredicate rdf.ID

	// targetClasses selects the subjects this shape applies to. A subject
	// whose asserted types miss the mask entirely is non-applicable:
	// vacuously conforming, never violated. A nil mask targets every
	// subject.
	targetClasses *rdf.BitVector

	required  *rdf.BitVector // predicate bits that must be present
	forbidden *rdf.BitVector // predicate bits that must be absent
	cards     []Cardinality

	comb Combinator
	subs []*Shape
}

// Name returns the shape's diagnostic name.
func (s *Shape) Name() string {
	return s.name
}

// Builder accumulates shape constraints and compiles them into an immutable
// Shape.
type Builder struct {
	shape Shape
}

// NewBuilder starts a shape named for diagnostics, with typePredicate
// identifying class-assertion triples.
func NewBuilder(name string, typePredicate rdf.ID) *Builder {
	return &Builder{shape: Shape{
		name:          name,
		typePredicate: typePredicate,
	}}
}

// TargetClass adds classes to the target-class mask.
func (b *Builder) TargetClass(classes ...rdf.ID) *Builder {
	if b.shape.targetClasses == nil {
		b.shape.targetClasses = rdf.NewBitVector(0)
	}
	for _, c := range classes {
		b.shape.targetClasses.Set(c)
	}
	return b
}

// Require marks predicates that must be present on a conforming subject.
func (b *Builder) Require(predicates ...rdf.ID) *Builder {
	if b.shape.required == nil {
		b.shape.required = rdf.NewBitVector(0)
	}
	for _, p := range predicates {
		b.shape.required.Set(p)
	}
	return b
}

// Forbid marks predicates that must be absent on a conforming subject.
func (b *Builder) Forbid(predicates ...rdf.ID) *Builder {
	if b.shape.forbidden == nil {
		b.shape.forbidden = rdf.NewBitVector(0)
	}
	for _, p := range predicates {
		b.shape.forbidden.Set(p)
	}
	return b
}

// Count bounds the object-set size for predicate p to [min, max].
// max < 0 means unbounded above.
func (b *Builder) Count(p rdf.ID, min, max int) *Builder {
	b.shape.cards = append(b.shape.cards, Cardinality{Predicate: p, Min: min, Max: max})
	return b
}

// Combine attaches sub-shapes under a combinator.
func (b *Builder) Combine(comb Combinator, subs ...*Shape) *Builder {
	b.shape.comb = comb
	b.shape.subs = append(b.shape.subs, subs...)
	return b
}

// Compile freezes the accumulated constraints into a read-only Shape.
func (b *Builder) Compile() *Shape {
	s := b.shape
	if s.targetClasses != nil {
		s.targetClasses = s.targetClasses.Clone()
	}
	if s.required != nil {
		s.required = s.required.Clone()
	}
	if s.forbidden != nil {
		s.forbidden = s.forbidden.Clone()
	}
	s.cards = append([]Cardinality(nil), s.cards...)
	s.subs = append([]*Shape(nil), s.subs...)
	return &s
}
