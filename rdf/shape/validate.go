package shape

import (
	"github.com/wbrown/janus-rdf/rdf"
	"github.com/wbrown/janus-rdf/rdf/store"
)

// ConstraintKind names which constraint a violation concerns.
type ConstraintKind uint8

const (
	KindRequired ConstraintKind = iota
	KindForbidden
	KindMinCount
	KindMaxCount
	KindCombinator
)

func (k ConstraintKind) String() string {
	switch k {
	case KindRequired:
		return "required"
	case KindForbidden:
		return "forbidden"
	case KindMinCount:
		return "min-count"
	case KindMaxCount:
		return "max-count"
	case KindCombinator:
		return "combinator"
	default:
		return "unknown"
	}
}

// Violation describes one failed constraint: which shape, which kind of
// constraint, and for property constraints which predicate. Violations are
// data, not errors: validation always completes and reports.
type Violation struct {
	Shape     string
	Kind      ConstraintKind
	Predicate rdf.ID // meaningful for property and cardinality kinds
	Got       int    // observed count for cardinality kinds
	Want      int    // bound for cardinality kinds, conforming-sub count for combinator
}

// Result is the outcome of validating one subject against one shape.
// A non-applicable shape (target-class miss) conforms vacuously with
// Applicable false.
type Result struct {
	Subject    rdf.ID
	Shape      string
	Applicable bool
	Conforms   bool
	Violations []Violation
}

// Validator evaluates compiled shapes against a store. Read-only over the
// store: concurrent validation of different subjects is safe on a
// quiescent store.
type Validator struct {
	st     *store.Store
	shapes []*Shape
}

// NewValidator creates a validator over st for the given shapes.
func NewValidator(st *store.Store, shapes ...*Shape) *Validator {
	return &Validator{st: st, shapes: shapes}
}

// Shapes returns the compiled shapes the validator evaluates.
func (v *Validator) Shapes() []*Shape {
	return v.shapes
}

// Validate evaluates every shape against subject and returns one Result per
// shape, in shape order.
func (v *Validator) Validate(subject rdf.ID) []Result {
	out := make([]Result, 0, len(v.shapes))
	for _, s := range v.shapes {
		out = append(out, v.validateOne(subject, s))
	}
	return out
}

// Conforms reports whether subject conforms to every applicable shape.
func (v *Validator) Conforms(subject rdf.ID) bool {
	for _, r := range v.Validate(subject) {
		if !r.Conforms {
			return false
		}
	}
	return true
}

// validateOne runs the evaluation order of a single shape, short-circuiting
// on the first failed step:
//
//	(a) target class   - non-applicable shapes conform vacuously
//	(b) required mask  - every required predicate bit present
//	(c) forbidden mask - no forbidden predicate bit present
//	(d) cardinality    - PS-index entry sizes within bounds
//	(e) combinators    - recursive boolean combination of sub-shapes
func (v *Validator) validateOne(subject rdf.ID, s *Shape) Result {
	res := Result{Subject: subject, Shape: s.name, Applicable: true, Conforms: true}

	// (a) target class: asserted types intersected with the target mask must be non-empty.
	if s.targetClasses != nil {
		applicable := false
		for _, class := range v.st.Objects(s.typePredicate, subject) {
			if s.targetClasses.Test(class) {
				applicable = true
				break
			}
		}
		if !applicable {
			res.Applicable = false
			return res
		}
	}

	// Steps (b) and (c) test against the subject's "has predicate" mask.
	var mask *rdf.BitVector
	if s.required != nil || s.forbidden != nil {
		mask = v.st.SubjectPredicates(subject)
	}

	// (b) required: required AND-NOT mask must be empty.
	if s.required != nil {
		missing := s.required.Clone()
		missing.AndNot(mask)
		if missing.Any() {
			missing.Each(func(p rdf.ID) bool {
				res.Violations = append(res.Violations, Violation{
					Shape: s.name, Kind: KindRequired, Predicate: p,
				})
				return true
			})
			res.Conforms = false
			return res
		}
	}

	// (c) forbidden: forbidden AND mask must be empty.
	if s.forbidden != nil {
		present := s.forbidden.Clone()
		present.And(mask)
		if present.Any() {
			present.Each(func(p rdf.ID) bool {
				res.Violations = append(res.Violations, Violation{
					Shape: s.name, Kind: KindForbidden, Predicate: p,
				})
				return true
			})
			res.Conforms = false
			return res
		}
	}

	// (d) cardinality bounds per constrained predicate.
	for _, c := range s.cards {
		n := v.st.ObjectCount(c.Predicate, subject)
		if n < c.Min {
			res.Violations = append(res.Violations, Violation{
				Shape: s.name, Kind: KindMinCount, Predicate: c.Predicate,
				Got: n, Want: c.Min,
			})
			res.Conforms = false
			return res
		}
		if c.Max >= 0 && n > c.Max {
			res.Violations = append(res.Violations, Violation{
				Shape: s.name, Kind: KindMaxCount, Predicate: c.Predicate,
				Got: n, Want: c.Max,
			})
			res.Conforms = false
			return res
		}
	}

	// (e) combinators over sub-shapes.
	if s.comb != CombNone && len(s.subs) > 0 {
		conforming := 0
		for _, sub := range s.subs {
			if v.validateOne(subject, sub).Conforms {
				conforming++
			}
		}
		ok := false
		switch s.comb {
		case CombAnd:
			ok = conforming == len(s.subs)
		case CombOr:
			ok = conforming > 0
		case CombNot:
			ok = conforming == 0
		case CombExactlyOne:
			ok = conforming == 1
		}
		if !ok {
			res.Violations = append(res.Violations, Violation{
				Shape: s.name, Kind: KindCombinator, Want: conforming,
			})
			res.Conforms = false
		}
	}

	return res
}
