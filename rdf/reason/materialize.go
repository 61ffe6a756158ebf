package reason

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/wbrown/janus-rdf/rdf"
	"github.com/wbrown/janus-rdf/rdf/store"
)

// FunctionalityViolation reports two distinct values where a declared
// characteristic allows one. For a functional predicate, Anchor is the
// subject and A/B the conflicting objects; for an inverse-functional
// predicate (Inverse true), Anchor is the object and A/B the conflicting
// subjects.
type FunctionalityViolation struct {
	Predicate rdf.ID
	Anchor    rdf.ID
	A, B      rdf.ID
	Inverse   bool
}

// Stats describes one materialization run.
type Stats struct {
	Passes     int
	Added      int
	Violations []FunctionalityViolation
}

// Reasoner materializes inferred triples into a store. Every inferred
// triple goes through the ordinary Add path, so inferred and base facts are
// indistinguishable to the pattern matcher afterwards.
//
// Not internally synchronized: Materialize mutates the store and must be
// serialized with all other writers.
type Reasoner struct {
	st    *store.Store
	hier  *Hierarchy
	chars map[rdf.ID]Characteristic

	typePredicate rdf.ID
	hasType       bool

	strict bool
	logger *zap.Logger
}

// Option configures a Reasoner.
type Option func(*Reasoner)

// WithTypePredicate enables subsumption materialization: for every subject
// typed c under predicate p, type triples for every class in c's closure
// are asserted. Requires a non-stale hierarchy at Materialize time.
func WithTypePredicate(p rdf.ID) Option {
	return func(r *Reasoner) {
		r.typePredicate = p
		r.hasType = true
	}
}

// WithStrictFunctional makes Materialize return an error wrapping
// rdf.ErrFunctionalityViolation when any violation was found. The run still
// completes and the stats still carry every violation; the error form is
// for callers that treat dirty data as fatal.
func WithStrictFunctional(on bool) Option {
	return func(r *Reasoner) { r.strict = on }
}

// WithLogger attaches a logger for per-pass diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(r *Reasoner) { r.logger = l }
}

// New creates a reasoner over st. hier may be nil when subsumption
// materialization is not enabled.
func New(st *store.Store, hier *Hierarchy, opts ...Option) *Reasoner {
	r := &Reasoner{
		st:     st,
		hier:   hier,
		chars:  make(map[rdf.ID]Characteristic),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Hierarchy returns the attached hierarchy, if any.
func (r *Reasoner) Hierarchy() *Hierarchy {
	return r.hier
}

// SetCharacteristic declares flags for predicate p, replacing previous
// flags. Declarations belong to the configuration phase; declaring after
// materialization leaves earlier inferences in place.
func (r *Reasoner) SetCharacteristic(p rdf.ID, c Characteristic) {
	if c == 0 {
		delete(r.chars, p)
		return
	}
	r.chars[p] = c
}

// CharacteristicsOf returns the declared flags for p.
func (r *Reasoner) CharacteristicsOf(p rdf.ID) Characteristic {
	return r.chars[p]
}

// Materialize derives inferred triples to a least fixpoint: passes over
// every flagged predicate (and, when enabled, over type triples through the
// class closure) repeat until a full pass asserts nothing new. Running it
// again immediately afterwards adds zero triples.
func (r *Reasoner) Materialize() (Stats, error) {
	var stats Stats

	if r.hasType && r.hier != nil && r.hier.Stale() {
		return stats, errors.New("hierarchy closure is stale; Recompute before materializing")
	}

	seenViolations := make(map[FunctionalityViolation]bool)

	for changed := true; changed; {
		changed = false
		stats.Passes++

		for p, flags := range r.chars {
			added, err := r.materializePredicate(p, flags, &stats, seenViolations)
			if err != nil {
				return stats, err
			}
			if added {
				changed = true
			}
		}

		if r.hasType && r.hier != nil {
			added, err := r.materializeTypes()
			if err != nil {
				return stats, err
			}
			if added > 0 {
				stats.Added += added
				changed = true
			}
		}

		r.logger.Debug("materialization pass",
			zap.Int("pass", stats.Passes),
			zap.Int("added_total", stats.Added),
		)
	}

	if r.strict && len(stats.Violations) > 0 {
		v := stats.Violations[0]
		return stats, errors.Wrapf(rdf.ErrFunctionalityViolation,
			"predicate %d on %d: %d vs %d", v.Predicate, v.Anchor, v.A, v.B)
	}
	return stats, nil
}

// materializePredicate runs one pass of the characteristic rules for a
// single predicate. Returns whether any triple was added.
func (r *Reasoner) materializePredicate(
	p rdf.ID,
	flags Characteristic,
	stats *Stats,
	seen map[FunctionalityViolation]bool,
) (bool, error) {
	pv := r.st.PredicateSubjects(p)
	if pv == nil {
		return false, nil
	}

	// Adds during the pass mutate the index vectors and object slices
	// being walked, so the subject set and each object list are copied
	// first. Subjects appearing mid-pass are handled on the next pass.
	subjects := pv.Clone().Members()

	// Inverse-functional violations are detected before any derivation so
	// that no rule fires for a violating object. Mirrors the functional
	// case, where the violating subject is skipped below.
	var badObjects map[rdf.ID]bool
	if flags.Has(InverseFunctional) {
		badObjects = make(map[rdf.ID]bool)
		firstSubject := make(map[rdf.ID]rdf.ID)
		for _, a := range subjects {
			for _, b := range r.st.Objects(p, a) {
				prev, ok := firstSubject[b]
				if !ok {
					firstSubject[b] = a
					continue
				}
				if prev == a {
					continue
				}
				badObjects[b] = true
				v := FunctionalityViolation{Predicate: p, Anchor: b, A: prev, B: a, Inverse: true}
				if !seen[v] {
					seen[v] = true
					stats.Violations = append(stats.Violations, v)
				}
			}
		}
	}

	added := false
	for _, a := range subjects {
		objs := append([]rdf.ID(nil), r.st.Objects(p, a)...)

		if flags.Has(Functional) && len(objs) > 1 {
			v := FunctionalityViolation{Predicate: p, Anchor: a, A: objs[0], B: objs[1]}
			if !seen[v] {
				seen[v] = true
				stats.Violations = append(stats.Violations, v)
			}
			// Derivation for this (subject, predicate) pair stops here.
			continue
		}

		for _, b := range objs {
			if badObjects[b] {
				// Derivation for this (predicate, object) pair stops here.
				continue
			}
			if flags.Has(Symmetric) && !r.st.Ask(rdf.Triple{S: b, P: p, O: a}) {
				if err := r.st.Add(rdf.Triple{S: b, P: p, O: a}); err != nil {
					return added, err
				}
				stats.Added++
				added = true
			}
			if flags.Has(Transitive) {
				next := append([]rdf.ID(nil), r.st.Objects(p, b)...)
				for _, c := range next {
					if !r.st.Ask(rdf.Triple{S: a, P: p, O: c}) {
						if err := r.st.Add(rdf.Triple{S: a, P: p, O: c}); err != nil {
							return added, err
						}
						stats.Added++
						added = true
					}
				}
			}
		}
	}
	return added, nil
}

// materializeTypes asserts (x, type, super) for every typed subject x and
// every superclass in the closure of x's asserted classes.
func (r *Reasoner) materializeTypes() (int, error) {
	pv := r.st.PredicateSubjects(r.typePredicate)
	if pv == nil {
		return 0, nil
	}
	added := 0
	for _, x := range pv.Clone().Members() {
		classes := append([]rdf.ID(nil), r.st.Objects(r.typePredicate, x)...)
		for _, class := range classes {
			cv := r.hier.Closure(class)
			if cv == nil {
				continue
			}
			var addErr error
			cv.Each(func(super rdf.ID) bool {
				t := rdf.Triple{S: x, P: r.typePredicate, O: super}
				if !r.st.Ask(t) {
					if addErr = r.st.Add(t); addErr != nil {
						return false
					}
					added++
				}
				return true
			})
			if addErr != nil {
				return added, addErr
			}
		}
	}
	return added, nil
}
