package match

import (
	"github.com/cockroachdb/errors"

	"github.com/wbrown/janus-rdf/rdf"
	"github.com/wbrown/janus-rdf/rdf/store"
)

// DefaultMaxResults bounds the emitted cross product when the caller does
// not choose a cap. Degenerate joins can otherwise materialize rows without
// bound.
const DefaultMaxResults = 65536

// Options configures an Engine.
type Options struct {
	// MaxResults caps the number of emitted rows. Hitting the cap
	// truncates the result (Result.Truncated) rather than erroring.
	// 0 means DefaultMaxResults.
	MaxResults int
}

// Engine answers point and conjunctive queries against a Store. Read-only
// over the store: safe for concurrent use on a quiescent store.
type Engine struct {
	st   *store.Store
	opts Options
}

// New creates an engine over st.
func New(st *store.Store, opts Options) *Engine {
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}
	return &Engine{st: st, opts: opts}
}

// Ask is the single-pattern point query.
func (e *Engine) Ask(t rdf.Triple) bool {
	return e.st.Ask(t)
}

// Result is a materialized set of variable bindings. Rows[i][j] is the
// binding of Vars[j] in the i-th result row.
type Result struct {
	Vars      []Var
	Rows      [][]rdf.ID
	Truncated bool
}

// Size returns the number of rows.
func (r *Result) Size() int {
	return len(r.Rows)
}

// Column returns the index of v in Vars, or -1.
func (r *Result) Column(v Var) int {
	for i, have := range r.Vars {
		if have == v {
			return i
		}
	}
	return -1
}

// queryState carries the per-query evaluation state: the candidate vectors
// from the bit-vector stage and the current partial binding.
type queryState struct {
	engine   *Engine
	patterns []Pattern
	vars     []Var
	cands    map[Var]*rdf.BitVector
	binding  map[Var]rdf.ID
	result   *Result
}

// Query evaluates a conjunction of patterns in the given order and returns
// all variable bindings satisfying every pattern, up to the result cap.
//
// Stages, per the two-level index design:
//  1. Each pattern with a variable subject gets a candidate bit vector from
//     the predicate index, narrowed by the object index when the object is
//     bound.
//  2. Candidate vectors sharing a variable are intersected left to right.
//     No reordering: pattern order is the caller's plan.
//  3. Each surviving binding is verified exactly against the PS-index; the
//     bit stage proves only necessary membership.
//  4. Multi-variable bindings are emitted as a cross product bounded by
//     Options.MaxResults.
func (e *Engine) Query(patterns []Pattern) (*Result, error) {
	if len(patterns) == 0 {
		return nil, errors.New("query requires at least one pattern")
	}

	qs := &queryState{
		engine:   e,
		patterns: patterns,
		cands:    make(map[Var]*rdf.BitVector),
		binding:  make(map[Var]rdf.ID),
		result:   &Result{},
	}

	for _, p := range patterns {
		if p.P.Kind != TermConst {
			return nil, errors.Newf("predicate position must be bound in pattern %s", p)
		}
		qs.collectVar(p.S)
		qs.collectVar(p.O)
	}
	qs.result.Vars = qs.vars

	// Stages 1 and 2: candidate narrowing over subject variables, plus
	// immediate fast-reject for fully or partially bound subjects.
	for _, p := range patterns {
		switch p.S.Kind {
		case TermVar:
			cv := e.subjectCandidates(p)
			if have := qs.cands[p.S.Var]; have != nil {
				have.And(cv)
			} else {
				qs.cands[p.S.Var] = cv
			}
		case TermConst:
			if p.O.Kind == TermConst {
				if !e.st.Ask(rdf.Triple{S: p.S.ID, P: p.P.ID, O: p.O.ID}) {
					return qs.result, nil
				}
			} else if !e.st.HasPredicate(p.P.ID, p.S.ID) {
				return qs.result, nil
			}
		}
	}

	// Stages 3 and 4: enumerate bindings with exact verification.
	qs.eval(0)
	return qs.result, nil
}

// subjectCandidates computes the stage-1 candidate vector for a pattern
// with a variable subject: subjects carrying the predicate, narrowed to
// subjects referencing the object when it is bound.
func (e *Engine) subjectCandidates(p Pattern) *rdf.BitVector {
	pv := e.st.PredicateSubjects(p.P.ID)
	if pv == nil {
		return rdf.NewBitVector(0)
	}
	cv := pv.Clone()
	if p.O.Kind == TermConst {
		ov := e.st.ObjectSubjects(p.O.ID)
		if ov == nil {
			return rdf.NewBitVector(0)
		}
		cv.And(ov)
	}
	return cv
}

func (qs *queryState) collectVar(t Term) {
	if t.Kind != TermVar {
		return
	}
	for _, have := range qs.vars {
		if have == t.Var {
			return
		}
	}
	qs.vars = append(qs.vars, t.Var)
}

// value resolves a term under the current binding.
func (qs *queryState) value(t Term) (rdf.ID, bool) {
	if t.Kind == TermConst {
		return t.ID, true
	}
	id, ok := qs.binding[t.Var]
	return id, ok
}

// eval verifies and extends bindings pattern by pattern. Returns false when
// the result cap stopped enumeration.
func (qs *queryState) eval(idx int) bool {
	if idx == len(qs.patterns) {
		return qs.emit()
	}
	p := qs.patterns[idx]
	st := qs.engine.st

	s, sBound := qs.value(p.S)
	if !sBound {
		// Enumerate the intersected candidate set, binding the subject
		// variable; recursion re-enters this pattern with S bound.
		cont := true
		qs.cands[p.S.Var].Each(func(cand rdf.ID) bool {
			qs.binding[p.S.Var] = cand
			cont = qs.eval(idx)
			return cont
		})
		delete(qs.binding, p.S.Var)
		return cont
	}

	o, oBound := qs.value(p.O)
	if oBound {
		// Fully bound: exact verification.
		if !st.Ask(rdf.Triple{S: s, P: p.P.ID, O: o}) {
			return true
		}
		return qs.eval(idx + 1)
	}

	// Bound subject, free object: the PS-index entry enumerates the
	// object domain directly. If the object variable also ranges as a
	// subject elsewhere, its candidate vector is a necessary filter.
	ocand := qs.cands[p.O.Var]
	cont := true
	for _, obj := range st.Objects(p.P.ID, s) {
		if ocand != nil && !ocand.Test(obj) {
			continue
		}
		qs.binding[p.O.Var] = obj
		if cont = qs.eval(idx + 1); !cont {
			break
		}
	}
	delete(qs.binding, p.O.Var)
	return cont
}

// emit appends the current binding as a result row, honoring the cap.
func (qs *queryState) emit() bool {
	if len(qs.result.Rows) >= qs.engine.opts.MaxResults {
		qs.result.Truncated = true
		return false
	}
	row := make([]rdf.ID, len(qs.vars))
	for i, v := range qs.vars {
		row[i] = qs.binding[v]
	}
	qs.result.Rows = append(qs.result.Rows, row)
	return true
}
