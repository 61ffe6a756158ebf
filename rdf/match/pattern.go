// Package match implements the pattern matcher and conjunctive join engine.
// Patterns are matched against the store in two stages: bit-vector
// intersection narrows candidate subjects (a necessary condition only),
// then every surviving binding is verified exactly against the PS-index.
// Pattern order is the caller's: the engine never reorders, so an external
// plan selector can impose whatever order its cost model prefers, using the
// CostHint surface as input.
package match

import (
	"fmt"

	"github.com/wbrown/janus-rdf/rdf"
)

// Var names a query variable, e.g. "?x". Patterns sharing a Var join on it.
type Var string

// TermKind discriminates the closed set of pattern term kinds.
type TermKind uint8

const (
	// TermConst is a bound identifier.
	TermConst TermKind = iota
	// TermVar is a shared variable.
	TermVar
)

// Term is one position of a pattern: a bound constant or a variable.
// Tagged variant rather than an interface so dispatch is a switch, not an
// indirect call.
type Term struct {
	Kind TermKind
	ID   rdf.ID // valid when Kind == TermConst
	Var  Var    // valid when Kind == TermVar
}

// Bound returns a constant term.
func Bound(id rdf.ID) Term {
	return Term{Kind: TermConst, ID: id}
}

// V returns a variable term.
func V(name string) Term {
	return Term{Kind: TermVar, Var: Var(name)}
}

// Pattern is a single (subject, predicate, object) pattern. The predicate
// position must be bound: the store's indexes are keyed by predicate, and
// an unbound predicate has no candidate filter to drive.
type Pattern struct {
	S, P, O Term
}

// String renders the pattern with raw IDs; Engine.Explain renders resolved
// strings.
func (p Pattern) String() string {
	return fmt.Sprintf("(%s %s %s)", p.S.label(), p.P.label(), p.O.label())
}

func (t Term) label() string {
	if t.Kind == TermVar {
		return string(t.Var)
	}
	return fmt.Sprintf("#%d", t.ID)
}
