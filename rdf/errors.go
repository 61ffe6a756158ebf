package rdf

import (
	"github.com/cockroachdb/errors"
)

// Error taxonomy for the engine. Call sites wrap these sentinels with
// context via errors.Wrapf; callers classify with errors.Is.
var (
	// ErrCapacityExceeded means an index or interner could not grow.
	// Fatal to the triggering call; partial mutation is not rolled back.
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// ErrUnknownSymbol means a closed interner was asked for a string or
	// identifier it does not hold, or a store operation was given an
	// identifier that was never interned. Recoverable: treat as not-found.
	ErrUnknownSymbol = errors.New("unknown symbol")

	// ErrFunctionalityViolation means the reasoner found two distinct
	// objects for a declared-functional predicate/subject pair (or two
	// distinct subjects for an inverse-functional predicate/object pair).
	ErrFunctionalityViolation = errors.New("functionality violation")
)
