// Package rdf provides the core primitives of the janus-rdf engine: dense
// identifier interning, growable bit vectors, and the triple data model
// shared by the store, matcher, validator, and reasoner packages.
//
// All engine state is identifier-based. Strings cross the API boundary
// exactly once, at interning time; every index, query, and inference step
// afterwards operates on dense integer IDs so that the hot paths stay
// cache-resident and branch-predictable.
package rdf
