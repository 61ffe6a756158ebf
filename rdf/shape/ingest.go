package shape

import (
	"github.com/cockroachdb/errors"

	"github.com/wbrown/janus-rdf/rdf"
	"github.com/wbrown/janus-rdf/rdf/store"
)

// AddValidated asserts t and immediately validates t's subject against the
// validator's shapes, the validate-synchronously-before-commit path the
// ingestion collaborator relies on. Any violation is fatal to ingestion by
// that collaborator's contract, so it is surfaced here as an error carrying
// the first violating result. The triple itself stays asserted: the store
// is append-only and the caller decides whether a partially loaded store is
// discarded.
func AddValidated(st *store.Store, v *Validator, t rdf.Triple) error {
	if err := st.Add(t); err != nil {
		return err
	}
	for _, res := range v.Validate(t.S) {
		if !res.Conforms {
			return errors.Newf("subject %d violates shape %q: %s",
				t.S, res.Shape, res.Violations[0].Kind)
		}
	}
	return nil
}
