package match

import (
	"github.com/wbrown/janus-rdf/rdf"
)

// askBatchSize is the fixed batch width for AskBatch. Small enough that the
// reject mask and the triple block stay in registers and L1.
const askBatchSize = 8

// AskBatch answers a point query for every triple in the slice. The
// fast-reject bit tests for each block of askBatchSize triples run
// together before any PS-index entry is touched, amortizing loop overhead
// across the batch; survivors then take the same exact verification as
// Ask. Constant factors only - results are identical to calling Ask per
// triple.
func (e *Engine) AskBatch(triples []rdf.Triple) []bool {
	out := make([]bool, len(triples))
	for base := 0; base < len(triples); base += askBatchSize {
		end := base + askBatchSize
		if end > len(triples) {
			end = len(triples)
		}

		// Reject phase: predicate-index bit tests only.
		var pass [askBatchSize]bool
		for i := base; i < end; i++ {
			pass[i-base] = e.st.HasPredicate(triples[i].P, triples[i].S)
		}

		// Verify phase: exact object-set scans for survivors.
		for i := base; i < end; i++ {
			if pass[i-base] {
				out[i] = e.st.Ask(triples[i])
			}
		}
	}
	return out
}
