package shape

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/wbrown/janus-rdf/rdf"
)

// ValidateAll validates every subject in the list and returns the results
// grouped per subject, in input order. Evaluation shares no mutable state
// between subjects and only reads committed index state, so the fan-out
// runs on up to workers goroutines (0 means NumCPU). The store must be
// quiescent for the duration of the call.
func (v *Validator) ValidateAll(ctx context.Context, subjects []rdf.ID, workers int) ([][]Result, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	out := make([][]Result, len(subjects))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, subject := range subjects {
		i, subject := i, subject
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = v.Validate(subject)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
