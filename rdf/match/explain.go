package match

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/wbrown/janus-rdf/rdf"
)

// CostHint returns the candidate-set cardinality for a single pattern, the
// per-pattern cost signal an external plan selector orders patterns by.
// For a variable subject it is the popcount of the stage-1 candidate
// vector; for a bound subject it is 1 when the fast-reject test passes and
// 0 otherwise.
func (e *Engine) CostHint(p Pattern) int {
	if p.P.Kind != TermConst {
		return -1 // unplannable: no index to consult
	}
	if p.S.Kind == TermConst {
		if p.O.Kind == TermConst {
			if e.st.Ask(rdf.Triple{S: p.S.ID, P: p.P.ID, O: p.O.ID}) {
				return 1
			}
			return 0
		}
		return e.st.ObjectCount(p.P.ID, p.S.ID)
	}
	return e.subjectCandidates(p).Popcount()
}

// Explain renders the cost hints for a pattern list as a markdown table,
// one row per pattern in the caller's order. Diagnostic path: resolves IDs
// back to strings through the interner.
func (e *Engine) Explain(patterns []Pattern) string {
	out := &strings.Builder{}

	alignment := make([]tw.Align, 3)
	for i := range alignment {
		alignment[i] = tw.AlignNone
	}
	table := tablewriter.NewTable(out,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithAlignment(alignment),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)
	table.Header([]string{"pattern", "index", "candidates"})

	for _, p := range patterns {
		table.Append([]string{
			e.renderPattern(p),
			indexFor(p),
			fmt.Sprintf("%d", e.CostHint(p)),
		})
	}
	table.Render()
	return out.String()
}

// indexFor names the index that drives a pattern's candidate stage.
func indexFor(p Pattern) string {
	switch {
	case p.P.Kind != TermConst:
		return "none"
	case p.S.Kind == TermConst:
		return "ps"
	case p.O.Kind == TermConst:
		return "pred+obj"
	default:
		return "pred"
	}
}

func (e *Engine) renderPattern(p Pattern) string {
	return fmt.Sprintf("(%s %s %s)",
		e.renderTerm(p.S), e.renderTerm(p.P), e.renderTerm(p.O))
}

func (e *Engine) renderTerm(t Term) string {
	if t.Kind == TermVar {
		return string(t.Var)
	}
	if s, err := e.st.Interner().Resolve(t.ID); err == nil {
		return s
	}
	return fmt.Sprintf("#%d", t.ID)
}
