package shape

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Report renders validation results for human eyes, one line per shape
// evaluation. Conforming and vacuous evaluations render green and dim,
// violations render red with the failed constraint and predicate.
// Diagnostic path only.
func Report(results []Result) string {
	out := &strings.Builder{}
	for _, r := range results {
		switch {
		case !r.Applicable:
			fmt.Fprintf(out, "%s subject %d / shape %s (not applicable)\n",
				color.HiBlackString("skip"), r.Subject, r.Shape)
		case r.Conforms:
			fmt.Fprintf(out, "%s subject %d / shape %s\n",
				color.GreenString("pass"), r.Subject, r.Shape)
		default:
			fmt.Fprintf(out, "%s subject %d / shape %s\n",
				color.RedString("FAIL"), r.Subject, r.Shape)
			for _, viol := range r.Violations {
				fmt.Fprintf(out, "     %s %s\n",
					color.YellowString(viol.Kind.String()), describeViolation(viol))
			}
		}
	}
	return out.String()
}

func describeViolation(v Violation) string {
	switch v.Kind {
	case KindRequired:
		return fmt.Sprintf("predicate %d missing", v.Predicate)
	case KindForbidden:
		return fmt.Sprintf("predicate %d present", v.Predicate)
	case KindMinCount:
		return fmt.Sprintf("predicate %d has %d objects, need at least %d", v.Predicate, v.Got, v.Want)
	case KindMaxCount:
		return fmt.Sprintf("predicate %d has %d objects, allow at most %d", v.Predicate, v.Got, v.Want)
	case KindCombinator:
		return fmt.Sprintf("%d sub-shapes conform", v.Want)
	default:
		return ""
	}
}
