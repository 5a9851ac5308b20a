package chartparse

import (
	"fmt"
	"sort"
	"strings"

	"github.com/robustparse/chartparse/engine"
	"github.com/robustparse/chartparse/grammar"
	"github.com/robustparse/chartparse/tree"
)

// ParseFailure reports that no passive GOAL edge was produced for an
// input: RobustParser.Parse found nothing to return. It carries enough
// of the chart's final state for a caller to build a diagnostic
// message — the furthest position the chart reached and which
// terminals were still being waited on there.
type ParseFailure struct {
	Input    string
	Furthest int
	Expected []*grammar.Symbol
}

func (e *ParseFailure) Error() string {
	names := make([]string, len(e.Expected))
	for i, s := range e.Expected {
		names[i] = s.Name
	}
	return fmt.Sprintf("chartparse: no parse for %q (reached token %d, expected one of: %s)",
		e.Input, e.Furthest, strings.Join(names, ", "))
}

// BudgetExceeded reports that the step budget (WithStepBudget) was
// exhausted before the chart reached quiescence. Best, if non-nil, is
// the best partial tree reconstructed from whatever accepting items
// existed at the point the budget ran out.
type BudgetExceeded struct {
	Input string
	Best  *tree.Node
}

func (e *BudgetExceeded) Error() string {
	return fmt.Sprintf("chartparse: step budget exceeded while parsing %q", e.Input)
}

// InternalInvariant reports a programming error inside the engine or
// tree-reconstruction pass — an edge the chart rules should never have
// been able to produce, or a back-pointer chain that could not be
// walked. Callers should treat this as fatal; it is never returned for
// malformed caller input (that is always a ParseFailure).
type InternalInvariant struct {
	Reason string
}

func (e *InternalInvariant) Error() string {
	return "chartparse: internal invariant violated: " + e.Reason
}

// furthestExpected scans every chart state from the end backward for
// the deepest position at which at least one item was still active,
// and collects the terminal symbols those items were waiting on —
// mirroring the kind of "expected X, got Y" diagnostic a hand-written
// recursive-descent parser would report, adapted to a chart where many
// alternatives can be live at once.
func furthestExpected(g *grammar.Grammar, res *engine.Result) (int, []*grammar.Symbol) {
	for pos := res.Chart.Len() - 1; pos >= 0; pos-- {
		S := res.Chart.States[pos]
		seen := map[*grammar.Symbol]bool{}
		var expected []*grammar.Symbol
		for i := 0; i < S.Len(); i++ {
			item := S.At(i)
			sym := item.PeekSymbol()
			if sym == nil || !sym.IsTerminal() || seen[sym] {
				continue
			}
			seen[sym] = true
			expected = append(expected, sym)
		}
		if len(expected) > 0 {
			sort.Slice(expected, func(i, j int) bool { return expected[i].Name < expected[j].Name })
			return pos, expected
		}
	}
	return 0, nil
}
