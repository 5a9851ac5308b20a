package engine

import "github.com/robustparse/chartparse/grammar"

// Strategy determines where the chart engine's start items come from
// and how it predicts upcoming nonterminals. All three strategies share
// the same scan/complete/skip machinery; they differ in what Seed lays
// down before the rule loop runs and in which productions predict() is
// allowed to add, trading prediction precision for chart size.
type Strategy interface {
	// Seed populates the chart's initial items before the rule loop
	// runs. Goal-directed strategies place the goal's start items at
	// position 0; bottom-up seeding lays items down at every position.
	Seed(g *grammar.Grammar, chart *Chart, src grammar.TokenSource)
	// filter reports whether production p is worth predicting when the
	// engine is about to try to recognize p.LHS at pos.
	filter(g *grammar.Grammar, p *grammar.Production, pos int, src grammar.TokenSource) bool
}

// TopDown is plain Earley prediction: every item waiting on a
// nonterminal B predicts every production of B, unconditionally.
type TopDown struct{}

// Seed places the start item [GOAL→•α, 0] in chart state 0 for every
// production of the grammar's goal symbol.
func (TopDown) Seed(g *grammar.Grammar, chart *Chart, _ grammar.TokenSource) {
	for _, p := range g.ProductionsFor(g.Goal) {
		chart.States[0].Add(StartItem(p, 0))
	}
}

func (TopDown) filter(*grammar.Grammar, *grammar.Production, int, grammar.TokenSource) bool {
	return true
}

// BottomUp discovers constituents wherever they occur instead of only
// where top-down prediction from the goal expects them: a derivation
// whose span begins in the middle of the input is still found, garbage
// before it notwithstanding. It trades a larger chart for asking
// nothing of the grammar's structure; useful mainly as a cross-check
// against TopDown for grammars where predictive filtering is suspected
// of being wrong.
type BottomUp struct{}

// Seed lays the start item of every production down at every chart
// position. The classical bottom-up rules then fall out of the shared
// machinery: scanning a terminal at position i against an item seeded
// there yields the passive terminal edge a bottom-up scan would have
// produced, and when a constituent N completes at [i,j), every item
// [M→•Nδ, i] its completion should have triggered is already in place —
// the bottom-up predict's consequences, precomputed eagerly rather than
// added one completion at a time.
func (BottomUp) Seed(g *grammar.Grammar, chart *Chart, _ grammar.TokenSource) {
	for pos := range chart.States {
		for _, p := range g.Productions {
			chart.States[pos].Add(StartItem(p, pos))
		}
	}
}

// filter suppresses top-down prediction entirely: every start item a
// prediction could add is already in the chart from Seed.
func (BottomUp) filter(*grammar.Grammar, *grammar.Production, int, grammar.TokenSource) bool {
	return false
}

// LeftCorner restricts predictions to productions whose left corner (the
// leftmost symbol reachable after skipping any nullable prefix) could
// plausibly still match: either it is a nonterminal whose own
// left-corner set contains a terminal that matches at the current
// position or later, or it is a terminal that does so directly. "Or
// later" matters because unmatched tokens may be skipped over — a
// corner that fails right here can still be reached once the skip rule
// has discarded the intervening noise, so pruning on the current token
// alone would undo the robustness the skip rule provides. This uses
// Grammar.LeftCorners, the transitively-closed accessor computed at
// compile time.
type LeftCorner struct{}

func (LeftCorner) Seed(g *grammar.Grammar, chart *Chart, src grammar.TokenSource) {
	TopDown{}.Seed(g, chart, src)
}

func (LeftCorner) filter(g *grammar.Grammar, p *grammar.Production, pos int, src grammar.TokenSource) bool {
	if len(p.RHS) == 0 {
		return true // epsilon productions are always admissible
	}
	for _, first := range p.RHS {
		if first.IsTerminal() {
			return matchesAtOrAfter(g, first, pos, src)
		}
		for _, corner := range g.LeftCorners(first) {
			if !corner.IsTerminal() {
				continue
			}
			if matchesAtOrAfter(g, corner, pos, src) {
				return true
			}
		}
		if !g.Nullable(first) {
			return false
		}
	}
	return true // every RHS symbol is nullable, so p can complete without input
}

// matchesAtOrAfter reports whether term matches anywhere in the
// remaining input, starting the search at pos.
func matchesAtOrAfter(g *grammar.Grammar, term *grammar.Symbol, pos int, src grammar.TokenSource) bool {
	match := g.MatchFunc(term)
	for j := pos; j < pos+src.Len(pos); j++ {
		if n, ok := match(src, j); ok && n > 0 {
			return true
		}
	}
	return false
}

func predictWith(strategy Strategy, g *grammar.Grammar, S *ItemSet, item Item, pos int, src grammar.TokenSource) {
	predict(g, S, item, pos, func(p *grammar.Production) bool {
		return strategy.filter(g, p, pos, src)
	})
}
