package engine

import "github.com/robustparse/chartparse/grammar"

// predict implements the Earley predictor: for every item in S with the
// dot immediately before a nonterminal B, add B's start items to S; if B
// is nullable, also directly advance the dot past B, avoiding an extra
// epsilon completion round-trip. filterFn, supplied by the active
// Strategy, additionally restricts which of B's productions are worth
// adding (plain top-down predicts all of them, left-corner predicts only
// those that could still lead to a match).
func predict(g *grammar.Grammar, S *ItemSet, item Item, pos int, filterFn func(*grammar.Production) bool) {
	B := item.PeekSymbol()
	if B == nil || B.IsTerminal() {
		return
	}
	for _, p := range g.ProductionsFor(B) {
		if filterFn != nil && !filterFn(p) {
			continue
		}
		S.Add(StartItem(p, pos))
	}
	if g.Nullable(B) {
		S.Add(item.Advance())
	}
}

// scan attempts to match the terminal symbol under item's dot against
// the token source at pos. A terminal's MatchFunc may consume several
// tokens at once (a multi-word Literal or StringSet phrase), so the
// advanced item is deposited into chart.States[pos+n] rather than
// unconditionally chart.States[pos+1].
func scan(g *grammar.Grammar, chart *Chart, item Item, pos int, src grammar.TokenSource) bool {
	a := item.PeekSymbol()
	if a == nil || !a.IsTerminal() {
		return false
	}
	match := g.MatchFunc(a)
	n, ok := match(src, pos)
	if !ok || n <= 0 {
		return false
	}
	chart.States[pos+n].Add(item.Advance())
	return true
}

// skip implements robust tokenization's skip-over policy: when nothing
// in S could scan the token at pos (checked by the caller, which only
// invokes skip once scan has failed for every item in S), every item
// whose dot sits before a terminal is carried forward to pos+1
// unmodified except for an incremented Skips counter, representing "the
// token at pos was noise and has been discarded". Items already past
// their last terminal (waiting on a nonterminal, or complete) are not
// carried forward by skip — predict/complete regenerate their chart-local
// counterparts at pos+1 once skip has let scanning resume. cap bounds
// the number of tokens any one derivation may discard; cap <= 0 means
// unbounded.
func skip(chart *Chart, item Item, pos int, cap int) bool {
	if a := item.PeekSymbol(); a == nil || !a.IsTerminal() {
		return false
	}
	if cap > 0 && item.Skips >= cap {
		return false
	}
	chart.States[pos+1].Add(item.WithSkip())
	return true
}

// complete implements the Earley completer: for a completed item
// [A→α•, j] recognized at position pos, find every item [B→…•A…, k] in
// S_j and advance it into the item set at pos. The search is a linear
// scan, acceptable for the small grammars this parser targets.
func complete(chart *Chart, item Item, pos int) {
	if !item.AtEnd() {
		return
	}
	A := item.Prod.LHS
	Sj := chart.States[item.Origin]
	Spos := chart.States[pos]
	for i := 0; i < Sj.Len(); i++ {
		jtem := Sj.At(i)
		if jtem.PeekSymbol() != A {
			continue
		}
		jadv := jtem.Advance()
		jadv.Skips = jtem.Skips + item.Skips
		Spos.Add(jadv)
	}
}
