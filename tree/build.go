package tree

import (
	"fmt"
	"sort"

	"github.com/npillmayer/schuko/gconf"
	"github.com/npillmayer/schuko/tracing"
	"github.com/robustparse/chartparse/engine"
	"github.com/robustparse/chartparse/grammar"
)

// tracer traces with key 'chartparse.tree'.
func tracer() tracing.Trace {
	return tracing.Select("chartparse.tree")
}

// stuck reports a failed reconstruction step and always returns false,
// so call sites can write `return nil, stuck(...)`. With configuration
// flag panic-on-parser-stuck set, it panics instead, for post-mortem
// debugging of why a walk over a supposedly complete chart got stuck.
func stuck(format string, args ...interface{}) bool {
	msg := fmt.Sprintf(format, args...)
	tracer().Errorf("%s", msg)
	if gconf.GetBool("panic-on-parser-stuck") {
		panic(`tree reconstruction is stuck.

Configuration flag panic-on-parser-stuck is set to true. It is aimed at helping
to debug a parser and do a post-mortem of why it got stuck. However, if this is
a production environment and you did not expect this to panic, please unset
panic-on-parser-stuck to its default (false).

` + msg)
	}
	return false
}

// Rank orders a slice of accepted items best-first: fewest skipped
// tokens, then lowest production serial as a stable tiebreaker. Build
// uses the first entry; callers wanting every plausible top-level parse
// (rather than only the best) can inspect the full ranked slice.
func Rank(accepted []engine.Item) []engine.Item {
	out := append([]engine.Item(nil), accepted...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Skips != out[j].Skips {
			return out[i].Skips < out[j].Skips
		}
		return out[i].Prod.Serial < out[j].Prod.Serial
	})
	return out
}

// Build reconstructs the parse tree for accept, a completed item found
// in res.Chart.States[res.NumToks] (typically res.Accepted[0] after
// Rank). src is the same token source the parse was run against —
// needed again here to re-locate where multi-token terminals began.
func Build(g *grammar.Grammar, res *engine.Result, src grammar.TokenSource, accept engine.Item) (*Node, error) {
	w := &walker{g: g, chart: res.Chart, src: src}
	n, ok := w.walk(accept, res.NumToks, ruleset{})
	if !ok {
		return nil, fmt.Errorf("tree: parse is stuck, could not reconstruct a derivation for %s", accept)
	}
	return n, nil
}

type walker struct {
	g     *grammar.Grammar
	chart *engine.Chart
	src   grammar.TokenSource
}

// walk reconstructs the subtree for item, which is known to be complete
// and to end at position pos. It walks item.Prod.RHS from right to
// left, at each step locating the sub-derivation (terminal match or
// nested completion) that produced that symbol. A completed item only
// stores its origin and its production; its end is implicit in the
// chart state it sits in, which is why the walk runs backwards.
//
// Skipped tokens complicate the backward walk: the engine's skip rule
// only carries items whose dot stands before a terminal, so a gap of
// discarded tokens can sit immediately to the left of a terminal RHS
// symbol (including the production's leftmost one) but never to the
// left of a nonterminal. Each step therefore allows slack — an end
// position short of the current cursor — exactly when the symbol to the
// right is a terminal, and insists on a flush fit otherwise.
func (w *walker) walk(item engine.Item, pos int, trys ruleset) (*Node, bool) {
	rhs := item.Prod.RHS
	l := len(rhs)
	children := make([]*Node, l)
	end := pos
	cursor := pos
	for n := l - 1; n >= 0; n-- {
		B := rhs[n]
		leftmost := n == 0
		slack := 0
		if n < l-1 && rhs[n+1].IsTerminal() {
			slack = cursor - item.Origin
		}

		if B.IsTerminal() {
			start, stop, ok := w.findTerminal(B, cursor, slack, item.Origin)
			if !ok {
				return nil, stuck("tree: no terminal match for %s ending at or before %d", B, cursor)
			}
			children[n] = &Node{
				Sym:  B,
				From: start,
				To:   stop,
				Text: w.src.JoinedText(start, stop-start),
			}
			cursor = start
			continue
		}

		child, childEnd, ambiguous, ok := w.findCompletion(B, cursor, slack, item, pos, leftmost, trys)
		if !ok {
			return nil, stuck("tree: no completion of %s found ending at or before %d", B, cursor)
		}
		if ambiguous {
			trys = trys.add(child.Prod)
		}
		sub, ok := w.walk(child, childEnd, carryOrReset(childEnd, end, trys))
		if !ok {
			return nil, false
		}
		children[n] = sub
		cursor = child.Origin
	}
	if l > 0 && !rhs[0].IsTerminal() && cursor != item.Origin {
		return nil, stuck("tree: did not reach rule origin for %s", item)
	}
	from, to := item.Origin, end
	if l > 0 {
		// Tighten the node's span to its children's extent, so skipped
		// tokens at the edges don't leak into the node's matched text.
		from, to = children[0].From, children[l-1].To
	}
	return &Node{
		Sym:      item.Prod.LHS,
		Prod:     item.Prod,
		From:     from,
		To:       to,
		Skips:    item.Skips,
		Children: children,
	}, true
}

// findTerminal searches backward from cursor (exclusive) down to
// lowerBound for the nearest position at which B's MatchFunc succeeds
// and ends within slack tokens of cursor. Searching from the nearest
// candidate outward prefers the fewest intervening skipped tokens.
func (w *walker) findTerminal(B *grammar.Symbol, cursor, slack, lowerBound int) (int, int, bool) {
	match := w.g.MatchFunc(B)
	for k := cursor - 1; k >= lowerBound; k-- {
		if n, ok := match(w.src, k); ok && k+n <= cursor && k+n >= cursor-slack {
			return k, k + n, true
		}
	}
	return 0, 0, false
}

// findCompletion searches for a completed recognition of B ending at
// cursor, or up to slack positions earlier, nearest end first. The
// reported ambiguous flag tells the caller whether several candidates
// competed at the chosen end position (and the winner should be added
// to the tried set).
func (w *walker) findCompletion(B *grammar.Symbol, cursor, slack int, outer engine.Item, outerEnd int, leftmost bool, trys ruleset) (engine.Item, int, bool, bool) {
	low := cursor - slack
	if low < outer.Origin {
		low = outer.Origin
	}
	for end := cursor; end >= low; end-- {
		R := w.completionsFor(B, end)
		candidates := R[:0]
		for _, c := range R {
			if c.Origin < outer.Origin {
				continue
			}
			if leftmost && c.Origin != outer.Origin {
				continue
			}
			// Guard against walking straight back into the item being
			// reconstructed (a self-recursive production over the same
			// span would never terminate).
			if c.Prod == outer.Prod && c.Origin == outer.Origin && end == outerEnd {
				continue
			}
			candidates = append(candidates, c)
		}
		switch len(candidates) {
		case 0:
			continue
		case 1:
			return candidates[0], end, false, true
		default:
			if chosen, ok := w.chooseCompletion(candidates, outer, trys); ok {
				return chosen, end, true, true
			}
		}
	}
	return engine.Item{}, 0, false, false
}

// completionsFor returns every item in the chart state at pos that is a
// completed recognition of B.
func (w *walker) completionsFor(B *grammar.Symbol, pos int) []engine.Item {
	S := w.chart.States[pos]
	var out []engine.Item
	for i := 0; i < S.Len(); i++ {
		it := S.At(i)
		if it.AtEnd() && it.Prod.LHS == B {
			out = append(out, it)
		}
	}
	return out
}

// chooseCompletion resolves an ambiguous set of completions for the
// same symbol and end position: prefer the completion spanning the most
// input (smallest origin — an epsilon completion must never shadow a
// real one), then fewest skips, then the lowest production serial.
// Productions already tried for this exact span are passed over to
// avoid looping.
func (w *walker) chooseCompletion(candidates []engine.Item, outer engine.Item, trys ruleset) (engine.Item, bool) {
	var best engine.Item
	found := false
	for _, c := range candidates {
		if trys.contains(c.Prod) {
			continue
		}
		if !found {
			best, found = c, true
			continue
		}
		if c.Origin != best.Origin {
			if c.Origin < best.Origin {
				best = c
			}
			continue
		}
		if c.Skips != best.Skips {
			if c.Skips < best.Skips {
				best = c
			}
			continue
		}
		if c.Prod.Serial < best.Prod.Serial {
			best = c
		}
	}
	return best, found
}
