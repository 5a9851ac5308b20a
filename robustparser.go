package chartparse

import (
	"sort"

	"github.com/robustparse/chartparse/engine"
	"github.com/robustparse/chartparse/grammar"
	"github.com/robustparse/chartparse/result"
	"github.com/robustparse/chartparse/tokenize"
	"github.com/robustparse/chartparse/tree"
)

// RobustParser ties together the tokenizer, the chart engine, tree
// reconstruction and result flattening behind the single entry point
// described in the package doc comment. A *grammar.Grammar is immutable
// once compiled, so a single RobustParser (or several, each configured
// differently) may safely share one across any number of goroutines;
// each call to Parse/ParseMulti/ParseIncremental owns its own chart.
type RobustParser struct {
	g          *grammar.Grammar
	strategy   engine.Strategy
	stepBudget int
	skipCap    int
	ranking    Ranking
}

// Option configures a RobustParser at construction time.
type Option func(p *RobustParser)

// WithStrategy selects the chart engine's prediction strategy. Defaults
// to engine.LeftCorner.
func WithStrategy(s engine.Strategy) Option {
	return func(p *RobustParser) { p.strategy = s }
}

// WithStepBudget caps the number of chart-rule firings any single Parse
// call performs before returning a *BudgetExceeded error carrying
// whatever best partial tree was found. n <= 0 (the default) means
// unbounded.
func WithStepBudget(n int) Option {
	return func(p *RobustParser) { p.stepBudget = n }
}

// WithSkipCap bounds how many unrecognized tokens any single derivation
// may skip over. Inputs needing more skips than the cap fail with a
// *ParseFailure instead of being stretched to fit. n <= 0 (the default)
// means unbounded.
func WithSkipCap(n int) Option {
	return func(p *RobustParser) { p.skipCap = n }
}

// Ranking compares two candidate parse trees and reports whether a is
// the better parse. The default prefers the tree with fewer nodes, then
// fewer skipped tokens; remaining ties keep derivation order (leftmost
// alternative first).
type Ranking func(a, b *tree.Node) bool

// WithRanking replaces the default tie-break policy used to order
// candidate parses of an ambiguous sentence.
func WithRanking(r Ranking) Option {
	return func(p *RobustParser) { p.ranking = r }
}

func defaultRanking(a, b *tree.Node) bool {
	if na, nb := a.NodeCount(), b.NodeCount(); na != nb {
		return na < nb
	}
	return a.Skips < b.Skips
}

// NewParser creates a RobustParser bound to the compiled grammar g.
func NewParser(g *grammar.Grammar, opts ...Option) *RobustParser {
	p := &RobustParser{g: g, strategy: engine.LeftCorner{}, ranking: defaultRanking}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Match pairs a reconstructed parse tree with its flattened result, the
// unit ParseMulti ranks and returns several of.
type Match struct {
	Tree   *tree.Node
	Result *result.Value
}

// Parse tokenizes text, runs the chart engine to quiescence (or until
// the step budget, if any, is exhausted) and returns the best-ranked
// parse tree together with its flattened result. It returns a
// *ParseFailure if no GOAL edge was produced at all, or a
// *BudgetExceeded if the step budget cut the parse short (Best, if
// non-nil, still holds the best tree found up to that point).
func (p *RobustParser) Parse(text string) (*tree.Node, *result.Value, error) {
	matches, err := p.parseTop(text, 1)
	if err != nil {
		if budgetErr, ok := err.(*BudgetExceeded); ok && len(matches) > 0 {
			return matches[0].Tree, matches[0].Result, budgetErr
		}
		return nil, nil, err
	}
	return matches[0].Tree, matches[0].Result, nil
}

// ParseMulti returns up to k ranked (tree, result) pairs for text, best
// first per the configured Ranking (by default fewest nodes, then
// fewest skips, then leftmost derivation). Fewer than k may be returned
// if fewer distinct accepting derivations exist.
func (p *RobustParser) ParseMulti(text string, k int) ([]Match, error) {
	return p.parseTop(text, k)
}

func (p *RobustParser) parseTop(text string, k int) ([]Match, error) {
	src, err := tokenize.New(text)
	if err != nil {
		return nil, err
	}
	eng := engine.NewParser(p.g,
		engine.WithStrategy(p.strategy),
		engine.WithStepBudget(p.stepBudget),
		engine.WithSkipCap(p.skipCap))
	res, err := eng.Parse(src)
	if err != nil {
		return nil, &InternalInvariant{Reason: err.Error()}
	}
	if !res.Accept() {
		if res.Partial {
			return nil, &BudgetExceeded{Input: text}
		}
		furthest, expected := furthestExpected(p.g, res)
		return nil, &ParseFailure{Input: text, Furthest: furthest, Expected: expected}
	}

	// Reconstruct a tree for every accepting item, then order the built
	// trees per the configured Ranking. tree.Rank's ordering decides ties
	// beyond that, since it determined construction order.
	ranked := tree.Rank(res.Accepted)
	matches := make([]Match, 0, len(ranked))
	for _, accept := range ranked {
		root, err := tree.Build(p.g, res, src, accept)
		if err != nil {
			return nil, &InternalInvariant{Reason: err.Error()}
		}
		val, err := result.Build(src, root)
		if err != nil {
			return nil, err
		}
		matches = append(matches, Match{Tree: root, Result: val})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return p.ranking(matches[i].Tree, matches[j].Tree)
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	if res.Partial {
		return matches, &BudgetExceeded{Input: text, Best: matches[0].Tree}
	}
	return matches, nil
}

// Update is what ParseIncremental's listener receives: either a prefix
// parse (a GOAL edge spanning [0,k) for some k short of the full
// sentence) or the current best full-sentence parse, in the same shape
// Parse itself would have returned.
type Update struct {
	Tree     *tree.Node
	Result   *result.Value
	Prefix   int  // end token position this update spans, [0, Prefix)
	Complete bool // true once Prefix reaches the full token count
}

// IncrementalListener is invoked synchronously from the parse loop for
// every improving GOAL edge the engine inserts. Returning true stops
// the parse early, after which ParseIncremental returns the listener's
// last Update. The listener must not retain src-derived state beyond
// the call: the chart it observes is mutated further after the call
// returns.
type IncrementalListener func(Update) (stop bool)

// ParseIncremental drives the chart engine exactly like Parse, but
// additionally invokes listener every time a passive GOAL edge spanning
// [0,k) is inserted for some k, and again once a full [0,n) parse is
// found. The final return value is the same (tree, result) pair Parse
// would return (the best full-sentence parse, if found by the time the
// engine reaches quiescence or the listener signals early stop).
func (p *RobustParser) ParseIncremental(text string, listener IncrementalListener) (*tree.Node, *result.Value, error) {
	src, err := tokenize.New(text)
	if err != nil {
		return nil, nil, err
	}
	n := src.Len(0)

	var lastErr error
	bridge := func(partial *engine.Result) bool {
		if len(partial.Accepted) == 0 {
			return false
		}
		best := tree.Rank(partial.Accepted)[0]
		root, buildErr := tree.Build(p.g, partial, src, best)
		if buildErr != nil {
			lastErr = &InternalInvariant{Reason: buildErr.Error()}
			return true
		}
		val, valErr := result.Build(src, root)
		if valErr != nil {
			lastErr = valErr
			return true
		}
		return listener(Update{Tree: root, Result: val, Prefix: partial.NumToks, Complete: partial.NumToks == n})
	}

	eng := engine.NewParser(p.g,
		engine.WithStrategy(p.strategy),
		engine.WithStepBudget(p.stepBudget),
		engine.WithSkipCap(p.skipCap),
		engine.WithListener(bridge))
	res, err := eng.Parse(src)
	if err != nil {
		return nil, nil, &InternalInvariant{Reason: err.Error()}
	}
	if lastErr != nil {
		return nil, nil, lastErr
	}
	if !res.Accept() {
		furthest, expected := furthestExpected(p.g, res)
		return nil, nil, &ParseFailure{Input: text, Furthest: furthest, Expected: expected}
	}
	best := tree.Rank(res.Accepted)[0]
	root, err := tree.Build(p.g, res, src, best)
	if err != nil {
		return nil, nil, &InternalInvariant{Reason: err.Error()}
	}
	val, err := result.Build(src, root)
	if err != nil {
		return nil, nil, err
	}
	return root, val, nil
}
