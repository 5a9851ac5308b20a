package engine

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
	"github.com/robustparse/chartparse/grammar"
)

// tracer traces with key 'chartparse.engine'.
func tracer() tracing.Trace {
	return tracing.Select("chartparse.engine")
}

// Parser drives the chart construction for one grammar across any
// number of parses. It keeps no per-parse state between calls to Parse;
// each call owns a fresh Chart.
type Parser struct {
	g          *grammar.Grammar
	strategy   Strategy
	stepBudget int      // 0 means unbounded
	skipCap    int      // 0 means unbounded
	listener   Listener // optional incremental-emission hook
}

// Option configures a Parser at construction time.
type Option func(p *Parser)

// WithStrategy selects the prediction strategy. Defaults to TopDown.
func WithStrategy(s Strategy) Option {
	return func(p *Parser) { p.strategy = s }
}

// WithStepBudget caps the number of chart-rule firings Parse performs
// before aborting with a partial Result, guarding against runaway
// grammars without requiring callers to wrap every Parse in an external
// timeout. n <= 0 means unbounded (the default).
func WithStepBudget(n int) Option {
	return func(p *Parser) { p.stepBudget = n }
}

// WithSkipCap bounds how many unrecognized tokens any single derivation
// may discard before it stops being carried forward, keeping badly
// mismatched input from filling the chart with ever-worse candidates.
// n <= 0 means unbounded (the default).
func WithSkipCap(n int) Option {
	return func(p *Parser) { p.skipCap = n }
}

// Listener is invoked synchronously from the parse loop every time a
// new, improving passive GOAL edge is inserted — either a prefix parse
// ([0,k) for some k < n) or the current best full-sentence parse.
// Listeners must not mutate partial, since it aliases the parser's live
// chart; they may record it or return stop=true to end the parse loop
// early, at which point Parse finalizes with whatever best parse exists
// once the in-flight chart position finishes processing.
type Listener func(partial *Result) (stop bool)

// WithListener registers fn for incremental emission. At most one
// listener may be registered; a later WithListener replaces an earlier
// one.
func WithListener(fn Listener) Option {
	return func(p *Parser) { p.listener = fn }
}

// NewParser creates a Parser bound to the compiled grammar g.
func NewParser(g *grammar.Grammar, opts ...Option) *Parser {
	p := &Parser{g: g, strategy: TopDown{}}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result is what one call to Parse returns: the completed chart (for
// tree reconstruction) and the accepting items found, if any. NumToks is
// the chart position Accepted items end at — usually the full token
// count, but fewer if the best match left unconsumed trailing noise.
// Partial is set when the step budget was exhausted, or a listener
// returned stop, before the chart reached quiescence; Accepted (if
// non-empty) is still the best derivation found so far.
type Result struct {
	Chart    *Chart
	Accepted []Item
	NumToks  int
	Partial  bool
	Trace    Trace
}

// Trace counts how often each chart rule fired during one Parse call,
// surfacing the same kind of analysis-time information to the caller
// that the step budget consumes internally.
type Trace struct {
	Predicts  int
	Scans     int
	Completes int
	Skips     int
}

// Accept reports whether any accepting item was found, i.e. whether src
// was recognized as (at least partially, if skips occurred) an instance
// of the grammar's goal symbol.
func (r *Result) Accept() bool { return len(r.Accepted) > 0 }

// Parse runs the chart algorithm over src, whose length in tokens is
// src.Len(0). It always completes (there is no reject-with-error path
// the way a strict parser has one): robust parsing either finds an
// accepting derivation, possibly after skipping tokens, or it doesn't,
// and the caller (package chartparse's RobustParser) turns a failed
// Result into a ParseFailure with diagnostics.
func (p *Parser) Parse(src grammar.TokenSource) (*Result, error) {
	if p.g == nil {
		return nil, fmt.Errorf("engine: parser has no grammar")
	}
	n := src.Len(0)
	chart := NewChart(n)
	p.strategy.Seed(p.g, chart, src)

	steps := 0
	bestGoalEnd := -1 // highest position reached by an inserted GOAL edge so far, for listener dedup
	partial := false
	var trace Trace

stateLoop:
	for pos := 0; pos <= n; pos++ {
		S := chart.States[pos]
		scannedAny := false
		for i := 0; i < S.Len(); i++ {
			if p.stepBudget > 0 && steps >= p.stepBudget {
				partial = true
				break stateLoop
			}
			item := S.At(i)
			if scan(p.g, chart, item, pos, src) {
				scannedAny = true
				trace.Scans++
			}
			if next := item.PeekSymbol(); next != nil && !next.IsTerminal() {
				predictWith(p.strategy, p.g, S, item, pos, src)
				trace.Predicts++
			}
			if item.AtEnd() {
				complete(chart, item, pos)
				trace.Completes++
			}
			steps++
		}
		if pos < n && !scannedAny {
			// Robust skip-over: nothing in this state could consume the
			// token at pos, so carry every terminal-expecting item
			// forward untouched (with an incremented skip count) rather
			// than failing the parse outright.
			for i := 0; i < S.Len(); i++ {
				if skip(chart, S.At(i), pos, p.skipCap) {
					trace.Skips++
				}
			}
		}
		tracer().Debugf("chart state %d: %d items", pos, S.Len())

		if p.listener != nil && pos > bestGoalEnd {
			if goalItems := goalItemsEndingAt(p.g, S); len(goalItems) > 0 {
				bestGoalEnd = pos
				stop := p.listener(&Result{Chart: chart, Accepted: goalItems, NumToks: pos, Trace: trace})
				if stop {
					partial = true
					break stateLoop
				}
			}
		}
	}

	// A completed goal item can never be carried further by skip (it has
	// no pending terminal left to wait on), so trailing noise after an
	// otherwise complete match would strand the accepting item short of
	// chart.States[n]. Robust parsing treats anything left over after the
	// best match as ignorable trailing noise, so acceptance is searched
	// for from the end of the chart backward rather than only at n.
	var accepted []Item
	end := n
	for pos := n; pos >= 0 && len(accepted) == 0; pos-- {
		accepted = goalItemsEndingAt(p.g, chart.States[pos])
		end = pos
	}
	return &Result{Chart: chart, Accepted: accepted, NumToks: end, Partial: partial, Trace: trace}, nil
}

// goalItemsEndingAt returns every completed, origin-0 recognition of
// the grammar's goal symbol present in S.
func goalItemsEndingAt(g *grammar.Grammar, S *ItemSet) []Item {
	var out []Item
	for i := 0; i < S.Len(); i++ {
		item := S.At(i)
		if item.AtEnd() && item.Origin == 0 && item.Prod.LHS == g.Goal {
			out = append(out, item)
		}
	}
	return out
}
