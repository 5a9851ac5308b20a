package engine

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/robustparse/chartparse/grammar"
	"github.com/robustparse/chartparse/tokenize"
)

func makeLightGrammar(t *testing.T) *grammar.Grammar {
	b := grammar.NewBuilder("lights")
	action := b.Define("action", grammar.StringSet("change", "flash", "set", "blink"))
	light := b.Define("light", grammar.StringSet("top", "middle", "bottom"))
	color := b.Define("color", grammar.Regex(`red|yellow|blue|orange|purple`))
	times := b.Define("times", grammar.Or(
		grammar.StringSet("once", "twice", "three times"),
		grammar.And(grammar.Regex(`[0-9]+`), grammar.Literal("times")),
	))
	sentence := b.Define("sentence", grammar.And(action, light, grammar.Optional(times), color))
	b.Goal(sentence)
	g, err := b.Grammar()
	if err != nil {
		t.Fatalf("unexpected grammar error: %v", err)
	}
	return g
}

func TestParseAccepts(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "chartparse.engine")
	defer teardown()
	//
	g := makeLightGrammar(t)
	src, err := tokenize.New("set top light to red")
	if err != nil {
		t.Fatalf("unexpected tokenizer error: %v", err)
	}
	p := NewParser(g)
	res, err := p.Parse(src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if !res.Accept() {
		t.Errorf("expected 'set top light to red' to be accepted (with 'light' and 'to' skipped)")
	}
}

func TestParseAcceptsWithOptionalTimes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "chartparse.engine")
	defer teardown()
	//
	g := makeLightGrammar(t)
	src, err := tokenize.New("blink middle light three times purple")
	if err != nil {
		t.Fatalf("unexpected tokenizer error: %v", err)
	}
	p := NewParser(g)
	res, err := p.Parse(src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if !res.Accept() {
		t.Errorf("expected multi-word 'three times' phrase to be matched as a single terminal")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "chartparse.engine")
	defer teardown()
	//
	g := makeLightGrammar(t)
	src, err := tokenize.New("hello")
	if err != nil {
		t.Fatalf("unexpected tokenizer error: %v", err)
	}
	p := NewParser(g)
	res, err := p.Parse(src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if res.Accept() {
		t.Errorf("expected a single unrelated word not to be accepted")
	}
}

func TestLeftCornerStrategyAgreesWithTopDown(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "chartparse.engine")
	defer teardown()
	//
	g := makeLightGrammar(t)
	src, err := tokenize.New("change bottom light red")
	if err != nil {
		t.Fatalf("unexpected tokenizer error: %v", err)
	}
	top := NewParser(g, WithStrategy(TopDown{}))
	lc := NewParser(g, WithStrategy(LeftCorner{}))
	rTop, err := top.Parse(src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	rLC, err := lc.Parse(src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if rTop.Accept() != rLC.Accept() {
		t.Errorf("TopDown and LeftCorner disagree on acceptance: %v vs %v", rTop.Accept(), rLC.Accept())
	}
}

func TestStepBudgetYieldsPartial(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "chartparse.engine")
	defer teardown()
	//
	g := makeLightGrammar(t)
	src, err := tokenize.New("set top light to red")
	if err != nil {
		t.Fatalf("unexpected tokenizer error: %v", err)
	}
	p := NewParser(g, WithStepBudget(1))
	res, err := p.Parse(src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if !res.Partial {
		t.Errorf("expected a 1-step budget to leave the chart partial")
	}
	if res.Accept() {
		t.Errorf("expected a 1-step budget to be exhausted before acceptance")
	}
}

func TestListenerFiresOnGoalEdges(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "chartparse.engine")
	defer teardown()
	//
	g := makeLightGrammar(t)
	src, err := tokenize.New("set top light to red")
	if err != nil {
		t.Fatalf("unexpected tokenizer error: %v", err)
	}
	var seen []int
	p := NewParser(g, WithListener(func(partial *Result) bool {
		seen = append(seen, partial.NumToks)
		return false
	}))
	res, err := p.Parse(src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if !res.Accept() {
		t.Fatalf("expected acceptance")
	}
	if len(seen) == 0 {
		t.Fatalf("expected the listener to fire at least once")
	}
	if seen[len(seen)-1] != res.NumToks {
		t.Errorf("expected the final listener call to report the full token count, got %d want %d", seen[len(seen)-1], res.NumToks)
	}
}

func TestSkipCapStopsCarrying(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "chartparse.engine")
	defer teardown()
	//
	g := makeLightGrammar(t)
	// "light" and "to" are noise; accepting this sentence costs two skips.
	src, err := tokenize.New("set top light to red")
	if err != nil {
		t.Fatalf("unexpected tokenizer error: %v", err)
	}
	capped := NewParser(g, WithSkipCap(1))
	res, err := capped.Parse(src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if res.Accept() {
		t.Errorf("expected a skip cap of 1 to prevent acceptance")
	}
	uncapped := NewParser(g)
	res, err = uncapped.Parse(src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if !res.Accept() {
		t.Errorf("expected the uncapped parser to accept")
	}
}

func TestTraceCountsRuleFirings(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "chartparse.engine")
	defer teardown()
	//
	g := makeLightGrammar(t)
	src, err := tokenize.New("set top light to red")
	if err != nil {
		t.Fatalf("unexpected tokenizer error: %v", err)
	}
	res, err := NewParser(g).Parse(src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	tr := res.Trace
	if tr.Predicts == 0 || tr.Scans == 0 || tr.Completes == 0 {
		t.Errorf("expected all of predict/scan/complete to have fired, got %+v", tr)
	}
	if tr.Skips == 0 {
		t.Errorf("expected the noise words to have been skipped, got %+v", tr)
	}
}

func TestBottomUpStrategyAgrees(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "chartparse.engine")
	defer teardown()
	//
	g := makeLightGrammar(t)
	src, err := tokenize.New("flash middle light orange")
	if err != nil {
		t.Fatalf("unexpected tokenizer error: %v", err)
	}
	bu := NewParser(g, WithStrategy(BottomUp{}))
	res, err := bu.Parse(src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if !res.Accept() {
		t.Errorf("expected BottomUp strategy to accept a valid sentence")
	}
}

func TestBottomUpFindsMidSentenceConstituents(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "chartparse.engine")
	defer teardown()
	//
	g := makeLightGrammar(t)
	// The recognizable sentence starts two tokens in; bottom-up seeding
	// must discover a constituent whose span begins there, not rely on
	// skip-carrying items seeded at position 0.
	src, err := tokenize.New("foo bar flash middle light orange")
	if err != nil {
		t.Fatalf("unexpected tokenizer error: %v", err)
	}
	bu := NewParser(g, WithStrategy(BottomUp{}))
	res, err := bu.Parse(src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if !res.Accept() {
		t.Fatalf("expected BottomUp to accept despite leading garbage")
	}
	found := false
	for _, S := range res.Chart.States {
		for i := 0; i < S.Len(); i++ {
			item := S.At(i)
			if item.AtEnd() && item.Origin == 2 && item.Prod.LHS == g.Symbol("sentence") {
				found = true
			}
		}
	}
	if !found {
		t.Errorf("expected a completed 'sentence' constituent with origin 2 in the chart")
	}
}
