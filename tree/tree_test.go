package tree

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/robustparse/chartparse/engine"
	"github.com/robustparse/chartparse/grammar"
	"github.com/robustparse/chartparse/tokenize"
)

func makeLightGrammar(t *testing.T) *grammar.Grammar {
	b := grammar.NewBuilder("lights")
	action := b.Define("action", grammar.StringSet("change", "flash", "set", "blink"))
	light := b.Define("light", grammar.StringSet("top", "middle", "bottom"))
	color := b.Define("color", grammar.Regex(`red|yellow|blue|orange|purple`))
	sentence := b.Define("sentence", grammar.And(action, light, color))
	b.Goal(sentence)
	g, err := b.Grammar()
	if err != nil {
		t.Fatalf("unexpected grammar error: %v", err)
	}
	return g
}

func TestBuildSimpleTree(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "chartparse.tree")
	defer teardown()
	//
	g := makeLightGrammar(t)
	src, err := tokenize.New("set top red")
	if err != nil {
		t.Fatalf("unexpected tokenizer error: %v", err)
	}
	p := engine.NewParser(g)
	res, err := p.Parse(src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if !res.Accept() {
		t.Fatalf("expected acceptance")
	}
	best := Rank(res.Accepted)[0]
	root, err := Build(g, res, src, best)
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}
	if root.Sym.Name != "sentence" {
		t.Errorf("expected root symbol 'sentence', got %q", root.Sym.Name)
	}
	if len(root.Children) != 3 {
		t.Fatalf("expected 3 children, got %d", len(root.Children))
	}
	if root.Children[0].Text != "set" || root.Children[1].Text != "top" || root.Children[2].Text != "red" {
		t.Errorf("unexpected leaf texts: %q %q %q", root.Children[0].Text, root.Children[1].Text, root.Children[2].Text)
	}
	if root.From != 0 || root.To != 3 {
		t.Errorf("expected root span [0,3), got [%d,%d)", root.From, root.To)
	}
}

func TestBuildWithSkippedNoise(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "chartparse.tree")
	defer teardown()
	//
	g := makeLightGrammar(t)
	src, err := tokenize.New("please set the top light to red now")
	if err != nil {
		t.Fatalf("unexpected tokenizer error: %v", err)
	}
	p := engine.NewParser(g)
	res, err := p.Parse(src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if !res.Accept() {
		t.Fatalf("expected acceptance despite noise words")
	}
	best := Rank(res.Accepted)[0]
	root, err := Build(g, res, src, best)
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}
	if root.Children[0].Text != "set" {
		t.Errorf("expected 'set' to be recognized as the action despite leading noise, got %q", root.Children[0].Text)
	}
}

func TestRankPrefersFewerSkips(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "chartparse.tree")
	defer teardown()
	//
	g := makeLightGrammar(t)
	prodA := g.ProductionsFor(g.Goal)[0]
	items := []engine.Item{
		{Prod: prodA, Dot: len(prodA.RHS), Origin: 0, Skips: 2},
		{Prod: prodA, Dot: len(prodA.RHS), Origin: 0, Skips: 0},
		{Prod: prodA, Dot: len(prodA.RHS), Origin: 0, Skips: 1},
	}
	ranked := Rank(items)
	if ranked[0].Skips != 0 {
		t.Errorf("expected the zero-skip item to rank first, got Skips=%d", ranked[0].Skips)
	}
}
