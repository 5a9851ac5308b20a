package grammar

import (
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

// fakeSource is a minimal TokenSource over a fixed token slice, for
// exercising terminal matchers without a real tokenizer.
type fakeSource []string

func (f fakeSource) Len(pos int) int {
	if pos >= len(f) {
		return 0
	}
	return len(f) - pos
}

func (f fakeSource) TokenAt(pos, offset int) string {
	return toLowerASCII(f.RawAt(pos, offset))
}

func (f fakeSource) RawAt(pos, offset int) string {
	i := pos + offset
	if i < 0 || i >= len(f) {
		return ""
	}
	return f[i]
}

func (f fakeSource) JoinedText(pos, n int) string {
	if n <= 0 || pos < 0 || pos+n > len(f) {
		return ""
	}
	return strings.Join(f[pos:pos+n], " ")
}

// We use a small light-switch grammar for testing, mirroring the
// canonical example from the domain this parser targets:
//
//	action: change | flash | set | blink
//	light:  top | middle | bottom
//	color:  red | yellow | blue | orange | purple
//	sentence: action light [times] color

func makeLightGrammar(t *testing.T) *Grammar {
	b := NewBuilder("lights")
	action := b.Define("action", StringSet("change", "flash", "set", "blink"))
	light := b.Define("light", StringSet("top", "middle", "bottom"))
	color := b.Define("color", Regex(`red|yellow|blue|orange|purple`))
	times := b.Define("times", Or(
		StringSet("once", "twice", "three times"),
		And(Regex(`[0-9]+`), Literal("times")),
	))
	sentence := b.Define("sentence", And(action, light, Optional(times), color))
	b.Goal(sentence)
	g, err := b.Grammar()
	if err != nil {
		t.Fatalf("unexpected grammar error: %v", err)
	}
	return g
}

func TestCompileGoal(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "chartparse.grammar")
	defer teardown()
	//
	g := makeLightGrammar(t)
	if g.Goal == nil {
		t.Fatalf("expected a goal symbol")
	}
	if g.Goal.Name != "sentence" {
		t.Errorf("expected goal named 'sentence', got %q", g.Goal.Name)
	}
	if g.Goal.IsTerminal() {
		t.Errorf("goal must be a nonterminal")
	}
}

func TestTerminalsHaveMatchers(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "chartparse.grammar")
	defer teardown()
	//
	g := makeLightGrammar(t)
	for _, s := range g.Symbols {
		if s.IsTerminal() && g.MatchFunc(s) == nil {
			t.Errorf("terminal %s has no match function", s.Name)
		}
	}
}

func TestNullableTimesOmitted(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "chartparse.grammar")
	defer teardown()
	//
	g := makeLightGrammar(t)
	opt := g.Symbol("times")
	if opt == nil {
		t.Fatalf("expected a 'times' symbol")
	}
	// Optional(times) is an anonymous wrapper around 'times'; 'times'
	// itself is never nullable, but the wrapper the sentence production
	// references must admit the empty string.
	if g.Nullable(opt) {
		t.Errorf("expected 'times' itself not to be nullable")
	}
	found := false
	for _, p := range g.Productions {
		if p.LHS.Name != "sentence" {
			continue
		}
		found = true
		if len(p.RHS) != 3 && len(p.RHS) != 4 {
			t.Errorf("unexpected sentence production arity: %s", p)
		}
		if len(p.RHS) == 4 && !g.Nullable(p.RHS[2]) {
			t.Errorf("expected the Optional(times) wrapper %s to be nullable", p.RHS[2])
		}
	}
	if !found {
		t.Errorf("expected at least one production for 'sentence'")
	}
}

func TestDuplicateDefinitionIsError(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "chartparse.grammar")
	defer teardown()
	//
	b := NewBuilder("dup")
	a := StringSet("a")
	b.Define("a", a)
	b.Define("a", StringSet("b"))
	b.Goal(a)
	if _, err := b.Grammar(); err == nil {
		t.Errorf("expected a GrammarError for duplicate name")
	}
}

func TestMissingGoalIsError(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "chartparse.grammar")
	defer teardown()
	//
	b := NewBuilder("nogoal")
	b.Define("a", StringSet("a"))
	if _, err := b.Grammar(); err == nil {
		t.Errorf("expected a GrammarError for missing goal")
	}
}

func TestLeftCornersReachTerminals(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "chartparse.grammar")
	defer teardown()
	//
	g := makeLightGrammar(t)
	corners := g.LeftCorners(g.Goal)
	sawTerminal := false
	for _, c := range corners {
		if c.IsTerminal() {
			sawTerminal = true
		}
	}
	if !sawTerminal {
		t.Errorf("expected the goal's left-corner set to include at least one terminal")
	}
}

func TestMultiTokenRegexMatcher(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "chartparse.grammar")
	defer teardown()
	//
	b := NewBuilder("times")
	times := b.Define("times", Regex(`[0-9]+ times`))
	b.Goal(times)
	g, err := b.Grammar()
	if err != nil {
		t.Fatalf("unexpected grammar error: %v", err)
	}
	match := g.MatchFunc(g.Symbol("times"))
	if n, ok := match(fakeSource{"20", "times"}, 0); !ok || n != 2 {
		t.Errorf("expected the pattern to span two tokens, got (%d, %v)", n, ok)
	}
	if _, ok := match(fakeSource{"20"}, 0); ok {
		t.Errorf("expected a lone number not to match")
	}
	if _, ok := match(fakeSource{"often", "times"}, 0); ok {
		t.Errorf("expected a non-numeric first token not to match")
	}
}

func TestMatchCaseSensitive(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "chartparse.grammar")
	defer teardown()
	//
	b := NewBuilder("cased")
	b.MatchCase(true)
	cmd := b.Define("cmd", Literal("Set"))
	b.Goal(cmd)
	g, err := b.Grammar()
	if err != nil {
		t.Fatalf("unexpected grammar error: %v", err)
	}
	match := g.MatchFunc(g.Symbol("cmd"))
	if _, ok := match(fakeSource{"Set"}, 0); !ok {
		t.Errorf("expected exact-case 'Set' to match")
	}
	if _, ok := match(fakeSource{"set"}, 0); ok {
		t.Errorf("expected lower-case 'set' not to match under MatchCase(true)")
	}
}

func TestRegexCompileFailureIsError(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "chartparse.grammar")
	defer teardown()
	//
	b := NewBuilder("badregex")
	bad := b.Define("bad", Regex(`[unclosed`))
	b.Goal(bad)
	_, err := b.Grammar()
	if err == nil {
		t.Fatalf("expected a GrammarError for a malformed pattern")
	}
	if _, ok := err.(*GrammarError); !ok {
		t.Errorf("expected *GrammarError, got %T: %v", err, err)
	}
}

func TestConflictingActionsIsError(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "chartparse.grammar")
	defer teardown()
	//
	b := NewBuilder("conflict")
	e := Literal("red")
	WithAction(e, func(h ResultHandle) {})
	WithAction(e, func(h ResultHandle) {})
	b.Goal(b.Define("color", e))
	if _, err := b.Grammar(); err == nil {
		t.Errorf("expected a GrammarError for conflicting callbacks")
	}
}

func TestRepeatBoundsValidated(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "chartparse.grammar")
	defer teardown()
	//
	b := NewBuilder("bounds")
	digit := b.Define("digit", Regex(`[0-9]`))
	b.Goal(b.Define("digits", Repeat(digit, 3, 1)))
	if _, err := b.Grammar(); err == nil {
		t.Errorf("expected a GrammarError for max < min")
	}
}

func TestUnreachableDefinitionIsError(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "chartparse.grammar")
	defer teardown()
	//
	b := NewBuilder("orphan")
	a := b.Define("a", StringSet("a"))
	b.Define("orphan", StringSet("never"))
	b.Goal(a)
	if _, err := b.Grammar(); err == nil {
		t.Errorf("expected a GrammarError for a definition unreachable from the goal")
	}
}

func TestRepeatLowering(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "chartparse.grammar")
	defer teardown()
	//
	b := NewBuilder("repeat")
	digit := b.Define("digit", Regex(`[0-9]`))
	digits := b.Define("digits", OneOrMore(digit))
	b.Goal(digits)
	g, err := b.Grammar()
	if err != nil {
		t.Fatalf("unexpected grammar error: %v", err)
	}
	if !g.Nullable(g.Symbol("digits")) {
		// OneOrMore must never be nullable.
		t.Logf("digits nullable: %v (expected false)", g.Nullable(g.Symbol("digits")))
	}
	if g.Nullable(g.Symbol("digits")) {
		t.Errorf("OneOrMore(digit) must not be nullable")
	}
}
