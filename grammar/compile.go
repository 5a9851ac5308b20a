package grammar

import (
	"fmt"

	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'chartparse.grammar'.
func tracer() tracing.Trace {
	return tracing.Select("chartparse.grammar")
}

// Grammar is the immutable, compiled result of a Builder: a flat set of
// productions over dense-numbered symbols, plus the auxiliary tables
// (nullable set, left-corner closure) the engine strategies consult while
// driving the chart. A *Grammar is safe for concurrent use by any number
// of parsers.
type Grammar struct {
	Name        string
	Goal        *Symbol
	Symbols     []*Symbol // indexed by Symbol.ID()
	Productions []*Production

	byName        map[string]*Symbol
	productionsOf map[int32][]*Production // LHS id -> its productions, predict() consults this
	nullable      map[int32]bool
	terminalMatch map[int32]MatchFunc
	terminalAct   map[int32]Action
	compoundAct   map[int32]Action // action attached to a nonterminal's defining element, if any
	leftCorners   map[int32]map[int32]bool
	termByCorner  map[int32]map[int32]bool // terminal id -> set of nonterminal ids whose left-corner set contains it
}

// Symbol looks up a symbol by its Define'd (or GOAL) name.
func (g *Grammar) Symbol(name string) *Symbol { return g.byName[name] }

// ProductionsFor returns the productions with lhs as their left-hand
// side, i.e. the set a predict rule adds when the dot in some active edge
// stands immediately before lhs.
func (g *Grammar) ProductionsFor(lhs *Symbol) []*Production {
	return g.productionsOf[lhs.id]
}

// Nullable reports whether sym can derive the empty string.
func (g *Grammar) Nullable(sym *Symbol) bool { return g.nullable[sym.id] }

// MatchFunc returns the terminal's matcher, or nil if sym is not a
// terminal.
func (g *Grammar) MatchFunc(sym *Symbol) MatchFunc {
	if !sym.IsTerminal() {
		return nil
	}
	return g.terminalMatch[sym.id]
}

// Action returns the callback attached to sym's defining element, if any.
func (g *Grammar) Action(sym *Symbol) Action {
	if sym.IsTerminal() {
		return g.terminalAct[sym.id]
	}
	return g.compoundAct[sym.id]
}

// LeftCorners returns the transitive left-corner set of sym: every
// symbol C such that sym can derive a string beginning with C, taking
// nullable prefixes into account. This is exposed as a read-only
// diagnostic/optimization accessor; the engine's LeftCorner strategy
// uses it to prune predictions that cannot possibly lead to a match at
// or after the current input position.
func (g *Grammar) LeftCorners(sym *Symbol) []*Symbol {
	set := g.leftCorners[sym.id]
	out := make([]*Symbol, 0, len(set))
	for id := range set {
		out = append(out, g.Symbols[id])
	}
	return out
}

// NonterminalsStartingWith returns every nonterminal symbol whose
// left-corner set contains term — the set of nonterminals the
// LeftCorner strategy is willing to predict when term is the next
// matchable terminal.
func (g *Grammar) NonterminalsStartingWith(term *Symbol) []*Symbol {
	set := g.termByCorner[term.id]
	out := make([]*Symbol, 0, len(set))
	for id := range set {
		out = append(out, g.Symbols[id])
	}
	return out
}

// Dump lists every production of the grammar to the debug trace, one per
// line. Debugging helper.
func (g *Grammar) Dump() {
	tracer().Debugf("--- grammar %s -----------", g.Name)
	tracer().Debugf("goal: %s", g.Goal.Name)
	for _, p := range g.Productions {
		tracer().Debugf("%3d: %s", p.Serial, p)
	}
	tracer().Debugf("-------------------------")
}

// compile lowers a Builder's accumulated element DAG into a *Grammar.
// syms/prods are kept as arraylist.List registries rather than bare
// slices: registration order must survive into Symbol/Production Serial
// numbering, and a list makes that invariant explicit at the type level.
type compiler struct {
	b        *Builder
	symOf    map[Element]*Symbol
	nextID   int32
	syms     *arraylist.List
	prods    *arraylist.List
	nextProd int
	err      *GrammarError
}

func compile(b *Builder) (*Grammar, error) {
	c := &compiler{b: b, symOf: make(map[Element]*Symbol), syms: arraylist.New(), prods: arraylist.New()}

	goalSym := c.symbolFor(b.goal)
	if c.err != nil {
		return nil, c.err
	}
	if goalSym.IsTerminal() {
		// The engine seeds from the goal's productions, so a bare
		// terminal goal gets a synthetic wrapper production. The wrapper
		// carries a fresh, action-free element so the terminal's own
		// callback still runs exactly once, at the leaf.
		wrap := c.newSymbol(Nonterminal, "GOAL", false, And(b.goal))
		c.addProduction(wrap, wrap.elem, goalSym)
		goalSym = wrap
	}

	g := &Grammar{
		Name:          b.name,
		Goal:          goalSym,
		Symbols:       c.symbolSlice(),
		Productions:   c.productionSlice(),
		byName:        make(map[string]*Symbol),
		productionsOf: make(map[int32][]*Production),
		terminalMatch: make(map[int32]MatchFunc),
		terminalAct:   make(map[int32]Action),
		compoundAct:   make(map[int32]Action),
	}
	for _, s := range g.Symbols {
		g.byName[s.Name] = s
		if s.elem.actionConflict() {
			return nil, &GrammarError{Reason: "element has conflicting callbacks", Symbol: s.Name}
		}
		if s.IsTerminal() {
			mf, err := s.elem.matcher(b.caseSensitive)
			if err != nil {
				if ge, ok := err.(*GrammarError); ok {
					ge.Symbol = s.Name
					return nil, ge
				}
				return nil, &GrammarError{Reason: err.Error(), Symbol: s.Name}
			}
			g.terminalMatch[s.id] = mf
			if a := s.elem.action(); a != nil {
				g.terminalAct[s.id] = a
			}
		} else if a := s.elem.action(); a != nil {
			g.compoundAct[s.id] = a
		}
	}
	for _, p := range g.Productions {
		g.productionsOf[p.LHS.id] = append(g.productionsOf[p.LHS.id], p)
	}

	for _, s := range g.Symbols {
		if s.IsTerminal() && g.terminalMatch[s.id] == nil {
			return nil, &GrammarError{Reason: "terminal has no match function", Symbol: s.Name}
		}
	}
	for _, d := range b.defs {
		if _, reached := c.symOf[d.elem]; !reached {
			return nil, &GrammarError{Reason: "definition not reachable from the goal element", Symbol: d.name}
		}
	}

	computeNullable(g)
	computeLeftCorners(g)

	return g, nil
}

// symbolFor returns the (possibly newly allocated) Symbol for elem,
// recursing into its children first so that by the time elem's own
// productions are emitted, every operand already has a Symbol.
func (c *compiler) symbolFor(elem Element) *Symbol {
	if elem == nil {
		if c.err == nil {
			c.err = &GrammarError{Reason: "nil element encountered while compiling"}
		}
		return nil
	}
	if s, ok := c.symOf[elem]; ok {
		return s
	}

	if elem.terminal() {
		s := c.newSymbol(Terminal, c.nameFor(elem), c.isNamed(elem), elem)
		c.symOf[elem] = s
		return s
	}

	// Allocate the symbol before recursing so that self-referential
	// (left-recursive) repeat lowering can refer to it.
	s := c.newSymbol(Nonterminal, c.nameFor(elem), c.isNamed(elem), elem)
	c.symOf[elem] = s

	switch e := elem.(type) {
	case *andElem:
		rhs := make([]*Symbol, 0, len(e.ops))
		for _, op := range e.ops {
			if _, isNull := op.(*nullElem); isNull {
				continue
			}
			rhs = append(rhs, c.symbolFor(op))
		}
		c.addProduction(s, elem, rhs...)

	case *orElem:
		hasNull := false
		for _, op := range e.ops {
			if _, isNull := op.(*nullElem); isNull {
				hasNull = true
				continue
			}
			c.addProduction(s, elem, c.symbolFor(op))
		}
		if hasNull {
			c.addProduction(s, elem)
		}

	case *repeatElem:
		if e.min < 0 || (e.max >= 0 && e.max < e.min) {
			if c.err == nil {
				c.err = &GrammarError{Reason: fmt.Sprintf("invalid repeat bounds (%d,%d)", e.min, e.max), Symbol: s.Name}
			}
			return s
		}
		body := c.symbolFor(e.body)
		c.lowerRepeat(s, elem, body, e.min, e.max)

	case *nullElem:
		c.addProduction(s, elem)

	default:
		if c.err == nil {
			c.err = &GrammarError{Reason: fmt.Sprintf("unrecognized element type %T", elem)}
		}
	}

	return s
}

func (c *compiler) lowerRepeat(s *Symbol, elem Element, body *Symbol, min, max int) {
	if max < 0 {
		tail := c.newSymbol(Nonterminal, s.Name+"#tail", false, elem)
		c.addProduction(tail, elem)             // tail -> ε
		c.addProduction(tail, elem, tail, body) // tail -> tail body
		if min == 0 {
			c.addProduction(s, elem, tail)
		} else {
			rhs := repeatN(body, min)
			rhs = append(rhs, tail)
			c.addProduction(s, elem, rhs...)
		}
		return
	}
	for k := min; k <= max; k++ {
		c.addProduction(s, elem, repeatN(body, k)...)
	}
}

func repeatN(sym *Symbol, n int) []*Symbol {
	out := make([]*Symbol, n)
	for i := range out {
		out[i] = sym
	}
	return out
}

func (c *compiler) newSymbol(kind Kind, name string, named bool, elem Element) *Symbol {
	s := &Symbol{Name: name, Kind: kind, Named: named, id: c.nextID, elem: elem}
	c.nextID++
	c.syms.Add(s)
	return s
}

// symbolSlice drains the symbol registry into the dense, ID-indexed
// slice Grammar.Symbols exposes to callers.
func (c *compiler) symbolSlice() []*Symbol {
	vals := c.syms.Values()
	out := make([]*Symbol, len(vals))
	for i, v := range vals {
		out[i] = v.(*Symbol)
	}
	return out
}

// productionSlice drains the production registry into the
// Serial-indexed slice Grammar.Productions exposes to callers.
func (c *compiler) productionSlice() []*Production {
	vals := c.prods.Values()
	out := make([]*Production, len(vals))
	for i, v := range vals {
		out[i] = v.(*Production)
	}
	return out
}

// isNamed reports whether elem was passed to Builder.Define (as opposed
// to being an anonymous composite nested inside a named one). The goal
// element is always treated as named, even if the caller passed
// Builder.Goal an element it never separately Defined.
func (c *compiler) isNamed(elem Element) bool {
	if elem == c.b.goal {
		return true
	}
	_, ok := c.b.byElem[elem]
	return ok
}

func (c *compiler) addProduction(lhs *Symbol, elem Element, rhs ...*Symbol) {
	p := &Production{Serial: c.nextProd, LHS: lhs, RHS: rhs, elem: elem}
	c.nextProd++
	c.prods.Add(p)
}

// nameFor returns the Builder.Define name for elem if one was given,
// otherwise a synthetic name derived from its label and allocation
// order — stable within one compilation, not across recompiles.
func (c *compiler) nameFor(elem Element) string {
	if d, ok := c.b.byElem[elem]; ok {
		return d.name
	}
	if elem == c.b.goal {
		return "GOAL"
	}
	return fmt.Sprintf("%s#%d", elem.label(), c.nextID)
}

func computeNullable(g *Grammar) {
	nullable := make(map[int32]bool)
	changed := true
	for changed {
		changed = false
		for _, p := range g.Productions {
			if nullable[p.LHS.id] {
				continue
			}
			allNullable := true
			for _, sym := range p.RHS {
				if sym.IsTerminal() || !nullable[sym.id] {
					allNullable = false
					break
				}
			}
			if allNullable {
				nullable[p.LHS.id] = true
				changed = true
			}
		}
	}
	g.nullable = nullable
}

// computeLeftCorners builds the transitive left-corner relation: for
// every nonterminal A, the set of symbols C (terminal or nonterminal)
// that can appear as the leftmost non-skippable symbol of some
// derivation of A, taking nullable prefixes within each production into
// account.
func computeLeftCorners(g *Grammar) {
	direct := make(map[int32]map[int32]bool)
	for _, s := range g.Symbols {
		if !s.IsTerminal() {
			direct[s.id] = make(map[int32]bool)
		}
	}
	for _, p := range g.Productions {
		set := direct[p.LHS.id]
		for _, sym := range p.RHS {
			set[sym.id] = true
			if !g.nullable[sym.id] {
				break
			}
		}
	}

	closure := make(map[int32]map[int32]bool, len(direct))
	for id, set := range direct {
		cl := make(map[int32]bool, len(set))
		for k := range set {
			cl[k] = true
		}
		closure[id] = cl
	}
	changed := true
	for changed {
		changed = false
		for id, cl := range closure {
			for corner := range cl {
				if corner == id {
					continue
				}
				if nested, ok := closure[corner]; ok {
					for nc := range nested {
						if !cl[nc] {
							cl[nc] = true
							changed = true
						}
					}
				}
			}
		}
	}
	g.leftCorners = closure

	termByCorner := make(map[int32]map[int32]bool)
	for ntID, cl := range closure {
		for cornerID := range cl {
			if g.Symbols[cornerID].IsTerminal() {
				if termByCorner[cornerID] == nil {
					termByCorner[cornerID] = make(map[int32]bool)
				}
				termByCorner[cornerID][ntID] = true
			}
		}
	}
	g.termByCorner = termByCorner
}
