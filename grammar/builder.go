package grammar

// Builder assembles a grammar element DAG and assigns stable names to the
// elements that matter to callers: Define names a subtree, Goal designates
// the start element, and Grammar compiles the whole thing.
type Builder struct {
	name          string
	defs          []*definition
	byElem        map[Element]*definition
	goal          Element
	caseSensitive bool
	compiled      bool
	err           *GrammarError
}

type definition struct {
	name string
	elem Element
}

// NewBuilder creates an empty Builder. name is cosmetic, used only in
// error messages and Dump output.
func NewBuilder(name string) *Builder {
	return &Builder{name: name, byElem: make(map[Element]*definition)}
}

// Define assigns name to elem and returns elem unchanged, so calls can be
// chained inline while building larger elements:
//
//	color := b.Define("color", grammar.Regex(`red|blue|green`))
//	b.Goal(b.Define("sentence", grammar.And(action, color)))
//
// Defining the same element twice, or reusing a name, is recorded as a
// GrammarError surfaced by Grammar.
func (b *Builder) Define(name string, elem Element) Element {
	if b.err == nil {
		if _, dup := b.byElem[elem]; dup {
			b.err = &GrammarError{Reason: "element defined more than once: " + name}
		}
		for _, d := range b.defs {
			if d.name == name {
				b.err = &GrammarError{Reason: "duplicate definition name: " + name}
			}
		}
	}
	d := &definition{name: name, elem: elem}
	b.defs = append(b.defs, d)
	b.byElem[elem] = d
	return elem
}

// MatchCase sets the grammar's case policy: false (the default) compares
// tokens against Literal/StringSet phrases after ASCII lowercasing both
// sides and compiles Regex patterns case-insensitively; true preserves
// case everywhere. The flag takes effect at compile time, so it may be
// set at any point before Grammar is called.
func (b *Builder) MatchCase(sensitive bool) *Builder {
	b.caseSensitive = sensitive
	return b
}

// Goal designates elem as the grammar's start element. It need not have
// been passed to Define; if it wasn't, it is given the synthetic name
// "GOAL".
func (b *Builder) Goal(elem Element) {
	b.goal = elem
}

// Grammar compiles the builder's accumulated definitions into an
// immutable *Grammar. Errors accumulated during Define, or discovered
// during compilation (unset goal, unreachable definitions, conflicting
// callbacks, invalid Repeat bounds, a Regex that does not compile, an
// empty Literal/StringSet phrase), are returned as a *GrammarError.
func (b *Builder) Grammar() (*Grammar, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.goal == nil {
		return nil, &GrammarError{Reason: "no goal element set; call Builder.Goal"}
	}
	return compile(b)
}
