/*
Package chartparse implements a robust, incremental chart parser for small,
domain-specific natural-language grammars.

Clients declare a context-free grammar by composing grammar elements
(literals, sets of strings, regular expressions, alternation, concatenation,
optional, repetition) with package grammar, designate a start symbol, and
obtain from input text a parse tree and a flattened, named parse result
suitable for driving API calls.

Two properties distinguish this parser from a generic CFG parser: it is
robust (unknown tokens are skipped rather than causing a parse failure, and
multi-token phrases can match a single terminal), and it can emit partial
results incrementally as a sentence is consumed. Package structure is as
follows:

■ grammar: the element DAG, composition operators and the grammar compiler
that lowers elements into productions.

■ tokenize: a robust tokenizer, splitting on whitespace and supporting
lookahead for multi-token terminals.

■ engine: the chart, the agenda, the predict/scan/complete rules and the
parsing strategies (top-down, bottom-up, left-corner) that drive them.

■ tree: reconstruction of parse trees from completed chart edges, with
ambiguity ranking.

■ result: flattening of a parse tree into a named, nested parse result and
the post-parse callback mechanism.

The root package ties these together behind RobustParser.

Building a grammar

Grammars are built with a grammar.Builder:

	b := grammar.NewBuilder("lights")
	action := b.Define("action", grammar.StringSet("change", "flash", "set", "blink"))
	light := b.Define("light", grammar.StringSet("top", "middle", "bottom"))
	color := b.Define("color", grammar.Regex(`red|yellow|blue|orange|purple`))
	times := b.Define("times", grammar.Or(
		grammar.StringSet("once", "twice", "three times"),
		grammar.Regex(`[0-9]+ times`),
	))
	onePart := b.Define("one_parse", grammar.And(action, light, grammar.Optional(times), color))
	b.Goal(grammar.OneOrMore(onePart))
	g, err := b.Grammar()

Parsing

A RobustParser is constructed from a compiled grammar and reused across
sentences; it is safe to share a single *grammar.Grammar across any number
of parsers and goroutines, as it is immutable once built. Each call to
Parse/ParseMulti/ParseIncremental owns its own chart and agenda.

	p := chartparse.NewParser(g)
	tree, result, err := p.Parse("set my top light to red")

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package chartparse
