package grammar

import (
	"regexp"
	"strings"
)

// TokenSource is the read-only view over tokenized input that a terminal's
// MatchFunc is given. It is implemented by tokenize.Tokenizer; declaring it
// here (rather than importing package tokenize) keeps grammar free of a
// dependency on the tokenizer.
type TokenSource interface {
	// Len returns the number of tokens available from pos onward, i.e.
	// the maximum lookahead a MatchFunc may consume starting at pos.
	Len(pos int) int
	// TokenAt returns the lower-cased lexeme of the token at pos+offset.
	TokenAt(pos, offset int) string
	// RawAt returns the original, not-case-folded lexeme.
	RawAt(pos, offset int) string
	// JoinedText returns the original source text spanning the tokens
	// [pos, pos+n), joined by whatever whitespace separated them.
	JoinedText(pos, n int) string
}

// ResultHandle is the callback argument a terminal or compound Action
// receives to read its children's values and set its own. It is
// implemented by result.Handle; declaring it here avoids grammar
// importing package result.
type ResultHandle interface {
	// Get returns the value the named child contributed (what its Action
	// Set, or else its default value), or nil if no such child bound one.
	Get(name string) interface{}
	// Set records v as this element's contributed value.
	Set(v interface{})
	// Text returns the raw matched source text of this element.
	Text() string
}

// MatchFunc attempts to match a terminal against the token source starting
// at pos. It returns the number of tokens consumed (0 meaning no match;
// a terminal never legally matches zero tokens — use Null for that) and
// whether the match succeeded.
type MatchFunc func(src TokenSource, pos int) (consumed int, ok bool)

// Action is invoked, post-order, once an element's span has been
// recognized. Terminal actions receive a handle exposing only Text();
// compound actions may additionally Get values their children Set.
type Action func(h ResultHandle)

// Element is a node in the grammar DAG. Elements are composed with the
// factory functions below (Literal, StringSet, Regex, And, Or, Optional,
// OneOrMore, ZeroOrMore, Repeat, Null) and named via Builder.Define.
// Element implementations are unexported; callers never type-switch on
// them directly.
type Element interface {
	// children returns this element's immediate operands, in order. A
	// leaf element (Literal, StringSet, Regex, Null) returns nil.
	children() []Element
	// terminal reports whether this element matches directly against
	// input tokens rather than being lowered into productions over
	// other symbols.
	terminal() bool
	// matcher builds the MatchFunc for a terminal element under the
	// grammar's case policy. Only meaningful when terminal() is true;
	// an invalid element (bad regex, empty string-set member) reports
	// its problem here, surfaced as a GrammarError at compile time.
	matcher(caseSensitive bool) (MatchFunc, error)
	// label returns a human-readable, stable default name used when no
	// explicit Builder.Define name is given — e.g. for anonymous
	// composites nested inside a named one.
	label() string

	// promoted from actionHolder on every element kind
	action() Action
	setAction(a Action)
	actionConflict() bool
}

// actionHolder holds an optional post-order callback shared by every
// element kind via embedding. A second WithAction on the same element is
// recorded as a conflict and rejected at compile time.
type actionHolder struct {
	act      Action
	conflict bool
}

func (h *actionHolder) action() Action { return h.act }

func (h *actionHolder) setAction(a Action) {
	if h.act != nil {
		h.conflict = true
	}
	h.act = a
}

func (h *actionHolder) actionConflict() bool { return h.conflict }

// WithAction attaches a callback to e, invoked after e's span is
// recognized. It returns e for chaining with factory functions, e.g.
// grammar.WithAction(grammar.Literal("red"), setColor). Attaching a
// second callback to the same element is a GrammarError, reported when
// the grammar is compiled.
func WithAction(e Element, act Action) Element {
	e.setAction(act)
	return e
}

// ActionOf returns the callback attached to e via WithAction, or nil.
// Exported so packages outside grammar (tree, result) can invoke an
// element's Action without grammar having to know about their handle
// types.
func ActionOf(e Element) Action {
	return e.action()
}

// --- literal ---------------------------------------------------------

type literalElem struct {
	actionHolder
	text string // as given; may itself be multi-word ("three times")
	name string
}

// Literal matches the given phrase exactly (case-insensitively unless the
// Builder's MatchCase flag says otherwise). The phrase may contain
// internal whitespace, in which case it consumes that many consecutive
// tokens.
func Literal(phrase string) Element {
	return &literalElem{text: phrase, name: "'" + phrase + "'"}
}

func (e *literalElem) children() []Element { return nil }
func (e *literalElem) terminal() bool      { return true }
func (e *literalElem) label() string       { return e.name }
func (e *literalElem) matcher(caseSensitive bool) (MatchFunc, error) {
	words := splitWords(e.text, !caseSensitive)
	if len(words) == 0 {
		return nil, &GrammarError{Reason: "empty literal phrase"}
	}
	return phraseMatcher(words, caseSensitive), nil
}

// --- string set --------------------------------------------------------

type stringSetElem struct {
	actionHolder
	alts []string
	name string
}

// StringSet matches any one of the given phrases. Each phrase may itself
// be multi-word; the longest matching phrase wins when several are
// prefixes of one another.
func StringSet(alternatives ...string) Element {
	return &stringSetElem{alts: alternatives, name: setLabel(alternatives)}
}

func (e *stringSetElem) children() []Element { return nil }
func (e *stringSetElem) terminal() bool      { return true }
func (e *stringSetElem) label() string       { return e.name }
func (e *stringSetElem) matcher(caseSensitive bool) (MatchFunc, error) {
	if len(e.alts) == 0 {
		return nil, &GrammarError{Reason: "empty string set"}
	}
	phrases := make([][]string, len(e.alts))
	for i, a := range e.alts {
		phrases[i] = splitWords(a, !caseSensitive)
		if len(phrases[i]) == 0 {
			return nil, &GrammarError{Reason: "empty phrase in string set"}
		}
	}
	return func(src TokenSource, pos int) (int, bool) {
		best := 0
		for _, words := range phrases {
			n := len(words)
			if n <= best || src.Len(pos) < n {
				continue
			}
			if phraseAt(words, src, pos, caseSensitive) {
				best = n
			}
		}
		return best, best > 0
	}, nil
}

func phraseMatcher(words []string, caseSensitive bool) MatchFunc {
	n := len(words)
	return func(src TokenSource, pos int) (int, bool) {
		if src.Len(pos) < n {
			return 0, false
		}
		if !phraseAt(words, src, pos, caseSensitive) {
			return 0, false
		}
		return n, true
	}
}

func phraseAt(words []string, src TokenSource, pos int, caseSensitive bool) bool {
	for i, w := range words {
		var tok string
		if caseSensitive {
			tok = src.RawAt(pos, i)
		} else {
			tok = src.TokenAt(pos, i)
		}
		if tok != w {
			return false
		}
	}
	return true
}

// --- regex --------------------------------------------------------------

type regexElem struct {
	actionHolder
	pattern string
	name    string
}

// Regex matches one or more consecutive tokens whose space-joined lexemes
// fully match the given pattern. Patterns are anchored implicitly. A
// pattern that contains (literal or escaped) whitespace may span several
// tokens; the longest window that matches wins, so a multi-token match is
// preferred over skipping the tokens it covers. The pattern is compiled
// when the surrounding grammar is; a malformed pattern is a GrammarError,
// not a panic.
func Regex(pattern string) Element {
	return &regexElem{pattern: pattern, name: "/" + pattern + "/"}
}

func (e *regexElem) children() []Element { return nil }
func (e *regexElem) terminal() bool      { return true }
func (e *regexElem) label() string       { return e.name }
func (e *regexElem) matcher(caseSensitive bool) (MatchFunc, error) {
	prefix := "(?i)"
	if caseSensitive {
		prefix = ""
	}
	re, err := regexp.Compile(prefix + "^(?:" + e.pattern + ")$")
	if err != nil {
		return nil, &GrammarError{Reason: "regex does not compile: " + err.Error()}
	}
	maxWords := regexWindow(e.pattern)
	return func(src TokenSource, pos int) (int, bool) {
		limit := src.Len(pos)
		if limit > maxWords {
			limit = maxWords
		}
		for n := limit; n >= 1; n-- {
			if re.MatchString(windowText(src, pos, n)) {
				return n, true
			}
		}
		return 0, false
	}, nil
}

// regexWindow estimates how many consecutive tokens a pattern could
// legitimately span: one more than the number of whitespace positions it
// mentions. A pattern without any whitespace is strictly single-token.
func regexWindow(pattern string) int {
	return 1 + strings.Count(pattern, " ") + strings.Count(pattern, `\s`)
}

func windowText(src TokenSource, pos, n int) string {
	if n == 1 {
		return src.RawAt(pos, 0)
	}
	var sb strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(src.RawAt(pos, i))
	}
	return sb.String()
}

// --- null (epsilon) ------------------------------------------------------

type nullElem struct {
	actionHolder
}

// Null matches the empty string. It is chiefly useful as a building
// block inside Or alternatives that need an explicit "nothing" branch.
func Null() Element { return &nullElem{} }

func (e *nullElem) children() []Element             { return nil }
func (e *nullElem) terminal() bool                  { return false }
func (e *nullElem) matcher(bool) (MatchFunc, error) { return nil, nil }
func (e *nullElem) label() string                   { return "ε" }

// --- and (concatenation) --------------------------------------------------

type andElem struct {
	actionHolder
	ops []Element
}

// And matches each operand in sequence.
func And(ops ...Element) Element { return &andElem{ops: ops} }

func (e *andElem) children() []Element             { return e.ops }
func (e *andElem) terminal() bool                  { return false }
func (e *andElem) matcher(bool) (MatchFunc, error) { return nil, nil }
func (e *andElem) label() string                   { return "(…)" }

// --- or (alternation) ------------------------------------------------------

type orElem struct {
	actionHolder
	ops []Element
}

// Or matches whichever operand matches; all operands are tried and the
// chart retains every alternative that succeeds (ambiguity is preserved,
// not resolved, at parse time).
func Or(ops ...Element) Element { return &orElem{ops: ops} }

func (e *orElem) children() []Element             { return e.ops }
func (e *orElem) terminal() bool                  { return false }
func (e *orElem) matcher(bool) (MatchFunc, error) { return nil, nil }
func (e *orElem) label() string                   { return "(…|…)" }

// --- repeat ----------------------------------------------------------------

type repeatElem struct {
	actionHolder
	body     Element
	min, max int // max < 0 means unbounded
}

// Repeat matches body between min and max times (inclusive); max < 0
// means no upper bound.
func Repeat(body Element, min, max int) Element {
	return &repeatElem{body: body, min: min, max: max}
}

// Optional matches body zero or one times.
func Optional(body Element) Element { return Repeat(body, 0, 1) }

// ZeroOrMore matches body zero or more times.
func ZeroOrMore(body Element) Element { return Repeat(body, 0, -1) }

// OneOrMore matches body one or more times.
func OneOrMore(body Element) Element { return Repeat(body, 1, -1) }

// Times matches body exactly n times.
func Times(body Element, n int) Element { return Repeat(body, n, n) }

func (e *repeatElem) children() []Element             { return []Element{e.body} }
func (e *repeatElem) terminal() bool                  { return false }
func (e *repeatElem) matcher(bool) (MatchFunc, error) { return nil, nil }
func (e *repeatElem) label() string {
	switch {
	case e.min == 0 && e.max == 1:
		return "[…]"
	case e.min == 0 && e.max < 0:
		return "{…}*"
	case e.min == 1 && e.max < 0:
		return "{…}+"
	default:
		return "{…}"
	}
}

// IsRepeat reports whether e (or, for a Symbol, Symbol.Element()) is a
// Repeat element (which includes Optional, ZeroOrMore, OneOrMore and
// Times, all thin wrappers over Repeat). Package result uses this to
// recognize which nonterminals should flatten into a list rather than a
// mapping of named children.
func IsRepeat(e Element) bool {
	_, ok := e.(*repeatElem)
	return ok
}

// RepeatBody returns the body element of a Repeat element. It panics if
// e is not a Repeat, the same way a failed type assertion would.
func RepeatBody(e Element) Element {
	return e.(*repeatElem).body
}

// RepeatBounds returns the (min, max) occurrence bounds of a Repeat
// element; max < 0 means unbounded. It panics if e is not a Repeat.
func RepeatBounds(e Element) (int, int) {
	r := e.(*repeatElem)
	return r.min, r.max
}

func splitWords(phrase string, fold bool) []string {
	var words []string
	start := -1
	for i, r := range phrase {
		if r == ' ' || r == '\t' {
			if start >= 0 {
				words = append(words, phrase[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		words = append(words, phrase[start:])
	}
	if fold {
		for i, w := range words {
			words[i] = toLowerASCII(w)
		}
	}
	return words
}

func toLowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func setLabel(alts []string) string {
	if len(alts) == 0 {
		return "{}"
	}
	s := "{" + alts[0]
	for _, a := range alts[1:] {
		s += "|" + a
	}
	return s + "}"
}
