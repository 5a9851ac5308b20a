package tokenize

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

// tracer traces with key 'chartparse.tokenize'.
func tracer() tracing.Trace {
	return tracing.Select("chartparse.tokenize")
}

const (
	idNumber = iota
	idWord
)

var lexer *lexmachine.Lexer

// Tokenization splits on ASCII whitespace and nothing else: any maximal
// run of non-whitespace characters is one token, so "twenty-one" or
// "isn't" stay single tokens a Literal can match against. The number
// pattern does not split differently — it covers a subset of the word
// pattern and, winning ties as the earlier-added pattern, merely
// classifies an all-digits token as NUMBER for diagnostics.
func init() {
	lexer = lexmachine.NewLexer()
	lexer.Add([]byte(`[0-9]+(\.[0-9]+)?`), numberAction)
	lexer.Add([]byte(`[^ \t\n\r]+`), wordAction)
	lexer.Add([]byte(`( |\t|\n|\r)+`), skipAction)
	if err := lexer.Compile(); err != nil {
		panic(fmt.Sprintf("tokenize: failed to compile built-in lexer: %v", err))
	}
}

func wordAction(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
	return s.Token(idWord, string(m.Bytes), m), nil
}

func numberAction(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
	return s.Token(idNumber, string(m.Bytes), m), nil
}

// skipAction discards whitespace.
func skipAction(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
	return nil, nil
}

// Tokenizer holds the full, eagerly-scanned token sequence for one
// input text and implements grammar.TokenSource, giving the chart
// engine random-access lookahead for multi-token terminal matching.
type Tokenizer struct {
	source string
	toks   []Token
	Error  func(error) // error handler for lexer errors; defaults to a trace log
}

// New scans text in full and returns a Tokenizer over the resulting
// token sequence. Scanning is eager rather than token-at-a-time: the
// chart engine needs to look arbitrarily far ahead (and sometimes
// backtrack) while trying alternative terminal matches, which a
// single-token-of-lookahead interface cannot support.
func New(text string) (*Tokenizer, error) {
	t := &Tokenizer{source: text, Error: logError}
	scanner, err := lexer.Scanner([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("tokenize: %w", err)
	}
	for {
		tok, err, eof := scanner.Next()
		if err != nil {
			t.Error(err)
			if ui, is := err.(*machines.UnconsumedInput); is {
				scanner.TC = ui.FailTC
				continue
			}
			return nil, fmt.Errorf("tokenize: %w", err)
		}
		if eof {
			break
		}
		if tok == nil { // a Skip action produced no token
			continue
		}
		lm := tok.(*lexmachine.Token)
		lex := string(lm.Lexeme)
		t.toks = append(t.toks, Token{
			Type:   typeOf(lm.Type),
			Lexeme: lex,
			lower:  toLowerASCII(lex),
			Span:   Span{lm.TC, lm.TC + len(lex)},
		})
	}
	return t, nil
}

func typeOf(id int) TokType {
	if id == idNumber {
		return Number
	}
	return Word
}

func logError(err error) {
	tracer().Errorf("tokenize: scanner error: %v", err)
}

// Tokens returns the full scanned token sequence.
func (t *Tokenizer) Tokens() []Token { return t.toks }

// NumTokens returns the number of tokens scanned.
func (t *Tokenizer) NumTokens() int { return len(t.toks) }

// --- grammar.TokenSource -------------------------------------------------

// Len returns how many tokens remain from pos onward.
func (t *Tokenizer) Len(pos int) int {
	if pos >= len(t.toks) {
		return 0
	}
	return len(t.toks) - pos
}

// TokenAt returns the lower-cased lexeme at pos+offset, or "" if out of
// range.
func (t *Tokenizer) TokenAt(pos, offset int) string {
	i := pos + offset
	if i < 0 || i >= len(t.toks) {
		return ""
	}
	return t.toks[i].lower
}

// RawAt returns the original-case lexeme at pos+offset, or "" if out of
// range.
func (t *Tokenizer) RawAt(pos, offset int) string {
	i := pos + offset
	if i < 0 || i >= len(t.toks) {
		return ""
	}
	return t.toks[i].Lexeme
}

// JoinedText returns the original source text spanning [pos, pos+n),
// preserving whatever whitespace separated the tokens (and was dropped
// by the tokenizer) in the source.
func (t *Tokenizer) JoinedText(pos, n int) string {
	if n <= 0 || pos < 0 || pos+n > len(t.toks) {
		return ""
	}
	from := t.toks[pos].Span.From()
	to := t.toks[pos+n-1].Span.To()
	return t.source[from:to]
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
