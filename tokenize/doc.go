/*
Package tokenize implements the tokenizer chartparse's chart engine scans
against: input text is split on ASCII whitespace (consecutive whitespace
collapsed) with a lexmachine-compiled DFA, producing a token slice that
supports the random access and lookahead a robust grammar terminal
(Literal, StringSet, Regex) needs: multi-token phrase matching requires
peeking several tokens ahead of the chart's current position, and
reconstructing a matched span's original text requires joining tokens
back together with their original separating whitespace.

Whitespace is the only split point. A hyphenated or punctuated run like
"twenty-one" or "isn't" is a single token, so it compares against a
Literal of the same spelling; an all-digits token is classified NUMBER
rather than WORD, for diagnostics only. Unlike a language scanner, this
tokenizer never itself decides what is "valid" input — any run of
non-whitespace characters becomes a token, and it is package engine's
skip rule, not the tokenizer, that decides whether an unmatched token
may be skipped over.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package tokenize
