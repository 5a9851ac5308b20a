/*
Package engine implements the chart-parsing core of chartparse: the
Earley item and per-position item sets, the chart, the
predict/scan/complete inference rules plus the robust skip rule, the
prediction strategies (top-down, bottom-up, left-corner), and the
Parser that drives them to quiescence over a token source.

The engine is a recognizer, not a tree builder: Parse reports which
completed recognitions of the grammar's goal symbol exist and leaves
the chart behind for package tree to reconstruct derivations from. Two
things distinguish it from a conventional Earley recognizer. First, a
terminal may consume several consecutive tokens at once (multi-word
phrases, multi-token regular expressions), so scanning deposits
advanced items an arbitrary number of positions ahead. Second, the
skip rule makes parsing robust: when no item in a chart state can
consume the current token, every item waiting on a terminal is carried
forward past it with an incremented skip count instead of the parse
failing.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package engine
