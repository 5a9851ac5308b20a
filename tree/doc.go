/*
Package tree reconstructs a parse tree from a completed chart. A
completed Earley item only records where its derivation started and
which production it matched; its end is implicit in the chart state it
was found in. Reconstructing a tree therefore means walking the
production's right-hand side from right to left, at each step searching
the chart for whichever sub-derivation produced that symbol. Terminals
may span more than one input token, and productions may have been
reached only after skipping unrecognized tokens; both cases make the
backward search over candidate start positions necessary.

Where the grammar is ambiguous, Build resolves each choice by preferring
the completion spanning the most input (smallest origin), then the one
with the fewest skipped tokens, then the lowest production serial — a
deterministic, repeatable ranking rather than an exhaustive forest.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package tree
