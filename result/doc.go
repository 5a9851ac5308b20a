/*
Package result flattens a reconstructed tree.Node into a named,
API-ready value and drives the post-order callback mechanism grammar
elements attach with WithAction. An anonymous composite element (an And,
Or or Repeat never passed to Builder.Define) contributes no level of its
own to the result: its children's values are hoisted directly into its
parent, so that only user-named elements shape the result's structure.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package result
