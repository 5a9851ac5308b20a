/*
Package grammar implements the grammar object model for chartparse: an
immutable, composable DAG of grammar elements, and a compiler that lowers
that DAG into a flat set of productions suitable for chart parsing.

Elements are built with factory functions (Literal, StringSet, Regex, And,
Or, Optional, OneOrMore, ZeroOrMore, Repeat, Null) and composed into a DAG
rooted at a designated GOAL element. A Builder assigns stable, user-visible
names to elements (there is no struct-tag or reflection based metaclass
magic here, unlike some grammar-library traditions; names are assigned
explicitly via Builder.Define).

Compiling a Builder yields a *Grammar: an immutable artifact recording
productions, terminals and their match functions, and the left-corner sets
used by the default parsing strategy. A Grammar may be shared freely across
any number of concurrent parses.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package grammar
