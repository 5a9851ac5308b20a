package tree

import "github.com/robustparse/chartparse/grammar"

// Node is a reconstructed parse-tree node. Terminal nodes (Sym is a
// terminal symbol) are leaves with no Children and a Text span; interior
// nodes stand for one completed Production and hold one child per RHS
// symbol (after Null-contributed symbols, which never reach the RHS,
// are already absent).
type Node struct {
	Sym      *grammar.Symbol
	Prod     *grammar.Production // nil for terminal leaves
	From, To int                 // token-index span [From, To)
	Skips    int                 // tokens skipped within this node's span
	Text     string              // terminal leaves only: the matched source text
	Children []*Node
}

// IsTerminal reports whether n is a leaf.
func (n *Node) IsTerminal() bool { return n.Sym.IsTerminal() }

// NodeCount returns the number of nodes in the subtree rooted at n,
// used by the root package's default Ranking to prefer simpler
// derivations of an ambiguous parse.
func (n *Node) NodeCount() int {
	c := 1
	for _, ch := range n.Children {
		c += ch.NodeCount()
	}
	return c
}

// TotalSkips returns the sum of skipped tokens across the whole
// subtree's span (equal to n.Skips for a correctly reconstructed tree,
// since the engine's complete rule already folds children's skip counts
// into their parent item — kept as a separate accessor for
// clarity at call sites).
func (n *Node) TotalSkips() int { return n.Skips }
