package tree

import (
	"fmt"

	"github.com/pterm/pterm"
)

// Print renders the subtree rooted at n as an indented tree directly on
// the terminal. Debugging helper, not part of the parse workflow.
func (n *Node) Print() {
	ll := leveled(n, pterm.LeveledList{}, 0)
	root := pterm.NewTreeFromLeveledList(ll)
	pterm.DefaultTree.WithRoot(root).Render()
}

func leveled(n *Node, ll pterm.LeveledList, level int) pterm.LeveledList {
	text := n.Sym.Name
	if n.IsTerminal() {
		text = fmt.Sprintf("%s = %q", n.Sym.Name, n.Text)
	} else if n.Skips > 0 {
		text = fmt.Sprintf("%s (%d skipped)", n.Sym.Name, n.Skips)
	}
	ll = append(ll, pterm.LeveledListItem{Level: level, Text: text})
	for _, c := range n.Children {
		ll = leveled(c, ll, level+1)
	}
	return ll
}
