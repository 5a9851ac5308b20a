package engine

import (
	"fmt"

	"github.com/cnf/structhash"
	"github.com/robustparse/chartparse/grammar"
)

// Item is an Earley item: a production together with a dot position
// marking how much of its right-hand side has been recognized, and the
// chart position at which that recognition began. The Skips counter lets
// the tree reconstruction pass prefer derivations that skipped fewer
// unrecognized tokens.
type Item struct {
	Prod   *grammar.Production
	Dot    int
	Origin int
	Skips  int
}

// StartItem returns the dot-at-zero item for p, originating at pos.
func StartItem(p *grammar.Production, pos int) Item {
	return Item{Prod: p, Dot: 0, Origin: pos}
}

// PeekSymbol returns the symbol immediately after the dot, or nil if the
// dot has reached the end of the production's right-hand side.
func (it Item) PeekSymbol() *grammar.Symbol {
	if it.Dot >= len(it.Prod.RHS) {
		return nil
	}
	return it.Prod.RHS[it.Dot]
}

// AtEnd reports whether the dot has reached the end of the RHS, i.e.
// whether this item represents a completed recognition of it.Prod.LHS.
func (it Item) AtEnd() bool { return it.Dot >= len(it.Prod.RHS) }

// Advance returns a copy of it with the dot moved one symbol to the
// right.
func (it Item) Advance() Item {
	it.Dot++
	return it
}

// WithSkip returns a copy of it with its skip counter incremented,
// representing "the token at the current position was skipped over
// without advancing the dot".
func (it Item) WithSkip() Item {
	it.Skips++
	return it
}

type itemKey = string

// key hashes the (production, dot, origin) identity of it: structural
// hashing rather than a bespoke comparable struct, so identity changes
// here never silently drift from what Add/Len actually dedup on.
func (it Item) key() itemKey {
	h, err := structhash.Hash(struct {
		Prod   int
		Dot    int
		Origin int
	}{Prod: it.Prod.Serial, Dot: it.Dot, Origin: it.Origin}, 1)
	if err != nil {
		panic(err)
	}
	return h
}

func (it Item) String() string {
	rhs := it.Prod.RHS
	s := it.Prod.LHS.Name + " →"
	for i, sym := range rhs {
		if i == it.Dot {
			s += " •"
		}
		s += " " + sym.Name
	}
	if it.Dot == len(rhs) {
		s += " •"
	}
	return fmt.Sprintf("[%s, %d]", s, it.Origin)
}
