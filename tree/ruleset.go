package tree

import "github.com/robustparse/chartparse/grammar"

// ruleset remembers which productions have already been tried for the
// current span during ambiguity resolution, preventing the backward
// walk from looping forever between equally-ranked alternatives that
// refer back to each other.
type ruleset map[*grammar.Production]struct{}

func (set ruleset) add(p *grammar.Production) ruleset {
	if set == nil {
		set = ruleset{}
	}
	set[p] = struct{}{}
	return set
}

func (set ruleset) contains(p *grammar.Production) bool {
	if set == nil || p == nil {
		return false
	}
	_, ok := set[p]
	return ok
}

// carryOrReset: the "already tried" set only applies while resolving
// alternatives for the exact same span; once the walk moves to a
// strictly smaller span, past tries no longer apply.
func carryOrReset(pos, end int, set ruleset) ruleset {
	if pos == end {
		return set
	}
	return ruleset{}
}
