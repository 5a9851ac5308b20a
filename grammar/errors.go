package grammar

// GrammarError reports a problem discovered while defining or compiling a
// grammar: duplicate names, an unset goal, a definition unreachable from
// the goal, a Regex pattern that does not compile, conflicting WithAction
// registrations on one element, invalid Repeat bounds, or an empty
// Literal/StringSet phrase. A grammar whose compilation reported a
// GrammarError is unusable.
type GrammarError struct {
	Reason string
	Symbol string // optional: the symbol/element name implicated, if any
}

func (e *GrammarError) Error() string {
	if e.Symbol != "" {
		return "grammar: " + e.Reason + " (" + e.Symbol + ")"
	}
	return "grammar: " + e.Reason
}
