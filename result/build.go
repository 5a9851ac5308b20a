package result

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
	"github.com/robustparse/chartparse/grammar"
	"github.com/robustparse/chartparse/tree"
)

// tracer traces with key 'chartparse.result'.
func tracer() tracing.Trace {
	return tracing.Select("chartparse.result")
}

// CallbackError wraps a panic recovered from a result Action: a
// misbehaving callback aborts the result build without taking down the
// caller the way an unrecovered panic would.
type CallbackError struct {
	Symbol string
	Cause  interface{}
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("result: action for %q panicked: %v", e.Symbol, e.Cause)
}

// Build flattens root, a tree reconstructed by package tree, into a
// *Value and runs every element's result Action along the way,
// post-order. src is the same token source the parse ran against, used
// to hand each composite node's Action the raw text of its full span.
//
// If any Action panics, Build recovers it and returns a *CallbackError;
// the caller's tree is unaffected (Build never mutates root).
func Build(src grammar.TokenSource, root *tree.Node) (val *Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			if ce, ok := r.(*CallbackError); ok {
				err = ce
				return
			}
			panic(r)
		}
	}()
	val, _ = buildNode(src, root)
	return val, nil
}

// buildNode returns the value node itself contributes (post-Action) and
// the named bindings it exposes for a merge into an anonymous parent's
// own mapping. Only the second is meaningful when the caller intends to
// flatten node's contribution into its own scope; both are always
// computed since a node cannot know in advance whether its parent will
// use it by name or promote it.
func buildNode(src grammar.TokenSource, n *tree.Node) (*Value, map[string]*Value) {
	if n.IsTerminal() {
		return buildTerminal(src, n)
	}
	elem := n.Sym.Element()
	if grammar.IsRepeat(elem) && isListShape(elem) {
		return buildListRepeat(src, n, elem)
	}
	return buildComposite(src, n)
}

func buildTerminal(src grammar.TokenSource, n *tree.Node) (*Value, map[string]*Value) {
	v := scalar(n.Text)
	if act := actionFor(n); act != nil {
		v = runAction(n, act, nil, n.Text, v)
	}
	return v, nil
}

// buildComposite handles every non-list-shape nonterminal: plain And/Or
// productions, and Optional/single-occurrence Repeat lowerings, all of
// which place exactly the matched symbols directly in the production's
// RHS (no tail unrolling), so the generic "one mapping entry per named
// child, promote anonymous children's bindings" algorithm applies
// uniformly.
func buildComposite(src grammar.TokenSource, n *tree.Node) (*Value, map[string]*Value) {
	bindings := map[string]*Value{}
	var soleVal *Value
	for i, c := range n.Children {
		childVal, childBindings := buildNode(src, c)
		if i == 0 {
			soleVal = childVal
		}
		mergeOrBind(bindings, c, childVal, childBindings)
	}
	var v *Value
	switch {
	case !n.Sym.Named && len(n.Children) == 1:
		// An anonymous single-child wrapper contributes no level of its
		// own; its child's value passes through unchanged.
		v = soleVal
	case len(bindings) == 0:
		// A composite whose children bound nothing by name (all
		// terminals or anonymous leaves, e.g. times → 'twice')
		// contributes its matched text, the same way a plain terminal
		// would — an empty mapping would tell the caller nothing.
		v = scalar(text(src, n))
	default:
		v = mapping(bindings)
	}
	if act := actionFor(n); act != nil {
		v = runAction(n, act, bindings, text(src, n), v)
	}
	return v, bindings
}

// buildListRepeat handles a genuine repetition (OneOrMore, ZeroOrMore,
// or a bounded Repeat whose max allows more than one occurrence): its
// value is always a list of its occurrences' own values, in source
// order, regardless of whether this node itself is named.
func buildListRepeat(src grammar.TokenSource, n *tree.Node, repeatElem grammar.Element) (*Value, map[string]*Value) {
	bodyElem := grammar.RepeatBody(repeatElem)
	occNodes := collectOccurrences(n, bodyElem)
	items := make([]*Value, 0, len(occNodes))
	var bodyName string
	haveBodyName := false
	for _, occ := range occNodes {
		occVal, _ := buildNode(src, occ)
		items = append(items, occVal)
		if occ.Sym.Named {
			bodyName, haveBodyName = occ.Sym.Name, true
		}
	}
	v := list(items)
	if act := actionFor(n); act != nil {
		v = runAction(n, act, nil, text(src, n), v)
	}
	var bindings map[string]*Value
	if haveBodyName {
		bindings = map[string]*Value{bodyName: v}
	}
	return v, bindings
}

// collectOccurrences walks an unbounded/bounded Repeat node's children,
// recognizing direct occurrences of bodyElem and recursing into the
// left-recursive "#tail" nonterminal compile.go generates for unbounded
// repeats, to recover the flat, source-ordered occurrence list. Bounded
// repeats place every occurrence directly in the RHS, so the recursive
// case never triggers for them.
func collectOccurrences(n *tree.Node, bodyElem grammar.Element) []*tree.Node {
	var out []*tree.Node
	for _, c := range n.Children {
		if c.Sym.Element() == bodyElem {
			out = append(out, c)
			continue
		}
		out = append(out, collectOccurrences(c, bodyElem)...)
	}
	return out
}

// isListShape reports whether repeatElem should flatten into a Value
// list (true repetition) as opposed to a single pass-through value
// (Optional, or a degenerate exactly-one Repeat).
func isListShape(repeatElem grammar.Element) bool {
	_, max := grammar.RepeatBounds(repeatElem)
	return max != 1
}

// mergeOrBind folds one child's contribution into a parent's local
// mapping: a named child is bound under its own name (a name occurring
// more than once among the children, as in And(x, x), collapses into a
// list); an anonymous child's own bindings are promoted into the
// parent's scope, unless doing so would collide with an existing key,
// in which case the whole child mapping is kept nested under the
// child's synthetic name instead of silently overwriting.
func mergeOrBind(dst map[string]*Value, child *tree.Node, childVal *Value, childBindings map[string]*Value) {
	if child.Sym.Named {
		addBinding(dst, child.Sym.Name, childVal)
		return
	}
	collides := false
	for k := range childBindings {
		if _, exists := dst[k]; exists {
			collides = true
			break
		}
	}
	if collides {
		dst[child.Sym.Name] = childVal
		return
	}
	for k, v := range childBindings {
		dst[k] = v
	}
}

func addBinding(dst map[string]*Value, name string, v *Value) {
	existing, ok := dst[name]
	if !ok {
		dst[name] = v
		return
	}
	if existing.Kind == KindList {
		existing.List = append(existing.List, v)
		return
	}
	dst[name] = list([]*Value{existing, v})
}

func actionFor(n *tree.Node) grammar.Action {
	return grammar.ActionOf(n.Sym.Element())
}

func text(src grammar.TokenSource, n *tree.Node) string {
	return src.JoinedText(n.From, n.To-n.From)
}

func runAction(n *tree.Node, act grammar.Action, scope map[string]*Value, text string, def *Value) *Value {
	h := newHandle(scope, text)
	func() {
		defer func() {
			if r := recover(); r != nil {
				tracer().Errorf("result: action for %q panicked: %v", n.Sym.Name, r)
				panic(&CallbackError{Symbol: n.Sym.Name, Cause: r})
			}
		}()
		act(h)
	}()
	if h.set {
		return toValue(h.value)
	}
	return def
}
