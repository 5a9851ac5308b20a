package result

// Value is the flattened representation built from a reconstructed parse
// tree. A Scalar holds the raw matched text of a terminal (or whatever a
// terminal's Action explicitly Set); a List holds the successive matches
// of a Repeat element in source order; a Mapping holds one entry per
// named child, the way a composite element's children are gathered when
// nothing overrides them with a custom Action.
//
// Exactly one of Scalar, List or Mapping is meaningful at a time; check
// Kind first, the same way a type switch over an interface{} would, but
// without forcing callers to import reflect.
type Value struct {
	Kind    ValueKind
	Scalar  string
	List    []*Value
	Mapping map[string]*Value
	Raw     interface{} // populated only for KindCustom, see toValue
}

// ValueKind tags which field of a Value is populated.
type ValueKind int8

const (
	KindScalar ValueKind = iota
	KindList
	KindMapping
	// KindCustom holds whatever an Action explicitly passed to Set that
	// wasn't itself a string, []*Value, map[string]*Value or *Value —
	// e.g. a parsed int or a caller-defined struct. Raw holds it verbatim.
	KindCustom
)

func scalar(s string) *Value { return &Value{Kind: KindScalar, Scalar: s} }

func list(items []*Value) *Value { return &Value{Kind: KindList, List: items} }

func mapping(m map[string]*Value) *Value { return &Value{Kind: KindMapping, Mapping: m} }

// toValue normalizes whatever an Action passed to Handle.Set into a
// *Value, so that list/mapping flattening upstream can keep treating
// every node's contribution uniformly.
func toValue(v interface{}) *Value {
	switch t := v.(type) {
	case *Value:
		return t
	case string:
		return scalar(t)
	case []*Value:
		return list(t)
	case map[string]*Value:
		return mapping(t)
	default:
		return &Value{Kind: KindCustom, Raw: v}
	}
}

// Interface returns the Go value most naturally corresponding to v's
// Kind: a string for KindScalar, []interface{} for KindList, a
// map[string]interface{} for KindMapping, or Raw verbatim for
// KindCustom.
func (v *Value) Interface() interface{} {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case KindScalar:
		return v.Scalar
	case KindList:
		out := make([]interface{}, len(v.List))
		for i, e := range v.List {
			out[i] = e.Interface()
		}
		return out
	case KindMapping:
		out := make(map[string]interface{}, len(v.Mapping))
		for k, e := range v.Mapping {
			out[k] = e.Interface()
		}
		return out
	default:
		return v.Raw
	}
}

// Get looks up a named entry of a Mapping value, returning nil if v is
// not a Mapping or has no such entry — a convenience for callers walking
// a result without a custom Action to shape it.
func (v *Value) Get(name string) *Value {
	if v == nil || v.Kind != KindMapping {
		return nil
	}
	return v.Mapping[name]
}

// String returns v's Scalar, or "" if v is not a Scalar.
func (v *Value) String() string {
	if v == nil || v.Kind != KindScalar {
		return ""
	}
	return v.Scalar
}
