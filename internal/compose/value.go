// Package compose merges lint configurations from several sources into one
// deterministic effective configuration.
package compose

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Kind tags the shape of a Value.
type Kind int

const (
	// KindNull is an absent or explicit null value.
	KindNull Kind = iota
	// KindScalar is a string, number or boolean.
	KindScalar
	// KindSequence is an ordered list whose entries merge by concatenation.
	KindSequence
	// KindMapping is an ordered key/value table whose entries merge per key.
	KindMapping
	// KindRuleOptions is a rule's severity+options tuple. It is always
	// replaced wholly, never merged element-wise.
	KindRuleOptions
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindScalar:
		return "scalar"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	case KindRuleOptions:
		return "rule options"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is an immutable tagged configuration value. The zero Value is null.
type Value struct {
	kind   Kind
	scalar any
	items  []Value
	keys   []string
	fields map[string]Value
}

// Null returns the null value.
func Null() Value { return Value{} }

// Scalar wraps a string, bool or number. Integer types are normalized to
// float64 so values decoded from JSON and values built in Go compare equal.
func Scalar(v any) Value {
	switch n := v.(type) {
	case nil:
		return Value{}
	case int:
		return Value{kind: KindScalar, scalar: float64(n)}
	case int64:
		return Value{kind: KindScalar, scalar: float64(n)}
	case int32:
		return Value{kind: KindScalar, scalar: float64(n)}
	case float32:
		return Value{kind: KindScalar, scalar: float64(n)}
	case uint:
		return Value{kind: KindScalar, scalar: float64(n)}
	}
	return Value{kind: KindScalar, scalar: v}
}

// Sequence builds a sequence value.
func Sequence(items ...Value) Value {
	return Value{kind: KindSequence, items: append([]Value(nil), items...)}
}

// RuleOptions builds a severity+options tuple.
func RuleOptions(items ...Value) Value {
	return Value{kind: KindRuleOptions, items: append([]Value(nil), items...)}
}

// Mapping returns an empty mapping.
func Mapping() Value {
	return Value{kind: KindMapping, fields: map[string]Value{}}
}

// With returns a copy of the mapping v with key set to val. Keys keep their
// first insertion position.
func (v Value) With(key string, val Value) Value {
	out := Value{kind: KindMapping, fields: make(map[string]Value, len(v.fields)+1)}
	out.keys = append(out.keys, v.keys...)
	for k, f := range v.fields {
		out.fields[k] = f
	}
	if _, ok := out.fields[key]; !ok {
		out.keys = append(out.keys, key)
	}
	out.fields[key] = val
	return out
}

// Without returns a copy of the mapping v with the given keys removed.
func (v Value) Without(keys ...string) Value {
	drop := make(map[string]bool, len(keys))
	for _, k := range keys {
		drop[k] = true
	}
	out := Mapping()
	for _, k := range v.keys {
		if !drop[k] {
			out.keys = append(out.keys, k)
			out.fields[k] = v.fields[k]
		}
	}
	return out
}

// Kind reports the tag of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsContainer reports whether v is a mapping, sequence or rule tuple.
func (v Value) IsContainer() bool {
	return v.kind == KindMapping || v.kind == KindSequence || v.kind == KindRuleOptions
}

// Get returns the field stored under key in a mapping.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindMapping {
		return Value{}, false
	}
	f, ok := v.fields[key]
	return f, ok
}

// Keys returns the mapping keys in insertion order.
func (v Value) Keys() []string {
	return append([]string(nil), v.keys...)
}

// Items returns the entries of a sequence or rule tuple.
func (v Value) Items() []Value {
	return append([]Value(nil), v.items...)
}

// Len returns the number of entries or keys.
func (v Value) Len() int {
	if v.kind == KindMapping {
		return len(v.keys)
	}
	return len(v.items)
}

// Scalar returns the raw scalar.
func (v Value) Scalar() any { return v.scalar }

// Text returns the scalar as a string if it is one.
func (v Value) Text() (string, bool) {
	s, ok := v.scalar.(string)
	return s, ok && v.kind == KindScalar
}

// Strings flattens a scalar string or a sequence of strings. Other entries
// are ignored.
func (v Value) Strings() []string {
	if s, ok := v.Text(); ok {
		return []string{s}
	}
	var out []string
	for _, it := range v.items {
		if s, ok := it.Text(); ok {
			out = append(out, s)
		}
	}
	return out
}

// Equal reports deep equality. Mapping key order is not significant.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindScalar:
		return v.scalar == o.scalar
	case KindSequence, KindRuleOptions:
		if len(v.items) != len(o.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(o.items[i]) {
				return false
			}
		}
		return true
	case KindMapping:
		if len(v.fields) != len(o.fields) {
			return false
		}
		for k, f := range v.fields {
			g, ok := o.fields[k]
			if !ok || !f.Equal(g) {
				return false
			}
		}
		return true
	}
	return false
}

// Interface converts v back into plain Go values: map[string]any, []any,
// or the scalar itself.
func (v Value) Interface() any {
	switch v.kind {
	case KindScalar:
		return v.scalar
	case KindSequence, KindRuleOptions:
		out := make([]any, len(v.items))
		for i, it := range v.items {
			out[i] = it.Interface()
		}
		return out
	case KindMapping:
		out := make(map[string]any, len(v.fields))
		for k, f := range v.fields {
			out[k] = f.Interface()
		}
		return out
	}
	return nil
}

// FromAny tags a decoded JSON/YAML document. Sequences found directly under
// a "rules" mapping become rule tuples. Map keys are sorted so the result is
// deterministic.
func FromAny(doc any) Value {
	return fromAny(doc, false)
}

func fromAny(doc any, ruleTable bool) Value {
	switch d := doc.(type) {
	case nil:
		return Value{}
	case Value:
		return d
	case map[string]any:
		keys := make([]string, 0, len(d))
		for k := range d {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := Mapping()
		for _, k := range keys {
			out.keys = append(out.keys, k)
			if ruleTable {
				out.fields[k] = ruleEntry(d[k])
			} else {
				out.fields[k] = fromAny(d[k], k == keyRules)
			}
		}
		return out
	case map[any]any:
		m := make(map[string]any, len(d))
		for k, v := range d {
			m[fmt.Sprint(k)] = v
		}
		return fromAny(m, ruleTable)
	case []any:
		items := make([]Value, len(d))
		for i, it := range d {
			items[i] = fromAny(it, false)
		}
		return Value{kind: KindSequence, items: items}
	case []string:
		items := make([]Value, len(d))
		for i, it := range d {
			items[i] = Scalar(it)
		}
		return Value{kind: KindSequence, items: items}
	}
	return Scalar(doc)
}

// ruleEntry tags one entry of a rule table: a sequence is a rule tuple.
func ruleEntry(doc any) Value {
	v := fromAny(doc, false)
	if v.kind == KindSequence {
		v.kind = KindRuleOptions
	}
	return v
}

// MarshalYAML renders v as a yaml.v3 node tree preserving key order. Rule
// tuples are printed in flow style.
func (v Value) MarshalYAML() (any, error) {
	return v.node()
}

func (v Value) node() (*yaml.Node, error) {
	switch v.kind {
	case KindNull:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case KindScalar:
		n := &yaml.Node{}
		if err := n.Encode(v.scalar); err != nil {
			return nil, fmt.Errorf("encoding scalar %v: %w", v.scalar, err)
		}
		return n, nil
	case KindSequence, KindRuleOptions:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		if v.kind == KindRuleOptions {
			n.Style = yaml.FlowStyle
		}
		for _, it := range v.items {
			c, err := it.node()
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, c)
		}
		return n, nil
	case KindMapping:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range v.keys {
			c, err := v.fields[k].node()
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, c)
		}
		return n, nil
	}
	return nil, fmt.Errorf("unknown value kind %v", v.kind)
}
