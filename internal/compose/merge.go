package compose

import (
	"errors"
	"fmt"
)

// ArrayMode controls how plain sequences combine.
type ArrayMode int

const (
	// Concat appends the later sequence to the earlier one.
	Concat ArrayMode = iota
	// Combine appends and drops entries already present.
	Combine
)

// ErrInvalidInput is wrapped by every ConfigurationError.
var ErrInvalidInput = errors.New("invalid configuration input")

// ConfigurationError reports malformed composition input.
type ConfigurationError struct {
	Path   string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("configuration: %s", e.Reason)
	}
	return fmt.Sprintf("configuration %s: %s", e.Path, e.Reason)
}

// Unwrap lets callers match with errors.Is(err, ErrInvalidInput).
func (e *ConfigurationError) Unwrap() error { return ErrInvalidInput }

// Keys with dedicated merge behavior.
const (
	keyOverrides = "overrides"
	keyPlugins   = "plugins"
	keyExtends   = "extends"
	keyRules     = "rules"
)

// opaqueKeys hold mappings that are replaced wholly rather than merged.
var opaqueKeys = map[string]bool{
	"exported":   true,
	"astGlobals": true,
}

// Compose merges addition over base. Both must be mappings or sequences;
// a null base is treated as empty.
//
// Scalars: the later value wins. Mappings: merged per key. Rule tuples:
// replaced wholly. Sequences: concatenated, deduplicated when mode is
// Combine (plugins and extends always combine). The overrides field is
// always concatenated.
func Compose(base, addition Value, mode ArrayMode) (Value, error) {
	if !base.IsNull() && base.kind != KindMapping && base.kind != KindSequence {
		return Value{}, &ConfigurationError{Reason: fmt.Sprintf("base must be a mapping or sequence, got %v", base.kind)}
	}
	if addition.kind != KindMapping && addition.kind != KindSequence {
		return Value{}, &ConfigurationError{Reason: fmt.Sprintf("addition must be a mapping or sequence, got %v", addition.kind)}
	}
	if !base.IsNull() && base.kind != addition.kind {
		return Value{}, &ConfigurationError{
			Reason: fmt.Sprintf("cannot compose %v with %v", base.kind, addition.kind),
		}
	}
	if base.IsNull() {
		base = Value{kind: addition.kind, fields: map[string]Value{}}
	}
	return merge(base, addition, mode), nil
}

// ComposeAll folds sources left to right.
func ComposeAll(mode ArrayMode, sources ...Value) (Value, error) {
	result := Mapping()
	for i, src := range sources {
		if src.IsNull() {
			continue
		}
		next, err := Compose(result, src, mode)
		if err != nil {
			return Value{}, fmt.Errorf("source %d: %w", i, err)
		}
		result = next
	}
	return result, nil
}

func merge(a, b Value, mode ArrayMode) Value {
	switch {
	case b.kind == KindRuleOptions:
		return b
	case a.kind == KindMapping && b.kind == KindMapping:
		return mergeMappings(a, b, mode)
	case a.kind == KindNull && b.kind == KindMapping:
		return mergeMappings(Mapping(), b, mode)
	case b.kind == KindSequence:
		return mergeSequences(a, b, mode == Combine)
	case a.kind == KindSequence && b.kind == KindScalar:
		return mergeSequences(a, Sequence(b), mode == Combine)
	}
	return b
}

func mergeMappings(a, b Value, mode ArrayMode) Value {
	out := Value{kind: KindMapping, fields: make(map[string]Value, len(a.fields)+len(b.fields))}
	out.keys = append(out.keys, a.keys...)
	for k, f := range a.fields {
		out.fields[k] = f
	}

	for _, key := range b.keys {
		src := b.fields[key]
		prev, had := a.fields[key]
		if !had {
			out.keys = append(out.keys, key)
		}

		switch {
		case key == keyOverrides:
			out.fields[key] = concat(prev, src)
		case opaqueKeys[key]:
			out.fields[key] = src
		case key == keyPlugins || key == keyExtends:
			out.fields[key] = mergeSequences(prev, src, true)
		default:
			out.fields[key] = merge(prev, src, mode)
		}
	}
	return out
}

// mergeSequences appends b to a. Non-sequence operands count as a single
// entry; null counts as empty.
func mergeSequences(a, b Value, dedupe bool) Value {
	out := Value{kind: KindSequence}
	add := func(e Value) {
		if dedupe && contains(out.items, e) {
			return
		}
		out.items = append(out.items, e)
	}
	for _, e := range entries(a) {
		add(e)
	}
	for _, e := range entries(b) {
		add(e)
	}
	return out
}

func concat(a, b Value) Value {
	return mergeSequences(a, b, false)
}

func entries(v Value) []Value {
	switch v.kind {
	case KindNull:
		return nil
	case KindSequence:
		return v.items
	}
	return []Value{v}
}

func contains(items []Value, e Value) bool {
	for _, it := range items {
		if it.Equal(e) {
			return true
		}
	}
	return false
}
