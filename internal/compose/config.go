package compose

import (
	"fmt"
	"sort"
	"strings"
)

// Severity is a rule's reporting level.
type Severity int

const (
	SeverityOff Severity = iota
	SeverityWarn
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityOff:
		return "off"
	case SeverityWarn:
		return "warn"
	case SeverityError:
		return "error"
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// ParseSeverity accepts 0/1/2 and "off"/"warn"/"error".
func ParseSeverity(v Value) (Severity, error) {
	switch s := v.Scalar().(type) {
	case float64:
		if s == 0 || s == 1 || s == 2 {
			return Severity(int(s)), nil
		}
	case string:
		switch strings.ToLower(s) {
		case "off", "0":
			return SeverityOff, nil
		case "warn", "1":
			return SeverityWarn, nil
		case "error", "2":
			return SeverityError, nil
		}
	}
	return SeverityOff, &ConfigurationError{Reason: fmt.Sprintf("invalid severity %v", v.Interface())}
}

// Provenance records which kind of source last set a rule.
type Provenance int

const (
	// ProvenanceBase is a recommended preset or user config.
	ProvenanceBase Provenance = iota
	// ProvenanceOverride is an explicit override supplied by the integrator.
	ProvenanceOverride
	// ProvenancePlugin is an ecosystem relaxation table.
	ProvenancePlugin
)

func (p Provenance) String() string {
	switch p {
	case ProvenanceBase:
		return "base"
	case ProvenanceOverride:
		return "override"
	case ProvenancePlugin:
		return "plugin"
	}
	return fmt.Sprintf("Provenance(%d)", int(p))
}

// RuleSpec is one entry of a composed rule table.
type RuleSpec struct {
	ID         string
	Severity   Severity
	Options    []Value
	Provenance Provenance
}

// ParseRuleSpec reads a severity scalar or severity+options tuple.
func ParseRuleSpec(id string, v Value, p Provenance) (RuleSpec, error) {
	spec := RuleSpec{ID: id, Provenance: p}
	switch v.Kind() {
	case KindScalar:
		sev, err := ParseSeverity(v)
		if err != nil {
			return spec, fmt.Errorf("rule %s: %w", id, err)
		}
		spec.Severity = sev
		return spec, nil
	case KindRuleOptions, KindSequence:
		items := v.Items()
		if len(items) == 0 {
			return spec, &ConfigurationError{Path: "rules." + id, Reason: "empty rule tuple"}
		}
		sev, err := ParseSeverity(items[0])
		if err != nil {
			return spec, fmt.Errorf("rule %s: %w", id, err)
		}
		spec.Severity = sev
		spec.Options = items[1:]
		return spec, nil
	}
	return spec, &ConfigurationError{Path: "rules." + id, Reason: fmt.Sprintf("unexpected %v", v.Kind())}
}

// Enabled reports whether the rule reports anything.
func (r RuleSpec) Enabled() bool { return r.Severity != SeverityOff }

// Tuple renders the rule back into its severity+options form.
func (r RuleSpec) Tuple() Value {
	if len(r.Options) == 0 {
		return Scalar(r.Severity.String())
	}
	return RuleOptions(append([]Value{Scalar(r.Severity.String())}, r.Options...)...)
}

// OptionValues returns the rule options as plain Go values.
func (r RuleSpec) OptionValues() []any {
	out := make([]any, len(r.Options))
	for i, o := range r.Options {
		out[i] = o.Interface()
	}
	return out
}

// Config is a composed configuration. It is never modified after
// composition; accessors return copies.
type Config struct {
	files         []string
	excludedFiles []string
	plugins       []string
	extends       []string
	rules         map[string]RuleSpec
	overrides     []*Config
	settings      Value
}

// Files returns the glob scope of an override entry. Empty at top level.
func (c *Config) Files() []string { return append([]string(nil), c.files...) }

// ExcludedFiles returns the globs excluded from an override entry.
func (c *Config) ExcludedFiles() []string { return append([]string(nil), c.excludedFiles...) }

// Plugins returns the canonical plugin identities.
func (c *Config) Plugins() []string { return append([]string(nil), c.plugins...) }

// Extends returns the extends chain.
func (c *Config) Extends() []string { return append([]string(nil), c.extends...) }

// Overrides returns the nested glob-scoped configurations in order.
func (c *Config) Overrides() []*Config { return append([]*Config(nil), c.overrides...) }

// Settings returns every top-level field that is not plugins, extends,
// rules, overrides or file scoping.
func (c *Config) Settings() Value { return c.settings }

// HasPlugin reports whether any spelling of name is a composed plugin.
func (c *Config) HasPlugin(name string) bool {
	return NewPluginSet(c.plugins...).Has(name)
}

// Rule returns the spec for id.
func (c *Config) Rule(id string) (RuleSpec, bool) {
	r, ok := c.rules[id]
	return r, ok
}

// Rules returns a copy of the rule table.
func (c *Config) Rules() map[string]RuleSpec {
	out := make(map[string]RuleSpec, len(c.rules))
	for k, v := range c.rules {
		out[k] = v
	}
	return out
}

// RuleIDs returns the rule ids in sorted order.
func (c *Config) RuleIDs() []string {
	ids := make([]string, 0, len(c.rules))
	for id := range c.rules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Value renders the config back into a mapping suitable for printing or
// for handing to a host engine.
func (c *Config) Value() Value {
	out := Mapping()
	if len(c.files) > 0 {
		out = out.With("files", stringSeq(c.files))
	}
	if len(c.excludedFiles) > 0 {
		out = out.With("excludedFiles", stringSeq(c.excludedFiles))
	}
	if len(c.extends) > 0 {
		out = out.With(keyExtends, stringSeq(c.extends))
	}
	if len(c.plugins) > 0 {
		out = out.With(keyPlugins, stringSeq(c.plugins))
	}
	for _, k := range c.settings.Keys() {
		f, _ := c.settings.Get(k)
		out = out.With(k, f)
	}
	rules := Mapping()
	for _, id := range c.RuleIDs() {
		rules = rules.With(id, c.rules[id].Tuple())
	}
	out = out.With(keyRules, rules)
	if len(c.overrides) > 0 {
		items := make([]Value, len(c.overrides))
		for i, o := range c.overrides {
			items[i] = o.Value()
		}
		out = out.With(keyOverrides, Sequence(items...))
	}
	return out
}

func stringSeq(ss []string) Value {
	items := make([]Value, len(ss))
	for i, s := range ss {
		items[i] = Scalar(s)
	}
	return Sequence(items...)
}
