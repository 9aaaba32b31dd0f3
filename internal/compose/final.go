package compose

import (
	"fmt"
	"path"
	"strings"

	"github.com/gobwas/glob"
)

// Table is an ecosystem-specific set of rule relaxations. It only applies
// when Plugin is present in the composed plugin set.
type Table struct {
	Plugin string
	Rules  Value
}

var reservedKeys = []string{keyPlugins, keyExtends, keyRules, keyOverrides, "files", "excludedFiles"}

type ruleLayer struct {
	rules      Value
	provenance Provenance
}

// ComposeFinal produces the effective configuration.
//
// The plugin set is the canonical union of the user and recommended
// plugins. Rules are layered, later wins per id and tuples are replaced
// wholly: ecosystem tables whose plugin is present, then recommended, then
// user, then explicit. Every nested overrides entry is recomposed on its
// own with the same explicit rules.
func ComposeFinal(user, recommended Value, tables []Table, explicit Value) (*Config, error) {
	if user.IsNull() {
		user = Mapping()
	}
	if recommended.IsNull() {
		recommended = Mapping()
	}
	if user.Kind() != KindMapping {
		return nil, &ConfigurationError{Path: "user", Reason: fmt.Sprintf("expected mapping, got %v", user.Kind())}
	}
	if recommended.Kind() != KindMapping {
		return nil, &ConfigurationError{Path: "recommended", Reason: fmt.Sprintf("expected mapping, got %v", recommended.Kind())}
	}
	explicit = explicitRules(explicit)
	if !explicit.IsNull() && explicit.Kind() != KindMapping {
		return nil, &ConfigurationError{Path: "explicit", Reason: fmt.Sprintf("expected mapping, got %v", explicit.Kind())}
	}

	plugins := NewPluginSet()
	plugins.AddConfig(user)
	plugins.AddConfig(recommended)

	doc, err := Compose(recommended, user, Combine)
	if err != nil {
		return nil, err
	}

	layers := tableLayers(plugins, tables)
	layers = append(layers,
		ruleLayer{rules: field(recommended, keyRules), provenance: ProvenanceBase},
		ruleLayer{rules: field(user, keyRules), provenance: ProvenanceBase},
		ruleLayer{rules: explicit, provenance: ProvenanceOverride},
	)

	return build(doc, plugins, layers, tables, explicit)
}

// explicitRules accepts either a bare rule table or a whole lint config,
// in which case only its rules apply.
func explicitRules(v Value) Value {
	if rules, ok := v.Get(keyRules); ok {
		return rules
	}
	return v
}

func composeOverride(entry Value, tables []Table, explicit Value) (*Config, error) {
	if entry.Kind() != KindMapping {
		return nil, &ConfigurationError{Path: keyOverrides, Reason: fmt.Sprintf("entry must be a mapping, got %v", entry.Kind())}
	}
	plugins := NewPluginSet()
	plugins.AddConfig(entry)

	layers := tableLayers(plugins, tables)
	layers = append(layers,
		ruleLayer{rules: field(entry, keyRules), provenance: ProvenanceBase},
		ruleLayer{rules: explicit, provenance: ProvenanceOverride},
	)
	cfg, err := build(entry, plugins, layers, tables, explicit)
	if err != nil {
		return nil, err
	}
	cfg.files = field(entry, "files").Strings()
	cfg.excludedFiles = field(entry, "excludedFiles").Strings()
	return cfg, nil
}

func tableLayers(plugins *PluginSet, tables []Table) []ruleLayer {
	var layers []ruleLayer
	for _, t := range tables {
		if plugins.Has(t.Plugin) {
			layers = append(layers, ruleLayer{rules: t.Rules, provenance: ProvenancePlugin})
		}
	}
	return layers
}

func build(doc Value, plugins *PluginSet, layers []ruleLayer, tables []Table, explicit Value) (*Config, error) {
	cfg := &Config{
		plugins:  plugins.Names(),
		extends:  field(doc, keyExtends).Strings(),
		rules:    map[string]RuleSpec{},
		settings: doc.Without(reservedKeys...),
	}

	for _, layer := range layers {
		if layer.rules.IsNull() {
			continue
		}
		if layer.rules.Kind() != KindMapping {
			return nil, &ConfigurationError{Path: keyRules, Reason: fmt.Sprintf("expected mapping, got %v", layer.rules.Kind())}
		}
		for _, id := range layer.rules.Keys() {
			v, _ := layer.rules.Get(id)
			spec, err := ParseRuleSpec(id, v, layer.provenance)
			if err != nil {
				return nil, err
			}
			cfg.rules[id] = spec
		}
	}

	for i, entry := range field(doc, keyOverrides).Items() {
		o, err := composeOverride(entry, tables, explicit)
		if err != nil {
			return nil, fmt.Errorf("overrides[%d]: %w", i, err)
		}
		cfg.overrides = append(cfg.overrides, o)
	}
	return cfg, nil
}

func field(v Value, key string) Value {
	f, _ := v.Get(key)
	return f
}

// ForFile resolves the rule table that applies to filename, which should
// be relative to the config's base folder. Matching overrides apply in
// order, later wins.
func (c *Config) ForFile(filename string) (map[string]RuleSpec, error) {
	filename = strings.TrimPrefix(path.Clean(strings.ReplaceAll(filename, `\`, "/")), "./")
	out := c.Rules()
	for _, o := range c.overrides {
		ok, err := o.matches(filename)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		nested, err := o.ForFile(filename)
		if err != nil {
			return nil, err
		}
		for id, spec := range nested {
			out[id] = spec
		}
	}
	return out, nil
}

func (c *Config) matches(filename string) (bool, error) {
	if len(c.files) > 0 {
		hit, err := matchAny(c.files, filename)
		if err != nil || !hit {
			return false, err
		}
	}
	excluded, err := matchAny(c.excludedFiles, filename)
	if err != nil {
		return false, err
	}
	return !excluded, nil
}

// matchAny applies glob patterns the way lint overrides do: patterns
// without a slash match the base name, and "/**/" also matches a single
// separator.
func matchAny(patterns []string, filename string) (bool, error) {
	for _, p := range patterns {
		target := filename
		if !strings.Contains(p, "/") {
			target = path.Base(filename)
		}
		p = strings.TrimPrefix(p, "./")
		candidates := []string{p}
		if strings.Contains(p, "/**/") {
			candidates = append(candidates, strings.ReplaceAll(p, "/**/", "/"))
		}
		if strings.HasPrefix(p, "**/") {
			candidates = append(candidates, strings.TrimPrefix(p, "**/"))
		}
		for _, cand := range candidates {
			g, err := glob.Compile(cand, '/')
			if err != nil {
				return false, &ConfigurationError{Path: "files", Reason: fmt.Sprintf("invalid glob %q: %v", p, err)}
			}
			if g.Match(target) {
				return true, nil
			}
		}
	}
	return false, nil
}
