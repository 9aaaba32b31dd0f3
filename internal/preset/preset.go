// Package preset ships the recommended configuration and the per-ecosystem
// rule relaxation tables.
package preset

import (
	"embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/donaldgifford/fixfmt/internal/compose"
)

// PluginName is the canonical identity of this plugin.
const PluginName = "fixfmt"

//go:embed data/*.yaml
var data embed.FS

var (
	recommended = sync.OnceValues(loadRecommended)
	tables      = sync.OnceValues(loadTables)
)

// Recommended returns the recommended preset: the core stylistic rules that
// conflict with the formatter turned off, overlaid with this plugin's own
// rule choices.
func Recommended() (compose.Value, error) {
	return recommended()
}

// Tables returns the ecosystem relaxation tables.
func Tables() ([]compose.Table, error) {
	return tables()
}

// Compose composes a user config with the recommended preset, the
// ecosystem tables and explicit overrides.
func Compose(user, explicit compose.Value) (*compose.Config, error) {
	rec, err := Recommended()
	if err != nil {
		return nil, err
	}
	tbl, err := Tables()
	if err != nil {
		return nil, err
	}
	return compose.ComposeFinal(user, rec, tbl, explicit)
}

func loadRecommended() (compose.Value, error) {
	coreData, err := data.ReadFile("data/core.yaml")
	if err != nil {
		return compose.Value{}, err
	}
	var core map[string]any
	if err := yaml.Unmarshal(coreData, &core); err != nil {
		return compose.Value{}, fmt.Errorf("parsing core preset: %w", err)
	}

	own, err := data.ReadFile("data/recommended.yaml")
	if err != nil {
		return compose.Value{}, err
	}
	ownValue, err := compose.Parse("recommended.yaml", own)
	if err != nil {
		return compose.Value{}, fmt.Errorf("parsing recommended preset: %w", err)
	}

	return compose.ComposeAll(compose.Combine,
		compose.FromAny(map[string]any{"rules": core}),
		ownValue,
	)
}

type tableEntry struct {
	Plugin string         `yaml:"plugin"`
	Rules  map[string]any `yaml:"rules"`
}

func loadTables() ([]compose.Table, error) {
	raw, err := data.ReadFile("data/ecosystems.yaml")
	if err != nil {
		return nil, err
	}
	var entries []tableEntry
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parsing ecosystem tables: %w", err)
	}

	out := make([]compose.Table, 0, len(entries))
	for _, e := range entries {
		wrapped := compose.FromAny(map[string]any{"rules": e.Rules})
		rules, _ := wrapped.Get("rules")
		out = append(out, compose.Table{Plugin: e.Plugin, Rules: rules})
	}
	return out, nil
}
