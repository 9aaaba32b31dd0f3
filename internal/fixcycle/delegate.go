package fixcycle

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/go-viper/mapstructure/v2"

	"github.com/donaldgifford/fixfmt/internal/compose"
	"github.com/donaldgifford/fixfmt/internal/host"
	"github.com/donaldgifford/fixfmt/internal/rules"
)

// RuleID is the published id of the delegate rule.
const RuleID = "fixfmt/prettier"

// Settings are the delegate rule's options.
type Settings struct {
	// PrettifyManifest sorts package.json before formatting.
	PrettifyManifest bool `mapstructure:"prettify-manifest"`
	// Rules maps sub-rule ids to their severity or severity+options.
	Rules map[string]any `mapstructure:"rules"`
}

// DefaultSettings returns the settings used when the rule has no options.
func DefaultSettings() Settings {
	return Settings{PrettifyManifest: true}
}

// DecodeSettings reads the first rule option.
func DecodeSettings(options []compose.Value) (Settings, error) {
	s := DefaultSettings()
	if len(options) == 0 || options[0].IsNull() {
		return s, nil
	}
	if options[0].Kind() != compose.KindMapping {
		return s, &compose.ConfigurationError{
			Path:   "rules." + RuleID,
			Reason: fmt.Sprintf("settings must be a mapping, got %v", options[0].Kind()),
		}
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &s,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return s, err
	}
	if err := dec.Decode(options[0].Interface()); err != nil {
		return s, &compose.ConfigurationError{Path: "rules." + RuleID, Reason: err.Error()}
	}
	return s, nil
}

// SubRules returns the enabled sub-rules in id order.
func (s Settings) SubRules() ([]compose.RuleSpec, error) {
	if len(s.Rules) == 0 {
		return nil, nil
	}
	table := compose.FromAny(map[string]any{"rules": s.Rules})
	rulesValue, _ := table.Get("rules")

	ids := rulesValue.Keys()
	sort.Strings(ids)
	var out []compose.RuleSpec
	for _, id := range ids {
		v, _ := rulesValue.Get(id)
		spec, err := compose.ParseRuleSpec(id, v, compose.ProvenanceBase)
		if err != nil {
			return nil, err
		}
		if spec.Enabled() {
			out = append(out, spec)
		}
	}
	return out, nil
}

// delegate is the rule through which a lint config opts into formatting.
type delegate struct {
	ic *Interceptor
}

// Delegate returns the delegate rule bound to this interceptor.
func (i *Interceptor) Delegate() host.Rule { return &delegate{ic: i} }

// Register adds the delegate rule to r under RuleID.
func (i *Interceptor) Register(r *rules.Registry) {
	r.RegisterRule(RuleID, i.Delegate())
}

// Create implements host.Rule. The first activation in the live frame
// captures the rule id and settings; later ones are inert. With sub-rules
// configured, their listeners are chained and returned.
func (d *delegate) Create(ctx *host.RuleContext) host.Listeners {
	listeners := host.Listeners{}

	f := d.ic.stack.top()
	if f == nil || f.sentinel || f.ruleID != "" {
		return listeners
	}

	settings, err := DecodeSettings(ctx.Options)
	if err != nil {
		f.fail(err)
		return listeners
	}
	f.capture(ctx.ID, settings)
	d.ic.log.Debug().Stringer("frame", f.id).Str("rule", ctx.ID).Msg("delegate captured frame")

	if filepath.Ext(f.filename) == ".json" {
		return listeners
	}

	subRules, err := settings.SubRules()
	if err != nil {
		f.fail(err)
		return listeners
	}
	for _, spec := range subRules {
		rule, err := d.ic.registry.Resolve(spec.ID)
		if err != nil {
			f.fail(err)
			return host.Listeners{}
		}
		sub := &host.RuleContext{
			ID:       spec.ID,
			Options:  spec.Options,
			Filename: ctx.Filename,
			Report:   ctx.Report,
		}
		chain(listeners, rule.Create(sub))
	}
	return listeners
}

// chain merges add into into. Handlers for the same event run in the order
// they were added.
func chain(into, add host.Listeners) {
	for event, next := range add {
		if next == nil {
			continue
		}
		prev, ok := into[event]
		if !ok {
			into[event] = next
			continue
		}
		into[event] = func(n host.Node) {
			prev(n)
			next(n)
		}
	}
}
