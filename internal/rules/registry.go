// Package rules resolves lint rules by id, either from explicit
// registrations or lazily through a Locator.
package rules

import (
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/donaldgifford/fixfmt/internal/host"
)

// Loader produces a rule on first use.
type Loader func() (host.Rule, error)

// Locator finds rules installed alongside the host. Package is empty for
// the host's own core rules.
type Locator interface {
	Locate(pkg, rule string) (host.Rule, error)
}

// LocatorFunc adapts a plain function to Locator.
type LocatorFunc func(pkg, rule string) (host.Rule, error)

// Locate calls f.
func (f LocatorFunc) Locate(pkg, rule string) (host.Rule, error) { return f(pkg, rule) }

// PluginResolutionError reports a rule id that no registration or locator
// could satisfy.
type PluginResolutionError struct {
	ID      string
	Package string
	Err     error
}

func (e *PluginResolutionError) Error() string {
	msg := "unresolved rule " + e.ID
	if e.Package != "" {
		msg += " (package " + e.Package + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *PluginResolutionError) Unwrap() error { return e.Err }

// Registry maps canonical rule ids to loaders. Resolved rules are cached
// for the registry's lifetime.
type Registry struct {
	mu      sync.Mutex
	loaders map[string]Loader
	cache   map[string]host.Rule
	locator Locator
	log     zerolog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLocator sets the fallback used for ids without a registration.
func WithLocator(l Locator) Option {
	return func(r *Registry) { r.locator = l }
}

// WithLogger sets the registry logger.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Registry) { r.log = l }
}

// New returns an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		loaders: map[string]Loader{},
		cache:   map[string]host.Rule{},
		log:     zerolog.Nop(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Register adds a loader. A later registration for the same id replaces
// the earlier one unless the rule was already resolved.
func (r *Registry) Register(id string, l Loader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaders[CanonicalID(id)] = l
}

// RegisterRule adds an already constructed rule.
func (r *Registry) RegisterRule(id string, rule host.Rule) {
	r.Register(id, func() (host.Rule, error) { return rule, nil })
}

// Resolve returns the rule for id, loading it on first use.
func (r *Registry) Resolve(id string) (host.Rule, error) {
	key := CanonicalID(id)

	r.mu.Lock()
	defer r.mu.Unlock()

	if rule, ok := r.cache[key]; ok {
		return rule, nil
	}

	rule, err := r.load(key)
	if err != nil {
		return nil, err
	}
	r.cache[key] = rule
	r.log.Debug().Str("rule", key).Msg("resolved rule")
	return rule, nil
}

func (r *Registry) load(id string) (host.Rule, error) {
	if l, ok := r.loaders[id]; ok {
		rule, err := l()
		if err != nil {
			return nil, &PluginResolutionError{ID: id, Err: err}
		}
		if rule == nil {
			return nil, &PluginResolutionError{ID: id, Err: fmt.Errorf("loader returned no rule")}
		}
		return rule, nil
	}

	pkg, name := SplitID(id)
	if r.locator == nil {
		return nil, &PluginResolutionError{ID: id, Package: pkg}
	}
	rule, err := r.locator.Locate(pkg, name)
	if err != nil {
		return nil, &PluginResolutionError{ID: id, Package: pkg, Err: err}
	}
	if rule == nil {
		return nil, &PluginResolutionError{ID: id, Package: pkg, Err: fmt.Errorf("package has no rule %q", name)}
	}
	return rule, nil
}

// CanonicalID normalizes path separators and the package prefix of a
// plugin-qualified rule id.
func CanonicalID(id string) string {
	id = strings.ReplaceAll(id, `\`, "/")
	if strings.HasPrefix(id, "@") {
		scope, rest, ok := strings.Cut(id, "/")
		if !ok {
			return id
		}
		rest = strings.TrimPrefix(rest, "eslint-plugin/")
		rest = strings.TrimPrefix(rest, "eslint-plugin-")
		return scope + "/" + rest
	}
	return strings.TrimPrefix(id, "eslint-plugin-")
}

// SplitID splits a rule id into the package that provides it and the rule
// name inside that package. Core rules have an empty package.
//
//	no-console            -> "", no-console
//	react/jsx-key         -> eslint-plugin-react, jsx-key
//	@scope/rule           -> @scope/eslint-plugin, rule
//	@scope/plugin/rule    -> @scope/eslint-plugin-plugin, rule
func SplitID(id string) (pkg, rule string) {
	id = CanonicalID(id)
	if strings.HasPrefix(id, "@") {
		parts := strings.SplitN(id, "/", 3)
		switch len(parts) {
		case 1:
			return parts[0] + "/eslint-plugin", ""
		case 2:
			return parts[0] + "/eslint-plugin", parts[1]
		default:
			return parts[0] + "/eslint-plugin-" + parts[1], parts[2]
		}
	}
	plugin, name, ok := strings.Cut(id, "/")
	if !ok {
		return "", id
	}
	return "eslint-plugin-" + plugin, name
}
