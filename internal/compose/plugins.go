package compose

import "strings"

const (
	pluginPrefix  = "plugin:"
	packagePrefix = "eslint-plugin-"
	scopedSuffix  = "/eslint-plugin"
)

// Canonicalize returns the bare identity of a plugin name, stripping the
// "plugin:" prefix, the "eslint-plugin-" package prefix and scoped package
// decorations. It is idempotent.
func Canonicalize(name string) string {
	for {
		next := canonicalizeOnce(name)
		if next == name {
			return name
		}
		name = next
	}
}

func canonicalizeOnce(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = strings.TrimPrefix(name, pluginPrefix)
	name = strings.TrimPrefix(name, packagePrefix)
	name = strings.TrimSuffix(name, scopedSuffix)
	if strings.HasPrefix(name, "@") {
		if scope, rest, ok := strings.Cut(name, "/"); ok && strings.HasPrefix(rest, packagePrefix) {
			name = scope + "/" + strings.TrimPrefix(rest, packagePrefix)
		}
	}
	return name
}

// Equivalents returns every accepted spelling of the plugin: the bare form,
// the "plugin:" form, the package form and, for scoped names, the scoped
// package form.
func Equivalents(name string) []string {
	bare := Canonicalize(name)
	if bare == "" {
		return nil
	}
	out := []string{bare, pluginPrefix + bare}
	if !strings.HasPrefix(bare, "@") {
		return append(out, packagePrefix+bare)
	}
	scope, rest, ok := strings.Cut(bare, "/")
	if !ok {
		return append(out, bare+scopedSuffix)
	}
	return append(out, scope+"/"+packagePrefix+rest)
}

// PluginSet is a set of plugin identities. Membership accepts any spelling.
type PluginSet struct {
	names   []string
	members map[string]bool
}

// NewPluginSet returns a set holding the given plugins.
func NewPluginSet(names ...string) *PluginSet {
	s := &PluginSet{members: map[string]bool{}}
	for _, n := range names {
		s.Add(n)
	}
	return s
}

// Add inserts a plugin under its canonical identity.
func (s *PluginSet) Add(name string) {
	eq := Equivalents(name)
	if len(eq) == 0 || s.members[eq[0]] {
		return
	}
	s.names = append(s.names, eq[0])
	for _, e := range eq {
		s.members[e] = true
	}
}

// AddConfig inserts the plugins of a config mapping and the plugins that
// its "plugin:<name>/<config>" extends entries refer to.
func (s *PluginSet) AddConfig(cfg Value) {
	if p, ok := cfg.Get(keyPlugins); ok {
		for _, name := range p.Strings() {
			s.Add(name)
		}
	}
	if e, ok := cfg.Get(keyExtends); ok {
		for _, ext := range e.Strings() {
			if !strings.HasPrefix(ext, pluginPrefix) {
				continue
			}
			if i := strings.LastIndex(ext, "/"); i > len(pluginPrefix) {
				ext = ext[:i]
			}
			s.Add(ext)
		}
	}
}

// Has reports whether any spelling of name is in the set.
func (s *PluginSet) Has(name string) bool {
	if s.members[name] {
		return true
	}
	c := Canonicalize(name)
	return c != "" && s.members[c]
}

// Names returns the canonical identities in insertion order.
func (s *PluginSet) Names() []string {
	return append([]string(nil), s.names...)
}

// Len returns the number of distinct plugins.
func (s *PluginSet) Len() int { return len(s.names) }

// Union returns a new set holding the plugins of s followed by those of o.
func (s *PluginSet) Union(o *PluginSet) *PluginSet {
	out := NewPluginSet(s.names...)
	for _, n := range o.names {
		out.Add(n)
	}
	return out
}
