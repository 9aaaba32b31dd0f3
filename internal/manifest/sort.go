package manifest

import (
	"encoding/json"
	"path/filepath"
	"sort"
	"strings"
)

// FileName is the manifest file name.
const FileName = "package.json"

// sortOrder is the canonical key order: identity, metadata, entry points,
// scripts and tooling, then dependency fields last.
var sortOrder = []string{
	"name",
	"version",
	"private",
	"description",
	"keywords",
	"license",
	"author",
	"homepage",
	"bugs",
	"repository",
	"contributors",
	"os",
	"cpu",
	"engines",
	"engineStrict",
	"sideEffects",
	"main",
	"umd:main",
	"type",
	"types",
	"typings",
	"bin",
	"browser",
	"files",
	"directories",
	"unpkg",
	"module",
	"source",
	"jsnext:main",
	"style",
	"example",
	"examplestyle",
	"assets",
	"man",
	"workspaces",
	"scripts",
	"betterScripts",
	"husky",
	"pre-commit",
	"commitlint",
	"lint-staged",
	"config",
	"nodemonConfig",
	"browserify",
	"babel",
	"browserslist",
	"xo",
	"eslintConfig",
	"eslintIgnore",
	"stylelint",
	"jest",
	"flat",
	"resolutions",
	"preferGlobal",
	"publishConfig",
	"bundleDependencies",
	"bundledDependencies",
	"peerDependencies",
	"dependencies",
	"devDependencies",
	"optionalDependencies",
	"prettier",
}

// sortableFields have their entries sorted and are dropped when empty.
var sortableFields = []string{
	"prettier",
	"engines",
	"engineStrict",
	"bundleDependencies",
	"bundledDependencies",
	"peerDependencies",
	"dependencies",
	"devDependencies",
	"optionalDependencies",
}

// IsManifest reports whether path names a package manifest.
func IsManifest(path string) bool {
	return filepath.Base(filepath.FromSlash(path)) == FileName
}

// Sort returns a copy of m with keys in canonical order. Unknown keys
// follow the known ones in their original order.
func Sort(m *Object) *Object {
	out := NewObject()
	for _, k := range sortOrder {
		if v, ok := m.Get(k); ok {
			out.Set(k, v)
		}
	}
	for _, k := range m.keys {
		out.Set(k, m.values[k])
	}

	for _, k := range sortableFields {
		switch v := out.values[k].(type) {
		case []any:
			if len(v) == 0 {
				out.Delete(k)
				continue
			}
			out.values[k] = sortArray(v)
		case *Object:
			sorted := sortKeys(v)
			if sorted.Len() == 0 {
				out.Delete(k)
				continue
			}
			out.values[k] = sorted
		}
	}
	return out
}

// sortKeys orders keys alphabetically at every object level. Arrays nested
// in objects keep their order.
func sortKeys(o *Object) *Object {
	keys := o.Keys()
	sort.Strings(keys)
	out := NewObject()
	for _, k := range keys {
		switch v := o.values[k].(type) {
		case *Object:
			out.Set(k, sortKeys(v))
		case []any:
			out.Set(k, append([]any(nil), v...))
		default:
			out.Set(k, v)
		}
	}
	return out
}

func sortArray(a []any) []any {
	out := append([]any(nil), a...)
	sort.SliceStable(out, func(i, j int) bool { return sortText(out[i]) < sortText(out[j]) })
	return out
}

// sortText is the string form used to order array entries.
func sortText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	case nil:
		return "null"
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = sortText(e)
		}
		return strings.Join(parts, ",")
	}
	return "[object Object]"
}

// Prettify reorders a manifest document. It reports false and returns the
// input unchanged unless text is a JSON object with string name and
// version fields.
func Prettify(text string) (string, bool) {
	doc, err := Parse([]byte(text))
	if err != nil {
		return text, false
	}
	obj, ok := doc.(*Object)
	if !ok {
		return text, false
	}
	name, _ := obj.Get("name")
	version, _ := obj.Get("version")
	if _, ok := name.(string); !ok {
		return text, false
	}
	if _, ok := version.(string); !ok {
		return text, false
	}

	out, err := Marshal(Sort(obj))
	if err != nil {
		return text, false
	}
	return string(out) + "\n", true
}
