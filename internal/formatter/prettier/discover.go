package prettier

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"
	sigsyaml "sigs.k8s.io/yaml"

	"github.com/donaldgifford/fixfmt/internal/formatter"
)

// rcFileNames is the per-directory search order for project configuration.
var rcFileNames = []string{
	"package.json",
	".prettierrc",
	".prettierrc.json",
	".prettierrc.yaml",
	".prettierrc.yml",
	".prettierrc.toml",
}

// ResolveConfig implements formatter.Engine. It searches path's directory
// and its parents for the nearest configuration file, applies any overrides
// matching path and, when editorconfig is set, layers that file's options
// over the .editorconfig properties for path.
func (e *Engine) ResolveConfig(path string, editorconfig bool) (formatter.Options, error) {
	abs, err := filepath.Abs(e.resolve(path))
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	dir, name := abs, ""
	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		dir, name = filepath.Dir(abs), filepath.Base(abs)
	}

	key := abs + "|" + strconv.FormatBool(editorconfig)
	e.mu.Lock()
	cached, ok := e.configs[key]
	e.mu.Unlock()
	if ok {
		return copyOptions(cached), nil
	}

	out := formatter.Options{}
	if editorconfig {
		ec, err := editorConfigOptions(dir, name)
		if err != nil {
			return nil, err
		}
		for k, v := range ec {
			out[k] = v
		}
	}

	rcPath, rc, err := findRC(dir)
	if err != nil {
		return nil, err
	}
	if rc != nil {
		e.log.Debug().Str("file", rcPath).Msg("found formatter config")
		rel, _ := filepath.Rel(filepath.Dir(rcPath), filepath.Join(dir, name))
		applyRC(out, rc, filepath.ToSlash(rel), name != "")
	}

	e.mu.Lock()
	e.configs[key] = out
	e.mu.Unlock()
	return copyOptions(out), nil
}

func (e *Engine) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(e.dir, path)
}

// findRC returns the nearest configuration file at or above dir.
func findRC(dir string) (string, map[string]any, error) {
	for {
		for _, name := range rcFileNames {
			path := filepath.Join(dir, name)
			data, err := os.ReadFile(path)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return "", nil, fmt.Errorf("reading %s: %w", path, err)
			}
			rc, err := parseRC(name, data)
			if err != nil {
				return "", nil, fmt.Errorf("parsing %s: %w", path, err)
			}
			if rc != nil {
				return path, rc, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil, nil
		}
		dir = parent
	}
}

// parseRC decodes one configuration file. A manifest without a prettier
// object yields nil so the search continues.
func parseRC(name string, data []byte) (map[string]any, error) {
	var doc map[string]any
	switch filepath.Ext(name) {
	case ".json":
		if err := sigsyaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	case ".toml":
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	default:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	}

	if name == "package.json" {
		embedded, ok := doc["prettier"].(map[string]any)
		if !ok {
			return nil, nil
		}
		doc = embedded
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return normalize(doc).(map[string]any), nil
}

// applyRC copies the top-level options into out, then the options of each
// override whose files match rel.
func applyRC(out formatter.Options, rc map[string]any, rel string, isFile bool) {
	for k, v := range rc {
		if k != "overrides" {
			out[k] = v
		}
	}
	if !isFile {
		return
	}
	overrides, _ := rc["overrides"].([]any)
	for _, o := range overrides {
		entry, ok := o.(map[string]any)
		if !ok {
			continue
		}
		if !matchesAny(stringList(entry["files"]), rel) || matchesAny(stringList(entry["excludeFiles"]), rel) {
			continue
		}
		opts, _ := entry["options"].(map[string]any)
		for k, v := range opts {
			out[k] = v
		}
	}
}

func stringList(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// matchesAny reports whether rel matches one of the patterns. Patterns
// without a slash match the base name at any depth.
func matchesAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if p == "" {
			continue
		}
		target := rel
		if !strings.Contains(p, "/") {
			target = filepath.Base(rel)
		}
		g, err := glob.Compile(strings.TrimPrefix(p, "/"), '/')
		if err != nil {
			continue
		}
		if g.Match(target) {
			return true
		}
	}
	return false
}

// normalize converts decoded numbers to int where they are integral so
// options compare equal regardless of the source format.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = normalize(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = normalize(e)
		}
		return t
	case []map[string]any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalize(e)
		}
		return out
	case int64:
		return int(t)
	case float64:
		if t == float64(int(t)) {
			return int(t)
		}
	}
	return v
}

func copyOptions(opts formatter.Options) formatter.Options {
	out := make(formatter.Options, len(opts))
	for k, v := range opts {
		out[k] = v
	}
	return out
}
