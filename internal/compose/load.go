package compose

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	yamlv3 "gopkg.in/yaml.v3"
	"sigs.k8s.io/yaml"
)

// configFileNames is the ordered list of lint config files searched by
// Discover.
var configFileNames = []string{
	".eslintrc.json",
	".eslintrc.yaml",
	".eslintrc.yml",
	".eslintrc",
	"package.json",
}

// manifestConfigKey holds an embedded lint config inside a package
// manifest.
const manifestConfigKey = "eslintConfig"

// Discover returns the first lint config file found in dir, or an empty
// string. A package manifest only counts when it embeds a config.
func Discover(dir string) string {
	for _, name := range configFileNames {
		p := filepath.Join(dir, name)
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		if name == "package.json" {
			v, err := Parse(p, data)
			if err != nil || v.Len() == 0 {
				continue
			}
		}
		return p
	}
	return ""
}

// Load reads and tags a lint config file. JSON and YAML are both accepted.
func Load(path string) (Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Value{}, fmt.Errorf("lint config not found: %s", path)
		}
		return Value{}, fmt.Errorf("reading lint config %s: %w", path, err)
	}
	return Parse(path, data)
}

// Parse tags a lint config document. name selects the decoder: JSON
// documents keep JSON number semantics, everything else is read as YAML 1.2
// so bare words like off stay strings. Package manifests hold their config
// under the eslintConfig key.
func Parse(name string, data []byte) (Value, error) {
	var doc any
	if filepath.Ext(name) == ".json" {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return Value{}, &ConfigurationError{Path: name, Reason: err.Error()}
		}
	} else if err := yamlv3.Unmarshal(data, &doc); err != nil {
		return Value{}, &ConfigurationError{Path: name, Reason: err.Error()}
	}
	if filepath.Base(name) == "package.json" {
		m, _ := doc.(map[string]any)
		doc = m[manifestConfigKey]
	}
	v := FromAny(doc)
	switch v.Kind() {
	case KindNull:
		return Mapping(), nil
	case KindMapping:
		return v, nil
	}
	return Value{}, &ConfigurationError{Path: name, Reason: fmt.Sprintf("expected mapping, got %v", v.Kind())}
}
