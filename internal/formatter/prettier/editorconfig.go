package prettier

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gobwas/glob"
	"gopkg.in/ini.v1"

	"github.com/donaldgifford/fixfmt/internal/formatter"
)

const editorConfigName = ".editorconfig"

// editorConfigOptions maps the .editorconfig properties that apply to name
// in dir onto formatter options. An empty name is a directory: only
// sections matching every file apply.
func editorConfigOptions(dir, name string) (formatter.Options, error) {
	var files []string
	for d := dir; ; {
		path := filepath.Join(d, editorConfigName)
		if _, err := os.Stat(path); err == nil {
			files = append(files, path)
			root, err := isRootEditorConfig(path)
			if err != nil {
				return nil, err
			}
			if root {
				break
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		parent := filepath.Dir(d)
		if parent == d {
			break
		}
		d = parent
	}

	props := map[string]string{}
	// Outermost first so nearer files win.
	for i := len(files) - 1; i >= 0; i-- {
		if err := collectProps(files[i], dir, name, props); err != nil {
			return nil, err
		}
	}
	return propsToOptions(props), nil
}

func loadEditorConfig(path string) (*ini.File, error) {
	f, err := ini.LoadSources(ini.LoadOptions{AllowBooleanKeys: true}, path)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return f, nil
}

func isRootEditorConfig(path string) (bool, error) {
	f, err := loadEditorConfig(path)
	if err != nil {
		return false, err
	}
	return f.Section(ini.DefaultSection).Key("root").MustBool(false), nil
}

func collectProps(path, dir, name string, props map[string]string) error {
	f, err := loadEditorConfig(path)
	if err != nil {
		return err
	}
	rel := ""
	if name != "" {
		r, err := filepath.Rel(filepath.Dir(path), filepath.Join(dir, name))
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(r)
	}

	for _, sec := range f.Sections() {
		if sec.Name() == ini.DefaultSection || !sectionMatches(sec.Name(), rel) {
			continue
		}
		for _, key := range sec.Keys() {
			props[strings.ToLower(key.Name())] = strings.ToLower(strings.TrimSpace(key.Value()))
		}
	}
	return nil
}

func sectionMatches(pattern, rel string) bool {
	if rel == "" {
		return pattern == "*" || pattern == "**"
	}
	target := rel
	if !strings.Contains(pattern, "/") {
		target = filepath.Base(rel)
	}
	g, err := glob.Compile(strings.TrimPrefix(pattern, "/"), '/')
	if err != nil {
		return false
	}
	return g.Match(target)
}

func propsToOptions(props map[string]string) formatter.Options {
	out := formatter.Options{}

	switch props["indent_style"] {
	case "tab":
		out["useTabs"] = true
	case "space":
		out["useTabs"] = false
	}

	width := props["indent_size"]
	if width == "tab" || width == "" {
		width = props["tab_width"]
	}
	if n, err := strconv.Atoi(width); err == nil {
		out["tabWidth"] = n
	}

	if n, err := strconv.Atoi(props["max_line_length"]); err == nil {
		out["printWidth"] = n
	}

	switch eol := props["end_of_line"]; eol {
	case "lf", "crlf", "cr":
		out["endOfLine"] = eol
	}

	switch props["quote_type"] {
	case "single":
		out["singleQuote"] = true
	case "double":
		out["singleQuote"] = false
	}
	return out
}
