package testutil

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/donaldgifford/fixfmt/internal/formatter"
)

// SyntaxMarker makes FakeEngine.Format fail with a *formatter.ParseError
// pointing at the marker.
const SyntaxMarker = "<<<"

// FakeEngine is an in-memory formatter. Its canonical style trims trailing
// whitespace, collapses inner runs of spaces and ends the text with exactly
// one newline.
type FakeEngine struct {
	Discovered  formatter.Options
	DiscoverErr error
	FormatErr   error
	Ignored     map[string]bool

	ResolveCalls int
	ClearCalls   int
	Formatted    []formatter.Options
}

// Format implements formatter.Engine.
func (f *FakeEngine) Format(source string, opts formatter.Options) (string, error) {
	f.Formatted = append(f.Formatted, opts)
	if f.FormatErr != nil {
		return "", f.FormatErr
	}
	for i, line := range strings.Split(source, "\n") {
		if col := strings.Index(line, SyntaxMarker); col >= 0 {
			frame := fmt.Sprintf("> %d | %s\n    | %s^", i+1, line, strings.Repeat(" ", col))
			return "", &formatter.ParseError{
				Message:   fmt.Sprintf("Unexpected token (%d:%d)\n%s", i+1, col+1, frame),
				CodeFrame: frame,
				Line:      i + 1,
				Column:    col + 1,
			}
		}
	}
	return Canonical(source), nil
}

// FileInfo implements formatter.Engine.
func (f *FakeEngine) FileInfo(path, _ string) (formatter.FileInfo, error) {
	return formatter.FileInfo{
		Ignored: f.Ignored[filepath.ToSlash(path)],
		Parser:  InferParser(path),
	}, nil
}

// ResolveConfig implements formatter.Engine.
func (f *FakeEngine) ResolveConfig(string, bool) (formatter.Options, error) {
	f.ResolveCalls++
	if f.DiscoverErr != nil {
		return nil, f.DiscoverErr
	}
	return f.Discovered, nil
}

// ClearConfigCache implements formatter.Engine.
func (f *FakeEngine) ClearConfigCache() { f.ClearCalls++ }

// Locator returns a formatter.Locator yielding f.
func (f *FakeEngine) Locator() formatter.Locator {
	return func() (formatter.Engine, error) { return f, nil }
}

// Canonical applies FakeEngine's canonical style.
func Canonical(source string) string {
	lines := strings.Split(strings.TrimRight(source, " \t\n"), "\n")
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		indent := line[:len(line)-len(trimmed)]
		lines[i] = indent + strings.Join(strings.Fields(trimmed), " ")
	}
	return strings.Join(lines, "\n") + "\n"
}

// InferParser maps a few extensions to parser names.
func InferParser(path string) string {
	switch filepath.Ext(path) {
	case ".js", ".jsx", ".mjs":
		return "babel"
	case ".ts", ".tsx":
		return "typescript"
	case ".json":
		if filepath.Base(path) == "package.json" {
			return "json-stringify"
		}
		return "json"
	case ".md":
		return "markdown"
	case ".vue":
		return "vue"
	case ".graphql":
		return "graphql"
	}
	return ""
}
