// Package formatter resolves the external code formatter and its merged
// configuration, and exposes strict and tolerant formatting operations.
package formatter

import "errors"

// Options are formatter options keyed by the formatter's own option names
// (printWidth, singleQuote, parser, filepath, ...).
type Options = map[string]any

// FileInfo describes how the formatter treats a path.
type FileInfo struct {
	Ignored bool
	Parser  string
}

// Engine is a formatter installation.
type Engine interface {
	// Format formats source. Syntax errors are returned as *ParseError.
	Format(source string, opts Options) (string, error)
	// FileInfo reports whether path is ignored and which parser applies.
	FileInfo(path, ignorePath string) (FileInfo, error)
	// ResolveConfig discovers project configuration for path, optionally
	// including .editorconfig.
	ResolveConfig(path string, editorconfig bool) (Options, error)
	// ClearConfigCache drops any configuration the engine cached.
	ClearConfigCache()
}

// ErrNotFound is returned when no formatter installation or configuration
// can be located.
var ErrNotFound = errors.New("formatter not found")

// ParseError is a syntax error reported by the formatter. Message may embed
// CodeFrame and a trailing "(line:col)".
type ParseError struct {
	Message   string
	CodeFrame string
	Line      int
	Column    int
}

func (e *ParseError) Error() string { return e.Message }
