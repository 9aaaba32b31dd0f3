// Package host defines the capabilities consumed from the lint engine that
// fixfmt extends.
package host

import (
	"github.com/donaldgifford/fixfmt/internal/compose"
)

// Fix is a single text replacement proposed by a rule.
type Fix struct {
	Start int
	End   int
	Text  string
}

// Diagnostic is one lint finding. Line and Column are 1-based; zero means
// the location is unknown.
type Diagnostic struct {
	RuleID   string
	Severity compose.Severity
	Message  string
	Line     int
	Column   int
	Fix      *Fix
}

// FixReport is the result of an autofix pass.
type FixReport struct {
	Fixed       bool
	Output      string
	Diagnostics []Diagnostic
}

// Options carries the per-invocation flags of VerifyAndFix.
type Options struct {
	Fix      bool
	Filename string
}

// FilenameOptions is the shorthand form where passing only a filename
// implies fix intent.
func FilenameOptions(name string) Options {
	return Options{Fix: true, Filename: name}
}

// Linter is the host's verification and autofix entry point. The host may
// call VerifyAndFix recursively, e.g. for embedded-language extraction.
type Linter interface {
	VerifyAndFix(code string, cfg *compose.Config, opts Options) (FixReport, error)
	Verify(code string, cfg *compose.Config, opts Options) ([]Diagnostic, error)
}

// Fixer applies the fixes attached to diagnostics. Linters that also
// implement Fixer get one extra autofix pass after formatting.
type Fixer interface {
	ApplyFixes(code string, diags []Diagnostic) (output string, remaining []Diagnostic)
}

// Node is whatever syntax node the host hands to listeners.
type Node any

// Listener handles one syntax event.
type Listener func(Node)

// Listeners maps event names (node types, selectors) to handlers.
type Listeners map[string]Listener

// RuleContext is what the host passes to Rule.Create.
type RuleContext struct {
	ID       string
	Options  []compose.Value
	Filename string
	Report   func(Diagnostic)
}

// Rule is a lint rule as the host sees it.
type Rule interface {
	Create(ctx *RuleContext) Listeners
}

// RuleFunc adapts a plain function to Rule.
type RuleFunc func(ctx *RuleContext) Listeners

// Create calls f.
func (f RuleFunc) Create(ctx *RuleContext) Listeners { return f(ctx) }
