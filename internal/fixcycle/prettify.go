package fixcycle

import (
	"errors"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/donaldgifford/fixfmt/internal/compose"
	"github.com/donaldgifford/fixfmt/internal/formatter"
	"github.com/donaldgifford/fixfmt/internal/host"
	"github.com/donaldgifford/fixfmt/internal/manifest"
)

// DefaultFallbackDialect replaces denylisted dialects.
const DefaultFallbackDialect = "babel"

// deniedDialects conflict with the host's embedded-snippet extraction.
var deniedDialects = map[string]bool{
	"markdown": true,
	"mdx":      true,
	"html":     true,
	"vue":      true,
	"angular":  true,
	"lwc":      true,
	"graphql":  true,
}

// Formatter is the part of formatter.Gateway the Prettifier uses.
type Formatter interface {
	FileInfo(path string) (formatter.FileInfo, error)
	Format(source string, opts formatter.Options) (string, error)
}

// Prettifier runs the formatting pass for one file: ignore check, dialect
// selection, manifest sorting and formatting.
type Prettifier struct {
	formatter Formatter
	fallback  string
	log       zerolog.Logger
}

// PrettifierOption configures a Prettifier.
type PrettifierOption func(*Prettifier)

// WithFallbackDialect sets the dialect used instead of a denylisted one.
func WithFallbackDialect(d string) PrettifierOption {
	return func(p *Prettifier) {
		if d != "" {
			p.fallback = d
		}
	}
}

// WithPrettifierLogger sets the Prettifier logger.
func WithPrettifierLogger(l zerolog.Logger) PrettifierOption {
	return func(p *Prettifier) { p.log = l }
}

// NewPrettifier returns a Prettifier formatting through f.
func NewPrettifier(f Formatter, opts ...PrettifierOption) *Prettifier {
	p := &Prettifier{formatter: f, fallback: DefaultFallbackDialect, log: zerolog.Nop()}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Result is the outcome of Prettify.
type Result struct {
	// Output is the formatted text, or the input when skipped or failed.
	Output string
	// Dialect is the parser the formatter was asked to use.
	Dialect string
	// Skipped is set when the file is ignored or has no known dialect.
	Skipped bool
	// Err is the formatter failure, if any.
	Err error
}

// Prettify formats text as filename. Formatter failures are returned in
// Result.Err, never as a panic or a dropped file.
func (p *Prettifier) Prettify(filename, text string, prettifyManifest bool) Result {
	res := Result{Output: text}

	info, err := p.formatter.FileInfo(filename)
	if err != nil {
		p.log.Debug().Err(err).Str("file", filename).Msg("no file info, skipping format")
		res.Skipped = true
		return res
	}
	if info.Ignored {
		p.log.Debug().Str("file", filename).Msg("file is ignored")
		res.Skipped = true
		return res
	}

	res.Dialect = p.Dialect(info.Parser)
	if res.Dialect == "" {
		res.Skipped = true
		return res
	}

	source := text
	if prettifyManifest && manifest.IsManifest(filename) {
		if sorted, ok := manifest.Prettify(source); ok {
			source = sorted
		}
	}

	out, err := p.formatter.Format(source, formatter.Options{
		"parser":   res.Dialect,
		"filepath": filename,
	})
	if err != nil {
		res.Err = err
		return res
	}
	res.Output = out
	return res
}

// Dialect maps an inferred parser to the one used for formatting.
func (p *Prettifier) Dialect(parser string) string {
	if deniedDialects[parser] {
		return p.fallback
	}
	return parser
}

var lineColSuffix = regexp.MustCompile(`\s*\(\d+:\d+\)\s*$`)

// ErrorDiagnostic converts a formatter failure into an error diagnostic
// attributed to ruleID.
func ErrorDiagnostic(ruleID, dialect string, err error) host.Diagnostic {
	d := host.Diagnostic{RuleID: ruleID, Severity: compose.SeverityError}

	var perr *formatter.ParseError
	if errors.As(err, &perr) {
		msg := perr.Message
		if perr.CodeFrame != "" {
			msg = strings.Replace(msg, perr.CodeFrame, "", 1)
		}
		msg = lineColSuffix.ReplaceAllString(strings.TrimSpace(msg), "")
		d.Message = "Parsing error: " + msg
		d.Line, d.Column = perr.Line, perr.Column
	} else {
		d.Message = " Prettier error: " + strings.TrimSpace(err.Error())
	}

	d.Message += " - parser:" + dialect
	return d
}
