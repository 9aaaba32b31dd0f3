// Package runner orchestrates the read -> prettify -> output pipeline.
package runner

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gobwas/glob"
	"github.com/rs/zerolog"

	"github.com/donaldgifford/fixfmt/internal/config"
	"github.com/donaldgifford/fixfmt/internal/fixcycle"
	"github.com/donaldgifford/fixfmt/internal/formatter"
	"github.com/donaldgifford/fixfmt/internal/formatter/prettier"
	"github.com/donaldgifford/fixfmt/internal/logging"
	"github.com/donaldgifford/fixfmt/pkg/diff"
)

// Exit codes.
const (
	ExitOK         = 0
	ExitFormatDiff = 1
	ExitError      = 2
)

// DefaultStdinFilepath names stdin input when no name is given.
const DefaultStdinFilepath = "stdin.js"

// Options configures the runner behavior.
type Options struct {
	Files         []string
	Check         bool
	Diff          bool
	Color         bool
	ConfigPath    string
	StdinFilepath string
	Quiet         bool
	Verbose       bool
	Stdin         io.Reader
	Stdout        io.Writer
	Stderr        io.Writer

	// Formatter replaces the prettier gateway built from the config.
	Formatter fixcycle.Formatter
	// Logger replaces the console logger built from the config.
	Logger *zerolog.Logger
}

type run struct {
	opts       *Options
	cfg        *config.Config
	prettifier *fixcycle.Prettifier
	exclude    []glob.Glob
	log        zerolog.Logger
}

// Run executes the format pipeline and returns an exit code.
func Run(opts *Options) int {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		writeErr(opts.Stderr, "fixfmt: %v\n", err)
		return ExitError
	}

	r, err := newRun(opts, cfg)
	if err != nil {
		writeErr(opts.Stderr, "fixfmt: %v\n", err)
		return ExitError
	}

	// stdin mode: no files given.
	if len(opts.Files) == 0 {
		return r.stdin()
	}

	exitCode := ExitOK
	for _, path := range opts.Files {
		code := r.file(path)
		if code > exitCode {
			exitCode = code
		}
	}
	return exitCode
}

func newRun(opts *Options, cfg *config.Config) (*run, error) {
	var log zerolog.Logger
	if opts.Logger != nil {
		log = *opts.Logger
	} else {
		level, err := cfg.Log.ZerologLevel()
		if err != nil {
			return nil, err
		}
		log = logging.New(level, opts.Stderr)
	}

	f := opts.Formatter
	if f == nil {
		f = NewGateway(cfg, log)
	}

	exclude := make([]glob.Glob, 0, len(cfg.Lint.Exclude))
	for _, pattern := range cfg.Lint.Exclude {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("lint.exclude %q: %w", pattern, err)
		}
		exclude = append(exclude, g)
	}

	return &run{
		opts: opts,
		cfg:  cfg,
		prettifier: fixcycle.ConfigPrettifier(cfg, f, logging.Component(log, "prettify")),
		exclude: exclude,
		log:     log,
	}, nil
}

// NewGateway builds the prettier gateway described by cfg: a project-local
// installation under the base folder first, then the configured or PATH
// executable.
func NewGateway(cfg *config.Config, log zerolog.Logger) *formatter.Gateway {
	base := cfg.Formatter.BaseFolder
	engineLog := prettier.WithLogger(logging.Component(log, "prettier"))
	return formatter.NewGateway(
		formatter.WithLocal(prettier.LocalLocator(base, engineLog)),
		formatter.WithBundled(prettier.PathLocator(cfg.Formatter.Executable, base, engineLog)),
		formatter.WithBaseFolder(base),
		formatter.WithIgnorePath(cfg.Formatter.IgnorePath),
		formatter.WithEditorConfig(cfg.Formatter.EditorConfig),
		formatter.WithDefaults(cfg.Formatter.Options),
		formatter.WithLogger(logging.Component(log, "gateway")),
	)
}

func (r *run) excluded(path string) bool {
	slashed := filepath.ToSlash(path)
	for _, g := range r.exclude {
		if g.Match(slashed) {
			return true
		}
	}
	return false
}

func (r *run) stdin() int {
	src, err := io.ReadAll(r.opts.Stdin)
	if err != nil {
		writeErr(r.opts.Stderr, "fixfmt: reading stdin: %v\n", err)
		return ExitError
	}

	name := r.opts.StdinFilepath
	if name == "" {
		name = DefaultStdinFilepath
	}

	input := string(src)
	output, ok := r.prettify(name, input)
	if !ok {
		return ExitError
	}

	if r.opts.Check {
		if input != output {
			return ExitFormatDiff
		}
		return ExitOK
	}

	if r.opts.Diff {
		d := diff.Unified(name, input, output)
		if d != "" {
			writeOut(r.opts.Stdout, diff.Colorize(d, r.opts.Color))
			return ExitFormatDiff
		}
		return ExitOK
	}

	writeOut(r.opts.Stdout, output)
	return ExitOK
}

func (r *run) file(path string) int {
	if r.excluded(path) {
		r.log.Debug().Str("file", path).Msg("excluded")
		return ExitOK
	}

	src, err := os.ReadFile(path)
	if err != nil {
		writeErr(r.opts.Stderr, "fixfmt: %v\n", err)
		return ExitError
	}

	if r.opts.Verbose {
		writeErr(r.opts.Stderr, "%s\n", path)
	}

	input := string(src)
	output, ok := r.prettify(path, input)
	if !ok {
		return ExitError
	}

	if r.opts.Check {
		if input != output {
			if !r.opts.Quiet {
				writeErr(r.opts.Stderr, "%s\n", path)
			}
			return ExitFormatDiff
		}
		return ExitOK
	}

	if r.opts.Diff {
		d := diff.Unified(path, input, output)
		if d != "" {
			writeOut(r.opts.Stdout, diff.Colorize(d, r.opts.Color))
			return ExitFormatDiff
		}
		return ExitOK
	}

	// Write mode (default for file args).
	if input == output {
		return ExitOK
	}

	info, err := os.Stat(path)
	if err != nil {
		writeErr(r.opts.Stderr, "fixfmt: %v\n", err)
		return ExitError
	}
	if err := os.WriteFile(path, []byte(output), info.Mode().Perm()); err != nil {
		writeErr(r.opts.Stderr, "fixfmt: writing %s: %v\n", path, err)
		return ExitError
	}

	return ExitOK
}

// prettify formats input as path. Failures are printed as diagnostics and
// reported with ok false.
func (r *run) prettify(path, input string) (string, bool) {
	res := r.prettifier.Prettify(path, input, r.cfg.Fix.PrettifyManifest)
	if res.Skipped {
		r.log.Debug().Str("file", path).Msg("skipped")
		return input, true
	}
	if res.Err != nil {
		d := fixcycle.ErrorDiagnostic(fixcycle.RuleID, res.Dialect, res.Err)
		writeErr(r.opts.Stderr, "%s:%d:%d: %s (%s)\n", path, d.Line, d.Column, d.Message, d.RuleID)
		return input, false
	}
	return res.Output, true
}

// writeOut writes to stdout.
func writeOut(w io.Writer, s string) {
	fmt.Fprint(w, s)
}

// writeErr formats and writes to stderr.
func writeErr(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format, args...)
}
