// Package prettier implements formatter.Engine on top of the prettier
// command line.
package prettier

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/donaldgifford/fixfmt/internal/formatter"
)

// RunFunc executes the prettier binary with args, feeding stdin.
type RunFunc func(exe string, args []string, stdin string) (stdout, stderr string, err error)

// Engine drives one prettier executable.
type Engine struct {
	exe string
	dir string
	run RunFunc
	log zerolog.Logger

	mu      sync.Mutex
	configs map[string]formatter.Options
	ignores map[string]*ignore.GitIgnore
}

// Option configures an Engine.
type Option func(*Engine)

// WithDir sets the directory prettier runs in and relative paths resolve
// against.
func WithDir(dir string) Option { return func(e *Engine) { e.dir = dir } }

// WithRunner replaces process execution.
func WithRunner(run RunFunc) Option { return func(e *Engine) { e.run = run } }

// WithLogger sets the engine logger.
func WithLogger(l zerolog.Logger) Option { return func(e *Engine) { e.log = l } }

// New returns an Engine running exe.
func New(exe string, opts ...Option) *Engine {
	e := &Engine{
		exe:     exe,
		dir:     ".",
		log:     zerolog.Nop(),
		configs: map[string]formatter.Options{},
		ignores: map[string]*ignore.GitIgnore{},
	}
	e.run = e.execute
	for _, o := range opts {
		o(e)
	}
	return e
}

// Executable returns the prettier binary path.
func (e *Engine) Executable() string { return e.exe }

// Format implements formatter.Engine.
func (e *Engine) Format(source string, opts formatter.Options) (string, error) {
	args, err := Args(opts)
	if err != nil {
		return "", err
	}
	e.log.Debug().Strs("args", args).Msg("running prettier")

	stdout, stderr, err := e.run(e.exe, args, source)
	if err != nil {
		return "", classify(stderr, err)
	}
	return stdout, nil
}

func (e *Engine) execute(exe string, args []string, stdin string) (string, string, error) {
	cmd := exec.Command(exe, args...)
	cmd.Dir = e.dir
	cmd.Stdin = strings.NewReader(stdin)
	var out, errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut
	err := cmd.Run()
	return out.String(), errOut.String(), err
}

// ClearConfigCache implements formatter.Engine.
func (e *Engine) ClearConfigCache() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.configs = map[string]formatter.Options{}
	e.ignores = map[string]*ignore.GitIgnore{}
}

var (
	errorPrefix = regexp.MustCompile(`(?m)^\[error\] ?`)
	locSuffix   = regexp.MustCompile(`\((\d+):(\d+)\)`)
)

// classify turns prettier's stderr into a *formatter.ParseError for syntax
// errors or a plain wrapped error otherwise.
func classify(stderr string, runErr error) error {
	text := strings.TrimSpace(errorPrefix.ReplaceAllString(stderr, ""))

	_, rest, ok := strings.Cut(text, "SyntaxError: ")
	if !ok {
		var exitErr *exec.ExitError
		if text == "" || !errors.As(runErr, &exitErr) {
			return fmt.Errorf("running prettier: %w", runErr)
		}
		return fmt.Errorf("prettier: %s", text)
	}

	perr := &formatter.ParseError{Message: rest}
	head, frame, hasFrame := strings.Cut(rest, "\n")
	if hasFrame {
		perr.CodeFrame = frame
	}
	if m := locSuffix.FindStringSubmatch(head); m != nil {
		perr.Line, _ = strconv.Atoi(m[1])
		perr.Column, _ = strconv.Atoi(m[2])
	}
	return perr
}
