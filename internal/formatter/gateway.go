package formatter

import (
	"errors"
	"fmt"
	"sync"

	"github.com/imdario/mergo"
	"github.com/rs/zerolog"
)

// Locator finds a formatter installation.
type Locator func() (Engine, error)

// Gateway resolves the formatter and its configuration lazily and caches
// both until Invalidate.
type Gateway struct {
	local        Locator
	bundled      Locator
	baseFolder   string
	ignorePath   string
	editorconfig bool
	defaults     Options
	log          zerolog.Logger

	mu       sync.Mutex
	engine   Engine
	config   Options
	fallback Options
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithLocal sets the locator for a project-local installation.
func WithLocal(l Locator) Option { return func(g *Gateway) { g.local = l } }

// WithBundled sets the locator used when no local installation exists.
func WithBundled(l Locator) Option { return func(g *Gateway) { g.bundled = l } }

// WithBaseFolder sets the folder configuration is discovered from.
func WithBaseFolder(dir string) Option { return func(g *Gateway) { g.baseFolder = dir } }

// WithIgnorePath sets the ignore file consulted by FileInfo.
func WithIgnorePath(p string) Option { return func(g *Gateway) { g.ignorePath = p } }

// WithEditorConfig toggles .editorconfig during discovery.
func WithEditorConfig(on bool) Option { return func(g *Gateway) { g.editorconfig = on } }

// WithDefaults sets the built-in options that discovered configuration
// overrides.
func WithDefaults(opts Options) Option { return func(g *Gateway) { g.defaults = copyOptions(opts) } }

// WithLogger sets the gateway logger.
func WithLogger(l zerolog.Logger) Option { return func(g *Gateway) { g.log = l } }

// NewGateway returns a Gateway. Nothing is resolved until first use.
func NewGateway(opts ...Option) *Gateway {
	g := &Gateway{
		baseFolder:   ".",
		ignorePath:   ".prettierignore",
		editorconfig: true,
		defaults:     Options{},
		log:          zerolog.Nop(),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Engine returns the formatter, preferring the local installation.
func (g *Gateway) Engine() (Engine, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.resolveEngine()
}

// TryEngine is Engine returning nil instead of an error.
func (g *Gateway) TryEngine() Engine {
	e, err := g.Engine()
	if err != nil {
		g.log.Debug().Err(err).Msg("formatter unavailable")
		return nil
	}
	return e
}

func (g *Gateway) resolveEngine() (Engine, error) {
	if g.engine != nil {
		return g.engine, nil
	}

	var errs []error
	for _, candidate := range []struct {
		name string
		find Locator
	}{
		{"local", g.local},
		{"bundled", g.bundled},
	} {
		if candidate.find == nil {
			continue
		}
		e, err := candidate.find()
		if err != nil {
			g.log.Debug().Err(err).Str("source", candidate.name).Msg("formatter lookup failed")
			errs = append(errs, err)
			continue
		}
		g.log.Debug().Str("source", candidate.name).Msg("resolved formatter")
		g.engine = e
		return e, nil
	}

	if len(errs) == 0 {
		return nil, ErrNotFound
	}
	return nil, fmt.Errorf("%w: %w", ErrNotFound, errors.Join(errs...))
}

// Config returns the defaults merged with the discovered project
// configuration. Discovery runs once until Invalidate.
func (g *Gateway) Config() (Options, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	cfg, err := g.resolveConfig()
	if err != nil {
		return nil, err
	}
	return copyOptions(cfg), nil
}

// TryConfig is Config falling back to the defaults when discovery fails.
func (g *Gateway) TryConfig() Options {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.fallback != nil {
		return copyOptions(g.fallback)
	}
	cfg, err := g.resolveConfig()
	if err != nil {
		g.log.Debug().Err(err).Msg("using default formatter options")
		g.fallback = copyOptions(g.defaults)
		return copyOptions(g.fallback)
	}
	return copyOptions(cfg)
}

func (g *Gateway) resolveConfig() (Options, error) {
	if g.config != nil {
		return g.config, nil
	}
	e, err := g.resolveEngine()
	if err != nil {
		return nil, err
	}
	discovered, err := e.ResolveConfig(g.baseFolder, g.editorconfig)
	if err != nil {
		return nil, fmt.Errorf("resolving formatter config in %s: %w", g.baseFolder, err)
	}

	merged, err := mergeOptions(g.defaults, discovered)
	if err != nil {
		return nil, err
	}
	g.log.Debug().Str("base", g.baseFolder).Int("keys", len(merged)).Msg("resolved formatter config")
	g.config = merged
	g.fallback = merged
	return merged, nil
}

// FileInfo reports whether path is ignored and which parser it infers.
func (g *Gateway) FileInfo(path string) (FileInfo, error) {
	e, err := g.Engine()
	if err != nil {
		return FileInfo{}, err
	}
	return e.FileInfo(path, g.ignorePath)
}

// Format formats source with precedence defaults < discovered < opts.
func (g *Gateway) Format(source string, opts Options) (string, error) {
	e, err := g.Engine()
	if err != nil {
		return "", err
	}
	cfg, err := g.Config()
	if err != nil {
		return "", err
	}
	merged, err := mergeOptions(cfg, opts)
	if err != nil {
		return "", err
	}
	return e.Format(source, merged)
}

// TryFormat is Format returning source unchanged on any failure.
func (g *Gateway) TryFormat(source string, opts Options) string {
	e := g.TryEngine()
	if e == nil {
		return source
	}
	merged, err := mergeOptions(g.TryConfig(), opts)
	if err != nil {
		return source
	}
	out, err := e.Format(source, merged)
	if err != nil {
		g.log.Debug().Err(err).Msg("format failed, keeping input")
		return source
	}
	return out
}

// InvalidateConfig drops the cached configuration and the engine's own
// config cache, keeping the engine.
func (g *Gateway) InvalidateConfig() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.config = nil
	g.fallback = nil
	if g.engine != nil {
		g.engine.ClearConfigCache()
	}
}

// Invalidate drops all cached formatter and configuration state.
func (g *Gateway) Invalidate() {
	g.InvalidateConfig()
	g.mu.Lock()
	g.engine = nil
	g.mu.Unlock()
}

func mergeOptions(layers ...Options) (Options, error) {
	out := Options{}
	for _, l := range layers {
		if len(l) == 0 {
			continue
		}
		if err := mergo.Merge(&out, copyOptions(l), mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("merging formatter options: %w", err)
		}
	}
	return out, nil
}

func copyOptions(opts Options) Options {
	if opts == nil {
		return nil
	}
	out := make(Options, len(opts))
	for k, v := range opts {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return copyOptions(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = copyValue(e)
		}
		return out
	}
	return v
}
