// Package fixcycle splices a formatting pass into the host's autofix cycle.
//
// Wrap decorates a host.Linter. Each VerifyAndFix call with fix intent and a
// filename pushes a frame; if the delegate rule activates while that frame
// is live, the fixed output is formatted after the host's own fixes and the
// diagnostics are reconciled against the formatted text.
package fixcycle

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/donaldgifford/fixfmt/internal/compose"
	"github.com/donaldgifford/fixfmt/internal/formatter"
	"github.com/donaldgifford/fixfmt/internal/formatter/prettier"
	"github.com/donaldgifford/fixfmt/internal/host"
	"github.com/donaldgifford/fixfmt/internal/rules"
)

// Interceptor is a host.Linter that formats the output of the host's
// autofix. It is not safe for concurrent use.
type Interceptor struct {
	next       host.Linter
	prettifier *Prettifier
	registry   *rules.Registry
	refix      bool
	log        zerolog.Logger

	stack stack
}

// Option configures an Interceptor.
type Option func(*Interceptor)

// WithPrettifier sets the formatting pass.
func WithPrettifier(p *Prettifier) Option { return func(i *Interceptor) { i.prettifier = p } }

// WithRegistry sets where delegated sub-rules are resolved.
func WithRegistry(r *rules.Registry) Option { return func(i *Interceptor) { i.registry = r } }

// WithRefix enables one extra host autofix pass over formatted text that
// still has diagnostics. It needs the wrapped linter to implement
// host.Fixer.
func WithRefix(on bool) Option { return func(i *Interceptor) { i.refix = on } }

// WithLogger sets the interceptor logger.
func WithLogger(l zerolog.Logger) Option { return func(i *Interceptor) { i.log = l } }

// Wrap returns next decorated with the formatting pass. Without
// WithPrettifier, the prettier installation reachable from the working
// directory is used.
func Wrap(next host.Linter, opts ...Option) *Interceptor {
	i := &Interceptor{
		next:     next,
		registry: rules.Default,
		refix:    true,
		log:      zerolog.Nop(),
	}
	for _, o := range opts {
		o(i)
	}
	if i.prettifier == nil {
		gw := formatter.NewGateway(
			formatter.WithLocal(prettier.LocalLocator(".")),
			formatter.WithBundled(prettier.PathLocator("", ".")),
			formatter.WithLogger(i.log),
		)
		i.prettifier = NewPrettifier(gw, WithPrettifierLogger(i.log))
	}
	return i
}

// Depth returns the number of in-flight VerifyAndFix calls.
func (i *Interceptor) Depth() int { return i.stack.depth() }

// Verify implements host.Linter.
func (i *Interceptor) Verify(code string, cfg *compose.Config, opts host.Options) ([]host.Diagnostic, error) {
	return i.next.Verify(code, cfg, opts)
}

// VerifyAndFix implements host.Linter.
func (i *Interceptor) VerifyAndFix(code string, cfg *compose.Config, opts host.Options) (host.FixReport, error) {
	if !opts.Fix || opts.Filename == "" {
		release := i.stack.push(&frame{id: uuid.New(), sentinel: true})
		defer release()
		return i.next.VerifyAndFix(code, cfg, opts)
	}

	f := &frame{id: uuid.New(), filename: opts.Filename}
	release := i.stack.push(f)
	defer func() {
		release()
		i.log.Debug().Stringer("frame", f.id).Int("depth", i.stack.depth()).Msg("frame popped")
	}()
	i.log.Debug().Stringer("frame", f.id).Str("file", f.filename).Int("depth", i.stack.depth()).Msg("frame pushed")

	report, err := i.next.VerifyAndFix(code, cfg, opts)
	if err != nil {
		return report, err
	}
	if f.err != nil {
		return report, f.err
	}
	if f.ruleID == "" {
		return report, nil
	}
	return i.reconcile(f, report, cfg, opts)
}

// reconcile formats the host's fixed output and refreshes the diagnostics.
func (i *Interceptor) reconcile(f *frame, report host.FixReport, cfg *compose.Config, opts host.Options) (host.FixReport, error) {
	res := i.prettifier.Prettify(f.filename, report.Output, f.settings.PrettifyManifest)
	if res.Skipped {
		return report, nil
	}
	if res.Err != nil {
		i.log.Debug().Err(res.Err).Str("file", f.filename).Msg("format failed")
		report.Diagnostics = append(report.Diagnostics, ErrorDiagnostic(f.ruleID, res.Dialect, res.Err))
		return report, nil
	}
	if res.Output == report.Output {
		return report, nil
	}

	report.Fixed = true
	if len(report.Diagnostics) == 0 {
		report.Output = res.Output
		return report, nil
	}

	output := res.Output
	diags, err := i.next.Verify(output, cfg, opts)
	if err != nil {
		return report, err
	}
	if fixer, ok := i.next.(host.Fixer); ok && i.refix && len(diags) > 0 {
		output, diags = fixer.ApplyFixes(output, diags)
	}
	report.Output = output
	report.Diagnostics = diags
	return report, nil
}
