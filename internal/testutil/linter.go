package testutil

import (
	"sort"
	"strings"

	"github.com/donaldgifford/fixfmt/internal/compose"
	"github.com/donaldgifford/fixfmt/internal/host"
	"github.com/donaldgifford/fixfmt/internal/rules"
)

// ProgramEvent is the only event FakeLinter emits. Its node is the text.
const ProgramEvent = "Program"

// DoubleSpaceID is the id DoubleSpaceRule reports under.
const DoubleSpaceID = "demo/no-double-space"

// FakeLinter is a minimal host. VerifyAndFix runs During, applies
// NativeFix when fixing, then lints the result with every enabled rule of
// the config that applies to the file.
type FakeLinter struct {
	Registry  *rules.Registry
	NativeFix func(code string) string
	During    func(code string) error
	Err       error
	Panic     any

	FixCalls    int
	VerifyCalls int
	ApplyCalls  int
}

// VerifyAndFix implements host.Linter.
func (l *FakeLinter) VerifyAndFix(code string, cfg *compose.Config, opts host.Options) (host.FixReport, error) {
	l.FixCalls++
	if l.During != nil {
		if err := l.During(code); err != nil {
			return host.FixReport{Output: code}, err
		}
	}
	if l.Panic != nil {
		panic(l.Panic)
	}
	if l.Err != nil {
		return host.FixReport{Output: code}, l.Err
	}

	out := code
	if opts.Fix && l.NativeFix != nil {
		out = l.NativeFix(code)
	}
	diags, err := l.lint(out, cfg, opts.Filename)
	if err != nil {
		return host.FixReport{Output: code}, err
	}
	return host.FixReport{Fixed: out != code, Output: out, Diagnostics: diags}, nil
}

// Verify implements host.Linter.
func (l *FakeLinter) Verify(code string, cfg *compose.Config, opts host.Options) ([]host.Diagnostic, error) {
	l.VerifyCalls++
	return l.lint(code, cfg, opts.Filename)
}

// ApplyFixes implements host.Fixer.
func (l *FakeLinter) ApplyFixes(code string, diags []host.Diagnostic) (string, []host.Diagnostic) {
	l.ApplyCalls++
	var fixable, remaining []host.Diagnostic
	for _, d := range diags {
		if d.Fix != nil {
			fixable = append(fixable, d)
		} else {
			remaining = append(remaining, d)
		}
	}
	sort.Slice(fixable, func(i, j int) bool { return fixable[i].Fix.Start > fixable[j].Fix.Start })
	for _, d := range fixable {
		code = code[:d.Fix.Start] + d.Fix.Text + code[d.Fix.End:]
	}
	return code, remaining
}

func (l *FakeLinter) lint(code string, cfg *compose.Config, filename string) ([]host.Diagnostic, error) {
	if cfg == nil {
		return nil, nil
	}
	specs, err := cfg.ForFile(filename)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(specs))
	for id := range specs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var diags []host.Diagnostic
	for _, id := range ids {
		spec := specs[id]
		if !spec.Enabled() {
			continue
		}
		rule, err := l.Registry.Resolve(id)
		if err != nil {
			return nil, err
		}
		ctx := &host.RuleContext{
			ID:       id,
			Options:  spec.Options,
			Filename: filename,
			Report: func(d host.Diagnostic) {
				if d.RuleID == "" {
					d.RuleID = id
				}
				if d.Severity == compose.SeverityOff {
					d.Severity = spec.Severity
				}
				diags = append(diags, d)
			},
		}
		if h := rule.Create(ctx)[ProgramEvent]; h != nil {
			h(code)
		}
	}
	return diags, nil
}

// DoubleSpaceRule reports every run of two spaces after indentation, with
// a fix collapsing it.
func DoubleSpaceRule() host.Rule {
	return host.RuleFunc(func(ctx *host.RuleContext) host.Listeners {
		return host.Listeners{
			ProgramEvent: func(n host.Node) {
				text, _ := n.(string)
				offset := 0
				for lineNo, line := range strings.Split(text, "\n") {
					body := strings.TrimLeft(line, " \t")
					start := len(line) - len(body)
					for i := 0; i+1 < len(body); i++ {
						if body[i] == ' ' && body[i+1] == ' ' {
							at := offset + start + i
							ctx.Report(host.Diagnostic{
								RuleID:  ctx.ID,
								Message: "Multiple spaces found.",
								Line:    lineNo + 1,
								Column:  start + i + 1,
								Fix:     &host.Fix{Start: at, End: at + 2, Text: " "},
							})
							i++
						}
					}
					offset += len(line) + 1
				}
			},
		}
	})
}

// RecordingRule appends "<id>:<event>" to log for every event it handles.
func RecordingRule(log *[]string, events ...string) host.Rule {
	return host.RuleFunc(func(ctx *host.RuleContext) host.Listeners {
		ls := host.Listeners{}
		for _, e := range events {
			ls[e] = func(host.Node) { *log = append(*log, ctx.ID+":"+e) }
		}
		return ls
	})
}
