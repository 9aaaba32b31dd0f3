package fixcycle

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/fixfmt/internal/compose"
	"github.com/donaldgifford/fixfmt/internal/formatter"
	"github.com/donaldgifford/fixfmt/internal/host"
)

func TestStackReleaseOutOfOrder(t *testing.T) {
	var s stack
	a := &frame{id: uuid.New()}
	b := &frame{id: uuid.New()}

	releaseA := s.push(a)
	releaseB := s.push(b)
	require.Same(t, b, s.top())

	b.capture(RuleID, DefaultSettings())
	releaseA()
	assert.Equal(t, 1, s.depth())
	assert.Same(t, b, s.top())

	releaseB()
	assert.Equal(t, 0, s.depth())
	assert.Nil(t, s.top())
	assert.Empty(t, b.ruleID, "release clears the captured rule id")
}

func TestFrameCaptureIsWriteOnce(t *testing.T) {
	f := &frame{}
	assert.True(t, f.capture("a", Settings{PrettifyManifest: true}))
	assert.False(t, f.capture("b", Settings{}))
	assert.Equal(t, "a", f.ruleID)
	assert.True(t, f.settings.PrettifyManifest)

	s := &frame{sentinel: true}
	assert.False(t, s.capture("a", Settings{}))
	assert.Empty(t, s.ruleID)
}

func TestFrameFailKeepsFirst(t *testing.T) {
	first, second := errors.New("first"), errors.New("second")
	f := &frame{}
	f.fail(first)
	f.fail(second)
	assert.Equal(t, first, f.err)
}

func TestDecodeSettings(t *testing.T) {
	tests := []struct {
		name    string
		options []compose.Value
		want    Settings
		wantErr bool
	}{
		{name: "none", want: Settings{PrettifyManifest: true}},
		{name: "null", options: []compose.Value{compose.Null()}, want: Settings{PrettifyManifest: true}},
		{
			name:    "manifest off",
			options: []compose.Value{compose.FromAny(map[string]any{"prettify-manifest": false})},
			want:    Settings{},
		},
		{
			name:    "weak bool",
			options: []compose.Value{compose.FromAny(map[string]any{"prettify-manifest": "false"})},
			want:    Settings{},
		},
		{
			name: "rules",
			options: []compose.Value{compose.FromAny(map[string]any{
				"rules": map[string]any{"demo/a": "warn"},
			})},
			want: Settings{PrettifyManifest: true, Rules: map[string]any{"demo/a": "warn"}},
		},
		{name: "scalar", options: []compose.Value{compose.FromAny("yes")}, wantErr: true},
		{
			name:    "bad field type",
			options: []compose.Value{compose.FromAny(map[string]any{"rules": "demo/a"})},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeSettings(tt.options)
			if tt.wantErr {
				var cfgErr *compose.ConfigurationError
				require.ErrorAs(t, err, &cfgErr)
				assert.Equal(t, "rules."+RuleID, cfgErr.Path)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSubRules(t *testing.T) {
	s := Settings{Rules: map[string]any{
		"demo/c": "off",
		"demo/b": []any{"error", map[string]any{"max": 1}},
		"demo/a": 1,
	}}
	specs, err := s.SubRules()
	require.NoError(t, err)
	require.Len(t, specs, 2)
	assert.Equal(t, "demo/a", specs[0].ID)
	assert.Equal(t, compose.SeverityWarn, specs[0].Severity)
	assert.Equal(t, "demo/b", specs[1].ID)
	assert.Equal(t, compose.SeverityError, specs[1].Severity)
	assert.Len(t, specs[1].Options, 1)

	_, err = Settings{Rules: map[string]any{"demo/a": "loud"}}.SubRules()
	assert.Error(t, err)
}

func TestErrorDiagnostic(t *testing.T) {
	frame := "> 2 | a b\n    |   ^"
	tests := []struct {
		name string
		err  error
		want host.Diagnostic
	}{
		{
			name: "parse error",
			err: &formatter.ParseError{
				Message:   "Missing semicolon. (2:3)\n" + frame,
				CodeFrame: frame,
				Line:      2,
				Column:    3,
			},
			want: host.Diagnostic{
				RuleID:   RuleID,
				Severity: compose.SeverityError,
				Message:  "Parsing error: Missing semicolon. - parser:babel",
				Line:     2,
				Column:   3,
			},
		},
		{
			name: "parse error without frame",
			err:  &formatter.ParseError{Message: "Unexpected token (1:1)", Line: 1, Column: 1},
			want: host.Diagnostic{
				RuleID:   RuleID,
				Severity: compose.SeverityError,
				Message:  "Parsing error: Unexpected token - parser:babel",
				Line:     1,
				Column:   1,
			},
		},
		{
			name: "internal",
			err:  errors.New("couldn't resolve parser \"babel\""),
			want: host.Diagnostic{
				RuleID:   RuleID,
				Severity: compose.SeverityError,
				Message:  " Prettier error: couldn't resolve parser \"babel\" - parser:babel",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorDiagnostic(RuleID, "babel", tt.err))
		})
	}
}

func TestDialect(t *testing.T) {
	p := NewPrettifier(nil)
	assert.Equal(t, "babel", p.Dialect("markdown"))
	assert.Equal(t, "typescript", p.Dialect("typescript"))
	assert.Equal(t, "", p.Dialect(""))

	p = NewPrettifier(nil, WithFallbackDialect("espree"))
	assert.Equal(t, "espree", p.Dialect("lwc"))
}

func TestChainOrder(t *testing.T) {
	var got []string
	into := host.Listeners{"Program": func(host.Node) { got = append(got, "a") }}
	chain(into, host.Listeners{
		"Program":    func(host.Node) { got = append(got, "b") },
		"Identifier": func(host.Node) { got = append(got, "id") },
		"Skipped":    nil,
	})
	chain(into, host.Listeners{"Program": func(host.Node) { got = append(got, "c") }})

	into["Program"](nil)
	into["Identifier"](nil)
	assert.Equal(t, []string{"a", "b", "c", "id"}, got)
	assert.NotContains(t, into, "Skipped")
}
