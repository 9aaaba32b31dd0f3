package compose

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doc(t *testing.T, src string) Value {
	t.Helper()
	v, err := Parse("config.yml", []byte(src))
	require.NoError(t, err)
	return v
}

func TestComposeScalarsLaterWins(t *testing.T) {
	a := doc(t, "root: true\nparser: espree\n")
	b := doc(t, "parser: babel\n")

	got, err := Compose(a, b, Combine)
	require.NoError(t, err)

	parser, _ := got.Get("parser")
	s, _ := parser.Text()
	assert.Equal(t, "babel", s)

	root, ok := got.Get("root")
	require.True(t, ok)
	assert.Equal(t, true, root.Scalar())
	assert.Equal(t, []string{"parser", "root"}, got.Keys())
}

func TestComposeMappingsRecurse(t *testing.T) {
	a := doc(t, "env:\n  browser: true\n  node: false\n")
	b := doc(t, "env:\n  node: true\n  es6: true\n")

	got, err := Compose(a, b, Combine)
	require.NoError(t, err)

	env, _ := got.Get("env")
	want := map[string]any{"browser": true, "node": true, "es6": true}
	if diff := cmp.Diff(want, env.Interface()); diff != "" {
		t.Errorf("env mismatch (-want +got):\n%s", diff)
	}
}

func TestComposeRuleTuplesReplaceWholly(t *testing.T) {
	a := doc(t, "rules:\n  indent: [error, 4, {SwitchCase: 1}]\n  semi: [error, always]\n")
	b := doc(t, "rules:\n  indent: [warn, 2]\n  semi: off\n")

	got, err := Compose(a, b, Combine)
	require.NoError(t, err)

	rules, _ := got.Get("rules")
	indent, _ := rules.Get("indent")
	assert.Equal(t, KindRuleOptions, indent.Kind())
	assert.Equal(t, []any{"warn", float64(2)}, indent.Interface())

	semi, _ := rules.Get("semi")
	assert.Equal(t, KindScalar, semi.Kind())
	assert.Equal(t, "off", semi.Scalar())
}

func TestComposeSequences(t *testing.T) {
	tests := []struct {
		name string
		mode ArrayMode
		a, b string
		key  string
		want []any
	}{
		{
			name: "plugins always combine",
			mode: Concat,
			a:    "plugins: [react, vue]\n",
			b:    "plugins: [vue, unicorn]\n",
			key:  "plugins",
			want: []any{"react", "vue", "unicorn"},
		},
		{
			name: "extends string joins sequence",
			mode: Concat,
			a:    "extends: [standard]\n",
			b:    "extends: prettier\n",
			key:  "extends",
			want: []any{"standard", "prettier"},
		},
		{
			name: "concat keeps duplicates",
			mode: Concat,
			a:    "ignorePatterns: [dist, build]\n",
			b:    "ignorePatterns: [dist]\n",
			key:  "ignorePatterns",
			want: []any{"dist", "build", "dist"},
		},
		{
			name: "combine drops duplicates",
			mode: Combine,
			a:    "ignorePatterns: [dist, build]\n",
			b:    "ignorePatterns: [dist, coverage]\n",
			key:  "ignorePatterns",
			want: []any{"dist", "build", "coverage"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compose(doc(t, tt.a), doc(t, tt.b), tt.mode)
			require.NoError(t, err)
			f, _ := got.Get(tt.key)
			assert.Equal(t, tt.want, f.Interface())
		})
	}
}

func TestComposeOverridesConcatenate(t *testing.T) {
	a := doc(t, "overrides:\n  - files: ['*.ts']\n    rules: {semi: off}\n")
	b := doc(t, "overrides:\n  - files: ['*.ts']\n    rules: {semi: off}\n  - files: ['*.vue']\n")

	got, err := Compose(a, b, Combine)
	require.NoError(t, err)

	overrides, _ := got.Get("overrides")
	require.Equal(t, 3, overrides.Len())
	first := overrides.Items()[0]
	files, _ := first.Get("files")
	assert.Equal(t, []string{"*.ts"}, files.Strings())
	last := overrides.Items()[2]
	files, _ = last.Get("files")
	assert.Equal(t, []string{"*.vue"}, files.Strings())
}

func TestComposeRejectsNonContainers(t *testing.T) {
	tests := []struct {
		name       string
		base, addn Value
	}{
		{"scalar addition", Mapping(), Scalar("x")},
		{"null addition", Mapping(), Null()},
		{"scalar base", Scalar(1), Mapping()},
		{"mismatched kinds", Sequence(Scalar("a")), Mapping()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compose(tt.base, tt.addn, Combine)
			require.Error(t, err)
			var cfgErr *ConfigurationError
			assert.True(t, errors.As(err, &cfgErr))
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestComposeNullBase(t *testing.T) {
	b := doc(t, "plugins: [react, react]\n")
	got, err := Compose(Null(), b, Combine)
	require.NoError(t, err)
	plugins, _ := got.Get("plugins")
	assert.Equal(t, []any{"react"}, plugins.Interface())
}

func TestComposeAssociative(t *testing.T) {
	a := doc(t, `
plugins: [react]
env: {browser: true}
rules:
  semi: [error, always]
  quotes: warn
`)
	b := doc(t, `
plugins: [vue, react]
env: {node: true}
rules:
  semi: off
  indent: [error, 2]
`)
	c := doc(t, `
plugins: [unicorn]
rules:
  quotes: [error, single]
  indent: [warn, 4, {SwitchCase: 1}]
`)

	ab, err := Compose(a, b, Combine)
	require.NoError(t, err)
	left, err := Compose(ab, c, Combine)
	require.NoError(t, err)

	bc, err := Compose(b, c, Combine)
	require.NoError(t, err)
	right, err := Compose(a, bc, Combine)
	require.NoError(t, err)

	for _, key := range []string{"plugins", "rules", "env"} {
		l, _ := left.Get(key)
		r, _ := right.Get(key)
		if diff := cmp.Diff(l.Interface(), r.Interface()); diff != "" {
			t.Errorf("%s differs (-left +right):\n%s", key, diff)
		}
	}
	assert.True(t, left.Equal(right))
}

func TestComposeAll(t *testing.T) {
	got, err := ComposeAll(Combine,
		doc(t, "rules: {a: error}\n"),
		Null(),
		doc(t, "rules: {b: warn}\n"),
		doc(t, "rules: {a: off}\n"),
	)
	require.NoError(t, err)
	rules, _ := got.Get("rules")
	assert.Equal(t, map[string]any{"a": "off", "b": "warn"}, rules.Interface())
}

func TestComposeDoesNotMutateInputs(t *testing.T) {
	a := doc(t, "plugins: [react]\nrules: {semi: error}\n")
	b := doc(t, "plugins: [vue]\nrules: {quotes: warn}\n")
	before := a.Interface()

	_, err := Compose(a, b, Combine)
	require.NoError(t, err)

	assert.Equal(t, before, a.Interface())
}
