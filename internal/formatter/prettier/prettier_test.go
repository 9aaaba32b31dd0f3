package prettier

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/fixfmt/internal/formatter"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestResolveConfigFormats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"yaml rc", ".prettierrc", "semi: false\nprintWidth: 100\n"},
		{"json rc", ".prettierrc.json", `{"semi": false, "printWidth": 100}`},
		{"yml rc", ".prettierrc.yml", "semi: false\nprintWidth: 100\n"},
		{"toml rc", ".prettierrc.toml", "semi = false\nprintWidth = 100\n"},
		{"manifest", "package.json", `{"name": "x", "prettier": {"semi": false, "printWidth": 100}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, filepath.Join(dir, tt.file), tt.content)

			got, err := New("prettier", WithDir(dir)).ResolveConfig(dir, false)
			require.NoError(t, err)
			assert.Equal(t, formatter.Options{"semi": false, "printWidth": 100}, got)
		})
	}
}

func TestResolveConfigSearchesParents(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "package.json"), `{"name": "x"}`)
	writeFile(t, filepath.Join(dir, ".prettierrc.json"), `{"singleQuote": true}`)
	sub := filepath.Join(dir, "src", "deep")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	got, err := New("prettier").ResolveConfig(sub, false)
	require.NoError(t, err)
	assert.Equal(t, formatter.Options{"singleQuote": true}, got)
}

func TestResolveConfigOverrides(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".prettierrc.yaml"), `
tabWidth: 2
overrides:
  - files: "*.md"
    options:
      proseWrap: always
  - files: ["src/**/*.ts"]
    excludeFiles: "*.d.ts"
    options:
      tabWidth: 4
`)
	e := New("prettier", WithDir(dir))

	got, err := e.ResolveConfig("docs/README.md", false)
	require.NoError(t, err)
	assert.Equal(t, formatter.Options{"tabWidth": 2, "proseWrap": "always"}, got)

	got, err = e.ResolveConfig("src/lib/a.ts", false)
	require.NoError(t, err)
	assert.Equal(t, 4, got["tabWidth"])

	got, err = e.ResolveConfig("src/lib/a.d.ts", false)
	require.NoError(t, err)
	assert.Equal(t, 2, got["tabWidth"])

	got, err = e.ResolveConfig(dir, false)
	require.NoError(t, err)
	assert.Equal(t, formatter.Options{"tabWidth": 2}, got)
}

func TestResolveConfigEditorConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".editorconfig"), `root = true

[*]
indent_style = space
indent_size = 4
end_of_line = lf

[*.{js,ts}]
max_line_length = 100
quote_type = single
`)
	writeFile(t, filepath.Join(dir, ".prettierrc"), "tabWidth: 2\n")
	e := New("prettier", WithDir(dir))

	got, err := e.ResolveConfig("src/a.ts", true)
	require.NoError(t, err)
	assert.Equal(t, formatter.Options{
		"useTabs":     false,
		"tabWidth":    2,
		"endOfLine":   "lf",
		"printWidth":  100,
		"singleQuote": true,
	}, got)

	got, err = e.ResolveConfig(dir, true)
	require.NoError(t, err)
	_, ok := got["printWidth"]
	assert.False(t, ok, "extension sections do not apply to a directory")

	got, err = e.ResolveConfig("src/a.ts", false)
	require.NoError(t, err)
	assert.Equal(t, formatter.Options{"tabWidth": 2}, got)
}

func TestResolveConfigCache(t *testing.T) {
	dir := t.TempDir()
	rc := filepath.Join(dir, ".prettierrc")
	writeFile(t, rc, "semi: true\n")
	e := New("prettier", WithDir(dir))

	got, err := e.ResolveConfig(dir, false)
	require.NoError(t, err)
	assert.Equal(t, true, got["semi"])

	writeFile(t, rc, "semi: false\n")
	got, err = e.ResolveConfig(dir, false)
	require.NoError(t, err)
	assert.Equal(t, true, got["semi"], "served from cache")

	e.ClearConfigCache()
	got, err = e.ResolveConfig(dir, false)
	require.NoError(t, err)
	assert.Equal(t, false, got["semi"])
}

func TestResolveConfigInvalid(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".prettierrc.json"), `{"semi": `)
	_, err := New("prettier").ResolveConfig(dir, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".prettierrc.json")
}

func TestFileInfo(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".prettierignore"), "# build output\ndist/\n*.min.js\n")
	e := New("prettier", WithDir(dir))

	tests := []struct {
		path    string
		ignored bool
		parser  string
	}{
		{"src/a.ts", false, "typescript"},
		{"dist/a.js", true, "babel"},
		{"lib/x.min.js", true, "babel"},
		{"node_modules/pkg/index.js", true, "babel"},
		{"package.json", false, "json-stringify"},
		{"README.md", false, "markdown"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			info, err := e.FileInfo(tt.path, ".prettierignore")
			require.NoError(t, err)
			assert.Equal(t, tt.ignored, info.Ignored)
			assert.Equal(t, tt.parser, info.Parser)
		})
	}

	info, err := e.FileInfo("dist/a.js", "missing-ignore")
	require.NoError(t, err)
	assert.False(t, info.Ignored)
}

func TestInferParser(t *testing.T) {
	tests := map[string]string{
		"a.jsx":                  "babel",
		"b.MJS":                  "babel",
		"c.vue":                  "vue",
		"d.graphql":              "graphql",
		"e.mdx":                  "mdx",
		"app.component.html":     "angular",
		"index.html":             "html",
		"unknown.xyz":            "",
		"nested/package.json":    "json-stringify",
		`windows\style\file.css`: "css",
	}
	for path, want := range tests {
		assert.Equal(t, want, InferParser(path), path)
	}
}

func TestArgs(t *testing.T) {
	args, err := Args(formatter.Options{
		"printWidth":     120,
		"semi":           false,
		"singleQuote":    true,
		"trailingComma":  "none",
		"parser":         "babel",
		"filepath":       "src/a.js",
		"overrides":      []any{},
		"plugins":        []any{"prettier-plugin-foo"},
		"embeddedFormat": nil,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"--parser=babel",
		"--plugin=prettier-plugin-foo",
		"--print-width=120",
		"--no-semi",
		"--single-quote",
		"--trailing-comma=none",
		"--stdin-filepath", "src/a.js",
	}, args)

	_, err = Args(formatter.Options{"weird": struct{}{}})
	require.Error(t, err)
}

func TestFormatRunsExecutable(t *testing.T) {
	var gotArgs []string
	var gotStdin string
	e := New("/bin/prettier", WithRunner(func(exe string, args []string, stdin string) (string, string, error) {
		assert.Equal(t, "/bin/prettier", exe)
		gotArgs, gotStdin = args, stdin
		return "const a = 1\n", "", nil
	}))

	out, err := e.Format("const a=1", formatter.Options{"semi": false, "filepath": "a.js"})
	require.NoError(t, err)
	assert.Equal(t, "const a = 1\n", out)
	assert.Equal(t, "const a=1", gotStdin)
	assert.Equal(t, []string{"--no-semi", "--stdin-filepath", "a.js"}, gotArgs)
}

func TestFormatSyntaxError(t *testing.T) {
	stderr := "[error] src/a.js: SyntaxError: Unexpected token (1:11)\n" +
		"[error] > 1 | const a = {\n" +
		"[error]     |           ^\n"
	e := New("prettier", WithRunner(func(string, []string, string) (string, string, error) {
		return "", stderr, &exec.ExitError{}
	}))

	_, err := e.Format("const a = {", nil)
	var perr *formatter.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 1, perr.Line)
	assert.Equal(t, 11, perr.Column)
	assert.Equal(t, "> 1 | const a = {\n    |           ^", perr.CodeFrame)
	assert.Equal(t, "Unexpected token (1:11)\n"+perr.CodeFrame, perr.Message)
}

func TestFormatInternalError(t *testing.T) {
	boom := errors.New("exec: not started")
	e := New("prettier", WithRunner(func(string, []string, string) (string, string, error) {
		return "", "", boom
	}))
	_, err := e.Format("x", nil)
	require.ErrorIs(t, err, boom)

	var perr *formatter.ParseError
	assert.False(t, errors.As(err, &perr))

	e = New("prettier", WithRunner(func(string, []string, string) (string, string, error) {
		return "", "[error] Couldn't resolve parser \"nope\".\n", &exec.ExitError{}
	}))
	_, err = e.Format("x", formatter.Options{"parser": "nope"})
	require.Error(t, err)
	assert.Equal(t, `prettier: Couldn't resolve parser "nope".`, err.Error())
}

func TestLocalLocator(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "node_modules", ".bin", "prettier")
	writeFile(t, bin, "#!/bin/sh\n")
	sub := filepath.Join(dir, "packages", "app")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	eng, err := LocalLocator(sub)()
	require.NoError(t, err)
	assert.Equal(t, bin, eng.(*Engine).Executable())

	_, err = LocalLocator(t.TempDir())()
	assert.ErrorIs(t, err, formatter.ErrNotFound)
}

func TestPathLocatorMissing(t *testing.T) {
	_, err := PathLocator("fixfmt-no-such-prettier", ".")()
	assert.ErrorIs(t, err, formatter.ErrNotFound)
}
