package runner_test

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// fakePrettier collapses runs of spaces and fails on "<<<" the way prettier
// reports syntax errors.
const fakePrettier = `#!/bin/sh
input=$(cat)
case "$input" in
*'<<<'*)
	echo "[error] stdin: SyntaxError: Unexpected token (1:9)" >&2
	echo "[error] > 1 | let x = <<<" >&2
	exit 2
	;;
esac
printf '%s\n' "$input" | sed -e 's/  */ /g'
`

// binaryPath builds the fixfmt binary and returns its path.
func binaryPath(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake prettier is a shell script")
	}
	dir := t.TempDir()
	bin := filepath.Join(dir, "fixfmt")

	cmd := exec.CommandContext(t.Context(), "go", "build", "-o", bin, "../../cmd/fixfmt")
	cmd.Dir = filepath.Join(projectRoot(t), "internal", "runner")
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("failed to build binary: %v\n%s", err, out)
	}
	return bin
}

func projectRoot(t *testing.T) string {
	t.Helper()
	_, filename, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(filename), "..", "..")
}

// workspace writes the fake prettier and a config pointing at it, and
// returns the directory and the config path.
func workspace(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	exe := filepath.Join(dir, "fake-prettier")
	if err := os.WriteFile(exe, []byte(fakePrettier), 0o755); err != nil {
		t.Fatal(err)
	}
	cfg := filepath.Join(dir, "fixfmt.yml")
	if err := os.WriteFile(cfg, []byte("formatter:\n  executable: "+exe+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir, cfg
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("unexpected error: %v", err)
	}
	return exitErr.ExitCode()
}

func TestIntegrationStdinFormat(t *testing.T) {
	bin := binaryPath(t)
	_, cfg := workspace(t)

	cmd := exec.CommandContext(t.Context(), bin, "fmt", "--config", cfg, "--stdin-filepath", "a.js")
	cmd.Stdin = strings.NewReader("const  a  = 1\n")
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out) != "const a = 1\n" {
		t.Errorf("stdin format: got %q, want %q", string(out), "const a = 1\n")
	}
}

func TestIntegrationCheck(t *testing.T) {
	bin := binaryPath(t)
	_, cfg := workspace(t)

	tests := []struct {
		input string
		want  int
	}{
		{"const a = 1\n", 0},
		{"const  a = 1\n", 1},
		{"let x = <<<\n", 2},
	}
	for _, tt := range tests {
		cmd := exec.CommandContext(t.Context(), bin, "fmt", "--config", cfg, "--check")
		cmd.Stdin = strings.NewReader(tt.input)
		if got := exitCode(t, cmd.Run()); got != tt.want {
			t.Errorf("check %q: exit %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestIntegrationSyntaxErrorDiagnostic(t *testing.T) {
	bin := binaryPath(t)
	dir, cfg := workspace(t)
	path := filepath.Join(dir, "a.js")
	if err := os.WriteFile(path, []byte("let x = <<<\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cmd := exec.CommandContext(t.Context(), bin, "fmt", "--config", cfg, path)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if got := exitCode(t, cmd.Run()); got != 2 {
		t.Errorf("exit %d, want 2", got)
	}
	want := path + ":1:9: Parsing error: Unexpected token - parser:babel (fixfmt/prettier)"
	if !strings.Contains(stderr.String(), want) {
		t.Errorf("stderr: got %q, want it to contain %q", stderr.String(), want)
	}
}

func TestIntegrationDiff(t *testing.T) {
	bin := binaryPath(t)
	_, cfg := workspace(t)

	cmd := exec.CommandContext(t.Context(), bin, "fmt", "--config", cfg, "--diff", "--color", "off")
	cmd.Stdin = strings.NewReader("a  =  1\n")
	out, err := cmd.Output()
	if got := exitCode(t, err); got != 1 {
		t.Errorf("diff with changes: exit %d, want 1", got)
	}

	output := string(out)
	if !strings.Contains(output, "-a  =  1") || !strings.Contains(output, "+a = 1") {
		t.Errorf("diff output: %s", output)
	}
}

func TestIntegrationWriteManifest(t *testing.T) {
	bin := binaryPath(t)
	dir, cfg := workspace(t)
	path := filepath.Join(dir, "package.json")
	if err := os.WriteFile(path, []byte(`{"version":"1.0.0","name":"x"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	cmd := exec.CommandContext(t.Context(), bin, "fmt", "--config", cfg, path)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("write: %v\n%s", err, out)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "{\n \"name\": \"x\",\n \"version\": \"1.0.0\"\n}\n"
	if string(data) != want {
		t.Errorf("file after write: got %q, want %q", string(data), want)
	}
}

func TestIntegrationVersion(t *testing.T) {
	bin := binaryPath(t)

	out, err := exec.CommandContext(t.Context(), bin, "version").Output()
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(string(out), "fixfmt ") {
		t.Errorf("version: got %q", string(out))
	}
}

func TestIntegrationMissingFile(t *testing.T) {
	bin := binaryPath(t)
	_, cfg := workspace(t)

	err := exec.CommandContext(t.Context(), bin, "fmt", "--config", cfg, "/nonexistent/file.js").Run()
	if got := exitCode(t, err); got != 2 {
		t.Errorf("missing file: exit %d, want 2", got)
	}
}

func TestIntegrationCompose(t *testing.T) {
	bin := binaryPath(t)
	dir, cfg := workspace(t)
	lint := filepath.Join(dir, ".eslintrc.yml")
	content := `plugins: [react]
rules:
  indent: [error, 4]
overrides:
  - files: ["*.test.js"]
    rules:
      no-console: "off"
`
	if err := os.WriteFile(lint, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := exec.CommandContext(t.Context(), bin, "compose", "--config", cfg, "-c", lint).Output()
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	for _, want := range []string{"- react", "- fixfmt", "indent: [error, 4]", "fixfmt/prettier: warn", "overrides:"} {
		if !strings.Contains(string(out), want) {
			t.Errorf("compose output missing %q:\n%s", want, out)
		}
	}

	out, err = exec.CommandContext(t.Context(), bin, "compose", "--config", cfg, "-c", lint, "--file", "a.test.js").Output()
	if err != nil {
		t.Fatalf("compose --file: %v", err)
	}
	if !strings.Contains(string(out), "no-console:") || strings.Contains(string(out), "overrides:") {
		t.Errorf("compose --file output:\n%s", out)
	}

	explicit := filepath.Join(dir, "explicit.yml")
	if err := os.WriteFile(explicit, []byte("rules:\n  indent: [error, 8]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err = exec.CommandContext(t.Context(), bin, "compose", "--config", cfg, "-c", lint, "--explicit", explicit, "--file", "a.js").Output()
	if err != nil {
		t.Fatalf("compose --explicit: %v", err)
	}
	if !strings.Contains(string(out), "indent: [error, 8]") {
		t.Errorf("compose --explicit output:\n%s", out)
	}
}
