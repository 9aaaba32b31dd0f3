package prettier

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/donaldgifford/fixfmt/internal/formatter"
)

// defaultIgnores apply even without an ignore file.
var defaultIgnores = []string{
	"node_modules/",
	".git/",
}

// FileInfo implements formatter.Engine. ignorePath is resolved against the
// engine directory; a missing file leaves only the default ignores.
func (e *Engine) FileInfo(path, ignorePath string) (formatter.FileInfo, error) {
	info := formatter.FileInfo{Parser: InferParser(path)}

	matcher, base, err := e.ignoreMatcher(ignorePath)
	if err != nil {
		return info, err
	}

	abs, err := filepath.Abs(e.resolve(path))
	if err != nil {
		return info, fmt.Errorf("resolving %s: %w", path, err)
	}
	rel, err := filepath.Rel(base, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return info, nil
	}
	info.Ignored = matcher.MatchesPath(filepath.ToSlash(rel))
	return info, nil
}

func (e *Engine) ignoreMatcher(ignorePath string) (*ignore.GitIgnore, string, error) {
	if ignorePath == "" {
		ignorePath = ".prettierignore"
	}
	abs, err := filepath.Abs(e.resolve(ignorePath))
	if err != nil {
		return nil, "", fmt.Errorf("resolving %s: %w", ignorePath, err)
	}
	base := filepath.Dir(abs)

	e.mu.Lock()
	defer e.mu.Unlock()
	if m, ok := e.ignores[abs]; ok {
		return m, base, nil
	}

	lines := append([]string(nil), defaultIgnores...)
	data, err := os.ReadFile(abs)
	switch {
	case err == nil:
		lines = append(lines, strings.Split(string(data), "\n")...)
	case !errors.Is(err, fs.ErrNotExist):
		return nil, "", fmt.Errorf("reading %s: %w", abs, err)
	}

	m := ignore.CompileIgnoreLines(lines...)
	e.ignores[abs] = m
	return m, base, nil
}
