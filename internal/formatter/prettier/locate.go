package prettier

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/donaldgifford/fixfmt/internal/formatter"
)

// binaryName is the prettier executable name.
const binaryName = "prettier"

// LocalLocator finds node_modules/.bin/prettier in dir or its parents.
func LocalLocator(dir string, opts ...Option) formatter.Locator {
	return func() (formatter.Engine, error) {
		start, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", dir, err)
		}
		for d := start; ; {
			candidate := filepath.Join(d, "node_modules", ".bin", binaryName)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return New(candidate, append([]Option{WithDir(start)}, opts...)...), nil
			}
			parent := filepath.Dir(d)
			if parent == d {
				return nil, fmt.Errorf("no local %s under %s: %w", binaryName, start, formatter.ErrNotFound)
			}
			d = parent
		}
	}
}

// PathLocator finds exe on PATH. An empty exe means prettier; an explicit
// path is used as is.
func PathLocator(exe, dir string, opts ...Option) formatter.Locator {
	if exe == "" {
		exe = binaryName
	}
	return func() (formatter.Engine, error) {
		path, err := exec.LookPath(exe)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", formatter.ErrNotFound, err)
		}
		return New(path, append([]Option{WithDir(dir)}, opts...)...), nil
	}
}
