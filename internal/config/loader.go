package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// configFileNames is the ordered list of config file names to search for.
var configFileNames = []string{
	"fixfmt.yml",
	"fixfmt.yaml",
	".fixfmt.yml",
	".fixfmt.yaml",
}

// Discover returns the path of the first config file found in dir or the
// nearest parent that has one, following the standard search order. It
// returns an empty string if no config file is found.
func Discover(dir string) string {
	for {
		for _, name := range configFileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Load reads and parses a fixfmt config file. If configPath is non-empty,
// that file is loaded directly. Otherwise, Load searches upward from the
// current working directory using Discover. If no config file is found,
// DefaultConfig is returned.
//
// Partial YAML files are supported: any fields not specified in the YAML
// retain their default values, and formatter options are layered over the
// default options. A relative base_folder is resolved against the directory
// of the config file.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		configPath = Discover(wd)
	}

	if configPath == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}
		return nil, fmt.Errorf("reading config file %s: %w", configPath, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", configPath, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", configPath, err)
	}

	if cfg.Formatter.BaseFolder != "" && !filepath.IsAbs(cfg.Formatter.BaseFolder) {
		cfg.Formatter.BaseFolder = filepath.Join(filepath.Dir(configPath), cfg.Formatter.BaseFolder)
	}
	return cfg, nil
}

// Validate reports settings that cannot be used.
func (c *Config) Validate() error {
	if _, err := c.Log.ZerologLevel(); err != nil {
		return err
	}
	if c.Formatter.FallbackParser == "" {
		return errors.New("formatter.fallback_parser must not be empty")
	}
	return nil
}

// ZerologLevel parses Level. An empty level means warn.
func (l LogConfig) ZerologLevel() (zerolog.Level, error) {
	if l.Level == "" {
		return zerolog.WarnLevel, nil
	}
	lvl, err := zerolog.ParseLevel(l.Level)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("log.level: %w", err)
	}
	return lvl, nil
}
