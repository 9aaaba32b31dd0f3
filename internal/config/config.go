// Package config defines the configuration types and defaults for fixfmt.
package config

// Config is the top-level configuration.
type Config struct {
	Formatter FormatterConfig `yaml:"formatter"`
	Fix       FixConfig       `yaml:"fix"`
	Lint      LintConfig      `yaml:"lint"`
	Log       LogConfig       `yaml:"log"`
}

// FormatterConfig controls how the formatter is found and invoked.
type FormatterConfig struct {
	// BaseFolder is where configuration discovery starts.
	BaseFolder string `yaml:"base_folder"`
	// IgnorePath is the ignore file, relative to BaseFolder.
	IgnorePath string `yaml:"ignore_path"`
	// EditorConfig includes .editorconfig in discovery.
	EditorConfig bool `yaml:"editorconfig"`
	// FallbackParser replaces parsers that cannot run inside the fix cycle.
	FallbackParser string `yaml:"fallback_parser"`
	// Executable overrides the formatter found on PATH.
	Executable string `yaml:"executable"`
	// Options are the lowest-precedence formatter options.
	Options map[string]any `yaml:"options"`
}

// FixConfig controls the formatting pass of the fix cycle.
type FixConfig struct {
	PrettifyManifest bool `yaml:"prettify_manifest"`
	RefixAfterFormat bool `yaml:"refix_after_format"`
}

// LintConfig points at the lint configuration used by the compose command.
type LintConfig struct {
	Config  string   `yaml:"config"`
	Exclude []string `yaml:"exclude"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
}

// DefaultOptions are the formatter options applied under any discovered
// configuration.
func DefaultOptions() map[string]any {
	return map[string]any{
		"printWidth":     120,
		"tabWidth":       2,
		"singleQuote":    true,
		"semi":           false,
		"trailingComma":  "none",
		"arrowParens":    "avoid",
		"bracketSpacing": true,
		"endOfLine":      "lf",
	}
}

// DefaultConfig returns a Config with all default values.
func DefaultConfig() *Config {
	return &Config{
		Formatter: FormatterConfig{
			BaseFolder:     ".",
			IgnorePath:     ".prettierignore",
			EditorConfig:   true,
			FallbackParser: "babel",
			Options:        DefaultOptions(),
		},
		Fix: FixConfig{
			PrettifyManifest: true,
			RefixAfterFormat: true,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}
