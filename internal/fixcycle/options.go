package fixcycle

import (
	"github.com/rs/zerolog"

	"github.com/donaldgifford/fixfmt/internal/config"
)

// ConfigPrettifier builds the formatting pass described by the formatter
// section of cfg.
func ConfigPrettifier(cfg *config.Config, f Formatter, log zerolog.Logger) *Prettifier {
	return NewPrettifier(f,
		WithFallbackDialect(cfg.Formatter.FallbackParser),
		WithPrettifierLogger(log),
	)
}

// ConfigOptions returns the Wrap options for cfg: the formatting pass over
// f and the fix section's refix switch.
func ConfigOptions(cfg *config.Config, f Formatter, log zerolog.Logger) []Option {
	return []Option{
		WithPrettifier(ConfigPrettifier(cfg, f, log)),
		WithRefix(cfg.Fix.RefixAfterFormat),
		WithLogger(log),
	}
}
