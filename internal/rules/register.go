package rules

import (
	"github.com/donaldgifford/fixfmt/internal/host"
)

// Default is the process registry used by the CLI. Packages that ship rules
// add them from init.
var Default = New()

// Register adds a rule to the Default registry.
func Register(id string, rule host.Rule) {
	Default.RegisterRule(id, rule)
}

// Resolve looks id up in the Default registry.
func Resolve(id string) (host.Rule, error) {
	return Default.Resolve(id)
}
