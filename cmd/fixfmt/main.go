// Package main is the entry point for fixfmt.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// Build-time variables set via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// exitCode is set by commands that report through exit status rather than
// errors.
var exitCode int

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "fixfmt",
		Short:        "Format source files the way the lint fix cycle does",
		Long:         "fixfmt formats files with prettier, sorts package manifests and composes lint configurations.",
		Version:      version,
		SilenceUsage: true,
	}
	root.PersistentFlags().String("config", "", "path to fixfmt config file")

	root.AddCommand(newFmtCmd())
	root.AddCommand(newComposeCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(2)
	}
	os.Exit(exitCode)
}
