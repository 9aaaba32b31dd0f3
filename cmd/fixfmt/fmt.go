package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/donaldgifford/fixfmt/internal/runner"
)

func newFmtCmd() *cobra.Command {
	var (
		opts      runner.Options
		colorMode string
	)

	cmd := &cobra.Command{
		Use:   "fmt [files...]",
		Short: "Format files with prettier. With no files, reads from stdin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch colorMode {
			case "auto":
				opts.Color = !color.NoColor
			case "on":
				opts.Color = true
			case "off":
				opts.Color = false
			default:
				return fmt.Errorf("invalid --color %q (auto|on|off)", colorMode)
			}

			configPath, err := cmd.Flags().GetString("config")
			if err != nil {
				return err
			}
			opts.ConfigPath = configPath
			opts.Files = args
			opts.Stdin = cmd.InOrStdin()
			opts.Stdout = cmd.OutOrStdout()
			opts.Stderr = cmd.ErrOrStderr()

			exitCode = runner.Run(&opts)
			return nil
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.Check, "check", false, "exit 1 if any file is not formatted")
	f.BoolVar(&opts.Diff, "diff", false, "print unified diff of changes")
	f.StringVar(&colorMode, "color", "auto", "colorize diffs (auto|on|off)")
	f.StringVar(&opts.StdinFilepath, "stdin-filepath", "", "file name used to infer the parser for stdin")
	f.BoolVarP(&opts.Quiet, "quiet", "q", false, "suppress informational output")
	f.BoolVarP(&opts.Verbose, "verbose", "v", false, "print files as they are processed")
	return cmd
}
