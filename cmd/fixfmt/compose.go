package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/donaldgifford/fixfmt/internal/compose"
	"github.com/donaldgifford/fixfmt/internal/config"
	"github.com/donaldgifford/fixfmt/internal/preset"
)

func newComposeCmd() *cobra.Command {
	var lintPath, explicitPath, file string

	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Print the lint configuration composed with the recommended preset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath, err := cmd.Flags().GetString("config")
			if err != nil {
				return err
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if lintPath == "" {
				lintPath = cfg.Lint.Config
			}
			if lintPath == "" {
				wd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("getting working directory: %w", err)
				}
				lintPath = compose.Discover(wd)
			}

			user, err := loadOptional(lintPath)
			if err != nil {
				return err
			}
			explicit, err := loadOptional(explicitPath)
			if err != nil {
				return err
			}

			composed, err := preset.Compose(user, explicit)
			if err != nil {
				return err
			}
			if file != "" {
				return printRules(cmd.OutOrStdout(), composed, file)
			}
			return printYAML(cmd.OutOrStdout(), composed.Value())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&lintPath, "lint", "c", "", "lint config to compose (default: discovered in the working directory)")
	f.StringVar(&explicitPath, "explicit", "", "lint config whose rules override everything else")
	f.StringVar(&file, "file", "", "print only the rules in effect for this file")
	return cmd
}

func loadOptional(path string) (compose.Value, error) {
	if path == "" {
		return compose.Null(), nil
	}
	return compose.Load(path)
}

func printRules(w io.Writer, cfg *compose.Config, file string) error {
	specs, err := cfg.ForFile(file)
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(specs))
	for id := range specs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rules := compose.Mapping()
	for _, id := range ids {
		rules = rules.With(id, specs[id].Tuple())
	}
	return printYAML(w, rules)
}

func printYAML(w io.Writer, v compose.Value) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return enc.Close()
}
