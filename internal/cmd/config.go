package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/Digital-Shane/scrappy/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCommand(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or inspect the configuration file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath(global)
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.DefaultConfig().Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(global.cfgPath, global.profile)
			if err != nil {
				return err
			}
			shown := *cfg
			shown.TMDBAPIKey = mask(shown.TMDBAPIKey)
			shown.TVDBAPIKey = mask(shown.TVDBAPIKey)

			data, err := json.MarshalIndent(shown, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			fmt.Fprintf(cmd.OutOrStdout(), "profiles: %s\n", strings.Join(cfg.ProfileNames(), ", "))
			return nil
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}

func configPath(global *globalOptions) (string, error) {
	if global.cfgPath != "" {
		return global.cfgPath, nil
	}
	return config.ConfigPath()
}

// mask hides all but the last four characters of a secret.
func mask(secret string) string {
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", len(secret)-4) + secret[len(secret)-4:]
}
