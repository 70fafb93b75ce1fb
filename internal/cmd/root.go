package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	cfgPath  string
	profile  string
	logLevel string
}

// NewRootCommand builds the scrappy command tree.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "scrappy",
		Short: "Rename TV episode files using an online catalog",
		Long: `scrappy identifies which TV series a set of video files belongs to, looks the
series up on TMDB or TVDB and renames every file after its episode.

Renames are applied as one transaction: if any rename fails the files already
renamed are restored. Sessions are journaled so "scrappy undo" can reverse them
later.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&opts.cfgPath, "cfg", "c", "", "Config file (default ~/.scrappy/config.json)")
	root.PersistentFlags().StringVarP(&opts.profile, "profile", "p", "", "Named settings profile from the config file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error")

	root.AddCommand(
		newRenameCommand(opts),
		newUndoCommand(opts),
		newConfigCommand(opts),
	)
	return root
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
