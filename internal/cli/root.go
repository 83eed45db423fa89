// Package cli defines the tunebox command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tejashwikalptaru/tunebox/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "tunebox [paths...]",
	Short: "TuneBox is a local music player.",
	Long: `TuneBox plays a bundled track manifest together with audio files
picked from the local disk. Without a subcommand it opens the player.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runPlay,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	addPlayFlags(rootCmd)
}

// loadConfig reads the config file named by --config, or the defaults.
func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
