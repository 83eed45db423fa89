package cli

import (
	"github.com/spf13/cobra"

	"github.com/tejashwikalptaru/tunebox/internal/app"
	"github.com/tejashwikalptaru/tunebox/internal/config"
)

var mockAudio bool

var playCmd = &cobra.Command{
	Use:   "play [paths...]",
	Short: "Open the player, adding the given files and folders",
	Args:  cobra.ArbitraryArgs,
	RunE:  runPlay,
}

func init() {
	addPlayFlags(playCmd)
	rootCmd.AddCommand(playCmd)
}

func addPlayFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&mockAudio, "mock-audio", false, "use the silent mock audio backend")
}

func runPlay(cmd *cobra.Command, args []string) error {
	settings, err := loadConfig()
	if err != nil {
		return err
	}
	if mockAudio {
		settings.Player.Backend = config.BackendMock
	}

	// Create the application with dependency injection
	application, err := app.NewApplication(app.Config{
		Settings:  settings,
		OpenPaths: args,
	})
	if err != nil {
		return err
	}

	// Ensure a graceful shutdown
	defer func() {
		if err := application.Shutdown(); err != nil {
			cmd.PrintErrf("shutdown error: %v\n", err)
		}
	}()

	// Run application (blocks until the window closed)
	return application.Run()
}
