package cli

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tejashwikalptaru/tunebox/internal/adapter/static"
	"github.com/tejashwikalptaru/tunebox/internal/logger"
)

var (
	serveAddr string
	serveRoot string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the manifest and bundled audio over HTTP",
	Long: `Serve exposes the web root (music/music-data.json and the files it
references) so a player configured with a manifest URL can stream from it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("addr") {
			settings.Server.Addr = serveAddr
		}
		if cmd.Flags().Changed("root") {
			settings.Manifest.Root = serveRoot
		}

		serverLogger, closer := logger.NewLogger(logger.Config{
			Level:      logger.ParseLevel(settings.Log.Level),
			Format:     settings.Log.Format,
			File:       settings.Log.File,
			MaxSizeMB:  settings.Log.MaxSizeMB,
			MaxBackups: settings.Log.MaxBackups,
			MaxAgeDays: settings.Log.MaxAgeDays,
		})
		defer closer.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		serverLogger.Info("serving web root",
			slog.String("addr", settings.Server.Addr),
			slog.String("root", settings.Manifest.Root),
			slog.String("manifest", settings.Manifest.Path))
		return static.NewServer(settings.Server.Addr, settings.Manifest.Root, settings.Manifest.Path, serverLogger).Run(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	serveCmd.Flags().StringVar(&serveRoot, "root", ".", "web root holding music/music-data.json")
	rootCmd.AddCommand(serveCmd)
}
