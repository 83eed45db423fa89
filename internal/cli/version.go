package cli

import (
	"github.com/spf13/cobra"

	"github.com/tejashwikalptaru/tunebox/internal/app"
)

var versionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		info := app.GetVersionInfo()
		if versionShort {
			cmd.Println(info.Short())
			return
		}
		cmd.Println(info.FullString())
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "print only the release name")
	rootCmd.AddCommand(versionCmd)
	rootCmd.Version = app.GetVersionInfo().Short()
}
