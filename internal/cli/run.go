package cli

import (
	"github.com/spf13/cobra"
)

var runSynthetic bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the ingestion pipeline once",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().RunOnce(cmd.Context(), sourceOverride(runSynthetic))
	},
}

func init() {
	runCmd.Flags().BoolVar(&runSynthetic, "synthetic", false, "Use the synthetic source instead of the configured one")
}
