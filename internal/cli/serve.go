package cli

import (
	"github.com/spf13/cobra"
)

var serveSynthetic bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the pipeline on the configured interval",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Serve(cmd.Context(), sourceOverride(serveSynthetic))
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveSynthetic, "synthetic", false, "Use the synthetic source instead of the configured one")
}
