package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "compose",
		Short:         "compose renders templated images",
		Long:          `compose layers images, rounded rectangles and text onto a background according to a JSON template, substituting {{placeholders}} from request data.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags (available to all commands)
	root.PersistentFlags().StringP("config", "c", "compose.yaml", "Path to the YAML configuration file")
	root.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error); overrides the configuration")

	root.AddCommand(
		newServeCmd(),
		newRenderCmd(),
		newValidateCmd(),
		newFontsCmd(),
		newVersionCmd(),
	)
	return root
}
