package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spigell/skillfit/internal/audit"
)

// Actual version can be specified in build command.
var version = "unknown"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("%s version: %s (model %s, pipeline %s)\n", app, version, audit.ModelVersion, audit.PipelineVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
