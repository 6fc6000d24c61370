package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/skillfit/internal/pipeline"
)

var stagesCmd = &cobra.Command{
	Use:   "stages",
	Short: "Show the evaluation stages and which of them are disabled",
	Run: func(_ *cobra.Command, _ []string) {
		logger, config := setup()

		cfg := config.pipelineConfig()
		if err := cfg.Validate(); err != nil {
			logger.Fatal("invalid pipeline config", zap.Error(err))
		}

		if err := printJSON(pipeline.Describe(pipeline.ConfiguredStages(cfg))); err != nil {
			logger.Fatal("printing stages", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(stagesCmd)
}
