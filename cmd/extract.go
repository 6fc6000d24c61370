package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Print the skills found in a document",
	Args:  cobra.MaximumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		path := "-"
		if len(args) == 1 {
			path = args[0]
		}
		extract(path)
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

func extract(path string) {
	ctx := context.Background()
	logger, config := setup()

	engine, _, err := newEngine(ctx, config, logger, false)
	if err != nil {
		logger.Fatal("building the engine", zap.Error(err))
	}

	text, err := readInput(ctx, path)
	if err != nil {
		logger.Fatal("reading the document", zap.Error(err), zap.String("path", path))
	}

	extraction := engine.Extract(ctx, text)
	logger.Info("skills extracted", zap.Int("count", extraction.Skills.Len()))

	if err := printJSON(extraction); err != nil {
		logger.Fatal("printing the extraction", zap.Error(err))
	}
}
