package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/skillfit/internal/pipeline"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score a resume against one or more roles and print the recommendation",
	Run: func(cmd *cobra.Command, _ []string) {
		evaluate(cmd)
	},
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringP("resume", "r", "", "resume file (.txt, .md, .html); '-' reads stdin")
	evaluateCmd.Flags().StringSlice("role", []string{"Data Scientist"}, "target role, repeatable")
	evaluateCmd.Flags().String("jd", "", "optional job description file")
	evaluateCmd.Flags().Bool("summary", false, "print the recruiter summary instead of the full outcome")

	evaluateCmd.MarkFlagRequired("resume")
}

func evaluate(cmd *cobra.Command) {
	ctx := context.Background()
	logger, config := setup()

	logger.Info("starting the skillfit", zap.String("version", version))

	engine, store, err := newEngine(ctx, config, logger, true)
	if err != nil {
		logger.Fatal("building the engine", zap.Error(err))
	}
	if store != nil {
		defer store.Close()
	}

	resumePath, _ := cmd.Flags().GetString("resume")
	jdPath, _ := cmd.Flags().GetString("jd")
	roles, _ := cmd.Flags().GetStringSlice("role")
	summaryOnly, _ := cmd.Flags().GetBool("summary")

	resume, err := readInput(ctx, resumePath)
	if err != nil {
		logger.Fatal("reading the resume", zap.Error(err), zap.String("path", resumePath))
	}

	jd, err := readInput(ctx, jdPath)
	if err != nil {
		logger.Fatal("reading the job description", zap.Error(err), zap.String("path", jdPath))
	}

	outcome, err := engine.Evaluate(ctx, pipeline.Request{
		ResumeText: resume,
		Roles:      roles,
		JDText:     jd,
	})
	if err != nil {
		logger.Fatal("evaluation failed", zap.Error(err))
	}

	if len(outcome.UnknownRoles) > 0 {
		logger.Warn("skipping unknown roles",
			zap.Strings("roles", outcome.UnknownRoles),
			zap.String("hint", "run 'skillfit roles' to list the known ones"),
		)
	}

	logger.Info("evaluation finished",
		zap.String("role", outcome.Role),
		zap.Float64("score", outcome.Score),
		zap.String("decision", outcome.Decision),
		zap.Bool("persisted", outcome.Persisted),
	)

	if summaryOnly {
		fmt.Println(outcome.Summary)
		return
	}

	if err := printJSON(outcome); err != nil {
		logger.Fatal("printing the outcome", zap.Error(err))
	}
}
