package cmd

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/skillfit/internal/audit"
	"github.com/spigell/skillfit/internal/governance"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect recorded decisions and attach human overrides",
}

var auditShowCmd = &cobra.Command{
	Use:   "show <decision-id>",
	Short: "Print a recorded decision trace with its overrides",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		ctx := context.Background()
		logger, store := auditStore(ctx)
		defer store.Close()

		trace, err := store.Load(ctx, args[0])
		if err != nil {
			logger.Fatal("loading the decision", zap.Error(err), zap.String("decision_id", args[0]))
		}

		if err := printJSON(trace); err != nil {
			logger.Fatal("printing the decision", zap.Error(err))
		}
	},
}

var auditOverrideCmd = &cobra.Command{
	Use:   "override <decision-id>",
	Short: "Record a reviewer decision that supersedes the pipeline's",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		logger, store := auditStore(ctx)
		defer store.Close()

		decision, _ := cmd.Flags().GetString("decision")
		reason, _ := cmd.Flags().GetString("reason")
		reviewer, _ := cmd.Flags().GetString("reviewer")

		rec, err := governance.Submit(ctx, store, governance.Override{
			DecisionID: args[0],
			Decision:   strings.ToUpper(strings.TrimSpace(decision)),
			Reason:     reason,
			ReviewerID: reviewer,
		}, time.Now())
		if err != nil {
			logger.Fatal("recording the override", zap.Error(err), zap.String("decision_id", args[0]))
		}

		logger.Info("override recorded",
			zap.String("decision_id", rec.DecisionID),
			zap.String("decision", rec.Decision),
			zap.String("reviewer_id", rec.ReviewerID),
		)

		if err := printJSON(rec); err != nil {
			logger.Fatal("printing the override", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditShowCmd, auditOverrideCmd)

	auditOverrideCmd.Flags().String("decision", "", "HIRE, REJECT or HOLD")
	auditOverrideCmd.Flags().String("reason", "", "why the decision is overridden (at least 10 characters)")
	auditOverrideCmd.Flags().String("reviewer", "", "id of the reviewer")
}

func auditStore(ctx context.Context) (*zap.Logger, audit.Store) {
	logger, config := setup()

	store, err := openStore(ctx, config)
	if err != nil {
		logger.Fatal("opening audit store", zap.Error(err))
	}
	if store == nil {
		logger.Fatal("audit store is disabled", zap.String("hint", "set audit.backend to file, sqlite or postgres"))
	}

	return logger, store
}
