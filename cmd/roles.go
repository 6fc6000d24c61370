package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "List the roles a resume can be evaluated against",
	Run: func(_ *cobra.Command, _ []string) {
		logger, config := setup()

		roles, err := loadRoles(config)
		if err != nil {
			logger.Fatal("loading roles", zap.Error(err), zap.String("path", config.Roles))
		}

		if err := printJSON(roles.Roles()); err != nil {
			logger.Fatal("printing roles", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(rolesCmd)
}
