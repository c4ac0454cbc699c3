package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"qcr/internal/auth"
)

func newMigrateCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Long: `Create or update the database schema and seed the default role
permissions when none exist. Running it again is harmless.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := o.load()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx := cmd.Context()
			db, err := openDB(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := auth.InitPermissions(ctx, db, auth.NewPermCache()); err != nil {
				return err
			}
			log.Info("database schema up to date", zap.String("database", cfg.Database.Path))
			return nil
		},
	}
}
