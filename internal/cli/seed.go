package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"qcr/internal/fixtures"
)

func newSeedCmd(o *options) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load clients, products and orders from a YAML file",
		Long: `Load clients, products with specifications and production orders from a
YAML file. Records are validated like API submissions. Records whose SAP id
already exists are skipped.`,
		Example: "  qcr seed --file configs/seed.yaml",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := fixtures.LoadFile(file)
			if err != nil {
				return err
			}

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

			res, err := fixtures.Apply(ctx, db, f, log)
			if err != nil {
				return fmt.Errorf("seed %s: %w", file, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "clients: %d, products: %d, orders: %d, skipped: %d\n",
				res.Clients, res.Products, res.Orders, res.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Seed file (YAML)")
	if err := cmd.MarkFlagRequired("file"); err != nil {
		panic(err)
	}
	return cmd
}
