// Package cli holds the qcr command tree.
package cli

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"qcr/internal/config"
	"qcr/internal/database"
	"qcr/internal/logging"
)

// options is shared by every command of one tree. Flags are bound to v so
// they override the config file and the environment.
type options struct {
	v          *viper.Viper
	configFile string
}

func (o *options) bind(fs *pflag.FlagSet, key, flag string) {
	if err := o.v.BindPFlag(key, fs.Lookup(flag)); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", flag, err))
	}
}

// load reads the configuration and builds the logger it asks for.
func (o *options) load() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(o.v, o.configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log, nil
}

// openDB opens the configured database and brings its schema up to date.
func openDB(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate %s: %w", cfg.Database.Path, err)
	}
	return db, nil
}

// NewRootCmd builds the qcr command tree.
func NewRootCmd() *cobra.Command {
	o := &options{v: viper.New()}

	root := &cobra.Command{
		Use:   "qcr",
		Short: "Quality control records for production orders",
		Long: `qcr keeps clients, products with their technical specifications,
production orders and the measurement reports taken on them.`,
		SilenceUsage:      true,
		DisableAutoGenTag: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().StringVar(&o.configFile, "config", "", "Path to the configuration file (default ./qcr.yaml or ./configs/qcr.yaml)")
	root.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	root.PersistentFlags().String("db", "", "SQLite database path")
	o.bind(root.PersistentFlags(), "log.level", "log-level")
	o.bind(root.PersistentFlags(), "database.path", "db")

	root.AddCommand(
		newServeCmd(o),
		newMigrateCmd(o),
		newSeedCmd(o),
		newUserCmd(o),
		newVersionCmd(),
	)
	return root
}

// Execute runs the command tree against os.Args and returns the process
// exit code.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		return 1
	}
	return 0
}
