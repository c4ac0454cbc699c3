package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"qcr/internal/api"
	"qcr/internal/auth"
	"qcr/internal/config"
	"qcr/internal/server"
	"qcr/internal/session"
	"qcr/internal/telemetry"
)

const (
	serverIdleTimeout = 60 * time.Second
	redisPingTimeout  = 5 * time.Second
)

func newServeCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server. The database schema is migrated on start and
the default role permissions are seeded when none exist.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), o)
		},
	}
	cmd.Flags().String("address", "", "Address to listen on (default :8080)")
	cmd.Flags().String("session-backend", "", "Where list-view state is kept: sql or redis")
	o.bind(cmd.Flags(), "server.address", "address")
	o.bind(cmd.Flags(), "session.backend", "session-backend")
	return cmd
}

func runServe(ctx context.Context, o *options) error {
	cfg, log, err := o.load()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	states, closeStates, err := newStateStore(ctx, cfg, db)
	if err != nil {
		return err
	}
	defer closeStates()

	var metrics *telemetry.Metrics
	if cfg.Metrics.Enabled {
		metrics = telemetry.New()
	}
	policy := auth.SessionPolicy{TTL: cfg.Session.TTL, IdleTimeout: cfg.Session.IdleTimeout}
	app, err := server.NewApp(ctx, db, states, metrics, log, policy)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      api.NewRouter(app),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  serverIdleTimeout,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		log.Info("server listening",
			zap.String("address", srv.Addr),
			zap.String("database", cfg.Database.Path),
			zap.String("session_backend", cfg.Session.Backend))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen on %s: %w", srv.Addr, err)
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shut down: %w", err)
	}
	log.Info("server stopped")
	return nil
}

// newStateStore returns the list-view state store of the configured
// backend with the function that releases it.
func newStateStore(ctx context.Context, cfg *config.Config, db *sql.DB) (session.Store, func(), error) {
	if cfg.Session.Backend != "redis" {
		return session.NewSQLStore(db), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
	}
	return session.NewRedisStore(client, cfg.Session.TTL), func() { client.Close() }, nil
}
