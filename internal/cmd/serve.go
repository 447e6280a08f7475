package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/userlens/userlens/internal/flagstore"
	"github.com/userlens/userlens/internal/observability"
	"github.com/userlens/userlens/internal/server"
	"github.com/userlens/userlens/internal/server/handlers"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP service",
	Long: `Start the HTTP service with graceful shutdown on SIGINT/SIGTERM.

Shutdown order: drain in-flight HTTP requests, stop the cache janitor,
flush logs.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "", "Bind host (overrides config)")
	serveCmd.Flags().Int("port", 0, "Bind port (overrides config)")

	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logLevel := cfg.Logging.Level
	if verbose {
		logLevel = "debug"
	}
	logger, err := observability.NewServerLogger(logLevel, cfg.Logging.Format)
	if err != nil {
		return err
	}
	defer logger.Sync() // nolint:errcheck

	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := buildClient(ctx, cfg, logger, metrics)
	if err != nil {
		return err
	}
	defer client.Close() // nolint:errcheck

	flags, err := flagstore.Open(cfg.Flags.Path)
	if err != nil {
		return err
	}

	health := handlers.NewHealthManager(versionInfo.Version)
	health.RegisterChecker("upstream", handlers.HealthCheckerFunc(client.Ping))
	health.RegisterChecker("flag_store", handlers.HealthCheckerFunc(func(ctx context.Context) error {
		_ = flags.List()
		return nil
	}))

	srv := server.New(cfg.Server, cfg.Metrics, server.Dependencies{
		Client:  client,
		Flags:   flags,
		Pool:    client.Engine.Pool,
		Health:  health,
		Version: handlers.VersionInfo{
			Name:      "userlens",
			Version:   versionInfo.Version,
			Commit:    versionInfo.Commit,
			BuildDate: versionInfo.BuildDate,
		},
		Logger:  logger,
		Metrics: metrics,
	})

	logger.Info("initializing service",
		zap.String("version", versionInfo.Version),
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.Int("pool_size", client.Engine.Pool.Size()),
		zap.String("cache_backend", cfg.Cache.Backend))

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Start()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown did not complete cleanly", zap.Error(err))
		return err
	}

	logger.Info("shutdown complete")
	return nil
}
