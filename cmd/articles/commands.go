package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deppfellow/articles-api/internal/config"
	"github.com/deppfellow/articles-api/internal/database"
	"github.com/deppfellow/articles-api/internal/handler"
	"github.com/deppfellow/articles-api/internal/lib/utils"
	"github.com/deppfellow/articles-api/internal/logger"
	"github.com/deppfellow/articles-api/internal/repository"
	"github.com/deppfellow/articles-api/internal/router"
	"github.com/deppfellow/articles-api/internal/server"
	"github.com/deppfellow/articles-api/internal/service"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const (
	// DefaultContextTimeout bounds graceful shutdown.
	DefaultContextTimeout = 30

	migrateTimeout = time.Minute
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "articles",
		Short:         "HTTP API for managing articles stored in PostgreSQL",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Ensure the schema, then serve HTTP until SIGINT or SIGTERM",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runServe(cmd.Context())
			},
		},
		newMigrateCmd(),
		&cobra.Command{
			Use:   "config",
			Short: "Print the effective configuration with secrets masked",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.LoadConfig()
				if err != nil {
					return err
				}
				return utils.PrintJSON(cmd.OutOrStdout(), cfg.Redacted())
			},
		},
	)

	return root
}

func newMigrateCmd() *cobra.Command {
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Ensure the articles table exists and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.Context())
		},
	}

	migrate.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print the applied and latest schema versions without migrating",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrateStatus(cmd)
		},
	})

	return migrate
}

// bootstrap loads the config and builds the application logger. The
// returned LoggerService must be shut down by the caller.
func bootstrap() (*config.Config, *logger.LoggerService, zerolog.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, zerolog.Logger{}, fmt.Errorf("failed to load config: %w", err)
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	return cfg, loggerService, log, nil
}

func runMigrate(ctx context.Context) error {
	cfg, loggerService, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer loggerService.Shutdown()

	ctx, cancel := context.WithTimeout(ctx, migrateTimeout)
	defer cancel()

	if err := database.Migrate(ctx, &log, cfg); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func runMigrateStatus(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), migrateTimeout)
	defer cancel()

	status, err := database.Status(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	return utils.PrintJSON(cmd.OutOrStdout(), struct {
		database.MigrationStatus
		Pending int32 `json:"pending"`
	}{status, status.Pending()})
}

func runServe(ctx context.Context) error {
	cfg, loggerService, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer loggerService.Shutdown()

	// The table usually exists already; a failed bootstrap is reported and
	// the first query will surface the real problem.
	migrateCtx, cancelMigrate := context.WithTimeout(ctx, migrateTimeout)
	if err := database.Migrate(migrateCtx, &log, cfg); err != nil {
		log.Error().Err(err).Msg("failed to ensure database schema")
	}
	cancelMigrate()

	srv, err := server.New(cfg, &log, loggerService)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	repos := repository.NewRepositories(srv)

	services, err := service.NewServices(srv, repos)
	if err != nil {
		return fmt.Errorf("could not create services: %w", err)
	}

	handlers := handler.NewHandlers(srv, services)
	r := router.NewRouter(srv, handlers)

	srv.SetupHTTPServer(r)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			log.Error().Err(err).Msg("server stopped unexpectedly")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultContextTimeout*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server exited properly")
	return nil
}
