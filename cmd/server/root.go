package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"todolist/backend/internal/config"
	"todolist/backend/internal/httpserver"
	"todolist/backend/internal/infrastructure/postgres"
	"todolist/backend/internal/infrastructure/token"
	"todolist/backend/internal/logger"
	"todolist/backend/internal/metrics"
	authusecase "todolist/backend/internal/usecase/auth"
	todousecase "todolist/backend/internal/usecase/todo"
	userusecase "todolist/backend/internal/usecase/user"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var skipMigrations bool

	root := &cobra.Command{
		Use:   "server",
		Short: "Todo list API server",
		Long: `server runs the todo list HTTP API.

Example usage:
  server                 # Apply migrations and serve
  server serve --no-migrate
  server migrate up
  server migrate down --steps 1`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), !skipMigrations)
		},
	}
	root.PersistentFlags().BoolVar(&skipMigrations, "no-migrate", false, "skip applying migrations on start-up")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return serve(cmd.Context(), !skipMigrations)
			},
		},
		newMigrateCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print the build version",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), version)
			},
		},
	)
	return root
}

func newMigrateCmd() *cobra.Command {
	var steps int

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logger.SetupDefault(os.Stdout, cfg.LogLevel)
			if err := postgres.MigrateUp(cfg.DatabaseURL); err != nil {
				return err
			}
			log.Info("migrations applied")
			return nil
		},
	}

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logger.SetupDefault(os.Stdout, cfg.LogLevel)
			if err := postgres.MigrateDown(cfg.DatabaseURL, steps); err != nil {
				return err
			}
			log.Info("migrations rolled back", slog.Int("steps", steps))
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	migrateCmd.AddCommand(up, down)
	return migrateCmd
}

func serve(parent context.Context, migrate bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.SetupDefault(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	if migrate {
		if err := db.Migrate(); err != nil {
			return fmt.Errorf("run database migrations: %w", err)
		}
		log.Info("database schema up to date")
	}

	tokenManager, err := token.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiry, cfg.JWTIssuer)
	if err != nil {
		return fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}

	users := postgres.NewUserRepository(db.Pool)
	todos := postgres.NewTodoRepository(db.Pool)

	deps := httpserver.Deps{
		Auth:   authusecase.NewService(users, tokenManager, cfg.PasswordMinLength),
		Users:  userusecase.NewService(users, cfg.PasswordMinLength),
		Todos:  todousecase.NewService(todos),
		DB:     db,
		Logger: log,
	}
	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		deps.Metrics = metrics.NewCollector(reg)
		deps.MetricsHandler = metrics.Handler(reg)
	}

	server := httpserver.NewServer(cfg, deps)

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", slog.String("addr", server.Addr()))
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down", slog.Duration("timeout", cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", slog.String("error", err.Error()))
		return err
	}
	log.Info("graceful shutdown completed")
	return nil
}
