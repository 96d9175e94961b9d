package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"chessrules/internal/processor"
	"chessrules/internal/service"
	"chessrules/internal/storage"
	transporthttp "chessrules/internal/transport/http"
)

const gracefulShutdownTimeout = 5 * time.Second

func Serve() *cobra.Command {
	var cfg serverConfig

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chess HTTP API",
		Long: heredoc.Doc(`
			Serve the chess HTTP API under /api/v1.

			Games live in memory and are archived to SQLite as they are
			played, so a finished or interrupted game can be restored later.
			Pass an empty --storage-path to run without persistence.
		`),
		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return serve(cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.Host, "host", "localhost", "API server host")
	flags.IntVar(&cfg.Port, "port", 8080, "API server port")
	flags.BoolVar(&cfg.Dev, "dev", false, "Development mode (relaxed rate limits, fixed token secret)")
	flags.IntVar(&cfg.RateLimit, "rate-limit", 0, "Requests per second per client (0 for the default)")
	flags.StringVar(&cfg.StoragePath, "storage-path", defaultStoragePath, "Path to SQLite database file (disables persistence if empty)")
	flags.StringVar(&cfg.PIDPath, "pid", "", "Optional path to write PID file")
	flags.BoolVar(&cfg.PIDLock, "pid-lock", false, "Lock PID file to allow only one instance (requires --pid)")

	return cmd
}

func serve(cfg serverConfig) error {
	log := logrus.WithField("component", "server")

	if cfg.PIDPath != "" {
		cleanup, err := managePIDFile(cfg.PIDPath, cfg.PIDLock)
		if err != nil {
			return fmt.Errorf("failed to manage PID file: %w", err)
		}
		defer cleanup()
		log.WithField("path", cfg.PIDPath).WithField("lock", cfg.PIDLock).Info("PID file created")
	}

	var store *storage.Store
	if cfg.StoragePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.StoragePath), 0755); err != nil {
			return fmt.Errorf("cannot create storage directory: %w", err)
		}
		var err error
		store, err = storage.NewStore(cfg.StoragePath, cfg.Dev)
		if err != nil {
			return err
		}
		if err := store.InitDB(); err != nil {
			store.Close()
			return err
		}
		log.WithField("path", cfg.StoragePath).Info("persistent storage enabled")
	} else {
		log.Info("persistent storage disabled")
	}

	secret, err := cfg.jwtSecret()
	if err != nil {
		if store != nil {
			store.Close()
		}
		return err
	}
	if cfg.Dev {
		log.Warn("using fixed JWT secret (dev mode)")
	}

	svc := service.New(store, secret)
	proc := processor.New(svc)
	app := transporthttp.NewFiberApp(proc, transporthttp.Config{
		DevMode:   cfg.Dev,
		RateLimit: cfg.RateLimit,
	})

	listenErr := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Addr()).WithField("dev", cfg.Dev).Info("chess API server listening")
		log.Debugf("endpoints: http://%s/api/v1/games, health: http://%s/health", cfg.Addr(), cfg.Addr())
		listenErr <- app.Listen(cfg.Addr())
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	var runErr error
	select {
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("shutting down")
	case runErr = <-listenErr:
		log.WithError(runErr).Error("listener stopped")
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.WithError(err).Warn("server forced to shutdown")
	}
	// Service shutdown releases long-poll waiters and drains storage writes
	if err := svc.Shutdown(gracefulShutdownTimeout); err != nil {
		log.WithError(err).Warn("service shutdown")
	}

	log.Info("server exited")
	return runErr
}
