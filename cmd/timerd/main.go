package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"rsiassist/internal/config"
	"rsiassist/internal/core/model"
	"rsiassist/internal/platform"
	"rsiassist/internal/server"
	"rsiassist/internal/timerservice"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath, databasePath string
	var port int

	root := &cobra.Command{
		Use:           "timerd",
		Short:         "Reference timer service for rsiassist",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Simulator.Port = port
			}
			if databasePath != "" {
				cfg.Simulator.DatabasePath = databasePath
			}
			return run(cmd.Context(), cfg, log.New(os.Stdout, "timerd ", log.LstdFlags))
		},
	}
	root.Flags().StringVar(&configPath, "config", config.DefaultPath(), "runtime configuration file")
	root.Flags().IntVar(&port, "port", 0, "listen port (overrides the config file)")
	root.Flags().StringVar(&databasePath, "db", "", "statistics database path (overrides the config file)")
	return root
}

func run(parent context.Context, cfg *config.Config, logger *log.Logger) error {
	if parent == nil {
		parent = context.Background()
	}

	gormDB, err := timerservice.OpenDatabase(cfg.Simulator.DatabasePath)
	if err != nil {
		return err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return fmt.Errorf("open database handle: %w", err)
	}
	defer sqlDB.Close()
	logger.Printf("statistics database ready at %s", cfg.Simulator.DatabasePath)

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	service := timerservice.New(model.DefaultBreakConfig(), timerservice.Options{
		Stats:  timerservice.NewGormStats(gormDB),
		Logger: logger,
	})
	go service.Run(ctx, platform.NewIdleProvider(), cfg.Simulator.IdleThreshold, time.Second)

	router := server.NewRouter(service, server.Options{
		RateLimit: rate.Limit(cfg.Simulator.RateLimitPerSec),
		Burst:     cfg.Simulator.Burst,
	})
	httpServer := &http.Server{
		Addr:    cfg.Simulator.ListenAddr(),
		Handler: router,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Printf("HTTP server listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case <-stop:
		logger.Println("shutdown signal received, stopping services...")
	case <-ctx.Done():
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
	}

	// Cancelling the base context ends open event streams so Shutdown can drain.
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	logger.Println("server gracefully stopped")
	return nil
}
