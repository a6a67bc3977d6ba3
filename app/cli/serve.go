package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"postboard/app/config"
	"postboard/app/repositories"
	"postboard/app/routes"

	"github.com/google/gops/agent"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, opts.cfg)
		},
	}
	cmd.Flags().StringVarP(&opts.flags.Port, "port", "p", "", "port to listen on (overrides PORT)")
	cmd.Flags().StringVar(&opts.flags.Driver, "store", "", "store driver: rest, postgres, badger, memory or bolt")
	return cmd
}

func configureLogging(cfg config.LogConfig) error {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return err
	}
	log.SetLevel(level)

	if cfg.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}

// run serves the API until ctx is cancelled, then drains open requests and
// closes the store.
func run(ctx context.Context, cfg *config.Config) error {
	if err := configureLogging(cfg.Log); err != nil {
		return err
	}

	if cfg.DebugAgent {
		if err := agent.Listen(agent.Options{}); err != nil {
			log.WithField("err", err).Warn("Could not start gops agent")
		} else {
			defer agent.Close()
		}
	}

	repo, err := repositories.NewRepository(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			log.WithField("err", err).Warn("Could not close store")
		}
	}()

	server := &http.Server{
		Addr: cfg.Addr(),
		Handler: routes.SetupRoutes(repo.Posts, repo.Comments, routes.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			StaticDir:      cfg.StaticDir,
			Driver:         repo.Driver,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(log.Fields{
			"addr":  server.Addr,
			"store": repo.Driver,
		}).Info("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithField("err", err).Warn("Server shutdown error")
	}
	log.Info("Server stopped")
	return nil
}
