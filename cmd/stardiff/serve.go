package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/star/stardiff/internal/api"
	"github.com/star/stardiff/internal/auth"
	"github.com/star/stardiff/internal/config"
	"github.com/star/stardiff/internal/ephem"
	"github.com/star/stardiff/internal/health"
	"github.com/star/stardiff/internal/tle"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the comparison API over HTTP",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().Bool("trust-proxy", false, "use X-Forwarded-For for client addresses in logs")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		err := a.load(cmd, config.Bindings{
			"http.addr":       cmd.Flags().Lookup("addr"),
			"http.trustProxy": cmd.Flags().Lookup("trust-proxy"),
		})
		if err != nil {
			return err
		}
		return runServe(cmd.Context(), a)
	}
	return cmd
}

func runServe(ctx context.Context, a *app) error {
	cfg, logger := a.cfg, a.logger
	tleCache := tle.NewCache(cfg.TLE.CacheDir, cfg.TLE.MaxFiles)

	srv := api.NewServer(api.Options{
		Addr:         cfg.HTTP.Addr,
		MaxBodyBytes: cfg.HTTP.MaxBodyBytes,
		MaxEpochs:    cfg.HTTP.MaxEpochs,
		TrustProxy:   cfg.HTTP.TrustProxy,
		Auth:         auth.Config{Enabled: cfg.Auth.Enabled, Token: cfg.Auth.Token},

		MaxConcurrentPerIP: cfg.HTTP.MaxConcurrentIP,
		MaxConcurrent:      cfg.HTTP.MaxConcurrent,

		Pool:  ephem.NewWorkerPool(cfg.Prop.Workers, logger),
		Ready: []health.Check{tleCache.Check},
	}, logger)

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			"addr", cfg.HTTP.Addr,
			"auth_enabled", cfg.Auth.Enabled,
			"workers", cfg.Prop.Workers,
			"max_epochs", cfg.HTTP.MaxEpochs,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			logger.Error("server listen error", "error", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		return err
	}

	logger.Info("server stopped")
	return nil
}
