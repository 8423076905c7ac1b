package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"lingod/internal/httpapi"
)

func newServeCmd(opts *options) *cobra.Command {
	var (
		addr        string
		corsOrigins string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Example: "  lingod serve --addr :8080\n" +
			"  lingod serve --provider llama-server --base-url http://127.0.0.1:8081",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cfg, logger, err := startApp(opts, httpapi.EventMetrics())
			if err != nil {
				return err
			}
			defer a.Close()
			if addr != "" {
				cfg.Addr = addr
			}
			if origins := splitCSV(corsOrigins); len(origins) > 0 {
				cfg.CORS.Enabled = true
				cfg.CORS.Origins = origins
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			httpapi.SetLogger(logger)
			httpapi.SetDefaultLogLevel(httpLogLevel(cfg.LogLevel))
			httpapi.SetBaseContext(ctx)
			httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
			httpapi.SetCORSOptions(cfg.CORS.Enabled, cfg.CORS.Origins, cfg.CORS.Methods, cfg.CORS.Headers)

			srv := &http.Server{
				Addr:              cfg.Addr,
				Handler:           httpapi.NewMux(a),
				ReadHeaderTimeout: 10 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				logger.Info().Str("addr", cfg.Addr).Str("provider", cfg.Provider.Kind).Msg("lingod listening")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}
			logger.Info().Msg("shutting down")
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(sctx); err != nil {
				logger.Warn().Err(err).Msg("graceful shutdown error")
			}
			return nil
		},
	}
	defAddr := os.Getenv("LINGOD_ADDR")
	cmd.Flags().StringVar(&addr, "addr", defAddr, "HTTP listen address, e.g. :8080 (defaults LINGOD_ADDR or config)")
	cmd.Flags().StringVar(&corsOrigins, "cors-origins", os.Getenv("LINGOD_CORS_ORIGINS"), "Comma-separated allowed CORS origins; enables CORS")
	return cmd
}
