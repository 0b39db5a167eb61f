package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/aretw0/vitrine"
	"github.com/aretw0/vitrine/internal/cli"
	"github.com/aretw0/vitrine/internal/config"
	"github.com/aretw0/vitrine/internal/presentation/tui"
	httpAdapter "github.com/aretw0/vitrine/pkg/adapters/http"
	"github.com/aretw0/vitrine/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP render server",
	Long: `Serves the declared entities over HTTP: list, documentation and render
endpoints, plus Prometheus metrics on /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		listen := cfg.Listen
		if cmd.Flags().Changed("listen") {
			listen, _ = cmd.Flags().GetString("listen")
		}
		watch, _ := cmd.Flags().GetBool("watch")

		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		hooks := observability.NewMetrics(reg).Hooks()

		app, err := newApp(cmd.Context(), hooks)
		if err != nil {
			return err
		}
		defer app.Close()

		build := func(e *vitrine.Engine) http.Handler {
			return httpAdapter.NewHandler(e,
				httpAdapter.WithGatherer(reg),
				httpAdapter.WithLogger(logger),
			)
		}
		var current atomic.Pointer[http.Handler]
		h := build(app.Engine)
		current.Store(&h)

		ctx := cmd.Context()
		if watch && len(cfg.Declarations) > 0 {
			changes, err := cli.Watch(ctx, cfg.Declarations, 100*time.Millisecond, logger)
			if err != nil {
				return err
			}
			go func() {
				for name := range changes {
					// The Redis store opened at startup keeps serving adapter caches.
					reload := cfg
					reload.Redis = config.Redis{}
					next, err := cli.NewApp(ctx, reload, logger, hooks)
					if err != nil {
						logger.Error("reload failed, keeping previous declarations", "file", name, "err", err)
						continue
					}
					h := build(next.Engine)
					current.Store(&h)
					logger.Info("declarations reloaded", "file", name, "entities", len(next.Engine.Entities()))
				}
			}()
		}

		srv := &http.Server{
			Addr: listen,
			Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				(*current.Load()).ServeHTTP(w, r)
			}),
			ReadHeaderTimeout: 10 * time.Second,
		}

		if cli.IsTerminal(os.Stderr) {
			tui.PrintBanner(os.Stderr, strings.TrimSpace(vitrine.Version))
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("vitrine server listening", "address", listen, "entities", len(app.Engine.Entities()))
			serverErrors <- srv.ListenAndServe()
		}()

		// Blocking main and waiting for shutdown.
		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case <-ctx.Done():
			if sc, ok := ctx.(*cli.SignalContext); ok && sc.Signal() != nil {
				logger.Info("shutdown started", "signal", sc.Signal())
			}

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("graceful shutdown did not complete", "timeout", 5*time.Second, "err", err)
				if err := srv.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("error killing server: %w", err)
				}
			}
			logger.Info("vitrine server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("listen", "l", ":8080", "Address to listen on (overrides config)")
	serveCmd.Flags().BoolP("watch", "w", false, "Reload declarations when their files change")
}
