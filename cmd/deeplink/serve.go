package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/vango-dev/deeplink"
	"github.com/vango-dev/deeplink/internal/devserver"
	"github.com/vango-dev/deeplink/pkg/navstack"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the deep link development server",
		Long: `Start a development server backed by an in-memory navigation stack
and a simulated session.

Endpoints:
  GET  /api/resolve?url=...   resolve without navigating
  POST /api/dispatch          deliver {"url": ..., "source": ...}
  POST /api/login             sign in as {"id": ..., "username": ...}
  POST /api/logout            sign out
  GET  /api/history           navigation stack and pending link
  GET  /api/routes            route table
  GET  /ws/outcomes           live outcome feed
  GET  /.well-known/...       association files for the configured apps
  GET  /metrics               Prometheus metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}
			if host != "" {
				cfg.Serve.Host = host
			}
			if port != 0 {
				cfg.Serve.Port = port
			}

			w := cmd.OutOrStdout()
			logger := flags.logger(cmd.ErrOrStderr())

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector())

			feed := devserver.NewFeed()
			app, err := deeplink.New(deeplink.Options{
				Config:           cfg,
				Logger:           logger,
				MetricsRegistry:  reg,
				Middleware:       []deeplink.Middleware{feed},
				ReplayHooks:      []deeplink.ReplayHook{feed.RecordReplay},
				HistoryObservers: []func(navstack.Change){feed.ObserveNavigation},
			})
			if err != nil {
				return err
			}
			defer app.Close()

			files, err := app.WellKnownFiles()
			if err != nil {
				return err
			}

			server := devserver.New(devserver.Options{
				Addr:    cfg.ServeAddress(),
				Engine:  app.Engine(),
				Session: app.Session(),
				History: app.History(),
				Feed:    feed,
				Files:   files,
				Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
				Logger:  logger,
			})

			printBanner(w)
			success(w, "Serving %d routes at %s", app.Registry().Len(), cfg.ServeURL())
			info(w, "Domain:    %s", cfg.Domain)
			info(w, "Scheme:    %s://", cfg.Scheme)
			if len(files) == 0 {
				warn(w, "No app identifiers configured; /.well-known/ is empty")
			}
			for _, f := range files {
				info(w, "Serving    /%s", f.Path)
			}
			fmt.Fprintln(w)

			// Handle signals
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			go func() {
				select {
				case <-sigCh:
					fmt.Fprintln(w, "\n  Shutting down...")
					cancel()
				case <-ctx.Done():
				}
			}()

			return server.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Host to bind (default from config)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from config)")

	return cmd
}
