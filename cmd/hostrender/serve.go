package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/hostrender/internal/config"
	"github.com/vango-dev/hostrender/pkg/host"
	"github.com/vango-dev/hostrender/pkg/instrument"
	"github.com/vango-dev/hostrender/pkg/renderer"
	"github.com/vango-dev/hostrender/pkg/snapshot"
)

func serveCmd() *cobra.Command {
	var (
		port        int
		hostAddr    string
		policy      bool
		snapshotDir string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the host server",
		Long: `Run the host server.

Each websocket connection on /ws gets its own document. Batches are
applied in order and acknowledged; listener events are sent back.

Examples:
  hostrender serve
  hostrender serve --port=8080 --policy
  hostrender serve --snapshot-dir=./out`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}
			if hostAddr != "" {
				cfg.Server.Host = hostAddr
			}
			if snapshotDir != "" {
				cfg.Snapshot.Backend = config.BackendFile
				cfg.Snapshot.Dir = snapshotDir
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runServe(cfg, policy)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from config)")
	cmd.Flags().StringVarP(&hostAddr, "host", "H", "", "Host to bind to (default from config)")
	cmd.Flags().BoolVar(&policy, "policy", false, "Reject inline event handlers and script URLs")
	cmd.Flags().StringVar(&snapshotDir, "snapshot-dir", "", "Store snapshots in this directory")

	return cmd
}

func runServe(cfg *config.Config, policy bool) error {
	logger := setupLogger(cfg)

	store, err := snapshot.NewFromConfig(cfg.Snapshot)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	wrapOpts := []instrument.Option{
		instrument.WithMetrics(instrument.NewMetrics(reg)),
		instrument.WithLogger(logger.With("component", "instrument")),
	}
	if policy {
		wrapOpts = append(wrapOpts, instrument.WithPolicy(instrument.DefaultPolicy()))
	}

	srv := host.NewServer(host.ServerOptions{
		Logger:          logger.With("component", "host"),
		Registry:        reg,
		Gatherer:        reg,
		Snapshots:       store,
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		MaxMessageBytes: cfg.Server.MaxMessageBytes,
		WriteTimeout:    cfg.WriteTimeout(),
		ApplierOptions: []host.ApplierOption{
			host.WithRendererWrapper(func(fn renderer.FuncRenderer) renderer.FuncRenderer {
				return instrument.Wrap(fn, wrapOpts...)
			}),
		},
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe(cfg.Address()) }()

	success("Host listening on ws://%s/ws", cfg.Address())
	if store != nil {
		info("Snapshots: %s", cfg.Snapshot.Backend)
	}

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		fmt.Println("\n  Shutting down...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	return <-errCh
}
