package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/hostrender/internal/config"
	"github.com/vango-dev/hostrender/internal/errors"
	"github.com/vango-dev/hostrender/pkg/host"
	"github.com/vango-dev/hostrender/pkg/hostdom"
	"github.com/vango-dev/hostrender/pkg/proxy"
	"github.com/vango-dev/hostrender/pkg/renderer"
	"github.com/vango-dev/hostrender/pkg/snapshot"
)

type renderFlags struct {
	title    string
	url      string
	direct   bool
	pretty   bool
	snapshot string
}

func renderCmd() *cobra.Command {
	var f renderFlags

	cmd := &cobra.Command{
		Use:   "render [items...]",
		Short: "Build a demo page and print its HTML",
		Long: `Build a titled list page through a renderer and print the result.

By default the page goes through the proxy renderer to an in-process
host worker. --url sends it to a running host server instead, and
--direct renders straight into a local document.

Examples:
  hostrender render one two three
  hostrender render --pretty --title=Todo milk eggs
  hostrender render --url=ws://localhost:7070/ws a b`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if f.direct && cmd.Flags().Changed("url") {
				return errors.New("E123").WithDetail("--direct and --url are mutually exclusive")
			}
			if f.url == "" && !f.direct {
				f.url = cfg.Proxy.URL
			}
			logger := setupLogger(cfg)
			return runRender(cmd.Context(), cfg, logger, f, args)
		},
	}

	cmd.Flags().StringVarP(&f.title, "title", "t", "hostrender", "Page heading")
	cmd.Flags().StringVar(&f.url, "url", "", "Websocket URL of a host server (default from config)")
	cmd.Flags().BoolVar(&f.direct, "direct", false, "Render into a local document without the proxy")
	cmd.Flags().BoolVar(&f.pretty, "pretty", false, "Indent the printed HTML")
	cmd.Flags().StringVar(&f.snapshot, "snapshot", "", "Also store the page under this snapshot key")

	return cmd
}

func runRender(ctx context.Context, cfg *config.Config, logger *slog.Logger, f renderFlags, items []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	opts := hostdom.RenderOptions{Pretty: f.pretty}

	switch {
	case f.direct:
		doc := hostdom.NewDocument()
		factory := hostdom.NewFactory(doc, hostdom.WithLogger(logger))
		if err := renderPass(factory, f.title, items); err != nil {
			return err
		}
		if err := storeSnapshot(ctx, cfg, f.snapshot, doc.DocumentElement(), opts); err != nil {
			return err
		}
		return printHTML(doc.DocumentElement(), opts)

	case f.url != "":
		t, err := proxy.DialWS(ctx, f.url, proxy.WSOptions{
			AckTimeout: cfg.AckTimeout(),
			Logger:     logger,
		})
		if err != nil {
			return err
		}
		defer t.Close()
		r := newProxy(t, cfg, logger)
		if err := proxyPass(r, f.title, items); err != nil {
			return err
		}
		success("Sent %d ops in %d batches to %s", r.Sent(), r.Seq(), f.url)
		return nil
	}

	t := proxy.NewWorkerTransport(logger)
	defer t.Close()
	r := newProxy(t, cfg, logger)
	if err := proxyPass(r, f.title, items); err != nil {
		return err
	}

	var out string
	err := t.Worker().Do(ctx, func(a *host.Applier) error {
		root := a.Document().DocumentElement()
		if err := storeSnapshot(ctx, cfg, f.snapshot, root, opts); err != nil {
			return err
		}
		var b strings.Builder
		if err := hostdom.Render(&b, root, opts); err != nil {
			return err
		}
		out = b.String()
		return nil
	})
	if err != nil {
		return err
	}
	_, err = os.Stdout.WriteString(out + "\n")
	return err
}

func newProxy(t proxy.Transport, cfg *config.Config, logger *slog.Logger) *proxy.Renderer {
	return proxy.New(t, proxy.Options{
		MaxBatchOps:  cfg.Proxy.MaxBatchOps,
		FlushTimeout: cfg.AckTimeout(),
		Logger:       logger,
	})
}

func renderPass(f renderer.Factory, title string, items []string) error {
	return renderer.RunPass(f, func() error {
		r, err := f.CreateRenderer(nil, nil)
		if err != nil {
			return err
		}
		return buildPage(r, title, items)
	})
}

// proxyPass runs one pass through a proxy factory. Flush failures at the
// end of the pass are reported by the factory rather than by the pass.
func proxyPass(r *proxy.Renderer, title string, items []string) error {
	f := proxy.NewFactory(r)
	if err := renderPass(f, title, items); err != nil {
		return err
	}
	return f.LastError()
}

func storeSnapshot(ctx context.Context, cfg *config.Config, key string, root hostdom.Node, opts hostdom.RenderOptions) error {
	if key == "" {
		return nil
	}
	store, err := snapshot.NewFromConfig(cfg.Snapshot)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("E123").WithDetail("--snapshot needs a snapshot backend in the config")
	}
	loc, err := snapshot.Capture(ctx, store, key, root, opts)
	if err != nil {
		return err
	}
	slog.Info("snapshot stored", "key", key, "location", loc)
	return nil
}

func printHTML(root hostdom.Node, opts hostdom.RenderOptions) error {
	if err := hostdom.Render(os.Stdout, root, opts); err != nil {
		return err
	}
	_, err := os.Stdout.WriteString("\n")
	return err
}
