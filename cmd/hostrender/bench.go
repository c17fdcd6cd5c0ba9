package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/hostrender/internal/config"
	"github.com/vango-dev/hostrender/internal/errors"
	"github.com/vango-dev/hostrender/pkg/hostdom"
	"github.com/vango-dev/hostrender/pkg/proxy"
	"github.com/vango-dev/hostrender/pkg/renderer"
)

type benchResult struct {
	Mode     string
	Rows     int
	Duration time.Duration
	Batches  uint64
}

func (r benchResult) perRow() time.Duration {
	if r.Rows == 0 {
		return 0
	}
	return r.Duration / time.Duration(r.Rows)
}

func benchCmd() *cobra.Command {
	var (
		rows     int
		mode     string
		batchOps int
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Time tree construction through each renderer variant",
		Long: `Append rows of <div>text</div> under <body> and report the time taken.

Modes:
  object  node methods on the document (no renderer indirection)
  func    the in-process functional renderer
  proxy   the proxy renderer over an in-process host worker
  all     every mode in turn

Examples:
  hostrender bench
  hostrender bench --rows=100000 --mode=proxy --batch=1024`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if rows <= 0 {
				return errors.New("E123").WithDetailf("--rows must be positive, got %d", rows)
			}
			if batchOps > 0 {
				cfg.Proxy.MaxBatchOps = batchOps
			}
			logger := setupLogger(cfg)

			modes := []string{mode}
			if mode == "all" {
				modes = []string{"object", "func", "proxy"}
			}
			fmt.Printf("  %-8s %10s %14s %10s %8s\n", "mode", "rows", "total", "per row", "batches")
			for _, m := range modes {
				res, err := runBench(m, rows, cfg, logger)
				if err != nil {
					return err
				}
				fmt.Printf("  %-8s %10d %14s %10s %8d\n",
					res.Mode, res.Rows, res.Duration.Round(time.Microsecond), res.perRow(), res.Batches)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&rows, "rows", "n", 100000, "Number of rows to append")
	cmd.Flags().StringVarP(&mode, "mode", "m", "all", "object, func, proxy or all")
	cmd.Flags().IntVar(&batchOps, "batch", 0, "Proxy ops per batch (default from config)")

	return cmd
}

func runBench(mode string, rows int, cfg *config.Config, logger *slog.Logger) (benchResult, error) {
	res := benchResult{Mode: mode, Rows: rows}
	switch mode {
	case "object", "func":
		doc := hostdom.NewDocument()
		var r renderer.Renderer
		if mode == "object" {
			r = renderer.FromObject(doc)
		} else {
			r = renderer.FromFunc(hostdom.NewFuncRenderer(doc))
		}
		start := time.Now()
		if err := buildRows(r, rows); err != nil {
			return res, err
		}
		res.Duration = time.Since(start)
		if got := doc.Body().ChildCount(); got != rows {
			return res, fmt.Errorf("%s: body has %d children, want %d", mode, got, rows)
		}
		return res, nil

	case "proxy":
		t := proxy.NewWorkerTransport(logger)
		defer t.Close()
		pr := newProxy(t, cfg, logger)
		f := proxy.NewFactory(pr)
		start := time.Now()
		err := renderer.RunPass(f, func() error {
			return buildRows(renderer.FromFunc(pr), rows)
		})
		if err != nil {
			return res, err
		}
		if err := f.LastError(); err != nil {
			return res, err
		}
		res.Duration = time.Since(start)
		res.Batches = pr.Seq()
		return res, nil
	}
	return res, errors.New("E123").WithDetailf("--mode must be object, func, proxy or all, got %q", mode)
}
