package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/dexhub/internal/catalog"
	"github.com/mesh-intelligence/dexhub/internal/httpapi"
	"github.com/mesh-intelligence/dexhub/internal/metrics"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		addr     string
		skipSeed bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Seed the catalog if needed, then serve it over HTTP",
		Long: `Serve runs the seeding pipeline against the configured dataset, then serves
the catalog over HTTP until interrupted. A seed failure aborts startup.`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.config.Server.Addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, addr, !skipSeed)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr from config)")
	cmd.Flags().BoolVar(&skipSeed, "no-seed", false, "skip seeding even when a dataset is configured")
	return cmd
}

func (a *app) serve(ctx context.Context, addr string, runSeed bool) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m, err := metrics.New(registry)
	if err != nil {
		return err
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Detach()

	switch {
	case !runSeed:
	case a.config.Dataset == "":
		a.logger.Warn("no dataset configured, serving without seeding")
	default:
		if _, err := a.seed(ctx, store, m, a.config.Dataset); err != nil {
			return fmt.Errorf("seeding: %w", err)
		}
	}
	if n, err := store.Count(ctx); err == nil {
		m.SetRecords(n)
	}

	svc := catalog.New(store, catalog.WithLogger(a.logger), catalog.WithMetrics(m))
	server := httpapi.New(svc,
		httpapi.WithLogger(a.logger),
		httpapi.WithAddr(addr),
		httpapi.WithRegistry(m.Registry()),
		httpapi.WithRateLimit(a.config.Server.RateLimit),
	)
	return server.Run(ctx)
}
