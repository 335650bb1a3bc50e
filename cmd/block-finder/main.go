package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Mc-Fr/Convertisseur/pkg/finder"
	"github.com/Mc-Fr/Convertisseur/pkg/traversal"
	"github.com/Mc-Fr/Convertisseur/pkg/util"
)

func main() {
	var (
		cfg         finder.Config
		configFile  string
		metricsPort int
	)

	cfg.RegisterFlagsAndApplyDefaults("", flag.CommandLine)
	flag.StringVar(&configFile, "config.file", "", "YAML configuration file. Flags given on the command line take precedence.")
	flag.IntVar(&metricsPort, "metrics-port", 0, "Port to expose Prometheus metrics, 0 to disable")
	flag.Parse()

	if err := util.WriteBanner(os.Stdout, "Block Finder", finder.Version); err != nil {
		os.Exit(1)
	}

	// Setup logger
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)
	logger = log.With(logger, "caller", log.DefaultCaller)
	logger = log.With(logger, "run", uuid.NewString())

	if configFile != "" {
		if err := util.LoadYAMLFile(configFile, &cfg); err != nil {
			level.Error(logger).Log("msg", "failed to load config file", "err", err)
			os.Exit(1)
		}
		if err := flag.CommandLine.Parse(os.Args[1:]); err != nil {
			os.Exit(1)
		}
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		flag.Usage()
		os.Exit(1)
	}

	// Setup metrics
	reg := prometheus.NewRegistry()
	metrics := traversal.NewMetrics(reg)

	var metricsServer *http.Server
	if metricsPort > 0 {
		metricsAddr := fmt.Sprintf(":%d", metricsPort)
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		metricsServer = &http.Server{
			Addr:    metricsAddr,
			Handler: mux,
		}

		go func() {
			level.Info(logger).Log("msg", "starting metrics server", "addr", metricsAddr)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				level.Error(logger).Log("msg", "metrics server failed", "err", err)
			}
		}()
	}

	f, err := finder.New(cfg, metrics, logger)
	if err != nil {
		level.Error(logger).Log("msg", "failed to create finder", "err", err)
		os.Exit(1)
	}

	// Setup signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		level.Info(logger).Log("msg", "received shutdown signal")
		cancel()
	}()

	stats, err := f.Run(ctx)
	if err != nil {
		level.Error(logger).Log("msg", "search failed", "err", err)
		os.Exit(1)
	}

	positions := f.Positions()
	if err := finder.WriteText(os.Stdout, positions); err != nil {
		level.Error(logger).Log("msg", "failed to print positions", "err", err)
	}
	level.Info(logger).Log("msg", "done", "matches", len(positions), "regions", stats.UnitsCompleted, "elapsed", traversal.FormatElapsed(stats.Elapsed))

	if metricsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			level.Error(logger).Log("msg", "metrics server shutdown failed", "err", err)
		}
	}
}
