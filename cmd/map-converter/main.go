package main

import (
	"context"
	"errors"
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

	"github.com/Mc-Fr/Convertisseur/pkg/converter"
	"github.com/Mc-Fr/Convertisseur/pkg/registry"
	"github.com/Mc-Fr/Convertisseur/pkg/remap"
	"github.com/Mc-Fr/Convertisseur/pkg/traversal"
	"github.com/Mc-Fr/Convertisseur/pkg/util"
)

func listIDs(world string) error {
	reg, err := registry.Load(world)
	if err != nil {
		return err
	}
	for _, id := range reg.Blocks.IDs() {
		name, _ := reg.Blocks.Name(id)
		fmt.Printf("%d=%s\n", id, name)
	}
	return nil
}

func main() {
	var (
		cfg         converter.Config
		configFile  string
		metricsPort int
		listOnly    bool
	)

	cfg.RegisterFlagsAndApplyDefaults("", flag.CommandLine)
	flag.StringVar(&configFile, "config.file", "", "YAML configuration file. Flags given on the command line take precedence.")
	flag.IntVar(&metricsPort, "metrics-port", 0, "Port to expose Prometheus metrics, 0 to disable")
	flag.BoolVar(&listOnly, "list-ids", false, "Print the block registry of the world and exit")
	flag.Parse()

	if err := converter.WriteBanner(os.Stdout, "Map Converter"); err != nil {
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
		// Re-apply the command line so explicit flags win over the file.
		if err := flag.CommandLine.Parse(os.Args[1:]); err != nil {
			os.Exit(1)
		}
	}

	if listOnly {
		if err := listIDs(cfg.World); err != nil {
			level.Error(logger).Log("msg", "failed to read registry", "err", err)
			os.Exit(1)
		}
		return
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

	conv, err := converter.New(cfg, metrics, logger)
	if err != nil {
		var perr *remap.ParseError
		if errors.As(err, &perr) {
			level.Error(logger).Log("msg", "invalid rule file", "line", perr.Line, "err", err)
		} else {
			level.Error(logger).Log("msg", "failed to create converter", "err", err)
		}
		os.Exit(1)
	}

	// Setup signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		level.Info(logger).Log("msg", "received shutdown signal, finishing chunks in flight")
		cancel()
	}()

	stats, err := conv.Run(ctx)
	if err != nil {
		level.Error(logger).Log("msg", "conversion failed", "err", err)
		os.Exit(1)
	}
	level.Info(logger).Log(
		"msg", "done",
		"regions", stats.UnitsCompleted,
		"failed_regions", stats.UnitsFailed,
		"chunks_written", stats.ChunksWritten,
		"chunk_errors", stats.ReadErrors+stats.DecodeErrors+stats.WriteErrors,
		"elapsed", traversal.FormatElapsed(stats.Elapsed),
	)

	if metricsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			level.Error(logger).Log("msg", "metrics server shutdown failed", "err", err)
		}
	}
}
