package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"hitcast/internal/cfg"
	"hitcast/internal/metrics"
	"hitcast/internal/pipeline"
	"hitcast/internal/storage"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML config file")
		eventsPath = flag.String("events", "", "Path to Statcast event CSV (overrides config)")
		players    = flag.String("players", "", "Path to player lookup CSV (overrides config)")
		reportPath = flag.String("report", "", "Write the summary report to this file")
		limit      = flag.Int("limit", 0, "Sample row limit R (overrides config)")
		trees      = flag.Int("trees", 0, "Forest size (overrides config)")
		logLevel   = flag.String("log-level", "info", "Log level: debug, info, warn, error")
	)
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if *configPath != "" {
		os.Setenv("CONFIG_FILE", *configPath)
	}
	settings, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	// Flags override config.
	if *eventsPath != "" {
		settings.EventsPath = *eventsPath
	}
	if *players != "" {
		settings.PlayersPath = *players
	}
	if *reportPath != "" {
		settings.ReportPath = *reportPath
	}
	if *limit > 0 {
		settings.SampleLimit = *limit
	}
	if *trees > 0 {
		settings.Trees = *trees
	}

	m := metrics.New()
	if settings.MetricsPort > 0 {
		go func() {
			addr := fmt.Sprintf(":%d", settings.MetricsPort)
			http.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(addr, nil); err != nil {
				log.Error().Err(err).Msg("metrics endpoint failed")
			}
		}()
	}

	var store *storage.Store
	if settings.DataPath != "" {
		store, err = storage.New(settings.DataPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", settings.DataPath).Msg("storage open failed")
		}
		defer store.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	result, err := pipeline.Run(ctx, settings, m, store)
	if err != nil {
		log.Fatal().Err(err).Msg("pipeline failed")
	}

	if err := result.Report.Write(os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("report rendering failed")
	}
	if settings.ReportPath != "" {
		if err := result.Report.Save(settings.ReportPath); err != nil {
			log.Error().Err(err).Msg("report file not written")
		}
	}
}
