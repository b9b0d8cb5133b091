package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"privco_valuation/pkg/api"
	"privco_valuation/pkg/config"
	"privco_valuation/pkg/core/engine"
	"privco_valuation/pkg/core/marketdata"
	"privco_valuation/pkg/core/store"
	xhttp "privco_valuation/pkg/http"
	"privco_valuation/pkg/logger"
	"privco_valuation/pkg/metrics"
)

func main() {
	godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		println("failed to load config:", err.Error())
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		println("failed to init logger:", err.Error())
		os.Exit(1)
	}

	// Market data is optional. Without a token the data routes and the
	// automatic comparable fetch are disabled.
	var source marketdata.Source
	if cfg.MarketData.Token != "" {
		client := marketdata.NewClient(cfg.MarketData.Token, log)
		if cfg.MarketData.Endpoint != "" {
			client = client.WithEndpoint(cfg.MarketData.Endpoint)
		}
		source = client
		log.Info().Msg("market data client configured")
	} else {
		log.Warn().Msg("no market data token, comparable lookups disabled")
	}

	// The database is optional too; only history persistence needs it.
	var repo *store.HistoryRepo
	if cfg.Database.URL != "" {
		if err := store.InitDB(context.Background(), cfg.Database.URL); err != nil {
			log.Error().Err(err).Msg("failed to connect to database, history disabled")
		} else {
			repo = store.NewHistoryRepo()
			defer store.Close()
			log.Info().Msg("valuation history store connected")
		}
	}

	eng := engine.New(source, log)
	recorder := metrics.New()
	routes := api.NewRoutes(eng, source, repo, recorder, log)

	server := xhttp.NewServer(routes, log,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithMetrics(cfg.Metrics.Enabled, cfg.Metrics.Path),
	)
	if err := server.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), server.ShutdownTimeout())
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
}
