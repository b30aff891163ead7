package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"btc-trade-bot-go/internal/bot"
	"btc-trade-bot-go/internal/config"
	"btc-trade-bot-go/internal/cycle"
	"btc-trade-bot-go/internal/events"
	"btc-trade-bot-go/internal/logger"
	"btc-trade-bot-go/internal/pricing"
	"btc-trade-bot-go/internal/repository"
	"btc-trade-bot-go/internal/scheduler"
	"go.uber.org/zap"
)

func main() {
	// Load application configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		// We can't use the logger here because it's not initialized yet.
		panic(fmt.Sprintf("could not load config: %v", err))
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("Configuration loaded")

	// Initialize database and trade repository
	db, err := repository.NewDatabase(cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	repo := repository.NewGormTradeRepository(db)
	log.Info("Database connection successful and schema migrated.")

	// Initialize the price provider
	var provider pricing.Provider
	switch cfg.Price.Source {
	case "csv":
		provider, err = pricing.NewCsvProvider(cfg.Price.CsvPath, log)
		if err != nil {
			log.Fatal("Failed to load CSV price data", zap.Error(err))
		}
	default:
		provider = pricing.NewCoinGeckoClient(&cfg.Price, log)
	}
	if _, err := provider.CurrentPrice(); err != nil {
		log.Fatal("Failed to fetch an initial price", zap.Error(err))
	}
	log.Info("Price provider ready", zap.String("source", cfg.Price.Source))

	// Assemble the trading engine and its collaborators
	publisher := events.NewPublisher(16, log)
	detector := cycle.NewDetector(&cfg.Cycle, log)

	engine, err := bot.NewEngine(log, &cfg, provider, repo, publisher, detector)
	if err != nil {
		log.Fatal("Failed to build trading engine", zap.Error(err))
	}
	backtester := bot.NewBacktester(log, &cfg, provider, detector, engine)

	// Start the schedulers and the API server
	sched := scheduler.NewScheduler(engine, log)
	tickInterval := time.Duration(cfg.Trading.PollIntervalSeconds) * time.Second
	if err := sched.Start(tickInterval, cfg.Trading.CycleRefreshCron); err != nil {
		log.Fatal("Failed to start scheduler", zap.Error(err))
	}

	api := bot.NewAPIServer(engine, backtester, repo, publisher, sched, &cfg, log)
	api.Start()

	engine.Start()

	// Wait for the shutdown signal
	sigchan := make(chan os.Signal, 1)
	signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
	<-sigchan
	log.Info("Shutdown signal received, gracefully shutting down...")

	engine.Stop()
	sched.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := api.Stop(ctx); err != nil {
		log.Error("API server shutdown failed", zap.Error(err))
	}

	log.Info("Bot has been shut down.")
}
