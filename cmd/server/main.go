// Package main is the entry point for the trading floor simulation
// server. It wires the simulated clock, event queue, generator, ledger
// and daily data processor together, starts the tick loop and serves the
// HTTP API the office view consumes.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/tradingfloor/internal/activity"
	"github.com/aristath/tradingfloor/internal/clock"
	"github.com/aristath/tradingfloor/internal/config"
	"github.com/aristath/tradingfloor/internal/engine"
	"github.com/aristath/tradingfloor/internal/events"
	"github.com/aristath/tradingfloor/internal/generator"
	"github.com/aristath/tradingfloor/internal/ledger"
	"github.com/aristath/tradingfloor/internal/roster"
	"github.com/aristath/tradingfloor/internal/server"
	"github.com/aristath/tradingfloor/internal/simqueue"
	"github.com/aristath/tradingfloor/internal/timers"
	"github.com/aristath/tradingfloor/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().
		Str("start", cfg.StartDate.Format("2006-01-02")).
		Str("end", cfg.EndDate.Format("2006-01-02")).
		Float64("speed", cfg.SpeedMultiplier).
		Msg("Starting trading floor simulation")

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	simClock, err := clock.New(cfg.StartDate, cfg.EndDate, cfg.SpeedMultiplier, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create simulation clock")
	}

	manager := events.NewManager(events.NewBus(), log)
	registry := timers.NewRegistry(log)
	office := roster.New(roster.DefaultCharacters(), log)
	book := ledger.New(cfg.StartingCash, manager, log)
	gen := generator.New(seed, log)
	feed := activity.NewLog(log)
	queue := simqueue.New(office, registry, gen, manager, feed, log)

	sim := engine.New(engine.Options{
		Config:   cfg,
		Clock:    simClock,
		Queue:    queue,
		Gen:      gen,
		Roster:   office,
		Ledger:   book,
		Timers:   registry,
		Manager:  manager,
		Activity: feed,
	}, log)

	go sim.Run()
	sim.Start()

	srv := server.New(server.Config{
		Log:      log,
		Port:     cfg.Port,
		DevMode:  cfg.DevMode,
		Engine:   sim,
		Queue:    queue,
		Ledger:   book,
		Roster:   office,
		Activity: feed,
		Manager:  manager,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	sim.Stop()
	log.Info().Msg("Shutdown complete")
}
