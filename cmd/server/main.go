// Package main is the entry point for the yield allocation engine.
//
// The engine computes recommended capital allocations across a fixed set of
// yield-bearing protocols using mean-variance (max-Sharpe) optimization, and
// exposes the results over a small HTTP API. Every request is stateless; the
// only process-wide state is the immutable protocol registry.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/usdevault/yield-engine/internal/config"
	"github.com/usdevault/yield-engine/internal/modules/market"
	"github.com/usdevault/yield-engine/internal/modules/optimization"
	"github.com/usdevault/yield-engine/internal/modules/portfolio"
	"github.com/usdevault/yield-engine/internal/modules/registry"
	"github.com/usdevault/yield-engine/internal/server"
	"github.com/usdevault/yield-engine/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting yield allocation engine")

	// The registry is constructed once and shared read-only by every request.
	reg := registry.New()
	log.Info().Strs("protocols", reg.Names()).Msg("Protocol registry initialized")

	rng := market.DefaultSource()
	generator := market.NewGenerator(rng, cfg.ReturnNoiseSigma, cfg.CorrelationScale, log)
	optimizer := optimization.NewSharpeOptimizer(cfg.RiskFreeRate, log)
	service := portfolio.NewService(reg, generator, optimizer, rng, log)

	srv := server.New(server.Config{
		Log:      log,
		Config:   cfg,
		Registry: reg,
		Service:  service,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal().Err(err).Msg("Server failed")
		}
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}

	log.Info().Msg("Stopped")
}
