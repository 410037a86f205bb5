package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"

	"finbot/internal/assistant"
	"finbot/internal/backend"
	"finbot/internal/cli"
	httpserver "finbot/internal/http"
	"finbot/internal/report"
	"finbot/internal/router"
	"finbot/internal/telegram"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	ctx := cli.SignalContext(logger)

	factory := backend.NewFactory(logger)
	result, err := factory.Create(ctx, cfg)
	if err != nil {
		logger.Error("Failed to create backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Error("Cleanup failed", "error", err)
			}
		}()
	}

	var gateway router.Assistant
	if cfg.AssistantEnabled {
		gateway = assistant.New(cfg.AssistantURL, cfg.AssistantModel, cfg.AssistantTimeout)
		logger.Info("Assistant enabled", "url", cfg.AssistantURL, "model", cfg.AssistantModel)
	}

	handler := router.New(result.Store, report.New(result.Store), gateway)
	bot := telegram.NewBot(telegram.NewClient(cfg.TelegramToken), handler, cfg.PollTimeout)
	health := httpserver.NewServer(cfg.HealthPort)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return bot.Run(gctx) })
	g.Go(func() error { return health.Run(gctx) })

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Bot stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Bot stopped")
}
