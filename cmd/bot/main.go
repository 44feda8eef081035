package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"chatgpt-session/internal/adapter/memory"
	"chatgpt-session/internal/adapter/telegram"
	"chatgpt-session/internal/adapter/tokens"
	"chatgpt-session/internal/app"
	"chatgpt-session/internal/config"
	"chatgpt-session/internal/logging"
)

func main() {
	cfg, err := config.Load(".env")
	logging.Setup(cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	newSession, err := app.SessionFactory(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build transport")
	}
	counter, err := tokens.NewCounter()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load tokenizer")
	}

	bot, err := telegram.NewBot(cfg, memory.NewStore(newSession), counter)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init telegram bot")
	}

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := bot.Run(ctx); err != nil {
		if ctx.Err() != nil {
			log.Info().Err(err).Msg("shutdown")
			return
		}
		log.Fatal().Err(err).Msg("bot stopped with error")
	}
}
