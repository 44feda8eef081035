package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"chatgpt-session/internal/adapter/httpapi"
	"chatgpt-session/internal/adapter/memory"
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

	handler := httpapi.New(memory.NewStore(newSession), counter, cfg.RequestTimeout)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
		}
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Msg("listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
}
