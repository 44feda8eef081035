package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog/log"

	"chatgpt-session/internal/app"
	"chatgpt-session/internal/config"
	"chatgpt-session/internal/logging"
)

var cli struct {
	Env       string        `help:"Path to a .env file." default:".env" type:"path"`
	Model     string        `help:"Model identifier; overrides OPENAI_MODEL." short:"m"`
	System    string        `help:"System prompt; overrides ASSISTANT_PROMPT." short:"s"`
	Transport string        `help:"Transport to use (http or sdk); overrides OPENAI_TRANSPORT."`
	Timeout   time.Duration `help:"Per-request timeout; overrides REQUEST_TIMEOUT_SECONDS."`
}

func main() {
	kong.Parse(&cli,
		kong.Name("chat"),
		kong.Description("Talk to a chat completion model from the terminal."),
	)

	cfg, err := config.Load(cli.Env)
	logging.Setup(cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cli.Model != "" {
		cfg.Model = cli.Model
	}
	if cli.System != "" {
		cfg.AssistantPrompt = cli.System
	}
	if cli.Transport != "" {
		cfg.Transport = cli.Transport
	}
	if cli.Timeout > 0 {
		cfg.RequestTimeout = cli.Timeout
	}

	newSession, err := app.SessionFactory(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build transport")
	}

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	r := &repl{session: newSession(), timeout: cfg.RequestTimeout}
	if err := r.run(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("chat stopped with error")
	}
}
