package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

var ErrMissingAPIKey = errors.New("openai api key is required")

type Config struct {
	OpenAIKey       string
	Model           string
	Endpoint        string
	Transport       string
	AssistantPrompt string
	RequestTimeout  time.Duration
	LogLevel        string

	HTTPAddr string

	TelegramToken  string
	AdminUserIDs   []int64
	AllowedUserIDs []int64
}

// Load reads path into the environment (existing variables win) and builds
// the config from it.
func Load(path string) (Config, error) {
	if err := godotenv.Load(path); err != nil {
		log.Debug().Err(err).Str("path", path).Msg("could not read .env")
	}

	cfg := Config{
		Model:           getenvDefault("OPENAI_MODEL", "gpt-4o-mini"),
		Endpoint:        getenvDefault("OPENAI_ENDPOINT", ""),
		Transport:       getenvDefault("OPENAI_TRANSPORT", "http"),
		AssistantPrompt: os.Getenv("ASSISTANT_PROMPT"),
		RequestTimeout:  time.Duration(getenvIntDefault("REQUEST_TIMEOUT_SECONDS", 120)) * time.Second,
		LogLevel:        getenvDefault("LOG_LEVEL", "info"),
		HTTPAddr:        getenvDefault("HTTP_ADDR", ":8080"),
	}

	cfg.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	cfg.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.AdminUserIDs = parseIDs(os.Getenv("ADMIN_USER_IDS"))
	cfg.AllowedUserIDs = parseIDs(os.Getenv("ALLOWED_TELEGRAM_USER_IDS"))

	if cfg.OpenAIKey == "" {
		return cfg, ErrMissingAPIKey
	}
	return cfg, nil
}

func parseIDs(raw string) []int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			log.Warn().Err(err).Str("value", p).Msg("skipping user id")
			continue
		}
		ids = append(ids, v)
	}
	return ids
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvIntDefault(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Int("default", def).Msg("invalid int, using default")
		return def
	}
	return n
}
