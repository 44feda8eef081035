package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_ENDPOINT", "OPENAI_TRANSPORT",
		"ASSISTANT_PROMPT", "REQUEST_TIMEOUT_SECONDS", "LOG_LEVEL", "HTTP_ADDR",
		"TELEGRAM_BOT_TOKEN", "ADMIN_USER_IDS", "ALLOWED_TELEGRAM_USER_IDS",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Model != "gpt-4o-mini" {
		t.Errorf("Model = %q", cfg.Model)
	}
	if cfg.Transport != "http" {
		t.Errorf("Transport = %q", cfg.Transport)
	}
	if cfg.RequestTimeout != 120*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.RequestTimeout)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.AssistantPrompt != "" {
		t.Errorf("AssistantPrompt = %q, want empty", cfg.AssistantPrompt)
	}
}

func TestLoadMissingKey(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_MODEL", "from-env")

	path := filepath.Join(t.TempDir(), ".env")
	content := "OPENAI_API_KEY=sk-file\nOPENAI_MODEL=from-file\nREQUEST_TIMEOUT_SECONDS=5\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.OpenAIKey != "sk-file" {
		t.Errorf("OpenAIKey = %q", cfg.OpenAIKey)
	}
	if cfg.Model != "from-env" {
		t.Errorf("Model = %q, env should win", cfg.Model)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.RequestTimeout)
	}
}

func TestGetenvIntDefaultInvalid(t *testing.T) {
	t.Setenv("SOME_INT", "nope")
	if got := getenvIntDefault("SOME_INT", 7); got != 7 {
		t.Fatalf("got %d, want default", got)
	}
}

func TestParseIDs(t *testing.T) {
	got := parseIDs(" 1, 2,,x, 30 ")
	want := []int64{1, 2, 30}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
	if parseIDs("  ") != nil {
		t.Fatal("expected nil for blank input")
	}
}
