package app

import (
	"net/http"

	"chatgpt-session/internal/adapter/openai"
	"chatgpt-session/internal/config"
	"chatgpt-session/internal/usecase/chat"
)

// SessionFactory builds sessions that share one transport and the
// configured model, endpoint and system prompt.
func SessionFactory(cfg config.Config) (func() *chat.Session, error) {
	transport, err := openai.NewTransport(cfg.Transport, &http.Client{Timeout: cfg.RequestTimeout})
	if err != nil {
		return nil, err
	}

	return func() *chat.Session {
		return chat.NewSession(cfg.OpenAIKey, cfg.Model, transport,
			chat.WithEndpoint(cfg.Endpoint),
			chat.WithSystemPrompt(cfg.AssistantPrompt),
		)
	}, nil
}
