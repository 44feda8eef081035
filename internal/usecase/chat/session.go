package chat

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"chatgpt-session/internal/domain"
)

type Option func(*Session)

func WithEndpoint(url string) Option {
	return func(s *Session) {
		if url != "" {
			s.endpoint = url
		}
	}
}

// WithSystemPrompt seeds the transcript with a system message.
func WithSystemPrompt(prompt string) Option {
	return func(s *Session) {
		if prompt != "" {
			s.transcript.Append(domain.RoleSystem, prompt)
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) {
		s.log = logger
	}
}

// Session is one conversation against the completion endpoint.
// Send calls are serialized; History may be read at any time.
type Session struct {
	id        string
	token     string
	model     string
	endpoint  string
	transport Transport
	log       zerolog.Logger

	transcript *domain.Transcript
	sem        chan struct{}

	mu      sync.Mutex
	lastRaw []byte
}

func NewSession(token, model string, transport Transport, opts ...Option) *Session {
	s := &Session{
		id:         uuid.NewString(),
		token:      token,
		model:      model,
		endpoint:   DefaultEndpoint,
		transport:  transport,
		log:        log.Logger,
		transcript: domain.NewTranscript(),
		sem:        make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With().Str("session_id", s.id).Str("model", model).Logger()
	return s
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Model() string {
	return s.model
}

// Send appends text as a user turn, asks the endpoint for a reply using the
// whole transcript and appends the reply. On failure the user turn stays.
func (s *Session) Send(ctx context.Context, text string) (string, error) {
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	defer func() { <-s.sem }()

	s.transcript.Append(domain.RoleUser, text)
	history := s.transcript.All()

	body, err := buildPayload(s.model, history)
	if err != nil {
		return "", err
	}

	header := make(http.Header)
	header.Set("Content-Type", "application/json")
	header.Set("Authorization", "Bearer "+s.token)

	started := time.Now()
	resp, err := s.transport.Call(ctx, s.endpoint, header, body)
	s.setLastResponse(resp.Body)
	if err != nil {
		s.log.Warn().Err(err).Int("status", resp.StatusCode).Msg("completion request failed")
		return "", &TransportError{StatusCode: resp.StatusCode, Err: err}
	}
	if !resp.OK() {
		s.log.Warn().Int("status", resp.StatusCode).Msg("completion request rejected")
		return "", &TransportError{StatusCode: resp.StatusCode}
	}

	reply, err := parseReply(resp)
	if err != nil {
		s.log.Warn().Err(err).Msg("completion response unreadable")
		return "", err
	}

	s.transcript.Append(domain.RoleAssistant, reply)
	s.log.Debug().
		Int("messages", len(history)+1).
		Dur("elapsed", time.Since(started)).
		Msg("completion received")

	return reply, nil
}

func (s *Session) History() []domain.Message {
	return s.transcript.All()
}

func (s *Session) LastByRole(role domain.Role) (string, bool) {
	return s.transcript.LastByRole(role)
}

// LastResponse returns the raw body of the most recent transport call.
func (s *Session) LastResponse() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.lastRaw...)
}

func (s *Session) setLastResponse(body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRaw = append([]byte(nil), body...)
}
