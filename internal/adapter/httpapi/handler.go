package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"chatgpt-session/internal/domain"
	"chatgpt-session/internal/usecase/chat"
)

type Sessions interface {
	Create() *chat.Session
	Get(key string) (*chat.Session, bool)
}

type TokenCounter interface {
	Count(messages []domain.Message) (int, error)
}

const maxBodyBytes = 1 << 20

// Handler exposes sessions over JSON.
type Handler struct {
	sessions Sessions
	tokens   TokenCounter
	timeout  time.Duration
}

func New(sessions Sessions, tokens TokenCounter, timeout time.Duration) *Handler {
	return &Handler{
		sessions: sessions,
		tokens:   tokens,
		timeout:  timeout,
	}
}

// NewRouter mounts the handler under /api with the usual middleware.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Route("/api", h.RegisterRoutes)
	return r
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/sessions", h.handleCreateSession)
	r.Route("/sessions/{sessionID}", func(r chi.Router) {
		r.Post("/messages", h.handleSend)
		r.Get("/messages", h.handleHistory)
		r.Get("/last", h.handleLast)
	})
}

type messageDTO struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.Create()
	respondJSON(w, http.StatusCreated, map[string]string{
		"id":    session.ID(),
		"model": session.Model(),
	})
}

func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var payload struct {
		Content *string `json:"content"`
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Content == nil {
		respondError(w, http.StatusBadRequest, "content is required")
		return
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	reply, err := session.Send(ctx, *payload.Content)
	if err != nil {
		log.Error().Err(err).
			Str("session_id", session.ID()).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("send failed")

		var transportErr *chat.TransportError
		var shapeErr *chat.ResponseShapeError
		switch {
		case errors.As(err, &shapeErr):
			respondError(w, http.StatusBadGateway, "unexpected response from completion endpoint")
		case errors.Is(err, context.DeadlineExceeded):
			respondError(w, http.StatusGatewayTimeout, "completion endpoint timed out")
		case errors.As(err, &transportErr):
			respondError(w, http.StatusBadGateway, "completion endpoint unavailable")
		default:
			respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	history := session.History()
	messages := make([]messageDTO, 0, len(history))
	for _, m := range history {
		messages = append(messages, messageDTO{Role: m.Role.String(), Content: m.Content})
	}

	resp := struct {
		Messages []messageDTO `json:"messages"`
		Tokens   *int         `json:"tokens,omitempty"`
	}{Messages: messages}

	if h.tokens != nil {
		if n, err := h.tokens.Count(history); err == nil {
			resp.Tokens = &n
		} else {
			log.Warn().Err(err).Str("session_id", session.ID()).Msg("token count failed")
		}
	}

	respondJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleLast(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	role, ok := parseRole(r.URL.Query().Get("role"))
	if !ok {
		respondError(w, http.StatusBadRequest, "role must be system, user or assistant")
		return
	}

	content, found := session.LastByRole(role)
	if !found {
		respondError(w, http.StatusNotFound, "no message for role")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"content": content})
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*chat.Session, bool) {
	session, ok := h.sessions.Get(chi.URLParam(r, "sessionID"))
	if !ok {
		respondError(w, http.StatusNotFound, "session not found")
	}
	return session, ok
}

// parseRole maps the query value onto a Role; empty means assistant.
func parseRole(raw string) (domain.Role, bool) {
	switch domain.Role(raw) {
	case "":
		return domain.RoleAssistant, true
	case domain.RoleSystem, domain.RoleUser, domain.RoleAssistant:
		return domain.Role(raw), true
	default:
		return "", false
	}
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
