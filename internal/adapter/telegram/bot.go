package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"chatgpt-session/internal/config"
	"chatgpt-session/internal/domain"
	"chatgpt-session/internal/usecase/chat"
)

const chunkSize = 2048

type Sessions interface {
	GetOrCreate(key string) *chat.Session
	Reset(key string) *chat.Session
}

type TokenCounter interface {
	Count(messages []domain.Message) (int, error)
}

type Bot struct {
	api      *tgbotapi.BotAPI
	cfg      config.Config
	sessions Sessions
	tokens   TokenCounter
}

func NewBot(cfg config.Config, sessions Sessions, tokens TokenCounter) (*Bot, error) {
	if cfg.TelegramToken == "" {
		return nil, errors.New("telegram token is required")
	}
	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, err
	}

	return &Bot{
		api:      api,
		cfg:      cfg,
		sessions: sessions,
		tokens:   tokens,
	}, nil
}

func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	log.Info().Str("bot", b.api.Self.UserName).Msg("telegram bot started")

	err := b.consume(ctx, updates, b.handleMessage)
	b.api.StopReceivingUpdates()
	return err
}

// consume dispatches user messages until ctx ends or updates is closed.
func (b *Bot) consume(ctx context.Context, updates tgbotapi.UpdatesChannel, handle func(context.Context, *tgbotapi.Message)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				log.Info().Msg("telegram update channel closed")
				return nil
			}
			if update.Message == nil {
				continue
			}
			msg := update.Message
			if msg.From == nil {
				continue
			}
			go handle(ctx, msg)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if !isAllowedUser(msg.From.ID, b.cfg) {
		deny := tgbotapi.NewMessage(msg.Chat.ID, "access denied")
		deny.ReplyToMessageID = msg.MessageID
		if _, err := b.api.Send(deny); err != nil {
			log.Error().Err(err).Int64("chat_id", msg.Chat.ID).Msg("failed to send deny message")
		}
		return
	}

	key := strconv.FormatInt(msg.Chat.ID, 10)
	cmd := parseCommand(msg.Text)

	switch cmd.name {
	case "reset":
		b.sessions.Reset(key)
		b.sendText(msg.Chat.ID, msg.MessageID, "conversation cleared")
		return
	case "history":
		b.sendText(msg.Chat.ID, msg.MessageID, b.describeHistory(b.sessions.GetOrCreate(key)))
		return
	case "last":
		last, ok := b.sessions.GetOrCreate(key).LastByRole(domain.RoleAssistant)
		if !ok {
			b.sendText(msg.Chat.ID, msg.MessageID, "no replies yet")
			return
		}
		b.sendText(msg.Chat.ID, msg.MessageID, last)
		return
	}

	text := BuildUserText(cmd.text, msg)
	if strings.TrimSpace(text) == "" {
		b.sendText(msg.Chat.ID, msg.MessageID, "i need some content to work with")
		return
	}

	b.sendChatAction(msg.Chat.ID, cmd.asFile)

	reqCtx, cancel := context.WithTimeout(ctx, b.cfg.RequestTimeout)
	defer cancel()

	session := b.sessions.GetOrCreate(key)
	resp, err := session.Send(reqCtx, text)
	if err != nil {
		log.Error().Err(err).Int64("chat_id", msg.Chat.ID).Str("session_id", session.ID()).Msg("completion failed")
		b.sendText(msg.Chat.ID, msg.MessageID, failureText(err))
		return
	}

	if cmd.asFile || shouldSendAsFile(resp) {
		if err := b.sendAsFile(msg.Chat.ID, msg.MessageID, resp); err != nil {
			log.Error().Err(err).Int64("chat_id", msg.Chat.ID).Msg("failed to send file")
			b.sendText(msg.Chat.ID, msg.MessageID, "could not send file, here is the text")
			b.sendText(msg.Chat.ID, msg.MessageID, resp)
		}
		return
	}

	b.sendText(msg.Chat.ID, msg.MessageID, resp)
}

func (b *Bot) describeHistory(session *chat.Session) string {
	history := session.History()
	out := fmt.Sprintf("%d messages", len(history))
	if b.tokens == nil {
		return out
	}
	n, err := b.tokens.Count(history)
	if err != nil {
		log.Warn().Err(err).Msg("token count failed")
		return out
	}
	return fmt.Sprintf("%s, ~%d tokens", out, n)
}

func failureText(err error) string {
	var shapeErr *chat.ResponseShapeError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "openai took too long, try again later"
	case errors.As(err, &shapeErr):
		return "openai sent a reply i could not read"
	default:
		return "failed to reach openai, try again later"
	}
}

func (b *Bot) sendText(chatID int64, replyTo int, text string) {
	chunks := splitText(text, chunkSize)
	for idx, chunk := range chunks {
		msg := tgbotapi.NewMessage(chatID, chunk)
		msg.ParseMode = tgbotapi.ModeMarkdown
		if idx == 0 {
			msg.ReplyToMessageID = replyTo
		}
		if _, err := b.api.Send(msg); err != nil {
			log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send reply")
		}
	}
}

func (b *Bot) sendChatAction(chatID int64, asFile bool) {
	action := tgbotapi.ChatTyping
	if asFile {
		action = tgbotapi.ChatUploadDocument
	}
	if _, err := b.api.Request(tgbotapi.NewChatAction(chatID, action)); err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("failed to send chat action")
	}
}

func (b *Bot) sendAsFile(chatID int64, replyTo int, content string) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  "response.md",
		Bytes: []byte(content),
	})
	doc.ReplyToMessageID = replyTo

	_, err := b.api.Send(doc)
	return err
}

func shouldSendAsFile(text string) bool {
	return len([]rune(text)) > chunkSize
}

func isAllowedUser(userID int64, cfg config.Config) bool {
	for _, id := range cfg.AdminUserIDs {
		if id == userID {
			return true
		}
	}

	if len(cfg.AllowedUserIDs) == 0 {
		return true
	}

	for _, id := range cfg.AllowedUserIDs {
		if id == userID {
			return true
		}
	}

	return false
}

type command struct {
	name   string
	text   string
	asFile bool
}

// parseCommand recognises /reset, /history, /last and /file. Anything else
// is plain text for the model.
func parseCommand(text string) command {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "/") {
		return command{text: text}
	}

	head, rest, _ := strings.Cut(trimmed, " ")
	name := strings.ToLower(strings.TrimPrefix(head, "/"))
	if at := strings.Index(name, "@"); at >= 0 {
		name = name[:at]
	}

	switch name {
	case "reset", "history", "last":
		return command{name: name}
	case "file":
		return command{text: strings.TrimSpace(rest), asFile: true}
	default:
		return command{text: text}
	}
}

func BuildUserText(text string, msg *tgbotapi.Message) string {
	parts := make([]string, 0, 6)
	if text != "" {
		parts = append(parts, text)
	}
	if msg.Caption != "" {
		parts = append(parts, "Caption: "+msg.Caption)
	}
	parts = append(parts, DescribeAttachments(msg)...)

	return strings.Join(parts, "\n")
}

func splitText(text string, chunkSize int) []string {
	if chunkSize <= 0 {
		return []string{text}
	}

	runes := []rune(text)
	if len(runes) <= chunkSize {
		return []string{text}
	}

	chunks := make([]string, 0, len(runes)/chunkSize+1)
	for start := 0; start < len(runes); start += chunkSize {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}

	return chunks
}
