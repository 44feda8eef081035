package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// DescribeAttachments renders non-text parts of a message as plain lines so
// they can travel in a text-only transcript.
func DescribeAttachments(msg *tgbotapi.Message) []string {
	parts := make([]string, 0, 8)

	if msg.Document != nil {
		parts = append(parts, fmt.Sprintf(
			"Document: %s (%d bytes, mime %s).",
			msg.Document.FileName, msg.Document.FileSize, msg.Document.MimeType,
		))
	}
	if len(msg.Photo) > 0 {
		best := msg.Photo[len(msg.Photo)-1]
		parts = append(parts, fmt.Sprintf(
			"Photo: resolution %dx%d (%d bytes).",
			best.Width, best.Height, best.FileSize,
		))
	}
	if msg.Audio != nil {
		parts = append(parts, fmt.Sprintf(
			"Audio: %s (%d sec, %d bytes, mime %s).",
			msg.Audio.Title, msg.Audio.Duration, msg.Audio.FileSize, msg.Audio.MimeType,
		))
	}
	if msg.Voice != nil {
		parts = append(parts, fmt.Sprintf(
			"Voice message: duration %d sec (%d bytes, mime %s).",
			msg.Voice.Duration, msg.Voice.FileSize, msg.Voice.MimeType,
		))
	}
	if msg.Video != nil {
		parts = append(parts, fmt.Sprintf(
			"Video: resolution %dx%d (%d sec, %d bytes, mime %s).",
			msg.Video.Width, msg.Video.Height, msg.Video.Duration,
			msg.Video.FileSize, msg.Video.MimeType,
		))
	}
	if msg.Sticker != nil {
		parts = append(parts, fmt.Sprintf(
			"Sticker received: set %s, emoji %s",
			msg.Sticker.SetName, msg.Sticker.Emoji,
		))
	}

	return parts
}
