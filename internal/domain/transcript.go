package domain

import "sync"

// Transcript is the append-only, ordered log of a conversation.
// It grows without bound; callers that need a window must copy one out of All.
type Transcript struct {
	mu       sync.RWMutex
	messages []Message
}

func NewTranscript() *Transcript {
	return &Transcript{}
}

func (t *Transcript) Append(role Role, content string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, Message{Role: role, Content: content})
}

// All returns a copy of the messages in insertion order.
func (t *Transcript) All() []Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]Message(nil), t.messages...)
}

// LastByRole returns the content of the most recent message from role.
func (t *Transcript) LastByRole(role Role) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for i := len(t.messages) - 1; i >= 0; i-- {
		if t.messages[i].Role == role {
			return t.messages[i].Content, true
		}
	}
	return "", false
}

func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.messages)
}
