package tokens

import (
	"github.com/tiktoken-go/tokenizer"

	"chatgpt-session/internal/domain"
)

// Per-message framing overhead of the chat format, plus the reply primer.
const (
	perMessage = 3
	perReply   = 3
)

// Counter estimates how many prompt tokens a transcript costs.
// It only reports; nothing in the session trims history.
type Counter struct {
	codec tokenizer.Codec
}

func NewCounter() (*Counter, error) {
	codec, err := tokenizer.Get(tokenizer.Cl100kBase)
	if err != nil {
		return nil, err
	}
	return &Counter{codec: codec}, nil
}

func (c *Counter) Count(messages []domain.Message) (int, error) {
	if len(messages) == 0 {
		return 0, nil
	}

	total := perReply
	for _, m := range messages {
		_, roleTokens, err := c.codec.Encode(m.Role.String())
		if err != nil {
			return 0, err
		}
		_, contentTokens, err := c.codec.Encode(m.Content)
		if err != nil {
			return 0, err
		}
		total += perMessage + len(roleTokens) + len(contentTokens)
	}
	return total, nil
}
