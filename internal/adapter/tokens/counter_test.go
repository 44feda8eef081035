package tokens

import (
	"testing"

	"chatgpt-session/internal/domain"
)

func TestCounterEmpty(t *testing.T) {
	c, err := NewCounter()
	if err != nil {
		t.Fatalf("NewCounter err: %v", err)
	}
	n, err := c.Count(nil)
	if err != nil {
		t.Fatalf("Count err: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 tokens, got %d", n)
	}
}

func TestCounterGrowsWithTranscript(t *testing.T) {
	c, err := NewCounter()
	if err != nil {
		t.Fatalf("NewCounter err: %v", err)
	}

	one := []domain.Message{{Role: domain.RoleUser, Content: "hello there"}}
	two := append(one, domain.Message{Role: domain.RoleAssistant, Content: "general kenobi"})

	n1, err := c.Count(one)
	if err != nil {
		t.Fatalf("Count err: %v", err)
	}
	n2, err := c.Count(two)
	if err != nil {
		t.Fatalf("Count err: %v", err)
	}
	if n1 <= perReply+perMessage {
		t.Fatalf("single message should cost more than framing, got %d", n1)
	}
	if n2 <= n1 {
		t.Fatalf("expected count to grow: %d then %d", n1, n2)
	}
}
