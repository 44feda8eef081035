package chat

import (
	"encoding/json"

	"chatgpt-session/internal/domain"
)

type completionRequest struct {
	Model    string        `json:"model"`
	Messages []wireMessage `json:"messages"`
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionResponse struct {
	Choices []struct {
		Message *struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func buildPayload(model string, history []domain.Message) ([]byte, error) {
	req := completionRequest{
		Model:    model,
		Messages: make([]wireMessage, 0, len(history)),
	}
	for _, m := range history {
		req.Messages = append(req.Messages, wireMessage{
			Role:    m.Role.String(),
			Content: m.Content,
		})
	}
	return json.Marshal(req)
}

func parseReply(resp Response) (string, error) {
	var body completionResponse
	if err := resp.JSON(&body); err != nil {
		return "", &ResponseShapeError{Reason: "invalid json", Err: err}
	}
	if len(body.Choices) == 0 {
		return "", &ResponseShapeError{Reason: "no choices"}
	}
	msg := body.Choices[0].Message
	if msg == nil || msg.Content == nil {
		return "", &ResponseShapeError{Reason: "missing choices[0].message.content"}
	}
	return *msg.Content, nil
}
