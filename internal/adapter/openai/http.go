package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	openaiapi "github.com/sashabaranov/go-openai"

	"chatgpt-session/internal/usecase/chat"
)

// HTTPTransport posts the session payload as-is.
type HTTPTransport struct {
	client *http.Client
}

func NewHTTPTransport(client *http.Client) *HTTPTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPTransport{client: client}
}

func (t *HTTPTransport) Call(ctx context.Context, url string, header http.Header, body []byte) (chat.Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return chat.Response{}, err
	}
	for k, vals := range header {
		for _, v := range vals {
			httpReq.Header.Add(k, v)
		}
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return chat.Response{}, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return chat.Response{StatusCode: resp.StatusCode}, err
	}

	out := chat.Response{StatusCode: resp.StatusCode, Body: respBody}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return out, apiError(resp.StatusCode, respBody)
	}
	return out, nil
}

func apiError(status int, body []byte) error {
	var envelope openaiapi.ErrorResponse
	if json.Unmarshal(body, &envelope) == nil && envelope.Error != nil && envelope.Error.Message != "" {
		return fmt.Errorf("openai error: %s", envelope.Error.Message)
	}
	return fmt.Errorf("openai error: status %d", status)
}
