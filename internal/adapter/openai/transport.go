package openai

import (
	"fmt"
	"net/http"
	"strings"

	"chatgpt-session/internal/usecase/chat"
)

const (
	TransportHTTP = "http"
	TransportSDK  = "sdk"
)

// NewTransport picks a transport by name; empty means http.
func NewTransport(kind string, client *http.Client) (chat.Transport, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", TransportHTTP:
		return NewHTTPTransport(client), nil
	case TransportSDK:
		return NewSDKTransport(client), nil
	default:
		return nil, fmt.Errorf("unknown transport %q", kind)
	}
}
