package chat

import (
	"context"
	"encoding/json"
	"net/http"
)

const DefaultEndpoint = "https://api.openai.com/v1/chat/completions"

// Transport delivers one JSON request to the completion endpoint.
// It returns an error for network failures and may return one for
// non-success statuses.
type Transport interface {
	Call(ctx context.Context, url string, header http.Header, body []byte) (Response, error)
}

type Response struct {
	StatusCode int
	Body       []byte
}

func (r Response) JSON(v any) error {
	return json.Unmarshal(r.Body, v)
}

func (r Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// TransportFunc adapts a plain function to Transport.
type TransportFunc func(ctx context.Context, url string, header http.Header, body []byte) (Response, error)

func (f TransportFunc) Call(ctx context.Context, url string, header http.Header, body []byte) (Response, error) {
	return f(ctx, url, header, body)
}
