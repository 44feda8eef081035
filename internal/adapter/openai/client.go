package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	openaiapi "github.com/sashabaranov/go-openai"

	"chatgpt-session/internal/usecase/chat"
)

// SDKTransport serves the transport contract through the go-openai client.
// The client validates the request and classifies failures; the bytes on the
// wire and the reply body are exactly the session's, sent to the exact
// endpoint the session names.
type SDKTransport struct {
	httpClient *http.Client
}

func NewSDKTransport(httpClient *http.Client) *SDKTransport {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &SDKTransport{httpClient: httpClient}
}

func (t *SDKTransport) Call(ctx context.Context, endpoint string, header http.Header, body []byte) (chat.Response, error) {
	target, err := url.Parse(endpoint)
	if err != nil {
		return chat.Response{}, fmt.Errorf("sdk transport: endpoint %q: %w", endpoint, err)
	}
	if target.Scheme == "" || target.Host == "" {
		return chat.Response{}, fmt.Errorf("sdk transport: endpoint %q is not an absolute url", endpoint)
	}

	var apiReq openaiapi.ChatCompletionRequest
	if err := json.Unmarshal(body, &apiReq); err != nil {
		return chat.Response{}, err
	}
	apiReq.Stream = false

	ex := &exchange{
		client: t.httpClient,
		target: target,
		header: header,
		body:   body,
	}
	cfg := openaiapi.DefaultConfig(strings.TrimPrefix(header.Get("Authorization"), "Bearer "))
	cfg.HTTPClient = ex

	_, err = openaiapi.NewClientWithConfig(cfg).CreateChatCompletion(ctx, apiReq)

	resp := chat.Response{StatusCode: ex.status, Body: ex.raw}
	if err != nil && !resp.OK() {
		return resp, err
	}
	// A 2xx body the SDK cannot decode is left to the session's parser.
	return resp, nil
}

// exchange is the HTTP doer handed to the SDK. It pins the request to the
// session's endpoint and payload and keeps the raw reply.
type exchange struct {
	client *http.Client
	target *url.URL
	header http.Header
	body   []byte

	status int
	raw    []byte
}

func (e *exchange) Do(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.URL = e.target
	out.Host = e.target.Host
	out.Body = io.NopCloser(bytes.NewReader(e.body))
	out.ContentLength = int64(len(e.body))
	out.GetBody = nil
	for k, vals := range e.header {
		out.Header.Del(k)
		for _, v := range vals {
			out.Header.Add(k, v)
		}
	}

	resp, err := e.client.Do(out)
	if err != nil {
		return nil, err
	}
	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}

	e.status = resp.StatusCode
	e.raw = raw
	resp.Body = io.NopCloser(bytes.NewReader(raw))
	return resp, nil
}
