package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"chatgpt-session/internal/adapter/memory"
	"chatgpt-session/internal/domain"
	"chatgpt-session/internal/usecase/chat"
)

type fixedCounter int

func (c fixedCounter) Count(msgs []domain.Message) (int, error) {
	return int(c) * len(msgs), nil
}

func setupRouter(transport chat.Transport) (http.Handler, *memory.Store) {
	store := memory.NewStore(func() *chat.Session {
		return chat.NewSession("tok", "gpt-test", transport)
	})
	return NewRouter(New(store, fixedCounter(10), 0)), store
}

func okTransport(reply string) chat.Transport {
	return chat.TransportFunc(func(context.Context, string, http.Header, []byte) (chat.Response, error) {
		body, _ := json.Marshal(map[string]any{
			"choices": []any{map[string]any{"message": map[string]string{"content": reply}}},
		})
		return chat.Response{StatusCode: http.StatusOK, Body: body}, nil
	})
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	return resp
}

func createSession(t *testing.T, h http.Handler) string {
	t.Helper()
	resp := do(t, h, http.MethodPost, "/api/sessions", "")
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}
	var out map[string]string
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out["model"] != "gpt-test" {
		t.Fatalf("unexpected model %q", out["model"])
	}
	return out["id"]
}

func TestCreateSession(t *testing.T) {
	r, store := setupRouter(okTransport("hi"))
	id := createSession(t, r)
	if _, ok := store.Get(id); !ok {
		t.Fatalf("session %q not stored", id)
	}
}

func TestSendAndHistory(t *testing.T) {
	r, _ := setupRouter(okTransport("hello"))
	id := createSession(t, r)

	resp := do(t, r, http.MethodPost, "/api/sessions/"+id+"/messages", `{"content":"hi"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var sent map[string]string
	_ = json.Unmarshal(resp.Body.Bytes(), &sent)
	if sent["reply"] != "hello" {
		t.Fatalf("unexpected reply %q", sent["reply"])
	}

	resp = do(t, r, http.MethodGet, "/api/sessions/"+id+"/messages", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var hist struct {
		Messages []messageDTO `json:"messages"`
		Tokens   int          `json:"tokens"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &hist); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []messageDTO{{"user", "hi"}, {"assistant", "hello"}}
	if len(hist.Messages) != len(want) {
		t.Fatalf("unexpected history %+v", hist.Messages)
	}
	for i := range want {
		if hist.Messages[i] != want[i] {
			t.Fatalf("history[%d] = %+v, want %+v", i, hist.Messages[i], want[i])
		}
	}
	if hist.Tokens != 20 {
		t.Fatalf("unexpected tokens %d", hist.Tokens)
	}
}

func TestSendEmptyContentAllowed(t *testing.T) {
	r, _ := setupRouter(okTransport(""))
	id := createSession(t, r)

	resp := do(t, r, http.MethodPost, "/api/sessions/"+id+"/messages", `{"content":""}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestSendBadRequests(t *testing.T) {
	r, _ := setupRouter(okTransport("x"))
	id := createSession(t, r)

	for _, body := range []string{`not json`, `{}`} {
		resp := do(t, r, http.MethodPost, "/api/sessions/"+id+"/messages", body)
		if resp.Code != http.StatusBadRequest {
			t.Errorf("body %q: expected 400, got %d", body, resp.Code)
		}
	}
}

func TestUnknownSession(t *testing.T) {
	r, _ := setupRouter(okTransport("x"))

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodPost, "/api/sessions/nope/messages", `{"content":"hi"}`},
		{http.MethodGet, "/api/sessions/nope/messages", ""},
		{http.MethodGet, "/api/sessions/nope/last", ""},
	} {
		resp := do(t, r, tc.method, tc.path, tc.body)
		if resp.Code != http.StatusNotFound {
			t.Errorf("%s %s: expected 404, got %d", tc.method, tc.path, resp.Code)
		}
	}
}

func TestSendTransportFailure(t *testing.T) {
	failing := chat.TransportFunc(func(context.Context, string, http.Header, []byte) (chat.Response, error) {
		return chat.Response{}, errors.New("connection refused")
	})
	r, store := setupRouter(failing)
	id := createSession(t, r)

	resp := do(t, r, http.MethodPost, "/api/sessions/"+id+"/messages", `{"content":"hi"}`)
	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "unavailable") {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}

	session, _ := store.Get(id)
	if hist := session.History(); len(hist) != 1 || hist[0].Role != domain.RoleUser {
		t.Fatalf("expected only the user turn, got %+v", hist)
	}
}

func TestSendShapeFailure(t *testing.T) {
	broken := chat.TransportFunc(func(context.Context, string, http.Header, []byte) (chat.Response, error) {
		return chat.Response{StatusCode: http.StatusOK, Body: []byte(`{"choices":[]}`)}, nil
	})
	r, _ := setupRouter(broken)
	id := createSession(t, r)

	resp := do(t, r, http.MethodPost, "/api/sessions/"+id+"/messages", `{"content":"hi"}`)
	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "unexpected response") {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}
}

func TestLastByRole(t *testing.T) {
	r, _ := setupRouter(okTransport("hello"))
	id := createSession(t, r)

	resp := do(t, r, http.MethodGet, "/api/sessions/"+id+"/last", "")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on empty session, got %d", resp.Code)
	}

	do(t, r, http.MethodPost, "/api/sessions/"+id+"/messages", `{"content":"hi"}`)

	tests := []struct {
		query string
		code  int
		want  string
	}{
		{"", http.StatusOK, "hello"},
		{"?role=assistant", http.StatusOK, "hello"},
		{"?role=user", http.StatusOK, "hi"},
		{"?role=system", http.StatusNotFound, ""},
		{"?role=robot", http.StatusBadRequest, ""},
	}
	for _, tc := range tests {
		resp := do(t, r, http.MethodGet, "/api/sessions/"+id+"/last"+tc.query, "")
		if resp.Code != tc.code {
			t.Errorf("%s: expected %d, got %d", tc.query, tc.code, resp.Code)
			continue
		}
		if tc.code != http.StatusOK {
			continue
		}
		var out map[string]string
		_ = json.Unmarshal(resp.Body.Bytes(), &out)
		if out["content"] != tc.want {
			t.Errorf("%s: got %q want %q", tc.query, out["content"], tc.want)
		}
	}
}

func TestSendRejectsOversizedBody(t *testing.T) {
	r, store := setupRouter(okTransport("x"))
	id := createSession(t, r)

	body := `{"content":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	resp := do(t, r, http.MethodPost, "/api/sessions/"+id+"/messages", body)
	if resp.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", resp.Code)
	}

	session, _ := store.Get(id)
	if hist := session.History(); len(hist) != 0 {
		t.Fatalf("oversized body must not reach the session, got %d messages", len(hist))
	}
}
