package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type mockProvider struct {
	name    string
	content string
	err     error
	ready   bool
	calls   int
}

func (m *mockProvider) Name() string { return m.name }

func (m *mockProvider) Complete(ctx context.Context, req *Request) (*Response, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return &Response{Content: m.content, FinishReason: "stop"}, nil
}

func (m *mockProvider) Ready(ctx context.Context) bool { return m.ready }

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	p := &mockProvider{name: "mock"}
	r.Register("mock", p)

	got, err := r.Get("mock")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Name() != "mock" {
		t.Errorf("Name() = %q, want mock", got.Name())
	}

	if _, err := r.Get("missing"); !errors.Is(err, ErrProviderNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrProviderNotFound", err)
	}
}

func TestRegistrySetDefault(t *testing.T) {
	r := NewRegistry()
	r.Register("a", &mockProvider{name: "a"})
	r.Register("b", &mockProvider{name: "b"})

	if err := r.SetDefault("b"); err != nil {
		t.Fatalf("SetDefault() error = %v", err)
	}
	p, err := r.Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if p.Name() != "b" {
		t.Errorf("Default().Name() = %q, want b", p.Name())
	}

	if err := r.SetDefault("missing"); !errors.Is(err, ErrProviderNotFound) {
		t.Errorf("SetDefault(missing) error = %v, want ErrProviderNotFound", err)
	}
}

func TestRegistryAutoDefault(t *testing.T) {
	r := NewRegistry()

	if _, err := r.Default(); !errors.Is(err, ErrNoDefaultProvider) {
		t.Errorf("Default() on empty registry error = %v, want ErrNoDefaultProvider", err)
	}

	r.Register("only", &mockProvider{name: "only"})
	p, err := r.Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if p.Name() != "only" {
		t.Errorf("auto default = %q, want only", p.Name())
	}
}

func TestOllamaComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req ollamaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Stream {
			t.Error("Stream = true, want false")
		}
		json.NewEncoder(w).Encode(ollamaResponse{
			Response:        `{"question": "q"}`,
			Done:            true,
			DoneReason:      "stop",
			EvalCount:       12,
			PromptEvalCount: 34,
		})
	}))
	defer srv.Close()

	p := NewOllamaProvider(OllamaConfig{BaseURL: srv.URL})
	resp, err := p.Complete(context.Background(), &Request{Prompt: "hello", MaxTokens: 256})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Content != `{"question": "q"}` {
		t.Errorf("Content = %q", resp.Content)
	}
	if resp.FinishReason != "stop" {
		t.Errorf("FinishReason = %q", resp.FinishReason)
	}
	if resp.Usage.InputTokens != 34 || resp.Usage.OutputTokens != 12 {
		t.Errorf("Usage = %+v", resp.Usage)
	}
}

func TestOllamaCompleteServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewOllamaProvider(OllamaConfig{BaseURL: srv.URL})
	if _, err := p.Complete(context.Background(), &Request{Prompt: "hi"}); err == nil {
		t.Fatal("Complete() error = nil, want error on 404")
	}
}

func TestOllamaReady(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewOllamaProvider(OllamaConfig{BaseURL: srv.URL})
	if !p.Ready(context.Background()) {
		t.Error("Ready() = false, want true")
	}

	srv.Close()
	if p.Ready(context.Background()) {
		t.Error("Ready() = true after server shutdown, want false")
	}
}

func TestResilientProviderPassthrough(t *testing.T) {
	mock := &mockProvider{name: "mock", content: "ok", ready: true}
	rp := NewResilientProvider(mock, ResilientConfig{})
	defer rp.Close()

	resp, err := rp.Complete(context.Background(), &Request{Prompt: "p"})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Content != "ok" {
		t.Errorf("Content = %q, want ok", resp.Content)
	}
	if !rp.Ready(context.Background()) {
		t.Error("Ready() = false, want true")
	}
}

func TestResilientProviderRetriesTransientErrors(t *testing.T) {
	mock := &mockProvider{name: "mock", err: errors.New("API error (status 503): overloaded")}
	rp := NewResilientProvider(mock, ResilientConfig{EnableRetry: true})
	defer rp.Close()

	if _, err := rp.Complete(context.Background(), &Request{Prompt: "p"}); err == nil {
		t.Fatal("Complete() error = nil, want error")
	}
	if mock.calls < 2 {
		t.Errorf("calls = %d, want retries on 503", mock.calls)
	}
}

func TestIsRetryableHTTPError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("API error (status 429): slow down"), true},
		{errors.New("API error (status 500): boom"), true},
		{errors.New("API error (status 400): bad request"), false},
		{errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		if got := isRetryableHTTPError(tt.err); got != tt.want {
			t.Errorf("isRetryableHTTPError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
