package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/VanshArora01/anay/internal/config"
)

func testConfig(baseURL string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Provider.Type = "openai"
	cfg.Provider.APIKey = "test-key"
	cfg.Provider.BaseURL = baseURL
	cfg.Assistant.Model = "test-model"
	return cfg
}

func completionResponse(content string) string {
	resp := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"content": content}},
		},
	}
	data, _ := json.Marshal(resp)
	return string(data)
}

func TestNew_NoAPIKey(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Provider.APIKey = ""
	if _, err := New(cfg); err == nil {
		t.Error("expected error when no API key is set")
	}
}

func TestOpenAIClient_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("auth header = %q", got)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body["model"] != "test-model" {
			t.Errorf("model = %v", body["model"])
		}
		w.Write([]byte(completionResponse("hello back")))
	}))
	defer srv.Close()

	gen, err := New(testConfig(srv.URL))
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	out, err := gen.Complete(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if out != "hello back" {
		t.Errorf("Complete = %q, want %q", out, "hello back")
	}
}

func TestOpenAIClient_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"rate limited"}`))
			return
		}
		w.Write([]byte(completionResponse("after retry")))
	}))
	defer srv.Close()

	gen, err := New(testConfig(srv.URL))
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	out, err := gen.Complete(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if out != "after retry" {
		t.Errorf("Complete = %q, want %q", out, "after retry")
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestOpenAIClient_NoRetryOnServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer srv.Close()

	gen, err := New(testConfig(srv.URL))
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	if _, err := gen.Complete(context.Background(), "hi"); err == nil {
		t.Fatal("expected error on 500")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1 (500 should not be retried)", calls.Load())
	}
}

func TestOpenAIClient_RateLimitExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	gen, err := New(testConfig(srv.URL))
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	_, err = gen.Complete(context.Background(), "hi")
	if err == nil {
		t.Fatal("expected error after retry budget is spent")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("error should mention 429, got %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestOpenAIClient_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	gen, err := New(testConfig(srv.URL))
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	if _, err := gen.Complete(context.Background(), "hi"); err == nil {
		t.Error("expected error on empty choices")
	}
}
