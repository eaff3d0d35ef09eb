package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func geminiOKResponse(text string) geminiResponse {
	var resp geminiResponse
	resp.Candidates = []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason,omitempty"`
	}{
		{Content: geminiContent{Role: "model", Parts: []geminiPart{{Text: text}}}},
	}
	return resp
}

func TestGeminiClient(t *testing.T) {
	t.Run("successful chat", func(t *testing.T) {
		var gotBody geminiRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasSuffix(r.URL.Path, "/models/gemini-1.5-flash:generateContent") {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if key := r.Header.Get("x-goog-api-key"); key != "test-key" {
				t.Errorf("api key header = %q", key)
			}
			if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
				t.Fatalf("failed to decode request: %v", err)
			}
			json.NewEncoder(w).Encode(geminiOKResponse(`{"ok": true}`))
		}))
		defer server.Close()

		c := NewGeminiClient(GeminiConfig{APIKey: "test-key", BaseURL: server.URL})

		result, err := c.Chat(context.Background(), &ChatRequest{
			Messages: []Message{
				{Role: "system", Content: "be terse"},
				{Role: "user", Content: "hello"},
			},
		})
		if err != nil {
			t.Fatalf("Chat() error = %v", err)
		}
		if !result.Success {
			t.Error("Success = false, want true")
		}
		if result.Content != `{"ok": true}` {
			t.Errorf("Content = %q", result.Content)
		}

		if gotBody.SystemInstruction == nil || len(gotBody.SystemInstruction.Parts) != 1 {
			t.Fatal("system instruction not forwarded")
		}
		if len(gotBody.Contents) != 1 || gotBody.Contents[0].Role != "user" {
			t.Errorf("contents = %+v", gotBody.Contents)
		}
	})

	t.Run("retries transient errors", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			json.NewEncoder(w).Encode(geminiOKResponse("recovered"))
		}))
		defer server.Close()

		c := NewGeminiClient(GeminiConfig{
			APIKey:     "k",
			BaseURL:    server.URL,
			MaxRetries: 3,
			RetryDelay: time.Millisecond,
		})

		result, err := c.Chat(context.Background(), &ChatRequest{
			Messages: []Message{{Role: "user", Content: "hi"}},
		})
		if err != nil {
			t.Fatalf("Chat() error = %v", err)
		}
		if result.Content != "recovered" {
			t.Errorf("Content = %q", result.Content)
		}
		if result.Attempts != 3 {
			t.Errorf("Attempts = %d, want 3", result.Attempts)
		}
	})

	t.Run("does not retry client errors", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error": {"code": 400, "message": "bad request"}}`))
		}))
		defer server.Close()

		c := NewGeminiClient(GeminiConfig{
			APIKey:     "k",
			BaseURL:    server.URL,
			MaxRetries: 3,
			RetryDelay: time.Millisecond,
		})

		result, err := c.Chat(context.Background(), &ChatRequest{
			Messages: []Message{{Role: "user", Content: "hi"}},
		})
		if err == nil {
			t.Fatal("expected error")
		}
		if result.Success {
			t.Error("Success = true, want false")
		}
		if calls.Load() != 1 {
			t.Errorf("calls = %d, want 1 (no retry on 400)", calls.Load())
		}
	})

	t.Run("rejects empty message list", func(t *testing.T) {
		c := NewGeminiClient(GeminiConfig{APIKey: "k"})
		if _, err := c.Chat(context.Background(), &ChatRequest{}); err == nil {
			t.Error("expected error for empty messages")
		}
	})
}
