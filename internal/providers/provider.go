package providers

import (
	"context"
	"time"
)

// LLMClient is the primary interface for text-generation requests.
type LLMClient interface {
	// Chat sends a chat completion request.
	Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error)

	// Name returns the client identifier (e.g. "gemini", "openai").
	Name() string
}

// OCRProvider turns a document payload into per-page text.
// Separate from LLM because it has different rate limiting and result
// handling (ordered page markdown vs a single completion).
type OCRProvider interface {
	// Name returns the provider identifier (e.g. "mistral-ocr").
	Name() string

	// ProcessDocument extracts text from a whole document. The payload is
	// the raw file bytes; mimeType declares the format
	// (application/pdf, image/png, image/jpeg).
	ProcessDocument(ctx context.Context, payload []byte, mimeType string) (*OCRResult, error)

	// Rate limiting properties
	RequestsPerSecond() float64
}

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

// ChatRequest is a request to an LLM.
type ChatRequest struct {
	Messages []Message `json:"messages"`

	// Model selection (uses client default if empty)
	Model string `json:"model,omitempty"`

	// Generation parameters
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`

	// Request tracking
	RequestID string `json:"-"`
}

// ChatResult is the complete response from an LLM call.
type ChatResult struct {
	Content string `json:"content"`

	// Token counts
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`

	// Timing
	ExecutionTime time.Duration `json:"execution_time"`

	// Provider info
	Provider  string `json:"provider"`
	ModelUsed string `json:"model_used"`

	// Request tracking
	RequestID string `json:"request_id"`
	Attempts  int    `json:"attempts"`

	// Success/error
	Success      bool   `json:"success"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// OCRResult is the response from an OCR provider.
type OCRResult struct {
	Success bool `json:"success"`

	// Pages holds per-page markdown text in document order.
	Pages []string `json:"pages"`

	// Metadata from provider (dimensions, usage, etc.)
	Metadata map[string]any `json:"metadata,omitempty"`

	// Cost and timing
	CostUSD       float64       `json:"cost_usd"`
	ExecutionTime time.Duration `json:"execution_time"`

	// Error info
	ErrorMessage string `json:"error_message,omitempty"`
}
