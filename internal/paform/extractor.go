package paform

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/supersonicwisd1/mandolin/internal/jsonx"
	"github.com/supersonicwisd1/mandolin/internal/providers"
)

// FactExtractor queries an LLM for the canonical fact schema against the
// referral text. It always targets the fixed canonical labels rather than
// the document's own field identifiers; bridging the two is the mapper's
// job.
type FactExtractor struct {
	logger *slog.Logger
	llm    providers.LLMClient
}

// NewFactExtractor creates a fact extractor. A nil client is legal;
// extraction then fails with ErrServiceUnavailable.
func NewFactExtractor(logger *slog.Logger, llm providers.LLMClient) *FactExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FactExtractor{logger: logger, llm: llm}
}

// Extract produces a FactBundle from referral text. Every canonical label
// is present in the result; labels the model leaves out or nulls stay
// empty. Malformed model output yields ErrExtractionFailed without retry.
func (e *FactExtractor) Extract(ctx context.Context, referralText string) (*FactBundle, error) {
	if e.llm == nil {
		return nil, fmt.Errorf("%w: no LLM client configured", ErrServiceUnavailable)
	}

	requestID := uuid.New().String()
	req := &providers.ChatRequest{
		RequestID: requestID,
		Messages: []providers.Message{
			{Role: "system", Content: extractionSystemPrompt},
			{Role: "user", Content: extractionUserPrompt(canonicalSkeletonJSON(), referralText)},
		},
	}

	e.logger.Info("requesting fact extraction",
		"provider", e.llm.Name(),
		"request_id", requestID,
		"referral_chars", len(referralText))

	result, err := e.llm.Chat(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceError, err)
	}

	obj, err := jsonx.ExtractObject(result.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	if err := jsonx.Validate(json.RawMessage(factBundleSchema), obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	bundle, err := decodeFactBundle(obj)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	e.logger.Info("extracted facts",
		"request_id", requestID,
		"non_empty", countNonEmpty(bundle))
	return bundle, nil
}

// decodeFactBundle merges model output onto a fresh canonical skeleton so
// absent labels stay present with empty values. Scalar values are coerced
// to strings; nested structures are dropped.
func decodeFactBundle(obj json.RawMessage) (*FactBundle, error) {
	var categories map[string]json.RawMessage
	if err := json.Unmarshal(obj, &categories); err != nil {
		return nil, err
	}

	bundle := NewFactBundle()
	targets := map[string]map[string]string{
		"patient_info":   bundle.Patient,
		"provider_info":  bundle.Provider,
		"insurance_info": bundle.Insurance,
		"clinical_info":  bundle.Clinical,
	}

	for key, target := range targets {
		raw, ok := categories[key]
		if !ok {
			continue
		}
		values, err := jsonx.ExtractStringMap(string(raw))
		if err != nil {
			return nil, fmt.Errorf("category %s: %v", key, err)
		}
		for label, value := range values {
			target[label] = value
		}
	}
	return bundle, nil
}

func countNonEmpty(bundle *FactBundle) int {
	n := 0
	for _, value := range bundle.Flatten() {
		if value != "" {
			n++
		}
	}
	return n
}
