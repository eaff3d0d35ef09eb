package paform

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/supersonicwisd1/mandolin/internal/jsonx"
	"github.com/supersonicwisd1/mandolin/internal/providers"
)

// FieldMapper bridges canonical fact labels to a document's real field
// identifiers. The primary strategy asks an LLM to match facts to fields
// using kind and nearby text as signal; whenever that capability is
// unavailable or its output fails to parse, a deterministic pattern table
// takes over. Mapping never fails the pipeline.
type FieldMapper struct {
	logger *slog.Logger
	llm    providers.LLMClient
}

// NewFieldMapper creates a mapper. A nil client is legal; mapping then
// goes straight to the fallback strategy.
func NewFieldMapper(logger *slog.Logger, llm providers.LLMClient) *FieldMapper {
	if logger == nil {
		logger = slog.Default()
	}
	return &FieldMapper{logger: logger, llm: llm}
}

// Map produces a field identifier to value mapping. Facts with no match
// simply produce no entry; absence, not a placeholder, means "no value".
func (m *FieldMapper) Map(ctx context.Context, inventory *FormInventory, facts *FactBundle) FieldMapping {
	nonEmpty := nonEmptyFacts(facts)
	if len(nonEmpty) == 0 {
		m.logger.Warn("no non-empty facts to map")
		return FieldMapping{}
	}

	if m.llm != nil {
		if mapping := m.semanticMapping(ctx, inventory, nonEmpty); len(mapping) > 0 {
			return mapping
		}
		m.logger.Warn("semantic mapping produced nothing, using fallback strategy")
	} else {
		m.logger.Warn("no LLM client available, using fallback strategy")
	}

	return fallbackMapping(inventory, nonEmpty)
}

// fieldSummary is the compact per-field description sent to the model.
type fieldSummary struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	NearbyText string `json:"nearby_text"`
	Position   string `json:"position"`
}

const nearbySummaryLimit = 200

// semanticMapping runs the primary LLM strategy. Returns nil on any
// transport or parse failure so the caller falls back.
func (m *FieldMapper) semanticMapping(ctx context.Context, inventory *FormInventory, facts map[string]string) FieldMapping {
	summaries := make([]fieldSummary, 0, len(inventory.Fields))
	for _, field := range inventory.Fields {
		nearby := field.NearbyText
		if len(nearby) > nearbySummaryLimit {
			nearby = nearby[:nearbySummaryLimit]
		}
		summaries = append(summaries, fieldSummary{
			Name:       field.Identifier,
			Type:       string(field.Kind),
			NearbyText: nearby,
			Position:   fmt.Sprintf("(%.1f, %.1f)", field.Position.X, field.Position.Y),
		})
	}

	dataJSON, err := json.MarshalIndent(facts, "", "  ")
	if err != nil {
		return nil
	}
	fieldsJSON, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return nil
	}

	requestID := uuid.New().String()
	result, err := m.llm.Chat(ctx, &providers.ChatRequest{
		RequestID: requestID,
		Messages: []providers.Message{
			{Role: "user", Content: mappingPrompt(string(dataJSON), string(fieldsJSON))},
		},
	})
	if err != nil {
		m.logger.Warn("semantic mapping request failed", "request_id", requestID, "error", err)
		return nil
	}

	candidate, err := jsonx.ExtractStringMap(result.Content)
	if err != nil {
		m.logger.Warn("semantic mapping response unparseable", "request_id", requestID, "error", err)
		return nil
	}

	mapping := m.sanitizeMapping(inventory, candidate)
	m.logger.Info("semantic mapping complete",
		"request_id", requestID,
		"fields_mapped", len(mapping))
	return mapping
}

// sanitizeMapping drops entries for unknown identifiers and checkbox
// values outside the constrained vocabulary.
func (m *FieldMapper) sanitizeMapping(inventory *FormInventory, candidate map[string]string) FieldMapping {
	byIdentifier := make(map[string]FieldDescriptor, len(inventory.Fields))
	for _, field := range inventory.Fields {
		if _, seen := byIdentifier[field.Identifier]; !seen {
			byIdentifier[field.Identifier] = field
		}
	}

	mapping := FieldMapping{}
	for identifier, value := range candidate {
		field, ok := byIdentifier[identifier]
		if !ok {
			m.logger.Warn("mapping references unknown field", "identifier", identifier)
			continue
		}
		if field.Kind == FieldCheckbox {
			if _, ok := NormalizeCheckboxValue(value); !ok {
				m.logger.Warn("rejecting ambiguous checkbox value",
					"identifier", identifier, "value", value)
				continue
			}
		}
		mapping[identifier] = value
	}
	return mapping
}

// checkedTokens and uncheckedTokens are the only values accepted for
// checkbox fields. Anything else leaves the checkbox unwritten.
var checkedTokens = map[string]bool{
	"yes": true, "true": true, "on": true, "x": true, "checked": true,
}

var uncheckedTokens = map[string]bool{
	"no": true, "false": true, "off": true, "unchecked": true,
}

// NormalizeCheckboxValue maps a free-form value onto checked/unchecked.
// The second return is false when the value is outside the vocabulary.
func NormalizeCheckboxValue(value string) (checked bool, ok bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if checkedTokens[v] {
		return true, true
	}
	if uncheckedTokens[v] {
		return false, true
	}
	return false, false
}

// fallbackPattern pairs a canonical fact label with the regex patterns
// that recognize its field. Order is part of the contract: labels are
// tried in this order, and within one label the best match is the longest
// matching pattern, ties broken by inventory order.
type fallbackPattern struct {
	label    string
	patterns []*regexp.Regexp
}

func compilePatterns(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, expr := range exprs {
		out[i] = regexp.MustCompile(expr)
	}
	return out
}

var fallbackPatterns = []fallbackPattern{
	{"Patient First Name", compilePatterns("first", "given", "patient.*name")},
	{"Patient Last Name", compilePatterns("last", "surname", "family")},
	{"Patient DOB", compilePatterns("dob", "birth", "date.*birth")},
	{"Patient Sex", compilePatterns("sex", "gender")},
	{"Patient Address", compilePatterns("address", "street")},
	{"Patient City", compilePatterns("city")},
	{"Patient State", compilePatterns("state")},
	{"Patient Zip Code", compilePatterns("zip", "postal")},
	{"Patient Phone Number", compilePatterns("phone", "tel")},
	{"Provider NPI", compilePatterns("npi")},
	{"Provider Phone Number", compilePatterns("provider.*phone", "doctor.*phone")},
	{"Provider Fax Number", compilePatterns("fax")},
	{"Clinic Name", compilePatterns("clinic", "facility", "practice")},
	{"Insurance Member ID", compilePatterns("member", "id")},
	{"Insurance Group Number", compilePatterns("group")},
	{"Primary Diagnosis (ICD-10 Code)", compilePatterns("diagnosis", "icd", "primary")},
	{"Medication Requested", compilePatterns("medication", "drug", "prescription")},
	{"Dosage", compilePatterns("dosage", "dose")},
	{"Frequency", compilePatterns("frequency", "schedule")},
}

// fallbackMapping is the deterministic strategy: for each canonical fact
// with a value, match its patterns against every field's lowercased
// identifier and nearby text. The winning field is the one whose matching
// pattern is longest; on a tie, the field seen first in inventory order
// wins. Facts with no matching field stay unmapped rather than being
// forced onto a low-confidence target.
func fallbackMapping(inventory *FormInventory, facts map[string]string) FieldMapping {
	mapping := FieldMapping{}

	for _, fp := range fallbackPatterns {
		value, ok := facts[fp.label]
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}

		bestIdentifier := ""
		bestScore := 0
		for _, field := range inventory.Fields {
			identifier := strings.ToLower(field.Identifier)
			nearby := strings.ToLower(field.NearbyText)
			for _, pattern := range fp.patterns {
				if !pattern.MatchString(identifier) && !pattern.MatchString(nearby) {
					continue
				}
				score := len(pattern.String())
				if score > bestScore {
					bestScore = score
					bestIdentifier = field.Identifier
				}
			}
		}

		if bestIdentifier != "" {
			mapping[bestIdentifier] = strings.TrimSpace(value)
		}
	}
	return mapping
}

// nonEmptyFacts flattens the bundle and keeps only facts with values, so
// the mapping prompt carries no noise.
func nonEmptyFacts(facts *FactBundle) map[string]string {
	out := make(map[string]string)
	for label, value := range facts.Flatten() {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out[label] = trimmed
		}
	}
	return out
}
