package openai

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/kirillkom/project-doc-chat/internal/core/domain"
)

// MaxUnstructuredChars bounds the raw rendering used when no known shape matches.
const MaxUnstructuredChars = 1000

type usagePayload struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// NormalizeResponse decodes a completion body into one of three variants,
// tried in order: a flat output_text string, a structured output list, and
// a truncated raw rendering of anything else.
func NormalizeResponse(raw []byte) domain.Completion {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return unstructured(raw)
	}

	completion := domain.Completion{}
	if model, ok := decodeString(fields["model"]); ok {
		completion.Model = model
	}
	var usage usagePayload
	if rawUsage, ok := fields["usage"]; ok && json.Unmarshal(rawUsage, &usage) == nil {
		completion.Usage = domain.TokenUsage{InputTokens: usage.InputTokens, OutputTokens: usage.OutputTokens}
	}

	if text, ok := decodeString(fields["output_text"]); ok {
		completion.Text = text
		completion.Kind = domain.ResponseFlat
		return completion
	}

	if text, ok := collectOutputText(fields["output"]); ok {
		completion.Text = text
		completion.Kind = domain.ResponseStructured
		return completion
	}

	fallback := unstructured(raw)
	fallback.Model = completion.Model
	fallback.Usage = completion.Usage
	return fallback
}

func collectOutputText(raw json.RawMessage) (string, bool) {
	if raw == nil {
		return "", false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return "", false
	}

	var texts []string
	for _, rawItem := range items {
		var item map[string]json.RawMessage
		if err := json.Unmarshal(rawItem, &item); err != nil || item == nil {
			continue
		}

		var content []json.RawMessage
		if err := json.Unmarshal(item["content"], &content); err == nil && content != nil {
			for _, rawEntry := range content {
				var entry map[string]json.RawMessage
				if err := json.Unmarshal(rawEntry, &entry); err != nil {
					continue
				}
				if text, ok := decodeString(entry["text"]); ok && text != "" {
					texts = append(texts, text)
				}
			}
			continue
		}

		if text, ok := decodeString(item["text"]); ok && text != "" {
			texts = append(texts, text)
		}
	}
	return strings.TrimSpace(strings.Join(texts, "\n")), true
}

func unstructured(raw []byte) domain.Completion {
	var compact bytes.Buffer
	rendered := strings.TrimSpace(string(raw))
	if err := json.Compact(&compact, raw); err == nil {
		rendered = compact.String()
	}
	return domain.Completion{
		Text: truncateRunes(rendered, MaxUnstructuredChars),
		Kind: domain.ResponseUnstructured,
	}
}

// decodeString reports ok only for a JSON string; null and other types are rejected.
func decodeString(raw json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return "", false
	}
	return s, true
}

func truncateRunes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}
