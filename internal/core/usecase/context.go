package usecase

import (
	"strings"

	"github.com/kirillkom/project-doc-chat/internal/core/domain"
)

const (
	// MaxDocumentContextChars bounds the text taken from a single document.
	MaxDocumentContextChars = 1500
	// MaxContextChars bounds the whole assembled context.
	MaxContextChars = 3000
)

// BuildContext renders the grounding text for a project's documents in
// insertion order. Limits count Unicode code points, not bytes.
func BuildContext(docs []domain.Document) string {
	blocks := make([]string, 0, len(docs))
	for _, doc := range docs {
		snippet := truncateRunes(doc.Text, MaxDocumentContextChars)
		if snippet == "" {
			continue
		}
		blocks = append(blocks, "--- Document: "+doc.Filename+" ---\n"+snippet+"\n")
	}
	return truncateRunes(strings.Join(blocks, "\n"), MaxContextChars)
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
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
