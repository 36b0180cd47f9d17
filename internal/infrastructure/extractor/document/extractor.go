package document

import (
	"log/slog"
	"strings"
)

// Extractor converts uploaded blobs to plain text. Dispatch is by filename
// suffix only; content is never sniffed.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract never fails. Corrupt PDF and DOCX input yields "", any other
// suffix is decoded as UTF-8 with invalid sequences dropped.
func (e *Extractor) Extract(data []byte, filename string) string {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".pdf"):
		return guard("pdf", filename, func() (string, error) { return extractPDF(data) })
	case strings.HasSuffix(lower, ".docx"):
		return guard("docx", filename, func() (string, error) { return extractDOCX(data) })
	default:
		return decodeLossy(data)
	}
}

func decodeLossy(data []byte) string {
	return strings.ToValidUTF8(string(data), "")
}

// guard absorbs both errors and parser panics.
func guard(kind, filename string, fn func() (string, error)) (text string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("extract_panic", "kind", kind, "filename", filename, "panic", r)
			text = ""
		}
	}()

	out, err := fn()
	if err != nil {
		slog.Debug("extract_failed", "kind", kind, "filename", filename, "error", err)
		return ""
	}
	return out
}
