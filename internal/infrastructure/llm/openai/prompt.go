package openai

const groundingPreface = "You are a helpful assistant. Use the following document(s) to answer the user's question. " +
	"If the document doesn't contain the answer, say so.\n\n"

// BuildInput renders the single text payload sent upstream. The preface and
// context appear only when contextText is non-empty.
func BuildInput(prompt, contextText string) string {
	prefix := ""
	if contextText != "" {
		prefix = groundingPreface + contextText + "\n\n"
	}
	return prefix + "User question:\n" + prompt
}
