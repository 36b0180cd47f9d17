package domain

// ResponseKind tags which upstream response shape produced an answer.
type ResponseKind string

const (
	ResponseFlat         ResponseKind = "flat"
	ResponseStructured   ResponseKind = "structured"
	ResponseUnstructured ResponseKind = "unstructured"
)

type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type Completion struct {
	Text  string       `json:"text"`
	Kind  ResponseKind `json:"kind"`
	Model string       `json:"model,omitempty"`
	Usage TokenUsage   `json:"usage"`
}

type ChatResult struct {
	Reply      string       `json:"reply"`
	User       string       `json:"user"`
	Kind       ResponseKind `json:"-"`
	Model      string       `json:"-"`
	Usage      TokenUsage   `json:"-"`
	ContextLen int          `json:"-"`
}

type RemoteFile struct {
	ID       string         `json:"id"`
	Filename string         `json:"filename"`
	Raw      map[string]any `json:"-"`
}

// DocumentUploaded is published after a document is appended to a project.
type DocumentUploaded struct {
	ProjectID  string `json:"project_id"`
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	UploadedBy string `json:"uploaded_by"`
	TextChars  int    `json:"text_chars"`
}
