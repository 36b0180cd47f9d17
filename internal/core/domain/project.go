package domain

import "time"

type Project struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Owner     string     `json:"owner"`
	Documents []Document `json:"documents"`
	Exchanges []Exchange `json:"prompts"`
	CreatedAt time.Time  `json:"created_at"`
}

// Clone returns a copy whose document and exchange slices do not alias p.
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	out := *p
	out.Documents = append([]Document(nil), p.Documents...)
	out.Exchanges = append([]Exchange(nil), p.Exchanges...)
	return &out
}

func (p *Project) OwnedBy(user string) bool {
	return p != nil && p.Owner == user
}

type ProjectSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Document struct {
	ID           string    `json:"id"`
	ProjectID    string    `json:"project_id"`
	Filename     string    `json:"name"`
	Text         string    `json:"text"`
	UploadedBy   string    `json:"uploaded_by"`
	StoragePath  string    `json:"storage_path,omitempty"`
	RemoteFileID string    `json:"openai_file_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Degraded reports that extraction produced no text for the document.
func (d Document) Degraded() bool {
	return d.Text == ""
}

type Exchange struct {
	Prompt    string    `json:"prompt"`
	Answer    string    `json:"answer"`
	User      string    `json:"user"`
	CreatedAt time.Time `json:"created_at"`
}
