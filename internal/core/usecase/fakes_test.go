package usecase

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/kirillkom/project-doc-chat/internal/core/domain"
)

type projectStoreFake struct {
	mu        sync.Mutex
	projects  map[string]*domain.Project
	appendErr error
}

func newProjectStoreFake(projects ...*domain.Project) *projectStoreFake {
	f := &projectStoreFake{projects: make(map[string]*domain.Project)}
	for _, p := range projects {
		f.projects[p.ID] = p
	}
	return f
}

func (f *projectStoreFake) Create(_ context.Context, project *domain.Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.projects[project.ID] = project.Clone()
	return nil
}

func (f *projectStoreFake) Get(_ context.Context, id string) (*domain.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projects[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get project", fmt.Errorf("id=%s", id))
	}
	return p.Clone(), nil
}

func (f *projectStoreFake) ListOwned(_ context.Context, owner string) ([]domain.ProjectSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.ProjectSummary{}
	for _, p := range f.projects {
		if p.Owner == owner {
			out = append(out, domain.ProjectSummary{ID: p.ID, Name: p.Name})
		}
	}
	return out, nil
}

func (f *projectStoreFake) AppendDocument(_ context.Context, projectID string, doc domain.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.projects[projectID].Documents = append(f.projects[projectID].Documents, doc)
	return nil
}

func (f *projectStoreFake) AppendExchange(_ context.Context, projectID string, exchange domain.Exchange) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.projects[projectID].Exchanges = append(f.projects[projectID].Exchanges, exchange)
	return nil
}

func (f *projectStoreFake) exchanges(id string) []domain.Exchange {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Exchange(nil), f.projects[id].Exchanges...)
}

func (f *projectStoreFake) documents(id string) []domain.Document {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Document(nil), f.projects[id].Documents...)
}

type gatewayFake struct {
	completion  *domain.Completion
	err         error
	prompt      string
	contextText string
}

func (f *gatewayFake) Complete(_ context.Context, prompt, contextText string) (*domain.Completion, error) {
	f.prompt = prompt
	f.contextText = contextText
	if f.err != nil {
		return nil, f.err
	}
	return f.completion, nil
}

type extractorFake struct {
	text string
}

func (f extractorFake) Extract([]byte, string) string { return f.text }

type storageFake struct {
	savedKey  string
	savedBody string
	err       error
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.err != nil {
		return f.err
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.savedKey = key
	f.savedBody = string(raw)
	return nil
}

func (f *storageFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	if key != f.savedKey {
		return nil, domain.WrapError(domain.ErrNotFound, "open object", fmt.Errorf("key=%s", key))
	}
	return io.NopCloser(strings.NewReader(f.savedBody)), nil
}

type publisherFake struct {
	events []domain.DocumentUploaded
	err    error
}

func (f *publisherFake) PublishDocumentUploaded(_ context.Context, event domain.DocumentUploaded) error {
	f.events = append(f.events, event)
	return f.err
}

type fileUploaderFake struct {
	remote *domain.RemoteFile
	err    error
}

func (f fileUploaderFake) UploadFile(_ context.Context, filename string, body io.Reader) (*domain.RemoteFile, error) {
	if f.err != nil {
		return nil, f.err
	}
	if _, err := io.ReadAll(body); err != nil {
		return nil, err
	}
	return f.remote, nil
}
