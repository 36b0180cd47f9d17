package httpadapter

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/project-doc-chat/internal/config"
	"github.com/kirillkom/project-doc-chat/internal/core/domain"
)

const testToken = "valid-token"

type accountFake struct {
	registerErr error
}

func (f *accountFake) Register(_ context.Context, email, password string) error {
	if f.registerErr != nil {
		return f.registerErr
	}
	if email == "" || password == "" {
		return domain.WrapError(domain.ErrInvalidInput, "register", errors.New("email and password are required"))
	}
	return nil
}

func (f *accountFake) Login(_ context.Context, email, password string) (domain.AccessToken, error) {
	if email != "alice@example.com" || password != "secret" {
		return domain.AccessToken{}, domain.WrapError(domain.ErrUnauthorized, "login", errors.New("invalid credentials"))
	}
	return domain.AccessToken{Token: testToken, TokenType: "bearer", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (f *accountFake) Authenticate(_ context.Context, token string) (string, error) {
	if token != testToken {
		return "", domain.WrapError(domain.ErrUnauthorized, "authenticate", errors.New("invalid token"))
	}
	return "alice@example.com", nil
}

type projectServiceFake struct {
	err         error
	uploadedRaw []byte
	uploadName  string
	uploadText  string
}

func (f *projectServiceFake) Create(_ context.Context, owner, name string) (*domain.Project, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Project{ID: "p1", Name: name, Owner: owner}, nil
}

func (f *projectServiceFake) List(context.Context, string) ([]domain.ProjectSummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []domain.ProjectSummary{{ID: "p1", Name: "Specs"}}, nil
}

func (f *projectServiceFake) Get(_ context.Context, user, projectID string) (*domain.Project, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Project{ID: projectID, Name: "Specs", Owner: user, Documents: []domain.Document{}, Exchanges: []domain.Exchange{}}, nil
}

func (f *projectServiceFake) Upload(_ context.Context, user, projectID, filename string, body io.Reader) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	f.uploadedRaw = raw
	f.uploadName = filename
	text := f.uploadText
	if text == "" {
		text = string(raw)
	}
	return &domain.Document{ID: "d1", ProjectID: projectID, Filename: filename, Text: text, UploadedBy: user}, nil
}

func (f *projectServiceFake) AttachRemote(_ context.Context, _, _, filename string, _ io.Reader) (*domain.RemoteFile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.RemoteFile{
		ID:       "file-abc",
		Filename: filename,
		Raw:      map[string]any{"id": "file-abc", "object": "file", "purpose": "answers"},
	}, nil
}

func (f *projectServiceFake) OpenDocument(_ context.Context, _, projectID, documentID string) (*domain.Document, io.ReadCloser, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	doc := &domain.Document{ID: documentID, ProjectID: projectID, Filename: "q3 report.pdf"}
	return doc, io.NopCloser(strings.NewReader("%PDF-1.4 raw")), nil
}

type chatFake struct {
	err        error
	lastPrompt string
}

func (f *chatFake) Chat(_ context.Context, user, _, prompt string) (*domain.ChatResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastPrompt = prompt
	return &domain.ChatResult{Reply: "answer to " + prompt, User: user, Kind: domain.ResponseFlat}, nil
}

func newTestHandler(cfg config.Config, projects *projectServiceFake, chat *chatFake) http.Handler {
	if projects == nil {
		projects = &projectServiceFake{}
	}
	if chat == nil {
		chat = &chatFake{}
	}
	return NewRouter(cfg, &accountFake{}, projects, chat, nil).Handler()
}
