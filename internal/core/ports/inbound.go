package ports

import (
	"context"
	"io"

	"github.com/kirillkom/project-doc-chat/internal/core/domain"
)

// AccountService is the inbound contract for registration and bearer credentials.
type AccountService interface {
	Register(ctx context.Context, email, password string) error
	Login(ctx context.Context, email, password string) (domain.AccessToken, error)
	Authenticate(ctx context.Context, token string) (string, error)
}

// ProjectService is the inbound contract for project bookkeeping and uploads.
type ProjectService interface {
	Create(ctx context.Context, owner, name string) (*domain.Project, error)
	List(ctx context.Context, owner string) ([]domain.ProjectSummary, error)
	Get(ctx context.Context, user, projectID string) (*domain.Project, error)
	Upload(ctx context.Context, user, projectID, filename string, body io.Reader) (*domain.Document, error)
	AttachRemote(ctx context.Context, user, projectID, filename string, body io.Reader) (*domain.RemoteFile, error)
	OpenDocument(ctx context.Context, user, projectID, documentID string) (*domain.Document, io.ReadCloser, error)
}

// ChatService is the inbound contract for document-grounded chat.
type ChatService interface {
	Chat(ctx context.Context, user, projectID, prompt string) (*domain.ChatResult, error)
}
