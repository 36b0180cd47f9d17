package ports

import (
	"context"
	"io"

	"github.com/kirillkom/project-doc-chat/internal/core/domain"
)

// UserStore persists registered accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, email string) (*domain.User, error)
}

// ProjectStore persists projects with append-only document and exchange lists.
type ProjectStore interface {
	Create(ctx context.Context, project *domain.Project) error
	Get(ctx context.Context, id string) (*domain.Project, error)
	ListOwned(ctx context.Context, owner string) ([]domain.ProjectSummary, error)
	AppendDocument(ctx context.Context, projectID string, doc domain.Document) error
	AppendExchange(ctx context.Context, projectID string, exchange domain.Exchange) error
}

// ObjectStorage archives raw uploaded bytes.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// EventPublisher announces stored documents to interested consumers.
type EventPublisher interface {
	PublishDocumentUploaded(ctx context.Context, event domain.DocumentUploaded) error
}

// TextExtractor turns an uploaded blob into best-effort plain text. It never fails.
type TextExtractor interface {
	Extract(data []byte, filename string) string
}

// CompletionGateway forwards a prompt and its grounding context to the model service.
type CompletionGateway interface {
	Complete(ctx context.Context, prompt, contextText string) (*domain.Completion, error)
}

// FileUploader sends a raw file to the model provider's file store.
type FileUploader interface {
	UploadFile(ctx context.Context, filename string, body io.Reader) (*domain.RemoteFile, error)
}

// PasswordHasher hashes and verifies account passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

// TokenIssuer mints and verifies bearer credentials.
type TokenIssuer interface {
	Issue(subject string) (domain.AccessToken, error)
	Verify(token string) (string, error)
}
