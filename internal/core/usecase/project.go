package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/project-doc-chat/internal/core/domain"
	"github.com/kirillkom/project-doc-chat/internal/core/ports"
)

type ProjectUseCase struct {
	projects  ports.ProjectStore
	extractor ports.TextExtractor
	storage   ports.ObjectStorage
	events    ports.EventPublisher
	files     ports.FileUploader
}

// NewProjectUseCase wires project bookkeeping. storage, events and files are optional.
func NewProjectUseCase(
	projects ports.ProjectStore,
	extractor ports.TextExtractor,
	storage ports.ObjectStorage,
	events ports.EventPublisher,
	files ports.FileUploader,
) *ProjectUseCase {
	return &ProjectUseCase{
		projects:  projects,
		extractor: extractor,
		storage:   storage,
		events:    events,
		files:     files,
	}
}

func (uc *ProjectUseCase) Create(ctx context.Context, owner, name string) (*domain.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "create project", errors.New("name is required"))
	}

	project := &domain.Project{
		ID:        uuid.NewString(),
		Name:      name,
		Owner:     owner,
		Documents: []domain.Document{},
		Exchanges: []domain.Exchange{},
		CreatedAt: time.Now().UTC(),
	}
	if err := uc.projects.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return project, nil
}

func (uc *ProjectUseCase) List(ctx context.Context, owner string) ([]domain.ProjectSummary, error) {
	projects, err := uc.projects.ListOwned(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

func (uc *ProjectUseCase) Get(ctx context.Context, user, projectID string) (*domain.Project, error) {
	return loadOwnedProject(ctx, uc.projects, user, projectID)
}

func (uc *ProjectUseCase) Upload(
	ctx context.Context,
	user, projectID, filename string,
	body io.Reader,
) (*domain.Document, error) {
	if _, err := loadOwnedProject(ctx, uc.projects, user, projectID); err != nil {
		return nil, err
	}

	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	doc := domain.Document{
		ID:         uuid.NewString(),
		ProjectID:  projectID,
		Filename:   filename,
		Text:       uc.extractor.Extract(raw, filename),
		UploadedBy: user,
		CreatedAt:  time.Now().UTC(),
	}
	if doc.Degraded() {
		slog.WarnContext(ctx, "extraction_degraded", "project_id", projectID, "document_id", doc.ID, "filename", filename, "bytes", len(raw))
	}

	if uc.storage != nil {
		key := fmt.Sprintf("%s_%s_%s", projectID, doc.ID, sanitizeFilename(filename))
		if err := uc.storage.Save(ctx, key, bytes.NewReader(raw)); err != nil {
			return nil, fmt.Errorf("archive upload: %w", err)
		}
		doc.StoragePath = key
	}

	if err := uc.projects.AppendDocument(ctx, projectID, doc); err != nil {
		return nil, fmt.Errorf("append document: %w", err)
	}

	if uc.events != nil {
		event := domain.DocumentUploaded{
			ProjectID:  projectID,
			DocumentID: doc.ID,
			Filename:   doc.Filename,
			UploadedBy: user,
			TextChars:  len([]rune(doc.Text)),
		}
		if err := uc.events.PublishDocumentUploaded(ctx, event); err != nil {
			slog.WarnContext(ctx, "publish_document_uploaded_failed", "project_id", projectID, "document_id", doc.ID, "error", err)
		}
	}

	return &doc, nil
}

// AttachRemote forwards the file to the provider's file store and records a
// text-less document referencing the remote file id.
func (uc *ProjectUseCase) AttachRemote(
	ctx context.Context,
	user, projectID, filename string,
	body io.Reader,
) (*domain.RemoteFile, error) {
	if uc.files == nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "attach remote file", errors.New("remote file upload is not configured"))
	}
	if _, err := loadOwnedProject(ctx, uc.projects, user, projectID); err != nil {
		return nil, err
	}

	remote, err := uc.files.UploadFile(ctx, filename, body)
	if err != nil {
		return nil, err
	}
	if remote == nil || remote.ID == "" {
		return nil, &domain.UpstreamError{Operation: "files", Err: errors.New("files response has no id")}
	}

	doc := domain.Document{
		ID:           remote.ID,
		ProjectID:    projectID,
		Filename:     filename,
		UploadedBy:   user,
		RemoteFileID: remote.ID,
		CreatedAt:    time.Now().UTC(),
	}
	if err := uc.projects.AppendDocument(ctx, projectID, doc); err != nil {
		return nil, fmt.Errorf("append document: %w", err)
	}
	return remote, nil
}

// OpenDocument streams the archived original of an uploaded document.
// Documents without an archive copy, such as remote attachments, are not found.
func (uc *ProjectUseCase) OpenDocument(
	ctx context.Context,
	user, projectID, documentID string,
) (*domain.Document, io.ReadCloser, error) {
	project, err := loadOwnedProject(ctx, uc.projects, user, projectID)
	if err != nil {
		return nil, nil, err
	}

	var doc *domain.Document
	for i := range project.Documents {
		if project.Documents[i].ID == documentID {
			doc = &project.Documents[i]
			break
		}
	}
	if doc == nil {
		return nil, nil, domain.WrapError(domain.ErrNotFound, "open document", fmt.Errorf("project=%s document=%s", projectID, documentID))
	}
	if uc.storage == nil || doc.StoragePath == "" {
		return nil, nil, domain.WrapError(domain.ErrNotFound, "open document", fmt.Errorf("document=%s has no archived original", documentID))
	}

	rc, err := uc.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		if domain.IsKind(err, domain.ErrNotFound) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("open archive: %w", err)
	}
	return doc, rc, nil
}

func loadOwnedProject(ctx context.Context, store ports.ProjectStore, user, projectID string) (*domain.Project, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "load project", errors.New("project_id is required"))
	}
	project, err := store.Get(ctx, projectID)
	if err != nil {
		if domain.IsKind(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load project: %w", err)
	}
	if !project.OwnedBy(user) {
		return nil, domain.WrapError(domain.ErrForbidden, "load project", fmt.Errorf("project=%s", projectID))
	}
	return project, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." || base == "_" {
		return "document.bin"
	}
	return base
}
