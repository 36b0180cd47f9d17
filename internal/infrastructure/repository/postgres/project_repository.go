package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kirillkom/project-doc-chat/internal/core/domain"
)

// ProjectRepository stores documents and exchanges as rows ordered by a
// BIGSERIAL sequence; each append is a single INSERT.
type ProjectRepository struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO projects (id, name, owner, created_at)
VALUES ($1, $2, $3, $4)
`, project.ID, pgText(project.Name), project.Owner, project.CreatedAt)
	if err != nil {
		if hasPgCode(err, pgUniqueViolation) {
			return domain.WrapError(domain.ErrConflict, "create project", err)
		}
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

func (r *ProjectRepository) Get(ctx context.Context, id string) (*domain.Project, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("begin project read: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var project domain.Project
	err = tx.QueryRowContext(ctx, `
SELECT id, name, owner, created_at
FROM projects
WHERE id = $1
`, id).Scan(&project.ID, &project.Name, &project.Owner, &project.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get project", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("scan project: %w", err)
	}

	project.Documents, err = listDocuments(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	project.Exchanges, err = listExchanges(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit project read: %w", err)
	}
	return &project, nil
}

func listDocuments(ctx context.Context, tx *sql.Tx, projectID string) ([]domain.Document, error) {
	rows, err := tx.QueryContext(ctx, `
SELECT id, project_id, filename, text_content, uploaded_by, storage_path, remote_file_id, created_at
FROM project_documents
WHERE project_id = $1
ORDER BY seq
`, projectID)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	docs := []domain.Document{}
	for rows.Next() {
		var doc domain.Document
		if err := rows.Scan(
			&doc.ID, &doc.ProjectID, &doc.Filename, &doc.Text,
			&doc.UploadedBy, &doc.StoragePath, &doc.RemoteFileID, &doc.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

func listExchanges(ctx context.Context, tx *sql.Tx, projectID string) ([]domain.Exchange, error) {
	rows, err := tx.QueryContext(ctx, `
SELECT prompt, answer, asked_by, created_at
FROM project_exchanges
WHERE project_id = $1
ORDER BY seq
`, projectID)
	if err != nil {
		return nil, fmt.Errorf("query exchanges: %w", err)
	}
	defer rows.Close()

	exchanges := []domain.Exchange{}
	for rows.Next() {
		var ex domain.Exchange
		if err := rows.Scan(&ex.Prompt, &ex.Answer, &ex.User, &ex.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan exchange: %w", err)
		}
		exchanges = append(exchanges, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exchanges: %w", err)
	}
	return exchanges, nil
}

func (r *ProjectRepository) ListOwned(ctx context.Context, owner string) ([]domain.ProjectSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, name
FROM projects
WHERE owner = $1
ORDER BY created_at, id
`, owner)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	out := []domain.ProjectSummary{}
	for rows.Next() {
		var summary domain.ProjectSummary
		if err := rows.Scan(&summary.ID, &summary.Name); err != nil {
			return nil, fmt.Errorf("scan project summary: %w", err)
		}
		out = append(out, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return out, nil
}

func (r *ProjectRepository) AppendDocument(ctx context.Context, projectID string, doc domain.Document) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO project_documents (
	id, project_id, filename, text_content, uploaded_by, storage_path, remote_file_id, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`,
		doc.ID, projectID, pgText(doc.Filename), pgText(doc.Text), doc.UploadedBy, doc.StoragePath, doc.RemoteFileID, doc.CreatedAt,
	)
	if err != nil {
		if hasPgCode(err, pgForeignKeyViolation) {
			return domain.WrapError(domain.ErrNotFound, "append document", fmt.Errorf("project=%s: %w", projectID, err))
		}
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *ProjectRepository) AppendExchange(ctx context.Context, projectID string, exchange domain.Exchange) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO project_exchanges (project_id, prompt, answer, asked_by, created_at)
VALUES ($1, $2, $3, $4, $5)
`, projectID, pgText(exchange.Prompt), pgText(exchange.Answer), exchange.User, exchange.CreatedAt)
	if err != nil {
		if hasPgCode(err, pgForeignKeyViolation) {
			return domain.WrapError(domain.ErrNotFound, "append exchange", fmt.Errorf("project=%s: %w", projectID, err))
		}
		return fmt.Errorf("insert exchange: %w", err)
	}
	return nil
}
