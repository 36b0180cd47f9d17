package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kirillkom/project-doc-chat/internal/core/domain"
)

// ProjectStore keeps projects for the process lifetime. Every method holds
// the store lock for its whole duration, so appends never interleave.
type ProjectStore struct {
	mu       sync.RWMutex
	projects map[string]*domain.Project
}

func NewProjectStore() *ProjectStore {
	return &ProjectStore{projects: make(map[string]*domain.Project)}
}

func (s *ProjectStore) Create(_ context.Context, project *domain.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.projects[project.ID]; exists {
		return domain.WrapError(domain.ErrConflict, "create project", fmt.Errorf("id=%s", project.ID))
	}
	s.projects[project.ID] = project.Clone()
	return nil
}

// Get returns a snapshot; later appends are not visible through it.
func (s *ProjectStore) Get(_ context.Context, id string) (*domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	project, ok := s.projects[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get project", fmt.Errorf("id=%s", id))
	}
	return project.Clone(), nil
}

func (s *ProjectStore) ListOwned(_ context.Context, owner string) ([]domain.ProjectSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owned := make([]*domain.Project, 0)
	for _, project := range s.projects {
		if project.Owner == owner {
			owned = append(owned, project)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		if owned[i].CreatedAt.Equal(owned[j].CreatedAt) {
			return owned[i].ID < owned[j].ID
		}
		return owned[i].CreatedAt.Before(owned[j].CreatedAt)
	})

	out := make([]domain.ProjectSummary, 0, len(owned))
	for _, project := range owned {
		out = append(out, domain.ProjectSummary{ID: project.ID, Name: project.Name})
	}
	return out, nil
}

func (s *ProjectStore) AppendDocument(_ context.Context, projectID string, doc domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	project, ok := s.projects[projectID]
	if !ok {
		return domain.WrapError(domain.ErrNotFound, "append document", fmt.Errorf("project=%s", projectID))
	}
	doc.ProjectID = projectID
	project.Documents = append(project.Documents, doc)
	return nil
}

func (s *ProjectStore) AppendExchange(_ context.Context, projectID string, exchange domain.Exchange) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	project, ok := s.projects[projectID]
	if !ok {
		return domain.WrapError(domain.ErrNotFound, "append exchange", fmt.Errorf("project=%s", projectID))
	}
	project.Exchanges = append(project.Exchanges, exchange)
	return nil
}
