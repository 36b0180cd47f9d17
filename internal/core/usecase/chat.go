package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kirillkom/project-doc-chat/internal/core/domain"
	"github.com/kirillkom/project-doc-chat/internal/core/ports"
)

const defaultCompletionTimeout = 60 * time.Second

type ChatUseCase struct {
	projects ports.ProjectStore
	gateway  ports.CompletionGateway
	timeout  time.Duration
}

func NewChatUseCase(
	projects ports.ProjectStore,
	gateway ports.CompletionGateway,
	timeout time.Duration,
) *ChatUseCase {
	if timeout <= 0 {
		timeout = defaultCompletionTimeout
	}
	return &ChatUseCase{
		projects: projects,
		gateway:  gateway,
		timeout:  timeout,
	}
}

// Chat answers prompt grounded in the project's documents and appends the
// exchange. Nothing is recorded when the gateway fails.
func (uc *ChatUseCase) Chat(ctx context.Context, user, projectID, prompt string) (*domain.ChatResult, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "chat", errors.New("prompt is required"))
	}

	project, err := loadOwnedProject(ctx, uc.projects, user, projectID)
	if err != nil {
		return nil, err
	}

	contextText := BuildContext(project.Documents)

	callCtx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()
	completion, err := uc.gateway.Complete(callCtx, prompt, contextText)
	if err != nil {
		if domain.IsKind(err, domain.ErrUpstream) {
			return nil, err
		}
		return nil, &domain.UpstreamError{Operation: "complete", Err: err}
	}

	exchange := domain.Exchange{
		Prompt:    prompt,
		Answer:    completion.Text,
		User:      user,
		CreatedAt: time.Now().UTC(),
	}
	if err := uc.projects.AppendExchange(ctx, project.ID, exchange); err != nil {
		return nil, fmt.Errorf("append exchange: %w", err)
	}

	return &domain.ChatResult{
		Reply:      completion.Text,
		User:       user,
		Kind:       completion.Kind,
		Model:      completion.Model,
		Usage:      completion.Usage,
		ContextLen: len([]rune(contextText)),
	}, nil
}
