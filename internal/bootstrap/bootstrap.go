package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillkom/project-doc-chat/internal/config"
	"github.com/kirillkom/project-doc-chat/internal/core/ports"
	"github.com/kirillkom/project-doc-chat/internal/core/usecase"
	"github.com/kirillkom/project-doc-chat/internal/infrastructure/auth"
	"github.com/kirillkom/project-doc-chat/internal/infrastructure/extractor/document"
	"github.com/kirillkom/project-doc-chat/internal/infrastructure/llm/openai"
	"github.com/kirillkom/project-doc-chat/internal/infrastructure/queue/nats"
	"github.com/kirillkom/project-doc-chat/internal/infrastructure/repository/memory"
	"github.com/kirillkom/project-doc-chat/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/project-doc-chat/internal/infrastructure/resilience"
	"github.com/kirillkom/project-doc-chat/internal/infrastructure/storage/localfs"
)

const (
	StoreDriverMemory   = "memory"
	StoreDriverPostgres = "postgres"
)

type App struct {
	Config config.Config

	Accounts ports.AccountService
	Projects ports.ProjectService
	Chat     ports.ChatService

	closers []func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	app := &App{Config: cfg}

	users, projects, err := app.openStores(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.Config{
		Enabled:      cfg.BreakerEnabled,
		MinRequests:  uint32(max(cfg.BreakerMinRequests, 0)),
		FailureRatio: cfg.BreakerFailureRatio,
		OpenTimeout:  time.Duration(cfg.BreakerOpenTimeoutSeconds) * time.Second,
	})

	var events ports.EventPublisher
	if cfg.NATSURL != "" {
		publisher, err := nats.New(cfg.NATSURL, cfg.NATSSubject, nats.Options{ResilienceExecutor: executor})
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("init event publisher: %w", err)
		}
		app.closers = append(app.closers, publisher.Close)
		events = publisher
	} else {
		slog.Info("document_events_disabled")
	}

	completionTimeout := time.Duration(cfg.CompletionTimeoutSeconds) * time.Second
	llm := openai.New(openai.Options{
		BaseURL:            cfg.OpenAIBaseURL,
		APIKey:             cfg.OpenAIAPIKey,
		Model:              cfg.OpenAIModel,
		Timeout:            completionTimeout,
		ResilienceExecutor: executor,
	})
	if cfg.OpenAIAPIKey == "" {
		slog.Warn("openai_api_key_missing")
	}

	app.Accounts = usecase.NewAccountUseCase(
		users,
		auth.NewBcryptHasher(0),
		auth.NewJWTIssuer(cfg.SecretKey, time.Duration(cfg.AccessTokenTTLMinutes)*time.Minute),
	)
	app.Projects = usecase.NewProjectUseCase(projects, document.NewExtractor(), storage, events, llm)
	app.Chat = usecase.NewChatUseCase(projects, llm, completionTimeout)
	return app, nil
}

func (a *App) openStores(ctx context.Context, cfg config.Config) (ports.UserStore, ports.ProjectStore, error) {
	switch cfg.StoreDriver {
	case "", StoreDriverMemory:
		return memory.NewUserStore(), memory.NewProjectStore(), nil
	case StoreDriverPostgres:
		db, err := postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		a.closers = append(a.closers, func() { _ = db.Close() })
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			return nil, nil, fmt.Errorf("ensure schema: %w", err)
		}
		return postgres.NewUserRepository(db), postgres.NewProjectRepository(db), nil
	default:
		return nil, nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}

// Close releases resources in reverse acquisition order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
