package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/itshmoh/exambot/internal/config"
	"github.com/itshmoh/exambot/internal/core/ports"
	"github.com/itshmoh/exambot/internal/core/usecase"
	"github.com/itshmoh/exambot/internal/infrastructure/corpus/postgres"
	"github.com/itshmoh/exambot/internal/infrastructure/dataset/csvfile"
	"github.com/itshmoh/exambot/internal/infrastructure/dataset/excel"
	"github.com/itshmoh/exambot/internal/infrastructure/dataset/pdffile"
	"github.com/itshmoh/exambot/internal/infrastructure/llm/gaia"
	"github.com/itshmoh/exambot/internal/infrastructure/queue/nats"
	sessionpg "github.com/itshmoh/exambot/internal/infrastructure/repository/postgres"
	"github.com/itshmoh/exambot/internal/infrastructure/resilience"
)

type App struct {
	Config config.Config

	Queue    *nats.Queue
	Sessions ports.SessionStore

	Retriever ports.QuestionRetriever
	Chat      ports.ChatService
	Loader    ports.DatasetLoader

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	corpus := postgres.NewStore(db)
	if err := corpus.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure corpus schema: %w", err)
	}

	sessions := sessionpg.NewSessionRepository(db)
	if err := sessions.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure session schema: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init dataset queue: %w", err)
	}

	topics, err := loadTopics(cfg.TopicVocabularyPath)
	if err != nil {
		queue.Close()
		_ = db.Close()
		return nil, err
	}

	retriever := usecase.NewRetrievalUseCase(corpus, usecase.RetrievalOptions{
		Topics:             topics,
		FieldSearchLimit:   cfg.RetrievalFieldLimit,
		CandidatePoolSize:  cfg.RetrievalPoolSize,
		FieldSearchTimeout: time.Duration(cfg.RetrievalTimeoutMillis) * time.Millisecond,
	})

	completer := gaia.NewWithOptions(cfg.LLMBaseURL, cfg.LLMModel, gaia.Options{
		APIKey:             cfg.LLMAPIKey,
		ResilienceExecutor: executor,
	})

	chat := usecase.NewChatUseCase(sessions, completer, retriever, usecase.ChatLimits{
		MaxToolIterations: cfg.ChatMaxToolIterations,
		TurnTimeout:       time.Duration(cfg.ChatTurnTimeoutSeconds) * time.Second,
		ContextMessages:   cfg.ChatContextMessages,
	})

	loader := usecase.NewLoadDatasetUseCase(corpus, map[string]ports.DatasetReader{
		"csv":  csvfile.NewReader(),
		"xlsx": excel.NewReader(),
		"pdf":  pdffile.NewReader(),
	})

	return &App{
		Config: cfg,

		Queue:    queue,
		Sessions: sessions,

		Retriever: retriever,
		Chat:      chat,
		Loader:    loader,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func loadTopics(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	topics, err := usecase.LoadTopicVocabulary(path)
	if err != nil {
		return nil, fmt.Errorf("load topic vocabulary: %w", err)
	}
	return topics, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
