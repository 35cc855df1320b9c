package bootstrap

import (
	"context"
	"fmt"

	"github.com/kirillkom/intellexa/internal/config"
	"github.com/kirillkom/intellexa/internal/core/domain"
	"github.com/kirillkom/intellexa/internal/core/ports"
	"github.com/kirillkom/intellexa/internal/core/usecase"
	"github.com/kirillkom/intellexa/internal/infrastructure/extractor"
	"github.com/kirillkom/intellexa/internal/infrastructure/llm/gemini"
	"github.com/kirillkom/intellexa/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/intellexa/internal/infrastructure/llm/prompt"
	"github.com/kirillkom/intellexa/internal/infrastructure/queue/nats"
	"github.com/kirillkom/intellexa/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/intellexa/internal/infrastructure/resilience"
	"github.com/kirillkom/intellexa/internal/infrastructure/storage/localfs"
)

type App struct {
	Config config.Config

	Queue      ports.MessageQueue
	Materials  ports.MaterialRepository
	Summaries  ports.SummaryStore
	Flashcards ports.FlashcardStore
	Quizzes    ports.QuizStore

	Ingest      ports.MaterialIngestor
	Processor   ports.MaterialProcessor
	Regenerator ports.SummaryRegenerator
	Chat        ports.ChatService
	Quiz        ports.QuizService
	Stats       ports.StatsService

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	materials := postgres.NewMaterialRepository(db)
	if err := materials.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	summaries := postgres.NewSummaryRepository(db)
	flashcards := postgres.NewFlashcardRepository(db)
	quizzes := postgres.NewQuizRepository(db)
	attempts := postgres.NewAttemptRepository(db)
	chats := postgres.NewChatRepository(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	queue, err := nats.New(cfg.NATSURL, cfg.NATSSubject)
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	generator, closeGenerator, err := newGenerator(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init content generator: %w", err)
	}

	defaultDifficulty, ok := domain.ParseDifficulty(cfg.DefaultDifficulty)
	if !ok {
		defaultDifficulty = domain.DifficultyIntermediate
	}

	extract := extractor.New(storage)

	ingest := usecase.NewIngestMaterialUseCase(materials, storage, queue, extractor.SupportedFormat)
	processor := usecase.NewProcessMaterialUseCase(
		materials, extract, generator, summaries, flashcards, quizzes,
		defaultDifficulty, cfg.GenerationTimeout,
	)
	regenerator := usecase.NewRegenerateSummaryUseCase(materials, generator, summaries, cfg.GenerationTimeout)
	chat := usecase.NewChatUseCase(materials, chats, generator, cfg.ChatExcerptBudget, cfg.ChatHistoryWindow, cfg.GenerationTimeout)
	quiz := usecase.NewQuizUseCase(materials, quizzes, attempts)
	stats := usecase.NewStatsUseCase(materials, flashcards, attempts)

	return &App{
		Config: cfg,

		Queue:      queue,
		Materials:  materials,
		Summaries:  summaries,
		Flashcards: flashcards,
		Quizzes:    quizzes,

		Ingest:      ingest,
		Processor:   processor,
		Regenerator: regenerator,
		Chat:        chat,
		Quiz:        quiz,
		Stats:       stats,

		closeFn: func() {
			queue.Close()
			closeGenerator()
			_ = db.Close()
		},
	}, nil
}

func newGenerator(ctx context.Context, cfg config.Config) (ports.ContentGenerator, func(), error) {
	limits := prompt.Limits{
		TextBudget:        cfg.PromptTextBudget,
		ChatExcerptBudget: cfg.ChatExcerptBudget,
		SubjectHeadBudget: cfg.SubjectHeadBudget,
		FlashcardCount:    cfg.FlashcardCount,
		QuizQuestionCount: cfg.QuizQuestionCount,
		QuizOptionCount:   cfg.QuizOptionCount,
	}
	executor := resilience.NewExecutor(resilience.DefaultConfig())

	switch cfg.LLMProvider {
	case "gemini":
		client, err := gemini.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, limits, executor)
		if err != nil {
			return nil, nil, err
		}
		return client, func() { _ = client.Close() }, nil
	case "ollama":
		client := ollama.New(ollama.Config{
			BaseURL:       cfg.OllamaURL,
			Model:         cfg.OllamaModel,
			Limits:        limits,
			CallTimeout:   cfg.LLMCallTimeout,
			RatePerSecond: cfg.LLMRatePerSecond,
			RateBurst:     cfg.LLMRateBurst,
		}, executor)
		return client, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown llm provider %q", cfg.LLMProvider)
	}
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
