package ports

import (
	"context"
	"io"

	"github.com/kirillkom/intellexa/internal/core/domain"
)

// MaterialIngestor is the inbound contract for upload and deletion.
type MaterialIngestor interface {
	Upload(ctx context.Context, userID, filename, mimeType string, body io.Reader) (*domain.Material, error)
	Delete(ctx context.Context, userID, materialID string) error
}

// MaterialProcessor drives one material through extraction and
// generation, and retries failed generation kinds idempotently.
type MaterialProcessor interface {
	ProcessByID(ctx context.Context, materialID string) error
	RetryGeneration(ctx context.Context, userID, materialID string) (*domain.Material, error)
}

// SummaryRegenerator re-invokes summary generation for one difficulty
// without touching other artifacts or re-running extraction.
type SummaryRegenerator interface {
	Regenerate(ctx context.Context, userID, materialID string, difficulty domain.Difficulty) (*domain.SummaryVariant, error)
}

// ChatService answers a question in material context and records both
// turns of the exchange.
type ChatService interface {
	Ask(ctx context.Context, userID, materialID, question string) (*domain.ChatTurn, error)
	History(ctx context.Context, userID, materialID string) ([]domain.ChatTurn, error)
}

// QuizService exposes the taking view and the scoring path.
type QuizService interface {
	TakingView(ctx context.Context, userID, materialID string) (*domain.QuizView, error)
	Submit(ctx context.Context, userID, materialID string, answers []int) (*domain.QuizAttempt, error)
	Attempts(ctx context.Context, userID, materialID string) ([]domain.QuizAttempt, error)
}

// StatsService aggregates per-user study statistics on read.
type StatsService interface {
	Overview(ctx context.Context, userID string) (*domain.UserStats, error)
}
