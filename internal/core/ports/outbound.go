package ports

import (
	"context"
	"io"

	"github.com/kirillkom/intellexa/internal/core/domain"
)

// MaterialRepository persists material state and drives the pipeline
// state machine through atomic single-row writes.
type MaterialRepository interface {
	Create(ctx context.Context, material *domain.Material) error
	GetByID(ctx context.Context, id string) (*domain.Material, error)
	GetForUser(ctx context.Context, id, userID string) (*domain.Material, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Material, error)
	SetStatus(ctx context.Context, id string, status domain.MaterialStatus, errMessage string) error
	// SaveExtractedText stores the raw text and moves the material to
	// the given status in one write.
	SaveExtractedText(ctx context.Context, id, text string, status domain.MaterialStatus) error
	// SaveGenerationOutcome records the folded status plus per-kind
	// artifact states, and the detected subject when non-empty.
	SaveGenerationOutcome(ctx context.Context, id, subject string, status domain.MaterialStatus, states domain.ArtifactStates) error
	Delete(ctx context.Context, id, userID string) error
	CountByUser(ctx context.Context, userID string) (int, error)
	SubjectCounts(ctx context.Context, userID string) ([]domain.SubjectCount, error)
}

// SummaryStore keeps at most one variant per (material, difficulty).
type SummaryStore interface {
	Upsert(ctx context.Context, variant domain.SummaryVariant) error
	Get(ctx context.Context, materialID string, difficulty domain.Difficulty) (*domain.SummaryVariant, error)
	ListByMaterial(ctx context.Context, materialID string) ([]domain.SummaryVariant, error)
}

type FlashcardStore interface {
	Replace(ctx context.Context, set domain.FlashcardSet) error
	Get(ctx context.Context, materialID string) (*domain.FlashcardSet, error)
	CountByUser(ctx context.Context, userID string) (int, error)
}

type QuizStore interface {
	Replace(ctx context.Context, quiz domain.Quiz) error
	Get(ctx context.Context, materialID string) (*domain.Quiz, error)
}

// AttemptStore is append-only; attempts are never updated or removed
// except by material cascade.
type AttemptStore interface {
	Append(ctx context.Context, attempt *domain.QuizAttempt) error
	ListByMaterialUser(ctx context.Context, materialID, userID string) ([]domain.QuizAttempt, error)
	ListByUser(ctx context.Context, userID string) ([]domain.QuizAttempt, error)
}

// ChatStore persists conversation turns per (material, user). NextTurn
// must hand out strictly increasing numbers under concurrent callers.
type ChatStore interface {
	NextTurn(ctx context.Context, materialID, userID string) (int, error)
	// AppendExchange writes a question turn and its reply turn together.
	AppendExchange(ctx context.Context, question, reply domain.ChatTurn) error
	ListRecent(ctx context.Context, materialID, userID string, limit int) ([]domain.ChatTurn, error)
	ListAll(ctx context.Context, materialID, userID string) ([]domain.ChatTurn, error)
}

// ObjectStorage stores source documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// MessageQueue publishes/consumes ingestion events.
type MessageQueue interface {
	PublishMaterialIngested(ctx context.Context, materialID string) error
	SubscribeMaterialIngested(ctx context.Context, handler func(context.Context, string) error) error
}

// TextExtractor pulls plain text out of a stored document. Failures are
// structural (domain.ErrUnsupportedFormat, domain.ErrNoExtractableText)
// and must not be retried.
type TextExtractor interface {
	Extract(ctx context.Context, material *domain.Material) (string, error)
}

// ContentGenerator wraps the external generative service. Implementations
// template prompts deterministically, clip document text to the configured
// ceiling, and validate structured output shapes.
type ContentGenerator interface {
	GenerateSummary(ctx context.Context, text string, difficulty domain.Difficulty) (domain.GeneratedSummary, error)
	GenerateFlashcards(ctx context.Context, text string) (domain.GeneratedFlashcards, error)
	GenerateQuiz(ctx context.Context, text string) (domain.GeneratedQuiz, error)
	GenerateChatReply(ctx context.Context, prompt domain.ChatPrompt) (string, error)
	DetectSubject(ctx context.Context, text string) (string, error)
}
