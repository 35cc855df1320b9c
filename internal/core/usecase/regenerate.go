package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/kirillkom/intellexa/internal/core/domain"
	"github.com/kirillkom/intellexa/internal/core/ports"
)

// RegenerateSummaryUseCase re-invokes summary generation for a single
// difficulty. Other difficulties, flashcards and the quiz are never
// touched, and extraction is not re-run.
type RegenerateSummaryUseCase struct {
	repo      ports.MaterialRepository
	generator ports.ContentGenerator
	summaries ports.SummaryStore
	timeout   time.Duration
}

func NewRegenerateSummaryUseCase(
	repo ports.MaterialRepository,
	generator ports.ContentGenerator,
	summaries ports.SummaryStore,
	timeout time.Duration,
) *RegenerateSummaryUseCase {
	return &RegenerateSummaryUseCase{
		repo:      repo,
		generator: generator,
		summaries: summaries,
		timeout:   timeout,
	}
}

func (uc *RegenerateSummaryUseCase) Regenerate(ctx context.Context, userID, materialID string, difficulty domain.Difficulty) (*domain.SummaryVariant, error) {
	material, err := uc.repo.GetForUser(ctx, materialID, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch material for regeneration: %w", err)
	}

	switch material.Status {
	case domain.StatusReady, domain.StatusPartial:
	default:
		return nil, domain.WrapError(domain.ErrNotReady, "regenerate summary",
			fmt.Errorf("material %s is %s", material.ID, material.Status))
	}
	if material.Text == "" {
		return nil, domain.WrapError(domain.ErrNotReady, "regenerate summary",
			fmt.Errorf("material %s has no extracted text (status %s)", material.ID, material.Status))
	}

	// Detached from the request: a disconnecting client must not cancel
	// the external call, and the new variant is persisted regardless.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.timeout)
	defer cancel()

	generated, err := uc.generator.GenerateSummary(ctx, material.Text, difficulty)
	if err != nil {
		return nil, fmt.Errorf("generate summary: %w", err)
	}

	variant := domain.SummaryVariant{
		MaterialID:  material.ID,
		Difficulty:  difficulty,
		Text:        generated.Text,
		Truncated:   generated.Truncated,
		GeneratedAt: time.Now().UTC(),
	}
	if err := uc.summaries.Upsert(ctx, variant); err != nil {
		return nil, fmt.Errorf("store summary variant: %w", err)
	}
	return &variant, nil
}
