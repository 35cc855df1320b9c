package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kirillkom/intellexa/internal/core/domain"
	"github.com/kirillkom/intellexa/internal/core/ports"
)

// ProcessMaterialUseCase drives one material through extraction and
// generation. Generation is tracked per artifact kind: a failed quiz
// does not discard a good summary, and retry touches failed kinds only.
type ProcessMaterialUseCase struct {
	repo       ports.MaterialRepository
	extractor  ports.TextExtractor
	generator  ports.ContentGenerator
	summaries  ports.SummaryStore
	flashcards ports.FlashcardStore
	quizzes    ports.QuizStore

	defaultDifficulty domain.Difficulty
	retryTimeout      time.Duration
}

func NewProcessMaterialUseCase(
	repo ports.MaterialRepository,
	extractor ports.TextExtractor,
	generator ports.ContentGenerator,
	summaries ports.SummaryStore,
	flashcards ports.FlashcardStore,
	quizzes ports.QuizStore,
	defaultDifficulty domain.Difficulty,
	retryTimeout time.Duration,
) *ProcessMaterialUseCase {
	return &ProcessMaterialUseCase{
		repo:              repo,
		extractor:         extractor,
		generator:         generator,
		summaries:         summaries,
		flashcards:        flashcards,
		quizzes:           quizzes,
		defaultDifficulty: defaultDifficulty,
		retryTimeout:      retryTimeout,
	}
}

func (uc *ProcessMaterialUseCase) ProcessByID(ctx context.Context, materialID string) error {
	material, err := uc.repo.GetByID(ctx, materialID)
	if err != nil {
		return fmt.Errorf("fetch material by id: %w", err)
	}

	// Queue redelivery of an already finished material is a no-op.
	if material.Status == domain.StatusReady {
		return nil
	}

	if material.Text == "" {
		if err := uc.extractInto(ctx, material); err != nil {
			return err
		}
	}

	return uc.generateKinds(ctx, material, kindsToRun(material.Artifacts))
}

func (uc *ProcessMaterialUseCase) RetryGeneration(ctx context.Context, userID, materialID string) (*domain.Material, error) {
	material, err := uc.repo.GetForUser(ctx, materialID, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch material for retry: %w", err)
	}

	switch material.Status {
	case domain.StatusReady:
		// Nothing failed; retry is idempotent.
		return material, nil
	case domain.StatusPartial, domain.StatusFailed:
	default:
		return nil, domain.WrapError(domain.ErrNotReady, "retry generation",
			fmt.Errorf("material %s is %s", material.ID, material.Status))
	}

	// Detach from the request so a client disconnect cannot abandon
	// generation mid-flight; the outcome is persisted either way.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.retryTimeout)
	defer cancel()

	if material.Text == "" {
		if err := uc.extractInto(ctx, material); err != nil {
			return nil, err
		}
	}

	if err := uc.generateKinds(ctx, material, kindsToRun(material.Artifacts)); err != nil {
		return nil, err
	}
	return material, nil
}

func (uc *ProcessMaterialUseCase) extractInto(ctx context.Context, material *domain.Material) error {
	if err := uc.repo.SetStatus(ctx, material.ID, domain.StatusExtracting, ""); err != nil {
		return fmt.Errorf("set status=extracting: %w", err)
	}

	text, err := uc.extractor.Extract(ctx, material)
	if err != nil {
		if failErr := uc.repo.SetStatus(ctx, material.ID, domain.StatusFailed, err.Error()); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return fmt.Errorf("extract text: %w", err)
	}

	if err := uc.repo.SaveExtractedText(ctx, material.ID, text, domain.StatusExtracted); err != nil {
		return fmt.Errorf("save extracted text: %w", err)
	}
	material.Text = text
	material.Status = domain.StatusExtracted
	return nil
}

// generateKinds runs the requested kinds concurrently, folds the
// per-kind outcomes into the material status, and persists both.
// Individual generation failures land in the artifact states, not in
// the returned error; only persistence failures propagate.
func (uc *ProcessMaterialUseCase) generateKinds(ctx context.Context, material *domain.Material, kinds []domain.ArtifactKind) error {
	if err := uc.repo.SetStatus(ctx, material.ID, domain.StatusGenerating, ""); err != nil {
		return fmt.Errorf("set status=generating: %w", err)
	}

	states := make(domain.ArtifactStates, len(domain.GeneratedKinds))
	for kind, state := range material.Artifacts {
		states[kind] = state
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, kind := range kinds {
		wg.Add(1)
		go func() {
			defer wg.Done()
			state := domain.ArtifactState{Status: domain.ArtifactReady}
			if err := uc.generateKind(ctx, material, kind); err != nil {
				state = domain.ArtifactState{Status: domain.ArtifactFailed, Error: err.Error()}
			}
			mu.Lock()
			states[kind] = state
			mu.Unlock()
		}()
	}
	wg.Wait()

	subject := uc.detectSubject(ctx, material)

	status := states.Outcome()
	if err := uc.repo.SaveGenerationOutcome(ctx, material.ID, subject, status, states); err != nil {
		return fmt.Errorf("save generation outcome: %w", err)
	}

	material.Subject = subject
	material.Status = status
	material.Artifacts = states
	return nil
}

func (uc *ProcessMaterialUseCase) generateKind(ctx context.Context, material *domain.Material, kind domain.ArtifactKind) error {
	now := time.Now().UTC()
	switch kind {
	case domain.KindSummary:
		generated, err := uc.generator.GenerateSummary(ctx, material.Text, uc.defaultDifficulty)
		if err != nil {
			return fmt.Errorf("generate summary: %w", err)
		}
		variant := domain.SummaryVariant{
			MaterialID:  material.ID,
			Difficulty:  uc.defaultDifficulty,
			Text:        generated.Text,
			Truncated:   generated.Truncated,
			GeneratedAt: now,
		}
		if err := uc.summaries.Upsert(ctx, variant); err != nil {
			return fmt.Errorf("store summary: %w", err)
		}
	case domain.KindFlashcards:
		generated, err := uc.generator.GenerateFlashcards(ctx, material.Text)
		if err != nil {
			return fmt.Errorf("generate flashcards: %w", err)
		}
		set := domain.FlashcardSet{
			MaterialID:  material.ID,
			Cards:       generated.Cards,
			Truncated:   generated.Truncated,
			GeneratedAt: now,
		}
		if err := uc.flashcards.Replace(ctx, set); err != nil {
			return fmt.Errorf("store flashcards: %w", err)
		}
	case domain.KindQuiz:
		generated, err := uc.generator.GenerateQuiz(ctx, material.Text)
		if err != nil {
			return fmt.Errorf("generate quiz: %w", err)
		}
		quiz := domain.Quiz{
			MaterialID:  material.ID,
			Questions:   generated.Questions,
			Truncated:   generated.Truncated,
			GeneratedAt: now,
		}
		if err := uc.quizzes.Replace(ctx, quiz); err != nil {
			return fmt.Errorf("store quiz: %w", err)
		}
	default:
		return fmt.Errorf("unknown artifact kind %q", kind)
	}
	return nil
}

// detectSubject is best effort: any failure or implausible answer
// degrades to the fallback label and never fails the pipeline.
func (uc *ProcessMaterialUseCase) detectSubject(ctx context.Context, material *domain.Material) string {
	if material.Subject != "" {
		return material.Subject
	}
	subject, err := uc.generator.DetectSubject(ctx, material.Text)
	if err != nil || subject == "" {
		return "General"
	}
	return subject
}

// kindsToRun picks every kind not already ready, in fixed order, so a
// rerun after partial failure touches only what is missing.
func kindsToRun(states domain.ArtifactStates) []domain.ArtifactKind {
	out := make([]domain.ArtifactKind, 0, len(domain.GeneratedKinds))
	for _, kind := range domain.GeneratedKinds {
		if states[kind].Status != domain.ArtifactReady {
			out = append(out, kind)
		}
	}
	return out
}
