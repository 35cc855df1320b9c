package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kirillkom/intellexa/internal/core/domain"
)

func pendingStates() domain.ArtifactStates {
	states := domain.ArtifactStates{}
	for _, kind := range domain.GeneratedKinds {
		states[kind] = domain.ArtifactState{Status: domain.ArtifactPending}
	}
	return states
}

func newProcessFixture(material *domain.Material, generator *generatorFake) (*ProcessMaterialUseCase, *materialRepoFake, *summaryStoreFake, *flashcardStoreFake, *quizStoreFake) {
	repo := newMaterialRepoFake(material)
	summaries := newSummaryStoreFake()
	flashcards := newFlashcardStoreFake()
	quizzes := newQuizStoreFake()
	uc := NewProcessMaterialUseCase(
		repo,
		&extractorFake{text: "extracted text"},
		generator,
		summaries,
		flashcards,
		quizzes,
		domain.DifficultyIntermediate,
		time.Minute,
	)
	return uc, repo, summaries, flashcards, quizzes
}

func TestProcessByIDAllKindsSucceed(t *testing.T) {
	material := &domain.Material{ID: "mat-1", UserID: "user-1", Status: domain.StatusUploaded, Artifacts: pendingStates()}
	generator := &generatorFake{
		summaryText: "a summary",
		cards:       []domain.Flashcard{{Question: "q", Answer: "a"}},
		questions:   []domain.QuizQuestion{{Prompt: "p", Options: []string{"a", "b", "c", "d"}, CorrectOption: 1}},
		subject:     "Mathematics",
	}
	uc, repo, summaries, flashcards, quizzes := newProcessFixture(material, generator)

	if err := uc.ProcessByID(context.Background(), "mat-1"); err != nil {
		t.Fatalf("ProcessByID() error = %v", err)
	}

	if repo.outcomeState != domain.StatusReady {
		t.Fatalf("expected ready outcome, got %s", repo.outcomeState)
	}
	if repo.savedText != "extracted text" {
		t.Fatalf("expected extracted text persisted, got %q", repo.savedText)
	}
	if repo.subject != "Mathematics" {
		t.Fatalf("expected detected subject, got %q", repo.subject)
	}
	for _, kind := range domain.GeneratedKinds {
		if repo.outcome[kind].Status != domain.ArtifactReady {
			t.Fatalf("expected %s ready, got %s", kind, repo.outcome[kind].Status)
		}
	}
	if _, err := summaries.Get(context.Background(), "mat-1", domain.DifficultyIntermediate); err != nil {
		t.Fatalf("expected stored summary: %v", err)
	}
	if _, err := flashcards.Get(context.Background(), "mat-1"); err != nil {
		t.Fatalf("expected stored flashcards: %v", err)
	}
	if _, err := quizzes.Get(context.Background(), "mat-1"); err != nil {
		t.Fatalf("expected stored quiz: %v", err)
	}
}

func TestProcessByIDQuizFailureYieldsPartial(t *testing.T) {
	material := &domain.Material{ID: "mat-1", UserID: "user-1", Status: domain.StatusUploaded, Artifacts: pendingStates()}
	generator := &generatorFake{
		summaryText: "a summary",
		cards:       []domain.Flashcard{{Question: "q", Answer: "a"}},
		quizErr:     errors.New("malformed quiz json"),
		subject:     "History",
	}
	uc, repo, summaries, flashcards, _ := newProcessFixture(material, generator)

	if err := uc.ProcessByID(context.Background(), "mat-1"); err != nil {
		t.Fatalf("ProcessByID() error = %v", err)
	}

	if repo.outcomeState != domain.StatusPartial {
		t.Fatalf("expected partial outcome, got %s", repo.outcomeState)
	}
	if repo.outcome[domain.KindQuiz].Status != domain.ArtifactFailed {
		t.Fatalf("expected quiz failed, got %s", repo.outcome[domain.KindQuiz].Status)
	}
	if repo.outcome[domain.KindQuiz].Error == "" {
		t.Fatalf("expected quiz failure message recorded")
	}
	if _, err := summaries.Get(context.Background(), "mat-1", domain.DifficultyIntermediate); err != nil {
		t.Fatalf("summary should survive a failed quiz: %v", err)
	}
	if _, err := flashcards.Get(context.Background(), "mat-1"); err != nil {
		t.Fatalf("flashcards should survive a failed quiz: %v", err)
	}
}

func TestProcessByIDAllKindsFail(t *testing.T) {
	material := &domain.Material{ID: "mat-1", UserID: "user-1", Status: domain.StatusUploaded, Artifacts: pendingStates()}
	generator := &generatorFake{
		summaryErr:   errors.New("timeout"),
		flashcardErr: errors.New("timeout"),
		quizErr:      errors.New("timeout"),
		subject:      "Physics",
	}
	uc, repo, _, _, _ := newProcessFixture(material, generator)

	if err := uc.ProcessByID(context.Background(), "mat-1"); err != nil {
		t.Fatalf("ProcessByID() error = %v", err)
	}
	if repo.outcomeState != domain.StatusFailed {
		t.Fatalf("expected failed outcome, got %s", repo.outcomeState)
	}
}

func TestProcessByIDMarksFailedOnExtractError(t *testing.T) {
	material := &domain.Material{ID: "mat-1", UserID: "user-1", Status: domain.StatusUploaded, Artifacts: pendingStates()}
	repo := newMaterialRepoFake(material)
	uc := NewProcessMaterialUseCase(
		repo,
		&extractorFake{err: domain.WrapError(domain.ErrNoExtractableText, "extract", errors.New("image-only scan"))},
		&generatorFake{},
		newSummaryStoreFake(),
		newFlashcardStoreFake(),
		newQuizStoreFake(),
		domain.DifficultyIntermediate,
		time.Minute,
	)

	err := uc.ProcessByID(context.Background(), "mat-1")
	if err == nil {
		t.Fatalf("expected error")
	}
	last := repo.statusCalls[len(repo.statusCalls)-1]
	if last.status != domain.StatusFailed || last.errMsg == "" {
		t.Fatalf("expected failed status with message, got %+v", last)
	}
}

func TestProcessByIDIsNoOpWhenAlreadyReady(t *testing.T) {
	material := &domain.Material{ID: "mat-1", UserID: "user-1", Status: domain.StatusReady}
	generator := &generatorFake{}
	uc, repo, _, _, _ := newProcessFixture(material, generator)

	if err := uc.ProcessByID(context.Background(), "mat-1"); err != nil {
		t.Fatalf("ProcessByID() error = %v", err)
	}
	if len(repo.statusCalls) != 0 {
		t.Fatalf("expected no status writes on redelivery, got %+v", repo.statusCalls)
	}
	if generator.flashcardCalls != 0 || generator.quizCalls != 0 || len(generator.summaryCalls) != 0 {
		t.Fatalf("expected no generation calls on redelivery")
	}
}

func TestProcessByIDFallsBackToGeneralSubject(t *testing.T) {
	material := &domain.Material{ID: "mat-1", UserID: "user-1", Status: domain.StatusUploaded, Artifacts: pendingStates()}
	generator := &generatorFake{
		summaryText: "s",
		cards:       []domain.Flashcard{{Question: "q", Answer: "a"}},
		questions:   []domain.QuizQuestion{{Prompt: "p", Options: []string{"a", "b"}, CorrectOption: 0}},
		subjectErr:  errors.New("subject call failed"),
	}
	uc, repo, _, _, _ := newProcessFixture(material, generator)

	if err := uc.ProcessByID(context.Background(), "mat-1"); err != nil {
		t.Fatalf("ProcessByID() error = %v", err)
	}
	if repo.subject != "General" {
		t.Fatalf("expected General fallback, got %q", repo.subject)
	}
	if repo.outcomeState != domain.StatusReady {
		t.Fatalf("subject failure must not fail the pipeline, got %s", repo.outcomeState)
	}
}

func TestRetryGenerationRegeneratesOnlyFailedKinds(t *testing.T) {
	states := domain.ArtifactStates{
		domain.KindSummary:    {Status: domain.ArtifactReady},
		domain.KindFlashcards: {Status: domain.ArtifactReady},
		domain.KindQuiz:       {Status: domain.ArtifactFailed, Error: "malformed"},
	}
	material := &domain.Material{
		ID: "mat-1", UserID: "user-1",
		Status: domain.StatusPartial, Text: "already extracted",
		Subject: "Biology", Artifacts: states,
	}
	generator := &generatorFake{
		questions: []domain.QuizQuestion{{Prompt: "p", Options: []string{"a", "b", "c", "d"}, CorrectOption: 2}},
	}
	uc, repo, _, _, quizzes := newProcessFixture(material, generator)

	updated, err := uc.RetryGeneration(context.Background(), "user-1", "mat-1")
	if err != nil {
		t.Fatalf("RetryGeneration() error = %v", err)
	}
	if len(generator.summaryCalls) != 0 || generator.flashcardCalls != 0 {
		t.Fatalf("succeeded kinds must not be regenerated")
	}
	if generator.quizCalls != 1 {
		t.Fatalf("expected 1 quiz regeneration, got %d", generator.quizCalls)
	}
	if updated.Status != domain.StatusReady {
		t.Fatalf("expected ready after successful retry, got %s", updated.Status)
	}
	if repo.outcome[domain.KindQuiz].Status != domain.ArtifactReady {
		t.Fatalf("expected quiz ready after retry")
	}
	if _, err := quizzes.Get(context.Background(), "mat-1"); err != nil {
		t.Fatalf("expected stored quiz after retry: %v", err)
	}
}

func TestRetryGenerationIsNoOpWhenReady(t *testing.T) {
	material := &domain.Material{ID: "mat-1", UserID: "user-1", Status: domain.StatusReady, Text: "text"}
	generator := &generatorFake{}
	uc, _, _, _, _ := newProcessFixture(material, generator)

	got, err := uc.RetryGeneration(context.Background(), "user-1", "mat-1")
	if err != nil {
		t.Fatalf("RetryGeneration() error = %v", err)
	}
	if got.Status != domain.StatusReady {
		t.Fatalf("expected ready, got %s", got.Status)
	}
	if generator.quizCalls != 0 {
		t.Fatalf("expected no generation on ready material")
	}
}

func TestRetryGenerationRejectsInFlightMaterial(t *testing.T) {
	material := &domain.Material{ID: "mat-1", UserID: "user-1", Status: domain.StatusGenerating, Text: "text"}
	uc, _, _, _, _ := newProcessFixture(material, &generatorFake{})

	_, err := uc.RetryGeneration(context.Background(), "user-1", "mat-1")
	if !domain.IsKind(err, domain.ErrNotReady) {
		t.Fatalf("expected not-ready error, got %v", err)
	}
}
