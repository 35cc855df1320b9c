package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/kirillkom/intellexa/internal/core/domain"
)

func TestRegenerateLeavesOtherDifficultiesAlone(t *testing.T) {
	material := &domain.Material{ID: "mat-1", UserID: "user-1", Status: domain.StatusReady, Text: "text"}
	summaries := newSummaryStoreFake()
	existing := domain.SummaryVariant{MaterialID: "mat-1", Difficulty: domain.DifficultyBeginner, Text: "easy take"}
	summaries.variants[summaryKey{"mat-1", domain.DifficultyBeginner}] = existing

	uc := NewRegenerateSummaryUseCase(newMaterialRepoFake(material), &generatorFake{summaryText: "hard take"}, summaries, time.Minute)

	variant, err := uc.Regenerate(context.Background(), "user-1", "mat-1", domain.DifficultyAdvanced)
	if err != nil {
		t.Fatalf("Regenerate() error = %v", err)
	}
	if variant.Text != "hard take" || variant.Difficulty != domain.DifficultyAdvanced {
		t.Fatalf("unexpected variant %+v", variant)
	}

	untouched, err := summaries.Get(context.Background(), "mat-1", domain.DifficultyBeginner)
	if err != nil {
		t.Fatalf("beginner variant must survive: %v", err)
	}
	if untouched.Text != "easy take" {
		t.Fatalf("beginner variant altered: %q", untouched.Text)
	}
}

func TestRegenerateTwiceKeepsSingleVariant(t *testing.T) {
	material := &domain.Material{ID: "mat-1", UserID: "user-1", Status: domain.StatusReady, Text: "text"}
	summaries := newSummaryStoreFake()
	generator := &generatorFake{summaryText: "first"}
	uc := NewRegenerateSummaryUseCase(newMaterialRepoFake(material), generator, summaries, time.Minute)

	if _, err := uc.Regenerate(context.Background(), "user-1", "mat-1", domain.DifficultyExamPrep); err != nil {
		t.Fatalf("first Regenerate() error = %v", err)
	}
	generator.summaryText = "second"
	if _, err := uc.Regenerate(context.Background(), "user-1", "mat-1", domain.DifficultyExamPrep); err != nil {
		t.Fatalf("second Regenerate() error = %v", err)
	}

	stored, err := summaries.Get(context.Background(), "mat-1", domain.DifficultyExamPrep)
	if err != nil {
		t.Fatalf("expected stored variant: %v", err)
	}
	if stored.Text != "second" {
		t.Fatalf("expected most recent generation, got %q", stored.Text)
	}
	if len(summaries.variants) != 1 {
		t.Fatalf("expected exactly one variant, got %d", len(summaries.variants))
	}
}

func TestRegenerateRejectsMaterialsOutsideReadyOrPartial(t *testing.T) {
	for _, status := range []domain.MaterialStatus{
		domain.StatusUploaded,
		domain.StatusExtracting,
		domain.StatusExtracted,
		domain.StatusGenerating,
		domain.StatusFailed,
	} {
		t.Run(string(status), func(t *testing.T) {
			material := &domain.Material{ID: "mat-1", UserID: "user-1", Status: status, Text: "text"}
			summaries := newSummaryStoreFake()
			uc := NewRegenerateSummaryUseCase(newMaterialRepoFake(material), &generatorFake{summaryText: "take"}, summaries, time.Minute)

			_, err := uc.Regenerate(context.Background(), "user-1", "mat-1", domain.DifficultyAdvanced)
			if !domain.IsKind(err, domain.ErrNotReady) {
				t.Fatalf("expected not-ready error for %s material, got %v", status, err)
			}
			if len(summaries.variants) != 0 {
				t.Fatalf("no variant may be stored for %s material, got %d", status, len(summaries.variants))
			}
		})
	}
}

func TestRegenerateAcceptsPartialMaterial(t *testing.T) {
	material := &domain.Material{ID: "mat-1", UserID: "user-1", Status: domain.StatusPartial, Text: "text"}
	uc := NewRegenerateSummaryUseCase(newMaterialRepoFake(material), &generatorFake{summaryText: "take"}, newSummaryStoreFake(), time.Minute)

	if _, err := uc.Regenerate(context.Background(), "user-1", "mat-1", domain.DifficultyBeginner); err != nil {
		t.Fatalf("Regenerate() error = %v", err)
	}
}

func TestRegenerateRequiresExtractedText(t *testing.T) {
	material := &domain.Material{ID: "mat-1", UserID: "user-1", Status: domain.StatusPartial}
	uc := NewRegenerateSummaryUseCase(newMaterialRepoFake(material), &generatorFake{}, newSummaryStoreFake(), time.Minute)

	_, err := uc.Regenerate(context.Background(), "user-1", "mat-1", domain.DifficultyBeginner)
	if !domain.IsKind(err, domain.ErrNotReady) {
		t.Fatalf("expected not-ready error, got %v", err)
	}
}
