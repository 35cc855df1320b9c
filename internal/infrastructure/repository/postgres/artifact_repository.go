package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kirillkom/intellexa/internal/core/domain"
)

// SummaryRepository keeps one summary row per (material, difficulty).
// Regeneration is a last-writer-wins upsert on that key.
type SummaryRepository struct {
	db *sql.DB
}

func NewSummaryRepository(db *sql.DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

func (r *SummaryRepository) Upsert(ctx context.Context, variant domain.SummaryVariant) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO summary_variants (material_id, difficulty, summary_text, truncated, generated_at)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (material_id, difficulty) DO UPDATE
SET summary_text = EXCLUDED.summary_text,
    truncated = EXCLUDED.truncated,
    generated_at = EXCLUDED.generated_at
`, variant.MaterialID, string(variant.Difficulty), variant.Text, variant.Truncated, variant.GeneratedAt)
	if err != nil {
		return fmt.Errorf("upsert summary variant: %w", err)
	}
	return nil
}

func (r *SummaryRepository) Get(ctx context.Context, materialID string, difficulty domain.Difficulty) (*domain.SummaryVariant, error) {
	var variant domain.SummaryVariant
	var diff string
	err := r.db.QueryRowContext(ctx, `
SELECT material_id, difficulty, summary_text, truncated, generated_at
FROM summary_variants
WHERE material_id = $1 AND difficulty = $2
`, materialID, string(difficulty)).Scan(&variant.MaterialID, &diff, &variant.Text, &variant.Truncated, &variant.GeneratedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrArtifactNotFound, "get summary", fmt.Errorf("material=%s difficulty=%s", materialID, difficulty))
		}
		return nil, fmt.Errorf("get summary variant: %w", err)
	}
	variant.Difficulty = domain.Difficulty(diff)
	return &variant, nil
}

func (r *SummaryRepository) ListByMaterial(ctx context.Context, materialID string) ([]domain.SummaryVariant, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT material_id, difficulty, summary_text, truncated, generated_at
FROM summary_variants
WHERE material_id = $1
ORDER BY difficulty
`, materialID)
	if err != nil {
		return nil, fmt.Errorf("list summary variants: %w", err)
	}
	defer rows.Close()

	out := make([]domain.SummaryVariant, 0)
	for rows.Next() {
		var variant domain.SummaryVariant
		var diff string
		if err := rows.Scan(&variant.MaterialID, &diff, &variant.Text, &variant.Truncated, &variant.GeneratedAt); err != nil {
			return nil, fmt.Errorf("scan summary variant: %w", err)
		}
		variant.Difficulty = domain.Difficulty(diff)
		out = append(out, variant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summary variants: %w", err)
	}
	return out, nil
}

// FlashcardRepository stores a material's cards as one JSONB value, so
// a replace is a single atomic row write and readers never observe a
// half-written set.
type FlashcardRepository struct {
	db *sql.DB
}

func NewFlashcardRepository(db *sql.DB) *FlashcardRepository {
	return &FlashcardRepository{db: db}
}

func (r *FlashcardRepository) Replace(ctx context.Context, set domain.FlashcardSet) error {
	cards, err := json.Marshal(set.Cards)
	if err != nil {
		return fmt.Errorf("marshal flashcards: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO flashcard_sets (material_id, cards, truncated, generated_at)
VALUES ($1,$2,$3,$4)
ON CONFLICT (material_id) DO UPDATE
SET cards = EXCLUDED.cards,
    truncated = EXCLUDED.truncated,
    generated_at = EXCLUDED.generated_at
`, set.MaterialID, cards, set.Truncated, set.GeneratedAt)
	if err != nil {
		return fmt.Errorf("replace flashcard set: %w", err)
	}
	return nil
}

func (r *FlashcardRepository) Get(ctx context.Context, materialID string) (*domain.FlashcardSet, error) {
	var set domain.FlashcardSet
	var cardsRaw []byte
	err := r.db.QueryRowContext(ctx, `
SELECT material_id, cards, truncated, generated_at
FROM flashcard_sets
WHERE material_id = $1
`, materialID).Scan(&set.MaterialID, &cardsRaw, &set.Truncated, &set.GeneratedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrArtifactNotFound, "get flashcards", fmt.Errorf("material=%s", materialID))
		}
		return nil, fmt.Errorf("get flashcard set: %w", err)
	}
	if err := json.Unmarshal(cardsRaw, &set.Cards); err != nil {
		return nil, fmt.Errorf("unmarshal flashcards: %w", err)
	}
	return &set, nil
}

func (r *FlashcardRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
SELECT COALESCE(SUM(jsonb_array_length(f.cards)), 0)
FROM flashcard_sets f
JOIN materials m ON m.id = f.material_id
WHERE m.user_id = $1
`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count flashcards: %w", err)
	}
	return count, nil
}

// QuizRepository stores a material's quiz questions, correct indexes
// included, as one JSONB value. The answer-free taking view is derived
// in the core, never persisted.
type QuizRepository struct {
	db *sql.DB
}

func NewQuizRepository(db *sql.DB) *QuizRepository {
	return &QuizRepository{db: db}
}

func (r *QuizRepository) Replace(ctx context.Context, quiz domain.Quiz) error {
	questions, err := json.Marshal(quiz.Questions)
	if err != nil {
		return fmt.Errorf("marshal quiz questions: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO quizzes (material_id, questions, truncated, generated_at)
VALUES ($1,$2,$3,$4)
ON CONFLICT (material_id) DO UPDATE
SET questions = EXCLUDED.questions,
    truncated = EXCLUDED.truncated,
    generated_at = EXCLUDED.generated_at
`, quiz.MaterialID, questions, quiz.Truncated, quiz.GeneratedAt)
	if err != nil {
		return fmt.Errorf("replace quiz: %w", err)
	}
	return nil
}

func (r *QuizRepository) Get(ctx context.Context, materialID string) (*domain.Quiz, error) {
	var quiz domain.Quiz
	var questionsRaw []byte
	err := r.db.QueryRowContext(ctx, `
SELECT material_id, questions, truncated, generated_at
FROM quizzes
WHERE material_id = $1
`, materialID).Scan(&quiz.MaterialID, &questionsRaw, &quiz.Truncated, &quiz.GeneratedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrArtifactNotFound, "get quiz", fmt.Errorf("material=%s", materialID))
		}
		return nil, fmt.Errorf("get quiz: %w", err)
	}
	if err := json.Unmarshal(questionsRaw, &quiz.Questions); err != nil {
		return nil, fmt.Errorf("unmarshal quiz questions: %w", err)
	}
	return &quiz, nil
}
