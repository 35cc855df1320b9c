package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/kirillkom/intellexa/internal/core/domain"
)

// AttemptRepository is append-only. Attempts disappear only through the
// material delete cascade.
type AttemptRepository struct {
	db *sql.DB
}

func NewAttemptRepository(db *sql.DB) *AttemptRepository {
	return &AttemptRepository{db: db}
}

func (r *AttemptRepository) Append(ctx context.Context, attempt *domain.QuizAttempt) error {
	answers, err := json.Marshal(attempt.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO quiz_attempts (id, material_id, user_id, answers, correct, total, percent, completed_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`, attempt.ID, attempt.MaterialID, attempt.UserID, answers, attempt.Correct, attempt.Total, attempt.Percent, attempt.CompletedAt)
	if err != nil {
		return fmt.Errorf("insert quiz attempt: %w", err)
	}
	return nil
}

func (r *AttemptRepository) ListByMaterialUser(ctx context.Context, materialID, userID string) ([]domain.QuizAttempt, error) {
	return r.list(ctx, `
SELECT id, material_id, user_id, answers, correct, total, percent, completed_at
FROM quiz_attempts
WHERE material_id = $1 AND user_id = $2
ORDER BY completed_at DESC
`, materialID, userID)
}

func (r *AttemptRepository) ListByUser(ctx context.Context, userID string) ([]domain.QuizAttempt, error) {
	return r.list(ctx, `
SELECT id, material_id, user_id, answers, correct, total, percent, completed_at
FROM quiz_attempts
WHERE user_id = $1
ORDER BY completed_at ASC
`, userID)
}

func (r *AttemptRepository) list(ctx context.Context, query string, args ...any) ([]domain.QuizAttempt, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list quiz attempts: %w", err)
	}
	defer rows.Close()

	out := make([]domain.QuizAttempt, 0)
	for rows.Next() {
		var attempt domain.QuizAttempt
		var answersRaw []byte
		if err := rows.Scan(
			&attempt.ID, &attempt.MaterialID, &attempt.UserID, &answersRaw,
			&attempt.Correct, &attempt.Total, &attempt.Percent, &attempt.CompletedAt,
		); err != nil {
			return nil, fmt.Errorf("scan quiz attempt: %w", err)
		}
		if err := json.Unmarshal(answersRaw, &attempt.Answers); err != nil {
			return nil, fmt.Errorf("unmarshal answers: %w", err)
		}
		out = append(out, attempt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quiz attempts: %w", err)
	}
	return out, nil
}
