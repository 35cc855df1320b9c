package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kirillkom/intellexa/internal/core/domain"
)

// ChatRepository persists one conversation per (material, user). Turn
// numbers come from a per-session counter row bumped in a single
// statement, so concurrent askers get strictly increasing numbers.
type ChatRepository struct {
	db *sql.DB
}

func NewChatRepository(db *sql.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

func (r *ChatRepository) NextTurn(ctx context.Context, materialID, userID string) (int, error) {
	now := time.Now().UTC()
	var turn int
	err := r.db.QueryRowContext(ctx, `
INSERT INTO chat_sessions (material_id, user_id, current_turn, created_at, updated_at)
VALUES ($1, $2, 1, $3, $3)
ON CONFLICT (material_id, user_id) DO UPDATE
SET current_turn = chat_sessions.current_turn + 1, updated_at = $3
RETURNING current_turn
`, materialID, userID, now).Scan(&turn)
	if err != nil {
		return 0, fmt.Errorf("advance chat turn: %w", err)
	}
	return turn, nil
}

func (r *ChatRepository) AppendExchange(ctx context.Context, question, reply domain.ChatTurn) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin chat tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const insert = `
INSERT INTO chat_turns (id, material_id, user_id, role, content, turn, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`
	for _, turn := range []domain.ChatTurn{question, reply} {
		if _, err := tx.ExecContext(ctx, insert,
			turn.ID, turn.MaterialID, turn.UserID, string(turn.Role), turn.Content, turn.Turn, turn.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert chat turn: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit chat tx: %w", err)
	}
	return nil
}

func (r *ChatRepository) ListRecent(ctx context.Context, materialID, userID string, limit int) ([]domain.ChatTurn, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, material_id, user_id, role, content, turn, created_at
FROM chat_turns
WHERE material_id = $1 AND user_id = $2
ORDER BY turn DESC, created_at DESC
LIMIT $3
`, materialID, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent chat turns: %w", err)
	}
	turns, err := collectTurns(rows)
	if err != nil {
		return nil, err
	}
	// Fetched newest-first to apply the limit; callers want oldest-first.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

func (r *ChatRepository) ListAll(ctx context.Context, materialID, userID string) ([]domain.ChatTurn, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, material_id, user_id, role, content, turn, created_at
FROM chat_turns
WHERE material_id = $1 AND user_id = $2
ORDER BY turn ASC, created_at ASC
`, materialID, userID)
	if err != nil {
		return nil, fmt.Errorf("list chat turns: %w", err)
	}
	return collectTurns(rows)
}

func collectTurns(rows *sql.Rows) ([]domain.ChatTurn, error) {
	defer rows.Close()

	out := make([]domain.ChatTurn, 0)
	for rows.Next() {
		var turn domain.ChatTurn
		var role string
		if err := rows.Scan(&turn.ID, &turn.MaterialID, &turn.UserID, &role, &turn.Content, &turn.Turn, &turn.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chat turn: %w", err)
		}
		turn.Role = domain.ChatRole(role)
		out = append(out, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chat turns: %w", err)
	}
	return out, nil
}
