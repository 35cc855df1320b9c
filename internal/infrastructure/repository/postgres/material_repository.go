package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kirillkom/intellexa/internal/core/domain"
)

type MaterialRepository struct {
	db *sql.DB
}

func NewMaterialRepository(db *sql.DB) *MaterialRepository {
	return &MaterialRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *MaterialRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083101)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS materials (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	filename TEXT NOT NULL,
	mime_type TEXT NOT NULL,
	title TEXT NOT NULL,
	subject TEXT,
	storage_path TEXT NOT NULL,
	text_content TEXT,
	status TEXT NOT NULL,
	artifact_states JSONB NOT NULL DEFAULT '{}'::jsonb,
	error_message TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_materials_user ON materials(user_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_materials_status ON materials(status);

CREATE TABLE IF NOT EXISTS summary_variants (
	material_id TEXT NOT NULL REFERENCES materials(id) ON DELETE CASCADE,
	difficulty TEXT NOT NULL,
	summary_text TEXT NOT NULL,
	truncated BOOLEAN NOT NULL DEFAULT FALSE,
	generated_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (material_id, difficulty)
);

CREATE TABLE IF NOT EXISTS flashcard_sets (
	material_id TEXT PRIMARY KEY REFERENCES materials(id) ON DELETE CASCADE,
	cards JSONB NOT NULL,
	truncated BOOLEAN NOT NULL DEFAULT FALSE,
	generated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS quizzes (
	material_id TEXT PRIMARY KEY REFERENCES materials(id) ON DELETE CASCADE,
	questions JSONB NOT NULL,
	truncated BOOLEAN NOT NULL DEFAULT FALSE,
	generated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS quiz_attempts (
	id TEXT PRIMARY KEY,
	material_id TEXT NOT NULL REFERENCES materials(id) ON DELETE CASCADE,
	user_id TEXT NOT NULL,
	answers JSONB NOT NULL,
	correct INT NOT NULL,
	total INT NOT NULL,
	percent DOUBLE PRECISION NOT NULL,
	completed_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_attempts_material_user ON quiz_attempts(material_id, user_id, completed_at DESC);
CREATE INDEX IF NOT EXISTS idx_attempts_user ON quiz_attempts(user_id, completed_at DESC);

CREATE TABLE IF NOT EXISTS chat_sessions (
	material_id TEXT NOT NULL REFERENCES materials(id) ON DELETE CASCADE,
	user_id TEXT NOT NULL,
	current_turn INT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (material_id, user_id)
);

CREATE TABLE IF NOT EXISTS chat_turns (
	id TEXT PRIMARY KEY,
	material_id TEXT NOT NULL REFERENCES materials(id) ON DELETE CASCADE,
	user_id TEXT NOT NULL,
	role TEXT NOT NULL,
	content TEXT NOT NULL,
	turn INT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_chat_turns_session ON chat_turns(material_id, user_id, turn, created_at);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *MaterialRepository) Create(ctx context.Context, material *domain.Material) error {
	statesJSON, err := json.Marshal(material.Artifacts)
	if err != nil {
		return fmt.Errorf("marshal artifact states: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO materials (
	id, user_id, filename, mime_type, title, subject, storage_path, text_content, status, artifact_states, error_message, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
`,
		material.ID, material.UserID, material.Filename, material.MimeType, material.Title,
		material.Subject, material.StoragePath, nullableString(material.Text), string(material.Status),
		statesJSON, material.Error, material.CreatedAt, material.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert material: %w", err)
	}
	return nil
}

const materialColumns = `
id, user_id, filename, mime_type, title, COALESCE(subject, ''), storage_path, COALESCE(text_content, ''),
status, artifact_states, COALESCE(error_message, ''), created_at, updated_at
`

func (r *MaterialRepository) GetByID(ctx context.Context, id string) (*domain.Material, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+materialColumns+`
FROM materials
WHERE id = $1
`, id)
	return scanMaterial(row, id)
}

func (r *MaterialRepository) GetForUser(ctx context.Context, id, userID string) (*domain.Material, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+materialColumns+`
FROM materials
WHERE id = $1 AND user_id = $2
`, id, userID)
	return scanMaterial(row, id)
}

func (r *MaterialRepository) ListByUser(ctx context.Context, userID string) ([]domain.Material, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+materialColumns+`
FROM materials
WHERE user_id = $1
ORDER BY created_at DESC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Material, 0)
	for rows.Next() {
		material, err := scanMaterial(rows, "")
		if err != nil {
			return nil, err
		}
		out = append(out, *material)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate materials: %w", err)
	}
	return out, nil
}

func (r *MaterialRepository) SetStatus(ctx context.Context, id string, status domain.MaterialStatus, errMessage string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE materials
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, id, string(status), errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update material status: %w", err)
	}
	return requireRow(result, id)
}

func (r *MaterialRepository) SaveExtractedText(ctx context.Context, id, text string, status domain.MaterialStatus) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE materials
SET text_content = $2, status = $3, error_message = '', updated_at = $4
WHERE id = $1
`, id, text, string(status), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save extracted text: %w", err)
	}
	return requireRow(result, id)
}

func (r *MaterialRepository) SaveGenerationOutcome(ctx context.Context, id, subject string, status domain.MaterialStatus, states domain.ArtifactStates) error {
	statesJSON, err := json.Marshal(states)
	if err != nil {
		return fmt.Errorf("marshal artifact states: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `
UPDATE materials
SET subject = COALESCE(NULLIF($2, ''), subject), status = $3, artifact_states = $4, updated_at = $5
WHERE id = $1
`, id, subject, string(status), statesJSON, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save generation outcome: %w", err)
	}
	return requireRow(result, id)
}

func (r *MaterialRepository) Delete(ctx context.Context, id, userID string) error {
	result, err := r.db.ExecContext(ctx, `
DELETE FROM materials
WHERE id = $1 AND user_id = $2
`, id, userID)
	if err != nil {
		return fmt.Errorf("delete material: %w", err)
	}
	return requireRow(result, id)
}

func (r *MaterialRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM materials WHERE user_id = $1
`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count materials: %w", err)
	}
	return count, nil
}

func (r *MaterialRepository) SubjectCounts(ctx context.Context, userID string) ([]domain.SubjectCount, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT COALESCE(NULLIF(subject, ''), 'General'), COUNT(*)
FROM materials
WHERE user_id = $1
GROUP BY 1
ORDER BY COUNT(*) DESC, 1
`, userID)
	if err != nil {
		return nil, fmt.Errorf("subject counts: %w", err)
	}
	defer rows.Close()

	out := make([]domain.SubjectCount, 0)
	for rows.Next() {
		var sc domain.SubjectCount
		if err := rows.Scan(&sc.Subject, &sc.Count); err != nil {
			return nil, fmt.Errorf("scan subject count: %w", err)
		}
		out = append(out, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subject counts: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMaterial(row rowScanner, id string) (*domain.Material, error) {
	var material domain.Material
	var statesRaw []byte
	var status string

	err := row.Scan(
		&material.ID, &material.UserID, &material.Filename, &material.MimeType, &material.Title,
		&material.Subject, &material.StoragePath, &material.Text, &status, &statesRaw,
		&material.Error, &material.CreatedAt, &material.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrMaterialNotFound, "get material", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("scan material: %w", err)
	}

	if len(statesRaw) > 0 {
		if err := json.Unmarshal(statesRaw, &material.Artifacts); err != nil {
			return nil, fmt.Errorf("unmarshal artifact states: %w", err)
		}
	}
	material.Status = domain.MaterialStatus(status)
	return &material, nil
}

func requireRow(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrMaterialNotFound, "update material", fmt.Errorf("id=%s", id))
	}
	return nil
}

func nullableString(v string) any {
	if v == "" {
		return nil
	}
	return v
}
