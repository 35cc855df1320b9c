package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/kirillkom/intellexa/internal/core/domain"
)

func newChatRepoWithMock(t *testing.T) (*ChatRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &ChatRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestNextTurnUpsertsSessionCounter(t *testing.T) {
	repo, mock, done := newChatRepoWithMock(t)
	defer done()

	mock.ExpectQuery("INSERT INTO chat_sessions").
		WithArgs("mat-1", "user-1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"current_turn"}).AddRow(4))

	turn, err := repo.NextTurn(context.Background(), "mat-1", "user-1")
	if err != nil {
		t.Fatalf("NextTurn() error = %v", err)
	}
	if turn != 4 {
		t.Fatalf("expected turn 4, got %d", turn)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAppendExchangeWritesBothTurnsInOneTx(t *testing.T) {
	repo, mock, done := newChatRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	question := domain.ChatTurn{ID: "t1", MaterialID: "mat-1", UserID: "user-1", Role: domain.RoleUser, Content: "q", Turn: 1, CreatedAt: now}
	reply := domain.ChatTurn{ID: "t2", MaterialID: "mat-1", UserID: "user-1", Role: domain.RoleAssistant, Content: "a", Turn: 1, CreatedAt: now}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO chat_turns").
		WithArgs("t1", "mat-1", "user-1", "user", "q", 1, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO chat_turns").
		WithArgs("t2", "mat-1", "user-1", "assistant", "a", 1, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.AppendExchange(context.Background(), question, reply); err != nil {
		t.Fatalf("AppendExchange() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListRecentReversesNewestFirstRead(t *testing.T) {
	repo, mock, done := newChatRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "material_id", "user_id", "role", "content", "turn", "created_at"}).
		AddRow("t4", "mat-1", "user-1", "assistant", "a2", 2, now).
		AddRow("t3", "mat-1", "user-1", "user", "q2", 2, now).
		AddRow("t2", "mat-1", "user-1", "assistant", "a1", 1, now)

	mock.ExpectQuery("SELECT id, material_id, user_id, role, content, turn, created_at").
		WithArgs("mat-1", "user-1", 3).
		WillReturnRows(rows)

	turns, err := repo.ListRecent(context.Background(), "mat-1", "user-1", 3)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(turns) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(turns))
	}
	if turns[0].ID != "t2" || turns[2].ID != "t4" {
		t.Fatalf("expected oldest-first order, got %s..%s", turns[0].ID, turns[2].ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
