package usecase

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/kirillkom/intellexa/internal/core/domain"
)

func newChatFixture(material *domain.Material, generator *generatorFake, excerptLimit, window int) (*ChatUseCase, *chatStoreFake) {
	chats := &chatStoreFake{}
	uc := NewChatUseCase(newMaterialRepoFake(material), chats, generator, excerptLimit, window, time.Minute)
	return uc, chats
}

func TestAskRecordsBothTurnsUnderOneNumber(t *testing.T) {
	material := &domain.Material{ID: "mat-1", UserID: "user-1", Status: domain.StatusReady, Text: "document text"}
	generator := &generatorFake{chatReply: "because entropy"}
	uc, chats := newChatFixture(material, generator, 4000, 10)

	reply, err := uc.Ask(context.Background(), "user-1", "mat-1", "why though?")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if reply.Role != domain.RoleAssistant || reply.Content != "because entropy" {
		t.Fatalf("unexpected reply %+v", reply)
	}
	if len(chats.turns) != 2 {
		t.Fatalf("expected question + reply appended, got %d", len(chats.turns))
	}
	question, answer := chats.turns[0], chats.turns[1]
	if question.Role != domain.RoleUser || question.Content != "why though?" {
		t.Fatalf("unexpected question turn %+v", question)
	}
	if question.Turn != answer.Turn {
		t.Fatalf("exchange split across turns: %d vs %d", question.Turn, answer.Turn)
	}
}

func TestAskTruncatesExcerptAndWindowsHistory(t *testing.T) {
	longText := strings.Repeat("x", 5000)
	material := &domain.Material{ID: "mat-1", UserID: "user-1", Status: domain.StatusReady, Text: longText}
	generator := &generatorFake{chatReply: "ok"}
	uc, chats := newChatFixture(material, generator, 100, 4)

	for i := 0; i < 6; i++ {
		if _, err := uc.Ask(context.Background(), "user-1", "mat-1", fmt.Sprintf("question %d", i)); err != nil {
			t.Fatalf("Ask() error = %v", err)
		}
	}

	last := generator.chatPrompts[len(generator.chatPrompts)-1]
	if len(last.Excerpt) != 100 || !last.ExcerptTruncated {
		t.Fatalf("expected 100-char truncated excerpt, got len=%d truncated=%v", len(last.Excerpt), last.ExcerptTruncated)
	}
	if len(last.History) != 4 {
		t.Fatalf("expected history window of 4 turns, got %d", len(last.History))
	}
	// Windowed history keeps original order: oldest retained turn first.
	for i := 1; i < len(last.History); i++ {
		if last.History[i].Turn < last.History[i-1].Turn {
			t.Fatalf("history out of order: %+v", last.History)
		}
	}
	for _, limit := range chats.recentLimits {
		if limit != 4 {
			t.Fatalf("expected ListRecent limit 4, got %d", limit)
		}
	}
}

func TestAskRejectsEmptyQuestion(t *testing.T) {
	material := &domain.Material{ID: "mat-1", UserID: "user-1", Status: domain.StatusReady, Text: "text"}
	uc, chats := newChatFixture(material, &generatorFake{}, 4000, 10)

	_, err := uc.Ask(context.Background(), "user-1", "mat-1", "   ")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if len(chats.turns) != 0 {
		t.Fatalf("expected nothing recorded, got %d turns", len(chats.turns))
	}
}

func TestAskRequiresExtractedText(t *testing.T) {
	material := &domain.Material{ID: "mat-1", UserID: "user-1", Status: domain.StatusExtracting}
	uc, _ := newChatFixture(material, &generatorFake{}, 4000, 10)

	_, err := uc.Ask(context.Background(), "user-1", "mat-1", "anything?")
	if !domain.IsKind(err, domain.ErrNotReady) {
		t.Fatalf("expected not-ready error, got %v", err)
	}
}

func TestAskDoesNotRecordOnGenerationFailure(t *testing.T) {
	material := &domain.Material{ID: "mat-1", UserID: "user-1", Status: domain.StatusReady, Text: "text"}
	generator := &generatorFake{chatErr: domain.WrapError(domain.ErrTemporary, "chat", fmt.Errorf("upstream busy"))}
	uc, chats := newChatFixture(material, generator, 4000, 10)

	_, err := uc.Ask(context.Background(), "user-1", "mat-1", "hello?")
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}
	if len(chats.turns) != 0 {
		t.Fatalf("failed exchange must not be recorded, got %d turns", len(chats.turns))
	}
}

func TestHistoryReturnsAllStoredTurns(t *testing.T) {
	material := &domain.Material{ID: "mat-1", UserID: "user-1", Status: domain.StatusReady, Text: "text"}
	generator := &generatorFake{chatReply: "ok"}
	uc, _ := newChatFixture(material, generator, 4000, 2)

	for i := 0; i < 3; i++ {
		if _, err := uc.Ask(context.Background(), "user-1", "mat-1", fmt.Sprintf("q%d", i)); err != nil {
			t.Fatalf("Ask() error = %v", err)
		}
	}

	turns, err := uc.History(context.Background(), "user-1", "mat-1")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	// Prompt window is 2, but stored history keeps everything.
	if len(turns) != 6 {
		t.Fatalf("expected 6 stored turns, got %d", len(turns))
	}
}
