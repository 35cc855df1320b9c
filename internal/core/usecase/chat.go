package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/intellexa/internal/core/domain"
	"github.com/kirillkom/intellexa/internal/core/ports"
)

// ChatUseCase answers questions in the context of one material. The
// prompt carries a head-clipped document excerpt plus the most recent
// turns; both turns of an exchange are appended atomically under one
// turn number, so history reads back in ask order.
type ChatUseCase struct {
	repo      ports.MaterialRepository
	chats     ports.ChatStore
	generator ports.ContentGenerator

	excerptLimit  int
	historyWindow int
	timeout       time.Duration
}

func NewChatUseCase(
	repo ports.MaterialRepository,
	chats ports.ChatStore,
	generator ports.ContentGenerator,
	excerptLimit, historyWindow int,
	timeout time.Duration,
) *ChatUseCase {
	return &ChatUseCase{
		repo:          repo,
		chats:         chats,
		generator:     generator,
		excerptLimit:  excerptLimit,
		historyWindow: historyWindow,
		timeout:       timeout,
	}
}

func (uc *ChatUseCase) Ask(ctx context.Context, userID, materialID, question string) (*domain.ChatTurn, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "chat ask", errors.New("empty question"))
	}

	material, err := uc.repo.GetForUser(ctx, materialID, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch material for chat: %w", err)
	}
	if material.Text == "" {
		return nil, domain.WrapError(domain.ErrNotReady, "chat ask",
			fmt.Errorf("material %s has no extracted text (status %s)", material.ID, material.Status))
	}

	history, err := uc.chats.ListRecent(ctx, materialID, userID, uc.historyWindow)
	if err != nil {
		return nil, fmt.Errorf("load chat history: %w", err)
	}

	excerpt, clipped := domain.TruncateHead(material.Text, uc.excerptLimit)
	prompt := domain.ChatPrompt{
		Excerpt:          excerpt,
		ExcerptTruncated: clipped,
		History:          history,
		Question:         question,
	}

	// The external call survives a client disconnect; once a reply
	// exists the exchange is always recorded.
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.timeout)
	defer cancel()

	answer, err := uc.generator.GenerateChatReply(callCtx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate chat reply: %w", err)
	}

	turn, err := uc.chats.NextTurn(callCtx, materialID, userID)
	if err != nil {
		return nil, fmt.Errorf("advance chat turn: %w", err)
	}

	now := time.Now().UTC()
	questionTurn := domain.ChatTurn{
		ID:         uuid.NewString(),
		MaterialID: materialID,
		UserID:     userID,
		Role:       domain.RoleUser,
		Content:    question,
		Turn:       turn,
		CreatedAt:  now,
	}
	replyTurn := domain.ChatTurn{
		ID:         uuid.NewString(),
		MaterialID: materialID,
		UserID:     userID,
		Role:       domain.RoleAssistant,
		Content:    answer,
		Turn:       turn,
		CreatedAt:  now,
	}

	if err := uc.chats.AppendExchange(callCtx, questionTurn, replyTurn); err != nil {
		return nil, fmt.Errorf("append chat exchange: %w", err)
	}
	return &replyTurn, nil
}

func (uc *ChatUseCase) History(ctx context.Context, userID, materialID string) ([]domain.ChatTurn, error) {
	if _, err := uc.repo.GetForUser(ctx, materialID, userID); err != nil {
		return nil, fmt.Errorf("fetch material for chat history: %w", err)
	}
	turns, err := uc.chats.ListAll(ctx, materialID, userID)
	if err != nil {
		return nil, fmt.Errorf("load chat history: %w", err)
	}
	return turns, nil
}
