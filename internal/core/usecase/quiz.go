package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/intellexa/internal/core/domain"
	"github.com/kirillkom/intellexa/internal/core/ports"
)

// QuizUseCase serves the answer-free taking view and scores submitted
// answers. Validation rejects the whole submission before anything is
// written; attempts are append-only.
type QuizUseCase struct {
	repo     ports.MaterialRepository
	quizzes  ports.QuizStore
	attempts ports.AttemptStore
}

func NewQuizUseCase(
	repo ports.MaterialRepository,
	quizzes ports.QuizStore,
	attempts ports.AttemptStore,
) *QuizUseCase {
	return &QuizUseCase{
		repo:     repo,
		quizzes:  quizzes,
		attempts: attempts,
	}
}

func (uc *QuizUseCase) TakingView(ctx context.Context, userID, materialID string) (*domain.QuizView, error) {
	quiz, err := uc.loadQuiz(ctx, userID, materialID)
	if err != nil {
		return nil, err
	}
	view := quiz.View()
	return &view, nil
}

func (uc *QuizUseCase) Submit(ctx context.Context, userID, materialID string, answers []int) (*domain.QuizAttempt, error) {
	quiz, err := uc.loadQuiz(ctx, userID, materialID)
	if err != nil {
		return nil, err
	}

	if len(answers) != len(quiz.Questions) {
		return nil, domain.WrapError(domain.ErrAnswerCountMismatch, "submit quiz",
			fmt.Errorf("got %d answers, quiz has %d questions", len(answers), len(quiz.Questions)))
	}
	for i, answer := range answers {
		if answer < 0 || answer >= len(quiz.Questions[i].Options) {
			return nil, domain.WrapError(domain.ErrAnswerOutOfRange, "submit quiz",
				fmt.Errorf("answer %d for question %d outside [0,%d)", answer, i, len(quiz.Questions[i].Options)))
		}
	}

	correct := 0
	for i, answer := range answers {
		if answer == quiz.Questions[i].CorrectOption {
			correct++
		}
	}

	attempt := &domain.QuizAttempt{
		ID:          uuid.NewString(),
		MaterialID:  materialID,
		UserID:      userID,
		Answers:     answers,
		Correct:     correct,
		Total:       len(quiz.Questions),
		Percent:     float64(correct) / float64(len(quiz.Questions)) * 100,
		CompletedAt: time.Now().UTC(),
	}
	if err := uc.attempts.Append(ctx, attempt); err != nil {
		return nil, fmt.Errorf("append quiz attempt: %w", err)
	}
	return attempt, nil
}

func (uc *QuizUseCase) Attempts(ctx context.Context, userID, materialID string) ([]domain.QuizAttempt, error) {
	if _, err := uc.repo.GetForUser(ctx, materialID, userID); err != nil {
		return nil, fmt.Errorf("fetch material for attempts: %w", err)
	}
	attempts, err := uc.attempts.ListByMaterialUser(ctx, materialID, userID)
	if err != nil {
		return nil, fmt.Errorf("list quiz attempts: %w", err)
	}
	return attempts, nil
}

func (uc *QuizUseCase) loadQuiz(ctx context.Context, userID, materialID string) (*domain.Quiz, error) {
	if _, err := uc.repo.GetForUser(ctx, materialID, userID); err != nil {
		return nil, fmt.Errorf("fetch material for quiz: %w", err)
	}
	quiz, err := uc.quizzes.Get(ctx, materialID)
	if err != nil {
		return nil, fmt.Errorf("fetch quiz: %w", err)
	}
	return quiz, nil
}
