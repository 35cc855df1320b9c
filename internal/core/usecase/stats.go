package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/kirillkom/intellexa/internal/core/domain"
	"github.com/kirillkom/intellexa/internal/core/ports"
)

const trendWindow = 10

// StatsUseCase folds stored materials and attempts into a per-user
// overview on every read.
type StatsUseCase struct {
	repo       ports.MaterialRepository
	flashcards ports.FlashcardStore
	attempts   ports.AttemptStore
	now        func() time.Time
}

func NewStatsUseCase(
	repo ports.MaterialRepository,
	flashcards ports.FlashcardStore,
	attempts ports.AttemptStore,
) *StatsUseCase {
	return &StatsUseCase{
		repo:       repo,
		flashcards: flashcards,
		attempts:   attempts,
		now:        time.Now,
	}
}

func (uc *StatsUseCase) Overview(ctx context.Context, userID string) (*domain.UserStats, error) {
	materials, err := uc.repo.CountByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count materials: %w", err)
	}
	cards, err := uc.flashcards.CountByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count flashcards: %w", err)
	}
	subjects, err := uc.repo.SubjectCounts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("subject counts: %w", err)
	}
	attempts, err := uc.attempts.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}

	stats := &domain.UserStats{
		Materials:    materials,
		Flashcards:   cards,
		QuizAttempts: len(attempts),
		Trend:        []domain.ScorePoint{},
		Subjects:     subjects,
	}

	stats.StreakDays = streakDays(attempts, uc.now().UTC())

	if len(attempts) > 0 {
		sum, best := 0.0, 0.0
		for _, attempt := range attempts {
			sum += attempt.Percent
			best = math.Max(best, attempt.Percent)
		}
		stats.AverageScore = sum / float64(len(attempts))
		stats.BestScore = best

		// Attempts arrive oldest-first; the trend keeps the newest
		// window in chronological order.
		start := max(0, len(attempts)-trendWindow)
		for _, attempt := range attempts[start:] {
			stats.Trend = append(stats.Trend, domain.ScorePoint{
				Percent:     attempt.Percent,
				CompletedAt: attempt.CompletedAt,
			})
		}
	}
	return stats, nil
}

// streakDays counts back from today over distinct attempt days and
// stops at the first gap. No attempt today means no current streak.
func streakDays(attempts []domain.QuizAttempt, today time.Time) int {
	days := make(map[string]struct{}, len(attempts))
	for _, attempt := range attempts {
		days[attempt.CompletedAt.UTC().Format(time.DateOnly)] = struct{}{}
	}

	streak := 0
	for {
		day := today.AddDate(0, 0, -streak).Format(time.DateOnly)
		if _, ok := days[day]; !ok {
			return streak
		}
		streak++
	}
}
