package domain

import "time"

type ScorePoint struct {
	Percent     float64   `json:"percent"`
	CompletedAt time.Time `json:"completed_at"`
}

type SubjectCount struct {
	Subject string `json:"subject"`
	Count   int    `json:"count"`
}

// UserStats is a read-side fold over materials and quiz attempts.
// Nothing here is cached; every read recomputes it.
type UserStats struct {
	Materials    int            `json:"materials"`
	Flashcards   int            `json:"flashcards"`
	QuizAttempts int            `json:"quiz_attempts"`
	AverageScore float64        `json:"average_score"`
	BestScore    float64        `json:"best_score"`
	// StreakDays counts consecutive days with at least one quiz attempt,
	// ending today.
	StreakDays int            `json:"streak_days"`
	Trend      []ScorePoint   `json:"trend"`
	Subjects   []SubjectCount `json:"subjects"`
}
