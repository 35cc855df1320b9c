package domain

import "time"

// QuizQuestion holds the correct option index and must only travel the
// scoring path. Consumers taking the quiz get QuizQuestionView.
type QuizQuestion struct {
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options"`
	CorrectOption int      `json:"correct_option"`
}

type Quiz struct {
	MaterialID  string         `json:"material_id"`
	Questions   []QuizQuestion `json:"questions"`
	Truncated   bool           `json:"truncated"`
	GeneratedAt time.Time      `json:"generated_at"`
}

type QuizQuestionView struct {
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

type QuizView struct {
	MaterialID  string             `json:"material_id"`
	Questions   []QuizQuestionView `json:"questions"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// View strips correct-option indexes for the taking path.
func (q Quiz) View() QuizView {
	questions := make([]QuizQuestionView, len(q.Questions))
	for i, question := range q.Questions {
		questions[i] = QuizQuestionView{
			Prompt:  question.Prompt,
			Options: question.Options,
		}
	}
	return QuizView{
		MaterialID:  q.MaterialID,
		Questions:   questions,
		GeneratedAt: q.GeneratedAt,
	}
}

// QuizAttempt is immutable once appended.
type QuizAttempt struct {
	ID          string    `json:"id"`
	MaterialID  string    `json:"material_id"`
	UserID      string    `json:"user_id"`
	Answers     []int     `json:"answers"`
	Correct     int       `json:"correct"`
	Total       int       `json:"total"`
	Percent     float64   `json:"percent"`
	CompletedAt time.Time `json:"completed_at"`
}
