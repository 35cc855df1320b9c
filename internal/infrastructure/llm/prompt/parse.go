package prompt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kirillkom/intellexa/internal/core/domain"
)

// ParseFlashcards validates the structured flashcard response. Anything
// that does not decode into non-empty question/answer pairs is a
// malformed-output failure, distinct from transport errors.
func ParseFlashcards(raw string, want int) ([]domain.Flashcard, error) {
	var decoded []struct {
		Question string `json:"question"`
		Answer   string `json:"answer"`
	}
	if err := json.Unmarshal([]byte(extractJSONArray(raw)), &decoded); err != nil {
		return nil, domain.WrapError(domain.ErrMalformedOutput, "parse flashcards", err)
	}

	cards := make([]domain.Flashcard, 0, len(decoded))
	for _, card := range decoded {
		question := strings.TrimSpace(card.Question)
		answer := strings.TrimSpace(card.Answer)
		if question == "" || answer == "" {
			continue
		}
		cards = append(cards, domain.Flashcard{Question: question, Answer: answer})
	}
	if len(cards) == 0 {
		return nil, domain.WrapError(domain.ErrMalformedOutput, "parse flashcards", errors.New("no valid cards in response"))
	}
	if want > 0 && len(cards) > want {
		cards = cards[:want]
	}
	return cards, nil
}

// ParseQuiz validates option count and correct-index range per question.
func ParseQuiz(raw string, want, optionCount int) ([]domain.QuizQuestion, error) {
	var decoded []struct {
		Question string   `json:"question"`
		Options  []string `json:"options"`
		Correct  int      `json:"correct"`
	}
	if err := json.Unmarshal([]byte(extractJSONArray(raw)), &decoded); err != nil {
		return nil, domain.WrapError(domain.ErrMalformedOutput, "parse quiz", err)
	}

	questions := make([]domain.QuizQuestion, 0, len(decoded))
	for i, q := range decoded {
		if strings.TrimSpace(q.Question) == "" {
			return nil, domain.WrapError(domain.ErrMalformedOutput, "parse quiz", fmt.Errorf("question %d: empty prompt", i))
		}
		if len(q.Options) != optionCount {
			return nil, domain.WrapError(domain.ErrMalformedOutput, "parse quiz", fmt.Errorf("question %d: %d options, expected %d", i, len(q.Options), optionCount))
		}
		if q.Correct < 0 || q.Correct >= len(q.Options) {
			return nil, domain.WrapError(domain.ErrMalformedOutput, "parse quiz", fmt.Errorf("question %d: correct index %d out of range", i, q.Correct))
		}
		questions = append(questions, domain.QuizQuestion{
			Prompt:        strings.TrimSpace(q.Question),
			Options:       q.Options,
			CorrectOption: q.Correct,
		})
	}
	if len(questions) == 0 {
		return nil, domain.WrapError(domain.ErrMalformedOutput, "parse quiz", errors.New("no questions in response"))
	}
	if want > 0 && len(questions) > want {
		questions = questions[:want]
	}
	return questions, nil
}

// ParseSubject keeps the original fallback behavior: over-long or empty
// answers degrade to "General" instead of failing the pipeline.
func ParseSubject(raw string) string {
	subject := strings.TrimSpace(strings.Trim(strings.TrimSpace(raw), `"`))
	if subject == "" || len(subject) >= 50 || strings.ContainsAny(subject, "\n{}[]") {
		return "General"
	}
	return subject
}

// Models often wrap JSON in prose or code fences; take the outermost
// array literal.
func extractJSONArray(raw string) string {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
