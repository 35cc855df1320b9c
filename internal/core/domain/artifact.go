package domain

import "time"

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
	DifficultyExamPrep     Difficulty = "exam-prep"
)

func ParseDifficulty(raw string) (Difficulty, bool) {
	switch Difficulty(raw) {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced, DifficultyExamPrep:
		return Difficulty(raw), true
	default:
		return "", false
	}
}

// SummaryVariant is the stored summary for one (material, difficulty) key.
// Regeneration overwrites it in place; there is never more than one row
// per key.
type SummaryVariant struct {
	MaterialID  string     `json:"material_id"`
	Difficulty  Difficulty `json:"difficulty"`
	Text        string     `json:"text"`
	Truncated   bool       `json:"truncated"`
	GeneratedAt time.Time  `json:"generated_at"`
}

type Flashcard struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// FlashcardSet is the single flashcard artifact of a material.
type FlashcardSet struct {
	MaterialID  string      `json:"material_id"`
	Cards       []Flashcard `json:"cards"`
	Truncated   bool        `json:"truncated"`
	GeneratedAt time.Time   `json:"generated_at"`
}

// GeneratedSummary is a generation-client result before it is keyed and
// persisted. Truncated reports that the prompt was built from a clipped
// document, so the artifact may cover partial content.
type GeneratedSummary struct {
	Text      string
	Truncated bool
}

type GeneratedFlashcards struct {
	Cards     []Flashcard
	Truncated bool
}

type GeneratedQuiz struct {
	Questions []QuizQuestion
	Truncated bool
}
