// Package prompt templates generation requests as pure functions over
// their inputs, so prompts are reproducible and testable without the
// remote service.
package prompt

import (
	"fmt"
	"strings"

	"github.com/kirillkom/intellexa/internal/core/domain"
)

// Limits bounds the document text admitted into each prompt and sets
// the requested shape of structured artifacts.
type Limits struct {
	TextBudget        int
	ChatExcerptBudget int
	SubjectHeadBudget int
	FlashcardCount    int
	QuizQuestionCount int
	QuizOptionCount   int
}

func DefaultLimits() Limits {
	return Limits{
		TextBudget:        8000,
		ChatExcerptBudget: 4000,
		SubjectHeadBudget: 2000,
		FlashcardCount:    5,
		QuizQuestionCount: 5,
		QuizOptionCount:   4,
	}
}

func (l Limits) Normalize() Limits {
	out := l
	def := DefaultLimits()
	if out.TextBudget <= 0 {
		out.TextBudget = def.TextBudget
	}
	if out.ChatExcerptBudget <= 0 {
		out.ChatExcerptBudget = def.ChatExcerptBudget
	}
	if out.SubjectHeadBudget <= 0 {
		out.SubjectHeadBudget = def.SubjectHeadBudget
	}
	if out.FlashcardCount <= 0 {
		out.FlashcardCount = def.FlashcardCount
	}
	if out.QuizQuestionCount <= 0 {
		out.QuizQuestionCount = def.QuizQuestionCount
	}
	if out.QuizOptionCount < 2 {
		out.QuizOptionCount = def.QuizOptionCount
	}
	return out
}

var difficultyStyles = map[domain.Difficulty]string{
	domain.DifficultyBeginner:     "in very simple terms suitable for beginners",
	domain.DifficultyIntermediate: "with detailed explanations for intermediate learners",
	domain.DifficultyAdvanced:     "with technical depth for advanced learners",
	domain.DifficultyExamPrep:     "focusing on key concepts for exam preparation",
}

// Summary returns the summary prompt and whether the document was
// clipped to the text budget.
func Summary(text string, difficulty domain.Difficulty, limits Limits) (string, bool) {
	style, ok := difficultyStyles[difficulty]
	if !ok {
		style = difficultyStyles[domain.DifficultyIntermediate]
	}
	snippet, truncated := domain.TruncateHead(text, limits.TextBudget)

	return fmt.Sprintf(`Summarize the following study material %s.
Provide a clear, concise summary that captures the main ideas and key concepts.

Text:
%s`, style, snippet), truncated
}

func Flashcards(text string, limits Limits) (string, bool) {
	snippet, truncated := domain.TruncateHead(text, limits.TextBudget)

	return fmt.Sprintf(`Create %d ultra-concise revision flashcards for quick memorization.

Rules:
- Questions: short and direct, 5-10 words.
- Answers: extremely brief. Definitions 1-5 words, facts 1-3 words, explanations one sentence at most.
- Cover only the most important, testable facts.

Return strict JSON: an array of objects with "question" and "answer" string fields.
No markdown, no extra keys, no commentary.

Text:
%s`, limits.FlashcardCount, snippet), truncated
}

func Quiz(text string, limits Limits) (string, bool) {
	snippet, truncated := domain.TruncateHead(text, limits.TextBudget)

	return fmt.Sprintf(`Based on the following study material, create %d multiple choice questions.
Each question needs exactly %d answer options and the zero-based index of the correct option.

Return strict JSON: an array of objects with "question" (string), "options" (array of %d strings)
and "correct" (integer 0-%d) fields. No markdown, no extra keys, no commentary.

Text:
%s`, limits.QuizQuestionCount, limits.QuizOptionCount, limits.QuizOptionCount, limits.QuizOptionCount-1, snippet), truncated
}

// Chat renders an assembled chat context. The excerpt is clipped by the
// context assembler; this function only lays out the prompt.
func Chat(p domain.ChatPrompt) string {
	var b strings.Builder
	b.WriteString("You are a study assistant. Answer the student's question using the material below.\n")
	b.WriteString("If the material does not contain the answer, say so directly.\n\n")
	b.WriteString("Material:\n")
	b.WriteString(p.Excerpt)
	b.WriteString("\n")
	if len(p.History) > 0 {
		b.WriteString("\nConversation so far:\n")
		for _, turn := range p.History {
			b.WriteString(string(turn.Role))
			b.WriteString(": ")
			b.WriteString(turn.Content)
			b.WriteString("\n")
		}
	}
	b.WriteString("\nQuestion: ")
	b.WriteString(p.Question)
	b.WriteString("\n\nProvide a clear, helpful answer.")
	return b.String()
}

func Subject(text string, limits Limits) (string, bool) {
	snippet, truncated := domain.TruncateHead(text, limits.SubjectHeadBudget)

	return fmt.Sprintf(`Identify the main subject of the following text in 1-3 words.
Examples: "Machine Learning", "Physics", "History".
Return only the subject name, nothing else.

Text:
%s`, snippet), truncated
}
