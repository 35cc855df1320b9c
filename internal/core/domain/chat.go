package domain

import "time"

type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatTurn is one message of the per-(material, user) conversation.
// Turn numbers pair each question with its reply and reflect call order.
type ChatTurn struct {
	ID         string    `json:"id"`
	MaterialID string    `json:"material_id"`
	UserID     string    `json:"user_id"`
	Role       ChatRole  `json:"role"`
	Content    string    `json:"content"`
	Turn       int       `json:"turn"`
	CreatedAt  time.Time `json:"created_at"`
}

// ChatPrompt is the assembled context for one Q&A generation call:
// a bounded document excerpt plus the retained conversation window.
type ChatPrompt struct {
	Excerpt          string
	ExcerptTruncated bool
	History          []ChatTurn
	Question         string
}
