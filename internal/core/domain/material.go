package domain

import "time"

type MaterialStatus string

const (
	StatusUploaded   MaterialStatus = "uploaded"
	StatusExtracting MaterialStatus = "extracting"
	StatusExtracted  MaterialStatus = "extracted"
	StatusGenerating MaterialStatus = "generating"
	StatusReady      MaterialStatus = "ready"
	StatusPartial    MaterialStatus = "partial"
	StatusFailed     MaterialStatus = "failed"
)

type ArtifactKind string

const (
	KindSummary    ArtifactKind = "summary"
	KindFlashcards ArtifactKind = "flashcards"
	KindQuiz       ArtifactKind = "quiz"
	KindChatReply  ArtifactKind = "chat_reply"
)

// GeneratedKinds are the artifact kinds produced by the initial pipeline run.
// Chat replies are generated on demand and never tracked on the material.
var GeneratedKinds = []ArtifactKind{KindSummary, KindFlashcards, KindQuiz}

type ArtifactStatus string

const (
	ArtifactPending ArtifactStatus = "pending"
	ArtifactReady   ArtifactStatus = "ready"
	ArtifactFailed  ArtifactStatus = "failed"
)

type ArtifactState struct {
	Status ArtifactStatus `json:"status"`
	Error  string         `json:"error,omitempty"`
}

// ArtifactStates tracks per-kind generation outcome on a material.
type ArtifactStates map[ArtifactKind]ArtifactState

// Outcome folds per-kind states into the material status after a
// generation run: all ready, all failed, or a mix.
func (s ArtifactStates) Outcome() MaterialStatus {
	ready, failed := 0, 0
	for _, kind := range GeneratedKinds {
		switch s[kind].Status {
		case ArtifactReady:
			ready++
		case ArtifactFailed:
			failed++
		}
	}
	switch {
	case ready == len(GeneratedKinds):
		return StatusReady
	case failed == len(GeneratedKinds):
		return StatusFailed
	default:
		return StatusPartial
	}
}

// FailedKinds returns the kinds a retry run must regenerate, in the
// fixed GeneratedKinds order.
func (s ArtifactStates) FailedKinds() []ArtifactKind {
	out := make([]ArtifactKind, 0, len(GeneratedKinds))
	for _, kind := range GeneratedKinds {
		if s[kind].Status == ArtifactFailed {
			out = append(out, kind)
		}
	}
	return out
}

type Material struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	Filename string `json:"filename"`
	MimeType string `json:"mime_type"`
	Title    string `json:"title"`
	Subject  string `json:"subject,omitempty"`
	// Text is the raw extracted document text. Kept out of API payloads;
	// consumers see derived artifacts only.
	Text        string         `json:"-"`
	StoragePath string         `json:"-"`
	Status      MaterialStatus `json:"status"`
	Artifacts   ArtifactStates `json:"artifacts,omitempty"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
