package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/kirillkom/intellexa/internal/core/domain"
)

type statusCall struct {
	status domain.MaterialStatus
	errMsg string
}

type materialRepoFake struct {
	materials map[string]*domain.Material

	statusCalls []statusCall
	statusErr   error

	savedText    string
	outcome      domain.ArtifactStates
	outcomeState domain.MaterialStatus
	subject      string

	deleted []string

	countByUser   int
	subjectCounts []domain.SubjectCount
}

func newMaterialRepoFake(materials ...*domain.Material) *materialRepoFake {
	f := &materialRepoFake{materials: map[string]*domain.Material{}}
	for _, m := range materials {
		f.materials[m.ID] = m
	}
	return f
}

func (f *materialRepoFake) Create(_ context.Context, material *domain.Material) error {
	f.materials[material.ID] = material
	return nil
}

func (f *materialRepoFake) GetByID(_ context.Context, id string) (*domain.Material, error) {
	material, ok := f.materials[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrMaterialNotFound, "get material", fmt.Errorf("id=%s", id))
	}
	copied := *material
	return &copied, nil
}

func (f *materialRepoFake) GetForUser(ctx context.Context, id, userID string) (*domain.Material, error) {
	material, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if material.UserID != userID {
		return nil, domain.WrapError(domain.ErrMaterialNotFound, "get material", fmt.Errorf("id=%s", id))
	}
	return material, nil
}

func (f *materialRepoFake) ListByUser(_ context.Context, userID string) ([]domain.Material, error) {
	out := make([]domain.Material, 0)
	for _, material := range f.materials {
		if material.UserID == userID {
			out = append(out, *material)
		}
	}
	return out, nil
}

func (f *materialRepoFake) SetStatus(_ context.Context, id string, status domain.MaterialStatus, errMessage string) error {
	f.statusCalls = append(f.statusCalls, statusCall{status: status, errMsg: errMessage})
	if f.statusErr != nil {
		return f.statusErr
	}
	if material, ok := f.materials[id]; ok {
		material.Status = status
		material.Error = errMessage
	}
	return nil
}

func (f *materialRepoFake) SaveExtractedText(_ context.Context, id, text string, status domain.MaterialStatus) error {
	f.savedText = text
	if material, ok := f.materials[id]; ok {
		material.Text = text
		material.Status = status
	}
	return nil
}

func (f *materialRepoFake) SaveGenerationOutcome(_ context.Context, id, subject string, status domain.MaterialStatus, states domain.ArtifactStates) error {
	f.subject = subject
	f.outcome = states
	f.outcomeState = status
	if material, ok := f.materials[id]; ok {
		material.Subject = subject
		material.Status = status
		material.Artifacts = states
	}
	return nil
}

func (f *materialRepoFake) Delete(_ context.Context, id, _ string) error {
	f.deleted = append(f.deleted, id)
	delete(f.materials, id)
	return nil
}

func (f *materialRepoFake) CountByUser(context.Context, string) (int, error) {
	return f.countByUser, nil
}

func (f *materialRepoFake) SubjectCounts(context.Context, string) ([]domain.SubjectCount, error) {
	return f.subjectCounts, nil
}

type extractorFake struct {
	text string
	err  error
}

func (f *extractorFake) Extract(context.Context, *domain.Material) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

type generatorFake struct {
	summaryText  string
	summaryErr   error
	cards        []domain.Flashcard
	flashcardErr error
	questions    []domain.QuizQuestion
	quizErr      error
	chatReply    string
	chatErr      error
	subject      string
	subjectErr   error

	summaryCalls   []domain.Difficulty
	flashcardCalls int
	quizCalls      int
	chatPrompts    []domain.ChatPrompt
}

func (f *generatorFake) GenerateSummary(_ context.Context, _ string, difficulty domain.Difficulty) (domain.GeneratedSummary, error) {
	f.summaryCalls = append(f.summaryCalls, difficulty)
	if f.summaryErr != nil {
		return domain.GeneratedSummary{}, f.summaryErr
	}
	return domain.GeneratedSummary{Text: f.summaryText}, nil
}

func (f *generatorFake) GenerateFlashcards(context.Context, string) (domain.GeneratedFlashcards, error) {
	f.flashcardCalls++
	if f.flashcardErr != nil {
		return domain.GeneratedFlashcards{}, f.flashcardErr
	}
	return domain.GeneratedFlashcards{Cards: f.cards}, nil
}

func (f *generatorFake) GenerateQuiz(context.Context, string) (domain.GeneratedQuiz, error) {
	f.quizCalls++
	if f.quizErr != nil {
		return domain.GeneratedQuiz{}, f.quizErr
	}
	return domain.GeneratedQuiz{Questions: f.questions}, nil
}

func (f *generatorFake) GenerateChatReply(_ context.Context, prompt domain.ChatPrompt) (string, error) {
	f.chatPrompts = append(f.chatPrompts, prompt)
	if f.chatErr != nil {
		return "", f.chatErr
	}
	return f.chatReply, nil
}

func (f *generatorFake) DetectSubject(context.Context, string) (string, error) {
	if f.subjectErr != nil {
		return "", f.subjectErr
	}
	return f.subject, nil
}

type summaryKey struct {
	materialID string
	difficulty domain.Difficulty
}

type summaryStoreFake struct {
	variants map[summaryKey]domain.SummaryVariant
	upserts  int
	err      error
}

func newSummaryStoreFake() *summaryStoreFake {
	return &summaryStoreFake{variants: map[summaryKey]domain.SummaryVariant{}}
}

func (f *summaryStoreFake) Upsert(_ context.Context, variant domain.SummaryVariant) error {
	if f.err != nil {
		return f.err
	}
	f.upserts++
	f.variants[summaryKey{variant.MaterialID, variant.Difficulty}] = variant
	return nil
}

func (f *summaryStoreFake) Get(_ context.Context, materialID string, difficulty domain.Difficulty) (*domain.SummaryVariant, error) {
	variant, ok := f.variants[summaryKey{materialID, difficulty}]
	if !ok {
		return nil, domain.WrapError(domain.ErrArtifactNotFound, "get summary", fmt.Errorf("material=%s", materialID))
	}
	return &variant, nil
}

func (f *summaryStoreFake) ListByMaterial(_ context.Context, materialID string) ([]domain.SummaryVariant, error) {
	out := make([]domain.SummaryVariant, 0)
	for key, variant := range f.variants {
		if key.materialID == materialID {
			out = append(out, variant)
		}
	}
	return out, nil
}

type flashcardStoreFake struct {
	sets  map[string]domain.FlashcardSet
	count int
	err   error
}

func newFlashcardStoreFake() *flashcardStoreFake {
	return &flashcardStoreFake{sets: map[string]domain.FlashcardSet{}}
}

func (f *flashcardStoreFake) Replace(_ context.Context, set domain.FlashcardSet) error {
	if f.err != nil {
		return f.err
	}
	f.sets[set.MaterialID] = set
	return nil
}

func (f *flashcardStoreFake) Get(_ context.Context, materialID string) (*domain.FlashcardSet, error) {
	set, ok := f.sets[materialID]
	if !ok {
		return nil, domain.WrapError(domain.ErrArtifactNotFound, "get flashcards", fmt.Errorf("material=%s", materialID))
	}
	return &set, nil
}

func (f *flashcardStoreFake) CountByUser(context.Context, string) (int, error) {
	return f.count, nil
}

type quizStoreFake struct {
	quizzes map[string]domain.Quiz
	err     error
}

func newQuizStoreFake() *quizStoreFake {
	return &quizStoreFake{quizzes: map[string]domain.Quiz{}}
}

func (f *quizStoreFake) Replace(_ context.Context, quiz domain.Quiz) error {
	if f.err != nil {
		return f.err
	}
	f.quizzes[quiz.MaterialID] = quiz
	return nil
}

func (f *quizStoreFake) Get(_ context.Context, materialID string) (*domain.Quiz, error) {
	quiz, ok := f.quizzes[materialID]
	if !ok {
		return nil, domain.WrapError(domain.ErrArtifactNotFound, "get quiz", fmt.Errorf("material=%s", materialID))
	}
	return &quiz, nil
}

type attemptStoreFake struct {
	attempts []domain.QuizAttempt
	err      error
}

func (f *attemptStoreFake) Append(_ context.Context, attempt *domain.QuizAttempt) error {
	if f.err != nil {
		return f.err
	}
	f.attempts = append(f.attempts, *attempt)
	return nil
}

func (f *attemptStoreFake) ListByMaterialUser(_ context.Context, materialID, userID string) ([]domain.QuizAttempt, error) {
	out := make([]domain.QuizAttempt, 0)
	for _, attempt := range f.attempts {
		if attempt.MaterialID == materialID && attempt.UserID == userID {
			out = append(out, attempt)
		}
	}
	return out, nil
}

func (f *attemptStoreFake) ListByUser(_ context.Context, userID string) ([]domain.QuizAttempt, error) {
	out := make([]domain.QuizAttempt, 0)
	for _, attempt := range f.attempts {
		if attempt.UserID == userID {
			out = append(out, attempt)
		}
	}
	return out, nil
}

type chatStoreFake struct {
	turnCounter  int
	turns        []domain.ChatTurn
	recentLimits []int
}

func (f *chatStoreFake) NextTurn(context.Context, string, string) (int, error) {
	f.turnCounter++
	return f.turnCounter, nil
}

func (f *chatStoreFake) AppendExchange(_ context.Context, question, reply domain.ChatTurn) error {
	f.turns = append(f.turns, question, reply)
	return nil
}

func (f *chatStoreFake) ListRecent(_ context.Context, _, _ string, limit int) ([]domain.ChatTurn, error) {
	f.recentLimits = append(f.recentLimits, limit)
	if len(f.turns) <= limit {
		return append([]domain.ChatTurn{}, f.turns...), nil
	}
	return append([]domain.ChatTurn{}, f.turns[len(f.turns)-limit:]...), nil
}

func (f *chatStoreFake) ListAll(context.Context, string, string) ([]domain.ChatTurn, error) {
	return append([]domain.ChatTurn{}, f.turns...), nil
}

type storageFake struct {
	saved   map[string][]byte
	saveErr error
	deleted []string
}

func newStorageFake() *storageFake {
	return &storageFake{saved: map[string][]byte{}}
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.saved[key] = raw
	return nil
}

func (f *storageFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	raw, ok := f.saved[key]
	if !ok {
		return nil, fmt.Errorf("no object %s", key)
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

func (f *storageFake) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	delete(f.saved, key)
	return nil
}

type queueFake struct {
	published []string
	err       error
}

func (f *queueFake) PublishMaterialIngested(_ context.Context, materialID string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, materialID)
	return nil
}

func (f *queueFake) SubscribeMaterialIngested(context.Context, func(context.Context, string) error) error {
	return nil
}
