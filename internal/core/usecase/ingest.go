package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/intellexa/internal/core/domain"
	"github.com/kirillkom/intellexa/internal/core/ports"
)

// IngestMaterialUseCase accepts uploaded documents and hands them to
// the pipeline through the message queue. Unsupported formats are
// rejected before any bytes are stored.
type IngestMaterialUseCase struct {
	repo      ports.MaterialRepository
	storage   ports.ObjectStorage
	queue     ports.MessageQueue
	supported func(filename string) bool
}

func NewIngestMaterialUseCase(
	repo ports.MaterialRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
	supported func(filename string) bool,
) *IngestMaterialUseCase {
	return &IngestMaterialUseCase{
		repo:      repo,
		storage:   storage,
		queue:     queue,
		supported: supported,
	}
}

func (uc *IngestMaterialUseCase) Upload(
	ctx context.Context,
	userID, filename, mimeType string,
	body io.Reader,
) (*domain.Material, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload material", errors.New("empty filename"))
	}
	if !uc.supported(filename) {
		return nil, domain.WrapError(domain.ErrUnsupportedFormat, "upload material", fmt.Errorf("file %s", filename))
	}

	id := uuid.NewString()
	storageKey := fmt.Sprintf("%s_%s", id, sanitizeFilename(filename))
	now := time.Now().UTC()

	if err := uc.storage.Save(ctx, storageKey, body); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	states := make(domain.ArtifactStates, len(domain.GeneratedKinds))
	for _, kind := range domain.GeneratedKinds {
		states[kind] = domain.ArtifactState{Status: domain.ArtifactPending}
	}

	material := &domain.Material{
		ID:          id,
		UserID:      userID,
		Filename:    filename,
		MimeType:    mimeType,
		Title:       deriveTitle(filename),
		StoragePath: storageKey,
		Status:      domain.StatusUploaded,
		Artifacts:   states,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.repo.Create(ctx, material); err != nil {
		return nil, fmt.Errorf("create material metadata: %w", err)
	}

	if err := uc.queue.PublishMaterialIngested(ctx, material.ID); err != nil {
		return nil, fmt.Errorf("publish ingestion event: %w", err)
	}

	return material, nil
}

func (uc *IngestMaterialUseCase) Delete(ctx context.Context, userID, materialID string) error {
	material, err := uc.repo.GetForUser(ctx, materialID, userID)
	if err != nil {
		return fmt.Errorf("fetch material for delete: %w", err)
	}

	// Dependent rows go with the material via FK cascade.
	if err := uc.repo.Delete(ctx, material.ID, userID); err != nil {
		return fmt.Errorf("delete material: %w", err)
	}

	if err := uc.storage.Delete(ctx, material.StoragePath); err != nil {
		return fmt.Errorf("delete source object: %w", err)
	}
	return nil
}

// deriveTitle turns "linear_algebra-notes.pdf" into "Linear Algebra Notes".
func deriveTitle(filename string) string {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)

	words := strings.Fields(base)
	if len(words) == 0 {
		return "Untitled"
	}
	for i, word := range words {
		runes := []rune(word)
		runes[0] = []rune(strings.ToUpper(string(runes[0])))[0]
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "material.bin"
	}
	return base
}
