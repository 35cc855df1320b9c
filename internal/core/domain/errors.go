package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMaterialNotFound = errors.New("material not found")
	ErrArtifactNotFound = errors.New("artifact not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrTemporary        = errors.New("temporary failure")

	// Extraction failures are structural, never retried.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrNoExtractableText = errors.New("no extractable text")

	// A generation response that fails structural validation. Retrying
	// without a template change will not help.
	ErrMalformedOutput = errors.New("malformed generation output")

	// Regeneration and chat require a material in ready or partial state
	// with extracted text on record.
	ErrNotReady = errors.New("material not ready")

	// Quiz submission validation.
	ErrAnswerCountMismatch = errors.New("answer count mismatch")
	ErrAnswerOutOfRange    = errors.New("answer index out of range")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
