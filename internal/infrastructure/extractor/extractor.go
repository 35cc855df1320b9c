// Package extractor turns stored source documents into plain text.
// Extraction failures are structural (image-only scans, unreadable
// formats) and are never retried.
package extractor

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/kirillkom/intellexa/internal/core/domain"
	"github.com/kirillkom/intellexa/internal/core/ports"
)

type Extractor struct {
	storage ports.ObjectStorage
}

func New(storage ports.ObjectStorage) *Extractor {
	return &Extractor{storage: storage}
}

// SupportedFormat reports whether an uploaded filename can be handled
// at all; the ingestion boundary rejects the rest up front.
func SupportedFormat(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf", ".xlsx", ".txt", ".md", ".text":
		return true
	default:
		return false
	}
}

func (e *Extractor) Extract(ctx context.Context, material *domain.Material) (string, error) {
	reader, err := e.storage.Open(ctx, material.StoragePath)
	if err != nil {
		return "", fmt.Errorf("open source document: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read source document: %w", err)
	}

	var text string
	switch strings.ToLower(filepath.Ext(material.Filename)) {
	case ".pdf":
		text, err = pdfText(raw)
	case ".xlsx":
		text, err = spreadsheetText(raw)
	case ".txt", ".md", ".text":
		text, err = plainText(raw, material.Filename)
	default:
		return "", domain.WrapError(domain.ErrUnsupportedFormat, "extract", fmt.Errorf("file %s", material.Filename))
	}
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", domain.WrapError(domain.ErrNoExtractableText, "extract", fmt.Errorf("file %s yielded no text", material.Filename))
	}
	return text, nil
}
