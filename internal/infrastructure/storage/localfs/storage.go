// Package localfs stores uploaded source documents on the local
// filesystem, one object per storage key under a single root directory.
package localfs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

type Storage struct {
	root string
}

func New(root string) (*Storage, error) {
	if root == "" {
		root = "./data/materials"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &Storage{root: root}, nil
}

// Save writes to a temp file first and renames it into place, so the
// worker never opens a half-written document.
func (s *Storage) Save(_ context.Context, key string, data io.Reader) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.root, ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp object: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, data); err != nil {
		tmp.Close()
		return fmt.Errorf("write object %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close object %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("publish object %s: %w", key, err)
	}
	return nil
}

func (s *Storage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open object %s: %w", key, err)
	}
	return f, nil
}

func (s *Storage) Delete(_ context.Context, key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove object %s: %w", key, err)
	}
	return nil
}

// resolve rejects keys that would escape the storage root. Keys are
// single path components; separators never survive upload sanitizing.
func (s *Storage) resolve(key string) (string, error) {
	if key == "" || key == "." || key == ".." ||
		strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.root, key), nil
}
