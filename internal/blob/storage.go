// Package blob stores opaque objects (book covers) under slash-separated paths.
package blob

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
)

var (
	ErrNotFound    = errors.New("blob not found")
	ErrInvalidPath = errors.New("invalid blob path")
)

// Object is a stored blob.
type Object struct {
	Path        string
	ContentType string
	Size        int64
	Data        []byte
}

// Storage is the object storage the rest of the app depends on.
type Storage interface {
	Put(ctx context.Context, pathname string, data []byte, contentType string) (Object, error)
	Get(ctx context.Context, pathname string) (*Object, error)
	Delete(ctx context.Context, pathname string) error
}

// FSStorage keeps blobs as files below a base directory.
// Safe for concurrent use.
type FSStorage struct {
	basePath string
	mu       sync.RWMutex
}

var _ Storage = (*FSStorage)(nil)

func NewFSStorage(basePath string) (*FSStorage, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create blob directory: %w", err)
	}
	return &FSStorage{basePath: basePath}, nil
}

// CleanPath validates a blob path and returns its canonical form.
// Absolute paths and parent-directory segments are rejected.
func CleanPath(p string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "" || strings.HasPrefix(p, "/") || strings.Contains(p, "\\") {
		return "", ErrInvalidPath
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return "", ErrInvalidPath
		}
	}
	cleaned := path.Clean(p)
	if cleaned == "." {
		return "", ErrInvalidPath
	}
	return cleaned, nil
}

func (s *FSStorage) Put(ctx context.Context, pathname string, data []byte, contentType string) (Object, error) {
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}
	p, err := CleanPath(pathname)
	if err != nil {
		return Object{}, err
	}
	if len(data) == 0 {
		return Object{}, fmt.Errorf("blob data cannot be empty")
	}

	full := s.fullPath(p)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return Object{}, fmt.Errorf("create blob directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), ".blob-*")
	if err != nil {
		return Object{}, fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return Object{}, fmt.Errorf("write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return Object{}, fmt.Errorf("close blob: %w", err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		_ = os.Remove(tmp.Name())
		return Object{}, fmt.Errorf("rename blob: %w", err)
	}

	if contentType == "" {
		contentType = detectContentType(p, data)
	}
	return Object{Path: p, ContentType: contentType, Size: int64(len(data))}, nil
}

func (s *FSStorage) Get(ctx context.Context, pathname string) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := CleanPath(pathname)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.fullPath(p))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read blob: %w", err)
	}

	return &Object{
		Path:        p,
		ContentType: detectContentType(p, data),
		Size:        int64(len(data)),
		Data:        data,
	}, nil
}

// Delete removes a blob. Deleting a missing blob is not an error.
func (s *FSStorage) Delete(ctx context.Context, pathname string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := CleanPath(pathname)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.fullPath(p)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}

func (s *FSStorage) fullPath(p string) string {
	return filepath.Join(s.basePath, filepath.FromSlash(p))
}

func detectContentType(p string, data []byte) string {
	if ct := mime.TypeByExtension(path.Ext(p)); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}
