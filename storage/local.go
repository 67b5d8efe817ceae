package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Local stores objects under a directory served at baseURL.
type Local struct {
	dir     string
	baseURL string
}

func NewLocal(dir, baseURL string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{dir: dir, baseURL: baseURL}, nil
}

// Dir is the directory the HTTP server exposes at the base URL.
func (l *Local) Dir() string { return l.dir }

func (l *Local) path(key string) (string, error) {
	p := filepath.Join(l.dir, filepath.FromSlash(key))
	if !strings.HasPrefix(p, filepath.Clean(l.dir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("object key %q escapes upload dir", key)
	}
	return p, nil
}

func (l *Local) Put(ctx context.Context, key string, body io.Reader, _ int64, _ string) (string, error) {
	p, err := l.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("create object dir: %w", err)
	}
	f, err := os.Create(p)
	if err != nil {
		return "", fmt.Errorf("create object: %w", err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		_ = os.Remove(p)
		return "", fmt.Errorf("write object: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close object: %w", err)
	}
	return joinURL(l.baseURL, key), nil
}

// Delete removes the object. A missing object is not an error.
func (l *Local) Delete(ctx context.Context, key string) error {
	p, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}
