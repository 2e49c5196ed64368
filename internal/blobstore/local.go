package blobstore

import (
	"context"
	"crypto/md5"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Objects stores blob bytes by key.
type Objects interface {
	Put(ctx context.Context, key string, r io.Reader) (size int64, checksum string, err error)
	Delete(ctx context.Context, key string) error
}

// LocalObjects keeps blobs on disk under root, fanned out by key prefix.
type LocalObjects struct {
	root string
}

func NewLocalObjects(root string) *LocalObjects {
	return &LocalObjects{root: root}
}

// Path is where the object for key lives on disk.
func (l *LocalObjects) Path(key string) string {
	if len(key) < 4 {
		return filepath.Join(l.root, key)
	}
	return filepath.Join(l.root, key[:2], key[2:4], key)
}

func (l *LocalObjects) Put(ctx context.Context, key string, r io.Reader) (int64, string, error) {
	p := l.Path(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return 0, "", fmt.Errorf("create blob directory: %w", err)
	}
	f, err := os.Create(p)
	if err != nil {
		return 0, "", fmt.Errorf("create blob file: %w", err)
	}

	sum := md5.New()
	n, err := io.Copy(io.MultiWriter(f, sum), r)
	if err != nil {
		f.Close()
		os.Remove(p)
		return 0, "", fmt.Errorf("write blob %s: %w", key, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(p)
		return 0, "", fmt.Errorf("close blob %s: %w", key, err)
	}
	return n, base64.StdEncoding.EncodeToString(sum.Sum(nil)), nil
}

// Delete removes the object. A missing file is not an error.
func (l *LocalObjects) Delete(ctx context.Context, key string) error {
	err := os.Remove(l.Path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete blob %s: %w", key, err)
	}
	return nil
}
