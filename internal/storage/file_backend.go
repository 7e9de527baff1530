package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// FileBackend stores each key as a JSON file in a directory.
type FileBackend struct {
	fs  afero.Fs
	dir string
}

// NewFileBackend creates a backend rooted at dir on the given filesystem.
func NewFileBackend(fs afero.Fs, dir string) *FileBackend {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &FileBackend{fs: fs, dir: dir}
}

// NewMemoryBackend returns a backend that never touches disk.
func NewMemoryBackend() *FileBackend {
	return NewFileBackend(afero.NewMemMapFs(), "/state")
}

func (b *FileBackend) path(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", ErrKeyRequired
	}
	if strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(b.dir, key+".json"), nil
}

func (b *FileBackend) Get(_ context.Context, key string) ([]byte, error) {
	path, err := b.path(key)
	if err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(b.fs, path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

// Set writes atomically through a temp file and rename.
func (b *FileBackend) Set(_ context.Context, key string, value []byte) error {
	path, err := b.path(key)
	if err != nil {
		return err
	}
	if err := b.fs.MkdirAll(b.dir, 0o755); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}

	tmp := path + ".tmp"
	f, err := b.fs.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}
	if _, err := f.Write(value); err != nil {
		f.Close()
		_ = b.fs.Remove(tmp)
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		_ = b.fs.Remove(tmp)
		return fmt.Errorf("sync %s: %w", key, err)
	}
	if err := f.Close(); err != nil {
		_ = b.fs.Remove(tmp)
		return fmt.Errorf("close %s: %w", key, err)
	}
	return b.fs.Rename(tmp, path)
}
