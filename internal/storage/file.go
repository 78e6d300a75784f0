package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/nikolayk812/oja-market/internal/port"
)

var validKey = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

type fileStorage struct {
	dir string
}

// NewFile keeps one file per key under dir, which is created if missing.
func NewFile(dir string) (port.KeyValueStorage, error) {
	if dir == "" {
		return nil, fmt.Errorf("dir is empty")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("os.MkdirAll: %w", err)
	}

	return &fileStorage{dir: dir}, nil
}

func (s *fileStorage) GetItem(_ context.Context, key string) (string, error) {
	path, err := s.path(key)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", port.ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("os.ReadFile: %w", err)
	}

	return string(data), nil
}

func (s *fileStorage) SetItem(_ context.Context, key, value string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("os.CreateTemp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		return fmt.Errorf("tmp.WriteString: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("tmp.Close: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("os.Rename: %w", err)
	}

	return nil
}

func (s *fileStorage) path(key string) (string, error) {
	if !validKey.MatchString(key) {
		return "", fmt.Errorf("key[%s] is not valid", key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}
