package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage stores files under baseDir. Every path is resolved inside
// baseDir; anything escaping it is rejected with ErrInvalidPath.
type LocalStorage struct {
	baseDir string
}

// NewLocalStorage resolves baseDir to an absolute path and creates it.
func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if baseDir == "" {
		return nil, ErrInvalidConfig
	}

	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToGetAbsolutePath, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToCreateDirectory, err)
	}
	return &LocalStorage{baseDir: abs}, nil
}

func (s *LocalStorage) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	abs, err := s.resolvePath(path)
	if err != nil {
		return err
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return fmt.Errorf("%w: %v", ErrFailedToStatPath, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s", ErrIsDirectory, path)
	}

	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("%w: %v", ErrFailedToDeleteFile, err)
	}
	return nil
}

func (s *LocalStorage) Exists(ctx context.Context, path string) bool {
	if ctx.Err() != nil {
		return false
	}
	abs, err := s.resolvePath(path)
	if err != nil {
		return false
	}
	_, err = os.Stat(abs)
	return err == nil
}

// resolvePath joins path onto baseDir and rejects results outside it. A
// leading slash is relative to baseDir, as stored attachment paths carry one.
func (s *LocalStorage) resolvePath(path string) (string, error) {
	abs := filepath.Join(s.baseDir, path)
	rel, err := filepath.Rel(s.baseDir, abs)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, path)
	}
	return abs, nil
}
