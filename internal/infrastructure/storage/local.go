package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"loan-origination/internal/domain/document"
	"loan-origination/internal/pkg/apperrors"
)

// LocalBlobStore keeps uploaded files on the local filesystem under a fixed
// base directory. Returned paths are relative to that base so records stay
// valid if the directory is relocated.
type LocalBlobStore struct {
	baseDir string
	logger  *slog.Logger
}

var _ document.BlobStore = (*LocalBlobStore)(nil)

func NewLocalBlobStore(baseDir string, logger *slog.Logger) (*LocalBlobStore, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("storage base directory cannot be empty")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", baseDir, err)
	}
	return &LocalBlobStore{
		baseDir: baseDir,
		logger:  logger.With("component", "LocalBlobStore", "baseDir", baseDir),
	}, nil
}

func (s *LocalBlobStore) Save(ctx context.Context, subdir, filename string, contents io.Reader) (string, int64, error) {
	relPath, err := s.safeRelPath(filepath.Join(subdir, filename))
	if err != nil {
		return "", 0, err
	}
	absPath := filepath.Join(s.baseDir, relPath)

	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		s.logger.ErrorContext(ctx, "Failed to create upload subdirectory", "path", absPath, "error", err)
		return "", 0, fmt.Errorf("failed to create upload directory: %w", err)
	}

	f, err := os.OpenFile(absPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to create upload file", "path", absPath, "error", err)
		return "", 0, fmt.Errorf("failed to create file: %w", err)
	}

	size, err := io.Copy(f, contents)
	closeErr := f.Close()
	if err != nil {
		os.Remove(absPath)
		s.logger.ErrorContext(ctx, "Failed to write upload file", "path", absPath, "error", err)
		return "", 0, fmt.Errorf("failed to write file: %w", err)
	}
	if closeErr != nil {
		os.Remove(absPath)
		return "", 0, fmt.Errorf("failed to close file: %w", closeErr)
	}

	s.logger.InfoContext(ctx, "Stored uploaded file", "path", relPath, "size", size)
	return relPath, size, nil
}

func (s *LocalBlobStore) Delete(ctx context.Context, path string) error {
	relPath, err := s.safeRelPath(path)
	if err != nil {
		return err
	}
	absPath := filepath.Join(s.baseDir, relPath)

	if err := os.Remove(absPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return apperrors.ErrNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to delete stored file", "path", relPath, "error", err)
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// safeRelPath rejects anything that would escape the base directory.
func (s *LocalBlobStore) safeRelPath(path string) (string, error) {
	cleaned := filepath.Clean(path)
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: invalid storage path %q", apperrors.ErrInvalidArgument, path)
	}
	return cleaned, nil
}
