package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/asc2563/regression-thing/internal/infrastructure/logging"
	"github.com/asc2563/regression-thing/internal/infrastructure/monitoring"
	"github.com/asc2563/regression-thing/internal/shared/types"
	"go.uber.org/zap"
)

// ErrIsDirectory is returned when Delete targets a directory
var ErrIsDirectory = fmt.Errorf("%w: path is a directory", types.ErrInvalidRequest)

// errNoAtomicRename signals that the platform rename cannot refuse to overwrite
var errNoAtomicRename = errors.New("atomic no-replace rename unavailable")

// Service performs file operations on behalf of the front end
type Service struct {
	log     *zap.Logger
	metrics *monitoring.Metrics

	// stat is swapped in tests to simulate entries vanishing mid-listing
	stat func(name string) (os.FileInfo, error)
}

// NewService creates a file operation service
func NewService(logger *zap.Logger, metrics *monitoring.Metrics) *Service {
	return &Service{
		log:     logging.Component(logger, "filesystem"),
		metrics: metrics,
		stat:    os.Stat,
	}
}

// Write creates or truncates path with content.
// Missing parent directories are not created.
func (s *Service) Write(ctx context.Context, req types.WriteRequest) (err error) {
	timer := monitoring.NewTimer(s.metrics, "write")
	defer func() { timer.Stop(err) }()

	if req.Path == "" {
		return fmt.Errorf("write failed: %w: path required", types.ErrInvalidRequest)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.WriteFile(req.Path, []byte(req.Content), 0o644); err != nil {
		s.log.Error("Error writing file", zap.String("path", req.Path), zap.Error(err))
		return fmt.Errorf("write failed: %w", err)
	}

	s.log.Debug("file written", zap.String("path", req.Path), zap.Int("size", len(req.Content)))
	return nil
}

// Read returns the content of path as text
func (s *Service) Read(ctx context.Context, path string) (content string, err error) {
	timer := monitoring.NewTimer(s.metrics, "read")
	defer func() { timer.Stop(err) }()

	if path == "" {
		return "", fmt.Errorf("read failed: %w: path required", types.ErrInvalidRequest)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := s.probe(path); err != nil {
		return "", fmt.Errorf("read failed: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		s.log.Error("Error reading file", zap.String("path", path), zap.Error(err))
		return "", fmt.Errorf("read failed: %w", err)
	}

	return string(data), nil
}

// Delete removes the file at path
func (s *Service) Delete(ctx context.Context, path string) (err error) {
	timer := monitoring.NewTimer(s.metrics, "delete")
	defer func() { timer.Stop(err) }()

	if path == "" {
		return fmt.Errorf("delete failed: %w: path required", types.ErrInvalidRequest)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := os.Lstat(path)
	if err != nil {
		return fmt.Errorf("delete failed: %w", notFound(path, err))
	}
	if info.IsDir() {
		return fmt.Errorf("delete failed: %s: %w", path, ErrIsDirectory)
	}

	if err := os.Remove(path); err != nil {
		s.log.Error("Error deleting file", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("delete failed: %w", err)
	}

	s.log.Debug("file deleted", zap.String("path", path))
	return nil
}

// Rename moves OldPath to NewPath, refusing to overwrite an existing NewPath.
// A missing source is reported before the destination is looked at.
func (s *Service) Rename(ctx context.Context, req types.RenameRequest) (err error) {
	timer := monitoring.NewTimer(s.metrics, "rename")
	defer func() { timer.Stop(err) }()

	if req.OldPath == "" || req.NewPath == "" {
		return fmt.Errorf("rename failed: %w: oldPath and newPath required", types.ErrInvalidRequest)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := os.Lstat(req.OldPath); err != nil {
		return fmt.Errorf("rename failed: %w", notFound(req.OldPath, err))
	}

	err = renameNoReplace(req.OldPath, req.NewPath)
	if errors.Is(err, errNoAtomicRename) {
		err = renameChecked(req.OldPath, req.NewPath)
	}
	if err != nil {
		s.log.Error("Error renaming file",
			zap.String("old_path", req.OldPath),
			zap.String("new_path", req.NewPath),
			zap.Error(err),
		)
		return fmt.Errorf("rename failed: %w", err)
	}

	s.log.Debug("file renamed", zap.String("old_path", req.OldPath), zap.String("new_path", req.NewPath))
	return nil
}

// renameChecked is the check-then-act fallback; it is racy by nature
func renameChecked(oldPath, newPath string) error {
	_, err := os.Lstat(newPath)
	switch {
	case err == nil:
		return fmt.Errorf("%s: %w", newPath, types.ErrAlreadyExists)
	case !errors.Is(err, fs.ErrNotExist):
		return err
	}
	return os.Rename(oldPath, newPath)
}

// List describes every child of dir, sorted by name.
// Entries whose stat fails are omitted.
func (s *Service) List(ctx context.Context, dir string) (entries []types.FileEntry, err error) {
	timer := monitoring.NewTimer(s.metrics, "list")
	defer func() { timer.Stop(err) }()

	if dir == "" {
		return nil, fmt.Errorf("list failed: %w: directory path required", types.ErrInvalidRequest)
	}

	if err := s.probe(dir); err != nil {
		return nil, fmt.Errorf("list failed: %w", err)
	}

	dirents, err := os.ReadDir(dir)
	if err != nil {
		s.log.Error("Error reading directory", zap.String("path", dir), zap.Error(err))
		return nil, fmt.Errorf("list failed: %w", err)
	}

	entries = make([]types.FileEntry, 0, len(dirents))
	for _, d := range dirents {
		name := d.Name()
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		full := filepath.Join(dir, name)
		info, err := s.stat(full)
		if err != nil {
			s.log.Debug("Skipping entry", zap.String("path", full), zap.Error(err))
			s.metrics.IncListSkipped()
			continue
		}

		entries = append(entries, newEntry(name, full, info))
	}

	return entries, nil
}

// probe mirrors an access() check: it maps a missing path to ErrNotFound
func (s *Service) probe(path string) error {
	if _, err := os.Stat(path); err != nil {
		return notFound(path, err)
	}
	return nil
}

func notFound(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", path, types.ErrNotFound)
	}
	return err
}

func newEntry(name, full string, info os.FileInfo) types.FileEntry {
	isDir := info.IsDir()
	return types.FileEntry{
		Name:        name,
		Path:        full,
		IsDirectory: isDir,
		Size:        info.Size(),
		CreatedAt:   birthTime(full, info),
		ModifiedAt:  info.ModTime(),
		Extension:   filepath.Ext(name),
		Type:        types.EntryTypeOf(isDir),
	}
}
