package storage

import (
	"context"
	"log/slog"
	"time"

	"github.com/stowage/stowage/interfaces"
)

// DefaultSeparator joins existing content and new data in Append and Prepend
// when the caller has no separator preference.
const DefaultSeparator = "\n"

// Storage is the single public entry point. It composes exactly one backend
// for its lifetime and exposes the uniform operation set, plus append and
// prepend conveniences built from read and write. It holds no state beyond
// the backend reference.
type Storage struct {
	backend interfaces.StorageBackend
	log     *slog.Logger
}

// NewStorage creates a facade over backend.
func NewStorage(backend interfaces.StorageBackend, logger *slog.Logger) *Storage {
	if logger == nil {
		logger = slog.Default()
	}

	return &Storage{
		backend: backend,
		log:     logger,
	}
}

// Backend returns the composed backend.
func (s *Storage) Backend() interfaces.StorageBackend {
	return s.backend
}

// Exists reports whether path names an existing resource.
func (s *Storage) Exists(ctx context.Context, path string) (bool, error) {
	return s.backend.Exists(ctx, path)
}

// Missing is the negation of Exists.
func (s *Storage) Missing(ctx context.Context, path string) (bool, error) {
	exists, err := s.backend.Exists(ctx, path)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

// Read returns the resource content.
func (s *Storage) Read(ctx context.Context, path string) ([]byte, error) {
	return s.backend.Read(ctx, path)
}

// Write stores content at path under config's overwrite policy.
func (s *Storage) Write(ctx context.Context, path string, content []byte, config interfaces.WriteConfig) (bool, error) {
	return s.backend.Write(ctx, path, content, config)
}

// Append rewrites an existing target as current + separator + data with
// overwrite forced on, or writes data as a new file when the target is
// missing. Full read-then-rewrite: not atomic and not suited to large
// files; neither backend has a native append primitive.
func (s *Storage) Append(ctx context.Context, path string, data []byte, separator string) (bool, error) {
	start := time.Now()

	exists, err := s.backend.Exists(ctx, path)
	if err != nil {
		return false, err
	}

	content := data
	if exists {
		current, err := s.backend.Read(ctx, path)
		if err != nil {
			return false, err
		}
		content = append(append(current, []byte(separator)...), data...)
	}

	ok, err := s.backend.Write(ctx, path, content, interfaces.WriteConfig{Overwrite: true})
	if err == nil {
		s.log.Debug("Appended to file",
			slog.String("backend_name", s.backend.Name()),
			slog.String("path", path),
			slog.Int("size", len(content)),
			slog.Duration("duration", time.Since(start)))
	}
	return ok, err
}

// Prepend is Append's mirror: data + separator + current.
func (s *Storage) Prepend(ctx context.Context, path string, data []byte, separator string) (bool, error) {
	start := time.Now()

	exists, err := s.backend.Exists(ctx, path)
	if err != nil {
		return false, err
	}

	content := data
	if exists {
		current, err := s.backend.Read(ctx, path)
		if err != nil {
			return false, err
		}
		merged := make([]byte, 0, len(data)+len(separator)+len(current))
		merged = append(merged, data...)
		merged = append(merged, []byte(separator)...)
		merged = append(merged, current...)
		content = merged
	}

	ok, err := s.backend.Write(ctx, path, content, interfaces.WriteConfig{Overwrite: true})
	if err == nil {
		s.log.Debug("Prepended to file",
			slog.String("backend_name", s.backend.Name()),
			slog.String("path", path),
			slog.Int("size", len(content)),
			slog.Duration("duration", time.Since(start)))
	}
	return ok, err
}

// Delete removes the resource at path.
func (s *Storage) Delete(ctx context.Context, path string) (bool, error) {
	return s.backend.Delete(ctx, path)
}

// Size returns the resource size in bytes.
func (s *Storage) Size(ctx context.Context, path string) (int64, error) {
	return s.backend.Size(ctx, path)
}

// LastModified returns the modification time as a unix timestamp.
func (s *Storage) LastModified(ctx context.Context, path string) (int64, error) {
	return s.backend.LastModified(ctx, path)
}

// Path resolves a backend-meaningful absolute locator for path.
func (s *Storage) Path(ctx context.Context, path string) (string, error) {
	return s.backend.AbsolutePath(ctx, path)
}

// Copy duplicates from into to.
func (s *Storage) Copy(ctx context.Context, from, to string) (bool, error) {
	return s.backend.Copy(ctx, from, to)
}

// Move relocates from into to.
func (s *Storage) Move(ctx context.Context, from, to string) (bool, error) {
	return s.backend.Move(ctx, from, to)
}

// Files lists files under dir.
func (s *Storage) Files(ctx context.Context, dir string, recursive bool) ([]string, error) {
	return s.backend.ListFiles(ctx, dir, recursive)
}

// Directories lists directories under dir.
func (s *Storage) Directories(ctx context.Context, dir string, recursive bool) ([]string, error) {
	return s.backend.ListDirectories(ctx, dir, recursive)
}

// CreateDirectory creates dir and all missing intermediate segments.
func (s *Storage) CreateDirectory(ctx context.Context, path string) (bool, error) {
	return s.backend.CreateDirectory(ctx, path)
}

// DeleteDirectory removes an empty directory.
func (s *Storage) DeleteDirectory(ctx context.Context, path string) (bool, error) {
	return s.backend.DeleteDirectory(ctx, path)
}
