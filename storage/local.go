package storage

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/maruel/natural"

	"github.com/stowage/stowage/interfaces"
)

// LocalBackend implements a storage backend against a rooted directory tree.
// Every caller path is normalized first and confined under the configured
// root; traversal is rejected before any filesystem call is issued.
type LocalBackend struct {
	root        string
	log         *slog.Logger
	locationURI string
}

// NewLocalBackend creates a local filesystem backend rooted at root.
// Trailing separators are stripped. The constructor performs no filesystem
// side effects; the factory ensures the root directory exists.
func NewLocalBackend(root string, log *slog.Logger) (*LocalBackend, error) {
	root = strings.TrimRight(root, `/\`)
	if root == "" {
		return nil, fmt.Errorf("empty root directory")
	}

	return &LocalBackend{
		root:        root,
		log:         log,
		locationURI: fmt.Sprintf("file://%s", root),
	}, nil
}

// resolve normalizes path and joins it under the backend root.
func (b *LocalBackend) resolve(op, path string) (string, error) {
	norm, err := normalizePath(path)
	if err != nil {
		return "", interfaces.NewStorageError(b, op, path, err)
	}
	if norm == "" {
		return b.root, nil
	}
	return b.root + "/" + norm, nil
}

// mustResolve is resolve plus the must-exist rule: a missing resource raises
// ErrFileNotFound.
func (b *LocalBackend) mustResolve(op, path string) (string, error) {
	loc, err := b.resolve(op, path)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(loc); err != nil {
		return "", interfaces.NewStorageError(b, op, path, interfaces.ErrFileNotFound)
	}
	return loc, nil
}

// Exists reports whether path names an existing file or directory. A
// malformed path still raises; only a genuinely missing resource is false.
func (b *LocalBackend) Exists(ctx context.Context, path string) (bool, error) {
	loc, err := b.resolve("exists", path)
	if err != nil {
		return false, err
	}

	_, statErr := os.Stat(loc)
	return statErr == nil, nil
}

// Read returns the file content. The resource must exist; once resolved, an
// OS-level read failure degrades to empty content.
func (b *LocalBackend) Read(ctx context.Context, path string) ([]byte, error) {
	loc, err := b.mustResolve("read", path)
	if err != nil {
		return nil, err
	}

	data, readErr := os.ReadFile(loc)
	if readErr != nil {
		b.log.Debug("Read failed, returning empty content",
			slog.String("path", loc),
			"err", readErr)
		return []byte{}, nil
	}

	return data, nil
}

// Write stores content at path, creating missing parent directories. Success
// is defined as writing a non-zero byte count, so an empty-content write
// reports failure.
func (b *LocalBackend) Write(ctx context.Context, path string, content []byte, config interfaces.WriteConfig) (bool, error) {
	start := time.Now()

	loc, err := b.resolve("write", path)
	if err != nil {
		return false, err
	}

	if _, statErr := os.Stat(loc); statErr == nil && !config.Overwrite {
		return false, interfaces.NewStorageError(b, "write", path, interfaces.ErrFileExists)
	}

	if err := os.MkdirAll(filepath.Dir(loc), 0755); err != nil {
		b.log.Debug("Failed to create parent directory",
			slog.String("path", loc),
			"err", err)
		return false, nil
	}

	if err := os.WriteFile(loc, content, 0644); err != nil {
		b.log.Debug("Write failed",
			slog.String("path", loc),
			"err", err)
		return false, nil
	}

	b.log.Debug("Stored file",
		slog.String("path", loc),
		slog.Int("size", len(content)),
		slog.Duration("duration", time.Since(start)))

	return len(content) > 0, nil
}

// Delete removes the file at path. The resource must exist; an OS-level
// removal failure reports false.
func (b *LocalBackend) Delete(ctx context.Context, path string) (bool, error) {
	loc, err := b.mustResolve("delete", path)
	if err != nil {
		return false, err
	}

	if err := os.Remove(loc); err != nil {
		b.log.Debug("Delete failed",
			slog.String("path", loc),
			"err", err)
		return false, nil
	}

	return true, nil
}

// Size returns the file size in bytes. The resource must exist.
func (b *LocalBackend) Size(ctx context.Context, path string) (int64, error) {
	loc, err := b.mustResolve("size", path)
	if err != nil {
		return 0, err
	}

	info, statErr := os.Stat(loc)
	if statErr != nil {
		return 0, nil
	}

	return info.Size(), nil
}

// LastModified returns the modification time as a unix timestamp. The
// resource must exist.
func (b *LocalBackend) LastModified(ctx context.Context, path string) (int64, error) {
	loc, err := b.mustResolve("last_modified", path)
	if err != nil {
		return 0, err
	}

	info, statErr := os.Stat(loc)
	if statErr != nil {
		return 0, nil
	}

	return info.ModTime().Unix(), nil
}

// AbsolutePath resolves path to its absolute filesystem location. It raises
// ErrFileNotFound when the resource is absent.
func (b *LocalBackend) AbsolutePath(ctx context.Context, path string) (string, error) {
	return b.mustResolve("absolute_path", path)
}

// Copy duplicates a file under the root, replacing any existing destination
// and creating missing parent directories. A missing source is a false, not
// an error.
func (b *LocalBackend) Copy(ctx context.Context, from, to string) (bool, error) {
	src, err := b.resolve("copy", from)
	if err != nil {
		return false, err
	}
	dst, err := b.resolve("copy", to)
	if err != nil {
		return false, err
	}

	if _, statErr := os.Stat(src); statErr != nil {
		return false, nil
	}

	data, readErr := os.ReadFile(src)
	if readErr != nil {
		b.log.Debug("Copy source read failed",
			slog.String("path", src),
			"err", readErr)
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return false, nil
	}

	if err := os.WriteFile(dst, data, 0644); err != nil {
		b.log.Debug("Copy destination write failed",
			slog.String("path", dst),
			"err", err)
		return false, nil
	}

	return true, nil
}

// Move copies from into to, then deletes the source. Not atomic: a failure
// after the copy leaves the destination in place.
func (b *LocalBackend) Move(ctx context.Context, from, to string) (bool, error) {
	copied, err := b.Copy(ctx, from, to)
	if err != nil || !copied {
		return false, err
	}

	return b.Delete(ctx, from)
}

// ListFiles returns the files under dir as paths relative to the backend
// root, sorted by a case-insensitive natural comparison. The recursive
// variant includes deep descendants.
func (b *LocalBackend) ListFiles(ctx context.Context, dir string, recursive bool) ([]string, error) {
	return b.list("list_files", dir, recursive, false)
}

// ListDirectories returns the directories under dir, sorted like ListFiles.
// Recursive listing is depth-first with a directory preceding its children.
func (b *LocalBackend) ListDirectories(ctx context.Context, dir string, recursive bool) ([]string, error) {
	return b.list("list_directories", dir, recursive, true)
}

// list enumerates dir and filters to files or directories only. Dot entries
// never appear in either variant. A missing or unreadable directory yields
// an empty result rather than an error.
func (b *LocalBackend) list(op, dir string, recursive, wantDirs bool) ([]string, error) {
	norm, err := normalizePath(dir)
	if err != nil {
		return nil, interfaces.NewStorageError(b, op, dir, err)
	}

	loc := b.root
	if norm != "" {
		loc = b.root + "/" + norm
	}

	var entries []string
	if recursive {
		walkErr := filepath.WalkDir(loc, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if p == loc {
				return nil
			}
			if d.IsDir() == wantDirs {
				entries = append(entries, strings.TrimPrefix(filepath.ToSlash(p), b.root+"/"))
			}
			return nil
		})
		if walkErr != nil {
			b.log.Debug("Directory walk failed",
				slog.String("path", loc),
				"err", walkErr)
			return []string{}, nil
		}
	} else {
		dirEntries, readErr := os.ReadDir(loc)
		if readErr != nil {
			b.log.Debug("Directory read failed",
				slog.String("path", loc),
				"err", readErr)
			return []string{}, nil
		}

		prefix := ""
		if norm != "" {
			prefix = norm + "/"
		}
		for _, entry := range dirEntries {
			if entry.IsDir() == wantDirs {
				entries = append(entries, prefix+entry.Name())
			}
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return natural.Less(strings.ToLower(entries[i]), strings.ToLower(entries[j]))
	})

	return entries, nil
}

// CreateDirectory creates path and all missing intermediate segments.
// Returns false on failure without raising.
func (b *LocalBackend) CreateDirectory(ctx context.Context, path string) (bool, error) {
	loc, err := b.resolve("create_directory", path)
	if err != nil {
		return false, err
	}

	if err := os.MkdirAll(loc, 0755); err != nil {
		b.log.Debug("Directory creation failed",
			slog.String("path", loc),
			"err", err)
		return false, nil
	}

	return true, nil
}

// DeleteDirectory removes an empty directory. A missing or non-directory
// target raises ErrInvalidDirectory; a non-empty directory reports false.
func (b *LocalBackend) DeleteDirectory(ctx context.Context, path string) (bool, error) {
	loc, err := b.resolve("delete_directory", path)
	if err != nil {
		return false, err
	}

	info, statErr := os.Stat(loc)
	if statErr != nil || !info.IsDir() {
		return false, interfaces.NewStorageError(b, "delete_directory", path, interfaces.ErrInvalidDirectory)
	}

	if err := os.Remove(loc); err != nil {
		b.log.Debug("Directory removal failed",
			slog.String("path", loc),
			"err", err)
		return false, nil
	}

	return true, nil
}

// Name returns a unique identifier for this storage backend.
func (b *LocalBackend) Name() string {
	return fmt.Sprintf("file-%s", filepath.Base(b.root))
}

// LocationURI returns the URI that identifies this storage backend.
func (b *LocalBackend) LocationURI() string {
	return b.locationURI
}
