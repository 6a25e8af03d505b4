package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/stowage/stowage/interfaces"
)

// ObjectBackend implements a storage backend against a remote key/value
// object store. Keys are used verbatim: no normalization and no prefixing.
//
// A per-instance metadata cache remembers successful existence probes for
// the lifetime of the backend. The cache is unbounded and unsynchronized; an
// instance must not be shared across concurrent callers without external
// serialization.
type ObjectBackend struct {
	client      interfaces.ObjectClient
	bucket      string
	metaCache   map[string]interfaces.ObjectResponse
	log         *slog.Logger
	locationURI string
}

// NewObjectBackend creates an object-store backend over client for bucket.
// The locationURI identifies the backend in logs and errors; the factory
// derives it from the backend URI it was given.
func NewObjectBackend(bucket string, client interfaces.ObjectClient, locationURI string, log *slog.Logger) (*ObjectBackend, error) {
	if bucket == "" {
		return nil, fmt.Errorf("empty bucket name")
	}

	return &ObjectBackend{
		client:      client,
		bucket:      bucket,
		metaCache:   make(map[string]interfaces.ObjectResponse),
		log:         log,
		locationURI: locationURI,
	}, nil
}

// cacheKey digests a path for use as a metadata cache key.
func cacheKey(path string) string {
	sum := sha256.Sum256([]byte(path))
	return hex.EncodeToString(sum[:])
}

// getMetadata returns the metadata probe result for path, consulting the
// cache first. Only a successful found probe is cached; not-found and error
// results re-probe on every call.
func (b *ObjectBackend) getMetadata(ctx context.Context, path string) interfaces.ObjectResponse {
	key := cacheKey(path)
	if cached, ok := b.metaCache[key]; ok {
		return cached
	}

	start := time.Now()
	resp := b.client.GetObjectInfo(ctx, b.bucket, path)
	if resp.Found() {
		b.metaCache[key] = resp
	}

	b.log.Debug("Object metadata probe",
		slog.String("bucket", b.bucket),
		slog.String("key", path),
		slog.Int("status", resp.Status),
		slog.Duration("duration", time.Since(start)))

	return resp
}

// invalidate drops the cached probe for path after a successful mutation.
func (b *ObjectBackend) invalidate(path string) {
	delete(b.metaCache, cacheKey(path))
}

// Exists reports whether the object is present, using the metadata cache.
func (b *ObjectBackend) Exists(ctx context.Context, path string) (bool, error) {
	return b.getMetadata(ctx, path).Found(), nil
}

// Read fetches the object body. A fetch error or non-found status degrades
// to empty content.
func (b *ObjectBackend) Read(ctx context.Context, path string) ([]byte, error) {
	start := time.Now()

	resp := b.client.GetObject(ctx, b.bucket, path)
	if !resp.Found() {
		b.log.Debug("Object fetch failed, returning empty content",
			slog.String("bucket", b.bucket),
			slog.String("key", path),
			slog.Int("status", resp.Status),
			"err", resp.Err)
		return []byte{}, nil
	}

	b.log.Debug("Fetched object",
		slog.String("bucket", b.bucket),
		slog.String("key", path),
		slog.Int("size", len(resp.Body)),
		slog.Duration("duration", time.Since(start)))

	return resp.Body, nil
}

// Write stores content at path. Metadata entries from config are forwarded
// verbatim as put headers. A successful write drops the now-stale cache
// entry for the path.
func (b *ObjectBackend) Write(ctx context.Context, path string, content []byte, config interfaces.WriteConfig) (bool, error) {
	start := time.Now()

	if !config.Overwrite && b.getMetadata(ctx, path).Found() {
		return false, interfaces.NewStorageError(b, "write", path, interfaces.ErrFileExists)
	}

	resp := b.client.PutObject(ctx, b.bucket, path, content, config.Metadata)
	if !resp.Success() {
		b.log.Debug("Object put failed",
			slog.String("bucket", b.bucket),
			slog.String("key", path),
			slog.Int("status", resp.Status),
			"err", resp.Err)
		return false, nil
	}

	b.invalidate(path)

	b.log.Debug("Stored object",
		slog.String("bucket", b.bucket),
		slog.String("key", path),
		slog.Int("size", len(content)),
		slog.Duration("duration", time.Since(start)))

	return true, nil
}

// Delete removes the object and drops the cache entry on success. The store
// reports success for absent keys as well, mirroring remote delete
// semantics.
func (b *ObjectBackend) Delete(ctx context.Context, path string) (bool, error) {
	resp := b.client.DeleteObject(ctx, b.bucket, path)
	if !resp.Success() {
		b.log.Debug("Object delete failed",
			slog.String("bucket", b.bucket),
			slog.String("key", path),
			slog.Int("status", resp.Status),
			"err", resp.Err)
		return false, nil
	}

	b.invalidate(path)
	return true, nil
}

// Size reads Content-Length from the metadata probe; absent metadata or
// header yields zero.
func (b *ObjectBackend) Size(ctx context.Context, path string) (int64, error) {
	resp := b.getMetadata(ctx, path)
	if !resp.Found() {
		return 0, nil
	}

	size, err := strconv.ParseInt(resp.Header("Content-Length"), 10, 64)
	if err != nil {
		return 0, nil
	}

	return size, nil
}

// LastModified parses the Last-Modified probe header as an HTTP date; an
// absent or unparseable value yields zero.
func (b *ObjectBackend) LastModified(ctx context.Context, path string) (int64, error) {
	resp := b.getMetadata(ctx, path)
	if !resp.Found() {
		return 0, nil
	}

	value := resp.Header("Last-Modified")
	if value == "" {
		return 0, nil
	}

	t, err := http.ParseTime(value)
	if err != nil {
		return 0, nil
	}

	return t.Unix(), nil
}

// AbsolutePath returns the key unchanged when the object exists, and raises
// ErrFileNotFound otherwise.
func (b *ObjectBackend) AbsolutePath(ctx context.Context, path string) (string, error) {
	if !b.getMetadata(ctx, path).Found() {
		return "", interfaces.NewStorageError(b, "absolute_path", path, interfaces.ErrFileNotFound)
	}

	return path, nil
}

// Copy reads the source object and writes it to the destination with
// overwrite forced on. A missing source is a false, not an error.
func (b *ObjectBackend) Copy(ctx context.Context, from, to string) (bool, error) {
	if !b.getMetadata(ctx, from).Found() {
		return false, nil
	}

	data, err := b.Read(ctx, from)
	if err != nil {
		return false, err
	}

	return b.Write(ctx, to, data, interfaces.WriteConfig{Overwrite: true})
}

// Move copies from into to, then deletes the source. Not atomic.
func (b *ObjectBackend) Move(ctx context.Context, from, to string) (bool, error) {
	copied, err := b.Copy(ctx, from, to)
	if err != nil || !copied {
		return false, err
	}

	return b.Delete(ctx, from)
}

// ListFiles is a capability gap: the store has no directory concept, so the
// result is always empty, never an error.
func (b *ObjectBackend) ListFiles(ctx context.Context, dir string, recursive bool) ([]string, error) {
	return []string{}, nil
}

// ListDirectories is a capability gap like ListFiles.
func (b *ObjectBackend) ListDirectories(ctx context.Context, dir string, recursive bool) ([]string, error) {
	return []string{}, nil
}

// CreateDirectory is a capability gap: always false, never an error.
func (b *ObjectBackend) CreateDirectory(ctx context.Context, path string) (bool, error) {
	return false, nil
}

// DeleteDirectory is a capability gap: always false, never an error.
func (b *ObjectBackend) DeleteDirectory(ctx context.Context, path string) (bool, error) {
	return false, nil
}

// Name returns a unique identifier for this storage backend.
func (b *ObjectBackend) Name() string {
	return fmt.Sprintf("object-%s", b.bucket)
}

// LocationURI returns the URI that identifies this storage backend.
func (b *ObjectBackend) LocationURI() string {
	return b.locationURI
}
