package interfaces

import (
	"context"
	"net/http"
)

// StorageBackendLocation represents URI for a storage backend.
// Format: [scheme]://[auth@]host[:port][/path][?params]
type StorageBackendLocation string

// String returns the URI string.
func (loc StorageBackendLocation) String() string {
	return string(loc)
}

// WriteConfig carries per-write options.
//
// Overwrite is the only interpreted option: when unset, a write against an
// existing resource fails with ErrFileExists. Metadata entries are forwarded
// verbatim to the object backend as request headers (for example
// Content-Type) and ignored by the local backend.
type WriteConfig struct {
	Overwrite bool
	Metadata  map[string]string
}

// StorageBackend is the capability contract every storage adapter satisfies.
//
// Errors are reserved for the taxonomy in this package: bad paths, existence
// conflicts, must-exist resolution against a missing resource, and invalid
// directory deletion. Routine I/O failure degrades to a false, zero or empty
// result instead.
type StorageBackend interface {
	// Exists reports whether path names an existing resource. A missing
	// resource is a normal false, never an error.
	Exists(ctx context.Context, path string) (bool, error)

	// Read returns the resource content, or empty content when the
	// underlying read fails.
	Read(ctx context.Context, path string) ([]byte, error)

	// Write stores content at path. It fails with ErrFileExists when the
	// target exists and config.Overwrite is unset. The boolean reports
	// whether the underlying write succeeded.
	Write(ctx context.Context, path string, content []byte, config WriteConfig) (bool, error)

	// Delete removes the resource at path.
	Delete(ctx context.Context, path string) (bool, error)

	// Size returns the resource size in bytes.
	Size(ctx context.Context, path string) (int64, error)

	// LastModified returns the modification time as a unix timestamp.
	LastModified(ctx context.Context, path string) (int64, error)

	// AbsolutePath resolves path to a backend-meaningful absolute locator:
	// a filesystem path, or the object key itself. It fails with
	// ErrFileNotFound when the resource is absent.
	AbsolutePath(ctx context.Context, path string) (string, error)

	// Copy duplicates from into to, replacing an existing destination.
	// Returns false, not an error, when from does not exist.
	Copy(ctx context.Context, from, to string) (bool, error)

	// Move copies from into to, then deletes the source. Not atomic: a
	// failure between the two steps leaves the source intact and the
	// destination possibly created.
	Move(ctx context.Context, from, to string) (bool, error)

	// ListFiles returns the files under dir, sorted by a case-insensitive
	// natural comparison. Backends without directory semantics return an
	// empty list.
	ListFiles(ctx context.Context, dir string, recursive bool) ([]string, error)

	// ListDirectories returns the directories under dir, sorted like
	// ListFiles.
	ListDirectories(ctx context.Context, dir string, recursive bool) ([]string, error)

	// CreateDirectory creates path and all missing intermediate segments.
	CreateDirectory(ctx context.Context, path string) (bool, error)

	// DeleteDirectory removes an empty directory. It fails with
	// ErrInvalidDirectory when path is missing or not a directory.
	DeleteDirectory(ctx context.Context, path string) (bool, error)

	// Name returns identifier for logging.
	Name() string

	// LocationURI returns URI identifying this backend.
	LocationURI() string
}

// StorageBackendFactory creates storage backends.
type StorageBackendFactory interface {
	// StorageBackendFor creates backend from URI.
	// Supports file:// and s3://.
	StorageBackendFor(locationURI StorageBackendLocation) (StorageBackend, error)
}

// ObjectResponse is the uniform result of a single object-store call: an
// error indicator, an HTTP-style status code, the body for fetches, and the
// response headers for metadata probes.
type ObjectResponse struct {
	Err     error
	Status  int
	Body    []byte
	Headers http.Header
}

// Found reports whether the call succeeded with a found status.
func (r ObjectResponse) Found() bool {
	return r.Err == nil && r.Status == http.StatusOK
}

// Success reports whether the call succeeded with any 2xx status.
func (r ObjectResponse) Success() bool {
	return r.Err == nil && r.Status >= 200 && r.Status < 300
}

// Header returns a response header value, or the empty string when the
// header or the whole header set is absent.
func (r ObjectResponse) Header(name string) string {
	if r.Headers == nil {
		return ""
	}
	return r.Headers.Get(name)
}

// ObjectClient is the remote object-store boundary used by the object
// backend. Implementations own all transport concerns (signing, retries,
// timeouts); the backend only interprets the returned status, headers and
// body.
type ObjectClient interface {
	// GetObject fetches an object body.
	GetObject(ctx context.Context, bucket, key string) ObjectResponse

	// PutObject stores body under key, forwarding headers verbatim.
	PutObject(ctx context.Context, bucket, key string, body []byte, headers map[string]string) ObjectResponse

	// DeleteObject removes an object.
	DeleteObject(ctx context.Context, bucket, key string) ObjectResponse

	// GetObjectInfo probes an object's existence and metadata without
	// fetching its body.
	GetObjectInfo(ctx context.Context, bucket, key string) ObjectResponse
}
