package interfaces

import (
	"errors"
	"fmt"
)

var (
	// ErrFileExists is returned when a write targets an existing resource
	// without the overwrite option set.
	ErrFileExists = errors.New("file already exists")

	// ErrFileNotFound is returned when absolute-path resolution is requested
	// for a resource that does not exist.
	ErrFileNotFound = errors.New("file does not exist")

	// ErrInvalidPath is returned for malformed path input, such as control
	// or format characters.
	ErrInvalidPath = errors.New("invalid path")

	// ErrPathTraversal is returned when a normalized path would ascend past
	// the backend root.
	ErrPathTraversal = errors.New("path traversal attempt")

	// ErrInvalidDirectory is returned when directory deletion targets a
	// missing or non-directory path.
	ErrInvalidDirectory = errors.New("invalid directory")

	// ErrInvalidLocationURI is returned when a storage location URI is malformed or unsupported.
	// URIs must follow the format: [scheme]://[auth@]host[:port][/path][?params]
	ErrInvalidLocationURI = errors.New("invalid storage location URI")
)

// StorageError tags a sentinel error with the backend instance and operation
// that raised it, so callers can tell which adapter failed without matching
// message strings.
type StorageError struct {
	Backend StorageBackend
	Op      string
	Path    string
	Err     error
}

// NewStorageError builds a StorageError raised by backend b.
func NewStorageError(b StorageBackend, op, path string, err error) *StorageError {
	return &StorageError{Backend: b, Op: op, Path: path, Err: err}
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	if e.Backend != nil {
		return fmt.Sprintf("%s: %s %q: %v", e.Backend.Name(), e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Op, e.Path, e.Err)
}

// Unwrap exposes the underlying sentinel for errors.Is and errors.As.
func (e *StorageError) Unwrap() error {
	return e.Err
}
