// Package interfaces defines core interfaces and types for the storage
// system, separating interface definitions from implementations.
//
// The package provides interfaces for the key components of the system:
//
// # Storage Interfaces
//
// StorageBackend: the capability contract every storage adapter satisfies:
// existence checks, read/write with per-call options, delete, size and
// modification time, absolute-path resolution, copy/move, directory listing
// and directory create/delete.
//
// StorageBackendFactory: creates storage backends from URI strings
// (file://, s3://).
//
// ObjectClient: the remote object-store boundary consumed by the object
// backend. Each call returns an ObjectResponse carrying an error indicator,
// an HTTP-style status code, a body and headers; transport concerns such as
// signing and retries live behind this interface.
//
// # Error Taxonomy
//
// Hard errors are reserved for programmer-visible misuse and are raised as
// *StorageError values wrapping one of the package sentinels:
//
//   - ErrFileExists: write against an existing resource without overwrite
//   - ErrFileNotFound: must-exist resolution against a missing resource
//   - ErrInvalidPath: forbidden control or format characters in a path
//   - ErrPathTraversal: a path that would ascend past the backend root
//   - ErrInvalidDirectory: directory deletion of a missing or non-directory
//     target
//   - ErrInvalidLocationURI: malformed or unsupported backend URI
//
// StorageError carries the backend instance that raised it, so callers can
// branch on the failing adapter with errors.As instead of matching message
// strings. Every other failure, such as an OS-level I/O error or a remote
// store fault, degrades to a false, zero or empty result.
package interfaces
