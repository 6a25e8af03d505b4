// Package storage provides file storage with pluggable backends behind a
// single facade.
//
// The package offers a unified interface for reading, writing and listing
// files addressed by slash-separated relative paths across two backends:
//
//   - File system storage rooted at a directory, for local deployments
//   - S3-compatible object storage for cloud deployments
//
// # Storage URI Format
//
// Storage backends are specified using URI format:
//
//	[scheme]://[auth@]host[:port][/path][?params]
//
// Supported URI schemes:
//
//   - file:///var/lib/stowage/
//   - s3://bucket-name/?region=us-west-2
//   - s3://ACCESS:SECRET@bucket-name/?endpoint=minio.local:9000&pathstyle=true
//
// The file scheme ensures the root directory exists. The s3 scheme accepts
// optional embedded credentials plus region, endpoint and pathstyle query
// parameters for S3-compatible stores such as MinIO. Object keys are used
// verbatim, so an s3 URI must not carry a path prefix.
//
// # Path Handling
//
// The file backend normalizes every path before use: backslashes become
// forward slashes, "." segments and empty segments are dropped, and ".."
// segments pop the previous segment. Paths that climb above the storage root
// fail with ErrPathTraversal; paths containing control or other
// non-printable characters fail with ErrInvalidPath. Normalization never
// consults the file system. The object backend has no root to escape and
// passes keys to the store verbatim.
//
// # Error Convention
//
// Backends separate contract violations from environmental failures.
// Violations of the storage contract (overwriting without permission,
// reading a missing file, escaping the root) surface as *StorageError
// wrapping one of the interfaces sentinels. Routine I/O failures, such as a
// dropped connection or a permission problem, degrade to a zero value
// instead: Exists returns false, Read returns empty content, listings return
// empty slices. Callers that need to distinguish the two inspect the error
// with errors.Is.
//
// # Facade
//
// Storage wraps a backend with convenience operations built on the
// primitives:
//
//	store, err := storage.NewStorageBackendFactory(logger).NewStorageFor("file:///var/lib/stowage/")
//	if err != nil {
//	    log.Fatalf("Failed to create storage: %v", err)
//	}
//
//	ok, err := store.Write(ctx, "reports/daily.txt", []byte("ready"), interfaces.WriteConfig{})
//	ok, err = store.Append(ctx, "reports/daily.txt", []byte("done"), storage.DefaultSeparator)
//
// Append and Prepend read the current content and rewrite the file with the
// separator between old and new data, creating the file when it is missing.
//
// # Object Metadata Cache
//
// The object backend keeps a per-instance cache of successful metadata
// probes so that repeated Exists, Size and LastModified calls for the same
// path cost one HTTP round trip. Probes that fail or miss are never cached,
// and a successful Write or Delete evicts the cached entry for that path.
package storage
