package storage

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/stowage/stowage/interfaces"
)

// StorageBackendFactory creates storage backends from URI strings.
type StorageBackendFactory struct {
	log *slog.Logger
}

// NewStorageBackendFactory creates a new factory instance that can create
// storage backends.
func NewStorageBackendFactory(logger *slog.Logger) *StorageBackendFactory {
	return &StorageBackendFactory{log: logger}
}

// StorageBackendFor creates a storage backend from a location URI.
// The URI format should be [scheme]://[auth@]host[:port][/path][?params]
//
// Supported schemes:
//   - file:// - Local filesystem storage
//   - s3:// - Amazon S3 or compatible object storage
//
// Returns an error if the URI is invalid or the scheme is unsupported.
func (sf *StorageBackendFactory) StorageBackendFor(locationURI interfaces.StorageBackendLocation) (interfaces.StorageBackend, error) {
	u, err := url.Parse(string(locationURI))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrInvalidLocationURI, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "s3":
		return sf.createObjectBackend(u)
	case "file":
		return sf.createLocalBackend(u)
	default:
		return nil, fmt.Errorf("%w: unsupported backend scheme: %s", interfaces.ErrInvalidLocationURI, u.Scheme)
	}
}

// NewStorageFor builds the backend for locationURI and wraps it in a facade.
func (sf *StorageBackendFactory) NewStorageFor(locationURI interfaces.StorageBackendLocation) (*Storage, error) {
	backend, err := sf.StorageBackendFor(locationURI)
	if err != nil {
		return nil, err
	}
	return NewStorage(backend, sf.log), nil
}

// createObjectBackend creates an S3 or S3-compatible object storage backend.
// URI format: s3://[ACCESS_KEY:SECRET_KEY@]bucket-name/?region=us-west-2&endpoint=minio.local:9000&pathstyle=true
// Object keys are used verbatim against the bucket, so a path component in
// the URI is rejected rather than silently treated as a prefix.
func (sf *StorageBackendFactory) createObjectBackend(u *url.URL) (interfaces.StorageBackend, error) {
	sf.log.Debug("Creating object backend", slog.String("uri", u.Redacted()))

	bucketName := u.Host
	if bucketName == "" {
		return nil, fmt.Errorf("%w: missing bucket name", interfaces.ErrInvalidLocationURI)
	}

	if strings.TrimPrefix(u.Path, "/") != "" {
		return nil, fmt.Errorf("%w: object keys are used verbatim, path prefix %q not supported", interfaces.ErrInvalidLocationURI, u.Path)
	}

	query := u.Query()
	region := query.Get("region")
	if region == "" {
		region = "us-east-1" // Default region
	}

	var accessKey, secretKey string
	if u.User != nil {
		accessKey = u.User.Username()
		secretKey, _ = u.User.Password()
		sf.log.Debug("Using embedded credentials for write access")
	} else {
		sf.log.Debug("No credentials provided, S3 bucket assumed to be public, write operations may fail")
	}

	client, err := NewS3Client(S3ClientConfig{
		Region:    region,
		Endpoint:  query.Get("endpoint"),
		AccessKey: accessKey,
		SecretKey: secretKey,
		PathStyle: query.Get("pathstyle") == "true",
	}, sf.log)
	if err != nil {
		return nil, err
	}

	return NewObjectBackend(bucketName, client, u.Redacted(), sf.log)
}

// createLocalBackend creates a file system storage backend.
// URI format: file:///absolute/path/ or file://./relative/path/
// The factory creates the root directory when it is missing.
func (sf *StorageBackendFactory) createLocalBackend(u *url.URL) (interfaces.StorageBackend, error) {
	sf.log.Debug("Creating file backend", slog.String("uri", u.String()))

	path := u.Path
	if u.Host != "" {
		// Windows drive hosts like file://C:/path keep the drive letter.
		if len(u.Host) == 2 && u.Host[1] == ':' {
			path = u.Host + path
		} else {
			path = u.Host + "/" + strings.TrimPrefix(path, "/")
		}
	}

	if path == "" {
		return nil, fmt.Errorf("%w: empty path in file URI: %s", interfaces.ErrInvalidLocationURI, u.String())
	}

	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create root directory: %w", err)
	}

	return NewLocalBackend(path, sf.log)
}
