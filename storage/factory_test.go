package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stowage/stowage/interfaces"
)

func newTestFactory() *StorageBackendFactory {
	return NewStorageBackendFactory(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestStorageBackendFactory_FileURI(t *testing.T) {
	factory := newTestFactory()
	root := t.TempDir()

	backend, err := factory.StorageBackendFor(interfaces.StorageBackendLocation("file://" + root + "/store"))
	require.NoError(t, err)
	assert.Equal(t, "file-store", backend.Name())

	// The factory materializes the root directory.
	info, statErr := os.Stat(root + "/store")
	require.NoError(t, statErr)
	assert.True(t, info.IsDir())

	// Round trip through the created backend.
	ctx := context.Background()
	ok, err := backend.Write(ctx, "greeting.txt", []byte("hello"), interfaces.WriteConfig{})
	require.NoError(t, err)
	assert.True(t, ok)

	content, err := backend.Read(ctx, "greeting.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), content)
}

func TestStorageBackendFactory_S3URI(t *testing.T) {
	factory := newTestFactory()

	t.Run("bucket with options", func(t *testing.T) {
		backend, err := factory.StorageBackendFor("s3://my-bucket/?region=eu-west-1&endpoint=minio.local:9000&pathstyle=true")
		require.NoError(t, err)
		assert.Equal(t, "object-my-bucket", backend.Name())
	})

	t.Run("credentials are redacted in the location URI", func(t *testing.T) {
		backend, err := factory.StorageBackendFor("s3://AKIAEXAMPLE:supersecret@my-bucket/")
		require.NoError(t, err)
		assert.Contains(t, backend.LocationURI(), "my-bucket")
		assert.NotContains(t, backend.LocationURI(), "supersecret")
	})

	t.Run("missing bucket is rejected", func(t *testing.T) {
		_, err := factory.StorageBackendFor("s3:///")
		assert.True(t, errors.Is(err, interfaces.ErrInvalidLocationURI), "expected ErrInvalidLocationURI, got %v", err)
	})

	t.Run("path prefix is rejected", func(t *testing.T) {
		_, err := factory.StorageBackendFor("s3://my-bucket/some/prefix/")
		assert.True(t, errors.Is(err, interfaces.ErrInvalidLocationURI), "expected ErrInvalidLocationURI, got %v", err)
	})
}

func TestStorageBackendFactory_Rejections(t *testing.T) {
	factory := newTestFactory()

	tests := []struct {
		name string
		uri  string
	}{
		{name: "unsupported scheme", uri: "ftp://host/file"},
		{name: "no scheme", uri: "just-a-string"},
		{name: "unparseable", uri: "://missing-scheme"},
		{name: "empty file path", uri: "file://"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := factory.StorageBackendFor(interfaces.StorageBackendLocation(tt.uri))
			assert.True(t, errors.Is(err, interfaces.ErrInvalidLocationURI), "expected ErrInvalidLocationURI, got %v", err)
		})
	}
}

func TestStorageBackendFactory_NewStorageFor(t *testing.T) {
	factory := newTestFactory()
	root := t.TempDir()
	ctx := context.Background()

	store, err := factory.NewStorageFor(interfaces.StorageBackendLocation("file://" + root))
	require.NoError(t, err)

	ok, err := store.Append(ctx, "audit.log", []byte("created"), DefaultSeparator)
	require.NoError(t, err)
	assert.True(t, ok)

	content, err := store.Read(ctx, "audit.log")
	require.NoError(t, err)
	assert.Equal(t, []byte("created"), content)

	_, err = factory.NewStorageFor("gopher://nope")
	assert.True(t, errors.Is(err, interfaces.ErrInvalidLocationURI), "expected ErrInvalidLocationURI, got %v", err)
}
