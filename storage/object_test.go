package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stowage/stowage/interfaces"
)

// MockObjectClient implements interfaces.ObjectClient for testing
type MockObjectClient struct {
	mock.Mock
}

func (m *MockObjectClient) GetObject(ctx context.Context, bucket, key string) interfaces.ObjectResponse {
	args := m.Called(ctx, bucket, key)
	return args.Get(0).(interfaces.ObjectResponse)
}

func (m *MockObjectClient) PutObject(ctx context.Context, bucket, key string, body []byte, headers map[string]string) interfaces.ObjectResponse {
	args := m.Called(ctx, bucket, key, body, headers)
	return args.Get(0).(interfaces.ObjectResponse)
}

func (m *MockObjectClient) DeleteObject(ctx context.Context, bucket, key string) interfaces.ObjectResponse {
	args := m.Called(ctx, bucket, key)
	return args.Get(0).(interfaces.ObjectResponse)
}

func (m *MockObjectClient) GetObjectInfo(ctx context.Context, bucket, key string) interfaces.ObjectResponse {
	args := m.Called(ctx, bucket, key)
	return args.Get(0).(interfaces.ObjectResponse)
}

func foundMetadata(size int64, modified time.Time) interfaces.ObjectResponse {
	headers := http.Header{}
	headers.Set("Content-Length", strconv.FormatInt(size, 10))
	headers.Set("Last-Modified", modified.UTC().Format(http.TimeFormat))
	return interfaces.ObjectResponse{Status: http.StatusOK, Headers: headers}
}

func notFoundResponse() interfaces.ObjectResponse {
	return interfaces.ObjectResponse{Err: errors.New("NotFound: status code: 404"), Status: http.StatusNotFound}
}

func newTestObjectBackend(t *testing.T, client interfaces.ObjectClient) *ObjectBackend {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	backend, err := NewObjectBackend("test-bucket", client, "s3://test-bucket/", logger)
	require.NoError(t, err)
	return backend
}

func TestNewObjectBackend(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	backend, err := NewObjectBackend("assets", &MockObjectClient{}, "s3://assets/", logger)
	require.NoError(t, err)
	assert.Equal(t, "object-assets", backend.Name())
	assert.Equal(t, "s3://assets/", backend.LocationURI())

	_, err = NewObjectBackend("", &MockObjectClient{}, "s3://", logger)
	assert.Error(t, err)
}

func TestObjectBackend_MetadataCache(t *testing.T) {
	mockClient := &MockObjectClient{}
	mockClient.On("GetObjectInfo", mock.Anything, "test-bucket", "a.txt").
		Return(foundMetadata(11, time.Unix(1700000000, 0)))
	backend := newTestObjectBackend(t, mockClient)
	ctx := context.Background()

	// Repeated metadata reads for the same path share a single probe.
	for i := 0; i < 2; i++ {
		exists, err := backend.Exists(ctx, "a.txt")
		require.NoError(t, err)
		assert.True(t, exists)
	}

	size, err := backend.Size(ctx, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(11), size)

	modified, err := backend.LastModified(ctx, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000), modified)

	mockClient.AssertNumberOfCalls(t, "GetObjectInfo", 1)
}

func TestObjectBackend_NotFoundNeverCached(t *testing.T) {
	mockClient := &MockObjectClient{}
	mockClient.On("GetObjectInfo", mock.Anything, "test-bucket", "ghost.txt").
		Return(notFoundResponse())
	backend := newTestObjectBackend(t, mockClient)
	ctx := context.Background()

	// A miss re-probes every time so a later upload becomes visible.
	for i := 0; i < 3; i++ {
		exists, err := backend.Exists(ctx, "ghost.txt")
		require.NoError(t, err)
		assert.False(t, exists)
	}

	mockClient.AssertNumberOfCalls(t, "GetObjectInfo", 3)
}

func TestObjectBackend_WriteInvalidatesCache(t *testing.T) {
	mockClient := &MockObjectClient{}
	mockClient.On("GetObjectInfo", mock.Anything, "test-bucket", "doc.txt").
		Return(foundMetadata(5, time.Unix(1700000000, 0)))
	mockClient.On("PutObject", mock.Anything, "test-bucket", "doc.txt", mock.Anything, mock.Anything).
		Return(interfaces.ObjectResponse{Status: http.StatusOK})
	backend := newTestObjectBackend(t, mockClient)
	ctx := context.Background()

	// Warm the cache.
	exists, err := backend.Exists(ctx, "doc.txt")
	require.NoError(t, err)
	require.True(t, exists)
	mockClient.AssertNumberOfCalls(t, "GetObjectInfo", 1)

	// A successful overwrite drops the cached probe.
	ok, err := backend.Write(ctx, "doc.txt", []byte("fresh"), interfaces.WriteConfig{Overwrite: true})
	require.NoError(t, err)
	require.True(t, ok)

	exists, err = backend.Exists(ctx, "doc.txt")
	require.NoError(t, err)
	assert.True(t, exists)
	mockClient.AssertNumberOfCalls(t, "GetObjectInfo", 2)
}

func TestObjectBackend_DeleteInvalidatesCache(t *testing.T) {
	mockClient := &MockObjectClient{}
	mockClient.On("GetObjectInfo", mock.Anything, "test-bucket", "doc.txt").
		Return(foundMetadata(5, time.Unix(1700000000, 0))).Once()
	mockClient.On("GetObjectInfo", mock.Anything, "test-bucket", "doc.txt").
		Return(notFoundResponse())
	mockClient.On("DeleteObject", mock.Anything, "test-bucket", "doc.txt").
		Return(interfaces.ObjectResponse{Status: http.StatusNoContent})
	backend := newTestObjectBackend(t, mockClient)
	ctx := context.Background()

	exists, err := backend.Exists(ctx, "doc.txt")
	require.NoError(t, err)
	require.True(t, exists)

	ok, err := backend.Delete(ctx, "doc.txt")
	require.NoError(t, err)
	assert.True(t, ok)

	// Without invalidation this would still read the stale cached probe.
	exists, err = backend.Exists(ctx, "doc.txt")
	require.NoError(t, err)
	assert.False(t, exists)
	mockClient.AssertNumberOfCalls(t, "GetObjectInfo", 2)
}

func TestObjectBackend_DeleteFailureKeepsCache(t *testing.T) {
	mockClient := &MockObjectClient{}
	mockClient.On("GetObjectInfo", mock.Anything, "test-bucket", "doc.txt").
		Return(foundMetadata(5, time.Unix(1700000000, 0)))
	mockClient.On("DeleteObject", mock.Anything, "test-bucket", "doc.txt").
		Return(interfaces.ObjectResponse{Err: errors.New("connection reset")})
	backend := newTestObjectBackend(t, mockClient)
	ctx := context.Background()

	exists, err := backend.Exists(ctx, "doc.txt")
	require.NoError(t, err)
	require.True(t, exists)

	// Failure degrades to false and the probe stays cached.
	ok, err := backend.Delete(ctx, "doc.txt")
	assert.NoError(t, err)
	assert.False(t, ok)

	exists, err = backend.Exists(ctx, "doc.txt")
	require.NoError(t, err)
	assert.True(t, exists)
	mockClient.AssertNumberOfCalls(t, "GetObjectInfo", 1)
}

func TestObjectBackend_WriteConflict(t *testing.T) {
	mockClient := &MockObjectClient{}
	mockClient.On("GetObjectInfo", mock.Anything, "test-bucket", "doc.txt").
		Return(foundMetadata(5, time.Unix(1700000000, 0)))
	backend := newTestObjectBackend(t, mockClient)
	ctx := context.Background()

	ok, err := backend.Write(ctx, "doc.txt", []byte("clobber"), interfaces.WriteConfig{})
	assert.True(t, errors.Is(err, interfaces.ErrFileExists), "expected ErrFileExists, got %v", err)
	assert.False(t, ok)

	mockClient.AssertNumberOfCalls(t, "PutObject", 0)
}

func TestObjectBackend_WriteForwardsMetadata(t *testing.T) {
	headers := map[string]string{"Content-Type": "text/plain", "x-amz-acl": "public-read"}

	mockClient := &MockObjectClient{}
	mockClient.On("GetObjectInfo", mock.Anything, "test-bucket", "new.txt").
		Return(notFoundResponse())
	mockClient.On("PutObject", mock.Anything, "test-bucket", "new.txt", []byte("body"), headers).
		Return(interfaces.ObjectResponse{Status: http.StatusOK})
	backend := newTestObjectBackend(t, mockClient)
	ctx := context.Background()

	ok, err := backend.Write(ctx, "new.txt", []byte("body"), interfaces.WriteConfig{Metadata: headers})
	require.NoError(t, err)
	assert.True(t, ok)

	mockClient.AssertExpectations(t)
}

func TestObjectBackend_WriteFailure(t *testing.T) {
	mockClient := &MockObjectClient{}
	mockClient.On("GetObjectInfo", mock.Anything, "test-bucket", "new.txt").
		Return(notFoundResponse())
	mockClient.On("PutObject", mock.Anything, "test-bucket", "new.txt", mock.Anything, mock.Anything).
		Return(interfaces.ObjectResponse{Err: errors.New("connection reset")})
	backend := newTestObjectBackend(t, mockClient)
	ctx := context.Background()

	ok, err := backend.Write(ctx, "new.txt", []byte("body"), interfaces.WriteConfig{})
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestObjectBackend_Read(t *testing.T) {
	t.Run("returns body", func(t *testing.T) {
		mockClient := &MockObjectClient{}
		mockClient.On("GetObject", mock.Anything, "test-bucket", "a.txt").
			Return(interfaces.ObjectResponse{Status: http.StatusOK, Body: []byte("hello")})
		backend := newTestObjectBackend(t, mockClient)

		content, err := backend.Read(context.Background(), "a.txt")
		require.NoError(t, err)
		assert.Equal(t, []byte("hello"), content)
	})

	t.Run("degrades to empty on fetch failure", func(t *testing.T) {
		mockClient := &MockObjectClient{}
		mockClient.On("GetObject", mock.Anything, "test-bucket", "a.txt").
			Return(interfaces.ObjectResponse{Err: errors.New("connection reset")})
		backend := newTestObjectBackend(t, mockClient)

		content, err := backend.Read(context.Background(), "a.txt")
		assert.NoError(t, err)
		assert.Equal(t, []byte{}, content)
	})

	t.Run("degrades to empty on missing object", func(t *testing.T) {
		mockClient := &MockObjectClient{}
		mockClient.On("GetObject", mock.Anything, "test-bucket", "a.txt").
			Return(notFoundResponse())
		backend := newTestObjectBackend(t, mockClient)

		content, err := backend.Read(context.Background(), "a.txt")
		assert.NoError(t, err)
		assert.Equal(t, []byte{}, content)
	})
}

func TestObjectBackend_MetadataParsing(t *testing.T) {
	t.Run("missing headers default to zero", func(t *testing.T) {
		mockClient := &MockObjectClient{}
		mockClient.On("GetObjectInfo", mock.Anything, "test-bucket", "bare.txt").
			Return(interfaces.ObjectResponse{Status: http.StatusOK})
		backend := newTestObjectBackend(t, mockClient)
		ctx := context.Background()

		size, err := backend.Size(ctx, "bare.txt")
		require.NoError(t, err)
		assert.Equal(t, int64(0), size)

		modified, err := backend.LastModified(ctx, "bare.txt")
		require.NoError(t, err)
		assert.Equal(t, int64(0), modified)
	})

	t.Run("missing object reads as zero", func(t *testing.T) {
		mockClient := &MockObjectClient{}
		mockClient.On("GetObjectInfo", mock.Anything, "test-bucket", "ghost.txt").
			Return(notFoundResponse())
		backend := newTestObjectBackend(t, mockClient)
		ctx := context.Background()

		size, err := backend.Size(ctx, "ghost.txt")
		require.NoError(t, err)
		assert.Equal(t, int64(0), size)

		modified, err := backend.LastModified(ctx, "ghost.txt")
		require.NoError(t, err)
		assert.Equal(t, int64(0), modified)
	})
}

func TestObjectBackend_AbsolutePath(t *testing.T) {
	mockClient := &MockObjectClient{}
	mockClient.On("GetObjectInfo", mock.Anything, "test-bucket", "reports/q3.pdf").
		Return(foundMetadata(10, time.Unix(1700000000, 0)))
	mockClient.On("GetObjectInfo", mock.Anything, "test-bucket", "ghost.txt").
		Return(notFoundResponse())
	backend := newTestObjectBackend(t, mockClient)
	ctx := context.Background()

	// Keys resolve to themselves.
	loc, err := backend.AbsolutePath(ctx, "reports/q3.pdf")
	require.NoError(t, err)
	assert.Equal(t, "reports/q3.pdf", loc)

	_, err = backend.AbsolutePath(ctx, "ghost.txt")
	assert.True(t, errors.Is(err, interfaces.ErrFileNotFound), "expected ErrFileNotFound, got %v", err)
}

func TestObjectBackend_Copy(t *testing.T) {
	t.Run("missing source is false not error", func(t *testing.T) {
		mockClient := &MockObjectClient{}
		mockClient.On("GetObjectInfo", mock.Anything, "test-bucket", "src").
			Return(notFoundResponse())
		backend := newTestObjectBackend(t, mockClient)

		ok, err := backend.Copy(context.Background(), "src", "dst")
		assert.NoError(t, err)
		assert.False(t, ok)
		mockClient.AssertNumberOfCalls(t, "GetObject", 0)
		mockClient.AssertNumberOfCalls(t, "PutObject", 0)
	})

	t.Run("reads source and rewrites destination", func(t *testing.T) {
		mockClient := &MockObjectClient{}
		mockClient.On("GetObjectInfo", mock.Anything, "test-bucket", "src").
			Return(foundMetadata(7, time.Unix(1700000000, 0)))
		mockClient.On("GetObject", mock.Anything, "test-bucket", "src").
			Return(interfaces.ObjectResponse{Status: http.StatusOK, Body: []byte("payload")})
		mockClient.On("PutObject", mock.Anything, "test-bucket", "dst", []byte("payload"), mock.Anything).
			Return(interfaces.ObjectResponse{Status: http.StatusOK})
		backend := newTestObjectBackend(t, mockClient)

		ok, err := backend.Copy(context.Background(), "src", "dst")
		require.NoError(t, err)
		assert.True(t, ok)
		mockClient.AssertExpectations(t)
	})
}

func TestObjectBackend_Move(t *testing.T) {
	mockClient := &MockObjectClient{}
	mockClient.On("GetObjectInfo", mock.Anything, "test-bucket", "src").
		Return(foundMetadata(7, time.Unix(1700000000, 0))).Once()
	mockClient.On("GetObjectInfo", mock.Anything, "test-bucket", "src").
		Return(notFoundResponse())
	mockClient.On("GetObject", mock.Anything, "test-bucket", "src").
		Return(interfaces.ObjectResponse{Status: http.StatusOK, Body: []byte("payload")})
	mockClient.On("PutObject", mock.Anything, "test-bucket", "dst", []byte("payload"), mock.Anything).
		Return(interfaces.ObjectResponse{Status: http.StatusOK})
	mockClient.On("DeleteObject", mock.Anything, "test-bucket", "src").
		Return(interfaces.ObjectResponse{Status: http.StatusNoContent})
	backend := newTestObjectBackend(t, mockClient)
	ctx := context.Background()

	ok, err := backend.Move(ctx, "src", "dst")
	require.NoError(t, err)
	assert.True(t, ok)

	// The source cache entry went with the delete.
	exists, err := backend.Exists(ctx, "src")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestObjectBackend_CapabilityGaps(t *testing.T) {
	// None of these may touch the client.
	backend := newTestObjectBackend(t, &MockObjectClient{})
	ctx := context.Background()

	files, err := backend.ListFiles(ctx, "any", true)
	require.NoError(t, err)
	assert.Empty(t, files)

	dirs, err := backend.ListDirectories(ctx, "any", false)
	require.NoError(t, err)
	assert.Empty(t, dirs)

	ok, err := backend.CreateDirectory(ctx, "any")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = backend.DeleteDirectory(ctx, "any")
	require.NoError(t, err)
	assert.False(t, ok)
}
