package clients

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/stowage/stowage/api"
	"github.com/stowage/stowage/interfaces"
	"github.com/stretchr/testify/mock"
)

// FileClient implements StorageProvider for HTTP-based communication with
// the storage server.
type FileClient struct {
	// ServerAddr is the base URL of the storage server
	ServerAddr string

	// Client is the HTTP client used for requests. http.DefaultClient is
	// used when nil.
	Client *http.Client
}

func (c *FileClient) httpClient() *http.Client {
	if c.Client != nil {
		return c.Client
	}
	return http.DefaultClient
}

// escapePath escapes each path segment while preserving the separators, so
// file names with spaces or reserved characters survive the round trip.
func escapePath(path string) string {
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}

// do sends the request and maps error statuses back onto the storage error
// taxonomy where the mapping is unambiguous.
func (c *FileClient) do(req *http.Request) (*http.Response, error) {
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not request storage server: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		bodyBytes, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, fmt.Errorf("storage server returned %d", resp.StatusCode)
		}
		msg := strings.TrimSpace(string(bodyBytes))
		switch resp.StatusCode {
		case http.StatusNotFound:
			return nil, fmt.Errorf("%w: %s", interfaces.ErrFileNotFound, msg)
		case http.StatusConflict:
			return nil, fmt.Errorf("%w: %s", interfaces.ErrFileExists, msg)
		default:
			return nil, fmt.Errorf("storage server returned %d: %s", resp.StatusCode, msg)
		}
	}
	return resp, nil
}

// doJSON sends the request and decodes a JSON response body into out.
func (c *FileClient) doJSON(req *http.Request, out any) error {
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("could not parse storage server response: %w", err)
	}
	return nil
}

// ReadFile returns the raw content of the file at path.
func (c *FileClient) ReadFile(path string) ([]byte, error) {
	reqURL := fmt.Sprintf("%s/api/files/%s", c.ServerAddr, escapePath(path))
	req, err := http.NewRequest(http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// WriteFile stores content at path via PUT.
func (c *FileClient) WriteFile(path string, content []byte, overwrite bool, contentType string) (*api.OperationResult, error) {
	reqURL := fmt.Sprintf("%s/api/files/%s", c.ServerAddr, escapePath(path))
	if overwrite {
		reqURL += "?" + api.QueryOverwrite + "=true"
	}
	req, err := http.NewRequest(http.MethodPut, reqURL, bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	var result api.OperationResult
	if err := c.doJSON(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *FileClient) patchFile(path string, content []byte, mode, separator string) (*api.OperationResult, error) {
	query := url.Values{}
	query.Set(api.QueryMode, mode)
	query.Set(api.QuerySeparator, separator)
	reqURL := fmt.Sprintf("%s/api/files/%s?%s", c.ServerAddr, escapePath(path), query.Encode())
	req, err := http.NewRequest(http.MethodPatch, reqURL, bytes.NewReader(content))
	if err != nil {
		return nil, err
	}

	var result api.OperationResult
	if err := c.doJSON(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AppendToFile merges content after the existing file content. An empty
// separator concatenates directly.
func (c *FileClient) AppendToFile(path string, content []byte, separator string) (*api.OperationResult, error) {
	return c.patchFile(path, content, api.ModeAppend, separator)
}

// PrependToFile merges content before the existing file content.
func (c *FileClient) PrependToFile(path string, content []byte, separator string) (*api.OperationResult, error) {
	return c.patchFile(path, content, api.ModePrepend, separator)
}

// DeleteFile removes the file at path.
func (c *FileClient) DeleteFile(path string) (*api.OperationResult, error) {
	reqURL := fmt.Sprintf("%s/api/files/%s", c.ServerAddr, escapePath(path))
	req, err := http.NewRequest(http.MethodDelete, reqURL, nil)
	if err != nil {
		return nil, err
	}

	var result api.OperationResult
	if err := c.doJSON(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetMetadata reports existence, size, modification time and resolved
// location for path.
func (c *FileClient) GetMetadata(path string) (*api.FileMetadata, error) {
	reqURL := fmt.Sprintf("%s/api/metadata/%s", c.ServerAddr, escapePath(path))
	req, err := http.NewRequest(http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	var metadata api.FileMetadata
	if err := c.doJSON(req, &metadata); err != nil {
		return nil, err
	}
	return &metadata, nil
}

func (c *FileClient) list(endpoint, dir string, recursive bool) (*api.ListResponse, error) {
	query := url.Values{}
	query.Set(api.QueryDir, dir)
	query.Set(api.QueryRecursive, strconv.FormatBool(recursive))
	reqURL := fmt.Sprintf("%s%s?%s", c.ServerAddr, endpoint, query.Encode())
	req, err := http.NewRequest(http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	var listing api.ListResponse
	if err := c.doJSON(req, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

// ListFiles returns the files under dir.
func (c *FileClient) ListFiles(dir string, recursive bool) (*api.ListResponse, error) {
	return c.list("/api/files", dir, recursive)
}

// ListDirectories returns the directories under dir.
func (c *FileClient) ListDirectories(dir string, recursive bool) (*api.ListResponse, error) {
	return c.list("/api/directories", dir, recursive)
}

// CreateDirectory creates the directory at path, including parents.
func (c *FileClient) CreateDirectory(path string) (*api.OperationResult, error) {
	reqURL := fmt.Sprintf("%s/api/directories/%s", c.ServerAddr, escapePath(path))
	req, err := http.NewRequest(http.MethodPost, reqURL, nil)
	if err != nil {
		return nil, err
	}

	var result api.OperationResult
	if err := c.doJSON(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteDirectory removes the empty directory at path.
func (c *FileClient) DeleteDirectory(path string) (*api.OperationResult, error) {
	reqURL := fmt.Sprintf("%s/api/directories/%s", c.ServerAddr, escapePath(path))
	req, err := http.NewRequest(http.MethodDelete, reqURL, nil)
	if err != nil {
		return nil, err
	}

	var result api.OperationResult
	if err := c.doJSON(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *FileClient) transfer(op, from, to string) (*api.OperationResult, error) {
	body, err := json.Marshal(api.TransferRequest{From: from, To: to})
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set(api.QueryOp, op)
	reqURL := fmt.Sprintf("%s/api/transfer?%s", c.ServerAddr, query.Encode())
	req, err := http.NewRequest(http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var result api.OperationResult
	if err := c.doJSON(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Copy duplicates the file at from to to, replacing any existing file.
func (c *FileClient) Copy(from, to string) (*api.OperationResult, error) {
	return c.transfer(api.OpCopy, from, to)
}

// Move relocates the file at from to to.
func (c *FileClient) Move(from, to string) (*api.OperationResult, error) {
	return c.transfer(api.OpMove, from, to)
}

// MockStorageClient implements a mock StorageProvider for testing.
type MockStorageClient struct {
	mock.Mock
}

// ReadFile implements the StorageProvider interface for testing.
// The behavior is determined by how the mock is configured in tests.
func (m *MockStorageClient) ReadFile(path string) ([]byte, error) {
	args := m.Called(path)
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockStorageClient) WriteFile(path string, content []byte, overwrite bool, contentType string) (*api.OperationResult, error) {
	args := m.Called(path, content, overwrite, contentType)
	return args.Get(0).(*api.OperationResult), args.Error(1)
}

func (m *MockStorageClient) AppendToFile(path string, content []byte, separator string) (*api.OperationResult, error) {
	args := m.Called(path, content, separator)
	return args.Get(0).(*api.OperationResult), args.Error(1)
}

func (m *MockStorageClient) PrependToFile(path string, content []byte, separator string) (*api.OperationResult, error) {
	args := m.Called(path, content, separator)
	return args.Get(0).(*api.OperationResult), args.Error(1)
}

func (m *MockStorageClient) DeleteFile(path string) (*api.OperationResult, error) {
	args := m.Called(path)
	return args.Get(0).(*api.OperationResult), args.Error(1)
}

func (m *MockStorageClient) GetMetadata(path string) (*api.FileMetadata, error) {
	args := m.Called(path)
	return args.Get(0).(*api.FileMetadata), args.Error(1)
}

func (m *MockStorageClient) ListFiles(dir string, recursive bool) (*api.ListResponse, error) {
	args := m.Called(dir, recursive)
	return args.Get(0).(*api.ListResponse), args.Error(1)
}

func (m *MockStorageClient) ListDirectories(dir string, recursive bool) (*api.ListResponse, error) {
	args := m.Called(dir, recursive)
	return args.Get(0).(*api.ListResponse), args.Error(1)
}

func (m *MockStorageClient) CreateDirectory(path string) (*api.OperationResult, error) {
	args := m.Called(path)
	return args.Get(0).(*api.OperationResult), args.Error(1)
}

func (m *MockStorageClient) DeleteDirectory(path string) (*api.OperationResult, error) {
	args := m.Called(path)
	return args.Get(0).(*api.OperationResult), args.Error(1)
}

func (m *MockStorageClient) Copy(from, to string) (*api.OperationResult, error) {
	args := m.Called(from, to)
	return args.Get(0).(*api.OperationResult), args.Error(1)
}

func (m *MockStorageClient) Move(from, to string) (*api.OperationResult, error) {
	args := m.Called(from, to)
	return args.Get(0).(*api.OperationResult), args.Error(1)
}
