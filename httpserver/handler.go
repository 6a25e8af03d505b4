package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stowage/stowage/api"
	"github.com/stowage/stowage/interfaces"
	"github.com/stowage/stowage/metrics"
	"github.com/stowage/stowage/storage"
)

// maxBodySize is the maximum allowed request body size (1MB).
const maxBodySize = 1024 * 1024

// RequestError provides structured error information for HTTP responses.
// It includes both an HTTP status code and the underlying error.
type RequestError struct {
	// StatusCode is the HTTP status code to return.
	StatusCode int

	// Err is the underlying error.
	Err error
}

// Error returns the error message from the underlying error.
func (e *RequestError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error for errors.Is checks.
func (e *RequestError) Unwrap() error {
	return e.Err
}

// Handler processes HTTP requests for the storage service. All file and
// directory operations go through the storage facade, so path validation
// and the boolean-success convention apply uniformly.
type Handler struct {
	store   *storage.Storage
	log     *slog.Logger
	metrics *metrics.MetricsServer
}

// NewHandler creates a new HTTP request handler with the specified dependencies.
//
// Parameters:
//   - store: Storage facade the handlers operate on
//   - log: Structured logger for operational insights
//
// Returns a configured Handler instance. Metrics instrumentation is wired
// in by the server; without it the handler works unrecorded.
func NewHandler(store *storage.Storage, log *slog.Logger) *Handler {
	return &Handler{
		store: store,
		log:   log,
	}
}

// statusForError translates storage taxonomy errors into HTTP status codes.
// Anything outside the taxonomy is a server-side failure.
func statusForError(err error) int {
	switch {
	case errors.Is(err, interfaces.ErrFileExists):
		return http.StatusConflict
	case errors.Is(err, interfaces.ErrFileNotFound):
		return http.StatusNotFound
	case errors.Is(err, interfaces.ErrInvalidPath),
		errors.Is(err, interfaces.ErrPathTraversal),
		errors.Is(err, interfaces.ErrInvalidDirectory),
		errors.Is(err, interfaces.ErrInvalidLocationURI):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// filePath extracts the wildcard path from the request URL. chi routes on
// the escaped path when one is present, so the value is unescaped before
// hitting the storage layer.
func filePath(r *http.Request) (string, *RequestError) {
	raw := chi.URLParam(r, "*")
	path, err := url.PathUnescape(raw)
	if err != nil {
		return "", &RequestError{StatusCode: http.StatusBadRequest, Err: fmt.Errorf("invalid path encoding: %w", err)}
	}
	if path == "" {
		return "", &RequestError{StatusCode: http.StatusBadRequest, Err: errors.New("missing path in URL")}
	}
	return path, nil
}

// record counts a storage operation in the metrics server, if one is wired.
func (h *Handler) record(operation string, start time.Time, err error) {
	if h.metrics == nil {
		return
	}
	h.metrics.RecordStorageOperation(operation, h.store.Backend().Name(), err, time.Since(start))
}

// storageError logs the failure and writes the mapped HTTP status. Taxonomy
// errors are the client's fault and only logged at debug level.
func (h *Handler) storageError(w http.ResponseWriter, r *http.Request, operation string, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		h.log.Error("Storage operation failed", "err", err,
			slog.String("operation", operation),
			slog.String("url", r.URL.Path))
	} else {
		h.log.Debug("Storage operation rejected", "err", err,
			slog.String("operation", operation),
			slog.String("url", r.URL.Path))
	}
	http.Error(w, err.Error(), status)
}

// writeJSON encodes v as the response body.
func (h *Handler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("Failed to encode response", "err", err)
	}
}

// operationResult builds the JSON result for a mutating operation. A false
// outcome is not a transport error, it means the operation did not take
// effect.
func operationResult(ok bool, path string) api.OperationResult {
	result := api.OperationResult{Success: ok, Path: path}
	if !ok {
		result.Error = "operation did not take effect"
	}
	return result
}

// readBody reads the request body up to maxBodySize.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, *RequestError) {
	content, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		return nil, &RequestError{StatusCode: http.StatusBadRequest, Err: fmt.Errorf("failed to read request body: %w", err)}
	}
	return content, nil
}

// HandleReadFile serves the raw content of a file.
//
// URL format: GET /api/files/{path}
//
// Response: file content as application/octet-stream, 404 when the file
// does not exist on the backend.
func (h *Handler) HandleReadFile(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	path, reqErr := filePath(r)
	if reqErr != nil {
		http.Error(w, reqErr.Error(), reqErr.StatusCode)
		return
	}

	exists, err := h.store.Exists(r.Context(), path)
	if err != nil {
		h.record("read", start, err)
		h.storageError(w, r, "read", err)
		return
	}
	if !exists {
		h.record("read", start, interfaces.ErrFileNotFound)
		http.Error(w, "file not found", http.StatusNotFound)
		return
	}

	content, err := h.store.Read(r.Context(), path)
	h.record("read", start, err)
	if err != nil {
		h.storageError(w, r, "read", err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err := w.Write(content); err != nil {
		h.log.Error("Failed to write response", "err", err)
	}
}

// HandleWriteFile stores the request body as a file.
//
// URL format: PUT /api/files/{path}?overwrite=true
//
// The Content-Type header is forwarded as object metadata for backends
// that support it. Writing over an existing file without overwrite=true
// yields 409.
//
// Response: JSON OperationResult.
func (h *Handler) HandleWriteFile(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	path, reqErr := filePath(r)
	if reqErr != nil {
		http.Error(w, reqErr.Error(), reqErr.StatusCode)
		return
	}

	content, reqErr := readBody(w, r)
	if reqErr != nil {
		http.Error(w, reqErr.Error(), reqErr.StatusCode)
		return
	}

	config := interfaces.WriteConfig{
		Overwrite: r.URL.Query().Get(api.QueryOverwrite) == "true",
	}
	if contentType := r.Header.Get("Content-Type"); contentType != "" {
		config.Metadata = map[string]string{"Content-Type": contentType}
	}

	ok, err := h.store.Write(r.Context(), path, content, config)
	h.record("write", start, err)
	if err != nil {
		h.storageError(w, r, "write", err)
		return
	}

	h.writeJSON(w, operationResult(ok, path))
}

// HandlePatchFile merges the request body into an existing file.
//
// URL format: PATCH /api/files/{path}?mode=append|prepend&separator=...
//
// The separator defaults to a newline and is inserted between the existing
// content and the new data. A missing file is created without it.
//
// Response: JSON OperationResult.
func (h *Handler) HandlePatchFile(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	path, reqErr := filePath(r)
	if reqErr != nil {
		http.Error(w, reqErr.Error(), reqErr.StatusCode)
		return
	}

	query := r.URL.Query()
	mode := query.Get(api.QueryMode)
	if mode == "" {
		mode = api.ModeAppend
	}
	separator := storage.DefaultSeparator
	if query.Has(api.QuerySeparator) {
		separator = query.Get(api.QuerySeparator)
	}

	content, reqErr := readBody(w, r)
	if reqErr != nil {
		http.Error(w, reqErr.Error(), reqErr.StatusCode)
		return
	}

	var ok bool
	var err error
	switch mode {
	case api.ModeAppend:
		ok, err = h.store.Append(r.Context(), path, content, separator)
	case api.ModePrepend:
		ok, err = h.store.Prepend(r.Context(), path, content, separator)
	default:
		http.Error(w, fmt.Sprintf("invalid mode %q, expected %q or %q", mode, api.ModeAppend, api.ModePrepend), http.StatusBadRequest)
		return
	}

	h.record(mode, start, err)
	if err != nil {
		h.storageError(w, r, mode, err)
		return
	}

	h.writeJSON(w, operationResult(ok, path))
}

// HandleDeleteFile removes a file.
//
// URL format: DELETE /api/files/{path}
//
// Response: JSON OperationResult, 404 when the file does not exist.
func (h *Handler) HandleDeleteFile(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	path, reqErr := filePath(r)
	if reqErr != nil {
		http.Error(w, reqErr.Error(), reqErr.StatusCode)
		return
	}

	ok, err := h.store.Delete(r.Context(), path)
	h.record("delete", start, err)
	if err != nil {
		h.storageError(w, r, "delete", err)
		return
	}

	h.writeJSON(w, operationResult(ok, path))
}

// HandleFileMetadata reports existence, size, modification time and the
// backend-resolved location of a file.
//
// URL format: GET /api/metadata/{path}
//
// Response: JSON FileMetadata. A missing file yields Exists=false with
// status 200; metadata is a status report, not a retrieval.
func (h *Handler) HandleFileMetadata(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	path, reqErr := filePath(r)
	if reqErr != nil {
		http.Error(w, reqErr.Error(), reqErr.StatusCode)
		return
	}

	exists, err := h.store.Exists(r.Context(), path)
	if err != nil {
		h.record("metadata", start, err)
		h.storageError(w, r, "metadata", err)
		return
	}

	metadata := api.FileMetadata{
		Path:    path,
		Exists:  exists,
		Backend: h.store.Backend().Name(),
	}

	if exists {
		if metadata.Size, err = h.store.Size(r.Context(), path); err != nil {
			h.record("metadata", start, err)
			h.storageError(w, r, "metadata", err)
			return
		}
		if metadata.LastModified, err = h.store.LastModified(r.Context(), path); err != nil {
			h.record("metadata", start, err)
			h.storageError(w, r, "metadata", err)
			return
		}
		if metadata.Location, err = h.store.Path(r.Context(), path); err != nil {
			h.record("metadata", start, err)
			h.storageError(w, r, "metadata", err)
			return
		}
	}

	h.record("metadata", start, nil)
	h.writeJSON(w, metadata)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request, operation string,
	list func(r *http.Request, dir string, recursive bool) ([]string, error)) {
	start := time.Now()
	query := r.URL.Query()
	dir := query.Get(api.QueryDir)
	recursive := query.Get(api.QueryRecursive) == "true"

	entries, err := list(r, dir, recursive)
	h.record(operation, start, err)
	if err != nil {
		h.storageError(w, r, operation, err)
		return
	}
	if entries == nil {
		entries = []string{}
	}

	h.writeJSON(w, api.ListResponse{Dir: dir, Recursive: recursive, Entries: entries})
}

// HandleListFiles lists the files under a directory.
//
// URL format: GET /api/files?dir={dir}&recursive=true
//
// Response: JSON ListResponse with paths relative to the backend root in
// natural order. Backends without listing support return an empty list.
func (h *Handler) HandleListFiles(w http.ResponseWriter, r *http.Request) {
	h.handleList(w, r, "list_files", func(r *http.Request, dir string, recursive bool) ([]string, error) {
		return h.store.Files(r.Context(), dir, recursive)
	})
}

// HandleListDirectories lists the directories under a directory.
//
// URL format: GET /api/directories?dir={dir}&recursive=true
//
// Response: JSON ListResponse.
func (h *Handler) HandleListDirectories(w http.ResponseWriter, r *http.Request) {
	h.handleList(w, r, "list_directories", func(r *http.Request, dir string, recursive bool) ([]string, error) {
		return h.store.Directories(r.Context(), dir, recursive)
	})
}

// HandleCreateDirectory creates a directory, including missing parents.
//
// URL format: POST /api/directories/{path}
//
// Response: JSON OperationResult.
func (h *Handler) HandleCreateDirectory(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	path, reqErr := filePath(r)
	if reqErr != nil {
		http.Error(w, reqErr.Error(), reqErr.StatusCode)
		return
	}

	ok, err := h.store.CreateDirectory(r.Context(), path)
	h.record("create_directory", start, err)
	if err != nil {
		h.storageError(w, r, "create_directory", err)
		return
	}

	h.writeJSON(w, operationResult(ok, path))
}

// HandleDeleteDirectory removes an empty directory.
//
// URL format: DELETE /api/directories/{path}
//
// Response: JSON OperationResult, 400 when the path is missing or not a
// directory.
func (h *Handler) HandleDeleteDirectory(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	path, reqErr := filePath(r)
	if reqErr != nil {
		http.Error(w, reqErr.Error(), reqErr.StatusCode)
		return
	}

	ok, err := h.store.DeleteDirectory(r.Context(), path)
	h.record("delete_directory", start, err)
	if err != nil {
		h.storageError(w, r, "delete_directory", err)
		return
	}

	h.writeJSON(w, operationResult(ok, path))
}

// HandleTransfer copies or moves a file.
//
// URL format: POST /api/transfer?op=copy|move
//
// Request body: JSON TransferRequest naming the source and destination.
// The destination is replaced when it already exists; a missing source
// yields Success=false.
//
// Response: JSON OperationResult for the destination path.
func (h *Handler) HandleTransfer(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	body, reqErr := readBody(w, r)
	if reqErr != nil {
		http.Error(w, reqErr.Error(), reqErr.StatusCode)
		return
	}

	var req api.TransferRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, fmt.Sprintf("invalid transfer request: %v", err), http.StatusBadRequest)
		return
	}
	if req.From == "" || req.To == "" {
		http.Error(w, "transfer requires both from and to paths", http.StatusBadRequest)
		return
	}

	op := r.URL.Query().Get(api.QueryOp)
	var ok bool
	var err error
	switch op {
	case api.OpCopy:
		ok, err = h.store.Copy(r.Context(), req.From, req.To)
	case api.OpMove:
		ok, err = h.store.Move(r.Context(), req.From, req.To)
	default:
		http.Error(w, fmt.Sprintf("invalid op %q, expected %q or %q", op, api.OpCopy, api.OpMove), http.StatusBadRequest)
		return
	}

	h.record(op, start, err)
	if err != nil {
		h.storageError(w, r, op, err)
		return
	}

	h.writeJSON(w, operationResult(ok, req.To))
}
