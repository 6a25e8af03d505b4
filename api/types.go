package api

// Query parameter names shared by the HTTP server and the client.
const (
	// QueryDir selects the directory whose entries are listed.
	QueryDir = "dir"

	// QueryRecursive switches listings to the full subtree when "true".
	QueryRecursive = "recursive"

	// QueryOverwrite allows a write to replace an existing file when "true".
	QueryOverwrite = "overwrite"

	// QueryMode selects how a PATCH merges content: ModeAppend or ModePrepend.
	QueryMode = "mode"

	// QuerySeparator overrides the separator inserted between existing and
	// new content on PATCH requests.
	QuerySeparator = "separator"

	// QueryOp selects the transfer operation: OpCopy or OpMove.
	QueryOp = "op"
)

// Values accepted by the QueryMode parameter.
const (
	ModeAppend  = "append"
	ModePrepend = "prepend"
)

// Values accepted by the QueryOp parameter.
const (
	OpCopy = "copy"
	OpMove = "move"
)

// StorageProvider is the client-side view of the storage API. It abstracts
// the HTTP server so consumers can be tested against a mock.
type StorageProvider interface {
	// ReadFile returns the raw content of the file at path.
	ReadFile(path string) ([]byte, error)

	// WriteFile stores content at path. Overwrite must be set to replace an
	// existing file; contentType is forwarded as object metadata when the
	// backend supports it.
	WriteFile(path string, content []byte, overwrite bool, contentType string) (*OperationResult, error)

	// AppendToFile merges content after the existing file content, inserting
	// separator between the two. A missing file is created without the
	// separator.
	AppendToFile(path string, content []byte, separator string) (*OperationResult, error)

	// PrependToFile merges content before the existing file content.
	PrependToFile(path string, content []byte, separator string) (*OperationResult, error)

	// DeleteFile removes the file at path.
	DeleteFile(path string) (*OperationResult, error)

	// GetMetadata reports existence, size, modification time and resolved
	// location for path. A missing file yields Exists=false, not an error.
	GetMetadata(path string) (*FileMetadata, error)

	// ListFiles returns the files under dir.
	ListFiles(dir string, recursive bool) (*ListResponse, error)

	// ListDirectories returns the directories under dir.
	ListDirectories(dir string, recursive bool) (*ListResponse, error)

	// CreateDirectory creates the directory at path, including parents.
	CreateDirectory(path string) (*OperationResult, error)

	// DeleteDirectory removes the empty directory at path.
	DeleteDirectory(path string) (*OperationResult, error)

	// Copy duplicates the file at from to to, replacing any existing file.
	Copy(from, to string) (*OperationResult, error)

	// Move relocates the file at from to to.
	Move(from, to string) (*OperationResult, error)
}

// OperationResult reports the outcome of a mutating storage operation.
type OperationResult struct {
	// Success mirrors the boolean-success convention of the storage layer:
	// false means the operation did not take effect, not that the request
	// was malformed.
	Success bool `json:"success"`

	// Path is the file or directory path the operation applied to.
	Path string `json:"path"`

	// Error carries a short description when the operation failed outright.
	Error string `json:"error,omitempty"`
}

// FileMetadata describes a single stored file.
type FileMetadata struct {
	// Path is the path the file was requested under.
	Path string `json:"path"`

	// Exists reports whether the file is present on the backend.
	Exists bool `json:"exists"`

	// Size is the file size in bytes, zero when unknown.
	Size int64 `json:"size"`

	// LastModified is the modification time as a unix timestamp in seconds,
	// zero when unknown.
	LastModified int64 `json:"last_modified"`

	// Location is the backend-resolved path: absolute filesystem path for
	// local backends, the object key for object stores.
	Location string `json:"location,omitempty"`

	// Backend identifies the backend serving the file.
	Backend string `json:"backend"`
}

// ListResponse carries a directory listing.
type ListResponse struct {
	// Dir is the directory that was listed, empty for the root.
	Dir string `json:"dir"`

	// Recursive reports whether the listing covers the full subtree.
	Recursive bool `json:"recursive"`

	// Entries holds paths relative to the backend root, in natural order.
	Entries []string `json:"entries"`
}

// TransferRequest names the source and destination of a copy or move.
type TransferRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}
