/*
Package api defines the wire types shared by the storage HTTP server and its
clients.

The package holds the JSON DTOs exchanged over the file API, the query
parameter names both sides agree on, and the StorageProvider interface that
abstracts the server for consumers.

# Wire Types

  - OperationResult - outcome of a mutating operation (write, delete, copy)
  - FileMetadata - existence, size, modification time and resolved location
  - ListResponse - file or directory listing with its query echoed back
  - TransferRequest - source and destination of a copy or move

# Conventions

Mutating operations follow the storage layer's boolean-success convention:
a response with Success=false means the operation did not take effect (for
example deleting a file that was already gone), while transport or taxonomy
failures surface as HTTP error statuses.

Paths appear in URLs below /api/files/ and /api/directories/ and are
interpreted relative to the backend root. Listing endpoints take the
directory through the dir query parameter instead, so the bare collection
URL stays addressable.

See the clients subpackage for the HTTP client implementation.
*/
package api
