/*
Package clients provides the HTTP client for the storage file API.

FileClient implements api.StorageProvider against a running storage server,
covering file content, metadata, listings, directory management and
copy/move transfers. MockStorageClient is a testify-based mock of the same
interface for consumers that want to test without a server.

# Error Handling

Responses with error statuses are mapped back onto the storage error
taxonomy where the mapping is unambiguous: 404 unwraps to
interfaces.ErrFileNotFound and 409 to interfaces.ErrFileExists, so callers
can use errors.Is on client errors the same way they would on direct
storage errors. Other error statuses surface as plain errors carrying the
server's message.

# Example Usage

	client := &clients.FileClient{ServerAddr: "http://localhost:8080"}

	result, err := client.WriteFile("notes/todo.txt", []byte("ship it"), false, "text/plain")
	if err != nil {
	    log.Fatal(err)
	}

	content, err := client.ReadFile("notes/todo.txt")

	listing, err := client.ListFiles("notes", true)
*/
package clients
