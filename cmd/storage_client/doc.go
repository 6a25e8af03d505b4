// Package main (cmd/storage_client) implements the stowage command line
// client.
//
// The client talks to a storage backend directly through its location URI,
// without going through the HTTP server. Every subcommand takes the backend
// from the --storage-uri flag, so the same invocations work against a local
// directory tree and an S3 bucket.
//
// Usage examples:
//
//	stowage --storage-uri=file:///var/lib/stowage/ write docs/note.txt --input=note.txt
//	stowage --storage-uri=file:///var/lib/stowage/ read docs/note.txt
//	stowage --storage-uri=file:///var/lib/stowage/ append docs/note.txt --input=- --separator=', '
//	stowage --storage-uri=file:///var/lib/stowage/ ls docs --recursive
//	stowage --storage-uri=file:///var/lib/stowage/ stat docs/note.txt
//	stowage --storage-uri='s3://my-bucket/?region=us-west-2' cp docs/note.txt backup/note.txt
//
// Commands that report a boolean failure (for example copying a missing
// source file) exit with status 1 and the message "operation failed";
// taxonomy errors such as path traversal attempts exit with the underlying
// error message.
package main
