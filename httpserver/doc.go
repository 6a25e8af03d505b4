/*
Package httpserver implements the HTTP server for the storage service.

It exposes the file API over a single storage backend: file content
up- and download, append/prepend merging, metadata lookups, directory
listings and management, and copy/move transfers. All operations go
through the storage facade, so path validation and error taxonomy match
direct library use.

# API Features

  - File read, write (with overwrite control), append, prepend and delete
  - File metadata: existence, size, modification time, resolved location
  - Directory listings (flat or recursive), creation and deletion
  - Copy and move between paths on the same backend
  - Health and diagnostics endpoints
  - Prometheus metrics on a separate listener

# Endpoints

	GET    /api/files?dir=&recursive=       list files
	GET    /api/files/{path}                read file content
	PUT    /api/files/{path}?overwrite=     write file content
	PATCH  /api/files/{path}?mode=&separator=  append or prepend
	DELETE /api/files/{path}                delete file
	GET    /api/metadata/{path}             file metadata
	GET    /api/directories?dir=&recursive= list directories
	POST   /api/directories/{path}          create directory
	DELETE /api/directories/{path}          delete empty directory
	POST   /api/transfer?op=copy|move       copy or move a file
	GET    /livez, /readyz, /drain, /undrain

# Health Monitoring

The server provides health check endpoints for integration with load
balancers and orchestration systems:

  - /livez - liveness probe, always responds when the process is up
  - /readyz - readiness probe, reflects the drain state
  - /drain - marks the server as not ready and waits out the drain duration
  - /undrain - marks the server as ready again

# Error Mapping

Storage taxonomy errors translate to HTTP statuses: a write conflict is
409, a missing file is 404, invalid paths, traversal attempts and
directory misuse are 400. Boolean-failure outcomes are not errors; they
arrive as a 200 response with success=false.
*/
package httpserver
