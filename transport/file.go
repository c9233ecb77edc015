package transport

import "io"

// File is an upload part for multipart/form-data bodies.
type File struct {
	// Name is the file name reported to the server.
	Name string
	// ContentType defaults to application/octet-stream.
	ContentType string
	// Content is read once when the body is encoded.
	Content io.Reader
}
