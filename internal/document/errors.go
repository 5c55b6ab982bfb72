package document

import "errors"

// Extraction errors. All of them are recoverable: callers report the failure
// and keep going, they never terminate the process.
var (
	// ErrNotFound means the source path does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrUnsupportedFormat means the file extension is not in the
	// registered adapter table.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrNoContent means extraction succeeded mechanically but produced
	// nothing usable (empty pages, empty runs, blank body).
	ErrNoContent = errors.New("no text content extracted")

	// ErrFetch means a web source could not be retrieved (network failure
	// or non-2xx status).
	ErrFetch = errors.New("failed to fetch web content")
)
