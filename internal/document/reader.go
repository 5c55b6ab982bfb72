// Package document extracts plain text from local documents and web pages.
//
// One adapter exists per format (plain text, PDF, DOCX, PPTX, web page); the
// Reader facade dispatches to the right adapter by file extension. Every
// adapter produces a single UTF-8 string or one of the sentinel errors in
// errors.go.
package document

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// adapter converts one document format into plain text.
type adapter func(path string) (string, error)

// The dispatch table is closed: formats are registered here and nowhere else.
var adapters = map[string]adapter{
	".txt":  readText,
	".pdf":  readPDF,
	".docx": readDOCX,
	".pptx": readPPTX,
}

// Read extracts text from a local file, dispatching by extension
// (case-insensitive). The file must exist before any parse is attempted.
func Read(path string) (string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, path)
	} else if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	read, ok := adapters[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedFormat, ext, strings.Join(Supported(), ", "))
	}
	return read(path)
}

// Supported returns the registered extensions in stable order.
func Supported() []string {
	exts := make([]string, 0, len(adapters))
	for ext := range adapters {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// IsSupported reports whether the path's extension has a registered adapter.
func IsSupported(path string) bool {
	_, ok := adapters[strings.ToLower(filepath.Ext(path))]
	return ok
}
