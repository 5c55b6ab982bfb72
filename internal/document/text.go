package document

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/htmlindex"
)

// readText reads a plain text file, sniffing the byte-level encoding before
// decoding. Unknown or undecodable charsets fall back to interpreting the
// bytes as UTF-8.
func readText(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	content := decodeBytes(raw)
	content = strings.TrimSpace(content)
	if content == "" {
		return "", fmt.Errorf("%w: %s", ErrNoContent, path)
	}
	return content, nil
}

// decodeBytes converts raw file bytes to a UTF-8 string using charset
// detection. Detection is heuristic; any failure falls back to UTF-8.
func decodeBytes(raw []byte) string {
	result, err := chardet.NewTextDetector().DetectBest(raw)
	if err != nil || result.Charset == "" {
		return string(raw)
	}

	enc, err := htmlindex.Get(strings.ToLower(result.Charset))
	if err != nil {
		log.Debug("unknown charset, assuming UTF-8", "charset", result.Charset)
		return string(raw)
	}

	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		log.Debug("charset decode failed, assuming UTF-8", "charset", result.Charset, "err", err)
		return string(raw)
	}
	return string(decoded)
}
