package document

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
)

// Some sites refuse requests without a browser-like identification header.
const webUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

const webTimeout = 10 * time.Second

var webClient = &http.Client{Timeout: webTimeout}

// ReadURL fetches a web page and extracts its visible text: script and style
// markup is stripped, runs of whitespace collapse into single spaces. Network
// failures and non-2xx statuses fail with ErrFetch; an empty stripped body
// fails with ErrNoContent.
func ReadURL(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetch, err)
	}
	req.Header.Set("User-Agent", webUserAgent)

	resp, err := webClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %s returned HTTP %d", ErrFetch, url, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: parse %s: %v", ErrFetch, url, err)
	}

	doc.Find("script, style").Remove()
	text := strings.Join(strings.Fields(doc.Text()), " ")
	if text == "" {
		return "", fmt.Errorf("%w: %s", ErrNoContent, url)
	}

	log.Debug("extracted web content", "url", url, "size", humanize.Bytes(uint64(len(text))))
	return text, nil
}
