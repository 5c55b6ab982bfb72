package document

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/ledongthuc/pdf"
)

// readPDF extracts text page by page. Pages that yield only whitespace are
// silently skipped; a page-level extraction failure is logged and skipped.
// The whole read fails with ErrNoContent only when no page produced text.
func readPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	total := r.NumPage()
	log.Debug("reading pdf", "path", path, "pages", total)

	var pages []string
	for n := 1; n <= total; n++ {
		text, err := pdfPageText(r, n)
		if err != nil {
			log.Warn("skipping unreadable pdf page", "path", path, "page", n, "err", err)
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, fmt.Sprintf("--- Page %d ---\n%s", n, text))
	}

	return joinSections(pages, path)
}

// pdfPageText extracts one page, converting parser panics into errors so a
// single malformed page cannot take down the whole document.
func pdfPageText(r *pdf.Reader, n int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("page parser panic: %v", rec)
		}
	}()

	page := r.Page(n)
	if page.V.IsNull() {
		return "", fmt.Errorf("page %d is null", n)
	}
	return page.GetPlainText(nil)
}

// joinSections assembles per-page/per-slide/per-paragraph sections into the
// final document text, enforcing the shared NoContent policy.
func joinSections(sections []string, source string) (string, error) {
	if len(sections) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoContent, source)
	}
	return strings.TrimSpace(strings.Join(sections, "\n\n")), nil
}
