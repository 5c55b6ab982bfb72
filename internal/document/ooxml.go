package document

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// DOCX and PPTX are both OOXML containers: a zip archive of XML parts. The
// helpers here walk those parts with a streaming token scan, pulling the
// character data out of <w:t>/<a:t> text runs while ignoring layout markup.

// ooxmlPart reads one named part out of an OOXML archive.
func ooxmlPart(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open part %s: %w", name, err)
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("part %s missing from archive", name)
}

// openOOXML opens a document as a zip archive.
func openOOXML(path string, data []byte) (*zip.Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return zr, nil
}

// collectText consumes tokens up to the end of the current element,
// concatenating the character data of every text run ("t" element) inside.
func collectText(dec *xml.Decoder) (string, error) {
	var sb strings.Builder
	depth := 1
	inRun := 0
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return "", fmt.Errorf("malformed xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if t.Name.Local == "t" {
				inRun++
			}
		case xml.EndElement:
			if t.Name.Local == "t" && inRun > 0 {
				inRun--
			}
			depth--
		case xml.CharData:
			if inRun > 0 {
				sb.Write(t)
			}
		}
	}
	return sb.String(), nil
}

// collectTable consumes a <w:tbl> subtree, flattening each row's cell text
// into "cell | cell | cell" lines. Empty cells are skipped.
func collectTable(dec *xml.Decoder) (string, error) {
	var rows []string
	var row []string
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return "", fmt.Errorf("malformed xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "tc" {
				// collectText consumes the matching end element, so
				// the cell does not contribute to our depth count.
				cell, err := collectText(dec)
				if err != nil {
					return "", err
				}
				if s := strings.TrimSpace(cell); s != "" {
					row = append(row, s)
				}
				continue
			}
			depth++
			if t.Name.Local == "tr" {
				row = nil
			}
		case xml.EndElement:
			if t.Name.Local == "tr" && len(row) > 0 {
				rows = append(rows, strings.Join(row, " | "))
				row = nil
			}
			depth--
		}
	}
	return strings.Join(rows, "\n"), nil
}
