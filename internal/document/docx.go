package document

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// readDOCX extracts paragraph text and flattened table cell text from a Word
// document, skipping empty runs. Fails with ErrNoContent when nothing
// extractable remains.
func readDOCX(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	zr, err := openOOXML(path, data)
	if err != nil {
		return "", err
	}

	part, err := ooxmlPart(zr, "word/document.xml")
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}

	sections, err := docxSections(part)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return joinSections(sections, path)
}

// docxSections walks the document body in order. Paragraphs become one
// section each; tables become a single "--- Table ---" section.
func docxSections(part []byte) ([]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(part))
	var sections []string
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed xml: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch se.Name.Local {
		case "p":
			text, err := collectText(dec)
			if err != nil {
				return nil, err
			}
			if s := strings.TrimSpace(text); s != "" {
				sections = append(sections, s)
			}
		case "tbl":
			table, err := collectTable(dec)
			if err != nil {
				return nil, err
			}
			if table != "" {
				sections = append(sections, "--- Table ---\n"+table)
			}
		}
	}
	return sections, nil
}
