package document

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var slidePartRe = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// readPPTX extracts shape text from each slide in presentation order. Slides
// with no extractable text are skipped; the read fails with ErrNoContent when
// every slide was empty.
func readPPTX(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	zr, err := openOOXML(path, data)
	if err != nil {
		return "", err
	}

	// Part names carry the slide number; archive order is not reliable.
	numbers := make([]int, 0, len(zr.File))
	for _, f := range zr.File {
		if m := slidePartRe.FindStringSubmatch(f.Name); m != nil {
			n, _ := strconv.Atoi(m[1])
			numbers = append(numbers, n)
		}
	}
	sort.Ints(numbers)

	var sections []string
	for _, n := range numbers {
		part, err := ooxmlPart(zr, fmt.Sprintf("ppt/slides/slide%d.xml", n))
		if err != nil {
			return "", fmt.Errorf("%s: %w", path, err)
		}
		shapes, err := slideShapes(part)
		if err != nil {
			return "", fmt.Errorf("%s slide %d: %w", path, n, err)
		}
		if len(shapes) == 0 {
			continue
		}
		sections = append(sections, fmt.Sprintf("--- Slide %d ---\n%s", n, strings.Join(shapes, "\n")))
	}

	return joinSections(sections, path)
}

// slideShapes returns the trimmed text of each shape on a slide, in document
// order, skipping shapes without text.
func slideShapes(part []byte) ([]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(part))
	var shapes []string
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed xml: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "sp" {
			continue
		}
		text, err := collectText(dec)
		if err != nil {
			return nil, err
		}
		if s := strings.TrimSpace(text); s != "" {
			shapes = append(shapes, s)
		}
	}
	return shapes, nil
}
