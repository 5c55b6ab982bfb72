package document

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeArchive builds an OOXML container from part name to part content.
func writeArchive(t *testing.T, name string, parts map[string]string) string {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for partName, content := range parts {
		w, err := zw.Create(partName)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const docxHeader = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`

const docxFooter = `</w:body></w:document>`

func docxParagraph(text string) string {
	return `<w:p><w:r><w:t>` + text + `</w:t></w:r></w:p>`
}

func TestReadDOCX(t *testing.T) {
	body := docxParagraph("First paragraph.") +
		`<w:p><w:r><w:t>   </w:t></w:r></w:p>` + // whitespace-only, skipped
		`<w:tbl>` +
		`<w:tr><w:tc>` + docxParagraph("Name") + `</w:tc><w:tc>` + docxParagraph("Age") + `</w:tc></w:tr>` +
		`<w:tr><w:tc>` + docxParagraph("Ada") + `</w:tc><w:tc>` + docxParagraph("36") + `</w:tc></w:tr>` +
		`</w:tbl>` +
		docxParagraph("After the table.")

	path := writeArchive(t, "report.docx", map[string]string{
		"word/document.xml": docxHeader + body + docxFooter,
	})

	got, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}

	want := "First paragraph.\n\n--- Table ---\nName | Age\nAda | 36\n\nAfter the table."
	if got != want {
		t.Errorf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestReadDOCXSplitRuns(t *testing.T) {
	// Word splits a visually contiguous sentence across runs; the text must
	// come back joined.
	body := `<w:p><w:r><w:t>Hello, </w:t></w:r><w:r><w:t>world.</w:t></w:r></w:p>`
	path := writeArchive(t, "runs.docx", map[string]string{
		"word/document.xml": docxHeader + body + docxFooter,
	})

	got, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != "Hello, world." {
		t.Errorf("got %q", got)
	}
}

func TestReadDOCXEmpty(t *testing.T) {
	path := writeArchive(t, "empty.docx", map[string]string{
		"word/document.xml": docxHeader + docxFooter,
	})
	_, err := Read(path)
	if !errors.Is(err, ErrNoContent) {
		t.Fatalf("expected ErrNoContent, got %v", err)
	}
}

func TestReadDOCXMissingPart(t *testing.T) {
	path := writeArchive(t, "broken.docx", map[string]string{
		"word/styles.xml": "<x/>",
	})
	if _, err := Read(path); err == nil {
		t.Fatal("expected error for archive without word/document.xml")
	}
}

func TestReadDOCXNotAZip(t *testing.T) {
	path := writeFile(t, "fake.docx", []byte("this is not a zip archive"))
	if _, err := Read(path); err == nil {
		t.Fatal("expected error for non-zip file")
	}
}

func slideXML(texts ...string) string {
	out := `<?xml version="1.0" encoding="UTF-8"?>
<p:sld xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"><p:cSld><p:spTree>`
	for _, text := range texts {
		out += `<p:sp><p:txBody><a:p><a:r><a:t>` + text + `</a:t></a:r></a:p></p:txBody></p:sp>`
	}
	return out + `</p:spTree></p:cSld></p:sld>`
}

func TestReadPPTX(t *testing.T) {
	path := writeArchive(t, "deck.pptx", map[string]string{
		"ppt/slides/slide1.xml": slideXML("Title Slide", "Subtitle"),
		"ppt/slides/slide2.xml": slideXML("Agenda"),
	})

	got, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}

	want := "--- Slide 1 ---\nTitle Slide\nSubtitle\n\n--- Slide 2 ---\nAgenda"
	if got != want {
		t.Errorf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestReadPPTXNumericSlideOrder(t *testing.T) {
	// slide10 must come after slide2, not between slide1 and slide2.
	path := writeArchive(t, "big.pptx", map[string]string{
		"ppt/slides/slide10.xml": slideXML("ten"),
		"ppt/slides/slide1.xml":  slideXML("one"),
		"ppt/slides/slide2.xml":  slideXML("two"),
	})

	got, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}

	want := "--- Slide 1 ---\none\n\n--- Slide 2 ---\ntwo\n\n--- Slide 10 ---\nten"
	if got != want {
		t.Errorf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestReadPPTXSkipsEmptySlides(t *testing.T) {
	path := writeArchive(t, "gaps.pptx", map[string]string{
		"ppt/slides/slide1.xml": slideXML(),
		"ppt/slides/slide2.xml": slideXML("only content"),
	})

	got, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != "--- Slide 2 ---\nonly content" {
		t.Errorf("got %q", got)
	}
}

func TestReadPPTXAllEmpty(t *testing.T) {
	path := writeArchive(t, "void.pptx", map[string]string{
		"ppt/slides/slide1.xml": slideXML(),
	})
	_, err := Read(path)
	if !errors.Is(err, ErrNoContent) {
		t.Fatalf("expected ErrNoContent, got %v", err)
	}
}
