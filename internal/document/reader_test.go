package document

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.txt"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReadUnsupportedFormat(t *testing.T) {
	path := writeFile(t, "doc.xyz", []byte("content"))
	_, err := Read(path)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if !strings.Contains(err.Error(), ".txt") {
		t.Errorf("error should list supported formats, got %q", err)
	}
}

func TestReadTextFile(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		want    string
		wantErr error
	}{
		{
			name:    "plain ascii",
			content: []byte("Hello, world.\nSecond line."),
			want:    "Hello, world.\nSecond line.",
		},
		{
			name:    "utf8 accents",
			content: []byte("Le café est prêt. Le café est prêt. Le café est prêt."),
			want:    "Le café est prêt. Le café est prêt. Le café est prêt.",
		},
		{
			name:    "surrounding whitespace trimmed",
			content: []byte("\n\n  trimmed  \n\n"),
			want:    "trimmed",
		},
		{
			name:    "empty file",
			content: nil,
			wantErr: ErrNoContent,
		},
		{
			name:    "whitespace only",
			content: []byte("   \n\t  \n"),
			wantErr: ErrNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "doc.txt", tt.content)
			got, err := Read(path)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReadExtensionCaseInsensitive(t *testing.T) {
	path := writeFile(t, "DOC.TXT", []byte("shouting"))
	got, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != "shouting" {
		t.Errorf("got %q", got)
	}
}

func TestSupported(t *testing.T) {
	want := []string{".docx", ".pdf", ".pptx", ".txt"}
	got := Supported()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
			break
		}
	}
}

func TestIsSupported(t *testing.T) {
	for path, want := range map[string]bool{
		"report.pdf":   true,
		"slides.PPTX":  true,
		"notes.txt":    true,
		"doc.docx":     true,
		"image.png":    false,
		"no-extension": false,
	} {
		if got := IsSupported(path); got != want {
			t.Errorf("IsSupported(%q) = %v, want %v", path, got, want)
		}
	}
}
