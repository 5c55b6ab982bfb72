package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestINIRoundTripRecognizedKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.ini")

	in := map[string]any{
		"voice_id":             3,
		"rate":                 175.5,
		"volume":               0.8,
		"chunk_size":           800,
		"pause_between_chunks": 0.75,
	}
	if err := ExportINI(path, in); err != nil {
		t.Fatal(err)
	}

	out, err := ImportINI(path)
	if err != nil {
		t.Fatal(err)
	}

	if out["voice_id"] != 3 {
		t.Errorf("voice_id: %v (%T)", out["voice_id"], out["voice_id"])
	}
	if out["rate"] != 175.5 {
		t.Errorf("rate: %v (%T)", out["rate"], out["rate"])
	}
	if out["chunk_size"] != 800 {
		t.Errorf("chunk_size: %v (%T)", out["chunk_size"], out["chunk_size"])
	}
	if out["pause_between_chunks"] != 0.75 {
		t.Errorf("pause: %v (%T)", out["pause_between_chunks"], out["pause_between_chunks"])
	}
}

func TestINISections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.ini")
	if err := ExportINI(path, map[string]any{
		"voice_id":   1,
		"chunk_size": 500,
		"theme":      "dark",
	}); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)

	for _, section := range []string{"[Voice]", "[Processing]", "[General]"} {
		if !strings.Contains(content, section) {
			t.Errorf("missing section %s in:\n%s", section, content)
		}
	}
}

func TestINIUnrecognizedKeysStayStrings(t *testing.T) {
	// The catch-all section carries no type information; values come back
	// as strings and stay that way.
	path := filepath.Join(t.TempDir(), "settings.ini")
	if err := ExportINI(path, map[string]any{"retries": 5}); err != nil {
		t.Fatal(err)
	}

	out, err := ImportINI(path)
	if err != nil {
		t.Fatal(err)
	}
	if got, ok := out["retries"].(string); !ok || got != "5" {
		t.Errorf("retries: %v (%T), want string", out["retries"], out["retries"])
	}
}

func TestINIImportBadNumber(t *testing.T) {
	// A recognized key with an unparseable value survives as a string
	// rather than failing the import.
	path := filepath.Join(t.TempDir(), "settings.ini")
	content := "[Voice]\nrate = very fast\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := ImportINI(path)
	if err != nil {
		t.Fatal(err)
	}
	if out["rate"] != "very fast" {
		t.Errorf("rate: %v", out["rate"])
	}
}

func TestINIImportMissingFile(t *testing.T) {
	if _, err := ImportINI(filepath.Join(t.TempDir(), "nope.ini")); err == nil {
		t.Fatal("expected error")
	}
}
