package speech

import (
	"errors"
	"testing"
)

func TestNewUnknownEngine(t *testing.T) {
	_, err := New("festival", "")
	if !errors.Is(err, ErrEngineInit) {
		t.Fatalf("expected ErrEngineInit, got %v", err)
	}
}

func TestNewGTranslateByName(t *testing.T) {
	e, err := New("gtranslate", "")
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close() //nolint:errcheck
	if e.Name() != "gtranslate" {
		t.Errorf("got engine %q", e.Name())
	}
}

func TestNewAutoNeverFails(t *testing.T) {
	// Auto selection falls back to the network engine when espeak-ng is
	// not installed, so it always yields something.
	e, err := New("", "")
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close() //nolint:errcheck
	if e.Name() != "espeak" && e.Name() != "gtranslate" {
		t.Errorf("unexpected engine %q", e.Name())
	}
}

func TestNewGoogleCloudRequiresCredentials(t *testing.T) {
	_, err := New("googlecloud", "")
	if !errors.Is(err, ErrEngineInit) {
		t.Fatalf("expected ErrEngineInit, got %v", err)
	}
}
