package speech

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func writeCreds(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "creds.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNewGoogleCloudCredentials(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantKey string
		wantErr bool
	}{
		{name: "json wrapped", content: `{"api_key": "sk-123"}`, wantKey: "sk-123"},
		{name: "bare key", content: "sk-456\n", wantKey: "sk-456"},
		{name: "empty file", content: "", wantErr: true},
		{name: "json without key", content: `{"other": "field"}`, wantKey: `{"other": "field"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewGoogleCloud(writeCreds(t, tt.content))
			if tt.wantErr {
				if !errors.Is(err, ErrEngineInit) {
					t.Fatalf("expected ErrEngineInit, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if c.apiKey != tt.wantKey {
				t.Errorf("got key %q, want %q", c.apiKey, tt.wantKey)
			}
		})
	}
}

func TestNewGoogleCloudMissingFile(t *testing.T) {
	if _, err := NewGoogleCloud(""); !errors.Is(err, ErrEngineInit) {
		t.Errorf("empty path: %v", err)
	}
	if _, err := NewGoogleCloud("/nonexistent/creds.json"); !errors.Is(err, ErrEngineInit) {
		t.Errorf("missing file: %v", err)
	}
}

func TestGoogleCloudVoicesCapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "sk-123" {
			t.Errorf("missing api key in query")
		}
		var voices []gcloudVoice
		for i := 0; i < 50; i++ {
			voices = append(voices, gcloudVoice{
				Name:          fmt.Sprintf("en-US-Standard-%d", i),
				LanguageCodes: []string{"en-US"},
				SsmlGender:    "FEMALE",
			})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"voices": voices})
	}))
	defer srv.Close()

	c, err := NewGoogleCloud(writeCreds(t, `{"api_key": "sk-123"}`))
	if err != nil {
		t.Fatal(err)
	}
	c.baseURL = srv.URL

	voices, err := c.Voices()
	if err != nil {
		t.Fatal(err)
	}
	if len(voices) != gcloudMaxVoices {
		t.Fatalf("got %d voices, want cap of %d", len(voices), gcloudMaxVoices)
	}
	if voices[0].Gender != "female" {
		t.Errorf("gender not normalized: %q", voices[0].Gender)
	}
}

func TestGoogleCloudSaveToFile(t *testing.T) {
	audio := []byte("mp3 bytes here")
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/text:synthesize" {
			t.Errorf("path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Error(err)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"audioContent": base64.StdEncoding.EncodeToString(audio),
		})
	}))
	defer srv.Close()

	c, err := NewGoogleCloud(writeCreds(t, "sk-789"))
	if err != nil {
		t.Fatal(err)
	}
	c.baseURL = srv.URL
	if err := c.SetRate(1.5); err != nil {
		t.Fatal(err)
	}
	if err := c.SetVolume(0.5); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "out.mp3")
	if err := c.SaveToFile(context.Background(), "Read me aloud", path); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(audio) {
		t.Errorf("decoded audio mismatch: %q", got)
	}

	input := gotBody["input"].(map[string]any)
	if input["text"] != "Read me aloud" {
		t.Errorf("input text: %v", input["text"])
	}
	cfg := gotBody["audioConfig"].(map[string]any)
	if cfg["audioEncoding"] != "MP3" {
		t.Errorf("encoding: %v", cfg["audioEncoding"])
	}
	if cfg["speakingRate"].(float64) != 1.5 {
		t.Errorf("speakingRate: %v", cfg["speakingRate"])
	}
	if cfg["volumeGainDb"].(float64) != 8.0 {
		t.Errorf("volumeGainDb: %v, want 0.5*16", cfg["volumeGainDb"])
	}
}

func TestGoogleCloudSaveToFileAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": {"message": "quota exceeded"}}`, http.StatusForbidden)
	}))
	defer srv.Close()

	c, err := NewGoogleCloud(writeCreds(t, "sk-789"))
	if err != nil {
		t.Fatal(err)
	}
	c.baseURL = srv.URL

	err = c.SaveToFile(context.Background(), "hello", filepath.Join(t.TempDir(), "x.mp3"))
	if err == nil {
		t.Fatal("expected error from 403 response")
	}
}

func TestGoogleCloudRateBounds(t *testing.T) {
	c := &GoogleCloud{rateVal: 1.0, volume: 0.9}
	if err := c.SetRate(0.1); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("rate below minimum: %v", err)
	}
	if err := c.SetRate(4.1); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("rate above maximum: %v", err)
	}
	if c.rateVal != 1.0 {
		t.Errorf("rejected rate mutated state: %v", c.rateVal)
	}
}
