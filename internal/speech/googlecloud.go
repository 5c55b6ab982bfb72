package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Google Cloud speaking rate bounds, per the API contract.
const (
	gcloudMinRate = 0.25
	gcloudMaxRate = 4.0

	// gcloudMaxVoices caps the voice list; the full catalog runs to
	// hundreds of entries and drowns out the useful ones.
	gcloudMaxVoices = 20

	gcloudEndpoint = "https://texttospeech.googleapis.com"
)

// GoogleCloud synthesizes speech through the Cloud Text-to-Speech REST API.
// Like the free engine it renders files only; Speak validates and reports
// success without sound. Volume maps onto the API's dB gain field.
type GoogleCloud struct {
	client *http.Client
	apiKey string

	// baseURL is swapped out by tests.
	baseURL string

	mu         sync.RWMutex
	voiceIndex int
	voiceName  string
	voiceLang  string
	rateVal    float64
	volume     float64
}

// NewGoogleCloud reads the API key from the credentials file at path. The
// file holds either a JSON object with an "api_key" field or the bare key.
func NewGoogleCloud(credentialsPath string) (*GoogleCloud, error) {
	if credentialsPath == "" {
		return nil, fmt.Errorf("%w: no google cloud credentials configured", ErrEngineInit)
	}
	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("%w: read credentials: %v", ErrEngineInit, err)
	}

	key := strings.TrimSpace(string(data))
	var wrapped struct {
		APIKey string `json:"api_key"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.APIKey != "" {
		key = wrapped.APIKey
	}
	if key == "" {
		return nil, fmt.Errorf("%w: credentials file holds no key", ErrEngineInit)
	}

	return &GoogleCloud{
		client:     &http.Client{Timeout: 30 * time.Second},
		apiKey:     key,
		baseURL:    gcloudEndpoint,
		voiceIndex: 0,
		voiceLang:  "en-US",
		rateVal:    1.0,
		volume:     espeakDefaultVolume,
	}, nil
}

func (c *GoogleCloud) Name() string { return "googlecloud" }

type gcloudVoice struct {
	Name          string   `json:"name"`
	LanguageCodes []string `json:"languageCodes"`
	SsmlGender    string   `json:"ssmlGender"`
}

// Voices lists the API's voice catalog, capped to the first gcloudMaxVoices
// entries.
func (c *GoogleCloud) Voices() ([]Voice, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/voices?key="+c.apiKey, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list voices: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list voices: unexpected status %s", resp.Status)
	}

	var payload struct {
		Voices []gcloudVoice `json:"voices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("list voices: %w", err)
	}

	if len(payload.Voices) > gcloudMaxVoices {
		payload.Voices = payload.Voices[:gcloudMaxVoices]
	}

	voices := make([]Voice, len(payload.Voices))
	for i, v := range payload.Voices {
		voices[i] = Voice{
			Index:     i,
			Name:      v.Name,
			Languages: v.LanguageCodes,
			Gender:    strings.ToLower(v.SsmlGender),
		}
	}
	return voices, nil
}

func (c *GoogleCloud) SetVoice(index int) error {
	voices, err := c.Voices()
	if err != nil {
		return err
	}
	if index < 0 || index >= len(voices) {
		return fmt.Errorf("%w: voice index %d (have %d voices)", ErrInvalidParameter, index, len(voices))
	}

	lang := "en-US"
	if len(voices[index].Languages) > 0 {
		lang = voices[index].Languages[0]
	}

	c.mu.Lock()
	c.voiceIndex = index
	c.voiceName = voices[index].Name
	c.voiceLang = lang
	c.mu.Unlock()
	return nil
}

func (c *GoogleCloud) SetRate(rateVal float64) error {
	if rateVal < gcloudMinRate || rateVal > gcloudMaxRate {
		return fmt.Errorf("%w: rate %.2f (accepted %.2f-%.2f)", ErrInvalidParameter, rateVal, gcloudMinRate, gcloudMaxRate)
	}
	c.mu.Lock()
	c.rateVal = rateVal
	c.mu.Unlock()
	return nil
}

func (c *GoogleCloud) SetVolume(volume float64) error {
	if volume < 0.0 || volume > 1.0 {
		return fmt.Errorf("%w: volume %.2f (accepted 0.0-1.0)", ErrInvalidParameter, volume)
	}
	c.mu.Lock()
	c.volume = volume
	c.mu.Unlock()
	return nil
}

// Speak validates the text and reports success without producing sound.
func (c *GoogleCloud) Speak(_ context.Context, text string, _ bool) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}
	log.Debug("googlecloud speak is a no-op; use file rendering", "chars", len(text))
	return nil
}

// SaveToFile renders text to an MP3 file through the synthesize endpoint.
func (c *GoogleCloud) SaveToFile(ctx context.Context, text, path string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyText
	}

	c.mu.RLock()
	body := map[string]any{
		"input": map[string]string{"text": text},
		"voice": map[string]string{
			"languageCode": c.voiceLang,
			"name":         c.voiceName,
		},
		"audioConfig": map[string]any{
			"audioEncoding": "MP3",
			"speakingRate":  c.rateVal,
			// 0.0-1.0 volume maps onto the API's -96..16 dB gain
			// range; only positive gain is used here.
			"volumeGainDb": c.volume * 16,
		},
	}
	c.mu.RUnlock()

	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/text:synthesize?key="+c.apiKey, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("synthesize: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("synthesize: unexpected status %s: %s", resp.Status, msg)
	}

	var result struct {
		AudioContent string `json:"audioContent"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("synthesize: %w", err)
	}

	audio, err := base64.StdEncoding.DecodeString(result.AudioContent)
	if err != nil {
		return fmt.Errorf("synthesize: decode audio: %w", err)
	}

	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return fmt.Errorf("write audio file: %w", err)
	}
	log.Info("audio saved", "engine", "googlecloud", "path", path, "bytes", len(audio))
	return nil
}

func (c *GoogleCloud) Current() Current {
	c.mu.RLock()
	defer c.mu.RUnlock()
	name := c.voiceName
	if name == "" {
		name = "default"
	}
	return Current{
		VoiceIndex: c.voiceIndex,
		VoiceName:  name,
		Rate:       c.rateVal,
		Volume:     c.volume,
	}
}

// Stop is a no-op: there is no local playback to cancel.
func (c *GoogleCloud) Stop() {}

func (c *GoogleCloud) Close() error { return nil }
