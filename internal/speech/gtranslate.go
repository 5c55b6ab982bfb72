package speech

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

// GTranslate rate bounds are relative multipliers: 1.0 is normal speed.
// The endpoint itself only distinguishes normal from slow, so anything below
// 1.0 requests the slow variant and anything at or above it the normal one.
const (
	gtranslateMinRate = 0.25
	gtranslateMaxRate = 4.0

	// gtranslateMaxChunk is the longest text the endpoint accepts per
	// request, in characters.
	gtranslateMaxChunk = 200

	gtranslateSlowSpeed = "0.24"

	// The endpoint rejects requests without a browser user agent.
	gtranslateUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// gtranslateVoice pairs a language code with the Google top-level domain
// that serves its accent.
type gtranslateVoice struct {
	name string
	lang string
	tld  string
}

// The endpoint has no voice enumeration API; this is the supported catalog.
var gtranslateVoices = []gtranslateVoice{
	{"English (US)", "en", "com"},
	{"English (UK)", "en", "co.uk"},
	{"English (Australia)", "en", "com.au"},
	{"Spanish", "es", "com"},
	{"French", "fr", "com"},
	{"German", "de", "com"},
	{"Italian", "it", "com"},
	{"Portuguese", "pt", "com"},
	{"Japanese", "ja", "com"},
	{"Korean", "ko", "com"},
	{"Chinese (Simplified)", "zh-CN", "com"},
}

// GTranslate synthesizes speech through Google Translate's free TTS endpoint.
// It produces MP3 files only: Speak validates input and reports success
// without sound, because nothing here decodes MP3 for local playback.
type GTranslate struct {
	client  *http.Client
	limiter *rate.Limiter

	// baseURL is swapped out by tests; empty means the real endpoint for
	// the selected voice's TLD.
	baseURL string

	mu         sync.RWMutex
	voiceIndex int
	rateVal    float64
	volume     float64
}

// NewGTranslate builds the free network engine. It never fails: the endpoint
// is only contacted when audio is actually requested.
func NewGTranslate() *GTranslate {
	return &GTranslate{
		client: &http.Client{Timeout: 30 * time.Second},
		// The endpoint is unofficial; pace requests well below anything
		// that looks like scraping.
		limiter:    rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
		voiceIndex: 0,
		rateVal:    1.0,
		volume:     espeakDefaultVolume,
	}
}

func (g *GTranslate) Name() string { return "gtranslate" }

// Voices returns the fixed language catalog.
func (g *GTranslate) Voices() ([]Voice, error) {
	voices := make([]Voice, len(gtranslateVoices))
	for i, v := range gtranslateVoices {
		voices[i] = Voice{
			Index:     i,
			Name:      v.name,
			Languages: []string{v.lang},
		}
	}
	return voices, nil
}

func (g *GTranslate) SetVoice(index int) error {
	if index < 0 || index >= len(gtranslateVoices) {
		return fmt.Errorf("%w: voice index %d (have %d voices)", ErrInvalidParameter, index, len(gtranslateVoices))
	}
	g.mu.Lock()
	g.voiceIndex = index
	g.mu.Unlock()
	return nil
}

func (g *GTranslate) SetRate(rateVal float64) error {
	if rateVal < gtranslateMinRate || rateVal > gtranslateMaxRate {
		return fmt.Errorf("%w: rate %.2f (accepted %.2f-%.2f)", ErrInvalidParameter, rateVal, gtranslateMinRate, gtranslateMaxRate)
	}
	g.mu.Lock()
	g.rateVal = rateVal
	g.mu.Unlock()
	return nil
}

// SetVolume validates and stores the volume. The endpoint offers no gain
// control, so the value has no audible effect here.
func (g *GTranslate) SetVolume(volume float64) error {
	if volume < 0.0 || volume > 1.0 {
		return fmt.Errorf("%w: volume %.2f (accepted 0.0-1.0)", ErrInvalidParameter, volume)
	}
	g.mu.Lock()
	g.volume = volume
	g.mu.Unlock()
	return nil
}

// Speak validates the text and reports success without producing sound.
// Real output from this engine goes through SaveToFile.
func (g *GTranslate) Speak(_ context.Context, text string, _ bool) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}
	log.Debug("gtranslate speak is a no-op; use file rendering", "chars", len(text))
	return nil
}

// SaveToFile renders text to an MP3 file, splitting it into request-sized
// chunks and concatenating the returned audio. MP3 frames are
// self-delimiting, so byte concatenation yields a playable stream.
func (g *GTranslate) SaveToFile(ctx context.Context, text, path string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyText
	}

	chunks := chunkText(text, gtranslateMaxChunk)
	log.Info("rendering audio", "engine", "gtranslate", "chunks", len(chunks), "path", path)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create audio file: %w", err)
	}
	defer f.Close()

	for i, chunk := range chunks {
		audio, err := g.fetch(ctx, chunk)
		if err != nil {
			return fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
		if _, err := f.Write(audio); err != nil {
			return fmt.Errorf("write audio file: %w", err)
		}
	}
	return nil
}

// fetch requests one chunk of synthesized audio from the endpoint.
func (g *GTranslate) fetch(ctx context.Context, text string) ([]byte, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	g.mu.RLock()
	voice := gtranslateVoices[g.voiceIndex]
	slow := g.rateVal < 1.0
	base := g.baseURL
	g.mu.RUnlock()

	if base == "" {
		base = fmt.Sprintf("https://translate.google.%s/translate_tts", voice.tld)
	}

	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", voice.lang)
	q.Set("q", text)
	if slow {
		q.Set("ttsspeed", gtranslateSlowSpeed)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", gtranslateUserAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("synthesis request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("synthesis request: unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func (g *GTranslate) Current() Current {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return Current{
		VoiceIndex: g.voiceIndex,
		VoiceName:  gtranslateVoices[g.voiceIndex].name,
		Rate:       g.rateVal,
		Volume:     g.volume,
	}
}

// Stop is a no-op: there is no local playback to cancel.
func (g *GTranslate) Stop() {}

func (g *GTranslate) Close() error { return nil }
