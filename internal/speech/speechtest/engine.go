// Package speechtest provides a scriptable in-memory engine for tests.
package speechtest

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/speakdoc/speakdoc/internal/speech"
)

// Engine records every call and can be scripted to fail. The zero value is
// not usable; call New.
type Engine struct {
	mu sync.Mutex

	// FailSpeak and FailSave, when set, are returned by Speak and
	// SaveToFile respectively.
	FailSpeak error
	FailSave  error

	voices     []speech.Voice
	voiceIndex int
	rate       float64
	volume     float64

	Spoken []string
	Saved  []string
	Stops  int
	closed bool
}

// New builds a test engine with three voices, rate range 50-400, and volume
// range 0-1.
func New() *Engine {
	return &Engine{
		voices: []speech.Voice{
			{Index: 0, Name: "Test Voice A", Languages: []string{"en"}, Gender: "female"},
			{Index: 1, Name: "Test Voice B", Languages: []string{"en"}, Gender: "male"},
			{Index: 2, Name: "Test Voice C", Languages: []string{"de"}},
		},
		rate:   200,
		volume: 0.9,
	}
}

func (e *Engine) Name() string { return "test" }

func (e *Engine) Voices() ([]speech.Voice, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]speech.Voice, len(e.voices))
	copy(out, e.voices)
	return out, nil
}

func (e *Engine) SetVoice(index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if index < 0 || index >= len(e.voices) {
		return fmt.Errorf("%w: voice index %d", speech.ErrInvalidParameter, index)
	}
	e.voiceIndex = index
	return nil
}

func (e *Engine) SetRate(rate float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if rate < 50 || rate > 400 {
		return fmt.Errorf("%w: rate %v", speech.ErrInvalidParameter, rate)
	}
	e.rate = rate
	return nil
}

func (e *Engine) SetVolume(volume float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if volume < 0 || volume > 1 {
		return fmt.Errorf("%w: volume %v", speech.ErrInvalidParameter, volume)
	}
	e.volume = volume
	return nil
}

func (e *Engine) Speak(_ context.Context, text string, _ bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if text == "" {
		return speech.ErrEmptyText
	}
	if e.FailSpeak != nil {
		return e.FailSpeak
	}
	e.Spoken = append(e.Spoken, text)
	return nil
}

func (e *Engine) SaveToFile(_ context.Context, text, path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if text == "" {
		return speech.ErrEmptyText
	}
	if e.FailSave != nil {
		return e.FailSave
	}
	if err := os.WriteFile(path, []byte("FAKEAUDIO:"+text), 0o644); err != nil {
		return err
	}
	e.Saved = append(e.Saved, path)
	return nil
}

func (e *Engine) Current() speech.Current {
	e.mu.Lock()
	defer e.mu.Unlock()
	return speech.Current{
		VoiceIndex: e.voiceIndex,
		VoiceName:  e.voices[e.voiceIndex].Name,
		Rate:       e.rate,
		Volume:     e.volume,
	}
}

func (e *Engine) Stop() {
	e.mu.Lock()
	e.Stops++
	e.mu.Unlock()
}

func (e *Engine) Close() error {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	return nil
}

// Closed reports whether Close has been called.
func (e *Engine) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}
