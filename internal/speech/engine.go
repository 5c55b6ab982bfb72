// Package speech converts text into audible or file-rendered speech through
// interchangeable engines: an offline espeak-ng backend that plays through
// the speakers, and two network backends (Google Translate's free endpoint
// and the Google Cloud Text-to-Speech API) whose real output is always a
// rendered audio file.
package speech

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Voice identifies one synthesis voice within an engine session. Indexes are
// dense, 0-based, and only valid for the session that enumerated them.
type Voice struct {
	Index     int      `json:"id"`
	Name      string   `json:"name"`
	Languages []string `json:"languages,omitempty"`
	Gender    string   `json:"gender,omitempty"`
}

// Settings is a partial settings map: nil fields leave the corresponding
// engine parameter unchanged. Pause is in seconds, matching the persisted
// settings format.
type Settings struct {
	Voice     *int     `json:"voice_id,omitempty"`
	Rate      *float64 `json:"rate,omitempty"`
	Volume    *float64 `json:"volume,omitempty"`
	ChunkSize *int     `json:"chunk_size,omitempty"`
	Pause     *float64 `json:"pause_between_chunks,omitempty"`
}

// Current reports an engine's active parameters.
type Current struct {
	VoiceIndex int     `json:"voice_id"`
	VoiceName  string  `json:"voice_name"`
	Rate       float64 `json:"rate"`
	Volume     float64 `json:"volume"`
}

// Engine is the synthesis engine abstraction shared by every shell.
//
// Rate and volume setters validate against the engine's declared range
// before mutating; out-of-range input returns ErrInvalidParameter and leaves
// prior state untouched. Speak for network engines validates the text and
// reports success without producing sound; Stop is likewise a no-op there.
type Engine interface {
	// Name returns the engine identifier used in config and logs.
	Name() string

	// Voices enumerates available voices. The list is fetched fresh on
	// every call and never cached across sessions.
	Voices() ([]Voice, error)

	// SetVoice selects a voice by its enumeration index.
	SetVoice(index int) error

	// SetRate sets the speech rate in the engine's unit.
	SetRate(rate float64) error

	// SetVolume sets the volume on a 0.0 to 1.0 scale.
	SetVolume(volume float64) error

	// Speak synthesizes text. When wait is true the call blocks until the
	// audio finishes playing (offline engine only).
	Speak(ctx context.Context, text string, wait bool) error

	// SaveToFile renders text to an audio file at path.
	SaveToFile(ctx context.Context, text, path string) error

	// Current reports the active settings.
	Current() Current

	// Stop requests cancellation of in-flight speech. No-op for network
	// engines, which have nothing to cancel.
	Stop()

	// Close releases engine resources.
	Close() error
}

// Apply sets whichever of voice, rate, and volume are present in s,
// independently: a failure on one key does not prevent attempting the
// others. The joined error is non-fatal; callers typically log it and keep
// the engine's previous settings.
func Apply(e Engine, s Settings) error {
	var errs []error
	if s.Rate != nil {
		if err := e.SetRate(*s.Rate); err != nil {
			errs = append(errs, fmt.Errorf("rate %v: %w", *s.Rate, err))
		}
	}
	if s.Volume != nil {
		if err := e.SetVolume(*s.Volume); err != nil {
			errs = append(errs, fmt.Errorf("volume %v: %w", *s.Volume, err))
		}
	}
	if s.Voice != nil {
		if err := e.SetVoice(*s.Voice); err != nil {
			errs = append(errs, fmt.Errorf("voice %v: %w", *s.Voice, err))
		}
	}
	return errors.Join(errs...)
}

// PauseDuration converts the pause field to a duration, falling back to the
// given default when unset.
func (s Settings) PauseDuration(fallback time.Duration) time.Duration {
	if s.Pause == nil {
		return fallback
	}
	return time.Duration(*s.Pause * float64(time.Second))
}

// Map flattens the set fields into a settings map for persistence.
func (s Settings) Map() map[string]any {
	m := make(map[string]any)
	if s.Voice != nil {
		m["voice_id"] = *s.Voice
	}
	if s.Rate != nil {
		m["rate"] = *s.Rate
	}
	if s.Volume != nil {
		m["volume"] = *s.Volume
	}
	if s.ChunkSize != nil {
		m["chunk_size"] = *s.ChunkSize
	}
	if s.Pause != nil {
		m["pause_between_chunks"] = *s.Pause
	}
	return m
}

// SettingsFromMap rebuilds Settings from a persisted settings map. Values
// may arrive as numbers (JSON store) or strings (INI overflow); anything
// unparseable is skipped rather than failing the whole load.
func SettingsFromMap(m map[string]any) Settings {
	var s Settings
	if v, ok := asFloat(m["voice_id"]); ok {
		i := int(v)
		s.Voice = &i
	}
	if v, ok := asFloat(m["rate"]); ok {
		s.Rate = &v
	}
	if v, ok := asFloat(m["volume"]); ok {
		s.Volume = &v
	}
	if v, ok := asFloat(m["chunk_size"]); ok {
		i := int(v)
		s.ChunkSize = &i
	}
	if v, ok := asFloat(m["pause_between_chunks"]); ok {
		s.Pause = &v
	}
	return s
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
