package speech

import "errors"

// Engine errors. Setter failures (ErrInvalidParameter) are non-fatal and
// ignorable: the engine keeps its previous state and callers log and
// continue. ErrEngineInit means no backend could start; the application
// still serves document extraction in degraded mode.
var (
	// ErrInvalidParameter means a voice index, rate, or volume was outside
	// the engine's accepted range. Engine state is never mutated on this
	// error and values are never clamped.
	ErrInvalidParameter = errors.New("parameter out of range")

	// ErrUnsupportedOperation means the platform lacks a capability the
	// engine object itself constructed without (e.g. file rendering, or an
	// audio device for playback).
	ErrUnsupportedOperation = errors.New("operation not supported on this platform")

	// ErrEngineInit means no synthesis backend could start.
	ErrEngineInit = errors.New("no speech engine available")

	// ErrEmptyText means a speak or render call received nothing to say.
	ErrEmptyText = errors.New("no text to speak")
)
