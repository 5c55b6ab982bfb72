package speech

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Offline engine parameter ranges. Rate is in words per minute, the unit
// espeak-ng uses natively.
const (
	espeakMinRate = 80.0
	espeakMaxRate = 450.0

	espeakDefaultRate   = 200.0
	espeakDefaultVolume = 0.9

	espeakTimeout = 60 * time.Second
)

// Espeak is the offline engine: every synthesis runs a fresh espeak-ng
// process with pre-configured stdin, and playback goes through a single
// process-wide audio context. It is the only engine whose Speak produces
// sound and whose Stop cancels anything.
type Espeak struct {
	binary string

	mu         sync.RWMutex
	voiceIndex int
	voiceName  string // espeak voice identifier, empty means engine default
	rate       float64
	volume     float64

	audioOnce sync.Once
	audio     *player
	audioErr  error

	speakMu     sync.Mutex
	cancelSpeak context.CancelFunc
}

// NewEspeak locates the espeak-ng binary. A missing binary is an engine
// initialization failure; the caller falls back to another engine or runs in
// extraction-only mode.
func NewEspeak() (*Espeak, error) {
	binary, err := exec.LookPath("espeak-ng")
	if err != nil {
		if binary, err = exec.LookPath("espeak"); err != nil {
			return nil, fmt.Errorf("%w: espeak-ng not found in PATH", ErrEngineInit)
		}
	}
	return &Espeak{
		binary:     binary,
		voiceIndex: -1,
		rate:       espeakDefaultRate,
		volume:     espeakDefaultVolume,
	}, nil
}

func (e *Espeak) Name() string { return "espeak" }

// Voices runs `espeak-ng --voices` and parses the table. The list is
// enumerated fresh on every call; indexes are only stable within a session.
func (e *Espeak) Voices() ([]Voice, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	out, err := runCommand(ctx, e.binary, nil, "--voices")
	if err != nil {
		return nil, fmt.Errorf("enumerate voices: %w", err)
	}
	return parseEspeakVoices(string(out)), nil
}

// parseEspeakVoices parses the --voices table:
//
//	Pty Language       Age/Gender VoiceName          File          Other Languages
//	 5  af              --/M      Afrikaans          gmw/af
func parseEspeakVoices(out string) []Voice {
	lines := strings.Split(out, "\n")
	var voices []Voice
	for i, line := range lines {
		if i == 0 || strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}

		gender := ""
		if parts := strings.SplitN(fields[2], "/", 2); len(parts) == 2 {
			switch parts[1] {
			case "M":
				gender = "male"
			case "F":
				gender = "female"
			}
		}

		voices = append(voices, Voice{
			Index:     len(voices),
			Name:      fields[3],
			Languages: []string{fields[1]},
			Gender:    gender,
		})
	}
	return voices
}

func (e *Espeak) SetVoice(index int) error {
	voices, err := e.Voices()
	if err != nil {
		return err
	}
	if index < 0 || index >= len(voices) {
		return fmt.Errorf("%w: voice index %d (have %d voices)", ErrInvalidParameter, index, len(voices))
	}

	e.mu.Lock()
	e.voiceIndex = index
	e.voiceName = voices[index].Languages[0]
	e.mu.Unlock()

	log.Info("voice selected", "engine", "espeak", "index", index, "name", voices[index].Name)
	return nil
}

func (e *Espeak) SetRate(rate float64) error {
	if rate < espeakMinRate || rate > espeakMaxRate {
		return fmt.Errorf("%w: rate %.0f wpm (accepted %.0f-%.0f)", ErrInvalidParameter, rate, espeakMinRate, espeakMaxRate)
	}
	e.mu.Lock()
	e.rate = rate
	e.mu.Unlock()
	return nil
}

func (e *Espeak) SetVolume(volume float64) error {
	if volume < 0.0 || volume > 1.0 {
		return fmt.Errorf("%w: volume %.2f (accepted 0.0-1.0)", ErrInvalidParameter, volume)
	}
	e.mu.Lock()
	e.volume = volume
	e.mu.Unlock()
	return nil
}

// Speak synthesizes text and plays it through the speakers. With wait set
// the call blocks until the audio finishes; otherwise playback continues in
// the background and errors are only logged.
func (e *Espeak) Speak(ctx context.Context, text string, wait bool) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}
	if !wait {
		go func() {
			if err := e.speakBlocking(context.Background(), text); err != nil {
				log.Warn("background speech failed", "err", err)
			}
		}()
		return nil
	}
	return e.speakBlocking(ctx, text)
}

func (e *Espeak) speakBlocking(ctx context.Context, text string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	e.speakMu.Lock()
	e.cancelSpeak = cancel
	e.speakMu.Unlock()
	defer func() {
		e.speakMu.Lock()
		e.cancelSpeak = nil
		e.speakMu.Unlock()
	}()

	wav, err := e.synth(ctx, text, "--stdout")
	if err != nil {
		return err
	}
	pcm, sampleRate, err := parseWAV(wav)
	if err != nil {
		return fmt.Errorf("decode espeak output: %w", err)
	}

	e.audioOnce.Do(func() {
		e.audio, e.audioErr = newPlayer(sampleRate)
	})
	if e.audioErr != nil {
		return fmt.Errorf("%w: %v", ErrUnsupportedOperation, e.audioErr)
	}

	e.mu.RLock()
	volume := e.volume
	e.mu.RUnlock()
	return e.audio.play(ctx, pcm, volume)
}

// SaveToFile renders text to a WAV file. File rendering is a platform
// capability: deployments with a stripped-down binary surface
// ErrUnsupportedOperation rather than crashing.
func (e *Espeak) SaveToFile(ctx context.Context, text, path string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}

	if _, err := e.synth(ctx, text, "-w", path); err != nil {
		if strings.Contains(err.Error(), "option") {
			return fmt.Errorf("%w: file rendering: %v", ErrUnsupportedOperation, err)
		}
		return err
	}

	if st, err := os.Stat(path); err != nil || st.Size() == 0 {
		return fmt.Errorf("%w: espeak produced no audio file", ErrUnsupportedOperation)
	}
	log.Info("audio saved", "engine", "espeak", "path", path)
	return nil
}

// synth runs one espeak-ng process with the current settings, feeding text
// on stdin, and returns whatever the process wrote to stdout.
func (e *Espeak) synth(ctx context.Context, text string, extra ...string) ([]byte, error) {
	e.mu.RLock()
	args := []string{
		"-s", strconv.Itoa(int(e.rate)),
		"-a", strconv.Itoa(int(e.volume * 200)),
	}
	if e.voiceName != "" {
		args = append(args, "-v", e.voiceName)
	}
	e.mu.RUnlock()
	args = append(args, extra...)
	args = append(args, "--stdin")

	ctx, cancel := context.WithTimeout(ctx, espeakTimeout)
	defer cancel()
	return runCommand(ctx, e.binary, strings.NewReader(text), args...)
}

func (e *Espeak) Current() Current {
	e.mu.RLock()
	defer e.mu.RUnlock()
	name := e.voiceName
	if name == "" {
		name = "default"
	}
	return Current{
		VoiceIndex: e.voiceIndex,
		VoiceName:  name,
		Rate:       e.rate,
		Volume:     e.volume,
	}
}

// Stop cancels in-flight speech, both the synthesis process and playback.
func (e *Espeak) Stop() {
	e.speakMu.Lock()
	cancel := e.cancelSpeak
	e.speakMu.Unlock()
	if cancel != nil {
		cancel()
	}
	if e.audio != nil {
		e.audio.stop()
	}
}

func (e *Espeak) Close() error {
	e.Stop()
	return nil
}

// runCommand executes a process to completion with stdin pre-configured,
// interrupting and then killing it on context expiry so no synthesis process
// can hang around.
func runCommand(ctx context.Context, binary string, stdin *strings.Reader, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	if stdin != nil {
		cmd.Stdin = stdin
	} else {
		cmd.Stdin = strings.NewReader("")
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	done := make(chan error, 1)
	go func() {
		done <- cmd.Run()
	}()

	select {
	case err := <-done:
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("synthesis canceled: %w", ctx.Err())
			}
			return nil, fmt.Errorf("%s failed: %w, stderr: %s", binary, err, stderr.String())
		}
	case <-ctx.Done():
		if cmd.Process != nil {
			_ = cmd.Process.Signal(os.Interrupt)
			select {
			case <-done:
			case <-time.After(100 * time.Millisecond):
				_ = cmd.Process.Kill()
				<-done
			}
		}
		return nil, fmt.Errorf("synthesis canceled: %w", ctx.Err())
	}

	return stdout.Bytes(), nil
}
