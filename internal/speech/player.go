package speech

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"
)

// player owns the process-wide oto audio context and plays 16-bit mono PCM
// through it. oto allows one context per process, so the offline engine
// creates a single player and reuses it for every utterance.
type player struct {
	ctx        *oto.Context
	sampleRate int

	mu      sync.Mutex
	current *oto.Player
}

func newPlayer(sampleRate int) (*player, error) {
	opts := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   50 * time.Millisecond,
	}

	ctx, ready, err := oto.NewContext(opts)
	if err != nil {
		return nil, fmt.Errorf("create audio context: %w", err)
	}

	select {
	case <-ready:
	case <-time.After(5 * time.Second):
		return nil, fmt.Errorf("audio context initialization timeout")
	}

	log.Debug("audio context ready", "sample_rate", sampleRate)
	return &player{ctx: ctx, sampleRate: sampleRate}, nil
}

// play blocks until the PCM data has played through or ctx is canceled.
// volume is on a 0.0 to 1.0 scale.
func (p *player) play(ctx context.Context, pcm []byte, volume float64) error {
	op := p.ctx.NewPlayer(bytes.NewReader(pcm))
	op.SetVolume(volume)

	p.mu.Lock()
	p.current = op
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.current = nil
		p.mu.Unlock()
		_ = op.Close()
	}()

	op.Play()
	for op.IsPlaying() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
	return nil
}

// stop halts whatever is currently playing.
func (p *player) stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current != nil {
		p.current.Pause()
		_ = p.current.Close()
		p.current = nil
	}
}

// parseWAV pulls the PCM payload and sample rate out of a RIFF/WAVE blob.
// espeak-ng emits canonical 16-bit mono WAV; anything else is rejected.
func parseWAV(data []byte) (pcm []byte, sampleRate int, err error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, 0, fmt.Errorf("not a WAV stream")
	}

	pos := 12
	for pos+8 <= len(data) {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8

		switch id {
		case "fmt ":
			if body+16 > len(data) {
				return nil, 0, fmt.Errorf("truncated fmt chunk")
			}
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
		case "data":
			end := body + size
			// Streamed WAV headers often declare a bogus data size;
			// trust the actual payload length instead.
			if size <= 0 || end > len(data) {
				end = len(data)
			}
			pcm = data[body:end]
		}
		pos = body + size
		if size <= 0 {
			break
		}
	}

	if pcm == nil || sampleRate == 0 {
		return nil, 0, fmt.Errorf("missing fmt or data chunk")
	}
	return pcm, sampleRate, nil
}
