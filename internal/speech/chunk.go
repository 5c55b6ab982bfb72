package speech

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

// Defaults for the chunked speaking path, shared with the persisted settings
// defaults.
const (
	DefaultChunkSize = 1000
	DefaultPause     = 500 * time.Millisecond
)

// chunkText splits text into fixed-size rune chunks, in order. Splitting is
// deliberately dumb: no word or sentence boundary detection.
func chunkText(text string, size int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	runes := []rune(text)
	chunks := make([]string, 0, len(runes)/size+1)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

// SpeakInChunks speaks long text through e in fixed-size character chunks,
// waiting for each chunk to finish before pausing and moving on. The first
// chunk failure aborts the whole operation; remaining chunks are not
// attempted. This is the incremental speaking path for the offline engine;
// network engines render to file instead.
func SpeakInChunks(ctx context.Context, e Engine, text string, size int, pause time.Duration) error {
	chunks := chunkText(text, size)
	log.Info("speaking in chunks", "chunks", len(chunks), "chunk_size", size)

	for i, chunk := range chunks {
		log.Debug("speaking chunk", "index", i+1, "total", len(chunks))
		if err := e.Speak(ctx, chunk, true); err != nil {
			return fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
		if i == len(chunks)-1 {
			break
		}
		select {
		case <-time.After(pause):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
