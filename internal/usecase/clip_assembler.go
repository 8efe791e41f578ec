package usecase

import (
	"fmt"
	"sync"
	"time"

	"clipdeck/internal/audio"
	"clipdeck/internal/domain"
)

// clipAssembler accumulates raw PCM chunks for one session.
type clipAssembler struct {
	mu  sync.Mutex
	pcm []byte
}

func newClipAssembler() *clipAssembler {
	return &clipAssembler{}
}

func (a *clipAssembler) Write(chunk []byte) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pcm = append(a.pcm, chunk...)
	return len(chunk), nil
}

func (a *clipAssembler) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pcm)
}

// Clip wraps the accumulated PCM into a WAV clip.
func (a *clipAssembler) Clip(id string, startedAt time.Time, sampleRate, channels int, filename string) domain.Clip {
	a.mu.Lock()
	defer a.mu.Unlock()
	return domain.Clip{
		ID:        id,
		Filename:  filename,
		MIMEType:  audio.WAVMIMEType,
		Data:      audio.EncodeWAV(a.pcm, sampleRate, channels),
		StartedAt: startedAt,
		Duration:  audio.PCMDuration(len(a.pcm), sampleRate, channels),
	}
}

func clipFilename(mode domain.FilenameMode, startedAt time.Time) string {
	if mode == domain.FilenameModeFixed {
		return "audio.wav"
	}
	return fmt.Sprintf("audio_%d.wav", startedAt.UnixMilli())
}
