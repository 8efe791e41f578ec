package usecase

import (
	"errors"
	"fmt"
	"io"
	"os"

	"clipdeck/internal/domain"
	"clipdeck/internal/ports"
)

func pumpAudioChunks(
	audio ports.AudioSession,
	sink io.Writer,
	chunkSize int,
	events ports.EventSink,
	done chan struct{},
) {
	defer close(done)

	if chunkSize < 256 {
		chunkSize = 4096
	}

	buf := make([]byte, chunkSize)
	for {
		n, err := audio.Read(buf)
		if n > 0 {
			if _, writeErr := sink.Write(buf[:n]); writeErr != nil {
				events.SessionError(domain.ErrorCodeAudioStream, fmt.Sprintf("failed to buffer audio: %v", writeErr))
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) {
				events.SessionError(domain.ErrorCodeAudioStream, fmt.Sprintf("audio capture error: %v", err))
			}
			return
		}
	}
}
