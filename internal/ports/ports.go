package ports

import (
	"context"
	"io"
	"time"

	"clipdeck/internal/domain"
)

// AudioConfig describes how the microphone should be captured.
type AudioConfig struct {
	SampleRate  int
	Channels    int
	InputFormat string
	InputDevice string
}

// AudioSession is a live capture session.
type AudioSession interface {
	io.ReadCloser
	Stop() error
}

// AudioCapture creates microphone capture sessions.
type AudioCapture interface {
	Start(ctx context.Context, cfg AudioConfig) (AudioSession, error)
}

// Uploader sends a finished clip to the archive service.
type Uploader interface {
	Upload(ctx context.Context, clip domain.Clip) (domain.UploadResult, error)
}

// ArchiveSource lists the recordings held by the archive service.
type ArchiveSource interface {
	FetchArchive(ctx context.Context) ([]domain.ArchiveEntry, error)
}

// Playback is one clip being played.
type Playback interface {
	Position() time.Duration
	// Duration is zero when the length of the clip is unknown.
	Duration() time.Duration
	// Done yields the exit error (nil on natural end) and is then closed.
	Done() <-chan error
	Stop() error
}

// Player opens a URL or local file for playback.
type Player interface {
	Open(ctx context.Context, source string) (Playback, error)
}

// Playlist receives freshly fetched archive entries.
type Playlist interface {
	Load(entries []domain.ArchiveEntry)
}

// EventSink emits backend state/events to the UI.
type EventSink interface {
	SessionStateChanged(state domain.SessionState, reason domain.SessionStateReason)
	UploadCompleted(message string)
	ArchiveUpdated(entries []domain.ArchiveEntry)
	PlaybackChanged(snapshot domain.PlaybackSnapshot)
	SessionError(code domain.ErrorCode, detail string)
}
