package domain

import (
	"errors"
	"time"
)

// SessionState models the capture lifecycle.
type SessionState string

const (
	SessionStateIdle      SessionState = "idle"
	SessionStateRecording SessionState = "recording"
	SessionStateStopping  SessionState = "stopping"
	SessionStateStopped   SessionState = "stopped"
	SessionStateError     SessionState = "error"
)

// SessionStateReason provides a structured reason for state transitions.
type SessionStateReason string

const (
	SessionReasonReady                SessionStateReason = "ready"
	SessionReasonRecordingStarted     SessionStateReason = "recording_started"
	SessionReasonRecordingStopped     SessionStateReason = "recording_stopped"
	SessionReasonRecordingAutoStopped SessionStateReason = "recording_auto_stopped"
	SessionReasonUploading            SessionStateReason = "uploading"
	SessionReasonUploadComplete       SessionStateReason = "upload_complete"
	SessionReasonUploadFailed         SessionStateReason = "upload_failed"
	SessionReasonRecordingDiscarded   SessionStateReason = "recording_discarded"
	SessionReasonNoAudio              SessionStateReason = "no_audio"
	SessionReasonMicDenied            SessionStateReason = "mic_denied"
	SessionReasonUnsupported          SessionStateReason = "unsupported"
)

// ErrorCode identifies non-fatal and fatal backend errors.
type ErrorCode string

const (
	ErrorCodeStartup                ErrorCode = "startup"
	ErrorCodePermissionDenied       ErrorCode = "permission_denied"
	ErrorCodeUnsupportedEnvironment ErrorCode = "unsupported_environment"
	ErrorCodeAudioStop              ErrorCode = "audio_stop"
	ErrorCodeAudioStream            ErrorCode = "audio_stream"
	ErrorCodeUpload                 ErrorCode = "upload"
	ErrorCodeArchive                ErrorCode = "archive"
	ErrorCodePlayback               ErrorCode = "playback"
)

var (
	ErrPermissionDenied       = errors.New("microphone access denied")
	ErrUnsupportedEnvironment = errors.New("audio capture is not supported in this environment")
	ErrUploadFailed           = errors.New("upload failed")
	ErrArchiveFetchFailed     = errors.New("failed to fetch archive")
	ErrPlaybackFailed         = errors.New("playback failed")
)

// FilenameMode selects how uploaded clips are named.
type FilenameMode string

const (
	// FilenameModeTimestamp names clips audio_<unix_ms>.wav.
	FilenameModeTimestamp FilenameMode = "timestamp"
	// FilenameModeFixed names every clip audio.wav.
	FilenameModeFixed FilenameMode = "fixed"
)

// Clip is the assembled output of one capture session.
type Clip struct {
	ID        string
	Filename  string
	MIMEType  string
	Data      []byte
	StartedAt time.Time
	Duration  time.Duration
}

// UploadResult is the decoded body of a successful upload.
type UploadResult struct {
	Message string `json:"message,omitempty"`
}

// StopResult is returned once a recording is stopped and handed to the uploader.
type StopResult struct {
	SessionID string        `json:"sessionId"`
	Filename  string        `json:"filename"`
	Bytes     int           `json:"bytes"`
	Duration  time.Duration `json:"duration"`
	Message   string        `json:"message"`
	Uploaded  bool          `json:"uploaded"`
}

// Status summarizes the current runtime status.
type Status struct {
	State     SessionState `json:"state"`
	Active    bool         `json:"active"`
	SessionID string       `json:"sessionId,omitempty"`
	Message   string       `json:"message,omitempty"`
}

// ArchiveEntry is one recording reported by the archive service.
type ArchiveEntry struct {
	Name string `json:"name"`
	Link string `json:"link"`
}

// PlaybackSnapshot is a point-in-time view of archive playback.
// Active is -1 when nothing is playing; Progress holds 0..100 per entry.
type PlaybackSnapshot struct {
	Entries  []ArchiveEntry `json:"entries"`
	Active   int            `json:"active"`
	Progress []float64      `json:"progress"`
}
