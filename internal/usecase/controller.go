package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"clipdeck/internal/domain"
	"clipdeck/internal/logging"
	"clipdeck/internal/ports"
)

var log = logging.L("usecase")

var (
	ErrNoActiveSession = errors.New("no active recording session")
	ErrNoAudioCaptured = errors.New("no audio captured")
)

const defaultMaxDuration = 5 * time.Second

// Config controls recording behavior.
type Config struct {
	Audio        ports.AudioConfig
	ChunkSize    int
	MaxDuration  time.Duration
	FilenameMode domain.FilenameMode
}

// SessionController owns the capture lifecycle: it records one clip at a
// time and hands each finished clip to the uploader.
type SessionController struct {
	audio     ports.AudioCapture
	events    ports.EventSink
	finalizer uploadFinalizer
	cfg       Config

	now   func() time.Time
	newID func() string

	startMu  sync.Mutex
	mu       sync.Mutex
	current  *activeSession
	lastClip domain.Clip
}

func NewSessionController(
	audio ports.AudioCapture,
	uploader ports.Uploader,
	archive *ArchiveService,
	events ports.EventSink,
	cfg Config,
) *SessionController {
	if cfg.ChunkSize < 256 {
		cfg.ChunkSize = 4096
	}
	if cfg.MaxDuration <= 0 {
		cfg.MaxDuration = defaultMaxDuration
	}
	if cfg.Audio.SampleRate <= 0 {
		cfg.Audio.SampleRate = 16000
	}
	if cfg.Audio.Channels <= 0 {
		cfg.Audio.Channels = 1
	}

	var refresher archiveRefresher
	if archive != nil {
		refresher = archive
	}

	return &SessionController{
		audio:     audio,
		events:    events,
		finalizer: newUploadFinalizer(uploader, refresher, events),
		cfg:       cfg,
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
	}
}

// Start begins a new capture session. It is a no-op while another session
// is recording, stopping or uploading.
func (c *SessionController) Start(ctx context.Context) error {
	c.startMu.Lock()
	defer c.startMu.Unlock()

	c.mu.Lock()
	busy := c.current != nil
	c.mu.Unlock()
	if busy {
		log.Debug("start ignored, session already active")
		return nil
	}

	sessionCtx, cancel := context.WithCancel(ctx)
	audioSession, err := c.audio.Start(sessionCtx, c.cfg.Audio)
	if err != nil {
		cancel()
		code, reason := domain.ErrorCodePermissionDenied, domain.SessionReasonMicDenied
		if errors.Is(err, domain.ErrUnsupportedEnvironment) {
			code, reason = domain.ErrorCodeUnsupportedEnvironment, domain.SessionReasonUnsupported
		}
		log.Warn("could not open microphone", logging.KeyError, err)
		c.events.SessionError(code, err.Error())
		c.events.SessionStateChanged(domain.SessionStateIdle, reason)
		return err
	}

	active := &activeSession{
		id:        c.newID(),
		startedAt: c.now(),
		cancel:    cancel,
		audio:     audioSession,
		state:     domain.SessionStateRecording,
		clip:      newClipAssembler(),
		audioDone: make(chan struct{}),
	}

	go pumpAudioChunks(active.audio, active.clip, c.cfg.ChunkSize, c.events, active.audioDone)

	c.mu.Lock()
	c.current = active
	active.timer = time.AfterFunc(c.cfg.MaxDuration, func() { c.autoStop(active) })
	c.mu.Unlock()

	log.Info("recording started", logging.KeySessionID, active.id)
	c.events.SessionStateChanged(domain.SessionStateRecording, domain.SessionReasonRecordingStarted)
	return nil
}

// Stop ends the recording session and uploads the clip. It returns
// ErrNoActiveSession, without side effects, when nothing is recording.
func (c *SessionController) Stop(ctx context.Context) (domain.StopResult, error) {
	active, err := c.claimCurrent(nil)
	if err != nil {
		return domain.StopResult{}, err
	}
	return c.stopSession(ctx, active, domain.SessionReasonRecordingStopped)
}

// Abort discards an active recording without uploading it.
func (c *SessionController) Abort() error {
	active, err := c.claimCurrent(nil)
	if err != nil {
		return err
	}

	c.releaseAudio(active)
	c.finishSession(active, domain.SessionReasonRecordingDiscarded)
	return nil
}

// Status returns the current backend status.
func (c *SessionController) Status() domain.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return domain.Status{State: domain.SessionStateIdle, Active: false}
	}
	state := c.current.getState()
	return domain.Status{State: state, Active: state != domain.SessionStateIdle, SessionID: c.current.id}
}

// LastClip returns the most recently assembled clip, whether or not its
// upload succeeded. ok is false before the first clip.
func (c *SessionController) LastClip() (clip domain.Clip, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastClip, c.lastClip.ID != ""
}

func (c *SessionController) autoStop(active *activeSession) {
	claimed, err := c.claimCurrent(active)
	if err != nil {
		return
	}
	log.Info("maximum duration reached", logging.KeySessionID, active.id, "maxDuration", c.cfg.MaxDuration)
	if _, err := c.stopSession(context.Background(), claimed, domain.SessionReasonRecordingAutoStopped); err != nil {
		log.Debug("auto-stopped session ended with error", logging.KeySessionID, active.id, logging.KeyError, err)
	}
}

// claimCurrent moves the current recording session to stopping. When
// expected is set, only that session may be claimed.
func (c *SessionController) claimCurrent(expected *activeSession) (*activeSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil || (expected != nil && c.current != expected) {
		return nil, ErrNoActiveSession
	}
	if !c.current.claim() {
		return nil, ErrNoActiveSession
	}
	return c.current, nil
}

func (c *SessionController) stopSession(ctx context.Context, active *activeSession, reason domain.SessionStateReason) (domain.StopResult, error) {
	c.events.SessionStateChanged(domain.SessionStateStopping, reason)
	c.releaseAudio(active)

	if active.clip.Len() == 0 {
		log.Warn("recording produced no audio", logging.KeySessionID, active.id)
		c.finishSession(active, domain.SessionReasonNoAudio)
		return domain.StopResult{SessionID: active.id}, ErrNoAudioCaptured
	}

	clip := active.clip.Clip(
		active.id,
		active.startedAt,
		c.cfg.Audio.SampleRate,
		c.cfg.Audio.Channels,
		clipFilename(c.cfg.FilenameMode, active.startedAt),
	)

	c.mu.Lock()
	c.lastClip = clip
	c.mu.Unlock()

	active.setState(domain.SessionStateStopped)
	c.events.SessionStateChanged(domain.SessionStateStopped, domain.SessionReasonUploading)

	result, finalReason, err := c.finalizer.Finalize(ctx, clip)
	c.finishSession(active, finalReason)
	if err != nil {
		return result, err
	}
	log.Info("recording uploaded", logging.KeySessionID, active.id, "bytes", result.Bytes)
	return result, nil
}

// releaseAudio stops the microphone and drains the pump.
func (c *SessionController) releaseAudio(active *activeSession) {
	if active.timer != nil {
		active.timer.Stop()
	}
	if err := active.audio.Stop(); err != nil {
		log.Warn("audio stop failed", logging.KeySessionID, active.id, logging.KeyError, err)
		c.events.SessionError(domain.ErrorCodeAudioStop, "failed to stop audio capture cleanly")
	}
	<-active.audioDone
	_ = active.audio.Close()
	active.cancel()
}

func (c *SessionController) finishSession(active *activeSession, reason domain.SessionStateReason) {
	active.setState(domain.SessionStateIdle)

	c.mu.Lock()
	if c.current == active {
		c.current = nil
	}
	c.mu.Unlock()

	c.events.SessionStateChanged(domain.SessionStateIdle, reason)
}
