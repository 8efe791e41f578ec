package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"clipdeck/internal/domain"
	"clipdeck/internal/ports"
)

// startupGrace is how long ffmpeg must survive before capture counts as started.
const startupGrace = 250 * time.Millisecond

// FFMPEGCapture streams microphone PCM audio using ffmpeg.
type FFMPEGCapture struct {
	command string
}

func NewFFMPEGCapture(command string) *FFMPEGCapture {
	if command == "" {
		command = "ffmpeg"
	}
	return &FFMPEGCapture{command: command}
}

// Start opens the input device. A missing ffmpeg binary yields
// domain.ErrUnsupportedEnvironment; a recorder that exits before capture
// starts yields domain.ErrPermissionDenied.
func (c *FFMPEGCapture) Start(ctx context.Context, cfg ports.AudioConfig) (ports.AudioSession, error) {
	cfg = withCaptureDefaults(cfg)

	path, err := exec.LookPath(c.command)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrUnsupportedEnvironment, c.command, err)
	}

	args := []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "warning",
		"-f", cfg.InputFormat,
		"-i", cfg.InputDevice,
		"-ac", strconv.Itoa(cfg.Channels),
		"-ar", strconv.Itoa(cfg.SampleRate),
		"-f", "s16le",
		"-",
	}

	cmd := exec.CommandContext(ctx, path, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	// Wait must not close stdout: the tail of the clip is read after ffmpeg exits.
	stdout, stdoutW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create ffmpeg stdout pipe: %w", err)
	}
	cmd.Stdout = stdoutW
	if err := cmd.Start(); err != nil {
		_ = stdout.Close()
		_ = stdoutW.Close()
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %v", domain.ErrUnsupportedEnvironment, err)
		}
		return nil, fmt.Errorf("%w: failed to start ffmpeg: %v", domain.ErrPermissionDenied, err)
	}
	_ = stdoutW.Close()

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- cmd.Wait()
		close(waitErr)
	}()

	select {
	case err := <-waitErr:
		_ = stdout.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: ffmpeg exited before capture started: %v: %s", domain.ErrPermissionDenied, err, trimOutput(stderr.String()))
		}
		return nil, fmt.Errorf("%w: ffmpeg exited before capture started", domain.ErrPermissionDenied)
	case <-time.After(startupGrace):
	}

	return &ffmpegSession{
		stdout:  stdout,
		stderr:  &stderr,
		process: cmd.Process,
		waitErr: waitErr,
	}, nil
}

func withCaptureDefaults(cfg ports.AudioConfig) ports.AudioConfig {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}
	if cfg.Channels <= 0 {
		cfg.Channels = 1
	}
	if cfg.InputFormat == "" {
		cfg.InputFormat = "pulse"
	}
	if cfg.InputDevice == "" {
		cfg.InputDevice = "default"
	}
	return cfg
}

type ffmpegSession struct {
	stdout io.ReadCloser
	stderr *bytes.Buffer

	process *os.Process
	waitErr <-chan error

	stopOnce sync.Once
	stopErr  error
}

func (s *ffmpegSession) Read(p []byte) (int, error) {
	return s.stdout.Read(p)
}

// Close stops capture and releases the pipe.
func (s *ffmpegSession) Close() error {
	stopErr := s.Stop()
	if closeErr := s.stdout.Close(); closeErr != nil && !errors.Is(closeErr, os.ErrClosed) && stopErr == nil {
		return closeErr
	}
	return stopErr
}

// Stop interrupts ffmpeg, escalating to kill, and releases the device.
// Audio already written stays readable until EOF.
func (s *ffmpegSession) Stop() error {
	s.stopOnce.Do(func() {
		s.stopErr = interruptAndWait(s.process, s.waitErr, 1200*time.Millisecond)

		if s.stopErr != nil && s.stderr != nil && s.stderr.Len() > 0 {
			s.stopErr = fmt.Errorf("%w: %s", s.stopErr, trimOutput(s.stderr.String()))
		}
	})

	return s.stopErr
}

func interruptAndWait(process *os.Process, waitErr <-chan error, grace time.Duration) error {
	if process != nil {
		_ = process.Signal(os.Interrupt)
	}

	select {
	case err, ok := <-waitErr:
		if ok {
			return normalizeStopErr(err)
		}
		return nil
	case <-time.After(grace):
		if process != nil {
			_ = process.Kill()
		}
		err, ok := <-waitErr
		if ok {
			return normalizeStopErr(err)
		}
		return nil
	}
}

func normalizeStopErr(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}

func trimOutput(input string) string {
	if input == "" {
		return input
	}
	return string(bytes.TrimSpace([]byte(input)))
}
