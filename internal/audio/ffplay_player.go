package audio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"clipdeck/internal/domain"
	"clipdeck/internal/logging"
	"clipdeck/internal/media"
	"clipdeck/internal/ports"
)

var playerLog = logging.L("player")

// FFPlayPlayer plays clips through a headless ffplay process. Remote
// sources are downloaded first so their length can be probed.
type FFPlayPlayer struct {
	command string
	client  *http.Client
}

func NewFFPlayPlayer(command string, client *http.Client) *FFPlayPlayer {
	if command == "" {
		command = "ffplay"
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &FFPlayPlayer{command: command, client: client}
}

func (p *FFPlayPlayer) Open(ctx context.Context, source string) (ports.Playback, error) {
	local, cleanup, err := p.fetch(ctx, source)
	if err != nil {
		return nil, err
	}

	var duration time.Duration
	if info, err := media.ProbeFile(local); err == nil {
		duration = info.Duration
	} else {
		playerLog.Debug("could not probe clip", logging.KeyURL, source, logging.KeyError, err)
	}

	cmd := exec.CommandContext(ctx, p.command, "-nodisp", "-autoexit", "-nostats", "-loglevel", "error", local)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second
	if err := cmd.Start(); err != nil {
		cleanup()
		return nil, fmt.Errorf("%w: failed to start %s: %v", domain.ErrPlaybackFailed, p.command, err)
	}

	pb := &ffplayPlayback{
		process:  cmd.Process,
		started:  time.Now(),
		duration: duration,
		done:     make(chan error, 1),
		exited:   make(chan struct{}),
	}

	go func() {
		waitErr := cmd.Wait()
		close(pb.exited)
		cleanup()

		if pb.stopped.Load() {
			waitErr = nil
		} else if waitErr != nil {
			waitErr = fmt.Errorf("%w: %v: %s", domain.ErrPlaybackFailed, waitErr, trimOutput(stderr.String()))
		}
		pb.done <- waitErr
		close(pb.done)
	}()

	return pb, nil
}

// fetch returns a local path for source, downloading http(s) URLs into a
// temp file that cleanup removes.
func (p *FFPlayPlayer) fetch(ctx context.Context, source string) (string, func(), error) {
	noop := func() {}

	u, err := url.Parse(source)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		if _, statErr := os.Stat(source); statErr != nil {
			return "", noop, fmt.Errorf("%w: %v", domain.ErrPlaybackFailed, statErr)
		}
		return source, noop, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return "", noop, fmt.Errorf("%w: %v", domain.ErrPlaybackFailed, err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return "", noop, fmt.Errorf("%w: %v", domain.ErrPlaybackFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", noop, fmt.Errorf("%w: GET %s returned %s", domain.ErrPlaybackFailed, source, resp.Status)
	}

	tmp, err := os.CreateTemp("", "clipdeck-*"+strings.ToLower(path.Ext(u.Path)))
	if err != nil {
		return "", noop, err
	}
	remove := func() { _ = os.Remove(tmp.Name()) }

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		remove()
		return "", noop, fmt.Errorf("%w: download %s: %v", domain.ErrPlaybackFailed, source, err)
	}
	if err := tmp.Close(); err != nil {
		remove()
		return "", noop, err
	}
	return tmp.Name(), remove, nil
}

type ffplayPlayback struct {
	process  *os.Process
	started  time.Time
	duration time.Duration

	done    chan error
	exited  chan struct{}
	stopped atomic.Bool

	stopOnce sync.Once
}

func (p *ffplayPlayback) Position() time.Duration {
	elapsed := time.Since(p.started)
	if p.duration > 0 && elapsed > p.duration {
		return p.duration
	}
	return elapsed
}

func (p *ffplayPlayback) Duration() time.Duration { return p.duration }

func (p *ffplayPlayback) Done() <-chan error { return p.done }

func (p *ffplayPlayback) Stop() error {
	p.stopOnce.Do(func() {
		p.stopped.Store(true)
		_ = p.process.Signal(os.Interrupt)
		select {
		case <-p.exited:
		case <-time.After(time.Second):
			_ = p.process.Kill()
			<-p.exited
		}
	})
	return nil
}
