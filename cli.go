package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"

	"clipdeck/internal/bootstrap"
	"clipdeck/internal/domain"
	"clipdeck/internal/usecase"
	"clipdeck/internal/view"
)

// consoleSink prints backend events as status lines.
type consoleSink struct {
	mu      sync.Mutex
	out     io.Writer
	playing bool

	finished     chan domain.SessionStateReason
	playbackDone chan struct{}
}

func newConsoleSink(out io.Writer) *consoleSink {
	return &consoleSink{
		out:          out,
		finished:     make(chan domain.SessionStateReason, 1),
		playbackDone: make(chan struct{}, 1),
	}
}

func (s *consoleSink) println(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.out, text)
}

func (s *consoleSink) SessionStateChanged(state domain.SessionState, reason domain.SessionStateReason) {
	if text := view.ReasonMessage(reason); text != "" {
		s.println(text)
	}
	if state != domain.SessionStateIdle {
		return
	}
	switch reason {
	case domain.SessionReasonUploadComplete,
		domain.SessionReasonUploadFailed,
		domain.SessionReasonNoAudio,
		domain.SessionReasonRecordingDiscarded:
		select {
		case s.finished <- reason:
		default:
		}
	}
}

func (s *consoleSink) UploadCompleted(message string) {
	s.println(message)
}

func (s *consoleSink) ArchiveUpdated([]domain.ArchiveEntry) {}

func (s *consoleSink) PlaybackChanged(snapshot domain.PlaybackSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snapshot.Active >= 0 && snapshot.Active < len(snapshot.Entries) {
		s.playing = true
		fmt.Fprintf(s.out, "\r%s %4s", snapshot.Entries[snapshot.Active].Name, view.ProgressWidth(snapshot.Progress[snapshot.Active]))
		return
	}
	if s.playing {
		s.playing = false
		fmt.Fprintln(s.out)
		select {
		case s.playbackDone <- struct{}{}:
		default:
		}
	}
}

func (s *consoleSink) SessionError(code domain.ErrorCode, detail string) {
	s.println(view.ErrorMessage(code, detail))
}

func runRecord(ctx context.Context, in io.Reader, out io.Writer, withPreview bool) error {
	sink := newConsoleSink(out)
	services, err := bootstrap.Build(bootstrap.Options{ConfigFile: cfgFile}, sink)
	if err != nil {
		return err
	}
	controller := services.Controller

	if err := controller.Start(ctx); err != nil {
		return err
	}
	fmt.Fprintf(out, "Press Enter to stop (stops by itself after %s).\n", services.Config.Session.MaxDuration)

	go func() {
		_, _ = bufio.NewReader(in).ReadString('\n')
		// After an auto-stop this reports ErrNoActiveSession, which is fine.
		_, _ = controller.Stop(ctx)
	}()

	var reason domain.SessionStateReason
	select {
	case reason = <-sink.finished:
	case <-ctx.Done():
		_ = controller.Abort()
		return ctx.Err()
	}

	if withPreview {
		if clip, ok := controller.LastClip(); ok {
			if err := previewClip(ctx, services, clip); err != nil {
				sink.println(view.MessagePlaybackFailed)
			}
		}
	}

	switch reason {
	case domain.SessionReasonUploadFailed:
		return domain.ErrUploadFailed
	case domain.SessionReasonNoAudio:
		return usecase.ErrNoAudioCaptured
	}
	return nil
}

func previewClip(ctx context.Context, services bootstrap.Services, clip domain.Clip) error {
	tmp, err := os.CreateTemp("", "clipdeck-preview-*.wav")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(clip.Data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	pb, err := services.Player.Open(ctx, tmp.Name())
	if err != nil {
		return err
	}
	select {
	case err := <-pb.Done():
		return err
	case <-ctx.Done():
		return pb.Stop()
	}
}

func runArchive(ctx context.Context, out io.Writer) error {
	services, err := bootstrap.Build(bootstrap.Options{ConfigFile: cfgFile}, newConsoleSink(out))
	if err != nil {
		return err
	}

	entries, err := services.Archive.Refresh(ctx)
	if err != nil {
		return err
	}
	printArchive(out, entries)
	return nil
}

func printArchive(out io.Writer, entries []domain.ArchiveEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(out, "The archive is empty.")
		return
	}
	for i, e := range entries {
		fmt.Fprintf(out, "%2d. %s\n    %s\n", i+1, e.Name, e.Link)
	}
}

func runPlay(ctx context.Context, out io.Writer, arg string) error {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return fmt.Errorf("invalid clip number %q", arg)
	}

	sink := newConsoleSink(out)
	services, err := bootstrap.Build(bootstrap.Options{ConfigFile: cfgFile}, sink)
	if err != nil {
		return err
	}

	entries, err := services.Archive.Refresh(ctx)
	if err != nil {
		return err
	}
	if n < 1 || n > len(entries) {
		return fmt.Errorf("clip number must be between 1 and %d", len(entries))
	}

	if err := services.Deck.Toggle(ctx, n-1); err != nil {
		return err
	}
	select {
	case <-sink.playbackDone:
	case <-ctx.Done():
		services.Deck.Stop()
	}
	return nil
}
