package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"clipdeck/internal/domain"
	"clipdeck/internal/view"
)

func TestConsoleSinkSignalsFinishedOnTerminalIdle(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	sink := newConsoleSink(&out)

	sink.SessionStateChanged(domain.SessionStateRecording, domain.SessionReasonRecordingStarted)
	sink.SessionStateChanged(domain.SessionStateStopping, domain.SessionReasonUploading)
	select {
	case reason := <-sink.finished:
		t.Fatalf("unexpected finish: %s", reason)
	default:
	}

	sink.UploadCompleted("Saved")
	sink.SessionStateChanged(domain.SessionStateIdle, domain.SessionReasonUploadComplete)

	select {
	case reason := <-sink.finished:
		if reason != domain.SessionReasonUploadComplete {
			t.Fatalf("unexpected reason: %s", reason)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected finish signal")
	}

	got := out.String()
	for _, want := range []string{view.MessageRecording, "Saved"} {
		if !strings.Contains(got, want) {
			t.Fatalf("output %q missing %q", got, want)
		}
	}
}

func TestConsoleSinkPlaybackDone(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	sink := newConsoleSink(&out)
	entries := []domain.ArchiveEntry{{Name: "first", Link: "l1"}}

	// The initial load has nothing playing and must not count as an end.
	sink.PlaybackChanged(domain.PlaybackSnapshot{Entries: entries, Active: -1, Progress: []float64{0}})
	select {
	case <-sink.playbackDone:
		t.Fatalf("unexpected playback end")
	default:
	}

	sink.PlaybackChanged(domain.PlaybackSnapshot{Entries: entries, Active: 0, Progress: []float64{50}})
	sink.PlaybackChanged(domain.PlaybackSnapshot{Entries: entries, Active: -1, Progress: []float64{0}})

	select {
	case <-sink.playbackDone:
	case <-time.After(time.Second):
		t.Fatalf("expected playback end")
	}
	if !strings.Contains(out.String(), "first  50%") {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestConsoleSinkErrorMessage(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	sink := newConsoleSink(&out)
	sink.SessionError(domain.ErrorCodeArchive, "timeout")

	if strings.TrimSpace(out.String()) != view.MessageArchiveFailed {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestPrintArchive(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	printArchive(&out, nil)
	if strings.TrimSpace(out.String()) != "The archive is empty." {
		t.Fatalf("unexpected empty output: %q", out.String())
	}

	out.Reset()
	printArchive(&out, []domain.ArchiveEntry{
		{Name: "one", Link: "http://h/1.wav"},
		{Name: "two", Link: "http://h/2.wav"},
	})
	want := " 1. one\n    http://h/1.wav\n 2. two\n    http://h/2.wav\n"
	if out.String() != want {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
}

func TestRunPlayRejectsNonNumber(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	if err := runPlay(context.Background(), &out, "abc"); err == nil {
		t.Fatalf("expected error for non-numeric clip")
	}
}
