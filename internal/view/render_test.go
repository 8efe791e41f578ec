package view

import (
	"math"
	"testing"

	"clipdeck/internal/domain"
)

func TestArchiveOptions(t *testing.T) {
	t.Parallel()

	entries := []domain.ArchiveEntry{
		{Name: "first", Link: "https://x/1.wav"},
		{Name: "second", Link: "https://x/2.wav"},
	}

	opts := ArchiveOptions(entries, "")
	if len(opts) != 3 {
		t.Fatalf("expected placeholder plus entries, got %d", len(opts))
	}
	if opts[0].Label != PlaceholderLabel || opts[0].Value != "" || !opts[0].Selected {
		t.Fatalf("unexpected placeholder: %+v", opts[0])
	}
	if opts[1].Label != "first" || opts[2].Value != "https://x/2.wav" {
		t.Fatalf("entries out of order: %+v", opts)
	}

	opts = ArchiveOptions(entries, "https://x/2.wav")
	if opts[0].Selected || !opts[2].Selected || opts[1].Selected {
		t.Fatalf("unexpected selection: %+v", opts)
	}
}

func TestArchiveOptionsEmpty(t *testing.T) {
	t.Parallel()

	opts := ArchiveOptions(nil, "")
	if len(opts) != 1 || opts[0].Label != PlaceholderLabel {
		t.Fatalf("expected only the placeholder, got %+v", opts)
	}
}

func TestArchiveGrid(t *testing.T) {
	t.Parallel()

	tiles := ArchiveGrid(domain.PlaybackSnapshot{
		Entries:  []domain.ArchiveEntry{{Name: "a"}, {Name: "b"}},
		Active:   1,
		Progress: []float64{0, 42.4},
	})
	if len(tiles) != 2 {
		t.Fatalf("unexpected tile count: %d", len(tiles))
	}
	if tiles[0].Playing || tiles[0].Width != "0%" || tiles[0].Title != "a" {
		t.Fatalf("unexpected idle tile: %+v", tiles[0])
	}
	if !tiles[1].Playing || tiles[1].Width != "42%" || tiles[1].Index != 1 {
		t.Fatalf("unexpected playing tile: %+v", tiles[1])
	}
}

func TestProgressWidthClamps(t *testing.T) {
	t.Parallel()

	cases := map[float64]string{
		-5:         "0%",
		0:          "0%",
		99.6:       "100%",
		150:        "100%",
		math.NaN(): "0%",
	}
	for in, want := range cases {
		if got := ProgressWidth(in); got != want {
			t.Fatalf("ProgressWidth(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestReasonMessage(t *testing.T) {
	t.Parallel()

	cases := map[domain.SessionStateReason]string{
		domain.SessionReasonReady:                "Ready",
		domain.SessionReasonRecordingStarted:     "Recording...",
		domain.SessionReasonRecordingStopped:     "Stopped recording",
		domain.SessionReasonRecordingAutoStopped: "Stopped recording",
		domain.SessionReasonUploading:            "",
		domain.SessionReasonUploadComplete:       "",
		domain.SessionReasonUploadFailed:         "Failed to upload audio. Please try again.",
		domain.SessionReasonRecordingDiscarded:   "Recording discarded",
		domain.SessionReasonNoAudio:              "No audio captured",
		domain.SessionReasonMicDenied:            "Microphone access denied. Please enable it and try again.",
		domain.SessionReasonUnsupported:          "Audio recording is not supported in this environment.",
	}

	for reason, want := range cases {
		reason := reason
		want := want
		t.Run(string(reason), func(t *testing.T) {
			t.Parallel()
			if got := ReasonMessage(reason); got != want {
				t.Fatalf("unexpected message: %q", got)
			}
		})
	}

	if got := ReasonMessage("unknown"); got != "" {
		t.Fatalf("expected empty unknown reason message, got %q", got)
	}
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	cases := map[domain.ErrorCode]string{
		domain.ErrorCodeStartup:                "Startup failed",
		domain.ErrorCodePermissionDenied:       "Microphone access denied. Please enable it and try again.",
		domain.ErrorCodeUnsupportedEnvironment: "Audio recording is not supported in this environment.",
		domain.ErrorCodeAudioStop:              "Audio stop issue",
		domain.ErrorCodeAudioStream:            "Audio streaming issue",
		domain.ErrorCodeUpload:                 "Failed to upload audio. Please try again.",
		domain.ErrorCodeArchive:                "Failed to load archive.",
		domain.ErrorCodePlayback:               "Audio failed to play. Please try again later.",
	}
	for code, want := range cases {
		code := code
		want := want
		t.Run(string(code), func(t *testing.T) {
			t.Parallel()
			if got := ErrorMessage(code, "ignored"); got != want {
				t.Fatalf("unexpected message: %q", got)
			}
		})
	}

	if got := ErrorMessage("other", "detail text"); got != "detail text" {
		t.Fatalf("expected detail fallback, got %q", got)
	}
	if got := ErrorMessage("other", ""); got != "Unknown error" {
		t.Fatalf("expected unknown fallback, got %q", got)
	}
}
