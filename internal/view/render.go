// Package view turns backend state into the payloads shown by the UIs.
package view

import (
	"fmt"
	"math"

	"clipdeck/internal/domain"
)

// PlaceholderLabel is the first archive option; selecting it stops playback.
const PlaceholderLabel = "Select an audio"

// Status texts shown to the user.
const (
	MessageRecording        = "Recording..."
	MessageStopped          = "Stopped recording"
	MessageUploadFailed     = "Failed to upload audio. Please try again."
	MessageArchiveFailed    = "Failed to load archive."
	MessageMicDenied        = "Microphone access denied. Please enable it and try again."
	MessageUnsupported      = "Audio recording is not supported in this environment."
	MessagePlaybackFailed   = "Audio failed to play. Please try again later."
	MessageDiscarded        = "Recording discarded"
	MessageNoAudio          = "No audio captured"
	MessageReady            = "Ready"
	MessageStartupFailed    = "Startup failed"
	MessageAudioStopIssue   = "Audio stop issue"
	MessageAudioStreamIssue = "Audio streaming issue"
)

// Option is one entry of the archive select list.
type Option struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// ArchiveOptions renders the select-list variant of the archive.
func ArchiveOptions(entries []domain.ArchiveEntry, selectedLink string) []Option {
	out := make([]Option, 0, len(entries)+1)
	out = append(out, Option{Value: "", Label: PlaceholderLabel, Selected: selectedLink == ""})
	for _, e := range entries {
		out = append(out, Option{Value: e.Link, Label: e.Name, Selected: selectedLink != "" && e.Link == selectedLink})
	}
	return out
}

// Tile is one rectangle of the archive grid.
type Tile struct {
	Index    int     `json:"index"`
	Title    string  `json:"title"`
	Progress float64 `json:"progress"`
	Width    string  `json:"width"`
	Playing  bool    `json:"playing"`
}

// ArchiveGrid renders the tile-grid variant of the archive.
func ArchiveGrid(snapshot domain.PlaybackSnapshot) []Tile {
	tiles := make([]Tile, len(snapshot.Entries))
	for i, e := range snapshot.Entries {
		var pct float64
		if i < len(snapshot.Progress) {
			pct = clampPercent(snapshot.Progress[i])
		}
		tiles[i] = Tile{
			Index:    i,
			Title:    e.Name,
			Progress: pct,
			Width:    ProgressWidth(pct),
			Playing:  i == snapshot.Active,
		}
	}
	return tiles
}

// ProgressWidth formats pct as a CSS width such as "42%".
func ProgressWidth(pct float64) string {
	return fmt.Sprintf("%.0f%%", clampPercent(pct))
}

func clampPercent(pct float64) float64 {
	switch {
	case math.IsNaN(pct) || pct < 0:
		return 0
	case pct > 100:
		return 100
	default:
		return pct
	}
}

// ReasonMessage returns the status text for a lifecycle reason. An empty
// result means the current status text stays.
func ReasonMessage(reason domain.SessionStateReason) string {
	switch reason {
	case domain.SessionReasonReady:
		return MessageReady
	case domain.SessionReasonRecordingStarted:
		return MessageRecording
	case domain.SessionReasonRecordingStopped, domain.SessionReasonRecordingAutoStopped:
		return MessageStopped
	case domain.SessionReasonUploadFailed:
		return MessageUploadFailed
	case domain.SessionReasonRecordingDiscarded:
		return MessageDiscarded
	case domain.SessionReasonNoAudio:
		return MessageNoAudio
	case domain.SessionReasonMicDenied:
		return MessageMicDenied
	case domain.SessionReasonUnsupported:
		return MessageUnsupported
	default:
		// uploading and upload_complete keep "Stopped recording" until the
		// server message arrives.
		return ""
	}
}

// ErrorMessage returns the status text for an error code.
func ErrorMessage(code domain.ErrorCode, detail string) string {
	switch code {
	case domain.ErrorCodeStartup:
		return MessageStartupFailed
	case domain.ErrorCodePermissionDenied:
		return MessageMicDenied
	case domain.ErrorCodeUnsupportedEnvironment:
		return MessageUnsupported
	case domain.ErrorCodeAudioStop:
		return MessageAudioStopIssue
	case domain.ErrorCodeAudioStream:
		return MessageAudioStreamIssue
	case domain.ErrorCodeUpload:
		return MessageUploadFailed
	case domain.ErrorCodeArchive:
		return MessageArchiveFailed
	case domain.ErrorCodePlayback:
		return MessagePlaybackFailed
	default:
		if detail == "" {
			return "Unknown error"
		}
		return detail
	}
}
