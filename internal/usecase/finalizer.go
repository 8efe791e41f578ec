package usecase

import (
	"context"

	"clipdeck/internal/domain"
	"clipdeck/internal/logging"
	"clipdeck/internal/ports"
)

// DefaultUploadMessage is shown when the service accepts a clip without a message.
const DefaultUploadMessage = "Upload complete"

// archiveRefresher is satisfied by ArchiveService.
type archiveRefresher interface {
	Refresh(ctx context.Context) ([]domain.ArchiveEntry, error)
}

// uploadFinalizer hands a finished clip to the uploader and, on success,
// refreshes the archive.
type uploadFinalizer struct {
	uploader ports.Uploader
	archive  archiveRefresher
	events   ports.EventSink
}

func newUploadFinalizer(uploader ports.Uploader, archive archiveRefresher, events ports.EventSink) uploadFinalizer {
	return uploadFinalizer{uploader: uploader, archive: archive, events: events}
}

func (f uploadFinalizer) Finalize(ctx context.Context, clip domain.Clip) (domain.StopResult, domain.SessionStateReason, error) {
	result := domain.StopResult{
		SessionID: clip.ID,
		Filename:  clip.Filename,
		Bytes:     len(clip.Data),
		Duration:  clip.Duration,
	}

	uploaded, err := f.uploader.Upload(ctx, clip)
	if err != nil {
		log.Warn("upload failed", logging.KeySessionID, clip.ID, logging.KeyError, err)
		f.events.SessionError(domain.ErrorCodeUpload, err.Error())
		return result, domain.SessionReasonUploadFailed, err
	}

	result.Uploaded = true
	result.Message = uploaded.Message
	if result.Message == "" {
		result.Message = DefaultUploadMessage
	}
	f.events.UploadCompleted(result.Message)

	if f.archive != nil {
		// Refresh failures are surfaced by the archive service itself.
		_, _ = f.archive.Refresh(ctx)
	}

	return result, domain.SessionReasonUploadComplete, nil
}
