package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"clipdeck/internal/domain"
	"clipdeck/internal/logging"
	"clipdeck/internal/ports"
)

// ArchiveService keeps the last known archive listing. A failed fetch
// leaves the previous listing in place.
type ArchiveService struct {
	source   ports.ArchiveSource
	playlist ports.Playlist
	events   ports.EventSink

	mu      sync.Mutex
	entries []domain.ArchiveEntry
	loaded  bool
}

func NewArchiveService(source ports.ArchiveSource, playlist ports.Playlist, events ports.EventSink) *ArchiveService {
	return &ArchiveService{source: source, playlist: playlist, events: events}
}

// Refresh fetches the archive and publishes it to the playlist and the UI.
func (s *ArchiveService) Refresh(ctx context.Context) ([]domain.ArchiveEntry, error) {
	entries, err := s.source.FetchArchive(ctx)
	if err != nil {
		log.Warn("archive fetch failed", logging.KeyError, err)
		s.events.SessionError(domain.ErrorCodeArchive, err.Error())
		if !errors.Is(err, domain.ErrArchiveFetchFailed) {
			err = fmt.Errorf("%w: %v", domain.ErrArchiveFetchFailed, err)
		}
		return s.Entries(), err
	}

	stored := append([]domain.ArchiveEntry(nil), entries...)

	s.mu.Lock()
	s.entries = stored
	s.loaded = true
	s.mu.Unlock()

	log.Debug("archive refreshed", "entries", len(stored))
	if s.playlist != nil {
		s.playlist.Load(stored)
	}
	s.events.ArchiveUpdated(append([]domain.ArchiveEntry(nil), stored...))
	return append([]domain.ArchiveEntry(nil), stored...), nil
}

// Entries returns a copy of the last fetched listing.
func (s *ArchiveService) Entries() []domain.ArchiveEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.ArchiveEntry(nil), s.entries...)
}

// Loaded reports whether any fetch has succeeded.
func (s *ArchiveService) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}
