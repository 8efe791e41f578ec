// Package playback keeps at most one archive entry playing at a time.
package playback

import (
	"errors"
	"fmt"

	"clipdeck/internal/domain"
)

// None marks the absence of an entry index.
const None = -1

var ErrNoSuchEntry = errors.New("no such archive entry")

// Transition tells a driver which entry to stop and which to start.
type Transition struct {
	Stop int
	Play int
}

// Selection tracks the active entry and per-entry progress. It does no I/O.
type Selection struct {
	entries  []domain.ArchiveEntry
	progress []float64
	active   int
}

func NewSelection() *Selection {
	return &Selection{active: None}
}

// Load replaces the entries. The active entry keeps playing, with its
// progress, when its link is still listed; otherwise playback resets and
// the returned transition names the dropped index.
func (s *Selection) Load(entries []domain.ArchiveEntry) Transition {
	keep, pct := "", 0.0
	if s.active >= 0 {
		keep, pct = s.entries[s.active].Link, s.progress[s.active]
	}
	old := s.active

	s.entries = append([]domain.ArchiveEntry(nil), entries...)
	s.progress = make([]float64, len(entries))
	s.active = None

	if keep != "" {
		if i := s.IndexOf(keep); i != None {
			s.active = i
			s.progress[i] = pct
			return Transition{Stop: None, Play: None}
		}
	}
	return Transition{Stop: old, Play: None}
}

func (s *Selection) Len() int { return len(s.entries) }

func (s *Selection) Active() int { return s.active }

// Entry returns the entry at i.
func (s *Selection) Entry(i int) (domain.ArchiveEntry, error) {
	if i < 0 || i >= len(s.entries) {
		return domain.ArchiveEntry{}, fmt.Errorf("%w: %d", ErrNoSuchEntry, i)
	}
	return s.entries[i], nil
}

// IndexOf returns the first entry whose link matches, or None.
func (s *Selection) IndexOf(link string) int {
	for i, e := range s.entries {
		if e.Link == link {
			return i
		}
	}
	return None
}

// Toggle stops i if it is playing; otherwise it stops every other entry
// and plays i.
func (s *Selection) Toggle(i int) (Transition, error) {
	if i < 0 || i >= len(s.entries) {
		return Transition{Stop: None, Play: None}, fmt.Errorf("%w: %d", ErrNoSuchEntry, i)
	}
	if s.active == i {
		s.progress[i] = 0
		s.active = None
		return Transition{Stop: i, Play: None}, nil
	}
	return s.play(i), nil
}

// Select plays i in the shared player, restarting it if it is already
// active. A negative i stops everything.
func (s *Selection) Select(i int) (Transition, error) {
	if i >= len(s.entries) {
		return Transition{Stop: None, Play: None}, fmt.Errorf("%w: %d", ErrNoSuchEntry, i)
	}
	if i < 0 {
		t := Transition{Stop: s.active, Play: None}
		s.reset()
		return t, nil
	}
	return s.play(i), nil
}

func (s *Selection) play(i int) Transition {
	t := Transition{Stop: s.active, Play: i}
	s.reset()
	s.active = i
	return t
}

func (s *Selection) reset() {
	for i := range s.progress {
		s.progress[i] = 0
	}
	s.active = None
}

// SetProgress records pct for i when i is active. It reports whether
// anything changed.
func (s *Selection) SetProgress(i int, pct float64) bool {
	if i != s.active || i < 0 {
		return false
	}
	switch {
	case pct < 0:
		pct = 0
	case pct > 100:
		pct = 100
	}
	if s.progress[i] == pct {
		return false
	}
	s.progress[i] = pct
	return true
}

// Ended resets the active entry after it finished or failed.
func (s *Selection) Ended() {
	if s.active >= 0 {
		s.progress[s.active] = 0
	}
	s.active = None
}

func (s *Selection) Snapshot() domain.PlaybackSnapshot {
	return domain.PlaybackSnapshot{
		Entries:  append([]domain.ArchiveEntry(nil), s.entries...),
		Active:   s.active,
		Progress: append([]float64(nil), s.progress...),
	}
}
