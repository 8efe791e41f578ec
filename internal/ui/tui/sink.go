package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"clipdeck/internal/domain"
)

type stateMsg struct {
	state  domain.SessionState
	reason domain.SessionStateReason
}

type uploadMsg struct{ message string }

type archiveMsg struct{ entries []domain.ArchiveEntry }

type playbackMsg struct{ snapshot domain.PlaybackSnapshot }

type errorMsg struct {
	code   domain.ErrorCode
	detail string
}

// Sink implements ports.EventSink by forwarding events to a running
// tea.Program. Events arriving before Attach are dropped.
type Sink struct {
	mu      sync.RWMutex
	program *tea.Program
}

func NewSink() *Sink {
	return &Sink{}
}

func (s *Sink) Attach(p *tea.Program) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.program = p
}

func (s *Sink) send(msg tea.Msg) {
	s.mu.RLock()
	p := s.program
	s.mu.RUnlock()
	if p != nil {
		p.Send(msg)
	}
}

func (s *Sink) SessionStateChanged(state domain.SessionState, reason domain.SessionStateReason) {
	s.send(stateMsg{state: state, reason: reason})
}

func (s *Sink) UploadCompleted(message string) {
	s.send(uploadMsg{message: message})
}

func (s *Sink) ArchiveUpdated(entries []domain.ArchiveEntry) {
	s.send(archiveMsg{entries: entries})
}

func (s *Sink) PlaybackChanged(snapshot domain.PlaybackSnapshot) {
	s.send(playbackMsg{snapshot: snapshot})
}

func (s *Sink) SessionError(code domain.ErrorCode, detail string) {
	s.send(errorMsg{code: code, detail: detail})
}
