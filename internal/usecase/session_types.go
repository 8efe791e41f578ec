package usecase

import (
	"sync"
	"time"

	"clipdeck/internal/domain"
	"clipdeck/internal/ports"
)

type activeSession struct {
	id        string
	startedAt time.Time
	cancel    func()
	audio     ports.AudioSession
	timer     *time.Timer

	stateMu sync.Mutex
	state   domain.SessionState

	clip      *clipAssembler
	audioDone chan struct{}
}

func (s *activeSession) setState(state domain.SessionState) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	s.state = state
}

func (s *activeSession) getState() domain.SessionState {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.state
}

// claim moves a recording session to stopping. Only one caller wins.
func (s *activeSession) claim() bool {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	if s.state != domain.SessionStateRecording {
		return false
	}
	s.state = domain.SessionStateStopping
	return true
}
