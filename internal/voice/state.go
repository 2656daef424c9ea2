package voice

import (
	"sync"
	"time"
)

type Phase string

const (
	PhaseDisconnected    Phase = "disconnected"
	PhaseConnecting      Phase = "connecting"
	PhaseConnected       Phase = "connected"
	PhaseConnectedPaused Phase = "connected_paused"
	PhaseDisconnecting   Phase = "disconnecting"
	PhaseError           Phase = "error"
)

type ConnectionState struct {
	Phase   Phase  `json:"state"`
	Message string `json:"message,omitempty"`
}

func (s ConnectionState) String() string {
	if s.Phase == PhaseError && s.Message != "" {
		return string(s.Phase) + ": " + s.Message
	}
	return string(s.Phase)
}

type Status struct {
	State      ConnectionState `json:"connection"`
	Processing bool            `json:"processing"`
	Speaking   bool            `json:"speaking"`
	Paused     bool            `json:"paused"`
	Typing     bool            `json:"typing"`
}

type turnVerdict int

const (
	turnAccepted turnVerdict = iota
	turnNotListening
	turnBusy
	turnDuplicate
)

func (v turnVerdict) String() string {
	switch v {
	case turnAccepted:
		return "accepted"
	case turnNotListening:
		return "not_listening"
	case turnBusy:
		return "busy"
	case turnDuplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}

// sessionState holds every flag of a live room. All mutation goes through
// its methods; each returns the resulting Status for observers.
type sessionState struct {
	mu         sync.Mutex
	phase      Phase
	message    string
	forwarding bool
	processing bool
	speaking   bool
	paused     bool
	typing     bool
	dedup      *Deduplicator
	exchanges  sync.WaitGroup
}

func newSessionState(window time.Duration) *sessionState {
	return &sessionState{
		phase: PhaseDisconnected,
		dedup: NewDeduplicator(window),
	}
}

func (s *sessionState) snapshotLocked() Status {
	state := ConnectionState{Phase: s.phase, Message: s.message}
	if s.phase == PhaseConnected && s.paused {
		state.Phase = PhaseConnectedPaused
	}
	return Status{
		State:      state,
		Processing: s.processing,
		Speaking:   s.speaking,
		Paused:     s.paused,
		Typing:     s.typing,
	}
}

func (s *sessionState) status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *sessionState) beginConnect() (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.phase {
	case PhaseConnecting, PhaseConnected, PhaseDisconnecting:
		return s.snapshotLocked(), ErrAlreadyConnected
	}

	s.phase = PhaseConnecting
	s.message = ""
	s.forwarding = false
	s.processing = false
	s.paused = false
	return s.snapshotLocked(), nil
}

func (s *sessionState) opened() (Status, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseConnecting && s.phase != PhaseConnected {
		return s.snapshotLocked(), false
	}
	s.phase = PhaseConnected
	s.forwarding = true
	s.paused = false
	s.dedup.Reset()
	return s.snapshotLocked(), true
}

func (s *sessionState) failed(message string) (Status, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseDisconnected || s.phase == PhaseDisconnecting {
		return s.snapshotLocked(), false
	}
	s.phase = PhaseError
	s.message = message
	s.forwarding = false
	return s.snapshotLocked(), true
}

func (s *sessionState) remoteClosed() (Status, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseConnecting && s.phase != PhaseConnected {
		return s.snapshotLocked(), false
	}
	s.phase = PhaseDisconnected
	s.forwarding = false
	return s.snapshotLocked(), true
}

func (s *sessionState) isListening() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.forwarding && !s.paused
}

// acceptTurn runs the dispatch rules and, on acceptance, records the turn and
// takes the processing latch in the same critical section.
func (s *sessionState) acceptTurn(text string, now time.Time) (turnVerdict, Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseConnected {
		return turnNotListening, s.snapshotLocked()
	}
	if s.processing || s.speaking {
		return turnBusy, s.snapshotLocked()
	}
	if s.dedup.IsDuplicate(text, now) {
		return turnDuplicate, s.snapshotLocked()
	}

	s.dedup.Record(text, now)
	s.processing = true
	s.exchanges.Add(1)
	return turnAccepted, s.snapshotLocked()
}

func (s *sessionState) pauseForExchange() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = true
	s.typing = true
	return s.snapshotLocked()
}

func (s *sessionState) setTyping(typing bool) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.typing = typing
	return s.snapshotLocked()
}

func (s *sessionState) startSpeaking() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.speaking = true
	return s.snapshotLocked()
}

// stopSpeaking clears the speaking flag and resumes listening when no
// exchange holds the latch.
func (s *sessionState) stopSpeaking() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.speaking = false
	if s.forwarding && !s.processing {
		s.paused = false
	}
	return s.snapshotLocked()
}

func (s *sessionState) endExchange() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processing = false
	s.typing = false
	if s.forwarding && !s.speaking {
		s.paused = false
	}
	s.exchanges.Done()
	return s.snapshotLocked()
}

// waitExchanges blocks until every accepted turn has finished its exchange.
// Callers must first leave the connected phase so no new turn is accepted.
func (s *sessionState) waitExchanges() {
	s.exchanges.Wait()
}

func (s *sessionState) beginDisconnect() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = PhaseDisconnecting
	s.message = ""
	s.forwarding = false
	return s.snapshotLocked()
}

func (s *sessionState) reset() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = PhaseDisconnected
	s.message = ""
	s.forwarding = false
	s.processing = false
	s.speaking = false
	s.paused = false
	s.typing = false
	s.dedup.Reset()
	return s.snapshotLocked()
}
