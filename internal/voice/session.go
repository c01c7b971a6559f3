package voice

import "sync"

// MaxRecentSearches bounds the recent-search list.
const MaxRecentSearches = 10

// State is where the loop currently is.
type State string

const (
	StateIdle     State = "idle"
	StateAwake    State = "awake"
	StateGoogle   State = "google"
	StateYouTube  State = "youtube"
	StateWhatsApp State = "whatsapp"
	StateStopped  State = "stopped"
)

// Session is the mutable state shared by the voice loop and its control
// channel. It is safe for concurrent use.
type Session struct {
	mu          sync.Mutex
	state       State
	muted       bool
	stopReading bool
	searches    []string
	sleepReq    bool
	exitReq     bool
}

// NewSession returns an idle, unmuted session.
func NewSession() *Session {
	return &Session{state: StateIdle}
}

// Status is a snapshot of a Session.
type Status struct {
	State          State    `json:"state"`
	Muted          bool     `json:"muted"`
	StopReading    bool     `json:"stop_reading"`
	RecentSearches []string `json:"recent_searches"`
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		State:          s.state,
		Muted:          s.muted,
		StopReading:    s.stopReading,
		RecentSearches: append([]string{}, s.searches...),
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *Session) Muted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.muted
}

// SetMuted mutes or unmutes spoken AI replies.
func (s *Session) SetMuted(m bool) {
	s.mu.Lock()
	s.muted = m
	s.mu.Unlock()
}

// StopReading reports whether the current speech should be abandoned.
func (s *Session) StopReading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopReading
}

// RequestStop interrupts speech at the next sentence boundary.
func (s *Session) RequestStop() {
	s.mu.Lock()
	s.stopReading = true
	s.mu.Unlock()
}

func (s *Session) clearStop() {
	s.mu.Lock()
	s.stopReading = false
	s.mu.Unlock()
}

// AddSearch records a search, evicting the oldest beyond
// MaxRecentSearches. Empty queries are ignored.
func (s *Session) AddSearch(q string) {
	if q == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searches = append(s.searches, q)
	if over := len(s.searches) - MaxRecentSearches; over > 0 {
		s.searches = append([]string(nil), s.searches[over:]...)
	}
}

// RecentSearches returns up to the last n searches, oldest first. n <= 0
// returns all of them.
func (s *Session) RecentSearches(n int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	from := 0
	if n > 0 && len(s.searches) > n {
		from = len(s.searches) - n
	}
	return append([]string{}, s.searches[from:]...)
}

// RequestSleep sends an awake loop back to wake-word listening.
func (s *Session) RequestSleep() {
	s.mu.Lock()
	s.sleepReq = true
	s.mu.Unlock()
}

func (s *Session) takeSleep() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	req := s.sleepReq
	s.sleepReq = false
	return req
}

// RequestExit stops the loop at its next turn.
func (s *Session) RequestExit() {
	s.mu.Lock()
	s.exitReq = true
	s.mu.Unlock()
}

func (s *Session) ExitRequested() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exitReq
}
