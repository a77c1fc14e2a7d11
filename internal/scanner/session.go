// Package scanner keeps the server-side state of check-in scan stations.
// A station detects a code, waits for the operator to confirm or decline,
// submits the check-in and goes back to scanning.
package scanner

import (
	"sync"
	"time"

	"eventsphere/internal/apperr"
)

type State string

const (
	StateScanning   State = "scanning"
	StatePending    State = "pending-confirmation"
	StateSubmitting State = "submitting"
)

const DefaultCooldown = 3 * time.Second

type Snapshot struct {
	ID          string
	EventID     string
	OrganizerID string
	State       State
	PendingCode string
	LastCode    string
	LastResult  string
	Prompt      bool
	UpdatedAt   time.Time
}

type Session struct {
	mu sync.Mutex

	id          string
	eventID     string
	organizerID string

	state      State
	pending    string
	lastCode   string
	lastResult string
	decidedAt  time.Time
	touched    time.Time

	cooldown time.Duration
	now      func() time.Time
}

func newSession(id, eventID, organizerID string, cooldown time.Duration, now func() time.Time) *Session {
	return &Session{
		id:          id,
		eventID:     eventID,
		organizerID: organizerID,
		state:       StateScanning,
		touched:     now(),
		cooldown:    cooldown,
		now:         now,
	}
}

func (s *Session) ID() string { return s.id }

// BelongsTo reports whether the session was opened by organizerID for eventID.
func (s *Session) BelongsTo(eventID, organizerID string) bool {
	return s.eventID == eventID && s.organizerID == organizerID
}

// Detect feeds a decoded code to the station. Prompt is true only when the
// code moved the station into pending confirmation. Detections while a code
// is pending or being submitted are dropped, as is the code decided last
// while its cooldown runs.
func (s *Session) Detect(code string) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.touched = now
	if code == "" || s.state != StateScanning {
		return s.snapshotLocked(false)
	}
	if code == s.lastCode && now.Sub(s.decidedAt) < s.cooldown {
		return s.snapshotLocked(false)
	}
	s.state = StatePending
	s.pending = code
	return s.snapshotLocked(true)
}

// Confirm hands out the pending code for submission.
func (s *Session) Confirm() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePending {
		return "", apperr.Policy("nothing to confirm")
	}
	s.state = StateSubmitting
	s.touched = s.now()
	return s.pending, nil
}

func (s *Session) Decline() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePending {
		return apperr.Policy("nothing to decline")
	}
	s.decideLocked("declined")
	return nil
}

// Finish ends a submission with the outcome of the check-in call.
func (s *Session) Finish(result string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateSubmitting {
		return apperr.Policy("no submission in progress")
	}
	s.decideLocked(result)
	return nil
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(false)
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

func (s *Session) decideLocked(result string) {
	now := s.now()
	s.lastCode = s.pending
	s.lastResult = result
	s.decidedAt = now
	s.touched = now
	s.pending = ""
	s.state = StateScanning
}

func (s *Session) snapshotLocked(prompt bool) Snapshot {
	return Snapshot{
		ID:          s.id,
		EventID:     s.eventID,
		OrganizerID: s.organizerID,
		State:       s.state,
		PendingCode: s.pending,
		LastCode:    s.lastCode,
		LastResult:  s.lastResult,
		Prompt:      prompt,
		UpdatedAt:   s.touched,
	}
}
