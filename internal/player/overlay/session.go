package overlay

import (
	"context"
	"errors"
	"time"
)

// SessionState is where the admin overlay is in its lock lifecycle.
type SessionState string

const (
	// StateLocked means the overlay is hidden or showing the PIN prompt.
	StateLocked SessionState = "locked"
	// StateAuthenticating means a PIN check is in flight.
	StateAuthenticating SessionState = "authenticating"
	// StateUnlocked means admin controls are visible.
	StateUnlocked SessionState = "unlocked"
)

// idleTimeout is how long an unlocked overlay survives without interaction.
const idleTimeout = 2 * time.Minute

// ErrBusy is returned when a PIN is submitted while a check is in flight.
var ErrBusy = errors.New("pin check already in progress")

// PinChecker verifies a PIN against the server. A wrong PIN is (false, nil).
type PinChecker func(ctx context.Context, pin string) (bool, error)

// Session gates the admin overlay behind the device PIN and relocks it after
// two minutes without touches. It is not safe for concurrent use; drive it
// from the UI goroutine.
type Session struct {
	check        PinChecker
	state        SessionState
	lastActivity time.Time
}

func NewSession(check PinChecker) *Session {
	return &Session{check: check, state: StateLocked}
}

func (s *Session) State() SessionState {
	return s.state
}

// SubmitPIN runs the PIN check and unlocks on success. A wrong PIN returns
// (false, nil) and leaves the session locked so the prompt can show an error
// and accept another attempt.
func (s *Session) SubmitPIN(ctx context.Context, pin string, now time.Time) (bool, error) {
	if s.state == StateAuthenticating {
		return false, ErrBusy
	}
	if s.state == StateUnlocked {
		return true, nil
	}

	s.state = StateAuthenticating
	ok, err := s.check(ctx, pin)
	if err != nil {
		s.state = StateLocked
		return false, err
	}
	if !ok {
		s.state = StateLocked
		return false, nil
	}

	s.state = StateUnlocked
	s.lastActivity = now
	return true, nil
}

// Touch records interaction with the open overlay, pushing the idle deadline
// out.
func (s *Session) Touch(now time.Time) {
	if s.state == StateUnlocked {
		s.lastActivity = now
	}
}

// Tick relocks the session when the idle timeout has elapsed. Call it from a
// periodic timer; it returns true when the overlay should be dismissed.
func (s *Session) Tick(now time.Time) bool {
	if s.state != StateUnlocked {
		return false
	}
	if now.Sub(s.lastActivity) < idleTimeout {
		return false
	}
	s.state = StateLocked
	return true
}

// Lock closes the overlay immediately, for an explicit dismiss.
func (s *Session) Lock() {
	s.state = StateLocked
}
