package overlay

import (
	"context"
	"errors"
	"testing"
	"time"
)

func staticChecker(valid bool, err error) PinChecker {
	return func(ctx context.Context, pin string) (bool, error) {
		return valid, err
	}
}

func TestSessionUnlocksOnCorrectPin(t *testing.T) {
	s := NewSession(staticChecker(true, nil))
	now := time.Now()

	ok, err := s.SubmitPIN(context.Background(), "1234", now)
	if err != nil || !ok {
		t.Fatalf("SubmitPIN = %v, %v", ok, err)
	}
	if s.State() != StateUnlocked {
		t.Errorf("state = %s, want unlocked", s.State())
	}
}

func TestSessionStaysLockedOnWrongPin(t *testing.T) {
	s := NewSession(staticChecker(false, nil))

	ok, err := s.SubmitPIN(context.Background(), "0000", time.Now())
	if err != nil {
		t.Fatalf("wrong pin should not be an error: %v", err)
	}
	if ok || s.State() != StateLocked {
		t.Errorf("ok=%v state=%s, want locked", ok, s.State())
	}
}

func TestSessionCheckErrorRelocks(t *testing.T) {
	s := NewSession(staticChecker(false, errors.New("server unreachable")))

	ok, err := s.SubmitPIN(context.Background(), "1234", time.Now())
	if err == nil || ok {
		t.Fatalf("expected error, got ok=%v err=%v", ok, err)
	}
	if s.State() != StateLocked {
		t.Errorf("state = %s, want locked after check failure", s.State())
	}
}

func TestSessionRejectsConcurrentSubmit(t *testing.T) {
	inner := make(chan struct{})
	s := NewSession(func(ctx context.Context, pin string) (bool, error) {
		close(inner)
		return true, nil
	})

	// drive the reentrancy through the checker itself: while the first
	// submit is authenticating, a second submit must fail with ErrBusy
	s.state = StateAuthenticating
	if _, err := s.SubmitPIN(context.Background(), "1234", time.Now()); !errors.Is(err, ErrBusy) {
		t.Errorf("err = %v, want ErrBusy", err)
	}
	select {
	case <-inner:
		t.Error("checker ran while busy")
	default:
	}
}

func TestSessionIdleTimeoutRelocks(t *testing.T) {
	s := NewSession(staticChecker(true, nil))
	start := time.Now()
	s.SubmitPIN(context.Background(), "1234", start)

	if s.Tick(start.Add(time.Minute)) {
		t.Error("relocked before the idle timeout")
	}
	if !s.Tick(start.Add(2 * time.Minute)) {
		t.Error("should relock after two idle minutes")
	}
	if s.State() != StateLocked {
		t.Errorf("state = %s, want locked", s.State())
	}
}

func TestSessionTouchExtendsIdleDeadline(t *testing.T) {
	s := NewSession(staticChecker(true, nil))
	start := time.Now()
	s.SubmitPIN(context.Background(), "1234", start)

	s.Touch(start.Add(90 * time.Second))
	if s.Tick(start.Add(2 * time.Minute)) {
		t.Error("touch should have pushed the deadline out")
	}
	if !s.Tick(start.Add(90*time.Second + 2*time.Minute)) {
		t.Error("should relock two minutes after the last touch")
	}
}

func TestSessionExplicitLock(t *testing.T) {
	s := NewSession(staticChecker(true, nil))
	s.SubmitPIN(context.Background(), "1234", time.Now())

	s.Lock()
	if s.State() != StateLocked {
		t.Errorf("state = %s, want locked", s.State())
	}
}
