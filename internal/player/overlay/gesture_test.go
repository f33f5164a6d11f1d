package overlay

import (
	"testing"
	"time"
)

const screenW = 1920.0

func TestGestureFourCornerTapsTrigger(t *testing.T) {
	g := NewGestureDetector(screenW)
	now := time.Now()

	for i := 0; i < 3; i++ {
		if g.Tap(screenW-10, 10, now) {
			t.Fatalf("triggered after %d taps", i+1)
		}
		now = now.Add(200 * time.Millisecond)
	}
	if !g.Tap(screenW-10, 10, now) {
		t.Error("fourth corner tap should trigger")
	}
}

func TestGestureResetsAfterTrigger(t *testing.T) {
	g := NewGestureDetector(screenW)
	now := time.Now()

	for i := 0; i < 4; i++ {
		g.Tap(screenW-10, 10, now)
	}
	// the next tap starts a fresh count
	if g.Tap(screenW-10, 10, now) {
		t.Error("first tap of a new sequence should not trigger")
	}
}

func TestGestureTapOutsideZoneResets(t *testing.T) {
	g := NewGestureDetector(screenW)
	now := time.Now()

	g.Tap(screenW-10, 10, now)
	g.Tap(screenW-10, 10, now)
	g.Tap(screenW/2, 500, now) // center tap, not in the corner

	if g.Tap(screenW-10, 10, now) {
		t.Error("triggered without four consecutive corner taps")
	}
}

func TestGestureSlowTapRestartsCount(t *testing.T) {
	g := NewGestureDetector(screenW)
	now := time.Now()

	g.Tap(screenW-10, 10, now)
	g.Tap(screenW-10, 10, now.Add(time.Second))

	// over the 1.5s window since the previous tap, so the count restarts
	late := now.Add(3 * time.Second)
	if g.Tap(screenW-10, 10, late) {
		t.Fatal("stale tap should not count toward a trigger")
	}
	if g.Tap(screenW-10, 10, late.Add(100*time.Millisecond)) {
		t.Fatal("only two taps in the new sequence")
	}
	g.Tap(screenW-10, 10, late.Add(200*time.Millisecond))
	if !g.Tap(screenW-10, 10, late.Add(300*time.Millisecond)) {
		t.Error("four quick taps after the restart should trigger")
	}
}

func TestGestureZoneBoundaries(t *testing.T) {
	g := NewGestureDetector(screenW)
	now := time.Now()

	cases := []struct {
		name string
		x, y float64
		in   bool
	}{
		{"inner corner of zone", screenW - ZoneSize, ZoneSize, true},
		{"just left of zone", screenW - ZoneSize - 1, 10, false},
		{"just below zone", screenW - 10, ZoneSize + 1, false},
		{"exact screen corner", screenW, 0, true},
	}
	for _, tc := range cases {
		g.Reset()
		g.Tap(tc.x, tc.y, now)
		g.Tap(tc.x, tc.y, now)
		g.Tap(tc.x, tc.y, now)
		got := g.Tap(tc.x, tc.y, now)
		if got != tc.in {
			t.Errorf("%s: triggered=%v, want %v", tc.name, got, tc.in)
		}
	}
}

func TestGestureScreenWidthChangeResets(t *testing.T) {
	g := NewGestureDetector(screenW)
	now := time.Now()

	g.Tap(screenW-10, 10, now)
	g.Tap(screenW-10, 10, now)
	g.Tap(screenW-10, 10, now)

	g.SetScreenWidth(1080)
	if g.Tap(1080-10, 10, now) {
		t.Error("rotation should reset the tap count")
	}
}
