package overlay

import "testing"

func TestPullToRefreshFiresAtThreshold(t *testing.T) {
	fired := 0
	p := NewPullToRefresh(func() { fired++ })

	p.Begin(10, true)
	p.Move(10 + PullThreshold)
	if !p.End() {
		t.Fatal("drag of exactly the threshold should refresh")
	}
	if fired != 1 {
		t.Errorf("fired = %d, want 1", fired)
	}
}

func TestPullToRefreshIgnoresShortDrag(t *testing.T) {
	fired := 0
	p := NewPullToRefresh(func() { fired++ })

	p.Begin(10, true)
	p.Move(10 + PullThreshold - 1)
	if p.End() {
		t.Fatal("drag one point short of the threshold should not refresh")
	}
	if fired != 0 {
		t.Errorf("fired = %d, want 0", fired)
	}
}

func TestPullToRefreshNeedsScrollTop(t *testing.T) {
	fired := 0
	p := NewPullToRefresh(func() { fired++ })

	p.Begin(10, false)
	p.Move(500)
	if p.End() {
		t.Fatal("drag started mid-scroll should not refresh")
	}
	if fired != 0 {
		t.Errorf("fired = %d, want 0", fired)
	}
}

func TestPullToRefreshIgnoresUpwardDrag(t *testing.T) {
	p := NewPullToRefresh(func() { t.Fatal("refresh fired") })

	p.Begin(300, true)
	p.Move(50)
	if p.End() {
		t.Fatal("upward drag should not refresh")
	}
}

func TestPullToRefreshMoveWithoutBegin(t *testing.T) {
	p := NewPullToRefresh(func() { t.Fatal("refresh fired") })

	p.Move(500)
	if p.End() {
		t.Fatal("End without Begin should not refresh")
	}
}

func TestPullToRefreshResetsBetweenDrags(t *testing.T) {
	fired := 0
	p := NewPullToRefresh(func() { fired++ })

	p.Begin(0, true)
	p.Move(PullThreshold)
	p.End()

	// the next End without a new Begin must not fire again
	if p.End() {
		t.Fatal("stale drag should not refresh twice")
	}
	if fired != 1 {
		t.Errorf("fired = %d, want 1", fired)
	}
}
