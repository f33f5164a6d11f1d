package playback

import "testing"

func clips(ids ...int) []Clip {
	out := make([]Clip, len(ids))
	for i, id := range ids {
		out[i] = Clip{ID: id, URL: "https://cdn.example.com/v.mp4"}
	}
	return out
}

func TestLoopEmptyList(t *testing.T) {
	l := NewLoop()

	if _, ok := l.Current(); ok {
		t.Error("empty loop should have no current clip")
	}
	if got := l.Ended(); got != ActionHalt {
		t.Errorf("Ended on empty = %v, want ActionHalt", got)
	}

	l.SetClips(nil)
	if !l.Halted() {
		t.Error("loop with nil list should stay halted")
	}
}

func TestLoopSingleClipReplays(t *testing.T) {
	l := NewLoop()
	l.SetClips(clips(1))

	c, ok := l.Current()
	if !ok || c.ID != 1 {
		t.Fatalf("Current = %+v ok=%v", c, ok)
	}
	for i := 0; i < 3; i++ {
		if got := l.Ended(); got != ActionReplay {
			t.Fatalf("Ended #%d = %v, want ActionReplay", i, got)
		}
		if c, _ := l.Current(); c.ID != 1 {
			t.Fatalf("replay moved off clip 1: %+v", c)
		}
	}
}

func TestLoopAdvanceWrapsAround(t *testing.T) {
	l := NewLoop()
	l.SetClips(clips(10, 20, 30))

	want := []int{20, 30, 10, 20}
	for i, id := range want {
		if got := l.Ended(); got != ActionAdvance {
			t.Fatalf("Ended #%d = %v, want ActionAdvance", i, got)
		}
		if c, _ := l.Current(); c.ID != id {
			t.Fatalf("after end #%d current = %d, want %d", i, c.ID, id)
		}
	}
}

func TestLoopListChangeResetsPosition(t *testing.T) {
	l := NewLoop()
	l.SetClips(clips(1, 2, 3))
	l.Ended()
	l.Ended()

	l.SetClips(clips(4, 5))
	if c, _ := l.Current(); c.ID != 4 {
		t.Errorf("changed list should restart at first clip, got %d", c.ID)
	}
}

func TestLoopIdenticalListKeepsPosition(t *testing.T) {
	l := NewLoop()
	l.SetClips(clips(1, 2, 3))
	l.Ended()

	// a sync that returns the same content must not interrupt playback
	l.SetClips(clips(1, 2, 3))
	if c, _ := l.Current(); c.ID != 2 {
		t.Errorf("identical list reset position, current = %d, want 2", c.ID)
	}
}

func TestLoopHaltsAfterThreeConsecutiveFailures(t *testing.T) {
	l := NewLoop()
	l.SetClips(clips(1, 2, 3))

	if got := l.Failed(); got != ActionAdvance {
		t.Fatalf("first Failed = %v, want ActionAdvance", got)
	}
	if got := l.Failed(); got != ActionAdvance {
		t.Fatalf("second Failed = %v, want ActionAdvance", got)
	}
	if got := l.Failed(); got != ActionHalt {
		t.Fatalf("third Failed = %v, want ActionHalt", got)
	}
	if !l.Halted() {
		t.Error("loop should be halted after three failures")
	}
	if _, ok := l.Current(); ok {
		t.Error("halted loop should have no current clip")
	}
}

func TestLoopSuccessResetsFailureCount(t *testing.T) {
	l := NewLoop()
	l.SetClips(clips(1, 2, 3))

	l.Failed()
	l.Failed()
	l.Started()

	// the strike count restarts after any clip plays
	if got := l.Failed(); got != ActionAdvance {
		t.Errorf("Failed after success = %v, want ActionAdvance", got)
	}
	if l.Halted() {
		t.Error("loop halted despite a success between failures")
	}
}

func TestLoopNewListClearsHalt(t *testing.T) {
	l := NewLoop()
	l.SetClips(clips(1))
	l.Failed()
	l.Failed()
	l.Failed()
	if !l.Halted() {
		t.Fatal("expected halt")
	}

	l.SetClips(clips(2))
	if l.Halted() {
		t.Error("new list should clear halt")
	}
	if c, _ := l.Current(); c.ID != 2 {
		t.Errorf("current = %d, want 2", c.ID)
	}
}

func TestLoopResume(t *testing.T) {
	l := NewLoop()
	l.SetClips(clips(1, 2))
	l.Ended()
	l.Failed()
	l.Failed()
	l.Failed()

	l.Resume()
	if l.Halted() {
		t.Fatal("Resume should clear halt")
	}
	if c, _ := l.Current(); c.ID != 1 {
		t.Errorf("Resume should restart at first clip, got %d", c.ID)
	}
}
