package playback

// Clip is one playable entry of the device's playlist.
type Clip struct {
	ID    int
	Title string
	URL   string
}

// Action tells the playback driver what to do after a clip finishes or fails.
type Action int

const (
	// ActionAdvance means start the clip now returned by Current.
	ActionAdvance Action = iota
	// ActionReplay means restart the same clip from position zero without
	// tearing the surface down. Used for single-clip playlists.
	ActionReplay
	// ActionHalt means playback is stopped: the list is empty or too many
	// consecutive clips failed. Wait for a list change.
	ActionHalt
)

const maxConsecutiveFailures = 3

// Loop is the playback sequencing state machine. It owns which clip plays
// next and when to give up after repeated failures; it performs no I/O, so
// the rendering driver stays swappable.
type Loop struct {
	clips    []Clip
	index    int
	failures int
	halted   bool
}

func NewLoop() *Loop {
	return &Loop{halted: true}
}

// SetClips replaces the playlist. A changed list resets position to the
// first clip and clears any failure halt; an identical list is a no-op so a
// confirming sync never interrupts playback.
func (l *Loop) SetClips(clips []Clip) {
	if clipsEqual(l.clips, clips) {
		return
	}
	l.clips = clips
	l.index = 0
	l.failures = 0
	l.halted = len(clips) == 0
}

// Current returns the clip that should be on screen. ok is false when the
// loop is halted.
func (l *Loop) Current() (Clip, bool) {
	if l.halted || len(l.clips) == 0 {
		return Clip{}, false
	}
	return l.clips[l.index], true
}

// Started records that the current clip began rendering successfully,
// closing out its failure accounting.
func (l *Loop) Started() {
	l.failures = 0
}

// Ended advances past a clip that finished playing.
func (l *Loop) Ended() Action {
	if l.halted || len(l.clips) == 0 {
		return ActionHalt
	}
	if len(l.clips) == 1 {
		return ActionReplay
	}
	l.index = (l.index + 1) % len(l.clips)
	return ActionAdvance
}

// Failed records a clip that could not play. Play moves to the next clip
// until three clips in a row fail, at which point the loop halts rather than
// spin through a broken list.
func (l *Loop) Failed() Action {
	if l.halted || len(l.clips) == 0 {
		return ActionHalt
	}
	l.failures++
	if l.failures >= maxConsecutiveFailures {
		l.halted = true
		return ActionHalt
	}
	if len(l.clips) == 1 {
		return ActionReplay
	}
	l.index = (l.index + 1) % len(l.clips)
	return ActionAdvance
}

// Halted reports whether the loop has given up and is waiting for a new list.
func (l *Loop) Halted() bool {
	return l.halted
}

// Resume clears a failure halt and retries from the first clip, for a manual
// "try again" from the overlay.
func (l *Loop) Resume() {
	if len(l.clips) == 0 {
		return
	}
	l.index = 0
	l.failures = 0
	l.halted = false
}

func clipsEqual(a, b []Clip) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].URL != b[i].URL {
			return false
		}
	}
	return true
}
