package overlay

// PullThreshold is the vertical drag distance in points that fires a
// pull-to-refresh.
const PullThreshold = 100.0

// PullToRefresh recognizes the manual sync gesture: a downward drag of at
// least PullThreshold points started while the content is scrolled to the
// top. Wire the callback to the sync loop's trigger, for example
// NewPullToRefresh(actor.Trigger).
type PullToRefresh struct {
	onRefresh func()
	active    bool
	startY    float64
	lastY     float64
}

func NewPullToRefresh(onRefresh func()) *PullToRefresh {
	return &PullToRefresh{onRefresh: onRefresh}
}

// Begin starts tracking a drag. Drags that start while the content is
// scrolled away from the top are ignored.
func (p *PullToRefresh) Begin(y float64, atTop bool) {
	if !atTop {
		p.active = false
		return
	}
	p.active = true
	p.startY = y
	p.lastY = y
}

// Move updates the current finger position of a tracked drag.
func (p *PullToRefresh) Move(y float64) {
	if !p.active {
		return
	}
	p.lastY = y
}

// End finishes the drag. It returns true and invokes the refresh callback
// when the finger traveled at least PullThreshold points downward.
func (p *PullToRefresh) End() bool {
	if !p.active {
		return false
	}
	p.active = false
	if p.lastY-p.startY < PullThreshold {
		return false
	}
	if p.onRefresh != nil {
		p.onRefresh()
	}
	return true
}
