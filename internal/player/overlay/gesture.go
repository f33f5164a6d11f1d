package overlay

import "time"

const (
	// ZoneSize is the edge length in points of the square tap target in the
	// top-right corner of the screen.
	ZoneSize = 80.0

	tapsRequired = 4
	tapWindow    = 1500 * time.Millisecond
)

// GestureDetector recognizes the hidden "open admin overlay" gesture: four
// taps in the top-right corner, each within 1.5s of the previous one. Any
// tap outside the corner, or a pause longer than the window, starts over.
type GestureDetector struct {
	screenWidth float64
	count       int
	deadline    time.Time
}

func NewGestureDetector(screenWidth float64) *GestureDetector {
	return &GestureDetector{screenWidth: screenWidth}
}

// SetScreenWidth updates the corner position after rotation or a display
// change. The tap count resets because the old corner no longer exists.
func (g *GestureDetector) SetScreenWidth(w float64) {
	g.screenWidth = w
	g.Reset()
}

// Tap feeds one touch event. It returns true exactly once per completed
// gesture, after which the detector is reset.
func (g *GestureDetector) Tap(x, y float64, now time.Time) bool {
	if !g.inZone(x, y) {
		g.Reset()
		return false
	}
	if g.count > 0 && now.After(g.deadline) {
		g.count = 0
	}

	g.count++
	g.deadline = now.Add(tapWindow)
	if g.count < tapsRequired {
		return false
	}
	g.Reset()
	return true
}

// Reset discards any in-progress gesture.
func (g *GestureDetector) Reset() {
	g.count = 0
	g.deadline = time.Time{}
}

func (g *GestureDetector) inZone(x, y float64) bool {
	return x >= g.screenWidth-ZoneSize && y <= ZoneSize
}
