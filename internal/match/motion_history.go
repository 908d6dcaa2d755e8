package match

import "math"

// motionEntry is one (position, frame) sample in a track's rolling buffer.
type motionEntry struct {
	Position    Point
	FrameNumber int
}

// MotionHistory keeps a rolling per-track buffer of recent positions used to
// reject stationary detections (spectators, bench, advertising boards picked
// up as people). It belongs to one analysis context; no global state.
type MotionHistory struct {
	WindowFrames int
	buffers      map[string][]motionEntry
}

// NewMotionHistory creates a history with the given frame window.
func NewMotionHistory(windowFrames int) *MotionHistory {
	return &MotionHistory{
		WindowFrames: windowFrames,
		buffers:      make(map[string][]motionEntry),
	}
}

// Record appends a position sample for a track and trims entries older than
// the window relative to frameNumber.
func (m *MotionHistory) Record(trackID string, pos Point, frameNumber int) {
	buf := append(m.buffers[trackID], motionEntry{Position: pos, FrameNumber: frameNumber})

	// Trim aged-out entries from the front.
	cutoff := frameNumber - m.WindowFrames
	start := 0
	for start < len(buf) && buf[start].FrameNumber < cutoff {
		start++
	}
	m.buffers[trackID] = buf[start:]
}

// CumulativeMovement sums consecutive Euclidean deltas within the buffer.
// Empty or single-entry buffers sum to 0.
func (m *MotionHistory) CumulativeMovement(trackID string) float64 {
	buf := m.buffers[trackID]
	var total float64
	for i := 1; i < len(buf); i++ {
		total += math.Hypot(
			buf[i].Position.X-buf[i-1].Position.X,
			buf[i].Position.Y-buf[i-1].Position.Y,
		)
	}
	return total
}

// HasHistory reports whether a track has at least two samples, i.e. enough
// to compute movement at all.
func (m *MotionHistory) HasHistory(trackID string) bool {
	return len(m.buffers[trackID]) >= 2
}

// Len returns the current buffer length for a track.
func (m *MotionHistory) Len(trackID string) int {
	return len(m.buffers[trackID])
}

// PathLength sums consecutive Euclidean deltas over an arbitrary point path.
// Shared by motion filtering and carry detection.
func PathLength(path []Point) float64 {
	var total float64
	for i := 1; i < len(path); i++ {
		total += math.Hypot(path[i].X-path[i-1].X, path[i].Y-path[i-1].Y)
	}
	return total
}
