package match

import "math"

// FilterManager owns one trajectory filter per track for a single analysis
// run. It is not safe for concurrent use; each run has a single writer.
type FilterManager struct {
	Filters map[string]*TrajectoryFilter
	Config  KalmanConfig
}

// NewFilterManager creates an empty manager.
func NewFilterManager(config KalmanConfig) *FilterManager {
	return &FilterManager{
		Filters: make(map[string]*TrajectoryFilter),
		Config:  config,
	}
}

// Observe feeds a measurement for a track, creating the filter on first
// sight. The filter is predicted forward to t before the update.
func (m *FilterManager) Observe(trackID string, pos Point, frame int, t float64) *TrajectoryFilter {
	f, ok := m.Filters[trackID]
	if !ok {
		f = NewTrajectoryFilter(m.Config, pos, frame, t)
		m.Filters[trackID] = f
		return f
	}

	if dt := t - f.PredictedTo; dt > 0 {
		f.Predict(dt)
	}
	f.Update(pos, frame, t)
	return f
}

// PredictAll advances every filter to time t and returns the predicted
// positions of filters whose predictions are still valid.
func (m *FilterManager) PredictAll(t float64) map[string]Point {
	out := make(map[string]Point, len(m.Filters))
	for id, f := range m.Filters {
		if dt := t - f.PredictedTo; dt > 0 {
			f.Predict(dt)
		}
		if f.IsPredictionValid(t) {
			out[id] = f.Position()
		}
	}
	return out
}

// Confidence returns the observation-decay confidence for a track at time t,
// or 0 for an unknown track.
func (m *FilterManager) Confidence(trackID string, t float64) float64 {
	f, ok := m.Filters[trackID]
	if !ok {
		return 0
	}
	return f.GetConfidence(t)
}

// PruneStale removes filters whose predictions have expired at time t.
func (m *FilterManager) PruneStale(t float64) int {
	removed := 0
	for id, f := range m.Filters {
		if !f.IsPredictionValid(t) {
			delete(m.Filters, id)
			removed++
		}
	}
	return removed
}

// FindBestMatch associates a new observation with the closest still-valid
// predicted position within maxDistance. Returns the matched track id, or
// empty when nothing is close enough. Used to re-link tracks that briefly
// left frame.
func (m *FilterManager) FindBestMatch(pos Point, t, maxDistance float64) string {
	bestID := ""
	bestDist := maxDistance
	for id, f := range m.Filters {
		if !f.IsPredictionValid(t) {
			continue
		}
		p := f.Position()
		d := math.Hypot(p.X-pos.X, p.Y-pos.Y)
		if d < bestDist {
			bestDist = d
			bestID = id
		}
	}
	return bestID
}
