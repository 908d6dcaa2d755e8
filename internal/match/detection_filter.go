package match

import "sort"

// Game formats and their detection caps (players + officials).
const (
	MaxDetections11v11 = 25
	MaxDetections8v8   = 19
	MaxDetections5v5   = 13
)

// FilterConfig holds detection filter pipeline parameters.
type FilterConfig struct {
	MinConfidence            float64 // inclusive threshold
	MaxPlayers               int     // final top-N cap
	MinMovement              float64 // cumulative movement floor (normalised units)
	MotionWindowFrames       int     // rolling window for movement
	ColorSimilarityThreshold float64 // used by a real colour stage when plugged in
	EnablePitchFilter        bool
	PitchMarginMeters        float64
}

// DefaultFilterConfig returns defaults for 11-a-side analysis.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		MinConfidence:            0.3,
		MaxPlayers:               MaxDetections11v11,
		MinMovement:              0.01,
		MotionWindowFrames:       30,
		ColorSimilarityThreshold: 0.35,
		EnablePitchFilter:        true,
		PitchMarginMeters:        2.0,
	}
}

// MaxPlayersForFormat maps a players-per-side game format to the detection
// cap, including officials.
func MaxPlayersForFormat(playersPerSide int) int {
	switch {
	case playersPerSide >= 11:
		return MaxDetections11v11
	case playersPerSide >= 8:
		return MaxDetections8v8
	default:
		return MaxDetections5v5
	}
}

// FilterStats reports how many detections each stage removed.
type FilterStats struct {
	Input      int `json:"input"`
	Confidence int `json:"confidence"`
	OffPitch   int `json:"offPitch"`
	TeamColor  int `json:"teamColor"`
	Stationary int `json:"stationary"`
	Roster     int `json:"roster"`
	Capped     int `json:"capped"`
	Output     int `json:"output"`
}

// ColorStage is the pluggable team-colour rejection hook. It returns the
// detections to keep. The default is a pass-through: a real implementation
// needs a pixel-level colour extractor, which this engine does not own.
type ColorStage func(dets []Detection) []Detection

// PassthroughColorStage keeps every detection.
func PassthroughColorStage(dets []Detection) []Detection { return dets }

// DetectionFilter applies ordered noise-rejection stages to one frame of
// detections before tracking. Stage order matters: cheap screens first, the
// top-N cap always last.
type DetectionFilter struct {
	Config     FilterConfig
	Homography *HomographyData // nil skips the pitch stage
	Motion     *MotionHistory
	Roster     map[int]bool // jersey numbers; nil/empty skips roster stage
	ColorStage ColorStage
}

// NewDetectionFilter creates a filter with its own motion history.
func NewDetectionFilter(config FilterConfig) *DetectionFilter {
	return &DetectionFilter{
		Config:     config,
		Motion:     NewMotionHistory(config.MotionWindowFrames),
		ColorStage: PassthroughColorStage,
	}
}

// Apply runs the pipeline over one frame of detections and records motion
// history for the survivors.
func (f *DetectionFilter) Apply(dets []Detection, frameNumber int) ([]Detection, FilterStats) {
	stats := FilterStats{Input: len(dets)}

	kept := f.filterConfidence(dets, &stats)
	kept = f.filterPitch(kept, &stats)
	kept = f.filterColor(kept, &stats)
	kept = f.filterMotion(kept, frameNumber, &stats)
	kept = f.filterRoster(kept, &stats)
	kept = f.capTopN(kept, &stats)

	// Record motion for survivors so the next frames have history.
	for _, d := range kept {
		if d.TrackID != "" {
			f.Motion.Record(d.TrackID, d.Center, frameNumber)
		}
	}

	stats.Output = len(kept)
	return kept, stats
}

// filterConfidence keeps detections at or above the threshold (inclusive).
func (f *DetectionFilter) filterConfidence(dets []Detection, stats *FilterStats) []Detection {
	kept := dets[:0:0]
	for _, d := range dets {
		if d.Confidence >= f.Config.MinConfidence {
			kept = append(kept, d)
		} else {
			stats.Confidence++
		}
	}
	return kept
}

// filterPitch rejects detections that map off the pitch. Without a
// homography the stage is a pass-through.
func (f *DetectionFilter) filterPitch(dets []Detection, stats *FilterStats) []Detection {
	if !f.Config.EnablePitchFilter || f.Homography == nil {
		return dets
	}
	kept := dets[:0:0]
	for _, d := range dets {
		// Project the feet position (bottom-centre of the box), which is
		// what actually stands on the pitch.
		feet := Point{X: d.BBox.X + d.BBox.W/2, Y: d.BBox.Y + d.BBox.H}
		fieldPos := f.Homography.ScreenToField(feet)
		if f.Homography.IsOnPitch(fieldPos, f.Config.PitchMarginMeters) {
			kept = append(kept, d)
		} else {
			stats.OffPitch++
		}
	}
	return kept
}

func (f *DetectionFilter) filterColor(dets []Detection, stats *FilterStats) []Detection {
	stage := f.ColorStage
	if stage == nil {
		stage = PassthroughColorStage
	}
	kept := stage(dets)
	stats.TeamColor += len(dets) - len(kept)
	return kept
}

// filterMotion drops tracks whose cumulative movement over the window is
// below the floor. Tracks with no history yet pass by default.
func (f *DetectionFilter) filterMotion(dets []Detection, frameNumber int, stats *FilterStats) []Detection {
	kept := dets[:0:0]
	for _, d := range dets {
		if d.TrackID == "" || !f.Motion.HasHistory(d.TrackID) {
			kept = append(kept, d)
			continue
		}
		if f.Motion.CumulativeMovement(d.TrackID) >= f.Config.MinMovement {
			kept = append(kept, d)
		} else {
			stats.Stationary++
		}
	}
	return kept
}

// filterRoster drops detections whose recognised jersey number is not on the
// roster. Detections without a recognised number pass by default.
func (f *DetectionFilter) filterRoster(dets []Detection, stats *FilterStats) []Detection {
	if len(f.Roster) == 0 {
		return dets
	}
	kept := dets[:0:0]
	for _, d := range dets {
		if d.JerseyNumber == nil || f.Roster[*d.JerseyNumber] {
			kept = append(kept, d)
		} else {
			stats.Roster++
		}
	}
	return kept
}

// capTopN keeps the N highest-confidence detections. Always applied last.
func (f *DetectionFilter) capTopN(dets []Detection, stats *FilterStats) []Detection {
	if len(dets) <= f.Config.MaxPlayers {
		return dets
	}
	sorted := make([]Detection, len(dets))
	copy(sorted, dets)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})
	stats.Capped = len(dets) - f.Config.MaxPlayers
	return sorted[:f.Config.MaxPlayers]
}
