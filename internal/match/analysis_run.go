package match

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fieldline-data/match.report/internal/monitoring"
)

// RunParams captures every configurable parameter of an analysis run for
// reproducibility. Persisted alongside the run.
type RunParams struct {
	Filter FilterConfig `json:"filter"`
	Kalman KalmanConfig `json:"kalman"`
	KMeans KMeansConfig `json:"kmeans"`
	Event  EventConfig  `json:"event"`
	Dedup  DedupConfig  `json:"dedup"`
}

// DefaultRunParams returns the default parameter set.
func DefaultRunParams() RunParams {
	return RunParams{
		Filter: DefaultFilterConfig(),
		Kalman: DefaultKalmanConfig(),
		KMeans: DefaultKMeansConfig(),
		Event:  DefaultEventConfig(),
		Dedup:  DefaultDedupConfig(),
	}
}

// AnalysisRun is the persisted record of one engine run.
type AnalysisRun struct {
	RunID       string    `json:"runId"`
	MatchID     string    `json:"matchId"`
	Params      RunParams `json:"params"`
	StartedAt   time.Time `json:"startedAt"`
	CompletedAt time.Time `json:"completedAt"`
	FrameCount  int       `json:"frameCount"`
	TrackCount  int       `json:"trackCount"`
}

// AnalysisContext owns all mutable state for one match run: motion-history
// buffers, per-track trajectory filters, configuration. It is created at the
// start of a run, passed explicitly, and discarded at the end — never global.
// Single writer; no locks needed.
type AnalysisContext struct {
	Params RunParams

	Filter        *DetectionFilter
	PlayerFilters *FilterManager

	Homography *HomographyData
	Reference  *ReferenceColors
}

// NewAnalysisContext creates a context with fresh per-run state.
func NewAnalysisContext(params RunParams) *AnalysisContext {
	return &AnalysisContext{
		Params:        params,
		Filter:        NewDetectionFilter(params.Filter),
		PlayerFilters: NewFilterManager(params.Kalman),
	}
}

// MatchAnalysis is the full result bundle of one run.
type MatchAnalysis struct {
	Run AnalysisRun `json:"run"`

	Segments  []PossessionSegment `json:"segments"`
	Passes    []PassEvent         `json:"passes"`
	Carries   []CarryEvent        `json:"carries"`
	Turnovers []TurnoverEvent     `json:"turnovers"`
	Reviews   []PendingReview     `json:"reviews"`

	Teams        *TeamClassificationResult `json:"teams"`
	SmoothedBall []BallDetection           `json:"smoothedBall"`
	FilterStats  FilterStats               `json:"filterStats"`
}

// Analyze runs the full inference pipeline over an upstream tracking result:
// trajectory smoothing, team classification, possession segmentation and
// event derivation. colorSamples may be empty, in which case every track is
// labelled unknown.
func (ctx *AnalysisContext) Analyze(matchID string, input *TrackingResult, colorSamples []ColorSample) (*MatchAnalysis, error) {
	if input == nil {
		return nil, fmt.Errorf("analyze: nil tracking result")
	}

	started := time.Now()
	fps := input.Metadata.FPS
	if fps <= 0 {
		fps = ctx.Params.Event.FramesPerSecond
	}

	tracks := input.TrackMap()
	monitoring.Logf("match analysis %s: %d tracks, %d ball samples, %.0f fps",
		matchID, len(tracks), len(input.Ball), fps)

	// Noise-rejection pre-pass: replay the per-frame detections through the
	// filter pipeline and keep only surviving observations in the tracks.
	ctx.Filter.Homography = ctx.Homography
	stats := ctx.cleanTracks(tracks)

	// Feed every track observation through its trajectory filter so gaps
	// can be re-associated and confidences decay with occlusion.
	for id, tr := range tracks {
		for _, frame := range tr.FrameNumbers() {
			tf := tr.Frames[frame]
			ctx.PlayerFilters.Observe(id, tf.Center, frame, tf.Timestamp)
		}
	}

	smoothedBall := SmoothBallTrack(input.Ball, ctx.Params.Kalman, fps)

	teams := ClassifyTeams(colorSamples, ctx.Params.KMeans, ctx.Reference)
	teamByTrack := teams.Assignments

	framePossessions := BuildFramePossessions(tracks, smoothedBall, teamByTrack, ctx.Params.Event)
	segments := BuildPossessionSegments(framePossessions, tracks, ctx.Params.Event)

	passes := DetectPasses(segments, ctx.Params.Event)
	carries := DetectCarries(segments, tracks, ctx.Params.Event)
	turnovers := DetectTurnovers(segments, ctx.Params.Event)
	reviews := ExtractReviewQueue(passes, carries, turnovers, ctx.Params.Event)

	monitoring.Logf("match analysis %s: %d segments, %d passes, %d carries, %d turnovers, %d reviews",
		matchID, len(segments), len(passes), len(carries), len(turnovers), len(reviews))

	return &MatchAnalysis{
		Run: AnalysisRun{
			RunID:       uuid.New().String(),
			MatchID:     matchID,
			Params:      ctx.Params,
			StartedAt:   started,
			CompletedAt: time.Now(),
			FrameCount:  input.Metadata.ProcessedFrames,
			TrackCount:  len(tracks),
		},
		Segments:     segments,
		Passes:       passes,
		Carries:      carries,
		Turnovers:    turnovers,
		Reviews:      reviews,
		Teams:        teams,
		SmoothedBall: smoothedBall,
		FilterStats:  stats,
	}, nil
}

// cleanTracks replays track observations frame by frame through the
// detection filter pipeline and removes rejected observations. Tracks left
// without any frames are dropped entirely. Returns aggregate stage counts.
func (ctx *AnalysisContext) cleanTracks(tracks map[string]*Track) FilterStats {
	// Collect the set of frames with any observation.
	frameSet := make(map[int]bool)
	for _, tr := range tracks {
		for f := range tr.Frames {
			frameSet[f] = true
		}
	}
	frames := make([]int, 0, len(frameSet))
	for f := range frameSet {
		frames = append(frames, f)
	}
	sortInts(frames)

	var total FilterStats
	for _, frame := range frames {
		var dets []Detection
		for id, tr := range tracks {
			if tf := tr.Frames[frame]; tf != nil {
				dets = append(dets, Detection{
					BBox:       tf.BBox,
					Center:     tf.Center,
					Confidence: tf.Confidence,
					Label:      "person",
					TrackID:    id,
				})
			}
		}

		kept, stats := ctx.Filter.Apply(dets, frame)
		total.Input += stats.Input
		total.Confidence += stats.Confidence
		total.OffPitch += stats.OffPitch
		total.TeamColor += stats.TeamColor
		total.Stationary += stats.Stationary
		total.Roster += stats.Roster
		total.Capped += stats.Capped
		total.Output += stats.Output

		survivors := make(map[string]bool, len(kept))
		for _, d := range kept {
			survivors[d.TrackID] = true
		}
		for id, tr := range tracks {
			if tr.Frames[frame] != nil && !survivors[id] {
				delete(tr.Frames, frame)
			}
		}
	}

	for id, tr := range tracks {
		if len(tr.Frames) == 0 {
			delete(tracks, id)
		}
	}
	return total
}

// RawEvents converts the analysis output into the raw-event form consumed by
// cross-window deduplication, tagged with the given source window id.
func (a *MatchAnalysis) RawEvents(window string, windowOffset float64) []RawEvent {
	var raw []RawEvent

	for _, p := range a.Passes {
		raw = append(raw, RawEvent{
			Timestamp:    windowOffset + p.Timestamp,
			Type:         EventPass,
			Team:         p.Team,
			Confidence:   p.Confidence,
			WindowConf:   p.Confidence,
			SourceWindow: window,
			Details:      map[string]string{"outcome": string(p.Outcome)},
		})
	}
	for _, c := range a.Carries {
		raw = append(raw, RawEvent{
			Timestamp:    windowOffset + c.StartTime,
			Type:         EventCarry,
			Team:         c.Team,
			Confidence:   c.Confidence,
			WindowConf:   c.Confidence,
			SourceWindow: window,
		})
	}
	for _, tv := range a.Turnovers {
		if tv.Side == TurnoverWon {
			// One physical event per pair.
			continue
		}
		raw = append(raw, RawEvent{
			Timestamp:    windowOffset + tv.Timestamp,
			Type:         EventTurnover,
			Team:         tv.Team,
			Confidence:   tv.Confidence,
			WindowConf:   tv.Confidence,
			SourceWindow: window,
		})
	}
	return raw
}
