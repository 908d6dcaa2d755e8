package match

import "sort"

//
// 0) Shared data model
//
// All screen-space coordinates are normalised to [0,1] relative to the frame.
// Field-space coordinates are in meters with the origin at the pitch centre.
//

// Point is a 2D point, either normalised screen space or field meters
// depending on context.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BBox is a normalised bounding box (top-left origin).
type BBox struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Center returns the centre point of the box.
func (b BBox) Center() Point {
	return Point{X: b.X + b.W/2, Y: b.Y + b.H/2}
}

// Team is the tri-state team identity. Unknown is a first-class value:
// several inference rules (pass outcome, turnovers, logical validation)
// special-case it to avoid false conclusions, so it must never be collapsed
// to a boolean home/away choice.
type Team string

const (
	TeamHome    Team = "home"
	TeamAway    Team = "away"
	TeamUnknown Team = "unknown"

	// TeamReferee is only produced by the colour classifier; referees never
	// appear in possession or event output.
	TeamReferee Team = "referee"
)

// Known reports whether the team is a real side (home or away).
func (t Team) Known() bool { return t == TeamHome || t == TeamAway }

// Detection is a single-frame detector output. Detections are ephemeral:
// they are produced per frame by an external detector and consumed
// immediately by the filter pipeline and trackers.
type Detection struct {
	BBox            BBox     `json:"bbox"`
	Center          Point    `json:"center"`
	Confidence      float64  `json:"confidence"`
	Label           string   `json:"label"` // "person" or "sports ball"
	ClassConfidence *float64 `json:"classConfidence,omitempty"`

	// TrackID is set once the upstream tracker has associated the detection.
	TrackID string `json:"trackId,omitempty"`

	// JerseyNumber is set when an OCR stage recognised a number; nil otherwise.
	JerseyNumber *int `json:"jerseyNumber,omitempty"`
}

// TrackFrame is one observation of a track at a specific frame.
type TrackFrame struct {
	FrameNumber int     `json:"frameNumber"`
	Timestamp   float64 `json:"timestamp"` // seconds from video start
	BBox        BBox    `json:"bbox"`
	Center      Point   `json:"center"`
	Confidence  float64 `json:"confidence"`
}

// Track is the accumulated per-frame history of one tracked entity,
// keyed by frame number.
type Track struct {
	TrackID string              `json:"trackId"`
	Frames  map[int]*TrackFrame `json:"frames"`

	// PlayerID is the resolved roster identity, empty until roster matching
	// has run.
	PlayerID string `json:"playerId,omitempty"`
}

// NewTrack creates an empty track.
func NewTrack(trackID string) *Track {
	return &Track{TrackID: trackID, Frames: make(map[int]*TrackFrame)}
}

// FrameAt returns the observation at the given frame, or nil.
func (t *Track) FrameAt(frame int) *TrackFrame {
	if t == nil {
		return nil
	}
	return t.Frames[frame]
}

// FrameNumbers returns the sorted frame numbers present in the track.
func (t *Track) FrameNumbers() []int {
	frames := make([]int, 0, len(t.Frames))
	for f := range t.Frames {
		frames = append(frames, f)
	}
	sortInts(frames)
	return frames
}

// BallDetection is a per-frame ball observation. Interpolated marks samples
// produced by the trajectory filter rather than the detector.
type BallDetection struct {
	FrameNumber  int     `json:"frameNumber"`
	Timestamp    float64 `json:"timestamp"`
	Position     Point   `json:"position"`
	Confidence   float64 `json:"confidence"`
	Visible      bool    `json:"visible"`
	Interpolated bool    `json:"interpolated,omitempty"`
}

// FramePossession is the per-frame possession fact derived by the event
// inference engine. It is an intermediate, never persisted standalone.
type FramePossession struct {
	FrameNumber      int
	Timestamp        float64
	BallPosition     Point
	BallVisible      bool
	PossessorTrackID string // empty when the ball is loose or invisible
	Team             Team
	PlayerPosition   Point
	Distance         float64 // ball-to-possessor distance (normalised units)
	Confidence       float64
}

// SegmentEndReason explains why a possession segment closed.
type SegmentEndReason string

const (
	SegmentEndPass    SegmentEndReason = "pass"    // next possessor on the same known team
	SegmentEndLost    SegmentEndReason = "lost"    // ball loose, or to a different/unknown team
	SegmentEndUnknown SegmentEndReason = "unknown" // frame series ended
)

// PossessionSegment is a maximal contiguous run of frames held by one track.
// Segments shorter than the configured minimum frame count are discarded
// at build time, so FrameCount() >= minimum holds for every emitted segment.
type PossessionSegment struct {
	TrackID    string           `json:"trackId"`
	PlayerID   string           `json:"playerId,omitempty"`
	Team       Team             `json:"team"`
	StartFrame int              `json:"startFrame"`
	EndFrame   int              `json:"endFrame"`
	StartTime  float64          `json:"startTime"`
	EndTime    float64          `json:"endTime"`
	Confidence float64          `json:"confidence"`
	EndReason  SegmentEndReason `json:"endReason"`
}

// FrameCount returns the number of frames spanned by the segment.
func (s *PossessionSegment) FrameCount() int { return s.EndFrame - s.StartFrame + 1 }

// PassOutcome classifies a detected pass.
type PassOutcome string

const (
	PassComplete    PassOutcome = "complete"
	PassIncomplete  PassOutcome = "incomplete"
	PassIntercepted PassOutcome = "intercepted"
)

// PassEvent is a derived pass between two adjacent possession segments.
type PassEvent struct {
	FromTrackID  string      `json:"fromTrackId"`
	ToTrackID    string      `json:"toTrackId"`
	FromPlayerID string      `json:"fromPlayerId,omitempty"`
	ToPlayerID   string      `json:"toPlayerId,omitempty"`
	Team         Team        `json:"team"`
	Outcome      PassOutcome `json:"outcome"`
	Frame        int         `json:"frame"`
	Timestamp    float64     `json:"timestamp"`
	Confidence   float64     `json:"confidence"`
	NeedsReview  bool        `json:"needsReview"`
	ReviewReason string      `json:"reviewReason,omitempty"`
}

// CarryEvent is ball movement by a single possessor within one segment.
// CarryIndex is the cumulative path length; ProgressIndex is the signed
// displacement along the configured attack direction.
type CarryEvent struct {
	TrackID       string  `json:"trackId"`
	PlayerID      string  `json:"playerId,omitempty"`
	Team          Team    `json:"team"`
	StartFrame    int     `json:"startFrame"`
	EndFrame      int     `json:"endFrame"`
	StartTime     float64 `json:"startTime"`
	EndTime       float64 `json:"endTime"`
	CarryIndex    float64 `json:"carryIndex"`
	ProgressIndex float64 `json:"progressIndex"`
	Confidence    float64 `json:"confidence"`
	NeedsReview   bool    `json:"needsReview"`
}

// TurnoverSide marks which side of a turnover pair an event describes.
type TurnoverSide string

const (
	TurnoverLost TurnoverSide = "lost"
	TurnoverWon  TurnoverSide = "won"
)

// TurnoverEvent is one half of the symmetric lost/won pair emitted when
// possession moves between two known, differing teams.
type TurnoverEvent struct {
	TrackID     string       `json:"trackId"`
	PlayerID    string       `json:"playerId,omitempty"`
	Team        Team         `json:"team"`
	Side        TurnoverSide `json:"side"`
	Frame       int          `json:"frame"`
	Timestamp   float64      `json:"timestamp"`
	Confidence  float64      `json:"confidence"`
	NeedsReview bool         `json:"needsReview"`
}

// PendingReview is a reviewable low-confidence event with candidate
// performers for a human (or downstream model) to resolve.
type PendingReview struct {
	EventType       string   `json:"eventType"` // "pass", "carry", "turnover"
	Frame           int      `json:"frame"`
	Timestamp       float64  `json:"timestamp"`
	Team            Team     `json:"team"`
	Confidence      float64  `json:"confidence"`
	Reason          string   `json:"reason"`
	CandidateTracks []string `json:"candidateTracks"`
}

// AttackDirection configures which way the analysed team attacks, used to
// sign carry progress.
type AttackDirection string

const (
	AttackLeftToRight AttackDirection = "left_to_right"
	AttackRightToLeft AttackDirection = "right_to_left"
	AttackNone        AttackDirection = "none"
)

func sortInts(v []int) { sort.Ints(v) }
