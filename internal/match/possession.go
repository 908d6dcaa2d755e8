package match

import "math"

// EventConfig holds event inference parameters. Distances are in normalised
// screen units unless noted.
type EventConfig struct {
	PossessionDistanceThreshold float64         // beyond this the ball is loose
	MinPossessionFrames         int             // shorter segments are discarded
	MinCarryDistance            float64         // carries below this are not reported
	ReviewConfidenceThreshold   float64         // events below this need review
	FramesPerSecond             float64
	AttackDirection             AttackDirection // signs carry progress
}

// DefaultEventConfig returns event inference defaults.
func DefaultEventConfig() EventConfig {
	return EventConfig{
		PossessionDistanceThreshold: 0.05,
		MinPossessionFrames:         3,
		MinCarryDistance:            0.02,
		ReviewConfidenceThreshold:   0.5,
		FramesPerSecond:             30,
		AttackDirection:             AttackNone,
	}
}

// FindClosestPlayer returns the track with minimum Euclidean distance to pos
// among tracks that have data at the queried frame, together with that
// distance. Returns nil when no track has data at the frame.
func FindClosestPlayer(tracks map[string]*Track, frame int, pos Point) (*Track, float64) {
	var best *Track
	bestDist := math.Inf(1)
	for _, tr := range tracks {
		tf := tr.FrameAt(frame)
		if tf == nil {
			continue
		}
		d := math.Hypot(tf.Center.X-pos.X, tf.Center.Y-pos.Y)
		if d < bestDist {
			bestDist = d
			best = tr
		}
	}
	if best == nil {
		return nil, 0
	}
	return best, bestDist
}

// AssignPossession derives the per-frame possession fact.
//
// Rules:
//   - ball not visible: nil possessor, confidence 0;
//   - nearest track beyond the distance threshold: nil possessor (loose
//     ball) but the measured distance is still reported;
//   - otherwise the nearest track possesses with
//     confidence = ballConfidence × max(0, 1 − distance/threshold).
func AssignPossession(tracks map[string]*Track, ball *BallDetection, teams map[string]Team, config EventConfig) FramePossession {
	fp := FramePossession{
		FrameNumber: ball.FrameNumber,
		Timestamp:   ball.Timestamp,
		Team:        TeamUnknown,
	}
	if !ball.Visible {
		return fp
	}
	fp.BallPosition = ball.Position
	fp.BallVisible = true

	closest, dist := FindClosestPlayer(tracks, ball.FrameNumber, ball.Position)
	if closest == nil {
		return fp
	}
	fp.Distance = dist

	if dist > config.PossessionDistanceThreshold {
		// Loose ball: distance is reported, possession is not assigned.
		return fp
	}

	fp.PossessorTrackID = closest.TrackID
	if tf := closest.FrameAt(ball.FrameNumber); tf != nil {
		fp.PlayerPosition = tf.Center
	}
	if team, ok := teams[closest.TrackID]; ok && team != TeamReferee {
		fp.Team = team
	}

	proximity := 1 - dist/config.PossessionDistanceThreshold
	if proximity < 0 {
		proximity = 0
	}
	fp.Confidence = ball.Confidence * proximity
	return fp
}

// BuildFramePossessions runs possession assignment over the ball series in
// frame order.
func BuildFramePossessions(tracks map[string]*Track, ball []BallDetection, teams map[string]Team, config EventConfig) []FramePossession {
	out := make([]FramePossession, 0, len(ball))
	for i := range ball {
		out = append(out, AssignPossession(tracks, &ball[i], teams, config))
	}
	return out
}
