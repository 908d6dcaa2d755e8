package match

import (
	"math"
	"testing"
)

func segment(track string, team Team, startFrame, endFrame int, conf float64) PossessionSegment {
	return PossessionSegment{
		TrackID:    track,
		Team:       team,
		StartFrame: startFrame,
		EndFrame:   endFrame,
		StartTime:  float64(startFrame) / 30,
		EndTime:    float64(endFrame) / 30,
		Confidence: conf,
	}
}

func TestDetectPassesOutcomes(t *testing.T) {
	cfg := DefaultEventConfig()
	cases := []struct {
		name     string
		from, to PossessionSegment
		want     PassOutcome
	}{
		{"complete", segment("a", TeamHome, 1, 5, 0.9), segment("b", TeamHome, 6, 10, 0.8), PassComplete},
		{"intercepted", segment("a", TeamHome, 1, 5, 0.9), segment("b", TeamAway, 6, 10, 0.8), PassIntercepted},
		{"incomplete", segment("a", TeamHome, 1, 5, 0.9), segment("b", TeamUnknown, 6, 10, 0.8), PassIncomplete},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			passes := DetectPasses([]PossessionSegment{tc.from, tc.to}, cfg)
			if len(passes) != 1 {
				t.Fatalf("got %d passes, want 1", len(passes))
			}
			if passes[0].Outcome != tc.want {
				t.Errorf("outcome = %s, want %s", passes[0].Outcome, tc.want)
			}
			if passes[0].Frame != 6 {
				t.Errorf("pass frame = %d, want receiver start frame", passes[0].Frame)
			}
		})
	}
}

func TestDetectPassesSameTrackNoPass(t *testing.T) {
	segs := []PossessionSegment{
		segment("a", TeamHome, 1, 5, 0.9),
		segment("a", TeamHome, 8, 12, 0.9),
	}
	if passes := DetectPasses(segs, DefaultEventConfig()); len(passes) != 0 {
		t.Errorf("same-track adjacency produced %d passes, want 0", len(passes))
	}
}

func TestDetectPassesConfidence(t *testing.T) {
	cfg := DefaultEventConfig()

	// Both teams known: min of the segment confidences.
	passes := DetectPasses([]PossessionSegment{
		segment("a", TeamHome, 1, 5, 0.9),
		segment("b", TeamHome, 6, 10, 0.6),
	}, cfg)
	if math.Abs(passes[0].Confidence-0.6) > 1e-9 {
		t.Errorf("confidence = %v, want 0.6", passes[0].Confidence)
	}

	// Unknown receiver team halves it.
	passes = DetectPasses([]PossessionSegment{
		segment("a", TeamHome, 1, 5, 0.9),
		segment("b", TeamUnknown, 6, 10, 0.6),
	}, cfg)
	if math.Abs(passes[0].Confidence-0.3) > 1e-9 {
		t.Errorf("penalised confidence = %v, want 0.3", passes[0].Confidence)
	}
	if !passes[0].NeedsReview {
		t.Error("sub-threshold pass should be flagged for review")
	}
}

func TestDetectCarries(t *testing.T) {
	cfg := DefaultEventConfig()
	cfg.AttackDirection = AttackLeftToRight

	tr := NewTrack("a")
	for f := 1; f <= 5; f++ {
		tr.Frames[f] = &TrackFrame{
			FrameNumber: f,
			Center:      Point{X: 0.1 + float64(f-1)*0.05, Y: 0.5},
		}
	}
	tracks := map[string]*Track{"a": tr}
	segs := []PossessionSegment{segment("a", TeamHome, 1, 5, 0.9)}

	carries := DetectCarries(segs, tracks, cfg)
	if len(carries) != 1 {
		t.Fatalf("got %d carries, want 1", len(carries))
	}
	c := carries[0]
	if math.Abs(c.CarryIndex-0.2) > 1e-9 {
		t.Errorf("carry index = %v, want 0.2", c.CarryIndex)
	}
	if math.Abs(c.ProgressIndex-0.2) > 1e-9 {
		t.Errorf("progress index = %v, want +0.2 attacking left to right", c.ProgressIndex)
	}

	// Opposite attack direction flips the sign.
	cfg.AttackDirection = AttackRightToLeft
	carries = DetectCarries(segs, tracks, cfg)
	if math.Abs(carries[0].ProgressIndex-(-0.2)) > 1e-9 {
		t.Errorf("progress index = %v, want -0.2 attacking right to left", carries[0].ProgressIndex)
	}
}

func TestDetectCarriesBelowMinimum(t *testing.T) {
	cfg := DefaultEventConfig() // MinCarryDistance 0.02
	tr := NewTrack("a")
	tr.Frames[1] = &TrackFrame{FrameNumber: 1, Center: Point{0.5, 0.5}}
	tr.Frames[2] = &TrackFrame{FrameNumber: 2, Center: Point{0.505, 0.5}}
	tracks := map[string]*Track{"a": tr}

	carries := DetectCarries([]PossessionSegment{segment("a", TeamHome, 1, 2, 0.9)}, tracks, cfg)
	if len(carries) != 0 {
		t.Errorf("a 0.005 shuffle produced %d carries, want 0", len(carries))
	}
}

func TestDetectCarriesNoAttackDirection(t *testing.T) {
	cfg := DefaultEventConfig() // AttackNone
	tr := NewTrack("a")
	tr.Frames[1] = &TrackFrame{FrameNumber: 1, Center: Point{0.1, 0.5}}
	tr.Frames[2] = &TrackFrame{FrameNumber: 2, Center: Point{0.4, 0.5}}
	tracks := map[string]*Track{"a": tr}

	carries := DetectCarries([]PossessionSegment{segment("a", TeamHome, 1, 2, 0.9)}, tracks, cfg)
	if len(carries) != 1 {
		t.Fatalf("got %d carries, want 1", len(carries))
	}
	if carries[0].ProgressIndex != 0 {
		t.Errorf("progress index = %v, want 0 without an attack direction", carries[0].ProgressIndex)
	}
}

func TestDetectTurnoversSymmetricPair(t *testing.T) {
	cfg := DefaultEventConfig()
	segs := []PossessionSegment{
		segment("a", TeamHome, 1, 5, 0.9),
		segment("b", TeamAway, 6, 10, 0.7),
	}
	turnovers := DetectTurnovers(segs, cfg)
	if len(turnovers) != 2 {
		t.Fatalf("got %d turnover events, want a lost/won pair", len(turnovers))
	}

	lost, won := turnovers[0], turnovers[1]
	if lost.Side != TurnoverLost || lost.Team != TeamHome || lost.TrackID != "a" {
		t.Errorf("lost side wrong: %+v", lost)
	}
	if won.Side != TurnoverWon || won.Team != TeamAway || won.TrackID != "b" {
		t.Errorf("won side wrong: %+v", won)
	}
	if lost.Confidence != won.Confidence || math.Abs(lost.Confidence-0.7) > 1e-9 {
		t.Errorf("pair confidences = %v, %v, want shared 0.7", lost.Confidence, won.Confidence)
	}
	if lost.Frame != 6 || won.Frame != 6 {
		t.Errorf("pair frames = %d, %d, want gaining side start frame", lost.Frame, won.Frame)
	}
}

func TestDetectTurnoversUnknownTeamSkipped(t *testing.T) {
	cfg := DefaultEventConfig()
	segs := []PossessionSegment{
		segment("a", TeamHome, 1, 5, 0.9),
		segment("b", TeamUnknown, 6, 10, 0.7),
		segment("c", TeamHome, 11, 15, 0.9),
	}
	if got := DetectTurnovers(segs, cfg); len(got) != 0 {
		t.Errorf("unknown-team adjacency produced %d turnovers, want 0", len(got))
	}
}

func TestExtractReviewQueue(t *testing.T) {
	cfg := DefaultEventConfig() // review threshold 0.5

	passes := []PassEvent{
		{FromTrackID: "a", ToTrackID: "b", Team: TeamHome, Confidence: 0.9},
		{FromTrackID: "c", ToTrackID: "d", Team: TeamHome, Confidence: 0.2, NeedsReview: true, ReviewReason: "low confidence on passing side"},
	}
	turnovers := []TurnoverEvent{
		{TrackID: "a", Team: TeamHome, Side: TurnoverLost, Confidence: 0.3, NeedsReview: true},
		{TrackID: "b", Team: TeamAway, Side: TurnoverWon, Confidence: 0.3, NeedsReview: true},
	}

	queue := ExtractReviewQueue(passes, nil, turnovers, cfg)
	if len(queue) != 2 {
		t.Fatalf("queue length = %d, want 2 (one pass, one turnover)", len(queue))
	}

	if queue[0].EventType != "pass" || queue[0].Reason != "low confidence on passing side" {
		t.Errorf("pass review wrong: %+v", queue[0])
	}
	if len(queue[0].CandidateTracks) != 2 {
		t.Errorf("pass candidates = %v, want both sides", queue[0].CandidateTracks)
	}

	// Only the lost side of the turnover pair surfaces.
	if queue[1].EventType != "turnover" || queue[1].Team != TeamHome {
		t.Errorf("turnover review wrong: %+v", queue[1])
	}
}
