package match

// UnknownTeamConfidencePenalty halves outcome confidence when either side of
// a pass has an unknown team.
const UnknownTeamConfidencePenalty = 0.5

// DetectPasses derives pass events from adjacent possession segment pairs
// with different track ids.
//
// Outcome from team continuity: same known team → complete; receiver team
// unknown → incomplete; differing known teams → intercepted. Outcome
// confidence is the minimum of the two segment confidences, halved when
// either team is unknown.
func DetectPasses(segments []PossessionSegment, config EventConfig) []PassEvent {
	var passes []PassEvent
	for i := 1; i < len(segments); i++ {
		from := &segments[i-1]
		to := &segments[i]
		if from.TrackID == to.TrackID {
			continue
		}

		var outcome PassOutcome
		switch {
		case from.Team.Known() && from.Team == to.Team:
			outcome = PassComplete
		case !to.Team.Known():
			outcome = PassIncomplete
		default:
			outcome = PassIntercepted
		}

		conf := minFloat(from.Confidence, to.Confidence)
		if !from.Team.Known() || !to.Team.Known() {
			conf *= UnknownTeamConfidencePenalty
		}

		pass := PassEvent{
			FromTrackID:  from.TrackID,
			ToTrackID:    to.TrackID,
			FromPlayerID: from.PlayerID,
			ToPlayerID:   to.PlayerID,
			Team:         from.Team,
			Outcome:      outcome,
			Frame:        to.StartFrame,
			Timestamp:    to.StartTime,
			Confidence:   conf,
		}

		if conf < config.ReviewConfidenceThreshold {
			pass.NeedsReview = true
			if from.Confidence <= to.Confidence {
				pass.ReviewReason = "low confidence on passing side"
			} else {
				pass.ReviewReason = "low confidence on receiving side"
			}
		}

		passes = append(passes, pass)
	}
	return passes
}

// DetectCarries derives carry events from single segments. CarryIndex is the
// cumulative path length of the possessor during the segment; ProgressIndex
// is the signed displacement along the attack direction (always 0 when no
// direction is configured). Segments below the minimum carry distance are
// not reported.
func DetectCarries(segments []PossessionSegment, tracks map[string]*Track, config EventConfig) []CarryEvent {
	var carries []CarryEvent
	for i := range segments {
		seg := &segments[i]
		tr, ok := tracks[seg.TrackID]
		if !ok {
			continue
		}

		path := segmentPath(tr, seg.StartFrame, seg.EndFrame)
		carryIndex := PathLength(path)
		if carryIndex < config.MinCarryDistance {
			continue
		}

		var progress float64
		if len(path) >= 2 {
			dx := path[len(path)-1].X - path[0].X
			switch config.AttackDirection {
			case AttackLeftToRight:
				progress = dx
			case AttackRightToLeft:
				progress = -dx
			}
		}

		carry := CarryEvent{
			TrackID:       seg.TrackID,
			PlayerID:      seg.PlayerID,
			Team:          seg.Team,
			StartFrame:    seg.StartFrame,
			EndFrame:      seg.EndFrame,
			StartTime:     seg.StartTime,
			EndTime:       seg.EndTime,
			CarryIndex:    carryIndex,
			ProgressIndex: progress,
			Confidence:    seg.Confidence,
			NeedsReview:   seg.Confidence < config.ReviewConfidenceThreshold,
		}
		carries = append(carries, carry)
	}
	return carries
}

// segmentPath collects the track's centre positions over the segment's frame
// range, in frame order, skipping frames without data.
func segmentPath(tr *Track, startFrame, endFrame int) []Point {
	var path []Point
	for f := startFrame; f <= endFrame; f++ {
		if tf := tr.FrameAt(f); tf != nil {
			path = append(path, tf.Center)
		}
	}
	return path
}

// DetectTurnovers derives turnover events from adjacent segments held by two
// different, both-known teams. Each turnover emits a symmetric pair of
// events — "lost" for the losing side, "won" for the gaining side — sharing
// the same confidence. Same-team or any-unknown-team adjacency emits
// nothing.
func DetectTurnovers(segments []PossessionSegment, config EventConfig) []TurnoverEvent {
	var turnovers []TurnoverEvent
	for i := 1; i < len(segments); i++ {
		from := &segments[i-1]
		to := &segments[i]
		if !from.Team.Known() || !to.Team.Known() || from.Team == to.Team {
			continue
		}

		conf := minFloat(from.Confidence, to.Confidence)
		needsReview := conf < config.ReviewConfidenceThreshold

		turnovers = append(turnovers,
			TurnoverEvent{
				TrackID:     from.TrackID,
				PlayerID:    from.PlayerID,
				Team:        from.Team,
				Side:        TurnoverLost,
				Frame:       to.StartFrame,
				Timestamp:   to.StartTime,
				Confidence:  conf,
				NeedsReview: needsReview,
			},
			TurnoverEvent{
				TrackID:     to.TrackID,
				PlayerID:    to.PlayerID,
				Team:        to.Team,
				Side:        TurnoverWon,
				Frame:       to.StartFrame,
				Timestamp:   to.StartTime,
				Confidence:  conf,
				NeedsReview: needsReview,
			},
		)
	}
	return turnovers
}

// ExtractReviewQueue scans produced events for needsReview flags or
// sub-threshold confidence and emits one reviewable entry per physical
// event. Turnover "won" duplicates are suppressed: the lost/won pair
// represents one physical event, so only the "lost" side surfaces.
func ExtractReviewQueue(passes []PassEvent, carries []CarryEvent, turnovers []TurnoverEvent, config EventConfig) []PendingReview {
	var queue []PendingReview

	for _, p := range passes {
		if !p.NeedsReview && p.Confidence >= config.ReviewConfidenceThreshold {
			continue
		}
		reason := p.ReviewReason
		if reason == "" {
			reason = "confidence below review threshold"
		}
		queue = append(queue, PendingReview{
			EventType:       "pass",
			Frame:           p.Frame,
			Timestamp:       p.Timestamp,
			Team:            p.Team,
			Confidence:      p.Confidence,
			Reason:          reason,
			CandidateTracks: []string{p.FromTrackID, p.ToTrackID},
		})
	}

	for _, c := range carries {
		if !c.NeedsReview && c.Confidence >= config.ReviewConfidenceThreshold {
			continue
		}
		queue = append(queue, PendingReview{
			EventType:       "carry",
			Frame:           c.StartFrame,
			Timestamp:       c.StartTime,
			Team:            c.Team,
			Confidence:      c.Confidence,
			Reason:          "confidence below review threshold",
			CandidateTracks: []string{c.TrackID},
		})
	}

	for _, tv := range turnovers {
		if tv.Side == TurnoverWon {
			continue
		}
		if !tv.NeedsReview && tv.Confidence >= config.ReviewConfidenceThreshold {
			continue
		}
		queue = append(queue, PendingReview{
			EventType:       "turnover",
			Frame:           tv.Frame,
			Timestamp:       tv.Timestamp,
			Team:            tv.Team,
			Confidence:      tv.Confidence,
			Reason:          "confidence below review threshold",
			CandidateTracks: []string{tv.TrackID},
		})
	}

	return queue
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
