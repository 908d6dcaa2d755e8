package match

// BuildPossessionSegments collapses the per-frame possession series into
// maximal single-possessor segments in one forward pass.
//
// A segment stays open while the same track holds possession. It closes when
// the possessing track changes or the ball loses visibility, and is emitted
// only if its frame count meets the configured minimum. End reasons:
// "pass" when the next possessor is on the same known team, "lost" when
// possession becomes loose or moves to a different or unknown team,
// "unknown" when the series simply ends.
func BuildPossessionSegments(frames []FramePossession, tracks map[string]*Track, config EventConfig) []PossessionSegment {
	var segments []PossessionSegment

	var open *PossessionSegment
	var confSum float64
	var confFrames int

	closeSegment := func(reason SegmentEndReason) {
		if open == nil {
			return
		}
		if confFrames > 0 {
			open.Confidence = confSum / float64(confFrames)
		}
		open.EndReason = reason
		if open.FrameCount() >= config.MinPossessionFrames {
			segments = append(segments, *open)
		}
		open = nil
		confSum = 0
		confFrames = 0
	}

	for i, fp := range frames {
		holder := ""
		if fp.BallVisible {
			holder = fp.PossessorTrackID
		}

		if open != nil && holder != open.TrackID {
			// The possessor changed or the ball went loose/invisible.
			reason := SegmentEndLost
			if holder != "" {
				nextTeam := teamOf(holder, frames[i:])
				if nextTeam.Known() && nextTeam == open.Team {
					reason = SegmentEndPass
				}
			}
			closeSegment(reason)
		}

		if holder != "" && open == nil {
			open = &PossessionSegment{
				TrackID:    holder,
				Team:       fp.Team,
				StartFrame: fp.FrameNumber,
				StartTime:  fp.Timestamp,
				EndFrame:   fp.FrameNumber,
				EndTime:    fp.Timestamp,
			}
			if tr, ok := tracks[holder]; ok {
				open.PlayerID = tr.PlayerID
			}
		}

		if open != nil && holder == open.TrackID {
			open.EndFrame = fp.FrameNumber
			open.EndTime = fp.Timestamp
			confSum += fp.Confidence
			confFrames++
		}
	}

	closeSegment(SegmentEndUnknown)
	return segments
}

// teamOf returns the team of the given holder as recorded on its first
// possession frame in the remaining series.
func teamOf(trackID string, rest []FramePossession) Team {
	for _, fp := range rest {
		if fp.PossessorTrackID == trackID {
			return fp.Team
		}
	}
	return TeamUnknown
}
