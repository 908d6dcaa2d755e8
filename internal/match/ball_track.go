package match

// SmoothBallTrack runs the trajectory filter over a ball detection series
// and fills occlusion gaps with predicted samples.
//
// Observed frames are filtered in place (position replaced by the posterior
// estimate). Frames with no visible ball get an interpolated sample while
// the prediction is still valid, with confidence decayed by time since the
// last real observation; once the prediction expires the gap is left empty
// and the ball reported invisible.
func SmoothBallTrack(ball []BallDetection, config KalmanConfig, fps float64) []BallDetection {
	if len(ball) == 0 || fps <= 0 {
		return nil
	}

	byFrame := make(map[int]*BallDetection, len(ball))
	minFrame, maxFrame := ball[0].FrameNumber, ball[0].FrameNumber
	for i := range ball {
		b := &ball[i]
		byFrame[b.FrameNumber] = b
		if b.FrameNumber < minFrame {
			minFrame = b.FrameNumber
		}
		if b.FrameNumber > maxFrame {
			maxFrame = b.FrameNumber
		}
	}

	var filter *TrajectoryFilter
	out := make([]BallDetection, 0, maxFrame-minFrame+1)

	for frame := minFrame; frame <= maxFrame; frame++ {
		t := float64(frame) / fps
		obs, seen := byFrame[frame]

		if seen && obs.Visible {
			if filter == nil {
				filter = NewTrajectoryFilter(config, obs.Position, frame, t)
			} else {
				if dt := t - filter.PredictedTo; dt > 0 {
					filter.Predict(dt)
				}
				filter.Update(obs.Position, frame, t)
			}
			out = append(out, BallDetection{
				FrameNumber: frame,
				Timestamp:   t,
				Position:    filter.Position(),
				Confidence:  obs.Confidence,
				Visible:     true,
			})
			continue
		}

		if filter == nil {
			continue
		}
		if dt := t - filter.PredictedTo; dt > 0 {
			filter.Predict(dt)
		}
		if !filter.IsPredictionValid(t) {
			continue
		}
		out = append(out, BallDetection{
			FrameNumber:  frame,
			Timestamp:    t,
			Position:     filter.Position(),
			Confidence:   filter.GetConfidence(t),
			Visible:      true,
			Interpolated: true,
		})
	}

	return out
}
