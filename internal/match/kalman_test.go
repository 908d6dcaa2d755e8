package match

import (
	"math"
	"testing"
)

func TestTrajectoryFilterStationary(t *testing.T) {
	cfg := DefaultKalmanConfig()
	f := NewTrajectoryFilter(cfg, Point{X: 0.5, Y: 0.5}, 0, 0)

	// Repeated observations at the same position should keep the estimate
	// pinned there with near-zero velocity.
	for i := 1; i <= 30; i++ {
		dt := 1.0 / 30
		f.Predict(dt)
		f.Update(Point{X: 0.5, Y: 0.5}, i, float64(i)/30)
	}

	if math.Abs(f.X-0.5) > 1e-3 || math.Abs(f.Y-0.5) > 1e-3 {
		t.Errorf("stationary position drifted to (%v, %v)", f.X, f.Y)
	}
	if f.Speed() > 1e-3 {
		t.Errorf("stationary speed = %v, want ~0", f.Speed())
	}
}

func TestTrajectoryFilterConstantVelocity(t *testing.T) {
	cfg := DefaultKalmanConfig()
	f := NewTrajectoryFilter(cfg, Point{}, 0, 0)

	// Feed a track moving at (0.1, -0.05) units/s for two seconds.
	const dt = 1.0 / 30
	for i := 1; i <= 60; i++ {
		ts := float64(i) * dt
		f.Predict(dt)
		f.Update(Point{X: 0.1 * ts, Y: -0.05 * ts}, i, ts)
	}

	v := f.Velocity()
	if math.Abs(v.X-0.1) > 0.01 || math.Abs(v.Y-(-0.05)) > 0.01 {
		t.Errorf("velocity estimate = %+v, want (0.1, -0.05)", v)
	}

	// A prediction half a second forward should extrapolate linearly.
	before := f.Position()
	f.Predict(0.5)
	got := f.Position()
	wantX := before.X + v.X*0.5
	wantY := before.Y + v.Y*0.5
	if math.Abs(got.X-wantX) > 1e-9 || math.Abs(got.Y-wantY) > 1e-9 {
		t.Errorf("prediction = %+v, want (%v, %v)", got, wantX, wantY)
	}
}

func TestTrajectoryFilterSmoothsNoise(t *testing.T) {
	cfg := DefaultKalmanConfig()
	f := NewTrajectoryFilter(cfg, Point{X: 0.5, Y: 0.5}, 0, 0)

	// Alternating measurement jitter around a fixed point. The posterior
	// should sit much closer to the mean than the raw jitter amplitude.
	const jitter = 0.02
	const dt = 1.0 / 30
	for i := 1; i <= 120; i++ {
		sign := 1.0
		if i%2 == 0 {
			sign = -1.0
		}
		f.Predict(dt)
		f.Update(Point{X: 0.5 + sign*jitter, Y: 0.5 - sign*jitter}, i, float64(i)*dt)
	}

	if err := math.Abs(f.X - 0.5); err > jitter/2 {
		t.Errorf("posterior error %v not smaller than raw jitter %v", err, jitter)
	}
}

func TestTrajectoryFilterPredictNonPositiveDt(t *testing.T) {
	f := NewTrajectoryFilter(DefaultKalmanConfig(), Point{X: 1, Y: 2}, 0, 0)
	f.VX, f.VY = 1, 1
	f.Predict(0)
	f.Predict(-1)
	if f.X != 1 || f.Y != 2 {
		t.Errorf("non-positive dt should not move the state, got (%v, %v)", f.X, f.Y)
	}
	if f.PredictedTo != 0 {
		t.Errorf("non-positive dt should not advance the clock, got %v", f.PredictedTo)
	}
}

func TestTrajectoryFilterCovarianceGrowsDuringGap(t *testing.T) {
	f := NewTrajectoryFilter(DefaultKalmanConfig(), Point{X: 0.5, Y: 0.5}, 0, 0)
	f.Update(Point{X: 0.5, Y: 0.5}, 1, 1.0/30)

	before := f.P[0]
	f.Predict(1.0)
	if f.P[0] <= before {
		t.Errorf("position variance should grow across a gap: before %v after %v", before, f.P[0])
	}
}

func TestGetConfidenceDecay(t *testing.T) {
	cfg := DefaultKalmanConfig() // decay 0.5
	f := NewTrajectoryFilter(cfg, Point{}, 0, 10)

	if got := f.GetConfidence(10); got != 1.0 {
		t.Errorf("confidence at observation time = %v, want 1", got)
	}
	if got := f.GetConfidence(9); got != 1.0 {
		t.Errorf("confidence before observation time = %v, want 1", got)
	}
	want := math.Exp(-0.5 * 2)
	if got := f.GetConfidence(12); math.Abs(got-want) > 1e-12 {
		t.Errorf("confidence after 2s = %v, want %v", got, want)
	}
}

func TestIsPredictionValid(t *testing.T) {
	cfg := DefaultKalmanConfig() // max prediction 2s
	f := NewTrajectoryFilter(cfg, Point{}, 0, 0)

	if !f.IsPredictionValid(1.5) {
		t.Error("prediction 1.5s after observation should be valid")
	}
	if !f.IsPredictionValid(2.0) {
		t.Error("prediction exactly at the limit should be valid")
	}
	if f.IsPredictionValid(2.5) {
		t.Error("prediction 2.5s after observation should be invalid")
	}
}

func TestUpdateSingularInnovationIsNoOp(t *testing.T) {
	f := NewTrajectoryFilter(KalmanConfig{MeasurementNoise: 0}, Point{X: 1, Y: 1}, 0, 0)
	// Zero covariance plus zero measurement noise gives a singular S.
	f.P = [16]float64{}
	f.Update(Point{X: 9, Y: 9}, 5, 1)

	if f.X != 1 || f.Y != 1 {
		t.Errorf("singular update should keep the prior, got (%v, %v)", f.X, f.Y)
	}
	if f.LastObserved != 0 {
		t.Errorf("singular update should not record the observation, LastObserved = %v", f.LastObserved)
	}
}

func TestUpdateAdvancesPredictedTo(t *testing.T) {
	f := NewTrajectoryFilter(DefaultKalmanConfig(), Point{}, 0, 0)
	f.Update(Point{X: 0.1, Y: 0.1}, 3, 0.1)
	if f.PredictedTo != 0.1 {
		t.Errorf("PredictedTo = %v, want 0.1", f.PredictedTo)
	}
	if f.LastFrame != 3 {
		t.Errorf("LastFrame = %v, want 3", f.LastFrame)
	}
}
