package match

import "math"

// Constants for trajectory filtering
const (
	// MinInnovationDeterminant is the minimum determinant for inverting the
	// 2x2 innovation covariance. Below this the update is skipped and the
	// filter keeps its prior estimate.
	MinInnovationDeterminant = 1e-12
	// InitialPositionVariance seeds the covariance for a new filter.
	InitialPositionVariance = 1.0
	// InitialVelocityVariance seeds the velocity covariance for a new filter.
	InitialVelocityVariance = 10.0
)

// KalmanConfig holds trajectory filter parameters.
type KalmanConfig struct {
	ProcessNoise      float64 // white-noise acceleration spectral density
	MeasurementNoise  float64 // position measurement variance
	ConfidenceDecay   float64 // exponential decay rate (per second) since last observation
	MaxPredictionTime float64 // seconds a prediction stays usable without observations
}

// DefaultKalmanConfig returns defaults tuned for normalised screen
// coordinates at broadcast frame rates.
func DefaultKalmanConfig() KalmanConfig {
	return KalmanConfig{
		ProcessNoise:      1e-4,
		MeasurementNoise:  1e-3,
		ConfidenceDecay:   0.5,
		MaxPredictionTime: 2.0,
	}
}

// TrajectoryFilter is a constant-velocity Kalman filter over state
// [x, y, vx, vy] with a position-only measurement model. P is the 4x4
// covariance, row-major.
type TrajectoryFilter struct {
	X, Y, VX, VY float64
	P            [16]float64

	Config KalmanConfig

	LastFrame    int
	LastObserved float64 // seconds; time of the last real measurement
	PredictedTo  float64 // seconds; how far the state has been advanced
	Initialized  bool
}

// NewTrajectoryFilter creates a filter seeded at the given position.
func NewTrajectoryFilter(config KalmanConfig, pos Point, frame int, t float64) *TrajectoryFilter {
	f := &TrajectoryFilter{
		X:            pos.X,
		Y:            pos.Y,
		Config:       config,
		LastFrame:    frame,
		LastObserved: t,
		PredictedTo:  t,
		Initialized:  true,
	}
	f.P = [16]float64{
		InitialPositionVariance, 0, 0, 0,
		0, InitialPositionVariance, 0, 0,
		0, 0, InitialVelocityVariance, 0,
		0, 0, 0, InitialVelocityVariance,
	}
	return f
}

// Predict advances the state by dt seconds: x' = F·x, P' = F·P·Fᵗ + Q.
// Q is the continuous white-noise-acceleration matrix with dt⁴/4, dt³/2
// and dt² terms.
func (f *TrajectoryFilter) Predict(dt float64) {
	if dt <= 0 {
		return
	}
	f.PredictedTo += dt

	// State: constant velocity.
	f.X += f.VX * dt
	f.Y += f.VY * dt

	// F·P: row 0 gains dt·row 2, row 1 gains dt·row 3.
	P := f.P
	var FP [16]float64
	for j := 0; j < 4; j++ {
		FP[0*4+j] = P[0*4+j] + dt*P[2*4+j]
		FP[1*4+j] = P[1*4+j] + dt*P[3*4+j]
		FP[2*4+j] = P[2*4+j]
		FP[3*4+j] = P[3*4+j]
	}

	// (F·P)·Fᵗ: column 0 gains dt·column 2, column 1 gains dt·column 3.
	for i := 0; i < 4; i++ {
		f.P[i*4+0] = FP[i*4+0] + dt*FP[i*4+2]
		f.P[i*4+1] = FP[i*4+1] + dt*FP[i*4+3]
		f.P[i*4+2] = FP[i*4+2]
		f.P[i*4+3] = FP[i*4+3]
	}

	// Process noise Q (white-noise acceleration, per axis):
	// [dt⁴/4  dt³/2] coupling position and velocity, dt² on velocity.
	q := f.Config.ProcessNoise
	dt2 := dt * dt
	dt3 := dt2 * dt
	dt4 := dt3 * dt

	f.P[0*4+0] += q * dt4 / 4
	f.P[1*4+1] += q * dt4 / 4
	f.P[0*4+2] += q * dt3 / 2
	f.P[2*4+0] += q * dt3 / 2
	f.P[1*4+3] += q * dt3 / 2
	f.P[3*4+1] += q * dt3 / 2
	f.P[2*4+2] += q * dt2
	f.P[3*4+3] += q * dt2
}

// Update applies the standard Kalman update with a position measurement.
// If the innovation covariance is singular the update is a no-op and the
// filter keeps its prior estimate.
func (f *TrajectoryFilter) Update(z Point, frame int, t float64) {
	// Innovation y = z - H·x, H observes position only.
	yX := z.X - f.X
	yY := z.Y - f.Y

	// Innovation covariance S = H·P·Hᵗ + R (2x2).
	r := f.Config.MeasurementNoise
	s00 := f.P[0*4+0] + r
	s01 := f.P[0*4+1]
	s10 := f.P[1*4+0]
	s11 := f.P[1*4+1] + r

	det := s00*s11 - s01*s10
	if math.Abs(det) < MinInnovationDeterminant {
		return
	}

	invS00 := s11 / det
	invS01 := -s01 / det
	invS10 := -s10 / det
	invS11 := s00 / det

	// Kalman gain K = P·Hᵗ·S⁻¹ (4x2).
	var K [8]float64
	for i := 0; i < 4; i++ {
		K[i*2+0] = f.P[i*4+0]*invS00 + f.P[i*4+1]*invS10
		K[i*2+1] = f.P[i*4+0]*invS01 + f.P[i*4+1]*invS11
	}

	// State update x' = x + K·y.
	f.X += K[0*2+0]*yX + K[0*2+1]*yY
	f.Y += K[1*2+0]*yX + K[1*2+1]*yY
	f.VX += K[2*2+0]*yX + K[2*2+1]*yY
	f.VY += K[3*2+0]*yX + K[3*2+1]*yY

	// Covariance update P' = (I - K·H)·P. K·H has K's columns in the first
	// two columns and zeros elsewhere.
	var IminusKH [16]float64
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			identity := 0.0
			if i == j {
				identity = 1
			}
			var kh float64
			switch j {
			case 0:
				kh = K[i*2+0]
			case 1:
				kh = K[i*2+1]
			}
			IminusKH[i*4+j] = identity - kh
		}
	}

	var newP [16]float64
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += IminusKH[i*4+k] * f.P[k*4+j]
			}
			newP[i*4+j] = sum
		}
	}
	f.P = newP

	f.LastFrame = frame
	f.LastObserved = t
	if t > f.PredictedTo {
		f.PredictedTo = t
	}
}

// Position returns the current position estimate.
func (f *TrajectoryFilter) Position() Point { return Point{X: f.X, Y: f.Y} }

// Velocity returns the current velocity estimate.
func (f *TrajectoryFilter) Velocity() Point { return Point{X: f.VX, Y: f.VY} }

// Speed returns the current speed magnitude.
func (f *TrajectoryFilter) Speed() float64 { return math.Hypot(f.VX, f.VY) }

// GetConfidence decays exponentially with time since the last real
// observation: exp(-decayRate · Δt). A filter that was just updated
// reports 1.0.
func (f *TrajectoryFilter) GetConfidence(t float64) float64 {
	dt := t - f.LastObserved
	if dt <= 0 {
		return 1.0
	}
	return math.Exp(-f.Config.ConfidenceDecay * dt)
}

// IsPredictionValid reports whether predictions at time t are still usable,
// i.e. the filter has observed something within MaxPredictionTime.
func (f *TrajectoryFilter) IsPredictionValid(t float64) bool {
	return f.Initialized && t-f.LastObserved <= f.Config.MaxPredictionTime
}
