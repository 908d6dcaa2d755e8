package match

import "math"

// Constants for homography handling
const (
	// DegenerateWThreshold is the minimum |w| for a valid projective divide.
	DegenerateWThreshold = 1e-10
	// SingularDetThreshold is the minimum |det| for 3x3 matrix inversion.
	SingularDetThreshold = 1e-10
)

// FieldSize describes pitch dimensions in meters.
type FieldSize struct {
	Length float64 `json:"length"` // along x, e.g. 105
	Width  float64 `json:"width"`  // along y, e.g. 68
}

// DefaultFieldSize returns the standard association-football pitch.
func DefaultFieldSize() FieldSize {
	return FieldSize{Length: 105, Width: 68}
}

// Keypoint is one screen<->field correspondence used to derive a homography.
type Keypoint struct {
	Screen     Point   `json:"screen"` // normalised [0,1]
	Field      Point   `json:"field"`  // meters
	Label      string  `json:"label,omitempty"`
	Confidence float64 `json:"confidence"`
}

// HomographyData is a projective mapping from normalised screen space to
// field space (meters). Matrix is 3x3 row-major.
type HomographyData struct {
	Matrix       [9]float64 `json:"matrix"`
	Keypoints    []Keypoint `json:"keypoints,omitempty"`
	Confidence   float64    `json:"confidence"`
	FieldSize    *FieldSize `json:"fieldSize,omitempty"`
	CameraMoving bool       `json:"cameraMoving,omitempty"`
	FrameNumber  int        `json:"frameNumber"`
}

// TransformPoint applies the projective map (x',y') = (H·[x,y,1])/w.
// When |w| is below DegenerateWThreshold the transform is degenerate and the
// origin is returned as a sentinel; callers must treat it as "unmapped",
// not as a valid coordinate.
func TransformPoint(h [9]float64, p Point) Point {
	w := h[6]*p.X + h[7]*p.Y + h[8]
	if math.Abs(w) < DegenerateWThreshold {
		return Point{}
	}
	return Point{
		X: (h[0]*p.X + h[1]*p.Y + h[2]) / w,
		Y: (h[3]*p.X + h[4]*p.Y + h[5]) / w,
	}
}

// Invert3x3 computes the inverse of a row-major 3x3 matrix by the classical
// cofactor/determinant formula. Returns nil when |det| < SingularDetThreshold.
func Invert3x3(m [9]float64) *[9]float64 {
	det := m[0]*(m[4]*m[8]-m[5]*m[7]) -
		m[1]*(m[3]*m[8]-m[5]*m[6]) +
		m[2]*(m[3]*m[7]-m[4]*m[6])
	if math.Abs(det) < SingularDetThreshold {
		return nil
	}

	inv := [9]float64{
		(m[4]*m[8] - m[5]*m[7]) / det,
		(m[2]*m[7] - m[1]*m[8]) / det,
		(m[1]*m[5] - m[2]*m[4]) / det,
		(m[5]*m[6] - m[3]*m[8]) / det,
		(m[0]*m[8] - m[2]*m[6]) / det,
		(m[2]*m[3] - m[0]*m[5]) / det,
		(m[3]*m[7] - m[4]*m[6]) / det,
		(m[1]*m[6] - m[0]*m[7]) / det,
		(m[0]*m[4] - m[1]*m[3]) / det,
	}
	return &inv
}

// ScreenToField maps a normalised screen point into field meters.
func (h *HomographyData) ScreenToField(p Point) Point {
	return TransformPoint(h.Matrix, p)
}

// FieldToScreen maps a field point back into normalised screen space.
// Returns nil when the homography is not invertible.
func (h *HomographyData) FieldToScreen(p Point) *Point {
	inv := Invert3x3(h.Matrix)
	if inv == nil {
		return nil
	}
	out := TransformPoint(*inv, p)
	return &out
}

// IsOnPitch tests a field-space point against half-length/half-width bounds,
// with a small margin so touchline players are not rejected.
func (h *HomographyData) IsOnPitch(p Point, marginMeters float64) bool {
	size := DefaultFieldSize()
	if h.FieldSize != nil {
		size = *h.FieldSize
	}
	halfL := size.Length/2 + marginMeters
	halfW := size.Width/2 + marginMeters
	return p.X >= -halfL && p.X <= halfL && p.Y >= -halfW && p.Y <= halfW
}

// InterpolateHomography linearly interpolates matrix entries and confidence
// between two keyframe homographies by the fractional frame position t,
// clamped to [0,1]. Used when homography is only computed periodically.
func InterpolateHomography(a, b *HomographyData, t float64) *HomographyData {
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	out := &HomographyData{
		Confidence:   a.Confidence + (b.Confidence-a.Confidence)*t,
		FieldSize:    a.FieldSize,
		CameraMoving: a.CameraMoving || b.CameraMoving,
	}
	for i := range out.Matrix {
		out.Matrix[i] = a.Matrix[i] + (b.Matrix[i]-a.Matrix[i])*t
	}
	return out
}
