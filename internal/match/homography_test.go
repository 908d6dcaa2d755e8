package match

import (
	"math"
	"strings"
	"testing"
)

// standardKeypoints map the unit screen square onto the four corners of a
// default pitch, a pure affine relationship the DLT must recover exactly.
func standardKeypoints() []Keypoint {
	return []Keypoint{
		{Screen: Point{0, 0}, Field: Point{-52.5, -34}, Confidence: 0.9},
		{Screen: Point{1, 0}, Field: Point{52.5, -34}, Confidence: 0.8},
		{Screen: Point{1, 1}, Field: Point{52.5, 34}, Confidence: 0.85},
		{Screen: Point{0, 1}, Field: Point{-52.5, 34}, Confidence: 0.95},
	}
}

func TestEstimateHomographyTooFewPoints(t *testing.T) {
	_, err := EstimateHomography(standardKeypoints()[:3])
	if err == nil {
		t.Fatal("expected error for 3 correspondences")
	}
	if !strings.Contains(err.Error(), "at least 4") {
		t.Errorf("error should mention the minimum: %v", err)
	}
}

func TestEstimateHomographyMapsCorrespondences(t *testing.T) {
	kps := standardKeypoints()
	h, err := EstimateHomography(kps)
	if err != nil {
		t.Fatal(err)
	}

	for _, kp := range kps {
		got := h.ScreenToField(kp.Screen)
		if math.Abs(got.X-kp.Field.X) > 1e-6 || math.Abs(got.Y-kp.Field.Y) > 1e-6 {
			t.Errorf("keypoint %+v mapped to %+v, want %+v", kp.Screen, got, kp.Field)
		}
	}

	// The centre of the screen should land on the centre spot.
	centre := h.ScreenToField(Point{X: 0.5, Y: 0.5})
	if math.Abs(centre.X) > 1e-6 || math.Abs(centre.Y) > 1e-6 {
		t.Errorf("screen centre mapped to %+v, want origin", centre)
	}
}

func TestEstimateHomographyProjective(t *testing.T) {
	// A genuinely projective setup: a tilted-camera trapezoid in screen
	// space. Five correspondences generated from a known H, least squares
	// must recover it.
	trueH := [9]float64{
		80, 10, -40,
		5, 95, -30,
		0.1, 0.2, 1,
	}
	screens := []Point{{0.1, 0.1}, {0.9, 0.15}, {0.85, 0.9}, {0.12, 0.88}, {0.5, 0.5}}

	kps := make([]Keypoint, len(screens))
	for i, s := range screens {
		kps[i] = Keypoint{Screen: s, Field: TransformPoint(trueH, s), Confidence: 1}
	}

	h, err := EstimateHomography(kps)
	if err != nil {
		t.Fatal(err)
	}
	for _, kp := range kps {
		got := h.ScreenToField(kp.Screen)
		if math.Abs(got.X-kp.Field.X) > 1e-5 || math.Abs(got.Y-kp.Field.Y) > 1e-5 {
			t.Errorf("projective keypoint %+v mapped to %+v, want %+v", kp.Screen, got, kp.Field)
		}
	}
}

func TestEstimateHomographyConfidence(t *testing.T) {
	h, err := EstimateHomography(standardKeypoints())
	if err != nil {
		t.Fatal(err)
	}
	want := (0.9 + 0.8 + 0.85 + 0.95) / 4
	if math.Abs(h.Confidence-want) > 1e-12 {
		t.Errorf("confidence = %v, want mean keypoint confidence %v", h.Confidence, want)
	}
}

func TestNormalisePoints(t *testing.T) {
	pts := []Point{{0, 0}, {2, 0}, {2, 2}, {0, 2}}
	norm, _ := normalisePoints(pts)

	var cx, cy, meanDist float64
	for _, p := range norm {
		cx += p.X
		cy += p.Y
	}
	cx /= float64(len(norm))
	cy /= float64(len(norm))
	for _, p := range norm {
		meanDist += math.Hypot(p.X-cx, p.Y-cy)
	}
	meanDist /= float64(len(norm))

	if math.Abs(cx) > 1e-12 || math.Abs(cy) > 1e-12 {
		t.Errorf("normalised centroid = (%v, %v), want origin", cx, cy)
	}
	if math.Abs(meanDist-math.Sqrt2) > 1e-12 {
		t.Errorf("mean distance = %v, want sqrt(2)", meanDist)
	}
}

func TestNormaliseTransformRoundTrip(t *testing.T) {
	pts := []Point{{0.2, 0.3}, {0.8, 0.1}, {0.7, 0.9}, {0.1, 0.6}}
	norm, tf := normalisePoints(pts)
	inv := invertSimilarity(tf)
	for i, p := range norm {
		back := TransformPoint(inv, p)
		if math.Abs(back.X-pts[i].X) > 1e-12 || math.Abs(back.Y-pts[i].Y) > 1e-12 {
			t.Errorf("point %d round trip: got %+v want %+v", i, back, pts[i])
		}
	}
}
