package match

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// MinHomographyCorrespondences is the minimum point pairs for a DLT solve.
const MinHomographyCorrespondences = 4

// EstimateHomography solves for the 3x3 projective matrix mapping screen
// points to field points using the Direct Linear Transform. The 2n x 9
// system is solved as a least-squares null-space problem: the solution is
// the right singular vector associated with the smallest singular value.
// Correspondences are Hartley-normalised first for numerical conditioning.
//
// Fewer than MinHomographyCorrespondences pairs is a hard error.
func EstimateHomography(keypoints []Keypoint) (*HomographyData, error) {
	if len(keypoints) < MinHomographyCorrespondences {
		return nil, fmt.Errorf("homography estimation requires at least %d correspondences, got %d",
			MinHomographyCorrespondences, len(keypoints))
	}

	srcNorm, tSrc := normalisePoints(keypointScreens(keypoints))
	dstNorm, tDst := normalisePoints(keypointFields(keypoints))

	// Build the 2n x 9 DLT system A·h = 0.
	n := len(keypoints)
	a := mat.NewDense(2*n, 9, nil)
	for i := 0; i < n; i++ {
		x, y := srcNorm[i].X, srcNorm[i].Y
		u, v := dstNorm[i].X, dstNorm[i].Y

		a.SetRow(2*i, []float64{-x, -y, -1, 0, 0, 0, u * x, u * y, u})
		a.SetRow(2*i+1, []float64{0, 0, 0, -x, -y, -1, v * x, v * y, v})
	}

	var svd mat.SVD
	// Full SVD: with exactly 4 correspondences A is 8x9 and the null-space
	// vector is the 9th right singular vector, which a thin SVD omits.
	if ok := svd.Factorize(a, mat.SVDFull); !ok {
		return nil, fmt.Errorf("homography estimation: SVD factorisation failed")
	}

	var v mat.Dense
	svd.VTo(&v)

	// Null-space solution: column of V for the smallest singular value.
	var hn [9]float64
	for i := 0; i < 9; i++ {
		hn[i] = v.At(i, 8)
	}

	// Denormalise: H = inv(Tdst) · Hn · Tsrc.
	h := compose3x3(invertSimilarity(tDst), compose3x3(hn, tSrc))

	// Scale so h[8] == 1 when possible.
	if math.Abs(h[8]) > DegenerateWThreshold {
		for i := range h {
			h[i] /= h[8]
		}
	}

	conf := aggregateKeypointConfidence(keypoints)
	return &HomographyData{Matrix: h, Keypoints: keypoints, Confidence: conf}, nil
}

func keypointScreens(kps []Keypoint) []Point {
	out := make([]Point, len(kps))
	for i, kp := range kps {
		out[i] = kp.Screen
	}
	return out
}

func keypointFields(kps []Keypoint) []Point {
	out := make([]Point, len(kps))
	for i, kp := range kps {
		out[i] = kp.Field
	}
	return out
}

// normalisePoints translates points to zero centroid and scales so the mean
// distance from the origin is sqrt(2) (Hartley normalisation). Returns the
// normalised points and the applied similarity transform.
func normalisePoints(pts []Point) ([]Point, [9]float64) {
	var cx, cy float64
	for _, p := range pts {
		cx += p.X
		cy += p.Y
	}
	n := float64(len(pts))
	cx /= n
	cy /= n

	var meanDist float64
	for _, p := range pts {
		meanDist += math.Hypot(p.X-cx, p.Y-cy)
	}
	meanDist /= n

	scale := 1.0
	if meanDist > DegenerateWThreshold {
		scale = math.Sqrt2 / meanDist
	}

	out := make([]Point, len(pts))
	for i, p := range pts {
		out[i] = Point{X: (p.X - cx) * scale, Y: (p.Y - cy) * scale}
	}

	t := [9]float64{
		scale, 0, -scale * cx,
		0, scale, -scale * cy,
		0, 0, 1,
	}
	return out, t
}

// invertSimilarity inverts a normalisation transform of the form
// [s 0 tx; 0 s ty; 0 0 1].
func invertSimilarity(t [9]float64) [9]float64 {
	s := t[0]
	return [9]float64{
		1 / s, 0, -t[2] / s,
		0, 1 / s, -t[5] / s,
		0, 0, 1,
	}
}

// compose3x3 multiplies two row-major 3x3 matrices (a·b).
func compose3x3(a, b [9]float64) [9]float64 {
	var out [9]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var sum float64
			for k := 0; k < 3; k++ {
				sum += a[i*3+k] * b[k*3+j]
			}
			out[i*3+j] = sum
		}
	}
	return out
}

func aggregateKeypointConfidence(kps []Keypoint) float64 {
	var sum float64
	for _, kp := range kps {
		sum += kp.Confidence
	}
	return sum / float64(len(kps))
}
