package match

import "math"

// RGB is a colour with channels in [0,255].
type RGB struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// HSV is a colour with hue in degrees [0,360) and saturation/value in [0,1].
type HSV struct {
	H float64
	S float64
	V float64
}

// NeutralGray reseeds emptied k-means clusters.
var NeutralGray = RGB{R: 128, G: 128, B: 128}

// HSV distance channel weights. Hue discriminates jerseys best, then
// saturation, then value (lighting washes value out).
const (
	hueWeight        = 0.60
	saturationWeight = 0.25
	valueWeight      = 0.15
)

// ToHSV converts an RGB colour to HSV.
func (c RGB) ToHSV() HSV {
	r := c.R / 255
	g := c.G / 255
	b := c.B / 255

	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	delta := max - min

	var h float64
	switch {
	case delta == 0:
		h = 0
	case max == r:
		h = 60 * math.Mod((g-b)/delta, 6)
	case max == g:
		h = 60 * ((b-r)/delta + 2)
	default:
		h = 60 * ((r-g)/delta + 4)
	}
	if h < 0 {
		h += 360
	}

	var s float64
	if max > 0 {
		s = delta / max
	}

	return HSV{H: h, S: s, V: max}
}

// ColorSpace selects the distance metric used by the clusterer.
type ColorSpace string

const (
	ColorSpaceRGB ColorSpace = "rgb"
	ColorSpaceHSV ColorSpace = "hsv"
)

// RGBDistance is the Euclidean distance in RGB space, normalised to [0,1]
// by the space diagonal.
func RGBDistance(a, b RGB) float64 {
	dr := a.R - b.R
	dg := a.G - b.G
	db := a.B - b.B
	return math.Sqrt(dr*dr+dg*dg+db*db) / math.Sqrt(3*255*255)
}

// HSVDistance weights circular hue difference most heavily, then saturation,
// then value. Result is in [0,1].
func HSVDistance(a, b RGB) float64 {
	ha := a.ToHSV()
	hb := b.ToHSV()

	dh := math.Abs(ha.H - hb.H)
	if dh > 180 {
		dh = 360 - dh
	}
	dh /= 180

	ds := math.Abs(ha.S - hb.S)
	dv := math.Abs(ha.V - hb.V)

	return hueWeight*dh + saturationWeight*ds + valueWeight*dv
}

// ColorDistance dispatches on the configured colour space.
func ColorDistance(a, b RGB, space ColorSpace) float64 {
	if space == ColorSpaceHSV {
		return HSVDistance(a, b)
	}
	return RGBDistance(a, b)
}

// AverageColor returns the channel-wise mean of the given colours.
// Empty input returns NeutralGray.
func AverageColor(colors []RGB) RGB {
	if len(colors) == 0 {
		return NeutralGray
	}
	var sum RGB
	for _, c := range colors {
		sum.R += c.R
		sum.G += c.G
		sum.B += c.B
	}
	n := float64(len(colors))
	return RGB{R: sum.R / n, G: sum.G / n, B: sum.B / n}
}
