package match

// Detector abstracts the player/ball detection source. Implementations are
// interchangeable and selected by configuration: the engine never assumes a
// particular model backend.
type Detector interface {
	// DetectFrame returns the detections for one frame.
	DetectFrame(frameNumber int) ([]Detection, error)

	// Name identifies the implementation for run metadata.
	Name() string
}

// DetectorKind selects a Detector implementation.
type DetectorKind string

const (
	// DetectorPrecomputed serves detections already produced upstream
	// (the normal batch path: the ml-inference service ran the model).
	DetectorPrecomputed DetectorKind = "precomputed"
	// DetectorStub returns no detections; a placeholder for wiring tests.
	DetectorStub DetectorKind = "stub"
)

// PrecomputedDetector serves per-frame detections loaded from an upstream
// tracking result.
type PrecomputedDetector struct {
	frames map[int][]Detection
}

// NewPrecomputedDetector indexes detections by frame number.
func NewPrecomputedDetector(frames map[int][]Detection) *PrecomputedDetector {
	if frames == nil {
		frames = make(map[int][]Detection)
	}
	return &PrecomputedDetector{frames: frames}
}

func (d *PrecomputedDetector) DetectFrame(frameNumber int) ([]Detection, error) {
	return d.frames[frameNumber], nil
}

func (d *PrecomputedDetector) Name() string { return string(DetectorPrecomputed) }

// StubDetector detects nothing. It exists so pipelines can be exercised
// without any upstream data.
type StubDetector struct{}

func (StubDetector) DetectFrame(int) ([]Detection, error) { return nil, nil }
func (StubDetector) Name() string                         { return string(DetectorStub) }

// NewDetector builds a detector for the configured kind.
func NewDetector(kind DetectorKind, frames map[int][]Detection) Detector {
	switch kind {
	case DetectorPrecomputed:
		return NewPrecomputedDetector(frames)
	default:
		return StubDetector{}
	}
}

// Compile-time interface checks.
var (
	_ Detector = (*PrecomputedDetector)(nil)
	_ Detector = StubDetector{}
)
