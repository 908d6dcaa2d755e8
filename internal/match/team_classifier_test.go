package match

import (
	"testing"
)

func TestJerseyRegionCrop(t *testing.T) {
	box := BBox{X: 100, Y: 200, W: 40, H: 100}
	crop := DefaultJerseyRegion().Crop(box)

	if crop.X != 110 || crop.Y != 220 {
		t.Errorf("crop origin = (%v, %v), want (110, 220)", crop.X, crop.Y)
	}
	if crop.W != 20 || crop.H != 35 {
		t.Errorf("crop size = (%v, %v), want (20, 35)", crop.W, crop.H)
	}
}

func TestClassifyTeamsTooFewSamples(t *testing.T) {
	samples := []ColorSample{
		{TrackID: "t1", Color: RGB{200, 0, 0}},
		{TrackID: "t2", Color: RGB{0, 0, 200}},
	}
	result := ClassifyTeams(samples, DefaultKMeansConfig(), nil)

	if result.Confidence != 0 {
		t.Errorf("confidence = %v, want 0 for short-circuit", result.Confidence)
	}
	for id, team := range result.Assignments {
		if team != TeamUnknown {
			t.Errorf("track %s = %s, want unknown", id, team)
		}
	}
	if len(result.Assignments) != 2 {
		t.Errorf("got %d assignments, want 2", len(result.Assignments))
	}
}

func TestClassifyTeamsTwoTeams(t *testing.T) {
	result := ClassifyTeams(twoTeamSamples(), DefaultKMeansConfig(), nil)

	var home, away int
	for _, team := range result.Assignments {
		switch team {
		case TeamHome:
			home++
		case TeamAway:
			away++
		default:
			t.Errorf("unexpected label %s", team)
		}
	}
	if home != 3 || away != 3 {
		t.Errorf("home=%d away=%d, want 3 and 3", home, away)
	}
	if result.Confidence <= 0.5 {
		t.Errorf("confidence = %v, want well above 0.5 for cleanly separated kits", result.Confidence)
	}
	if result.HomeColor == result.AwayColor {
		t.Error("team colours should differ")
	}
}

func TestClassifyTeamsReferenceColors(t *testing.T) {
	red := RGB{220, 30, 30}
	blue := RGB{30, 40, 220}
	refs := &ReferenceColors{Home: &blue, Away: &red}

	result := ClassifyTeams(twoTeamSamples(), DefaultKMeansConfig(), refs)

	// Reference colours pin the mapping: blue tracks are home.
	for id, team := range result.Assignments {
		switch id[:1] {
		case "b":
			if team != TeamHome {
				t.Errorf("blue track %s = %s, want home per reference colours", id, team)
			}
		case "r":
			if team != TeamAway {
				t.Errorf("red track %s = %s, want away per reference colours", id, team)
			}
		}
	}
}

func TestClassifyTeamsAveragesPerTrack(t *testing.T) {
	// One track with noisy repeated samples must receive exactly one label.
	samples := append(twoTeamSamples(),
		ColorSample{TrackID: "r1", Color: RGB{225, 25, 28}},
		ColorSample{TrackID: "r1", Color: RGB{215, 35, 32}},
	)
	result := ClassifyTeams(samples, DefaultKMeansConfig(), nil)
	if len(result.Assignments) != 6 {
		t.Errorf("got %d assignments, want 6 unique tracks", len(result.Assignments))
	}
	if _, ok := result.Assignments["r1"]; !ok {
		t.Error("repeated-sample track missing from assignments")
	}
}

func TestSeparationConfidence(t *testing.T) {
	tight := ClusterResult{Centroid: RGB{255, 0, 0}, AvgDistance: 0.01}
	far := ClusterResult{Centroid: RGB{0, 0, 255}, AvgDistance: 0.01}
	if conf := separationConfidence(tight, far, ColorSpaceHSV); conf < 0.9 {
		t.Errorf("tight distant clusters confidence = %v, want near 1", conf)
	}

	loose := ClusterResult{Centroid: RGB{255, 0, 0}, AvgDistance: 0.9}
	near := ClusterResult{Centroid: RGB{250, 5, 5}, AvgDistance: 0.9}
	if conf := separationConfidence(loose, near, ColorSpaceHSV); conf != 0 {
		t.Errorf("overlapping clusters confidence = %v, want 0", conf)
	}

	same := ClusterResult{Centroid: RGB{255, 0, 0}}
	if conf := separationConfidence(same, same, ColorSpaceHSV); conf != 0 {
		t.Errorf("identical centroids confidence = %v, want 0", conf)
	}
}
