package match

import "sort"

// JerseyRegion is the sub-rectangle of a player bounding box sampled for
// dominant colour, expressed as fractions of the box. The default avoids the
// head, legs and arms.
type JerseyRegion struct {
	Top    float64
	Bottom float64
	Left   float64
	Right  float64
}

// DefaultJerseyRegion returns the torso crop used for colour sampling.
func DefaultJerseyRegion() JerseyRegion {
	return JerseyRegion{Top: 0.2, Bottom: 0.55, Left: 0.25, Right: 0.75}
}

// Crop returns the jersey sub-box of a player bounding box.
func (r JerseyRegion) Crop(box BBox) BBox {
	return BBox{
		X: box.X + box.W*r.Left,
		Y: box.Y + box.H*r.Top,
		W: box.W * (r.Right - r.Left),
		H: box.H * (r.Bottom - r.Top),
	}
}

// ReferenceColors holds known kit colours supplied by match metadata. When
// present the classifier evaluates both cluster-to-team assignments and
// keeps the one with lower total colour distance.
type ReferenceColors struct {
	Home    *RGB
	Away    *RGB
	Referee *RGB
}

// TeamClassificationResult maps track ids to team labels together with the
// detected representative colours and an overall confidence.
type TeamClassificationResult struct {
	Assignments map[string]Team `json:"assignments"`
	HomeColor   RGB             `json:"homeColor"`
	AwayColor   RGB             `json:"awayColor"`
	Confidence  float64         `json:"confidence"`
}

// ClassifyTeams clusters per-track average jersey colours and labels each
// track home/away/referee/unknown.
//
// With fewer samples than the k-means minimum the classification
// short-circuits: every track is labelled unknown with confidence 0.
func ClassifyTeams(samples []ColorSample, config KMeansConfig, refs *ReferenceColors) *TeamClassificationResult {
	perTrack := averagePerTrack(samples)

	result := &TeamClassificationResult{
		Assignments: make(map[string]Team, len(perTrack)),
		HomeColor:   NeutralGray,
		AwayColor:   NeutralGray,
	}

	clusters := KMeansCluster(perTrack, config)
	if len(clusters) < 2 {
		for _, s := range perTrack {
			result.Assignments[s.TrackID] = TeamUnknown
		}
		return result
	}

	// Order clusters by population; the two largest are the candidate teams.
	sort.SliceStable(clusters, func(i, j int) bool {
		return len(clusters[i].Samples) > len(clusters[j].Samples)
	})

	homeIdx, awayIdx := 0, 1
	if refs != nil && refs.Home != nil && refs.Away != nil {
		homeIdx, awayIdx = resolveReferenceAssignment(clusters, refs, config.ColorSpace)
	}

	for ci, cluster := range clusters {
		label := TeamUnknown
		switch ci {
		case homeIdx:
			label = TeamHome
		case awayIdx:
			label = TeamAway
		default:
			if refs != nil && refs.Referee != nil &&
				ColorDistance(cluster.Centroid, *refs.Referee, config.ColorSpace) < RefereeColorThreshold {
				label = TeamReferee
			}
		}
		for _, s := range cluster.Samples {
			result.Assignments[s.TrackID] = label
		}
	}

	result.HomeColor = clusters[homeIdx].Centroid
	result.AwayColor = clusters[awayIdx].Centroid
	result.Confidence = separationConfidence(clusters[homeIdx], clusters[awayIdx], config.ColorSpace)
	return result
}

// RefereeColorThreshold is the maximum distance between a minor cluster
// centroid and the reference referee colour for the referee label.
const RefereeColorThreshold = 0.2

// resolveReferenceAssignment tries both possible cluster-to-team mappings for
// the two largest clusters and picks the one minimising total colour
// distance. A fixed cluster ordering must never be assumed.
func resolveReferenceAssignment(clusters []ClusterResult, refs *ReferenceColors, space ColorSpace) (homeIdx, awayIdx int) {
	straight := ColorDistance(clusters[0].Centroid, *refs.Home, space) +
		ColorDistance(clusters[1].Centroid, *refs.Away, space)
	swapped := ColorDistance(clusters[0].Centroid, *refs.Away, space) +
		ColorDistance(clusters[1].Centroid, *refs.Home, space)

	if swapped < straight {
		return 1, 0
	}
	return 0, 1
}

// separationConfidence is the separation/cohesion ratio between the two
// team clusters, clamped to [0,1]. Well-separated tight clusters approach 1.
func separationConfidence(a, b ClusterResult, space ColorSpace) float64 {
	separation := ColorDistance(a.Centroid, b.Centroid, space)
	cohesion := (a.AvgDistance + b.AvgDistance) / 2

	if separation <= 0 {
		return 0
	}
	conf := (separation - cohesion) / separation
	if conf < 0 {
		return 0
	}
	if conf > 1 {
		return 1
	}
	return conf
}

// averagePerTrack collapses repeated colour samples into one averaged sample
// per track, preserving first-seen ordering for determinism.
func averagePerTrack(samples []ColorSample) []ColorSample {
	byTrack := make(map[string][]RGB)
	order := make([]string, 0)
	positions := make(map[string]Point)
	for _, s := range samples {
		if _, seen := byTrack[s.TrackID]; !seen {
			order = append(order, s.TrackID)
			positions[s.TrackID] = s.Position
		}
		byTrack[s.TrackID] = append(byTrack[s.TrackID], s.Color)
	}

	out := make([]ColorSample, 0, len(order))
	for _, id := range order {
		out = append(out, ColorSample{
			TrackID:  id,
			Color:    AverageColor(byTrack[id]),
			Position: positions[id],
		})
	}
	return out
}
