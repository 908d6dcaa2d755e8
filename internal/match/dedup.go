package match

import (
	"fmt"
	"math"
	"sort"
)

// EventType labels a raw or deduplicated match event.
type EventType string

const (
	EventPass     EventType = "pass"
	EventShot     EventType = "shot"
	EventGoal     EventType = "goal"
	EventSetPiece EventType = "setPiece"
	EventCarry    EventType = "carry"
	EventTurnover EventType = "turnover"
)

// RawEvent is one event as detected inside a single analysis window. The
// same physical event may be reported by several overlapping windows.
type RawEvent struct {
	Timestamp    float64           `json:"timestamp"` // absolute seconds from match start
	Type         EventType         `json:"type"`
	Team         Team              `json:"team"`
	Confidence   float64           `json:"confidence"`         // raw detector confidence
	WindowConf   float64           `json:"windowConfidence"`   // adjusted for window position
	SourceWindow string            `json:"sourceWindow"`       // window identifier
	BallPosition *Point            `json:"ballPosition,omitempty"` // actual ball detection (field meters)
	ModelPos     *Point            `json:"modelPosition,omitempty"` // model-estimated position
	Zone         string            `json:"zone,omitempty"`     // coarse zone label fallback
	Details      map[string]string `json:"details,omitempty"`  // categorical attributes
}

// DeduplicatedEvent is the canonical merge of raw events sharing one
// physical occurrence.
type DeduplicatedEvent struct {
	Timestamp     float64           `json:"timestamp"`
	Type          EventType         `json:"type"`
	Team          Team              `json:"team"`
	Confidence    float64           `json:"confidence"`
	Position      *Point            `json:"position,omitempty"`
	Details       map[string]string `json:"details,omitempty"`
	SourceWindows []string          `json:"sourceWindows"`
	Corroboration int               `json:"corroboration"` // independent windows that saw it
}

// DedupConfig holds deduplication parameters.
type DedupConfig struct {
	TemporalRadius  float64 // seconds; events of one cluster lie within this
	SourceBoost     float64 // per-corroborating-source confidence increment
	MaxBoostSources int     // additional sources beyond this add nothing
}

// DefaultDedupConfig returns deduplication defaults.
func DefaultDedupConfig() DedupConfig {
	return DedupConfig{
		TemporalRadius:  2.0,
		SourceBoost:     0.1,
		MaxBoostSources: 4,
	}
}

// Deduplicate clusters raw events by type, team and temporal proximity and
// merges each cluster into one canonical event. The invariant
// len(result) <= len(raw) holds for every input.
//
// A malformed collection (empty type, confidence outside [0,1], negative or
// non-finite timestamp) is a hard error.
func Deduplicate(raw []RawEvent, config DedupConfig) ([]DeduplicatedEvent, error) {
	for i, ev := range raw {
		if err := validateRawEvent(&ev); err != nil {
			return nil, fmt.Errorf("raw event %d: %w", i, err)
		}
	}

	// Group by (type, team), then cluster each group along time.
	type groupKey struct {
		Type EventType
		Team Team
	}
	groups := make(map[groupKey][]RawEvent)
	for _, ev := range raw {
		k := groupKey{Type: ev.Type, Team: ev.Team}
		groups[k] = append(groups[k], ev)
	}

	var out []DeduplicatedEvent
	for _, events := range groups {
		sort.SliceStable(events, func(i, j int) bool {
			return events[i].Timestamp < events[j].Timestamp
		})

		cluster := []RawEvent{events[0]}
		for _, ev := range events[1:] {
			if ev.Timestamp-cluster[len(cluster)-1].Timestamp <= config.TemporalRadius {
				cluster = append(cluster, ev)
				continue
			}
			out = append(out, mergeCluster(cluster, config))
			cluster = []RawEvent{ev}
		}
		out = append(out, mergeCluster(cluster, config))
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out, nil
}

func validateRawEvent(ev *RawEvent) error {
	if ev.Type == "" {
		return fmt.Errorf("missing event type")
	}
	if ev.Confidence < 0 || ev.Confidence > 1 || math.IsNaN(ev.Confidence) {
		return fmt.Errorf("confidence %v outside [0,1]", ev.Confidence)
	}
	if ev.Timestamp < 0 || math.IsNaN(ev.Timestamp) || math.IsInf(ev.Timestamp, 0) {
		return fmt.Errorf("invalid timestamp %v", ev.Timestamp)
	}
	return nil
}

// mergeCluster merges raw events of one cluster into the canonical event.
// Scalar fields come from the highest-confidence source; categorical details
// take the most corroborated value; confidence grows with the number of
// independent corroborating windows, with diminishing returns, capped at 1.
func mergeCluster(cluster []RawEvent, config DedupConfig) DeduplicatedEvent {
	best := &cluster[0]
	for i := range cluster {
		if cluster[i].Confidence > best.Confidence {
			best = &cluster[i]
		}
	}

	windows := make(map[string]bool)
	for _, ev := range cluster {
		if ev.SourceWindow != "" {
			windows[ev.SourceWindow] = true
		}
	}
	sources := make([]string, 0, len(windows))
	for w := range windows {
		sources = append(sources, w)
	}
	sort.Strings(sources)

	merged := DeduplicatedEvent{
		Timestamp:     best.Timestamp,
		Type:          best.Type,
		Team:          best.Team,
		Position:      resolvePosition(cluster, best),
		Details:       mostCorroboratedDetails(cluster),
		SourceWindows: sources,
		Corroboration: len(sources),
	}
	merged.Confidence = EnsembleConfidence(best.Confidence, len(sources)-1, config)
	return merged
}

// resolvePosition picks the canonical position by fixed priority: an actual
// ball detection from any source beats a model-estimated position, which
// beats a coarse zone fallback. Positions are never averaged across sources.
func resolvePosition(cluster []RawEvent, best *RawEvent) *Point {
	// Ball detections, preferring the highest-confidence source that has one.
	if p := positionBy(cluster, best, func(ev *RawEvent) *Point { return ev.BallPosition }); p != nil {
		return p
	}
	if p := positionBy(cluster, best, func(ev *RawEvent) *Point { return ev.ModelPos }); p != nil {
		return p
	}
	for _, ev := range orderedByConfidence(cluster, best) {
		if ev.Zone != "" {
			if p, ok := ZoneCenter(ev.Zone); ok {
				return &p
			}
		}
	}
	return nil
}

func positionBy(cluster []RawEvent, best *RawEvent, get func(*RawEvent) *Point) *Point {
	for _, ev := range orderedByConfidence(cluster, best) {
		if p := get(ev); p != nil {
			out := *p
			return &out
		}
	}
	return nil
}

// orderedByConfidence returns cluster members best-first.
func orderedByConfidence(cluster []RawEvent, best *RawEvent) []*RawEvent {
	out := make([]*RawEvent, 0, len(cluster))
	out = append(out, best)
	rest := make([]*RawEvent, 0, len(cluster)-1)
	for i := range cluster {
		if &cluster[i] != best {
			rest = append(rest, &cluster[i])
		}
	}
	sort.SliceStable(rest, func(i, j int) bool { return rest[i].Confidence > rest[j].Confidence })
	return append(out, rest...)
}

// mostCorroboratedDetails keeps, per key, the value reported by the most
// sources; ties go to the lexicographically smaller value for determinism.
func mostCorroboratedDetails(cluster []RawEvent) map[string]string {
	counts := make(map[string]map[string]int)
	for _, ev := range cluster {
		for k, v := range ev.Details {
			if counts[k] == nil {
				counts[k] = make(map[string]int)
			}
			counts[k][v]++
		}
	}
	if len(counts) == 0 {
		return nil
	}

	out := make(map[string]string, len(counts))
	for k, values := range counts {
		bestV := ""
		bestN := -1
		for v, n := range values {
			if n > bestN || (n == bestN && v < bestV) {
				bestV = v
				bestN = n
			}
		}
		out[k] = bestV
	}
	return out
}

// EnsembleConfidence boosts a base confidence by extra corroborating
// sources. Each additional source closes a fixed fraction of the remaining
// gap to 1.0, so contributions diminish and the result never exceeds 1.
func EnsembleConfidence(base float64, extraSources int, config DedupConfig) float64 {
	if extraSources > config.MaxBoostSources {
		extraSources = config.MaxBoostSources
	}
	conf := base
	for i := 0; i < extraSources; i++ {
		conf += config.SourceBoost * (1 - conf)
	}
	if conf > 1 {
		conf = 1
	}
	return conf
}

// ZoneCenter maps a coarse pitch zone label to a representative field
// coordinate (meters, centre origin, home attacking +x).
func ZoneCenter(zone string) (Point, bool) {
	size := DefaultFieldSize()
	third := size.Length / 3
	switch zone {
	case "defensive_third":
		return Point{X: -third, Y: 0}, true
	case "middle_third":
		return Point{X: 0, Y: 0}, true
	case "attacking_third":
		return Point{X: third, Y: 0}, true
	case "left_wing":
		return Point{X: 0, Y: -size.Width / 3}, true
	case "right_wing":
		return Point{X: 0, Y: size.Width / 3}, true
	case "center":
		return Point{X: 0, Y: 0}, true
	}
	return Point{}, false
}
