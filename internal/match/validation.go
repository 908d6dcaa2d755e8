package match

import (
	"fmt"
	"math"
	"sort"
)

// Constants for consistency validation
const (
	// MaxHumanSpeedMps is the positional plausibility limit. Faster implied
	// movement between two player-bound events is physically suspect.
	MaxHumanSpeedMps = 12.0
	// MinEventIntervalSeconds is the shortest natural gap between unrelated
	// same-team events.
	MinEventIntervalSeconds = 1.0
	// GoalKickoffWindowSeconds is how soon a set piece must follow a goal.
	GoalKickoffWindowSeconds = 30.0
)

// IssueSeverity grades a validation finding.
type IssueSeverity string

const (
	SeverityWarning IssueSeverity = "warning"
	SeverityError   IssueSeverity = "error"
)

// ValidationIssue is one advisory finding. Validation results are data,
// never errors: callers decide whether to drop, flag or accept.
type ValidationIssue struct {
	Check     string        `json:"check"` // "temporal", "logical", "positional"
	Severity  IssueSeverity `json:"severity"`
	Message   string        `json:"message"`
	Timestamp float64       `json:"timestamp"`
	Scale     float64       `json:"scale,omitempty"` // severity scaling, e.g. speed ratio
}

// ValidationSummary bundles the findings of all three passes.
type ValidationSummary struct {
	Issues   []ValidationIssue `json:"issues"`
	Errors   int               `json:"errors"`
	Warnings int               `json:"warnings"`
}

// ValidateEvents runs the temporal, logical and positional consistency
// passes over a deduplicated event stream and unions their findings.
func ValidateEvents(events []DeduplicatedEvent) ValidationSummary {
	sorted := make([]DeduplicatedEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Timestamp < sorted[j].Timestamp })

	var issues []ValidationIssue
	issues = append(issues, validateTemporal(sorted)...)
	issues = append(issues, validateLogical(sorted)...)
	issues = append(issues, validatePositional(sorted)...)

	summary := ValidationSummary{Issues: issues}
	for _, issue := range issues {
		switch issue.Severity {
		case SeverityError:
			summary.Errors++
		case SeverityWarning:
			summary.Warnings++
		}
	}
	return summary
}

// validShortSequences lists same-team event successions that legitimately
// happen inside the minimum interval.
var validShortSequences = map[[2]EventType]bool{
	{EventPass, EventShot}:     true,
	{EventCarry, EventPass}:    true,
	{EventCarry, EventShot}:    true,
	{EventSetPiece, EventPass}: true,
	{EventSetPiece, EventShot}: true,
}

// validateTemporal flags identical type+team+timestamp duplicates as errors
// and unnaturally short same-team intervals as warnings, unless the pair is
// on the short-sequence allow-list.
func validateTemporal(events []DeduplicatedEvent) []ValidationIssue {
	var issues []ValidationIssue
	for i := 1; i < len(events); i++ {
		cur := &events[i]

		// Duplicates can be interleaved with other events sharing the same
		// timestamp, so scan the whole equal-timestamp run behind cur.
		dup := false
		for j := i - 1; j >= 0 && events[j].Timestamp == cur.Timestamp; j-- {
			if events[j].Type == cur.Type && events[j].Team == cur.Team {
				dup = true
				break
			}
		}
		if dup {
			issues = append(issues, ValidationIssue{
				Check:     "temporal",
				Severity:  SeverityError,
				Message:   fmt.Sprintf("duplicate %s event for %s at %.2fs", cur.Type, cur.Team, cur.Timestamp),
				Timestamp: cur.Timestamp,
			})
			continue
		}

		prev := &events[i-1]
		if prev.Team != cur.Team {
			continue
		}
		interval := cur.Timestamp - prev.Timestamp
		if interval >= MinEventIntervalSeconds {
			continue
		}
		if validShortSequences[[2]EventType{prev.Type, cur.Type}] {
			continue
		}
		issues = append(issues, ValidationIssue{
			Check:     "temporal",
			Severity:  SeverityWarning,
			Message:   fmt.Sprintf("%s follows %s for %s after only %.2fs", cur.Type, prev.Type, cur.Team, interval),
			Timestamp: cur.Timestamp,
		})
	}
	return issues
}

// validateLogical tracks the running possession team and flags impossible
// successions: a completed pass followed by an opposing-team action with no
// intervening turnover, an intercepted pass followed by a same-team
// continuation, and a goal not followed by a set piece within the kickoff
// window.
func validateLogical(events []DeduplicatedEvent) []ValidationIssue {
	var issues []ValidationIssue

	possession := TeamUnknown
	for i := range events {
		ev := &events[i]

		switch ev.Type {
		case EventPass:
			switch ev.Details["outcome"] {
			case string(PassIntercepted):
				// Ball goes to the opposition.
				possession = opponentOf(ev.Team)
				if i+1 < len(events) && events[i+1].Team == ev.Team && events[i+1].Type != EventTurnover {
					issues = append(issues, ValidationIssue{
						Check:     "logical",
						Severity:  SeverityWarning,
						Message:   fmt.Sprintf("intercepted pass by %s followed by same-team %s", ev.Team, events[i+1].Type),
						Timestamp: events[i+1].Timestamp,
					})
				}
			default:
				if possession.Known() && ev.Team.Known() && possession != ev.Team {
					issues = append(issues, ValidationIssue{
						Check:     "logical",
						Severity:  SeverityWarning,
						Message:   fmt.Sprintf("%s pass while %s held possession with no turnover", ev.Team, possession),
						Timestamp: ev.Timestamp,
					})
				}
				possession = ev.Team
			}

		case EventTurnover:
			possession = ev.Team

		case EventGoal:
			if !followedBySetPiece(events[i+1:], ev.Timestamp) {
				issues = append(issues, ValidationIssue{
					Check:     "logical",
					Severity:  SeverityWarning,
					Message:   fmt.Sprintf("goal at %.2fs not followed by a set piece within %.0fs", ev.Timestamp, GoalKickoffWindowSeconds),
					Timestamp: ev.Timestamp,
				})
			}
			possession = opponentOf(ev.Team)

		default:
			if ev.Team.Known() {
				if possession.Known() && possession != ev.Team {
					issues = append(issues, ValidationIssue{
						Check:     "logical",
						Severity:  SeverityWarning,
						Message:   fmt.Sprintf("%s %s while %s held possession with no turnover", ev.Team, ev.Type, possession),
						Timestamp: ev.Timestamp,
					})
				}
				possession = ev.Team
			}
		}
	}
	return issues
}

func followedBySetPiece(rest []DeduplicatedEvent, goalTime float64) bool {
	for i := range rest {
		if rest[i].Timestamp-goalTime > GoalKickoffWindowSeconds {
			return false
		}
		if rest[i].Type == EventSetPiece {
			return true
		}
	}
	return false
}

func opponentOf(t Team) Team {
	switch t {
	case TeamHome:
		return TeamAway
	case TeamAway:
		return TeamHome
	}
	return TeamUnknown
}

// validatePositional checks the implied speed between consecutive events
// carrying field positions. Speeds above the human sprint limit are flagged
// with a severity scale of speed/limit — unless the earlier event is a pass
// by the same team: the ball, not a player, may cover that distance.
func validatePositional(events []DeduplicatedEvent) []ValidationIssue {
	var issues []ValidationIssue

	var prev *DeduplicatedEvent
	for i := range events {
		ev := &events[i]
		if ev.Position == nil {
			continue
		}
		if prev == nil {
			prev = ev
			continue
		}

		dt := ev.Timestamp - prev.Timestamp
		if dt > 0 {
			dist := math.Hypot(ev.Position.X-prev.Position.X, ev.Position.Y-prev.Position.Y)
			speed := dist / dt
			ballMayTravel := prev.Type == EventPass && prev.Team == ev.Team
			if speed > MaxHumanSpeedMps && !ballMayTravel {
				issues = append(issues, ValidationIssue{
					Check:     "positional",
					Severity:  SeverityWarning,
					Message:   fmt.Sprintf("implied speed %.1f m/s between %s and %s exceeds %.0f m/s", speed, prev.Type, ev.Type, MaxHumanSpeedMps),
					Timestamp: ev.Timestamp,
					Scale:     speed / MaxHumanSpeedMps,
				})
			}
		}
		prev = ev
	}
	return issues
}
