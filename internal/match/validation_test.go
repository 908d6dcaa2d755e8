package match

import (
	"testing"
)

func dedupEvent(typ EventType, team Team, ts float64) DeduplicatedEvent {
	return DeduplicatedEvent{Timestamp: ts, Type: typ, Team: team, Confidence: 0.8}
}

func issuesOfCheck(summary ValidationSummary, check string) []ValidationIssue {
	var out []ValidationIssue
	for _, issue := range summary.Issues {
		if issue.Check == check {
			out = append(out, issue)
		}
	}
	return out
}

func TestValidateTemporalDuplicate(t *testing.T) {
	events := []DeduplicatedEvent{
		dedupEvent(EventPass, TeamHome, 10),
		dedupEvent(EventPass, TeamHome, 10),
	}
	summary := ValidateEvents(events)
	if summary.Errors != 1 {
		t.Fatalf("errors = %d, want 1 for an exact duplicate", summary.Errors)
	}
	temporal := issuesOfCheck(summary, "temporal")
	if len(temporal) != 1 || temporal[0].Severity != SeverityError {
		t.Errorf("temporal issues = %+v", temporal)
	}
}

func TestValidateTemporalDuplicateInterleaved(t *testing.T) {
	// An opposing-team event at the same timestamp sits between the two
	// copies after the stable sort; the duplicate must still be caught.
	events := []DeduplicatedEvent{
		dedupEvent(EventPass, TeamHome, 10),
		dedupEvent(EventTurnover, TeamAway, 10),
		dedupEvent(EventPass, TeamHome, 10),
	}
	summary := ValidateEvents(events)
	temporal := issuesOfCheck(summary, "temporal")
	if len(temporal) != 1 || temporal[0].Severity != SeverityError {
		t.Fatalf("temporal issues = %+v, want one duplicate error", temporal)
	}
}

func TestValidateTemporalShortInterval(t *testing.T) {
	events := []DeduplicatedEvent{
		dedupEvent(EventTurnover, TeamHome, 10),
		dedupEvent(EventTurnover, TeamHome, 10.4),
	}
	summary := ValidateEvents(events)
	temporal := issuesOfCheck(summary, "temporal")
	if len(temporal) != 1 || temporal[0].Severity != SeverityWarning {
		t.Fatalf("expected one short-interval warning, got %+v", temporal)
	}
}

func TestValidateTemporalAllowedSequences(t *testing.T) {
	cases := [][2]EventType{
		{EventPass, EventShot},
		{EventCarry, EventPass},
		{EventCarry, EventShot},
		{EventSetPiece, EventPass},
		{EventSetPiece, EventShot},
	}
	for _, pair := range cases {
		events := []DeduplicatedEvent{
			dedupEvent(pair[0], TeamHome, 10),
			dedupEvent(pair[1], TeamHome, 10.3),
		}
		summary := ValidateEvents(events)
		if len(issuesOfCheck(summary, "temporal")) != 0 {
			t.Errorf("%s then %s within the interval should be allowed", pair[0], pair[1])
		}
	}
}

func TestValidateTemporalDifferentTeamsNoWarning(t *testing.T) {
	events := []DeduplicatedEvent{
		dedupEvent(EventTurnover, TeamHome, 10),
		dedupEvent(EventTurnover, TeamAway, 10.2),
	}
	summary := ValidateEvents(events)
	if len(issuesOfCheck(summary, "temporal")) != 0 {
		t.Error("short intervals across teams should not warn")
	}
}

func TestValidateLogicalPossessionContinuity(t *testing.T) {
	// Home completes a pass, then away passes with no turnover between.
	home := dedupEvent(EventPass, TeamHome, 10)
	home.Details = map[string]string{"outcome": "complete"}
	away := dedupEvent(EventPass, TeamAway, 15)
	away.Details = map[string]string{"outcome": "complete"}

	summary := ValidateEvents([]DeduplicatedEvent{home, away})
	logical := issuesOfCheck(summary, "logical")
	if len(logical) != 1 {
		t.Fatalf("expected one possession-continuity warning, got %+v", logical)
	}
}

func TestValidateLogicalTurnoverRestoresContinuity(t *testing.T) {
	home := dedupEvent(EventPass, TeamHome, 10)
	home.Details = map[string]string{"outcome": "complete"}
	turnover := dedupEvent(EventTurnover, TeamAway, 12)
	away := dedupEvent(EventPass, TeamAway, 15)
	away.Details = map[string]string{"outcome": "complete"}

	summary := ValidateEvents([]DeduplicatedEvent{home, turnover, away})
	if len(issuesOfCheck(summary, "logical")) != 0 {
		t.Error("a turnover between opposing passes should satisfy continuity")
	}
}

func TestValidateLogicalInterceptionFlipsPossession(t *testing.T) {
	intercepted := dedupEvent(EventPass, TeamHome, 10)
	intercepted.Details = map[string]string{"outcome": "intercepted"}
	away := dedupEvent(EventPass, TeamAway, 15)
	away.Details = map[string]string{"outcome": "complete"}

	summary := ValidateEvents([]DeduplicatedEvent{intercepted, away})
	if len(issuesOfCheck(summary, "logical")) != 0 {
		t.Error("an away action after a home interception is consistent")
	}

	// But a same-team continuation right after an interception is suspect.
	homeAgain := dedupEvent(EventCarry, TeamHome, 11)
	summary = ValidateEvents([]DeduplicatedEvent{intercepted, homeAgain})
	if len(issuesOfCheck(summary, "logical")) == 0 {
		t.Error("same-team action after its own intercepted pass should warn")
	}
}

func TestValidateLogicalGoalNeedsSetPiece(t *testing.T) {
	goal := dedupEvent(EventGoal, TeamHome, 100)
	summary := ValidateEvents([]DeduplicatedEvent{goal})
	if len(issuesOfCheck(summary, "logical")) != 1 {
		t.Error("a goal with no following set piece should warn")
	}

	kickoff := dedupEvent(EventSetPiece, TeamAway, 115)
	summary = ValidateEvents([]DeduplicatedEvent{goal, kickoff})
	if len(issuesOfCheck(summary, "logical")) != 0 {
		t.Error("a kickoff within the window should silence the goal warning")
	}

	late := dedupEvent(EventSetPiece, TeamAway, 160)
	summary = ValidateEvents([]DeduplicatedEvent{goal, late})
	if len(issuesOfCheck(summary, "logical")) == 0 {
		t.Error("a set piece outside the window should not count as the kickoff")
	}
}

func TestValidatePositionalSpeedLimit(t *testing.T) {
	// 60 meters in 2 seconds: 30 m/s, far beyond a sprint.
	a := dedupEvent(EventCarry, TeamHome, 10)
	a.Position = &Point{X: 0, Y: 0}
	b := dedupEvent(EventCarry, TeamHome, 12)
	b.Position = &Point{X: 60, Y: 0}

	summary := ValidateEvents([]DeduplicatedEvent{a, b})
	positional := issuesOfCheck(summary, "positional")
	if len(positional) != 1 {
		t.Fatalf("expected one implausible-speed warning, got %+v", positional)
	}
	if positional[0].Scale < 2.4 || positional[0].Scale > 2.6 {
		t.Errorf("severity scale = %v, want speed/limit = 2.5", positional[0].Scale)
	}
}

func TestValidatePositionalPassExemption(t *testing.T) {
	// The same displacement after a same-team pass is the ball travelling.
	pass := dedupEvent(EventPass, TeamHome, 10)
	pass.Position = &Point{X: 0, Y: 0}
	pass.Details = map[string]string{"outcome": "complete"}
	shot := dedupEvent(EventShot, TeamHome, 12)
	shot.Position = &Point{X: 60, Y: 0}

	summary := ValidateEvents([]DeduplicatedEvent{pass, shot})
	if len(issuesOfCheck(summary, "positional")) != 0 {
		t.Error("long ball after a same-team pass should not warn")
	}
}

func TestValidatePositionalSkipsUnpositioned(t *testing.T) {
	a := dedupEvent(EventCarry, TeamHome, 10)
	a.Position = &Point{X: 0, Y: 0}
	middle := dedupEvent(EventTurnover, TeamAway, 10.5) // no position
	b := dedupEvent(EventCarry, TeamAway, 30)
	b.Position = &Point{X: 20, Y: 0}

	summary := ValidateEvents([]DeduplicatedEvent{a, middle, b})
	if len(issuesOfCheck(summary, "positional")) != 0 {
		t.Error("slow movement across a positional gap should not warn")
	}
}

func TestValidateEventsCounts(t *testing.T) {
	dup1 := dedupEvent(EventPass, TeamHome, 10)
	dup2 := dedupEvent(EventPass, TeamHome, 10)
	short1 := dedupEvent(EventTurnover, TeamAway, 20)
	short2 := dedupEvent(EventTurnover, TeamAway, 20.3)

	summary := ValidateEvents([]DeduplicatedEvent{dup1, dup2, short1, short2})
	if summary.Errors != 1 || summary.Warnings < 1 {
		t.Errorf("errors=%d warnings=%d, want 1 error and at least 1 warning", summary.Errors, summary.Warnings)
	}
	if len(summary.Issues) != summary.Errors+summary.Warnings {
		t.Errorf("issue count %d does not match %d + %d", len(summary.Issues), summary.Errors, summary.Warnings)
	}
}
