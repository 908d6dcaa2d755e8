package match

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventStore provides persistence for the documents an analysis run
// produces: possession segments, passes, carries, turnovers, pending
// reviews, team metadata, the smoothed ball track, deduplicated events and
// validation issues.
type EventStore struct {
	db *sql.DB
}

// NewEventStore creates an EventStore backed by the given database.
func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{db: db}
}

// SaveAnalysis persists a full analysis result atomically.
func (s *EventStore) SaveAnalysis(a *MatchAnalysis) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	runID := a.Run.RunID

	for i := range a.Segments {
		if err := insertSegment(tx, runID, &a.Segments[i]); err != nil {
			return err
		}
	}
	for i := range a.Passes {
		if err := insertPass(tx, runID, &a.Passes[i]); err != nil {
			return err
		}
	}
	for i := range a.Carries {
		if err := insertCarry(tx, runID, &a.Carries[i]); err != nil {
			return err
		}
	}
	for i := range a.Turnovers {
		if err := insertTurnover(tx, runID, &a.Turnovers[i]); err != nil {
			return err
		}
	}
	for i := range a.Reviews {
		if err := insertReview(tx, runID, &a.Reviews[i]); err != nil {
			return err
		}
	}
	if a.Teams != nil {
		for trackID, team := range a.Teams.Assignments {
			if _, err := tx.Exec(
				`INSERT INTO track_team_meta (run_id, track_id, team) VALUES (?, ?, ?)`,
				runID, trackID, string(team),
			); err != nil {
				return fmt.Errorf("insert team meta: %w", err)
			}
		}
	}
	for i := range a.SmoothedBall {
		b := &a.SmoothedBall[i]
		if _, err := tx.Exec(
			`INSERT INTO ball_track (run_id, frame, ts, x, y, confidence, visible, interpolated)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, b.FrameNumber, b.Timestamp, b.Position.X, b.Position.Y,
			b.Confidence, boolToInt(b.Visible), boolToInt(b.Interpolated),
		); err != nil {
			return fmt.Errorf("insert ball sample: %w", err)
		}
	}

	return tx.Commit()
}

func insertSegment(tx *sql.Tx, runID string, seg *PossessionSegment) error {
	_, err := tx.Exec(`
		INSERT INTO possession_segments (
			segment_id, run_id, track_id, player_id, team,
			start_frame, end_frame, start_time, end_time, confidence, end_reason
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), runID, seg.TrackID, nullString(seg.PlayerID), string(seg.Team),
		seg.StartFrame, seg.EndFrame, seg.StartTime, seg.EndTime, seg.Confidence, string(seg.EndReason),
	)
	if err != nil {
		return fmt.Errorf("insert segment: %w", err)
	}
	return nil
}

func insertPass(tx *sql.Tx, runID string, p *PassEvent) error {
	_, err := tx.Exec(`
		INSERT INTO pass_events (
			event_id, run_id, from_track_id, to_track_id, from_player_id, to_player_id,
			team, outcome, frame, ts, confidence, needs_review, review_reason
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), runID, p.FromTrackID, p.ToTrackID,
		nullString(p.FromPlayerID), nullString(p.ToPlayerID),
		string(p.Team), string(p.Outcome),
		p.Frame, p.Timestamp, p.Confidence, boolToInt(p.NeedsReview), nullString(p.ReviewReason),
	)
	if err != nil {
		return fmt.Errorf("insert pass: %w", err)
	}
	return nil
}

func insertCarry(tx *sql.Tx, runID string, c *CarryEvent) error {
	_, err := tx.Exec(`
		INSERT INTO carry_events (
			event_id, run_id, track_id, team, start_frame, end_frame,
			start_time, end_time, carry_index, progress_index, confidence, needs_review
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), runID, c.TrackID, string(c.Team), c.StartFrame, c.EndFrame,
		c.StartTime, c.EndTime, c.CarryIndex, c.ProgressIndex, c.Confidence, boolToInt(c.NeedsReview),
	)
	if err != nil {
		return fmt.Errorf("insert carry: %w", err)
	}
	return nil
}

func insertTurnover(tx *sql.Tx, runID string, t *TurnoverEvent) error {
	_, err := tx.Exec(`
		INSERT INTO turnover_events (
			event_id, run_id, track_id, team, side, frame, ts, confidence, needs_review
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), runID, t.TrackID, string(t.Team), string(t.Side),
		t.Frame, t.Timestamp, t.Confidence, boolToInt(t.NeedsReview),
	)
	if err != nil {
		return fmt.Errorf("insert turnover: %w", err)
	}
	return nil
}

func insertReview(tx *sql.Tx, runID string, r *PendingReview) error {
	candidates, err := json.Marshal(r.CandidateTracks)
	if err != nil {
		return fmt.Errorf("marshal review candidates: %w", err)
	}
	_, err = tx.Exec(`
		INSERT INTO pending_reviews (
			review_id, run_id, event_type, frame, ts, team, confidence, reason, candidates
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), runID, r.EventType, r.Frame, r.Timestamp,
		string(r.Team), r.Confidence, r.Reason, string(candidates),
	)
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

// SaveDeduplicated persists a deduplicated event stream and the validation
// findings over it.
func (s *EventStore) SaveDeduplicated(runID string, events []DeduplicatedEvent, summary *ValidationSummary) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save deduplicated: %w", err)
	}
	defer tx.Rollback()

	for i := range events {
		ev := &events[i]
		var posX, posY interface{}
		if ev.Position != nil {
			posX, posY = ev.Position.X, ev.Position.Y
		}
		var detailsJSON interface{}
		if len(ev.Details) > 0 {
			data, err := json.Marshal(ev.Details)
			if err != nil {
				return fmt.Errorf("marshal event details: %w", err)
			}
			detailsJSON = string(data)
		}
		sourcesJSON, err := json.Marshal(ev.SourceWindows)
		if err != nil {
			return fmt.Errorf("marshal event sources: %w", err)
		}

		if _, err := tx.Exec(`
			INSERT INTO dedup_events (
				event_id, run_id, ts, type, team, confidence,
				pos_x, pos_y, details_json, sources_json, corroboration
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), runID, ev.Timestamp, string(ev.Type), string(ev.Team),
			ev.Confidence, posX, posY, detailsJSON, string(sourcesJSON), ev.Corroboration,
		); err != nil {
			return fmt.Errorf("insert deduplicated event: %w", err)
		}
	}

	if summary != nil {
		for _, issue := range summary.Issues {
			if _, err := tx.Exec(`
				INSERT INTO validation_issues (issue_id, run_id, check_name, severity, message, ts, scale)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				uuid.New().String(), runID, issue.Check, string(issue.Severity),
				issue.Message, issue.Timestamp, issue.Scale,
			); err != nil {
				return fmt.Errorf("insert validation issue: %w", err)
			}
		}
	}

	return tx.Commit()
}

// GetSegments returns the possession segments of a run in frame order.
func (s *EventStore) GetSegments(runID string) ([]PossessionSegment, error) {
	rows, err := s.db.Query(`
		SELECT track_id, player_id, team, start_frame, end_frame,
		       start_time, end_time, confidence, end_reason
		FROM possession_segments
		WHERE run_id = ?
		ORDER BY start_frame`, runID)
	if err != nil {
		return nil, fmt.Errorf("get segments: %w", err)
	}
	defer rows.Close()

	var segments []PossessionSegment
	for rows.Next() {
		var seg PossessionSegment
		var playerID sql.NullString
		var team, reason string
		if err := rows.Scan(
			&seg.TrackID, &playerID, &team, &seg.StartFrame, &seg.EndFrame,
			&seg.StartTime, &seg.EndTime, &seg.Confidence, &reason,
		); err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}
		seg.PlayerID = playerID.String
		seg.Team = Team(team)
		seg.EndReason = SegmentEndReason(reason)
		segments = append(segments, seg)
	}
	return segments, rows.Err()
}

// GetPasses returns the pass events of a run in frame order.
func (s *EventStore) GetPasses(runID string) ([]PassEvent, error) {
	rows, err := s.db.Query(`
		SELECT from_track_id, to_track_id, from_player_id, to_player_id,
		       team, outcome, frame, ts, confidence, needs_review, review_reason
		FROM pass_events
		WHERE run_id = ?
		ORDER BY frame`, runID)
	if err != nil {
		return nil, fmt.Errorf("get passes: %w", err)
	}
	defer rows.Close()

	var passes []PassEvent
	for rows.Next() {
		var p PassEvent
		var team, outcome string
		var needsReview int
		var fromPlayer, toPlayer, reason sql.NullString
		if err := rows.Scan(
			&p.FromTrackID, &p.ToTrackID, &fromPlayer, &toPlayer, &team, &outcome,
			&p.Frame, &p.Timestamp, &p.Confidence, &needsReview, &reason,
		); err != nil {
			return nil, fmt.Errorf("scan pass: %w", err)
		}
		p.FromPlayerID = fromPlayer.String
		p.ToPlayerID = toPlayer.String
		p.Team = Team(team)
		p.Outcome = PassOutcome(outcome)
		p.NeedsReview = needsReview != 0
		p.ReviewReason = reason.String
		passes = append(passes, p)
	}
	return passes, rows.Err()
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func timeFromNanos(ns int64) time.Time {
	return time.Unix(0, ns)
}
