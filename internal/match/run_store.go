package match

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// RunStore provides persistence for analysis runs.
type RunStore struct {
	db *sql.DB
}

// NewRunStore creates a RunStore backed by the given database.
func NewRunStore(db *sql.DB) *RunStore {
	return &RunStore{db: db}
}

// InsertRun persists an analysis run with its full parameter set.
func (s *RunStore) InsertRun(run *AnalysisRun) error {
	paramsJSON, err := json.Marshal(run.Params)
	if err != nil {
		return fmt.Errorf("marshal run params: %w", err)
	}

	query := `
		INSERT INTO match_runs (
			run_id, match_id, params_json,
			started_at_ns, completed_at_ns, frame_count, track_count
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.Exec(query,
		run.RunID,
		run.MatchID,
		string(paramsJSON),
		run.StartedAt.UnixNano(),
		run.CompletedAt.UnixNano(),
		run.FrameCount,
		run.TrackCount,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID, or an error when it does not exist.
func (s *RunStore) GetRun(runID string) (*AnalysisRun, error) {
	query := `
		SELECT run_id, match_id, params_json,
		       started_at_ns, completed_at_ns, frame_count, track_count
		FROM match_runs
		WHERE run_id = ?
	`

	var run AnalysisRun
	var paramsJSON string
	var startedNs, completedNs int64

	err := s.db.QueryRow(query, runID).Scan(
		&run.RunID,
		&run.MatchID,
		&paramsJSON,
		&startedNs,
		&completedNs,
		&run.FrameCount,
		&run.TrackCount,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}

	if err := json.Unmarshal([]byte(paramsJSON), &run.Params); err != nil {
		return nil, fmt.Errorf("parse run params: %w", err)
	}
	run.StartedAt = timeFromNanos(startedNs)
	run.CompletedAt = timeFromNanos(completedNs)
	return &run, nil
}

// ListRuns returns all runs for a match, newest first.
func (s *RunStore) ListRuns(matchID string) ([]*AnalysisRun, error) {
	query := `
		SELECT run_id, match_id, params_json,
		       started_at_ns, completed_at_ns, frame_count, track_count
		FROM match_runs
		WHERE match_id = ?
		ORDER BY started_at_ns DESC
	`
	rows, err := s.db.Query(query, matchID)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*AnalysisRun
	for rows.Next() {
		var run AnalysisRun
		var paramsJSON string
		var startedNs, completedNs int64
		if err := rows.Scan(
			&run.RunID, &run.MatchID, &paramsJSON,
			&startedNs, &completedNs, &run.FrameCount, &run.TrackCount,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if err := json.Unmarshal([]byte(paramsJSON), &run.Params); err != nil {
			return nil, fmt.Errorf("parse run params: %w", err)
		}
		run.StartedAt = timeFromNanos(startedNs)
		run.CompletedAt = timeFromNanos(completedNs)
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}
