package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"latency-monitor/internal/models"
)

// SaveRun registers a new run
func (db *DB) SaveRun(run models.Run) error {
	query := `
        INSERT INTO runs (id, started_at, targets, duration_s, interval_s, results_dir)
        VALUES (?, ?, ?, ?, ?, ?)
    `
	_, err := db.Exec(query,
		run.ID,
		run.StartedAt.UTC(),
		strings.Join(run.Targets, ","),
		run.Duration,
		run.Interval,
		run.ResultsDir,
	)
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", run.ID, err)
	}
	return nil
}

// FinishRun marks a run as finished
func (db *DB) FinishRun(id string, finishedAt time.Time, interrupted bool) error {
	res, err := db.Exec(`UPDATE runs SET finished_at = ?, interrupted = ? WHERE id = ?`,
		finishedAt.UTC(), interrupted, id)
	if err != nil {
		return fmt.Errorf("failed to finish run %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s not found", id)
	}
	return nil
}

// SaveRecord saves a probe record of a run
func (db *DB) SaveRecord(runID string, rec models.Record) error {
	query := `
        INSERT INTO probe_records (run_id, target, seq, timestamp, kind, rtt_ms, error_message, overrun)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    `
	var rtt sql.NullFloat64
	if rec.Outcome.IsSuccess() {
		rtt = sql.NullFloat64{Float64: rec.Outcome.LatencyMS, Valid: true}
	}
	var msg sql.NullString
	if rec.Outcome.Kind == models.OutcomeError {
		msg = sql.NullString{String: rec.Outcome.Message, Valid: true}
	}

	_, err := db.Exec(query,
		runID,
		rec.Target,
		rec.Seq,
		rec.Timestamp.UTC(),
		rec.Outcome.Kind.String(),
		rtt,
		msg,
		rec.Overrun,
	)
	return err
}

// LoadOutcomes returns the outcomes of one target of a run in probe order
func (db *DB) LoadOutcomes(runID, target string) ([]models.Outcome, error) {
	query := `
        SELECT kind, rtt_ms, error_message
        FROM probe_records
        WHERE run_id = ? AND target = ?
        ORDER BY seq
    `

	rows, err := db.Query(query, runID, target)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var outcomes []models.Outcome
	for rows.Next() {
		var kind string
		var rtt sql.NullFloat64
		var errMsg sql.NullString
		if err := rows.Scan(&kind, &rtt, &errMsg); err != nil {
			return nil, err
		}
		switch kind {
		case models.OutcomeSuccess.String():
			outcomes = append(outcomes, models.Success(rtt.Float64))
		case models.OutcomeLost.String():
			outcomes = append(outcomes, models.Lost())
		default:
			outcomes = append(outcomes, models.Failed(errMsg.String))
		}
	}

	return outcomes, rows.Err()
}

// SaveIntervals replaces the interval statistics of one target of a run
func (db *DB) SaveIntervals(runID, target string, intervals []models.Interval) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM interval_stats WHERE run_id = ? AND target = ?`, runID, target); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
        INSERT INTO interval_stats (run_id, target, start_idx, count, successes, midpoint_s, mean_rtt_ms, packet_loss_percent)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    `)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, iv := range intervals {
		if _, err := stmt.Exec(runID, target, iv.Start, iv.Count, iv.Successes,
			iv.MidpointSec, iv.MeanLatencyMS, iv.PacketLossPct); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetIntervals retrieves the stored interval statistics of a run's target
func (db *DB) GetIntervals(runID, target string) ([]models.Interval, error) {
	query := `
        SELECT start_idx, count, successes, midpoint_s, mean_rtt_ms, packet_loss_percent
        FROM interval_stats
        WHERE run_id = ? AND target = ?
        ORDER BY start_idx
    `

	rows, err := db.Query(query, runID, target)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var intervals []models.Interval
	for rows.Next() {
		var iv models.Interval
		if err := rows.Scan(&iv.Start, &iv.Count, &iv.Successes,
			&iv.MidpointSec, &iv.MeanLatencyMS, &iv.PacketLossPct); err != nil {
			return nil, err
		}
		intervals = append(intervals, iv)
	}

	return intervals, rows.Err()
}

// GetRun retrieves a single run
func (db *DB) GetRun(id string) (models.Run, error) {
	row := db.QueryRow(`
        SELECT id, started_at, finished_at, targets, duration_s, interval_s, interrupted, results_dir
        FROM runs WHERE id = ?
    `, id)
	return scanRun(row)
}

// ListRuns retrieves the most recent runs first
func (db *DB) ListRuns(limit int) ([]models.Run, error) {
	query := `
        SELECT id, started_at, finished_at, targets, duration_s, interval_s, interrupted, results_dir
        FROM runs
        ORDER BY started_at DESC
        LIMIT ?
    `

	rows, err := db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			continue
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (models.Run, error) {
	var run models.Run
	var targets string
	var finished sql.NullTime
	var resultsDir sql.NullString
	err := s.Scan(&run.ID, &run.StartedAt, &finished, &targets,
		&run.Duration, &run.Interval, &run.Interrupted, &resultsDir)
	if err != nil {
		return run, err
	}
	if finished.Valid {
		t := finished.Time
		run.FinishedAt = &t
	}
	if targets != "" {
		run.Targets = strings.Split(targets, ",")
	}
	run.ResultsDir = resultsDir.String
	return run, nil
}
