package database

import (
	"fmt"
	"time"
)

// PruneRuns deletes runs started before cutoff together with their records
// and interval statistics. It returns the number of runs removed.
func (db *DB) PruneRuns(cutoff time.Time) (int64, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	old := `SELECT id FROM runs WHERE started_at < ?`
	cutoff = cutoff.UTC()

	if _, err := tx.Exec(`DELETE FROM probe_records WHERE run_id IN (`+old+`)`, cutoff); err != nil {
		return 0, fmt.Errorf("failed to prune probe records: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM interval_stats WHERE run_id IN (`+old+`)`, cutoff); err != nil {
		return 0, fmt.Errorf("failed to prune interval stats: %w", err)
	}
	res, err := tx.Exec(`DELETE FROM runs WHERE started_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}

	n, _ := res.RowsAffected()
	return n, nil
}

// Vacuum reclaims space after pruning
func (db *DB) Vacuum() error {
	_, err := db.Exec("VACUUM")
	return err
}
