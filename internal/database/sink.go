package database

import "latency-monitor/internal/models"

// recordSink stores one target's records of a run. Writes go straight to the
// database so there is nothing to flush.
type recordSink struct {
	db    *DB
	runID string
}

// Sink returns a models.RecordSink writing into the given run
func (db *DB) Sink(runID string) models.RecordSink {
	return &recordSink{db: db, runID: runID}
}

func (s *recordSink) Append(rec models.Record) error {
	return s.db.SaveRecord(s.runID, rec)
}

func (s *recordSink) Flush() error { return nil }

func (s *recordSink) Close() error { return nil }
