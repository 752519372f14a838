package database

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// DB wraps sql.DB with the run history queries
type DB struct {
	*sql.DB
}

// New creates a new database connection
func New(path string) (*DB, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("database open failed: %w", err)
	}

	// An in-memory database exists per connection.
	if isMemory(path) {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database open failed: %w", err)
	}

	if !isMemory(path) {
		var mode string
		if err := db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to read journal mode: %w", err)
		}
		if !strings.EqualFold(mode, "wal") {
			db.Close()
			return nil, fmt.Errorf("journal mode is %q, want wal", mode)
		}
	}

	return &DB{db}, nil
}

// Open creates the connection and the schema in one step
func Open(path string) (*DB, error) {
	db, err := New(path)
	if err != nil {
		return nil, err
	}
	if err := db.InitSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// InitSchema creates all necessary tables
func (db *DB) InitSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS runs (
        id TEXT PRIMARY KEY,
        started_at DATETIME NOT NULL,
        finished_at DATETIME,
        targets TEXT NOT NULL,
        duration_s REAL NOT NULL,
        interval_s REAL NOT NULL,
        interrupted BOOLEAN NOT NULL DEFAULT 0,
        results_dir TEXT
    );

    CREATE TABLE IF NOT EXISTS probe_records (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        run_id TEXT NOT NULL,
        target TEXT NOT NULL,
        seq INTEGER NOT NULL,
        timestamp DATETIME NOT NULL,
        kind TEXT NOT NULL,
        rtt_ms REAL,
        error_message TEXT,
        overrun BOOLEAN NOT NULL DEFAULT 0
    );

    CREATE INDEX IF NOT EXISTS idx_records_run_target_seq ON probe_records(run_id, target, seq);
    CREATE INDEX IF NOT EXISTS idx_records_timestamp ON probe_records(timestamp);

    CREATE TABLE IF NOT EXISTS interval_stats (
        run_id TEXT NOT NULL,
        target TEXT NOT NULL,
        start_idx INTEGER NOT NULL,
        count INTEGER NOT NULL,
        successes INTEGER NOT NULL,
        midpoint_s REAL NOT NULL,
        mean_rtt_ms REAL NOT NULL,
        packet_loss_percent REAL NOT NULL,
        PRIMARY KEY (run_id, target, start_idx)
    );
    `

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("schema creation failed: %w", err)
	}

	return nil
}

// connPragmas run on every new connection. WAL lets the web API read while
// probe loops write; busy_timeout makes concurrent writers wait instead of
// failing with SQLITE_BUSY.
var connPragmas = []string{
	"_pragma=busy_timeout(5000)",
	"_pragma=journal_mode(WAL)",
	"_pragma=synchronous(NORMAL)",
}

// dsn adds the connection pragmas and stores timestamps in SQLite's own
// sortable format so that range queries on started_at compare correctly.
// Parameters already present in path are left alone.
func dsn(path string) string {
	var params []string
	if !strings.Contains(path, "_pragma=") {
		params = append(params, connPragmas...)
	}
	if !strings.Contains(path, "_time_format=") {
		params = append(params, "_time_format=sqlite")
	}
	if len(params) == 0 {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + strings.Join(params, "&")
}

func isMemory(path string) bool {
	return strings.Contains(path, ":memory:") || strings.Contains(path, "mode=memory")
}
