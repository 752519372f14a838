package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"latency-monitor/internal/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testRun(id string, started time.Time) models.Run {
	return models.Run{
		ID:         id,
		StartedAt:  started,
		Targets:    []string{"8.8.8.8", "1.1.1.1"},
		Duration:   10,
		Interval:   1,
		ResultsDir: "results/" + id,
	}
}

func TestInitSchemaIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.InitSchema())
}

func TestRunLifecycle(t *testing.T) {
	db := openTestDB(t)
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, db.SaveRun(testRun("run-1", started)))

	run, err := db.GetRun("run-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"8.8.8.8", "1.1.1.1"}, run.Targets)
	assert.Nil(t, run.FinishedAt)
	assert.False(t, run.Interrupted)
	assert.True(t, started.Equal(run.StartedAt))

	finished := started.Add(10 * time.Second)
	require.NoError(t, db.FinishRun("run-1", finished, true))

	run, err = db.GetRun("run-1")
	require.NoError(t, err)
	require.NotNil(t, run.FinishedAt)
	assert.True(t, finished.Equal(*run.FinishedAt))
	assert.True(t, run.Interrupted)

	assert.Error(t, db.FinishRun("missing", finished, false))
}

func TestSinkRoundTripsOutcomesInOrder(t *testing.T) {
	db := openTestDB(t)
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, db.SaveRun(testRun("run-1", started)))

	sink := db.Sink("run-1")
	outcomes := []models.Outcome{
		models.Success(12.5),
		models.Lost(),
		models.Failed("unknown host"),
		models.Success(9),
	}
	// Stored out of order on purpose, loading sorts by sequence.
	for _, i := range []int{2, 0, 3, 1} {
		require.NoError(t, sink.Append(models.Record{
			Seq:       i,
			Timestamp: started.Add(time.Duration(i) * time.Second),
			Target:    "8.8.8.8",
			Outcome:   outcomes[i],
		}))
	}
	require.NoError(t, sink.Flush())
	require.NoError(t, sink.Close())

	got, err := db.LoadOutcomes("run-1", "8.8.8.8")
	require.NoError(t, err)
	assert.Equal(t, outcomes, got)

	other, err := db.LoadOutcomes("run-1", "1.1.1.1")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestSaveIntervalsReplaces(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.SaveRun(testRun("run-1", time.Now())))

	first := []models.Interval{
		{Start: 0, Count: 2, Successes: 1, MidpointSec: 1, MeanLatencyMS: 10, PacketLossPct: 50},
		{Start: 2, Count: 2, Successes: 2, MidpointSec: 3, MeanLatencyMS: 20, PacketLossPct: 0},
	}
	require.NoError(t, db.SaveIntervals("run-1", "8.8.8.8", first))
	got, err := db.GetIntervals("run-1", "8.8.8.8")
	require.NoError(t, err)
	assert.Equal(t, first, got)

	second := first[:1]
	require.NoError(t, db.SaveIntervals("run-1", "8.8.8.8", second))
	got, err = db.GetIntervals("run-1", "8.8.8.8")
	require.NoError(t, err)
	assert.Equal(t, second, got)
}

func TestListRunsNewestFirst(t *testing.T) {
	db := openTestDB(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, db.SaveRun(testRun("old", base)))
	require.NoError(t, db.SaveRun(testRun("new", base.Add(time.Hour))))

	runs, err := db.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "new", runs[0].ID)
	assert.Equal(t, "old", runs[1].ID)

	runs, err = db.ListRuns(1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestPruneRuns(t *testing.T) {
	db := openTestDB(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, db.SaveRun(testRun("old", base)))
	require.NoError(t, db.SaveRun(testRun("new", base.Add(48*time.Hour))))
	require.NoError(t, db.SaveRecord("old", models.Record{Target: "8.8.8.8", Timestamp: base, Outcome: models.Lost()}))
	require.NoError(t, db.SaveIntervals("old", "8.8.8.8", []models.Interval{{Count: 1}}))

	n, err := db.PruneRuns(base.Add(24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NoError(t, db.Vacuum())

	runs, err := db.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "new", runs[0].ID)

	outcomes, err := db.LoadOutcomes("old", "8.8.8.8")
	require.NoError(t, err)
	assert.Empty(t, outcomes)
	intervals, err := db.GetIntervals("old", "8.8.8.8")
	require.NoError(t, err)
	assert.Empty(t, intervals)
}

func TestDSN(t *testing.T) {
	pragmas := "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	assert.Equal(t, "a.db?"+pragmas+"&_time_format=sqlite", dsn("a.db"))
	assert.Equal(t, "a.db?cache=shared&"+pragmas+"&_time_format=sqlite", dsn("a.db?cache=shared"))
	assert.Equal(t, "a.db?_pragma=foreign_keys(1)&_time_format=sqlite", dsn("a.db?_pragma=foreign_keys(1)"))
	assert.Equal(t, "a.db?_pragma=foreign_keys(1)&_time_format=sqlite", dsn("a.db?_pragma=foreign_keys(1)&_time_format=sqlite"))
}

func TestNewAppliesPragmasToEveryConnection(t *testing.T) {
	db := openTestDB(t)
	assert.Zero(t, db.Stats().MaxOpenConnections, "file databases use a connection pool")

	// Hold one connection so the queries below need a second one.
	tx, err := db.Begin()
	require.NoError(t, err)
	defer tx.Rollback()

	var mode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)

	var timeout int
	require.NoError(t, db.QueryRow("PRAGMA busy_timeout").Scan(&timeout))
	assert.Equal(t, 5000, timeout)
}

func TestNewFailsForUnopenablePath(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing", "history.db"))
	require.Error(t, err)
}

func TestInMemoryDatabaseUsesOneConnection(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	defer db.Close()
	assert.Equal(t, 1, db.Stats().MaxOpenConnections)

	require.NoError(t, db.SaveRun(testRun("mem", time.Now())))
	_, err = db.GetRun("mem")
	require.NoError(t, err)
}
