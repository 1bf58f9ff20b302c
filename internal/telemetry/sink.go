package telemetry

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // pure-Go driver, matches the teacher's SQLiteBM25Index
)

// SQLiteSink appends Events to a trimmed, append-only query_events table
// for offline analysis. It is never read back during retrieval decisions
// — the resolution SPEC_FULL.md §6 records for spec.md's "no persistent
// transactional storage" non-goal. WAL mode follows the teacher's
// SQLiteBM25Index, which uses it to allow concurrent readers/writers.
type SQLiteSink struct {
	db *sql.DB
}

// NewSQLiteSink opens (creating if absent) a SQLite database at path and
// ensures the query_events table exists.
func NewSQLiteSink(path string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open telemetry sink: %w", err)
	}

	const schema = `
CREATE TABLE IF NOT EXISTS query_events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	query TEXT NOT NULL,
	query_type TEXT NOT NULL,
	is_emergency INTEGER NOT NULL,
	result_count INTEGER NOT NULL,
	needs_review INTEGER NOT NULL,
	latency_ms INTEGER NOT NULL,
	recorded_at TEXT NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create query_events table: %w", err)
	}

	return &SQLiteSink{db: db}, nil
}

// Append inserts one event row. Best-effort: callers (Metrics.Record)
// already swallow the returned error.
func (s *SQLiteSink) Append(e Event) error {
	_, err := s.db.Exec(
		`INSERT INTO query_events (query, query_type, is_emergency, result_count, needs_review, latency_ms, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.Query, e.QueryType, boolToInt(e.IsEmergency), e.ResultCount, boolToInt(e.NeedsReview),
		e.Latency.Milliseconds(), e.Timestamp.Format(time.RFC3339),
	)
	return err
}

// Close releases the underlying database handle.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
