package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/hubgraph/pkg/debug"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id      TEXT PRIMARY KEY,
	session TEXT NOT NULL,
	name    TEXT NOT NULL,
	ts      INTEGER NOT NULL,
	props   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_name ON events(name);
CREATE INDEX IF NOT EXISTS idx_events_session ON events(session);
`

// SQLiteSink stores events in a SQLite database.
type SQLiteSink struct {
	db     *sql.DB
	insert *sql.Stmt
}

// OpenSQLiteSink opens or creates the database at path.
func OpenSQLiteSink(path string) (*SQLiteSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create event store dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open event store: %w", err)
	}
	// Single connection: PRAGMAs are per connection and there is one writer.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			debug.Log("analytics: %s: %v", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create event schema: %w", err)
	}
	stmt, err := db.Prepare(`INSERT INTO events (id, session, name, ts, props) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("prepare event insert: %w", err)
	}
	return &SQLiteSink{db: db, insert: stmt}, nil
}

func (s *SQLiteSink) Emit(ev Event) error {
	props, err := json.Marshal(ev.Props)
	if err != nil {
		return fmt.Errorf("encode props: %w", err)
	}
	if _, err := s.insert.Exec(ev.ID, ev.Session, ev.Name, ev.Time.UnixMilli(), string(props)); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// Events returns stored events of the given name, oldest first. An empty
// name returns every event.
func (s *SQLiteSink) Events(ctx context.Context, name string) ([]Event, error) {
	query := `SELECT id, session, name, ts, props FROM events`
	var args []any
	if name != "" {
		query += ` WHERE name = ?`
		args = append(args, name)
	}
	query += ` ORDER BY ts, rowid`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var ev Event
		var ts int64
		var props string
		if err := rows.Scan(&ev.ID, &ev.Session, &ev.Name, &ts, &props); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Time = time.UnixMilli(ts).UTC()
		if err := json.Unmarshal([]byte(props), &ev.Props); err != nil {
			return nil, fmt.Errorf("decode props of %s: %w", ev.ID, err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// Counts returns the number of stored events per name.
func (s *SQLiteSink) Counts(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, COUNT(*) FROM events GROUP BY name`)
	if err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, err
		}
		counts[name] = n
	}
	return counts, rows.Err()
}

func (s *SQLiteSink) Close() error {
	if s.insert != nil {
		s.insert.Close()
	}
	return s.db.Close()
}
