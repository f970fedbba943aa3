// Package journal keeps a local SQLite log of completed requests so that
// `tally journal` can show what happened after the TUI has exited.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"tally/internal/debug"
	appErrors "tally/internal/errors"
	"tally/internal/records"
)

// FileName is the journal database name inside the tally directory.
const FileName = "journal.db"

const (
	queueSize    = 256
	writeTimeout = 2 * time.Second
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	at          INTEGER NOT NULL,
	resource    TEXT    NOT NULL,
	op          TEXT    NOT NULL,
	record_id   TEXT    NOT NULL DEFAULT '',
	outcome     TEXT    NOT NULL,
	code        TEXT    NOT NULL DEFAULT '',
	message     TEXT    NOT NULL DEFAULT '',
	anomaly     INTEGER NOT NULL DEFAULT 0,
	duration_ms INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS events_at ON events(at);
`

// Entry is one journaled request.
type Entry struct {
	ID       int64
	At       time.Time
	Resource string
	Op       string
	RecordID string
	Outcome  string
	Code     string
	Message  string
	Anomaly  bool
	Duration time.Duration
}

// Journal appends events to a SQLite database. Events handed to Sink are
// written by a background goroutine; Flush and Close wait for them.
type Journal struct {
	db   *sql.DB
	path string

	queue chan queued
	done  chan struct{}

	mu     sync.Mutex // guards closed and sends on queue
	closed bool
}

// queued is an event to write, or a flush marker when flushed is set.
type queued struct {
	ev      records.Event
	flushed chan struct{}
}

// Open creates or opens the journal at path, creating parent directories.
func Open(ctx context.Context, path string) (*Journal, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, appErrors.New(appErrors.CodeConfigurationError, "journal path is empty", nil)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}
	db, err := sql.Open("sqlite", buildDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open journal db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping journal db: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create journal schema: %w", err)
	}
	j := &Journal{
		db:    db,
		path:  path,
		queue: make(chan queued, queueSize),
		done:  make(chan struct{}),
	}
	go j.drain()
	return j, nil
}

func (j *Journal) drain() {
	defer close(j.done)
	for q := range j.queue {
		if q.flushed != nil {
			close(q.flushed)
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		if err := j.Record(ctx, q.ev); err != nil {
			debug.Logf("journal: %v", err)
		}
		cancel()
	}
}

func buildDSN(path string) string {
	u := url.URL{
		Scheme: "file",
		Path:   filepath.ToSlash(path),
	}
	q := url.Values{}
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "busy_timeout(3000)")
	u.RawQuery = q.Encode()
	return u.String()
}

// Path returns the database file path.
func (j *Journal) Path() string { return j.path }

// Record appends ev.
func (j *Journal) Record(ctx context.Context, ev records.Event) error {
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	outcome, code, message := "ok", "", ""
	if ev.Err != nil {
		outcome = "failed"
		code = string(appErrors.CodeOf(ev.Err))
		message = ev.Err.Error()
	}
	anomaly := 0
	if ev.Anomaly {
		anomaly = 1
	}
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO events (at, resource, op, record_id, outcome, code, message, anomaly, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, at.UnixNano(), ev.Resource, string(ev.Op), ev.RecordID, outcome, code, message, anomaly, ev.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("insert journal event: %w", err)
	}
	return nil
}

// Sink adapts the journal to records.WithEventSink. It never blocks: the
// event is queued for the writer goroutine, and dropped (with a debug log
// line) when the queue is full or the journal is closed.
func (j *Journal) Sink() func(records.Event) {
	return func(ev records.Event) {
		j.mu.Lock()
		defer j.mu.Unlock()
		if j.closed {
			debug.Logf("journal: closed, dropping %s %s event", ev.Resource, ev.Op)
			return
		}
		select {
		case j.queue <- queued{ev: ev}:
		default:
			debug.Logf("journal: queue full, dropping %s %s event", ev.Resource, ev.Op)
		}
	}
}

// Flush waits until every event queued before the call is written.
func (j *Journal) Flush(ctx context.Context) error {
	flushed := make(chan struct{})
	j.mu.Lock()
	if j.closed {
		j.mu.Unlock()
		return nil
	}
	select {
	case j.queue <- queued{flushed: flushed}:
	case <-ctx.Done():
		j.mu.Unlock()
		return ctx.Err()
	}
	j.mu.Unlock()

	select {
	case <-flushed:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Recent returns up to n entries, newest first.
func (j *Journal) Recent(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		return []Entry{}, nil
	}
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, at, resource, op, record_id, outcome, code, message, anomaly, duration_ms
		FROM events
		ORDER BY at DESC, id DESC
		LIMIT ?
	`, n)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			atNanos    int64
			anomaly    int
			durationMS int64
		)
		if err := rows.Scan(&e.ID, &atNanos, &e.Resource, &e.Op, &e.RecordID, &e.Outcome, &e.Code, &e.Message, &anomaly, &durationMS); err != nil {
			return nil, fmt.Errorf("scan journal row: %w", err)
		}
		e.At = time.Unix(0, atNanos)
		e.Anomaly = anomaly != 0
		e.Duration = time.Duration(durationMS) * time.Millisecond
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close writes any queued events and closes the database. Calling it
// again is a no-op.
func (j *Journal) Close() error {
	j.mu.Lock()
	if j.closed {
		j.mu.Unlock()
		return nil
	}
	j.closed = true
	close(j.queue)
	j.mu.Unlock()

	<-j.done
	return j.db.Close()
}
