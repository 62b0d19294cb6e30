// Package sqlite archives exported timelines in a SQLite table.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/aretw0/axon/pkg/ports"
)

// Archive implements ports.TimelineArchive on an *sql.DB using the
// modernc.org/sqlite driver.
type Archive struct {
	db *sql.DB
}

var _ ports.TimelineArchive = (*Archive)(nil)

// Open opens (or creates) the database at path and prepares the schema.
// Use ":memory:" for a throwaway archive.
func Open(path string) (*Archive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if path == ":memory:" {
		// Each connection would get its own empty database.
		db.SetMaxOpenConns(1)
	}
	a, err := New(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

// New initializes the required schema in db and returns an archive.
func New(db *sql.DB) (*Archive, error) {
	a := &Archive{db: db}
	if err := a.initSchema(); err != nil {
		return nil, fmt.Errorf("init timeline schema: %w", err)
	}
	return a, nil
}

func (a *Archive) initSchema() error {
	_, err := a.db.Exec(`
		CREATE TABLE IF NOT EXISTS timelines (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			circuit TEXT NOT NULL,
			bus_id TEXT NOT NULL,
			outcome_tag TEXT NOT NULL,
			forced INTEGER NOT NULL,
			exported_at INTEGER NOT NULL,
			events TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS timelines_circuit ON timelines (circuit, exported_at);`,
	)
	return err
}

// Export inserts rec.
func (a *Archive) Export(ctx context.Context, rec ports.ExportRecord) error {
	events, err := json.Marshal(rec.Events)
	if err != nil {
		return fmt.Errorf("failed to marshal timeline events: %w", err)
	}
	_, err = a.db.ExecContext(ctx, `
		INSERT INTO timelines (circuit, bus_id, outcome_tag, forced, exported_at, events)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Circuit,
		rec.BusID,
		rec.OutcomeTag,
		rec.Forced,
		rec.ExportedAt.UnixNano(),
		string(events),
	)
	return err
}

// Recent returns up to limit records for circuit, newest first.
func (a *Archive) Recent(ctx context.Context, circuit string, limit int) ([]ports.ExportRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := a.db.QueryContext(ctx, `
		SELECT circuit, bus_id, outcome_tag, forced, exported_at, events
		FROM timelines
		WHERE circuit = ?
		ORDER BY exported_at DESC, id DESC
		LIMIT ?`,
		circuit, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ports.ExportRecord{}
	for rows.Next() {
		var (
			rec    ports.ExportRecord
			nanos  int64
			events string
		)
		if err := rows.Scan(&rec.Circuit, &rec.BusID, &rec.OutcomeTag, &rec.Forced, &nanos, &events); err != nil {
			return nil, err
		}
		rec.ExportedAt = time.Unix(0, nanos).UTC()
		if err := json.Unmarshal([]byte(events), &rec.Events); err != nil {
			return nil, fmt.Errorf("corrupt timeline events for bus %s: %w", rec.BusID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Circuits lists every circuit with archived timelines.
func (a *Archive) Circuits(ctx context.Context) ([]string, error) {
	rows, err := a.db.QueryContext(ctx, `SELECT DISTINCT circuit FROM timelines ORDER BY circuit`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Close closes the database.
func (a *Archive) Close() error {
	return a.db.Close()
}
