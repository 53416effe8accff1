package archive

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Ledger is the sqlite history of matches run from a checkout.
type Ledger struct {
	db *sql.DB
}

// OpenLedger opens (and creates if needed) the ledger database at path and
// ensures its tables exist.
func OpenLedger(ctx context.Context, path string) (*Ledger, error) {
	if path == "" {
		return nil, fmt.Errorf("ledger path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create ledger directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := db.ExecContext(pctx, "PRAGMA foreign_keys = ON;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign_keys: %w", err)
	}
	if _, err := db.ExecContext(pctx, "PRAGMA busy_timeout = 5000;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy_timeout: %w", err)
	}
	if err := bootstrap(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Ledger{db: db}, nil
}

func bootstrap(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS matches (
  id           TEXT PRIMARY KEY,
  mode         TEXT NOT NULL,
  status       TEXT NOT NULL,
  started_at   TEXT NOT NULL,
  finished_at  TEXT NOT NULL,
  duration_ms  INTEGER NOT NULL,
  time_step_ms INTEGER NOT NULL,
  recording    TEXT NOT NULL,
  error        TEXT
);`,
		`CREATE TABLE IF NOT EXISTS match_zones (
  match_id   TEXT NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
  zone       INTEGER NOT NULL,
  robot_id   INTEGER NOT NULL,
  controller TEXT,
  blake3     TEXT,
  removed    INTEGER NOT NULL,
  PRIMARY KEY (match_id, zone)
);`,
		`CREATE INDEX IF NOT EXISTS matches_started_at_idx ON matches(started_at);`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap ledger: %w", err)
		}
	}
	return nil
}

// Close closes the underlying database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// ledgerTimeLayout is fixed width so that started_at sorts chronologically as
// text.
const ledgerTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Record inserts m and its zones in a single transaction.
func (l *Ledger) Record(ctx context.Context, m *Match) error {
	if m.ID == "" {
		return fmt.Errorf("match id is empty")
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ledger transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var matchErr any
	if m.Error != "" {
		matchErr = m.Error
	}
	_, err = tx.ExecContext(ctx, `
INSERT INTO matches(id, mode, status, started_at, finished_at, duration_ms, time_step_ms, recording, error)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?);
`, m.ID, m.Mode, string(m.Status),
		m.StartedAt.UTC().Format(ledgerTimeLayout),
		m.FinishedAt.UTC().Format(ledgerTimeLayout),
		m.Duration.Milliseconds(), m.TimeStep.Milliseconds(),
		m.Recording, matchErr)
	if err != nil {
		return fmt.Errorf("insert match: %w", err)
	}

	for _, z := range m.Zones {
		removed := 0
		if z.Removed {
			removed = 1
		}
		_, err := tx.ExecContext(ctx, `
INSERT INTO match_zones(match_id, zone, robot_id, controller, blake3, removed)
VALUES(?, ?, ?, ?, ?, ?);
`, m.ID, z.Zone, z.RobotID, nullable(z.Controller), nullable(z.Hash), removed)
		if err != nil {
			return fmt.Errorf("insert zone %d: %w", z.Zone, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ledger transaction: %w", err)
	}
	return nil
}

// Recent returns up to limit matches, newest first, with their zones.
func (l *Ledger) Recent(ctx context.Context, limit int) ([]Match, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := l.db.QueryContext(ctx, `
SELECT id, mode, status, started_at, finished_at, duration_ms, time_step_ms, recording, error
FROM matches
ORDER BY started_at DESC, rowid DESC
LIMIT ?;
`, limit)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	var out []Match
	for rows.Next() {
		var (
			m                  Match
			status             string
			startedAt, endAt   string
			durationMS, stepMS int64
			matchErr           sql.NullString
		)
		if err := rows.Scan(&m.ID, &m.Mode, &status, &startedAt, &endAt, &durationMS, &stepMS, &m.Recording, &matchErr); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		m.Status = Status(status)
		m.Error = matchErr.String
		m.Duration = time.Duration(durationMS) * time.Millisecond
		m.TimeStep = time.Duration(stepMS) * time.Millisecond
		if m.StartedAt, err = time.Parse(ledgerTimeLayout, startedAt); err != nil {
			return nil, fmt.Errorf("parse started_at for %s: %w", m.ID, err)
		}
		if m.FinishedAt, err = time.Parse(ledgerTimeLayout, endAt); err != nil {
			return nil, fmt.Errorf("parse finished_at for %s: %w", m.ID, err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matches: %w", err)
	}
	rows.Close()

	for i := range out {
		zones, err := l.zones(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Zones = zones
	}
	return out, nil
}

func (l *Ledger) zones(ctx context.Context, matchID string) ([]ZoneEntry, error) {
	rows, err := l.db.QueryContext(ctx, `
SELECT zone, robot_id, controller, blake3, removed
FROM match_zones
WHERE match_id = ?
ORDER BY zone ASC;
`, matchID)
	if err != nil {
		return nil, fmt.Errorf("query zones for %s: %w", matchID, err)
	}
	defer rows.Close()

	var zones []ZoneEntry
	for rows.Next() {
		var (
			z                ZoneEntry
			controller, hash sql.NullString
			removed          int
		)
		if err := rows.Scan(&z.Zone, &z.RobotID, &controller, &hash, &removed); err != nil {
			return nil, fmt.Errorf("scan zone: %w", err)
		}
		z.Controller = controller.String
		z.Hash = hash.String
		z.Removed = removed != 0
		zones = append(zones, z)
	}
	return zones, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
