// Package indexdb keeps a small sqlite catalog of recorded matches so
// tooling can find and verify logs without scanning the archive.
package indexdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

type DB struct {
	db *sql.DB
}

// MatchRow summarizes one completed match.
type MatchRow struct {
	MatchID     string
	Map         string
	Ruleset     string
	Seed        int64
	Rounds      int
	Winner      string
	FinalDigest string
	LogPath     string
	RecordedAt  string
}

func Open(path string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("indexdb: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return d, nil
}

func (d *DB) migrate() error {
	_, err := d.db.Exec(`
CREATE TABLE IF NOT EXISTS matches (
	match_id     TEXT PRIMARY KEY,
	map          TEXT NOT NULL,
	ruleset      TEXT NOT NULL,
	seed         INTEGER NOT NULL,
	rounds       INTEGER NOT NULL,
	winner       TEXT NOT NULL,
	final_digest TEXT NOT NULL,
	log_path     TEXT NOT NULL,
	recorded_at  TEXT NOT NULL DEFAULT (datetime('now'))
);
CREATE INDEX IF NOT EXISTS idx_matches_map ON matches(map);
`)
	return err
}

// InsertMatch records a completed match; re-inserting the same id
// replaces the row.
func (d *DB) InsertMatch(row MatchRow) error {
	_, err := d.db.Exec(`
INSERT INTO matches (match_id, map, ruleset, seed, rounds, winner, final_digest, log_path)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(match_id) DO UPDATE SET
	map=excluded.map, ruleset=excluded.ruleset, seed=excluded.seed,
	rounds=excluded.rounds, winner=excluded.winner,
	final_digest=excluded.final_digest, log_path=excluded.log_path`,
		row.MatchID, row.Map, row.Ruleset, row.Seed, row.Rounds, row.Winner, row.FinalDigest, row.LogPath)
	return err
}

// Match fetches one match by id.
func (d *DB) Match(matchID string) (MatchRow, error) {
	var row MatchRow
	err := d.db.QueryRow(`
SELECT match_id, map, ruleset, seed, rounds, winner, final_digest, log_path, recorded_at
FROM matches WHERE match_id = ?`, matchID).Scan(
		&row.MatchID, &row.Map, &row.Ruleset, &row.Seed, &row.Rounds,
		&row.Winner, &row.FinalDigest, &row.LogPath, &row.RecordedAt)
	return row, err
}

// Matches lists recorded matches, newest first.
func (d *DB) Matches(limit int) ([]MatchRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.db.Query(`
SELECT match_id, map, ruleset, seed, rounds, winner, final_digest, log_path, recorded_at
FROM matches ORDER BY recorded_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []MatchRow
	for rows.Next() {
		var row MatchRow
		if err := rows.Scan(&row.MatchID, &row.Map, &row.Ruleset, &row.Seed, &row.Rounds,
			&row.Winner, &row.FinalDigest, &row.LogPath, &row.RecordedAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) Close() error { return d.db.Close() }
