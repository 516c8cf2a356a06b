package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists action and cycle history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for better concurrent read performance (dashboards read
	// while the monitor writes).
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS action_history (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			campaign_id   TEXT,
			channel       TEXT,
			kind          TEXT,
			new_budget    REAL,
			reason        TEXT,
			applied       INTEGER,
			remote_synced INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_action_ts ON action_history(timestamp)`,

		`CREATE TABLE IF NOT EXISTS cycle_history (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			cycle       INTEGER,
			campaigns   INTEGER,
			actions     INTEGER,
			duration_ms INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cycle_ts ON cycle_history(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordAction(rec *ActionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO action_history
		(timestamp, campaign_id, channel, kind, new_budget, reason, applied, remote_synced)
		VALUES (?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), rec.CampaignID, rec.Channel, rec.Kind,
		rec.NewBudget, rec.Reason, rec.Applied, rec.RemoteSynced,
	)
	return err
}

func (r *SQLiteRecorder) RecordCycle(rec *CycleRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO cycle_history
		(timestamp, cycle, campaigns, actions, duration_ms)
		VALUES (?,?,?,?,?)`,
		time.Now().Unix(), rec.Cycle, rec.Campaigns, rec.Actions,
		rec.Duration.Milliseconds(),
	)
	return err
}

func (r *SQLiteRecorder) Trim(olderThan time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := olderThan.Unix()
	if _, err := r.db.Exec(`DELETE FROM action_history WHERE timestamp < ?`, cutoff); err != nil {
		return err
	}
	_, err := r.db.Exec(`DELETE FROM cycle_history WHERE timestamp < ?`, cutoff)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
