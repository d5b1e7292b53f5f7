package fusion

import (
	"database/sql"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists the memory document using modernc.org/sqlite
// (pure Go).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at the given path and
// prepares the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Enable WAL mode for concurrent reads.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS pattern_stats (
		agent        TEXT NOT NULL,
		pattern      TEXT NOT NULL,
		usage_count  INTEGER NOT NULL DEFAULT 0,
		success_rate REAL NOT NULL DEFAULT 0,
		last_used    DATETIME,
		PRIMARY KEY (agent, pattern)
	);

	CREATE TABLE IF NOT EXISTS chain_history (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id       TEXT NOT NULL,
		chain        TEXT NOT NULL DEFAULT '',
		mode         TEXT NOT NULL DEFAULT '',
		steps        INTEGER NOT NULL DEFAULT 0,
		fallbacks    INTEGER NOT NULL DEFAULT 0,
		composite    REAL NOT NULL DEFAULT 0,
		completed_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_history_completed ON chain_history(completed_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Load reads the full document. An empty database yields an empty document.
func (s *SQLiteStore) Load() (*Document, error) {
	doc := &Document{Stats: make(map[string]map[string]*PerformanceStat)}

	rows, err := s.db.Query(
		`SELECT agent, pattern, usage_count, success_rate, last_used FROM pattern_stats`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var agent, pattern string
		var stat PerformanceStat
		var lastUsed sql.NullTime
		if err := rows.Scan(&agent, &pattern, &stat.UsageCount, &stat.SuccessRate, &lastUsed); err != nil {
			return nil, err
		}
		if lastUsed.Valid {
			stat.LastUsed = lastUsed.Time
		}
		if doc.Stats[agent] == nil {
			doc.Stats[agent] = make(map[string]*PerformanceStat)
		}
		doc.Stats[agent][pattern] = &stat
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	hrows, err := s.db.Query(
		`SELECT run_id, chain, mode, steps, fallbacks, composite, completed_at
		 FROM chain_history ORDER BY id ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer hrows.Close()

	for hrows.Next() {
		var run RunSummary
		if err := hrows.Scan(&run.RunID, &run.Chain, &run.Mode, &run.Steps,
			&run.Fallbacks, &run.Composite, &run.CompletedAt); err != nil {
			return nil, err
		}
		doc.History = append(doc.History, run)
		if run.CompletedAt.After(doc.UpdatedAt) {
			doc.UpdatedAt = run.CompletedAt
		}
	}
	return doc, hrows.Err()
}

// Save rewrites the full document in one transaction.
func (s *SQLiteStore) Save(doc *Document) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM pattern_stats`); err != nil {
		return err
	}
	for agent, byPattern := range doc.Stats {
		for pattern, stat := range byPattern {
			if _, err := tx.Exec(
				`INSERT INTO pattern_stats (agent, pattern, usage_count, success_rate, last_used)
				 VALUES (?, ?, ?, ?, ?)`,
				agent, pattern, stat.UsageCount, stat.SuccessRate, stat.LastUsed,
			); err != nil {
				return err
			}
		}
	}

	if _, err := tx.Exec(`DELETE FROM chain_history`); err != nil {
		return err
	}
	for _, run := range doc.History {
		if _, err := tx.Exec(
			`INSERT INTO chain_history (run_id, chain, mode, steps, fallbacks, composite, completed_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.RunID, run.Chain, run.Mode, run.Steps, run.Fallbacks, run.Composite, run.CompletedAt,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
