package database

import (
	"database/sql"
	"fmt"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// DB wraps the sqlite handle. It is constructed once at startup and passed
// to everything that needs persistence.
type DB struct {
	conn *sql.DB
}

func Open(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	createSubscribersTable := `
	CREATE TABLE IF NOT EXISTS subscribers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		chat_id INTEGER NOT NULL UNIQUE,
		target_price REAL NOT NULL,
		notification_method TEXT NOT NULL DEFAULT 'telegram',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`
	if _, err = conn.Exec(createSubscribersTable); err != nil {
		return nil, fmt.Errorf("failed to create subscribers table: %w", err)
	}

	createMetricsTable := `
	CREATE TABLE IF NOT EXISTS metrics (
		metric_name TEXT PRIMARY KEY,
		metric_value REAL NOT NULL
	);`
	if _, err = conn.Exec(createMetricsTable); err != nil {
		return nil, fmt.Errorf("failed to create metrics table: %w", err)
	}

	log.Debug("Database initialized successfully.")
	return &DB{conn: conn}, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}
