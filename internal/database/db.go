package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// journalDSN opens the review journal in WAL mode with a 5s busy timeout.
const journalDSN = "file:%s?_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate"

// Open opens the review journal at path and checks that the file is usable.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf(journalDSN, path))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping journal %s: %w", path, err)
	}
	return db, nil
}

// Now is the journal clock: UTC truncated to seconds, matching what sqlite stores.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}
