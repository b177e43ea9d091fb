package history

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS entries (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    plant_name TEXT NOT NULL,
    confidence REAL NOT NULL,
    image_url TEXT,
    timestamp TEXT NOT NULL,
    info BLOB NOT NULL,
    tts TEXT
);

CREATE INDEX IF NOT EXISTS entries_user_idx ON entries (user_id, timestamp DESC);
`

// OpenCache opens (or creates) the local history cache database at path.
func OpenCache(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return db, nil
}
