package db

import "database/sql"

const schemaSQL = `
-- Guides received from the service, one row per applied guide
CREATE TABLE IF NOT EXISTS amelie_guides (
  guid TEXT PRIMARY KEY,               -- e.g., "gd-a1b2c3d4"
  city TEXT NOT NULL,                  -- city as requested
  city_key TEXT NOT NULL,              -- lower-cased city for lookups
  raw_text TEXT NOT NULL,              -- response text, unmodified
  server_ts TEXT,                      -- server timestamp string
  generated_at INTEGER NOT NULL,       -- unix ms, parsed from server_ts
  recorded_at INTEGER NOT NULL,        -- unix ms
  place_count INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_amelie_guides_city ON amelie_guides(city_key);
CREATE INDEX IF NOT EXISTS idx_amelie_guides_recorded ON amelie_guides(recorded_at);

-- Places extracted from a guide, in list order
CREATE TABLE IF NOT EXISTS amelie_places (
  guide_guid TEXT NOT NULL,
  position INTEGER NOT NULL,           -- 0-based
  name TEXT NOT NULL,
  location TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  tip TEXT NOT NULL DEFAULT '',
  PRIMARY KEY (guide_guid, position),
  FOREIGN KEY (guide_guid) REFERENCES amelie_guides(guid) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_amelie_places_name ON amelie_places(name);
`

// DBTX represents shared methods across sql.DB and sql.Tx.
type DBTX interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// InitSchema creates the history tables.
func InitSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if err := initSchemaWith(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func initSchemaWith(db DBTX) error {
	_, err := db.Exec(schemaSQL)
	return err
}

// SchemaExists reports whether the history schema is present.
func SchemaExists(db *sql.DB) (bool, error) {
	row := db.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name='amelie_guides'
	`)
	var name string
	err := row.Scan(&name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return name != "", nil
}
