package db

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/adamavenir/amelie/internal/types"
	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func requireSchema(t *testing.T, db *sql.DB) {
	t.Helper()
	if err := InitSchema(db); err != nil {
		t.Fatalf("init schema: %v", err)
	}
}

func insertTestGuide(t *testing.T, db *sql.DB, city string, recordedAt time.Time, places ...string) types.GuideRecord {
	t.Helper()
	guide := types.Guide{City: city, RawText: "raw " + city, Places: []types.Place{}}
	for _, name := range places {
		guide.Places = append(guide.Places, types.Place{Name: name, Location: city, Description: "d", Tip: "t"})
	}
	record, err := InsertGuide(db, guide, recordedAt)
	if err != nil {
		t.Fatalf("insert guide %s: %v", city, err)
	}
	return record
}
