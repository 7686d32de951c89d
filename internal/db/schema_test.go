package db

import (
	"path/filepath"
	"testing"
)

func TestInitSchemaCreatesTables(t *testing.T) {
	db := openTestDB(t)
	requireSchema(t, db)

	exists, err := SchemaExists(db)
	if err != nil {
		t.Fatalf("schema exists: %v", err)
	}
	if !exists {
		t.Fatal("expected schema to exist")
	}

	rows, err := db.Query(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name LIKE 'amelie_%'
		ORDER BY name
	`)
	if err != nil {
		t.Fatalf("list tables: %v", err)
	}
	defer rows.Close()

	seen := map[string]bool{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("scan table: %v", err)
		}
		seen[name] = true
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("rows: %v", err)
	}

	for _, table := range []string{"amelie_guides", "amelie_places"} {
		if !seen[table] {
			t.Fatalf("expected table %s", table)
		}
	}
}

func TestInitSchemaIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	requireSchema(t, db)
	requireSchema(t, db)
}

func TestSchemaExistsOnEmptyDB(t *testing.T) {
	db := openTestDB(t)
	exists, err := SchemaExists(db)
	if err != nil {
		t.Fatalf("schema exists: %v", err)
	}
	if exists {
		t.Fatal("expected no schema")
	}
}

func TestOpenHistoryCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "history.db")
	conn, err := OpenHistory(path)
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	defer conn.Close()

	exists, err := SchemaExists(conn)
	if err != nil || !exists {
		t.Fatalf("expected schema after open: %v %v", exists, err)
	}
	if _, err := OpenHistory(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}
