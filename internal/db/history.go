package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/adamavenir/amelie/internal/types"
)

// History records applied guides. It is write-only from the session's
// point of view: nothing reads it back to answer a guide request.
type History struct {
	db  *sql.DB
	now func() time.Time
}

// NewHistory wraps an open history database.
func NewHistory(conn *sql.DB) *History {
	return &History{db: conn, now: time.Now}
}

// DB returns the underlying connection.
func (h *History) DB() *sql.DB {
	return h.db
}

// RecordGuide stores guide and returns its history ID.
func (h *History) RecordGuide(ctx context.Context, guide types.Guide) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	record, err := InsertGuide(h.db, guide, h.now())
	if err != nil {
		return "", err
	}
	return record.ID, nil
}

// Close closes the database.
func (h *History) Close() error {
	return h.db.Close()
}
