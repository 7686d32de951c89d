package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adamavenir/amelie/internal/core"
	"github.com/adamavenir/amelie/internal/types"
	"github.com/gobwas/glob"
	"modernc.org/sqlite"
)

const (
	sqliteConstraint           = 19
	sqliteConstraintPrimaryKey = 1555
	sqliteConstraintUnique     = 2067
)

// GuideQueryOptions filters GetGuides.
type GuideQueryOptions struct {
	City  string
	Since *time.Time
	// PlaceMatch is a case-insensitive glob matched against place names.
	PlaceMatch string
	Limit      int
}

// InsertGuide records guide with its places.
func InsertGuide(db *sql.DB, guide types.Guide, recordedAt time.Time) (types.GuideRecord, error) {
	city := strings.TrimSpace(guide.City)
	if city == "" {
		return types.GuideRecord{}, fmt.Errorf("guide city is empty")
	}
	generatedAt := guide.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = recordedAt
	}

	for attempt := 0; attempt < 5; attempt++ {
		guid, err := core.GenerateGUID(core.GuidePrefix)
		if err != nil {
			return types.GuideRecord{}, err
		}
		err = insertGuideWithID(db, guid, city, guide, generatedAt, recordedAt)
		if isConstraintError(err) {
			continue
		}
		if err != nil {
			return types.GuideRecord{}, err
		}
		return types.GuideRecord{
			ID:          guid,
			City:        city,
			RawText:     guide.RawText,
			Timestamp:   guide.Timestamp,
			GeneratedAt: time.UnixMilli(generatedAt.UnixMilli()),
			RecordedAt:  time.UnixMilli(recordedAt.UnixMilli()),
			PlaceCount:  len(guide.Places),
			Places:      append([]types.Place{}, guide.Places...),
		}, nil
	}
	return types.GuideRecord{}, fmt.Errorf("failed to generate unique %s GUID", core.GuidePrefix)
}

func insertGuideWithID(db *sql.DB, guid, city string, guide types.Guide, generatedAt, recordedAt time.Time) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`
		INSERT INTO amelie_guides (guid, city, city_key, raw_text, server_ts, generated_at, recorded_at, place_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, guid, city, cityKey(city), guide.RawText, nullableString(guide.Timestamp),
		generatedAt.UnixMilli(), recordedAt.UnixMilli(), len(guide.Places)); err != nil {
		_ = tx.Rollback()
		return err
	}
	for i, place := range guide.Places {
		if _, err := tx.Exec(`
			INSERT INTO amelie_places (guide_guid, position, name, location, description, tip)
			VALUES (?, ?, ?, ?, ?, ?)
		`, guid, i, place.Name, place.Location, place.Description, place.Tip); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// GetGuides returns recorded guides, newest first, without places or raw
// text.
func GetGuides(db *sql.DB, options GuideQueryOptions) ([]types.GuideRecord, error) {
	query := `
		SELECT guid, city, server_ts, generated_at, recorded_at, place_count
		FROM amelie_guides
		WHERE 1=1
	`
	var params []any
	if city := cityKey(options.City); city != "" {
		query += " AND city_key = ?"
		params = append(params, city)
	}
	if options.Since != nil {
		query += " AND recorded_at >= ?"
		params = append(params, options.Since.UnixMilli())
	}

	var matcher glob.Glob
	if pattern := strings.TrimSpace(options.PlaceMatch); pattern != "" {
		compiled, err := glob.Compile(strings.ToLower(pattern))
		if err != nil {
			return nil, fmt.Errorf("invalid place pattern %q: %w", pattern, err)
		}
		matcher = compiled
		query += " AND place_count > 0"
	}

	query += " ORDER BY recorded_at DESC, guid DESC"
	if options.Limit > 0 && matcher == nil {
		query += " LIMIT ?"
		params = append(params, options.Limit)
	}

	rows, err := db.Query(query, params...)
	if err != nil {
		return nil, err
	}
	records, err := scanGuideRows(rows)
	if err != nil {
		return nil, err
	}
	if matcher == nil {
		return records, nil
	}

	filtered := make([]types.GuideRecord, 0, len(records))
	for _, record := range records {
		places, err := getPlaces(db, record.ID)
		if err != nil {
			return nil, err
		}
		for _, place := range places {
			if matcher.Match(strings.ToLower(place.Name)) {
				filtered = append(filtered, record)
				break
			}
		}
		if options.Limit > 0 && len(filtered) >= options.Limit {
			break
		}
	}
	return filtered, nil
}

// GetGuide returns a recorded guide with its raw text and places, or nil
// when no guide has that ID.
func GetGuide(db *sql.DB, guid string) (*types.GuideRecord, error) {
	row := db.QueryRow(`
		SELECT guid, city, raw_text, server_ts, generated_at, recorded_at, place_count
		FROM amelie_guides
		WHERE guid = ?
	`, guid)

	var record types.GuideRecord
	var serverTS sql.NullString
	var generatedAt, recordedAt int64
	if err := row.Scan(&record.ID, &record.City, &record.RawText, &serverTS, &generatedAt, &recordedAt, &record.PlaceCount); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	record.Timestamp = serverTS.String
	record.GeneratedAt = time.UnixMilli(generatedAt)
	record.RecordedAt = time.UnixMilli(recordedAt)

	places, err := getPlaces(db, guid)
	if err != nil {
		return nil, err
	}
	record.Places = places
	return &record, nil
}

// ResolveGuideID resolves a full ID, "gd-" prefixed ID, "#abcd" or bare
// prefix to a single recorded guide ID.
func ResolveGuideID(db *sql.DB, ref string) (string, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(ref), "#")
	raw = strings.TrimPrefix(raw, core.GuidePrefix+"-")
	if len(raw) < 2 {
		return "", fmt.Errorf("guide ID prefix too short: %s", ref)
	}

	rows, err := db.Query(`
		SELECT guid FROM amelie_guides
		WHERE guid LIKE ?
		ORDER BY recorded_at DESC, guid DESC
		LIMIT 5
	`, fmt.Sprintf("%s-%s%%", core.GuidePrefix, strings.ToLower(raw)))
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var guid string
		if err := rows.Scan(&guid); err != nil {
			return "", err
		}
		matches = append(matches, guid)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no guide matches #%s", raw)
	case 1:
		return matches[0], nil
	}
	refs := make([]string, 0, len(matches))
	for _, guid := range matches {
		refs = append(refs, "#"+core.GetGUIDPrefix(guid, len(raw)+2))
	}
	return "", fmt.Errorf("ambiguous #%s. Matches: %s", raw, strings.Join(refs, ", "))
}

// DeleteGuide removes a recorded guide and its places.
func DeleteGuide(db *sql.DB, guid string) (bool, error) {
	tx, err := db.Begin()
	if err != nil {
		return false, err
	}
	if _, err := tx.Exec("DELETE FROM amelie_places WHERE guide_guid = ?", guid); err != nil {
		_ = tx.Rollback()
		return false, err
	}
	result, err := tx.Exec("DELETE FROM amelie_guides WHERE guid = ?", guid)
	if err != nil {
		_ = tx.Rollback()
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// CountGuides returns how many guides are recorded.
func CountGuides(db *sql.DB) (int, error) {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM amelie_guides").Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func getPlaces(db DBTX, guid string) ([]types.Place, error) {
	rows, err := db.Query(`
		SELECT name, location, description, tip
		FROM amelie_places
		WHERE guide_guid = ?
		ORDER BY position
	`, guid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	places := []types.Place{}
	for rows.Next() {
		var place types.Place
		if err := rows.Scan(&place.Name, &place.Location, &place.Description, &place.Tip); err != nil {
			return nil, err
		}
		places = append(places, place)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return places, nil
}

func scanGuideRows(rows *sql.Rows) ([]types.GuideRecord, error) {
	defer rows.Close()

	records := []types.GuideRecord{}
	for rows.Next() {
		var record types.GuideRecord
		var serverTS sql.NullString
		var generatedAt, recordedAt int64
		if err := rows.Scan(&record.ID, &record.City, &serverTS, &generatedAt, &recordedAt, &record.PlaceCount); err != nil {
			return nil, err
		}
		record.Timestamp = serverTS.String
		record.GeneratedAt = time.UnixMilli(generatedAt)
		record.RecordedAt = time.UnixMilli(recordedAt)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func cityKey(city string) string {
	return strings.ToLower(strings.Join(strings.Fields(city), " "))
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func isConstraintError(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		return code == sqliteConstraint || code == sqliteConstraintPrimaryKey || code == sqliteConstraintUnique
	}
	return false
}
