package epic

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// DayCache persists catalog day listings in SQLite so jobs over overlapping
// date ranges skip repeated catalog round-trips. Past days never change, so
// entries have no expiry.
type DayCache struct {
	db   *sql.DB
	path string
}

const dayCacheSchema = `
CREATE TABLE IF NOT EXISTS epic_days (
    collection TEXT NOT NULL,
    day        TEXT NOT NULL,
    listing    TEXT NOT NULL,
    fetched_at TEXT NOT NULL,
    PRIMARY KEY (collection, day)
)`

// OpenDayCache initializes or connects to the day-listing cache database.
func OpenDayCache(path string) (*DayCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open day cache db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(dayCacheSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create day cache schema: %w", err)
	}

	return &DayCache{db: db, path: path}, nil
}

// Close closes the underlying database connection.
func (c *DayCache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Path returns the cache database location.
func (c *DayCache) Path() string {
	if c == nil {
		return ""
	}
	return c.path
}

// Get returns the cached listing for a day. The second return value reports a
// cache hit; an empty cached listing is a valid hit.
func (c *DayCache) Get(ctx context.Context, collection, day string) ([]Image, bool, error) {
	if c == nil || c.db == nil {
		return nil, false, nil
	}

	var listing string
	err := c.db.QueryRowContext(
		ctx,
		`SELECT listing FROM epic_days WHERE collection = ? AND day = ?`,
		collection, day,
	).Scan(&listing)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query day cache: %w", err)
	}

	var images []Image
	if err := json.Unmarshal([]byte(listing), &images); err != nil {
		return nil, false, fmt.Errorf("decode cached listing: %w", err)
	}
	return images, true, nil
}

// Put stores the listing for a day, replacing any previous entry.
func (c *DayCache) Put(ctx context.Context, collection, day string, images []Image) error {
	if c == nil || c.db == nil {
		return nil
	}

	listing, err := json.Marshal(images)
	if err != nil {
		return fmt.Errorf("encode listing: %w", err)
	}

	_, err = c.db.ExecContext(
		ctx,
		`INSERT OR REPLACE INTO epic_days (collection, day, listing, fetched_at) VALUES (?, ?, ?, ?)`,
		collection, day, string(listing), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("store day listing: %w", err)
	}
	return nil
}
