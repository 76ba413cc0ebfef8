package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"VITALSENSE_BACK-END/internal/models"
)

// Cache is the local mirror of profile and recent history, bounding startup
// latency when the remote store is slow or unreachable. Values are stored as
// JSON blobs; a blob that no longer parses is treated as a miss and deleted.
type Cache struct {
	db         *sql.DB
	historyCap int
}

const cacheSchema = `
create table if not exists cached_profiles (
	user_id text primary key,
	payload blob not null
);
create table if not exists cached_history (
	user_id text primary key,
	payload blob not null
);
`

// OpenCache opens (and if needed initializes) the sqlite cache file.
func OpenCache(path string, historyCap int) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("cache pragma: %w", err)
	}
	if _, err := db.Exec(cacheSchema); err != nil {
		return nil, fmt.Errorf("cache schema: %w", err)
	}
	if historyCap <= 0 {
		historyCap = 10
	}
	return &Cache{db: db, historyCap: historyCap}, nil
}

// Close releases the underlying database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Ping reports whether the cache database is reachable.
func (c *Cache) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// GetProfile returns the cached profile, or ok=false on miss. Corrupt entries
// self-heal: the row is cleared and reported as a miss.
func (c *Cache) GetProfile(userID uuid.UUID) (models.UserProfile, bool) {
	var profile models.UserProfile
	if !c.load("cached_profiles", userID, &profile) {
		return models.UserProfile{}, false
	}
	return profile, true
}

// SetProfile stores the profile mirror.
func (c *Cache) SetProfile(userID uuid.UUID, profile models.UserProfile) {
	c.save("cached_profiles", userID, profile)
}

// GetHistory returns the cached recent history, or ok=false on miss.
func (c *Cache) GetHistory(userID uuid.UUID) ([]models.ScanHistoryItem, bool) {
	var items []models.ScanHistoryItem
	if !c.load("cached_history", userID, &items) {
		return nil, false
	}
	return items, true
}

// SetHistory stores the history mirror, truncated to the newest entries to
// bound payload size.
func (c *Cache) SetHistory(userID uuid.UUID, items []models.ScanHistoryItem) {
	if len(items) > c.historyCap {
		items = items[:c.historyCap]
	}
	c.save("cached_history", userID, items)
}

// ToggleFavorite mirrors a favorite flip into the cached history, returning
// the new state and ok=false when the item is not cached.
func (c *Cache) ToggleFavorite(userID, scanID uuid.UUID) (bool, bool) {
	items, ok := c.GetHistory(userID)
	if !ok {
		return false, false
	}
	for i := range items {
		if items[i].ID == scanID {
			items[i].IsFavorite = !items[i].IsFavorite
			c.SetHistory(userID, items)
			return items[i].IsFavorite, true
		}
	}
	return false, false
}

// Clear drops everything cached for the user, called on sign-out.
func (c *Cache) Clear(userID uuid.UUID) {
	for _, table := range []string{"cached_profiles", "cached_history"} {
		if _, err := c.db.Exec("delete from "+table+" where user_id = ?", userID.String()); err != nil {
			log.Printf("cache clear %s: %v", table, err)
		}
	}
}

func (c *Cache) load(table string, userID uuid.UUID, out any) bool {
	var payload []byte
	err := c.db.QueryRow("select payload from "+table+" where user_id = ?", userID.String()).Scan(&payload)
	if err != nil {
		return false
	}
	if err := json.Unmarshal(payload, out); err != nil {
		// Corrupt entry: clear it so the next remote fetch repopulates.
		if _, delErr := c.db.Exec("delete from "+table+" where user_id = ?", userID.String()); delErr != nil {
			log.Printf("cache self-heal %s: %v", table, delErr)
		}
		return false
	}
	return true
}

func (c *Cache) save(table string, userID uuid.UUID, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		log.Printf("cache marshal %s: %v", table, err)
		return
	}
	_, err = c.db.Exec(
		"insert into "+table+" (user_id, payload) values (?, ?) on conflict(user_id) do update set payload = excluded.payload",
		userID.String(), payload,
	)
	if err != nil {
		log.Printf("cache write %s: %v", table, err)
	}
}
