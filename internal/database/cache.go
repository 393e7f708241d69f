package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// CacheKey builds the cache identity for a folder and weight combination.
// Path separators and drive colons are flattened so the key stays a plain
// token; weights are fixed to two decimals.
func CacheKey(folder string, kw, desc, head float64) string {
	safe := strings.NewReplacer("\\", "_", "/", "_", ":", "").Replace(folder)
	return fmt.Sprintf("%s_kw%.2f_desc%.2f_head%.2f", safe, kw, desc, head)
}

// GetCachedScores returns the stored batch payload for key, or nil when no
// entry exists.
func (db *DB) GetCachedScores(key string) ([]byte, error) {
	var payload []byte
	err := db.conn.QueryRow(
		"SELECT payload FROM similarity_cache WHERE cache_key = ?", key,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache: %w", err)
	}
	return payload, nil
}

// PutCachedScores stores or replaces a batch payload.
func (db *DB) PutCachedScores(key, folder string, kw, desc, head float64, payload []byte) error {
	_, err := db.conn.Exec(`
INSERT INTO similarity_cache (cache_key, folder, kw_weight, desc_weight, head_weight, payload)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(cache_key) DO UPDATE SET
    payload = excluded.payload,
    created_at = datetime('now')`,
		key, folder, kw, desc, head, payload)
	if err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}
	return nil
}

// ClearCache deletes every cached batch.
func (db *DB) ClearCache() (int64, error) {
	res, err := db.conn.Exec("DELETE FROM similarity_cache")
	if err != nil {
		return 0, fmt.Errorf("clearing cache: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// CacheStats summarizes the cache contents.
type CacheStats struct {
	Entries int
	Folders int
	Newest  string
}

// GetCacheStats reports how many batches are cached, over how many distinct
// folders, and when the newest entry was written.
func (db *DB) GetCacheStats() (*CacheStats, error) {
	stats := &CacheStats{}
	err := db.conn.QueryRow(`
SELECT COUNT(*), COUNT(DISTINCT folder), COALESCE(MAX(created_at), '')
FROM similarity_cache`).Scan(&stats.Entries, &stats.Folders, &stats.Newest)
	if err != nil {
		return nil, fmt.Errorf("reading cache stats: %w", err)
	}
	return stats, nil
}
