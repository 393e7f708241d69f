package database

import (
	"path/filepath"
	"strings"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCacheKey(t *testing.T) {
	key := CacheKey("/home/user/Profiles", 0.6, 0.3, 0.1)
	if key != "_home_user_Profiles_kw0.60_desc0.30_head0.10" {
		t.Errorf("unexpected cache key %q", key)
	}
}

func TestCacheKeyWindowsPath(t *testing.T) {
	key := CacheKey(`C:\data\profiles`, 0.5, 0.25, 0.25)
	if strings.ContainsAny(key, `\/:`) {
		t.Errorf("cache key contains path characters: %q", key)
	}
}

func TestCacheMiss(t *testing.T) {
	db := openTestDB(t)
	payload, err := db.GetCachedScores("nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload != nil {
		t.Errorf("expected nil payload for miss, got %q", payload)
	}
}

func TestCacheRoundTrip(t *testing.T) {
	db := openTestDB(t)
	key := CacheKey("/data", 0.6, 0.3, 0.1)

	if err := db.PutCachedScores(key, "/data", 0.6, 0.3, 0.1, []byte(`[{"x":1}]`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	payload, err := db.GetCachedScores(key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(payload) != `[{"x":1}]` {
		t.Errorf("unexpected payload %q", payload)
	}
}

func TestCacheUpsert(t *testing.T) {
	db := openTestDB(t)
	key := CacheKey("/data", 0.6, 0.3, 0.1)

	db.PutCachedScores(key, "/data", 0.6, 0.3, 0.1, []byte(`old`))
	if err := db.PutCachedScores(key, "/data", 0.6, 0.3, 0.1, []byte(`new`)); err != nil {
		t.Fatalf("unexpected error on upsert: %v", err)
	}

	payload, _ := db.GetCachedScores(key)
	if string(payload) != "new" {
		t.Errorf("expected replaced payload, got %q", payload)
	}
}

func TestClearCache(t *testing.T) {
	db := openTestDB(t)
	db.PutCachedScores("k1", "/a", 0.6, 0.3, 0.1, []byte(`[]`))
	db.PutCachedScores("k2", "/b", 0.6, 0.3, 0.1, []byte(`[]`))

	n, err := db.ClearCache()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 rows cleared, got %d", n)
	}

	payload, _ := db.GetCachedScores("k1")
	if payload != nil {
		t.Error("expected cache to be empty after clear")
	}
}

func TestGetCacheStats(t *testing.T) {
	db := openTestDB(t)

	stats, err := db.GetCacheStats()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Entries != 0 || stats.Folders != 0 {
		t.Errorf("expected empty stats, got %+v", stats)
	}

	db.PutCachedScores("k1", "/a", 0.6, 0.3, 0.1, []byte(`[]`))
	db.PutCachedScores("k2", "/a", 0.5, 0.3, 0.2, []byte(`[]`))
	db.PutCachedScores("k3", "/b", 0.6, 0.3, 0.1, []byte(`[]`))

	stats, err = db.GetCacheStats()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Entries != 3 || stats.Folders != 2 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if stats.Newest == "" {
		t.Error("expected newest timestamp to be set")
	}
}
