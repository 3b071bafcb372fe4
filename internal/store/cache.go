// Package store persists per-file statistics accumulators in SQLite so
// repeated stats runs only re-parse files whose mtime or size changed.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/aislog/internal/stats"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Cache is a SQLite-backed stats cache.
type Cache struct {
	db *sql.DB
}

// DefaultPath returns the cache database location:
// $XDG_CACHE_HOME/aislog/stats.db or ~/.cache/aislog/stats.db.
func DefaultPath() string {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, "aislog", "stats.db")
}

// Open opens or creates the cache database at the given path.
func Open(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Entry is one cached per-file accumulator with its staleness key.
type Entry struct {
	FilePath    string
	Policy      string
	SessionID   string
	ProjectName string
	Provider    string
	MtimeNs     int64
	SizeBytes   int64
	Stats       stats.FileStats
}

// Get returns the cached stats for a file under one policy when the stored
// mtime and size still match. A changed file is a miss, not an error.
func (c *Cache) Get(filePath, policy string, mtimeNs, sizeBytes int64) (*stats.FileStats, bool, error) {
	var storedMtime, storedSize int64
	var statsJSON string
	err := c.db.QueryRow(
		`SELECT mtime_ns, size_bytes, stats_json FROM file_stats WHERE file_path = ? AND policy = ?`,
		filePath, policy,
	).Scan(&storedMtime, &storedSize, &statsJSON)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if storedMtime != mtimeNs || storedSize != sizeBytes {
		return nil, false, nil
	}

	var fs stats.FileStats
	if err := json.Unmarshal([]byte(statsJSON), &fs); err != nil {
		// A corrupt row is treated as a miss and overwritten on the next Put.
		return nil, false, nil
	}
	return &fs, true, nil
}

// Put stores or replaces one file's stats.
func (c *Cache) Put(e Entry) error {
	statsJSON, err := json.Marshal(e.Stats)
	if err != nil {
		return err
	}
	_, err = c.db.Exec(`INSERT OR REPLACE INTO file_stats
		(file_path, policy, session_id, project_name, provider, mtime_ns, size_bytes, parsed_at, stats_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.FilePath, e.Policy, e.SessionID, e.ProjectName, e.Provider,
		e.MtimeNs, e.SizeBytes, time.Now().UTC().Format(time.RFC3339), string(statsJSON),
	)
	return err
}

// Delete removes every policy's rows for a file.
func (c *Cache) Delete(filePath string) error {
	_, err := c.db.Exec("DELETE FROM file_stats WHERE file_path = ?", filePath)
	return err
}

// Prune drops rows for files no longer present in keep.
func (c *Cache) Prune(keep map[string]bool) error {
	rows, err := c.db.Query("SELECT DISTINCT file_path FROM file_stats")
	if err != nil {
		return err
	}
	var stale []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			_ = rows.Close()
			return err
		}
		if !keep[path] {
			stale = append(stale, path)
		}
	}
	if err := rows.Close(); err != nil {
		return err
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, path := range stale {
		if err := c.Delete(path); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of cached rows.
func (c *Cache) Count() (int, error) {
	var count int
	err := c.db.QueryRow("SELECT COUNT(*) FROM file_stats").Scan(&count)
	return count, err
}
