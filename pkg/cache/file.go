package cache

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// staleTempAge is how old an abandoned temp file must be before Prune
// removes it; younger ones may belong to a write in progress.
const staleTempAge = time.Hour

// FileCache stores one JSON file per entry under dir/<xx>/<digest>.json.
//
// Writes go to a temp file in the shard directory and are renamed into place,
// so parallel batch renders or server requests writing the same key never
// leave a torn entry. Expired entries are removed when read or by Prune.
type FileCache struct {
	dir string
}

// NewFileCache creates dir if needed and returns a cache stored in it.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

// fileEntry is the on-disk form. Key guards against digest collisions.
type fileEntry struct {
	Key       string    `json:"key"`
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

func (e fileEntry) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// Get returns the entry for key. Corrupt and expired entries are deleted and
// reported as misses.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	entry, ok, err := readEntry(path)
	if errors.Is(err, errCorruptEntry) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	if err != nil || !ok {
		return nil, false, err
	}
	if entry.expired(time.Now()) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	if entry.Key != key {
		return nil, false, nil
	}
	return entry.Data, true, nil
}

// Set stores data under key. A zero ttl never expires; a negative one is
// already expired.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	entry := fileEntry{Key: key, Data: data}
	if ttl != 0 {
		entry.ExpiresAt = time.Now().Add(ttl)
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return writeAtomic(path, raw)
}

// Delete removes key. Deleting a missing key is not an error.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	err := os.Remove(c.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Prune deletes expired and undecodable entries plus temp files left behind by
// interrupted writes. It returns the number of files removed.
func (c *FileCache) Prune(ctx context.Context) (int, error) {
	now := time.Now()
	removed := 0
	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip unreadable paths, keep walking
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		name := d.Name()
		switch {
		case strings.HasSuffix(name, ".tmp"):
			if info, err := d.Info(); err == nil && now.Sub(info.ModTime()) > staleTempAge {
				if os.Remove(path) == nil {
					removed++
				}
			}
		case strings.HasSuffix(name, ".json"):
			entry, ok, err := readEntry(path)
			if err != nil && !errors.Is(err, errCorruptEntry) {
				return nil
			}
			if ok && !entry.expired(now) {
				return nil
			}
			if os.Remove(path) == nil {
				removed++
			}
		}
		return nil
	})
	return removed, err
}

// Close does nothing for the file cache.
func (c *FileCache) Close() error {
	return nil
}

func (c *FileCache) path(key string) string {
	dir, stem := shard(key)
	return filepath.Join(c.dir, dir, stem+".json")
}

var errCorruptEntry = errors.New("corrupt cache entry")

// readEntry loads an entry file. A missing file is a miss; an undecodable one
// returns errCorruptEntry.
func readEntry(path string) (fileEntry, bool, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return fileEntry{}, false, nil
	}
	if err != nil {
		return fileEntry{}, false, err
	}
	var entry fileEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return fileEntry{}, false, errCorruptEntry
	}
	return entry, true, nil
}

// writeAtomic writes data next to path and renames it over path.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".entry-*.tmp")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return err
	}
	return nil
}

var (
	_ Cache  = (*FileCache)(nil)
	_ Pruner = (*FileCache)(nil)
)
