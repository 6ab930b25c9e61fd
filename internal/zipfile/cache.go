package zipfile

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/pebble/v2"

	"github.com/elliotnunn/unzigo/internal/arena"
)

// DirectoryCache memoizes parsed central directories on disk, keyed by an
// xxhash digest of the archive bytes. Re-opening the same archive (e.g. a
// CI artifact extracted repeatedly) then skips the central directory walk
// entirely.
type DirectoryCache struct {
	db *pebble.DB
}

// OpenDirectoryCache opens (creating if necessary) a cache database at dir.
func OpenDirectoryCache(dir string) (*DirectoryCache, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("zipfile: opening directory cache at %s: %w", dir, err)
	}
	return &DirectoryCache{db: db}, nil
}

// Close releases the underlying database handle.
func (c *DirectoryCache) Close() error {
	return c.db.Close()
}

func cacheKey(data []byte) []byte {
	h := xxhash.Sum64(data)
	key := make([]byte, 8)
	for i := range key {
		key[i] = byte(h >> (8 * i))
	}
	return key
}

// Lookup returns the cached entry list for data's digest, if present.
func (c *DirectoryCache) Lookup(data []byte) ([]Entry, bool) {
	val, closer, err := c.db.Get(cacheKey(data))
	if err != nil {
		return nil, false
	}
	defer closer.Close()

	var entries []Entry
	if err := gob.NewDecoder(bytes.NewReader(val)).Decode(&entries); err != nil {
		return nil, false
	}
	return entries, true
}

// Store saves data's parsed entry list under its content digest.
func (c *DirectoryCache) Store(data []byte, entries []Entry) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(entries); err != nil {
		return fmt.Errorf("zipfile: encoding directory cache entry: %w", err)
	}
	return c.db.Set(cacheKey(data), buf.Bytes(), pebble.Sync)
}

// OpenCached is Open, but consults cache first and populates it on a miss.
// A cache hit is decoded off the heap by gob, so its entry names are
// re-copied into ar to preserve Open's arena-ownership contract.
func OpenCached(ar *arena.Arena, data []byte, cache *DirectoryCache) (*Archive, error) {
	if cache != nil {
		if entries, ok := cache.Lookup(data); ok {
			for i, e := range entries {
				name, err := ar.PushBytes(e.Name)
				if err != nil {
					return nil, err
				}
				entries[i].Name = name
			}
			return &Archive{data: data, Entries: entries}, nil
		}
	}
	archive, err := Open(ar, data)
	if err != nil {
		return nil, err
	}
	if cache != nil {
		_ = cache.Store(data, archive.Entries)
	}
	return archive, nil
}
