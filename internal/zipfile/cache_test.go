package zipfile

import (
	"testing"

	"github.com/elliotnunn/unzigo/internal/arena"
	"github.com/elliotnunn/unzigo/internal/checksum"
)

func TestDirectoryCacheRoundTrip(t *testing.T) {
	data := buildStoredZip("cached.txt", []byte("hi\n"), 0xED6F7A7A)

	cache, err := OpenDirectoryCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer cache.Close()

	if _, ok := cache.Lookup(data); ok {
		t.Fatal("Lookup found an entry before any Store")
	}

	ar, err := arena.New(0, 0, "cache-test")
	if err != nil {
		t.Fatal(err)
	}
	defer ar.Release()

	archive, err := OpenCached(ar, data, cache)
	if err != nil {
		t.Fatal(err)
	}
	if len(archive.Entries) != 1 || string(archive.Entries[0].Name) != "cached.txt" {
		t.Fatalf("unexpected entries from miss path: %+v", archive.Entries)
	}

	entries, ok := cache.Lookup(data)
	if !ok {
		t.Fatal("Lookup found nothing after OpenCached populated the cache")
	}
	if len(entries) != 1 || string(entries[0].Name) != "cached.txt" {
		t.Fatalf("cached entries = %+v, want one entry named cached.txt", entries)
	}

	hitAr, err := arena.New(0, 0, "cache-test-hit")
	if err != nil {
		t.Fatal(err)
	}
	defer hitAr.Release()

	hitArchive, err := OpenCached(hitAr, data, cache)
	if err != nil {
		t.Fatal(err)
	}
	if len(hitArchive.Entries) != 1 || string(hitArchive.Entries[0].Name) != "cached.txt" {
		t.Fatalf("unexpected entries from hit path: %+v", hitArchive.Entries)
	}
}

func TestDirectoryCacheDistinguishesArchives(t *testing.T) {
	first := buildStoredZip("a.txt", []byte("a"), checksum.CRC32([]byte("a")))
	second := buildStoredZip("b.txt", []byte("b"), checksum.CRC32([]byte("b")))

	cache, err := OpenDirectoryCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer cache.Close()

	if err := cache.Store(first, []Entry{{Name: []byte("a.txt")}}); err != nil {
		t.Fatal(err)
	}

	if _, ok := cache.Lookup(second); ok {
		t.Fatal("Lookup unexpectedly hit for a different archive's bytes")
	}
}
