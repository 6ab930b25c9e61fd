// Command unzigo extracts a ZIP archive, or merely validates it if no
// destination directory is given.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/elliotnunn/unzigo/internal/arena"
	"github.com/elliotnunn/unzigo/internal/checksum"
	"github.com/elliotnunn/unzigo/internal/zipfile"
)

func main() {
	if len(os.Args) < 2 || len(os.Args) > 3 {
		reportError("usage", fmt.Errorf("invocation is: unzigo <zipfile> [destination_directory]"))
		os.Exit(1)
	}
	zipPath := os.Args[1]
	var destDir string
	if len(os.Args) == 3 {
		destDir = os.Args[2]
	}

	data, err := os.ReadFile(zipPath)
	if err != nil {
		reportError("open", err)
		os.Exit(1)
	}

	ar, err := arena.New(0, 0, "unzigo-directory")
	if err != nil {
		reportError("arena", err)
		os.Exit(1)
	}
	defer ar.Release()

	var cache *zipfile.DirectoryCache
	if dir := os.Getenv("UNZIGO_CACHE_DIR"); dir != "" {
		cache, err = zipfile.OpenDirectoryCache(dir)
		if err != nil {
			reportError("cache", err)
			os.Exit(1)
		}
		defer cache.Close()
	}

	archive, err := zipfile.OpenCached(ar, data, cache)
	if err != nil {
		reportError("parse", err)
		os.Exit(1)
	}

	if destDir == "" {
		return
	}

	if err := extractAll(archive, destDir); err != nil {
		reportError("extract", err)
		os.Exit(1)
	}
}

// extractAll writes every entry in archive under destDir, in the order a
// bulk extraction reports progress: path depth ascending, directories
// before files at equal depth, then lexicographic by name.
func extractAll(archive *zipfile.Archive, destDir string) error {
	entries := append([]zipfile.Entry(nil), archive.Entries...)
	sort.SliceStable(entries, func(i, j int) bool {
		return entryLess(entries[i], entries[j])
	})

	ar, err := arena.New(0, 0, "unzigo-extract")
	if err != nil {
		return err
	}
	defer ar.Release()

	for _, e := range entries {
		if err := extractOne(ar, archive, e, destDir); err != nil {
			return fmt.Errorf("%s: %w", e.Name, err)
		}
	}
	return nil
}

func extractOne(ar *arena.Arena, archive *zipfile.Archive, e zipfile.Entry, destDir string) error {
	name := string(e.Name)
	target := filepath.Join(destDir, filepath.FromSlash(name))
	if strings.HasSuffix(name, "/") {
		return os.MkdirAll(target, 0o755)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	scratch := ar.Scratch()
	defer scratch.End()

	out, err := arena.NewByteBuilder(ar, int(e.UncompressedSize))
	if err != nil {
		return err
	}
	if err := archive.Extract(ar, e, out); err != nil {
		return err
	}

	f, err := os.Create(target)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(out.Bytes())
	return err
}

func entryLess(a, b zipfile.Entry) bool {
	da, db := depth(a.Name), depth(b.Name)
	if da != db {
		return da < db
	}
	dirA, dirB := strings.HasSuffix(string(a.Name), "/"), strings.HasSuffix(string(b.Name), "/")
	if dirA != dirB {
		return dirA
	}
	return checksum.StringCompare(a.Name, b.Name) < 0
}

func depth(name []byte) int {
	return strings.Count(path.Clean(string(name)), "/")
}

func reportError(scope string, err error) {
	slog.Error(fmt.Sprintf("[error] (%s): %s", scope, err))
}
