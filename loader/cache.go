package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CacheFilePath returns the cache file for a given source file and
// resolution: the source path appended with `_n<resolution>.json`, so
// different resolutions of the same file never collide. With stripExtension
// set, the original extension is removed first, which forces different
// extensions of the same logical piece (say a *.mxl score and its *.ogg
// recording) to share one cache entry.
func CacheFilePath(filePath string, n int, stripExtension bool) string {
	if stripExtension {
		filePath = strings.TrimSuffix(filePath, filepath.Ext(filePath))
	}
	return fmt.Sprintf("%s_n%d.json", filePath, n)
}

// cacheEntry is the persisted (scape, parameters) pair.
type cacheEntry struct {
	Scape  [][]float64 `json:"scape"`
	Params Params      `json:"params"`
}

// readCache loads a cache entry from disk.
func readCache(cacheFile string) (*cacheEntry, error) {
	data, err := os.ReadFile(cacheFile)
	if err != nil {
		return nil, err
	}
	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("corrupt cache file %s: %w", cacheFile, err)
	}
	return &entry, nil
}

// writeCache persists a (scape, parameters) pair, overwriting any existing
// entry. The entry is staged in a temporary file and atomically renamed so a
// concurrent reader never observes a partial write.
func writeCache(cacheFile string, pcd [][]float64, params Params) error {
	data, err := json.Marshal(cacheEntry{Scape: pcd, Params: params})
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}

	dir := filepath.Dir(cacheFile)
	tmp, err := os.CreateTemp(dir, filepath.Base(cacheFile)+".tmp*")
	if err != nil {
		return fmt.Errorf("staging cache file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing cache file: %w", err)
	}

	if err := os.Rename(tmp.Name(), cacheFile); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("publishing cache file: %w", err)
	}
	return nil
}
