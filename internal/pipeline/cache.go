package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

const cacheFile = ".cache.json"

// buildEntry records one successful compile of the module.
type buildEntry struct {
	BuildTime time.Time `json:"build_time"`
}

// buildCache maps "version-linkage" keys to build entries. It lives at the
// module level in the workspace and lets an unchanged configuration skip
// recompilation; assembly always runs.
type buildCache struct {
	Cache map[string]*buildEntry `json:"cache"`
}

func cacheKey(version string, shared bool) string {
	if shared {
		return version + "-shared"
	}
	return version + "-static"
}

func (c *buildCache) get(version string, shared bool) (*buildEntry, bool) {
	entry, ok := c.Cache[cacheKey(version, shared)]
	return entry, ok
}

func (c *buildCache) set(version string, shared bool, entry *buildEntry) {
	if c.Cache == nil {
		c.Cache = make(map[string]*buildEntry)
	}
	c.Cache[cacheKey(version, shared)] = entry
}

// loadCache reads the cache file from the module workspace directory. A
// missing or unreadable cache is an empty cache.
func loadCache(dir string) *buildCache {
	data, err := os.ReadFile(filepath.Join(dir, cacheFile))
	if err != nil {
		return &buildCache{}
	}
	var cache buildCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return &buildCache{}
	}
	return &cache
}

// saveCache writes the cache file to the module workspace directory.
func saveCache(dir string, cache *buildCache) error {
	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, cacheFile), data, 0o644)
}
