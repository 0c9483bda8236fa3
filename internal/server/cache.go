package server

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"

	"github.com/ironsheep/planvec/internal/config"
	"github.com/ironsheep/planvec/internal/extractor"
)

// ResultCache stores extraction results keyed by input content and the
// effective configuration, so repeated tool calls on the same plan skip the
// pipeline. It is safe for concurrent use.
//
// Entries are never evicted automatically; the cache lives as long as the
// server process.
type ResultCache struct {
	mu      sync.RWMutex
	results map[string]*extractor.ExtractionResult
}

// NewResultCache returns an empty cache.
func NewResultCache() *ResultCache {
	return &ResultCache{
		results: make(map[string]*extractor.ExtractionResult),
	}
}

// Get returns the cached result for key.
func (c *ResultCache) Get(key string) (*extractor.ExtractionResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	res, ok := c.results[key]
	return res, ok
}

// Put stores res under key. Results are immutable, so callers share the
// stored value.
func (c *ResultCache) Put(key string, res *extractor.ExtractionResult) {
	c.mu.Lock()
	c.results[key] = res
	c.mu.Unlock()
}

// Len returns the number of cached results.
func (c *ResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.results)
}

// resultKey identifies an extraction by the SHA-256 of the input bytes, the
// full configuration and the region spec. The same plan under two paths
// shares one entry.
func resultKey(data []byte, cfg config.Config, region string) string {
	content := sha256.Sum256(data)
	parts, _ := json.Marshal([]interface{}{hex.EncodeToString(content[:]), cfg, region})
	key := sha256.Sum256(parts)
	return hex.EncodeToString(key[:])
}
